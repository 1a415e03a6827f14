package decl

import "strings"

// Type is a resolved type expression.
type Type struct {
	// Spelling is the normalized type name after typedefs are resolved.
	Spelling string
	// Decl is the tag declaration for class, struct, union and enum types.
	Decl *Decl
	// Builtin marks fundamental types such as int or double.
	Builtin bool
	// Indirect marks pointers and references.
	Indirect bool
	// Typedef is the alias the type was reached through, if any.
	Typedef *Decl
}

// IsIncomplete reports types whose size is unknown: void and tags with no
// visible definition.
func (t *Type) IsIncomplete() bool {
	if t == nil || t.Indirect {
		return false
	}
	if t.Builtin {
		return t.Spelling == "void"
	}
	if t.Decl != nil && t.Decl.kind.IsTag() {
		return t.Decl.Definition() == nil
	}
	return false
}

// IsFundamental reports builtin arithmetic, void and nullptr types.
func (t *Type) IsFundamental() bool {
	return t != nil && t.Builtin && !t.Indirect
}

// IsEnum reports enumeration types.
func (t *Type) IsEnum() bool {
	return t != nil && !t.Indirect && t.Decl != nil && t.Decl.kind == Enum
}

// RecordDecl returns the record a class type names, or nil.
func (t *Type) RecordDecl() *Decl {
	if t == nil || t.Indirect || t.Decl == nil || !t.Decl.kind.IsRecord() {
		return nil
	}
	return t.Decl
}

var cvWords = []string{"const", "volatile"}

// elaborated are the keywords that may introduce a type name.
var elaborated = []string{"class", "struct", "union", "enum", "typename"}

// cutKeyword removes a leading keyword kw from a normalized spelling. The
// keyword must be followed by a space or by "::", which Normalize leaves
// unseparated ("struct::geo::Point").
func cutKeyword(s, kw string) (string, bool) {
	rest, ok := strings.CutPrefix(s, kw)
	if !ok {
		return s, false
	}
	switch {
	case strings.HasPrefix(rest, " "):
		return rest[1:], true
	case strings.HasPrefix(rest, "::"):
		return rest, true
	}
	return s, false
}

func stripCV(s string) string {
	for changed := true; changed; {
		changed = false
		for _, w := range cvWords {
			if rest, ok := cutKeyword(s, w); ok {
				s = rest
				changed = true
			}
			if strings.HasSuffix(s, " "+w) {
				s = s[:len(s)-len(w)-1]
				changed = true
			}
		}
	}
	return s
}

// topLevelConst reports whether a member spelling declares a const object,
// as opposed to a pointer to const. Template arguments are ignored.
func topLevelConst(spelling string) bool {
	s := Normalize(spelling)
	if i := strings.IndexByte(s, '<'); i >= 0 {
		if j := strings.LastIndexByte(s, '>'); j > i {
			s = s[:i] + s[j+1:]
		}
	}
	if i := strings.LastIndexAny(s, "*&"); i >= 0 {
		s = s[i+1:]
	}
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r > 0x7f || !isIdentByte(byte(r)) }) {
		if tok == "const" {
			return true
		}
	}
	return false
}

// StripCV removes leading and trailing const and volatile qualifiers.
func StripCV(s string) string {
	return stripCV(Normalize(s))
}

// FindScope resolves a fully qualified name from the global scope. It
// mirrors what a compiler's scope lookup returns: namespaces and tags
// come back as a declaration, tags also with their Type; typedefs and
// aliases come back as a nil declaration plus the aliased Type. A
// template-id naming a class template with no matching specialization
// instantiates one. It returns nil, nil when nothing matches.
func (t *Tree) FindScope(name string) (*Decl, *Type) {
	parts := SplitQualified(name)
	if len(parts) == 0 {
		return nil, nil
	}
	scope := t.tu
	for i, part := range parts {
		last := i == len(parts)-1
		found := t.lookupIn(scope, part)
		if found == nil {
			return nil, nil
		}
		switch found.kind {
		case Namespace:
			if last {
				return found, nil
			}
			scope = found
		case Record, TemplateSpecialization, Enum:
			if def := found.Definition(); def != nil {
				found = def
			}
			if last {
				return found, &Type{Spelling: found.QualifiedName(), Decl: found}
			}
			scope = found
		case Typedef:
			typ := t.typedefType(found, 0)
			if typ == nil {
				return nil, nil
			}
			typ.Typedef = found
			if last {
				return nil, typ
			}
			if typ.Decl == nil || typ.Indirect {
				return nil, nil
			}
			scope = typ.Decl
		default:
			return nil, nil
		}
	}
	return nil, nil
}

// lookupIn finds name among the children of every redeclaration of scope.
// Template-ids fall back to implicit instantiation.
func (t *Tree) lookupIn(scope *Decl, name string) *Decl {
	key := Normalize(name)
	base, args, isTemplateID := SplitTemplateID(key)

	var firstTag, tmpl *Decl
	for _, s := range scope.Redeclarations() {
		for _, c := range s.Children() {
			switch c.kind {
			case Namespace, Typedef:
				if !isTemplateID && c.name == key {
					return c
				}
			case Record, Enum, TemplateSpecialization:
				if c.key() != key {
					continue
				}
				if c.complete {
					return c
				}
				if firstTag == nil {
					firstTag = c
				}
			case ClassTemplate:
				if isTemplateID && c.name == base && tmpl == nil {
					tmpl = c
				}
			}
		}
	}
	if firstTag != nil {
		return firstTag
	}
	if tmpl != nil {
		return t.instantiate(tmpl, args)
	}
	return nil
}

// lookupUnqualified searches from scope outward, as an unqualified name
// used inside scope would be found.
func (t *Tree) lookupUnqualified(scope *Decl, name string) *Decl {
	for s := scope; s != nil; s = s.parent {
		if s.kind == ClassTemplate {
			continue
		}
		if d := t.lookupIn(s, name); d != nil {
			return d
		}
		if s.kind.IsRecord() {
			for _, b := range s.Bases() {
				if bd := b.Decl(); bd != nil {
					if d := t.lookupIn(bd, name); d != nil {
						return d
					}
				}
			}
		}
	}
	return nil
}

// instantiate returns the specialization of tmpl for args, creating it
// from the template pattern when none exists. Implicit specializations are
// not added to the template's parent, so scope traversal does not see them.
func (t *Tree) instantiate(tmpl *Decl, args []string) *Decl {
	args = normalizeAll(args)
	key := Normalize(tmpl.name + "<" + strings.Join(args, ",") + ">")
	for _, s := range tmpl.parent.Redeclarations() {
		for _, c := range s.Children() {
			if c.kind == TemplateSpecialization && c.key() == key {
				return c
			}
		}
	}
	for _, c := range tmpl.children {
		if c.key() == key {
			return c
		}
	}

	spec := t.newDecl(TemplateSpecialization, tmpl.parent, tmpl.name)
	spec.tag = tmpl.tag
	spec.template = tmpl
	spec.templateArgs = args
	spec.access = tmpl.access
	spec.file, spec.line = tmpl.file, tmpl.line
	spec.comment, spec.annotation = tmpl.comment, tmpl.annotation
	// Specializations hang off the template so later lookups reuse them.
	tmpl.children = append(tmpl.children, spec)
	t.instantiations++

	pattern := tmpl.pattern
	if pattern == nil {
		return spec
	}
	spec.complete = pattern.complete
	params := tmpl.templateParams
	spec.pending = func(spec *Decl) {
		for _, b := range pattern.Bases() {
			nb := &Base{Name: Normalize(substitute(b.Name, params, args)), Access: b.Access, Virtual: b.Virtual, from: spec}
			spec.bases = append(spec.bases, nb)
		}
		for _, c := range pattern.Children() {
			switch c.kind {
			case Function:
				m := *c.fn
				m.Params = make([]Param, len(c.fn.Params))
				for i, p := range c.fn.Params {
					m.Params[i] = Param{Name: p.Name, Type: Normalize(substitute(p.Type, params, args)), HasDefault: p.HasDefault}
				}
				m.Return = Normalize(substitute(m.Return, params, args))
				m.Kind = Ordinary
				t.AddMethod(spec, &m)
			case Field:
				f := *c.field
				f.Type = substitute(f.Type, params, args)
				t.AddField(spec, f)
			case Typedef:
				t.AddTypedef(spec, c.name, substitute(c.target, params, args)).access = c.access
			}
		}
	}
	return spec
}

// ResolveType resolves a type spelling as it would be written inside
// scope. Pointers and references resolve to an Indirect type that still
// records the pointee declaration. It returns nil for names the tree does
// not know.
func (t *Tree) ResolveType(spelling string, scope *Decl) *Type {
	return t.resolveType(spelling, scope, 0)
}

func (t *Tree) resolveType(spelling string, scope *Decl, depth int) *Type {
	if depth > 16 {
		return nil
	}
	s := Normalize(spelling)
	indirect := false
	for strings.HasSuffix(s, "*") || strings.HasSuffix(s, "&") {
		s = strings.TrimSpace(s[:len(s)-1])
		s = stripCV(s)
		indirect = true
	}
	s = stripCV(s)
	for _, kw := range elaborated {
		s, _ = cutKeyword(s, kw)
	}
	if s == "" {
		return nil
	}
	if isBuiltin(s) {
		return &Type{Spelling: canonicalBuiltin(s), Builtin: true, Indirect: indirect}
	}
	if scope == nil {
		scope = t.tu
	}

	var d *Decl
	if strings.HasPrefix(s, "::") {
		d = t.lookupQualified(t.tu, SplitQualified(s))
	} else {
		parts := SplitQualified(s)
		first := t.lookupUnqualified(scope, parts[0])
		if first != nil && len(parts) > 1 {
			d = t.lookupQualified(t.scopeOf(first, depth), parts[1:])
		} else {
			d = first
		}
	}
	if d == nil {
		return nil
	}
	if d.kind == Typedef {
		inner := t.typedefType(d, depth+1)
		if inner == nil {
			return nil
		}
		inner.Indirect = inner.Indirect || indirect
		if inner.Typedef == nil {
			inner.Typedef = d
		}
		return inner
	}
	if !d.kind.IsTag() {
		return nil
	}
	if def := d.Definition(); def != nil {
		d = def
	}
	return &Type{Spelling: d.QualifiedName(), Decl: d, Indirect: indirect}
}

// scopeOf turns a typedef into the record it names so qualified lookup can
// continue through it.
func (t *Tree) scopeOf(d *Decl, depth int) *Decl {
	if d == nil || d.kind != Typedef {
		return d
	}
	typ := t.typedefType(d, depth+1)
	if typ == nil || typ.Decl == nil || typ.Indirect {
		return nil
	}
	return typ.Decl
}

// typedefType resolves what a typedef names.
func (t *Tree) typedefType(d *Decl, depth int) *Type {
	if d.aliased != nil {
		tag := d.aliased
		if def := tag.Definition(); def != nil {
			tag = def
		}
		return &Type{Spelling: tag.QualifiedName(), Decl: tag, Typedef: d}
	}
	return t.resolveType(d.target, d.parent, depth)
}

func (t *Tree) lookupQualified(scope *Decl, parts []string) *Decl {
	cur := scope
	for i, part := range parts {
		next := t.lookupIn(cur, part)
		if next == nil || i == len(parts)-1 {
			return next
		}
		if cur = t.scopeOf(next, 0); cur == nil {
			return nil
		}
	}
	return nil
}

var builtinCanonical = map[string]string{
	"void":               "void",
	"bool":               "bool",
	"char":               "char",
	"signed char":        "signed char",
	"unsigned char":      "unsigned char",
	"wchar_t":            "wchar_t",
	"char8_t":            "char8_t",
	"char16_t":           "char16_t",
	"char32_t":           "char32_t",
	"short":              "short",
	"short int":          "short",
	"signed short":       "short",
	"signed short int":   "short",
	"unsigned short":     "unsigned short",
	"unsigned short int": "unsigned short",
	"int":                "int",
	"signed":             "int",
	"signed int":         "int",
	"unsigned":           "unsigned int",
	"unsigned int":       "unsigned int",
	"long":               "long",
	"long int":           "long",
	"signed long":        "long",
	"signed long int":    "long",
	"unsigned long":      "unsigned long",
	"unsigned long int":  "unsigned long",
	"long long":          "long long",
	"long long int":      "long long",
	"signed long long":   "long long",
	"unsigned long long": "unsigned long long",
	"float":              "float",
	"double":             "double",
	"long double":        "long double",
	"size_t":             "unsigned long",
	"std::size_t":        "unsigned long",
	"ptrdiff_t":          "long",
	"std::nullptr_t":     "std::nullptr_t",
	"nullptr_t":          "std::nullptr_t",
	"int8_t":             "signed char",
	"uint8_t":            "unsigned char",
	"int16_t":            "short",
	"uint16_t":           "unsigned short",
	"int32_t":            "int",
	"uint32_t":           "unsigned int",
	"int64_t":            "long",
	"uint64_t":           "unsigned long",
	"Int_t":              "int",
	"UInt_t":             "unsigned int",
	"Long_t":             "long",
	"ULong_t":            "unsigned long",
	"Long64_t":           "long long",
	"ULong64_t":          "unsigned long long",
	"Float_t":            "float",
	"Double_t":           "double",
	"Bool_t":             "bool",
	"Char_t":             "char",
	"Short_t":            "short",
}

func isBuiltin(s string) bool {
	_, ok := builtinCanonical[s]
	return ok
}

func canonicalBuiltin(s string) string {
	return builtinCanonical[s]
}

// CanonicalBuiltin returns the canonical spelling of a fundamental type, or
// "" when s is not one.
func CanonicalBuiltin(s string) string {
	return builtinCanonical[stripCV(Normalize(s))]
}
