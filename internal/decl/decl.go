// Package decl holds the declaration tree that reflection queries run over.
//
// A Tree is rooted at a translation unit. Scopes (namespaces, records,
// enums) own their children in source order; children of a scope may be
// materialized lazily the first time they are asked for. Names are kept in
// the normalized spelling produced by Normalize.
package decl

import "strings"

// Kind identifies what a Decl declares.
type Kind int

const (
	TranslationUnit Kind = iota
	Namespace
	Enum
	Record
	TemplateSpecialization
	ClassTemplate
	Function
	Field
	Typedef
	Other
)

var kindNames = map[Kind]string{
	TranslationUnit:        "translation_unit",
	Namespace:              "namespace",
	Enum:                   "enum",
	Record:                 "record",
	TemplateSpecialization: "specialization",
	ClassTemplate:          "class_template",
	Function:               "function",
	Field:                  "field",
	Typedef:                "typedef",
	Other:                  "other",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsTag reports whether declarations of this kind introduce a tag type.
func (k Kind) IsTag() bool {
	return k == Enum || k == Record || k == TemplateSpecialization
}

// IsRecord reports whether the kind is a class, struct or union, including
// template specializations.
func (k Kind) IsRecord() bool {
	return k == Record || k == TemplateSpecialization
}

// TagKind distinguishes class, struct, union and enum tags.
type TagKind int

const (
	TagNone TagKind = iota
	TagClass
	TagStruct
	TagUnion
	TagEnum
)

func (t TagKind) String() string {
	switch t {
	case TagClass:
		return "class"
	case TagStruct:
		return "struct"
	case TagUnion:
		return "union"
	case TagEnum:
		return "enum"
	default:
		return ""
	}
}

// Access is a member access level. AccessNone is used for declarations
// at namespace scope.
type Access int

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "none"
	}
}

// IsPublic reports whether the access level lets outside code reach the
// declaration.
func (a Access) IsPublic() bool {
	return a == AccessPublic || a == AccessNone
}

// Decl is one node of the declaration tree.
type Decl struct {
	id     int
	kind   Kind
	tag    TagKind
	name   string
	parent *Decl
	tree   *Tree
	access Access

	complete bool
	scoped   bool // enum class

	file       string
	line       uint32
	comment    string
	annotation string

	// TemplateSpecialization
	templateArgs []string
	template     *Decl

	// ClassTemplate
	templateParams []string
	pattern        *Decl

	bases    []*Base
	children []*Decl
	pending  func(*Decl)

	fn          *Method
	field       *FieldInfo
	target      string
	aliased     *Decl // typedef of an unnamed tag
	enumerators []string
}

// ID is stable for the lifetime of the tree and unique within it.
func (d *Decl) ID() int { return d.id }

func (d *Decl) Kind() Kind { return d.kind }

func (d *Decl) Tag() TagKind { return d.tag }

func (d *Decl) Parent() *Decl { return d.parent }

func (d *Decl) Tree() *Tree { return d.tree }

func (d *Decl) Access() Access { return d.access }

// SetAccess overrides the access level assigned when the decl was added.
func (d *Decl) SetAccess(a Access) { d.access = a }

func (d *Decl) File() string { return d.file }

func (d *Decl) Line() uint32 { return d.line }

// SetLocation records where the declaration appears in source.
func (d *Decl) SetLocation(file string, line uint32) {
	d.file = file
	d.line = line
}

func (d *Decl) Comment() string { return d.comment }

func (d *Decl) SetComment(c string) { d.comment = c }

// Annotation is the text of an annotate("...") attribute, if any.
func (d *Decl) Annotation() string { return d.annotation }

func (d *Decl) SetAnnotation(a string) { d.annotation = a }

// IsCompleteDefinition reports whether this particular declaration carries
// a body. Namespaces and the translation unit are always complete.
func (d *Decl) IsCompleteDefinition() bool {
	switch d.kind {
	case TranslationUnit, Namespace:
		return true
	}
	return d.complete
}

// IsScopedEnum reports an enum class.
func (d *Decl) IsScopedEnum() bool { return d.scoped }

// Enumerators lists an enum's enumerator names.
func (d *Decl) Enumerators() []string { return d.enumerators }

// Identifier is the bare name without template arguments. It is empty for
// anonymous declarations and the translation unit.
func (d *Decl) Identifier() string { return d.name }

// Name is the unqualified name. Specializations include their template
// arguments, as in "pair<int, float>".
func (d *Decl) Name() string {
	if d.kind == TemplateSpecialization && len(d.templateArgs) > 0 {
		return d.name + "<" + DisplayArgs(d.templateArgs) + ">"
	}
	return d.name
}

// QualifiedName joins the names of all enclosing scopes with "::".
// Anonymous namespaces print as "(anonymous namespace)".
func (d *Decl) QualifiedName() string {
	if d.kind == TranslationUnit {
		return ""
	}
	var parts []string
	for cur := d; cur != nil && cur.kind != TranslationUnit; cur = cur.parent {
		name := cur.Name()
		if name == "" {
			switch cur.kind {
			case Namespace:
				name = "(anonymous namespace)"
			default:
				name = "(anonymous)"
			}
		}
		parts = append(parts, name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// TemplateArgs returns the argument spellings of a specialization.
func (d *Decl) TemplateArgs() []string { return d.templateArgs }

// Template returns the class template a specialization was produced from.
func (d *Decl) Template() *Decl { return d.template }

// TemplateParams returns the parameter names of a class template.
func (d *Decl) TemplateParams() []string { return d.templateParams }

// Pattern returns the record body a class template instantiates from.
func (d *Decl) Pattern() *Decl { return d.pattern }

// Target is the aliased type spelling of a typedef or alias declaration.
func (d *Decl) Target() string { return d.target }

// Function returns the method a Function decl wraps.
func (d *Decl) Function() *Method { return d.fn }

// FieldInfo returns the data member a Field decl wraps.
func (d *Decl) FieldInfo() *FieldInfo { return d.field }

// Children returns the declarations directly inside this one, materializing
// them first if they were deferred.
func (d *Decl) Children() []*Decl {
	d.materialize()
	return d.children
}

// HasChildren reports whether Children would return anything.
func (d *Decl) HasChildren() bool {
	return len(d.Children()) > 0
}

// IsMaterialized reports whether deferred children have been loaded.
func (d *Decl) IsMaterialized() bool { return d.pending == nil }

// SetLazy defers construction of d's children until first use. load is
// called once with d and should add children through the tree builders.
func (d *Decl) SetLazy(load func(*Decl)) {
	d.pending = load
}

func (d *Decl) materialize() {
	if d.pending == nil {
		return
	}
	load := d.pending
	d.pending = nil
	load(d)
	if d.tree != nil {
		d.tree.materializations++
	}
}

// Bases returns the direct base specifiers in declaration order.
func (d *Decl) Bases() []*Base {
	d.materialize()
	return d.bases
}

// Methods returns the member functions declared directly in d.
func (d *Decl) Methods() []*Method {
	var out []*Method
	for _, c := range d.Children() {
		if c.kind == Function && c.fn != nil {
			out = append(out, c.fn)
		}
	}
	return out
}

// Fields returns the data members declared directly in d.
func (d *Decl) Fields() []*FieldInfo {
	var out []*FieldInfo
	for _, c := range d.Children() {
		if c.kind == Field && c.field != nil {
			out = append(out, c.field)
		}
	}
	return out
}

func (d *Decl) key() string {
	return Normalize(d.Name())
}

// Definition returns the complete declaration of the entity d names. For
// namespaces and the translation unit it returns d. For tags it searches
// the redeclarations in d's semantic scope and returns nil when only
// forward declarations exist.
func (d *Decl) Definition() *Decl {
	switch d.kind {
	case TranslationUnit, Namespace:
		return d
	}
	if !d.kind.IsTag() {
		return nil
	}
	if d.complete {
		return d
	}
	if d.parent == nil || d.name == "" {
		return nil
	}
	for _, scope := range d.parent.Redeclarations() {
		for _, c := range scope.Children() {
			if c != d && c.kind == d.kind && c.complete && c.key() == d.key() {
				return c
			}
		}
	}
	return nil
}

// Redeclarations returns every declaration of the same entity in source
// order. Reopened namespaces are separate declarations that share a name.
func (d *Decl) Redeclarations() []*Decl {
	switch d.kind {
	case TranslationUnit:
		return []*Decl{d}
	case Namespace:
		if d.parent == nil {
			return []*Decl{d}
		}
		var out []*Decl
		for _, scope := range d.parent.Redeclarations() {
			for _, c := range scope.Children() {
				if c.kind == Namespace && c.name == d.name {
					out = append(out, c)
				}
			}
		}
		if len(out) == 0 {
			return []*Decl{d}
		}
		return out
	default:
		if def := d.Definition(); def != nil {
			return []*Decl{def}
		}
		return []*Decl{d}
	}
}

// IsCanonical reports whether d is the first declaration of its entity.
func (d *Decl) IsCanonical() bool {
	if d.kind != Namespace && !d.kind.IsTag() {
		return true
	}
	if d.parent == nil {
		return true
	}
	// Unnamed tags are distinct entities; unnamed namespaces in one scope
	// are the same namespace.
	if d.name == "" && d.kind != Namespace {
		return true
	}
	for _, scope := range d.parent.Redeclarations() {
		for _, c := range scope.Children() {
			if c.kind == d.kind && c.key() == d.key() {
				return c == d
			}
		}
	}
	return true
}

// IsInStd reports whether d is declared directly in namespace std.
func (d *Decl) IsInStd() bool {
	p := d.parent
	return p != nil && p.kind == Namespace && p.name == "std" &&
		p.parent != nil && p.parent.kind == TranslationUnit
}

// Same reports whether two handles name the same entity, treating a
// forward declaration and its definition as one.
func Same(a, b *Decl) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	if a.kind.IsTag() {
		da, db := a.Definition(), b.Definition()
		return da != nil && da == db
	}
	return false
}

// Base is one base-specifier of a record.
type Base struct {
	Name    string
	Access  Access
	Virtual bool

	decl *Decl
	from *Decl
}

// Decl resolves the base to its record, preferring the definition. It
// returns nil when the base names nothing the tree knows about.
func (b *Base) Decl() *Decl {
	if b.decl == nil && b.from != nil && b.from.tree != nil {
		scope := b.from.parent
		if scope == nil {
			scope = b.from
		}
		if t := b.from.tree.ResolveType(b.Name, scope); t != nil && t.Decl != nil {
			b.decl = t.Decl
		}
	}
	if b.decl == nil {
		return nil
	}
	if def := b.decl.Definition(); def != nil {
		return def
	}
	return b.decl
}

// MethodKind classifies special member functions.
type MethodKind int

const (
	Ordinary MethodKind = iota
	Constructor
	Destructor
	CopyAssign
	Operator
	Conversion
)

func (k MethodKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Destructor:
		return "destructor"
	case CopyAssign:
		return "copy_assign"
	case Operator:
		return "operator"
	case Conversion:
		return "conversion"
	default:
		return "ordinary"
	}
}

// Param is one function parameter.
type Param struct {
	Name       string
	Type       string
	HasDefault bool
}

// Method is a function declaration. Member functions have a record
// Parent; free functions have a namespace or translation unit Parent.
type Method struct {
	Name   string
	Parent *Decl
	Params []Param
	Return string
	Kind   MethodKind
	Access Access

	Static    bool
	Virtual   bool
	Pure      bool
	Const     bool
	Explicit  bool
	Defaulted bool
	Deleted   bool
	Variadic  bool

	File string
	Line uint32

	decl *Decl
}

// Decl returns the Function decl that wraps m in the tree.
func (m *Method) Decl() *Decl { return m.decl }

// IsMember reports whether m belongs to a record.
func (m *Method) IsMember() bool {
	return m.Parent != nil && m.Parent.kind.IsRecord()
}

// NumParams is the declared parameter count.
func (m *Method) NumParams() int { return len(m.Params) }

// MinRequiredArgs counts parameters before the first default argument.
func (m *Method) MinRequiredArgs() int {
	for i, p := range m.Params {
		if p.HasDefault {
			return i
		}
	}
	return len(m.Params)
}

// UserProvided reports whether the function was declared by the user and
// is neither defaulted nor deleted.
func (m *Method) UserProvided() bool {
	return !m.Defaulted && !m.Deleted
}

// Signature renders the parameter types, as in "(int, const char*) const".
func (m *Method) Signature() string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	if m.Variadic {
		types = append(types, "...")
	}
	s := "(" + strings.Join(types, ", ") + ")"
	if m.Const {
		s += " const"
	}
	return s
}

// Prototype renders the full declaration, as in "int geo::Shape::area() const".
func (m *Method) Prototype() string {
	var b strings.Builder
	if m.Static {
		b.WriteString("static ")
	}
	if m.Virtual {
		b.WriteString("virtual ")
	}
	if m.Return != "" {
		b.WriteString(m.Return)
		b.WriteByte(' ')
	}
	if m.Parent != nil && m.Parent.kind != TranslationUnit {
		b.WriteString(m.Parent.QualifiedName())
		b.WriteString("::")
	}
	b.WriteString(m.Name)
	b.WriteString(m.Signature())
	if m.Pure {
		b.WriteString(" = 0")
	}
	return b.String()
}

// overrideKey identifies the slot a virtual function occupies.
func (m *Method) overrideKey() string {
	if m.Kind == Destructor {
		return "~"
	}
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = Normalize(p.Type)
	}
	key := m.Name + "(" + strings.Join(types, ",") + ")"
	if m.Const {
		key += "const"
	}
	return key
}

// FieldInfo is a data member.
type FieldInfo struct {
	Name   string
	Type   string
	Access Access
	Static bool
	// Count is the total element count for array members, 1 otherwise.
	Count int64
	// HasInit marks a default member initializer.
	HasInit bool
	Parent  *Decl

	typeDecl *Decl // unnamed record member type
}
