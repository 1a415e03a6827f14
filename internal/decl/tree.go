package decl

// Tree owns every Decl reachable from its translation unit.
type Tree struct {
	tu      *Decl
	decls   []*Decl
	layout  LayoutOptions
	closers []func()

	materializations int
	instantiations   int
}

// NewTree creates an empty tree with the given layout parameters.
func NewTree(opts LayoutOptions) *Tree {
	t := &Tree{layout: opts.withDefaults()}
	t.tu = t.newDecl(TranslationUnit, nil, "")
	t.tu.complete = true
	return t
}

// TU returns the translation unit at the root of the tree.
func (t *Tree) TU() *Decl { return t.tu }

// Materializations counts how many deferred scopes have been loaded.
func (t *Tree) Materializations() int { return t.materializations }

// Instantiations counts implicit template specializations created by lookup.
func (t *Tree) Instantiations() int { return t.instantiations }

// ByID returns the declaration with the given ID, or nil.
func (t *Tree) ByID(id int) *Decl {
	if id < 0 || id >= len(t.decls) {
		return nil
	}
	return t.decls[id]
}

// Len is the number of declarations created so far.
func (t *Tree) Len() int { return len(t.decls) }

// OnClose registers a function run by Close, used by builders that keep
// parse trees alive for lazy materialization.
func (t *Tree) OnClose(fn func()) {
	t.closers = append(t.closers, fn)
}

// Close releases resources held for deferred scopes. Scopes that were not
// yet materialized stay empty afterwards.
func (t *Tree) Close() {
	for _, d := range t.decls {
		d.pending = nil
	}
	for i := len(t.closers) - 1; i >= 0; i-- {
		t.closers[i]()
	}
	t.closers = nil
}

func (t *Tree) newDecl(kind Kind, parent *Decl, name string) *Decl {
	d := &Decl{
		id:     len(t.decls),
		kind:   kind,
		name:   name,
		parent: parent,
		tree:   t,
	}
	t.decls = append(t.decls, d)
	return d
}

func (t *Tree) add(parent *Decl, kind Kind, name string) *Decl {
	d := t.newDecl(kind, parent, name)
	if parent != nil {
		parent.children = append(parent.children, d)
		if parent.kind.IsRecord() || parent.kind == ClassTemplate {
			d.access = AccessPublic
		}
	}
	return d
}

// AddNamespace opens a namespace in parent. Calling it again with the same
// name adds a redeclaration, as reopening a namespace does.
func (t *Tree) AddNamespace(parent *Decl, name string) *Decl {
	return t.add(parent, Namespace, name)
}

// AddRecord declares a class, struct or union. complete marks a definition
// as opposed to a forward declaration.
func (t *Tree) AddRecord(parent *Decl, tag TagKind, name string, complete bool) *Decl {
	d := t.add(parent, Record, name)
	d.tag = tag
	d.complete = complete
	return d
}

// AddEnum declares an enum. An enum with no enumerators is still complete
// unless complete is false.
func (t *Tree) AddEnum(parent *Decl, name string, complete bool, enumerators ...string) *Decl {
	d := t.add(parent, Enum, name)
	d.tag = TagEnum
	d.complete = complete
	d.enumerators = enumerators
	return d
}

// AddScopedEnum declares an enum class.
func (t *Tree) AddScopedEnum(parent *Decl, name string, enumerators ...string) *Decl {
	d := t.AddEnum(parent, name, true, enumerators...)
	d.scoped = true
	return d
}

// AddTypedef declares name as an alias for target.
func (t *Tree) AddTypedef(parent *Decl, name, target string) *Decl {
	d := t.add(parent, Typedef, name)
	d.target = Normalize(target)
	return d
}

// AddTypedefOf declares name as an alias for a tag declared without a
// name, as in "typedef struct { ... } Point;".
func (t *Tree) AddTypedefOf(parent *Decl, name string, tag *Decl) *Decl {
	d := t.add(parent, Typedef, name)
	d.aliased = tag
	d.target = tag.QualifiedName()
	return d
}

// AddFieldOf adds a data member whose type is an unnamed record.
func (t *Tree) AddFieldOf(parent *Decl, f FieldInfo, typ *Decl) *FieldInfo {
	fi := t.AddField(parent, f)
	fi.typeDecl = typ
	return fi
}

// AddClassTemplate declares a class template. Members added to the
// returned pattern are copied into each implicit specialization with the
// parameters substituted.
func (t *Tree) AddClassTemplate(parent *Decl, tag TagKind, name string, params ...string) (tmpl, pattern *Decl) {
	tmpl = t.add(parent, ClassTemplate, name)
	tmpl.tag = tag
	tmpl.templateParams = params
	pattern = t.newDecl(Record, parent, name)
	pattern.tag = tag
	pattern.complete = true
	tmpl.pattern = pattern
	return tmpl, pattern
}

// AddSpecialization declares an explicit specialization of tmpl. tmpl may
// be nil when the primary template is not visible.
func (t *Tree) AddSpecialization(parent, tmpl *Decl, tag TagKind, name string, args []string, complete bool) *Decl {
	d := t.add(parent, TemplateSpecialization, name)
	d.tag = tag
	d.complete = complete
	d.template = tmpl
	d.templateArgs = normalizeAll(args)
	return d
}

// AddOther records a declaration the reflection layer does not model
// (variables, using-directives, static asserts).
func (t *Tree) AddOther(parent *Decl, name string) *Decl {
	return t.add(parent, Other, name)
}

// AddMethod adds a function to parent and returns it. m.Parent is set to
// parent.
func (t *Tree) AddMethod(parent *Decl, m *Method) *Method {
	d := t.add(parent, Function, m.Name)
	m.Parent = parent
	m.decl = d
	if m.Access == AccessNone && parent.kind.IsRecord() {
		m.Access = AccessPublic
	}
	d.access = m.Access
	if m.Kind == Ordinary {
		m.Kind = classifyMethod(parent, m)
	}
	d.fn = m
	return m
}

// AddField adds a data member to parent.
func (t *Tree) AddField(parent *Decl, f FieldInfo) *FieldInfo {
	d := t.add(parent, Field, f.Name)
	if f.Count == 0 {
		f.Count = 1
	}
	if f.Access == AccessNone && parent.kind.IsRecord() {
		f.Access = AccessPublic
	}
	f.Type = Normalize(f.Type)
	f.Parent = parent
	d.access = f.Access
	d.field = &f
	return &f
}

// AddBase appends a base specifier naming a known record.
func (t *Tree) AddBase(d, base *Decl, access Access, virtual bool) *Base {
	b := &Base{Name: base.QualifiedName(), Access: access, Virtual: virtual, decl: base, from: d}
	d.bases = append(d.bases, b)
	return b
}

// AddBaseName appends a base specifier resolved by name on first use.
func (t *Tree) AddBaseName(d *Decl, name string, access Access, virtual bool) *Base {
	b := &Base{Name: Normalize(name), Access: access, Virtual: virtual, from: d}
	d.bases = append(d.bases, b)
	return b
}

func classifyMethod(parent *Decl, m *Method) MethodKind {
	if !parent.kind.IsRecord() {
		return Ordinary
	}
	switch {
	case m.Name == parent.name:
		return Constructor
	case m.Name == "~"+parent.name:
		return Destructor
	case m.Name == "operator=":
		if len(m.Params) == 1 && isCopyParam(m.Params[0].Type, parent) {
			return CopyAssign
		}
		return Operator
	case len(m.Name) > 8 && m.Name[:8] == "operator":
		next := m.Name[8]
		if next == ' ' {
			return Conversion
		}
		return Operator
	}
	return Ordinary
}

// isCopyParam matches X, X&, const X&, volatile X& and const volatile X&.
func isCopyParam(typ string, record *Decl) bool {
	s := Normalize(typ)
	if len(s) > 0 && s[len(s)-1] == '&' {
		s = s[:len(s)-1]
		if len(s) > 0 && s[len(s)-1] == '&' {
			return false
		}
	}
	s = stripCV(s)
	return s == record.name || s == record.Name() || s == Normalize(record.Name()) ||
		s == record.QualifiedName() || s == Normalize(record.QualifiedName())
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}
