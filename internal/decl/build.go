package decl

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/hargabyte/clsinfo/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Builder fills a Tree from C++ sources parsed with tree-sitter.
//
// Namespace and class bodies are materialized lazily: the syntax tree is
// kept alive and walked the first time a scope's children are requested.
type Builder struct {
	tree   *Tree
	parser *parser.Parser

	// Eager disables lazy materialization.
	Eager bool

	syntaxErrors []*parser.ParseError
}

// NewBuilder creates a builder that adds declarations to t.
func NewBuilder(t *Tree) (*Builder, error) {
	p, err := parser.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	return &Builder{tree: t, parser: p}, nil
}

// Close releases the parser. Parse trees stay alive until the Tree is
// closed.
func (b *Builder) Close() {
	if b.parser != nil {
		b.parser.Close()
		b.parser = nil
	}
}

// SyntaxErrors lists the first syntax error of every source that had one.
// Declarations outside the damaged region are still added.
func (b *Builder) SyntaxErrors() []*parser.ParseError {
	return b.syntaxErrors
}

// AddFile parses a file and adds its top-level declarations.
func (b *Builder) AddFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &parser.FileReadError{Path: path, Err: err}
	}
	return b.AddSource(path, src)
}

// AddSource parses src, recorded under the given file name, and adds its
// top-level declarations to the translation unit.
func (b *Builder) AddSource(file string, src []byte) error {
	res, err := b.parser.Parse(context.Background(), file, src)
	if err != nil {
		return err
	}
	if pe := res.FirstError(); pe != nil {
		b.syntaxErrors = append(b.syntaxErrors, pe)
	}
	b.tree.OnClose(res.Close)

	ctx := &source{res: res, file: file}
	b.addItems(b.tree.tu, res.Root, ctx, nil)
	return nil
}

// LoadFiles builds a tree from the given files. Syntax errors are not
// fatal; unreadable files are.
func LoadFiles(opts LayoutOptions, paths []string) (*Tree, []*parser.ParseError, error) {
	t := NewTree(opts)
	b, err := NewBuilder(t)
	if err != nil {
		return nil, nil, err
	}
	defer b.Close()
	for _, p := range paths {
		if err := b.AddFile(p); err != nil {
			t.Close()
			return nil, nil, err
		}
	}
	return t, b.SyntaxErrors(), nil
}

type source struct {
	res  *parser.ParseResult
	file string
}

func (s *source) text(n *sitter.Node) string {
	return s.res.Text(n)
}

func (s *source) line(n *sitter.Node) uint32 {
	line, _ := parser.Position(n)
	return line
}

// memberState tracks the current access level while walking a class body.
type memberState struct {
	access Access
}

func (b *Builder) deferBody(d *Decl, load func(*Decl)) {
	if b.Eager {
		load(d)
		return
	}
	d.SetLazy(load)
}

// addItems walks the declarations of one scope body. ms is nil outside
// class bodies.
func (b *Builder) addItems(scope *Decl, container *sitter.Node, ctx *source, ms *memberState) {
	var comment []string
	var commentEnd uint32
	hasComment := false

	for i := 0; i < int(container.NamedChildCount()); i++ {
		node := container.NamedChild(i)
		if node == nil {
			continue
		}
		if node.Type() == "comment" {
			row := node.StartPoint().Row
			if !hasComment || row > commentEnd+1 {
				comment = comment[:0]
			}
			// A trailing comment on a ClassDef line titles the class.
			if ms != nil && i > 0 && scope.kind.IsRecord() {
				prev := container.NamedChild(i - 1)
				if prev != nil && prev.EndPoint().Row == row && strings.HasPrefix(ctx.text(prev), "ClassDef") {
					scope.comment = cleanComment(ctx.text(node))
					hasComment = false
					continue
				}
			}
			comment = append(comment, cleanComment(ctx.text(node)))
			commentEnd = node.EndPoint().Row
			hasComment = true
			continue
		}

		doc := ""
		if hasComment && node.StartPoint().Row <= commentEnd+1 {
			doc = strings.TrimSpace(strings.Join(comment, " "))
		}
		hasComment = false
		comment = comment[:0]

		b.addItem(scope, node, ctx, ms, doc)
	}
}

func (b *Builder) addItem(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) {
	switch node.Type() {
	case "access_specifier":
		if ms != nil {
			ms.access = parseAccess(ctx.text(node), ms.access)
		}
	case "namespace_definition":
		b.addNamespace(scope, node, ctx, doc)
	case "class_specifier", "struct_specifier", "union_specifier":
		b.addRecord(scope, node, ctx, ms, doc)
	case "enum_specifier":
		b.addEnum(scope, node, ctx, ms, doc)
	case "declaration", "field_declaration":
		b.addDeclaration(scope, node, ctx, ms, doc)
	case "function_definition":
		b.addFunctionDefinition(scope, node, ctx, ms, doc)
	case "template_declaration":
		b.addTemplate(scope, node, ctx, ms, doc)
	case "type_definition":
		b.addTypedef(scope, node, ctx, ms)
	case "alias_declaration":
		name := node.ChildByFieldName("name")
		typ := node.ChildByFieldName("type")
		if name != nil && typ != nil {
			d := b.tree.AddTypedef(scope, ctx.text(name), ctx.text(typ))
			d.SetLocation(ctx.file, ctx.line(node))
			if ms != nil {
				d.access = ms.access
			}
		}
	case "linkage_specification":
		if body := node.ChildByFieldName("body"); body != nil {
			if body.Type() == "declaration_list" {
				b.addItems(scope, body, ctx, ms)
			} else {
				b.addItem(scope, body, ctx, ms, doc)
			}
		}
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		b.addItems(scope, node, ctx, ms)
	}
}

func parseAccess(text string, cur Access) Access {
	switch {
	case strings.Contains(text, "public"):
		return AccessPublic
	case strings.Contains(text, "protected"):
		return AccessProtected
	case strings.Contains(text, "private"):
		return AccessPrivate
	}
	return cur
}

func (b *Builder) addNamespace(scope *Decl, node *sitter.Node, ctx *source, doc string) {
	var names []string
	if n := node.ChildByFieldName("name"); n != nil {
		names = SplitQualified(ctx.text(n))
	}
	if len(names) == 0 {
		names = []string{""}
	}
	ns := scope
	for _, name := range names {
		ns = b.tree.AddNamespace(ns, strings.TrimPrefix(name, "inline "))
		ns.SetLocation(ctx.file, ctx.line(node))
	}
	ns.comment = doc
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	b.deferBody(ns, func(d *Decl) {
		b.addItems(d, body, ctx, nil)
	})
}

var annotateRe = regexp.MustCompile(`annotate\s*\(\s*"((?:[^"\\]|\\.)*)"`)

// headerAnnotation finds annotate("...") in the part of a specifier that
// precedes its body.
func headerAnnotation(node, body *sitter.Node, ctx *source) string {
	end := node.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	src := ctx.res.Source
	if int(end) > len(src) || node.StartByte() > end {
		return ""
	}
	m := annotateRe.FindSubmatch(src[node.StartByte():end])
	if m == nil {
		return ""
	}
	return string(m[1])
}

func tagOf(nodeType string) TagKind {
	switch nodeType {
	case "class_specifier":
		return TagClass
	case "struct_specifier":
		return TagStruct
	case "union_specifier":
		return TagUnion
	case "enum_specifier":
		return TagEnum
	}
	return TagNone
}

// specifierName returns the declared name of a specifier. For template-ids
// it also returns the argument spellings.
func specifierName(node *sitter.Node, ctx *source) (name string, args []string, isTemplateID bool) {
	n := node.ChildByFieldName("name")
	if n == nil {
		return "", nil, false
	}
	text := Normalize(ctx.text(n))
	parts := SplitQualified(text)
	if len(parts) > 0 {
		text = parts[len(parts)-1]
	}
	base, args, ok := SplitTemplateID(text)
	return base, args, ok
}

func (b *Builder) addRecord(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) *Decl {
	name, args, isTemplateID := specifierName(node, ctx)
	body := node.ChildByFieldName("body")
	tag := tagOf(node.Type())

	var d *Decl
	if isTemplateID {
		d = b.tree.AddSpecialization(scope, findTemplate(scope, name), tag, name, args, body != nil)
	} else {
		d = b.tree.AddRecord(scope, tag, name, body != nil)
	}
	b.fillRecord(d, node, body, ctx, ms, doc)
	return d
}

func (b *Builder) fillRecord(d *Decl, node, body *sitter.Node, ctx *source, ms *memberState, doc string) {
	d.SetLocation(ctx.file, ctx.line(node))
	d.comment = doc
	d.annotation = headerAnnotation(node, body, ctx)
	if ms != nil {
		d.access = ms.access
	}
	if body == nil {
		return
	}
	var clause *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c != nil && c.Type() == "base_class_clause" {
			clause = c
		}
	}
	defaultAccess := AccessPublic
	if d.tag == TagClass {
		defaultAccess = AccessPrivate
	}
	b.deferBody(d, func(d *Decl) {
		if clause != nil {
			b.addBases(d, clause, ctx, defaultAccess)
		}
		b.addItems(d, body, ctx, &memberState{access: defaultAccess})
	})
}

func findTemplate(scope *Decl, name string) *Decl {
	for _, s := range scope.Redeclarations() {
		for _, c := range s.Children() {
			if c.kind == ClassTemplate && c.name == name {
				return c
			}
		}
	}
	return nil
}

// addBases reads "public A, virtual protected B<int>" from a base clause.
func (b *Builder) addBases(d *Decl, clause *sitter.Node, ctx *source, defaultAccess Access) {
	access := defaultAccess
	virtual := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		if c == nil {
			continue
		}
		text := ctx.text(c)
		switch c.Type() {
		case "access_specifier":
			access = parseAccess(text, access)
			continue
		case ",":
			access, virtual = defaultAccess, false
			continue
		case ":", "comment":
			continue
		}
		switch text {
		case "virtual":
			virtual = true
		case "public", "protected", "private":
			access = parseAccess(text, access)
		default:
			if c.IsNamed() {
				b.tree.AddBaseName(d, text, access, virtual)
			}
		}
	}
}

func (b *Builder) addEnum(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) *Decl {
	name, _, _ := specifierName(node, ctx)
	body := node.ChildByFieldName("body")
	var enumerators []string
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			if c == nil || c.Type() != "enumerator" {
				continue
			}
			if n := c.ChildByFieldName("name"); n != nil {
				enumerators = append(enumerators, ctx.text(n))
			}
		}
	}
	d := b.tree.AddEnum(scope, name, body != nil, enumerators...)
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c != nil && !c.IsNamed() {
			if t := ctx.text(c); t == "class" || t == "struct" {
				d.scoped = true
			}
		}
	}
	d.SetLocation(ctx.file, ctx.line(node))
	d.comment = doc
	d.annotation = headerAnnotation(node, body, ctx)
	if ms != nil {
		d.access = ms.access
	}
	return d
}

// addTagFromType handles a class, struct, union or enum specifier used as
// the type of a declaration. It returns the declared tag when the
// specifier has a body or is a bare forward declaration.
func (b *Builder) addTagFromType(scope *Decl, typ *sitter.Node, ctx *source, ms *memberState, doc string, bare bool) *Decl {
	if typ == nil {
		return nil
	}
	switch typ.Type() {
	case "class_specifier", "struct_specifier", "union_specifier":
		if typ.ChildByFieldName("body") != nil || bare {
			return b.addRecord(scope, typ, ctx, ms, doc)
		}
	case "enum_specifier":
		if typ.ChildByFieldName("body") != nil || bare {
			return b.addEnum(scope, typ, ctx, ms, doc)
		}
	}
	return nil
}

var declaratorTypes = map[string]bool{
	"identifier":               true,
	"field_identifier":         true,
	"type_identifier":          true,
	"pointer_declarator":       true,
	"reference_declarator":     true,
	"array_declarator":         true,
	"function_declarator":      true,
	"parenthesized_declarator": true,
	"init_declarator":          true,
	"qualified_identifier":     true,
	"destructor_name":          true,
	"operator_name":            true,
	"template_function":        true,
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() &&
		a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// declarators returns the declarator children of a declaration node.
func declarators(node *sitter.Node) []*sitter.Node {
	typ := node.ChildByFieldName("type")
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c == nil || !declaratorTypes[c.Type()] || sameNode(c, typ) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// shape is what a declarator chain says about one declared entity.
type shape struct {
	name      string
	suffix    string // pointer and reference markers applied to the base type
	fn        *sitter.Node
	fnPointer bool // a function pointer rather than a function
	count     int64
	qualified bool
	hasInit   bool
}

func innerDeclarator(n *sitter.Node) *sitter.Node {
	if d := n.ChildByFieldName("declarator"); d != nil {
		return d
	}
	if k := int(n.NamedChildCount()); k > 0 {
		return n.NamedChild(k - 1)
	}
	return nil
}

func readShape(n *sitter.Node, ctx *source) shape {
	s := shape{count: 1}
	for depth := 0; n != nil && depth < 32; depth++ {
		switch n.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			if s.fn != nil {
				s.fnPointer = true
			} else {
				s.suffix += "*"
			}
			n = n.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if strings.HasPrefix(ctx.text(n), "&&") {
				s.suffix += "&&"
			} else {
				s.suffix += "&"
			}
			n = innerDeclarator(n)
		case "array_declarator", "abstract_array_declarator":
			if size := n.ChildByFieldName("size"); size != nil {
				if v, err := strconv.ParseInt(strings.TrimRight(ctx.text(size), "uUlL"), 0, 64); err == nil && v > 0 {
					s.count *= v
				}
			}
			n = n.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			if s.fn == nil {
				s.fn = n
			}
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			if n.NamedChildCount() == 0 {
				return s
			}
			n = n.NamedChild(0)
		case "init_declarator":
			s.hasInit = true
			n = n.ChildByFieldName("declarator")
		case "qualified_identifier":
			s.qualified = true
			s.name = Normalize(ctx.text(n))
			return s
		default:
			s.name = Normalize(ctx.text(n))
			return s
		}
	}
	return s
}

// baseType renders the declared type of a declaration node without the
// declarator parts: qualifiers plus the type specifier.
func baseType(node *sitter.Node, ctx *source) string {
	typ := node.ChildByFieldName("type")
	if typ == nil {
		return ""
	}
	var quals []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c != nil && c.Type() == "type_qualifier" && c.StartByte() < typ.StartByte() {
			quals = append(quals, ctx.text(c))
		}
	}
	text := ctx.text(typ)
	switch typ.Type() {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if n := typ.ChildByFieldName("name"); n != nil {
			text = ctx.text(n)
		} else {
			text = ""
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c != nil && c.Type() == "type_qualifier" && c.StartByte() > typ.StartByte() && !isAfterDeclarator(node, c) {
			quals = append(quals, ctx.text(c))
		}
	}
	if len(quals) > 0 && text != "" {
		return Normalize(strings.Join(quals, " ") + " " + text)
	}
	return Normalize(text)
}

func isAfterDeclarator(node, c *sitter.Node) bool {
	for _, d := range declarators(node) {
		if c.StartByte() >= d.StartByte() {
			return true
		}
	}
	return false
}

type specifiers struct {
	static, virtual, explicit, pure, defaulted, deleted bool
}

func readSpecifiers(node *sitter.Node, ctx *source) specifiers {
	var sp specifiers
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "storage_class_specifier":
			if ctx.text(c) == "static" {
				sp.static = true
			}
		case "virtual", "virtual_function_specifier":
			sp.virtual = true
		case "explicit_function_specifier":
			sp.explicit = true
		case "default_method_clause":
			sp.defaulted = true
		case "delete_method_clause":
			sp.deleted = true
		case "pure_virtual_clause":
			sp.pure = true
		default:
			switch ctx.text(c) {
			case "virtual":
				sp.virtual = true
			case "explicit":
				sp.explicit = true
			}
		}
	}
	if v := node.ChildByFieldName("default_value"); v != nil {
		switch Normalize(ctx.text(v)) {
		case "0":
			sp.pure = true
		case "default":
			sp.defaulted = true
		case "delete":
			sp.deleted = true
		}
	}
	tail := Normalize(ctx.text(node))
	switch {
	case strings.HasSuffix(tail, "=default;"):
		sp.defaulted = true
	case strings.HasSuffix(tail, "=delete;"):
		sp.deleted = true
	case strings.HasSuffix(tail, "=0;"):
		sp.pure = true
	}
	return sp
}

// readFunction turns a function declarator into a Method.
func (b *Builder) readFunction(node *sitter.Node, s shape, ctx *source) *Method {
	sp := readSpecifiers(node, ctx)
	m := &Method{
		Name:      s.name,
		Static:    sp.static,
		Virtual:   sp.virtual || sp.pure,
		Pure:      sp.pure,
		Explicit:  sp.explicit,
		Defaulted: sp.defaulted,
		Deleted:   sp.deleted,
		File:      ctx.file,
		Line:      ctx.line(node),
	}
	if rt := baseType(node, ctx); rt != "" {
		m.Return = Normalize(rt + s.suffix)
	}
	fn := s.fn
	for i := 0; i < int(fn.ChildCount()); i++ {
		c := fn.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "type_qualifier":
			if ctx.text(c) == "const" {
				m.Const = true
			}
		case "virtual_specifier":
			m.Virtual = true
		}
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		m.Params, m.Variadic = readParams(params, ctx)
	}
	return m
}

func readParams(list *sitter.Node, ctx *source) ([]Param, bool) {
	var params []Param
	variadic := false
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
			typ := baseType(c, ctx)
			var name string
			if d := c.ChildByFieldName("declarator"); d != nil {
				s := readShape(d, ctx)
				name = s.name
				typ = Normalize(typ + s.suffix)
				if s.count > 1 || d.Type() == "array_declarator" || d.Type() == "abstract_array_declarator" {
					typ += "*"
				}
				if s.fn != nil {
					typ += "(*)()"
				}
			}
			if typ == "void" && name == "" {
				continue
			}
			params = append(params, Param{
				Name:       name,
				Type:       typ,
				HasDefault: c.Type() == "optional_parameter_declaration" || c.ChildByFieldName("default_value") != nil,
			})
		case "variadic_parameter_declaration", "...":
			variadic = true
		}
	}
	return params, variadic
}

func (b *Builder) addDeclaration(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) {
	decls := declarators(node)
	tag := b.addTagFromType(scope, node.ChildByFieldName("type"), ctx, ms, doc, len(decls) == 0)
	typ := baseType(node, ctx)
	sp := readSpecifiers(node, ctx)
	access := AccessNone
	if ms != nil {
		access = ms.access
	}

	for _, dn := range decls {
		s := readShape(dn, ctx)
		if s.qualified || s.name == "" {
			continue
		}
		if s.fn != nil && !s.fnPointer {
			m := b.readFunction(node, s, ctx)
			m.Access = access
			b.tree.AddMethod(scope, m)
			m.decl.comment = doc
			continue
		}
		fieldType := typ + s.suffix
		if s.fnPointer {
			fieldType = typ + "(*)()"
		}
		if ms == nil && !scope.kind.IsRecord() {
			o := b.tree.AddOther(scope, s.name)
			o.SetLocation(ctx.file, ctx.line(node))
			continue
		}
		f := FieldInfo{
			Name:    s.name,
			Type:    fieldType,
			Access:  access,
			Static:  sp.static,
			Count:   s.count,
			HasInit: s.hasInit || node.ChildByFieldName("default_value") != nil,
		}
		if tag != nil && tag.name == "" && s.suffix == "" {
			b.tree.AddFieldOf(scope, f, tag)
		} else {
			b.tree.AddField(scope, f)
		}
	}

	// An unnamed union or struct member contributes a field of its own.
	if len(decls) == 0 && tag != nil && tag.name == "" && tag.kind.IsRecord() && scope.kind.IsRecord() {
		b.tree.AddFieldOf(scope, FieldInfo{Access: access}, tag)
	}
}

func (b *Builder) addFunctionDefinition(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) {
	dn := node.ChildByFieldName("declarator")
	if dn == nil {
		return
	}
	s := readShape(dn, ctx)
	if s.fn == nil || s.qualified || s.name == "" {
		// Out-of-line member definitions were declared in their class.
		return
	}
	b.addTagFromType(scope, node.ChildByFieldName("type"), ctx, ms, "", false)
	m := b.readFunction(node, s, ctx)
	if ms != nil {
		m.Access = ms.access
	}
	b.tree.AddMethod(scope, m)
	m.decl.comment = doc
}

func (b *Builder) addTypedef(scope *Decl, node *sitter.Node, ctx *source, ms *memberState) {
	typNode := node.ChildByFieldName("type")
	tag := b.addTagFromType(scope, typNode, ctx, ms, "", false)
	typ := baseType(node, ctx)
	for _, dn := range declarators(node) {
		s := readShape(dn, ctx)
		if s.name == "" {
			continue
		}
		var d *Decl
		if tag != nil && tag.name == "" && s.suffix == "" {
			d = b.tree.AddTypedefOf(scope, s.name, tag)
		} else {
			d = b.tree.AddTypedef(scope, s.name, typ+s.suffix)
		}
		d.SetLocation(ctx.file, ctx.line(node))
		if ms != nil {
			d.access = ms.access
		}
	}
}

// templateParams lists the names declared by a template parameter list.
func templateParams(list *sitter.Node, ctx *source) []string {
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if c == nil {
			continue
		}
		var name string
		switch c.Type() {
		case "type_parameter_declaration", "variadic_type_parameter_declaration":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if n := c.NamedChild(j); n != nil && n.Type() == "type_identifier" {
					name = ctx.text(n)
				}
			}
		case "optional_type_parameter_declaration":
			if n := c.ChildByFieldName("name"); n != nil {
				name = ctx.text(n)
			}
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			if d := c.ChildByFieldName("declarator"); d != nil {
				name = readShape(d, ctx).name
			}
		case "template_template_parameter_declaration":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if n := c.NamedChild(j); n != nil && n.Type() == "type_parameter_declaration" {
					for k := 0; k < int(n.NamedChildCount()); k++ {
						if id := n.NamedChild(k); id != nil && id.Type() == "type_identifier" {
							name = ctx.text(id)
						}
					}
				}
			}
		}
		out = append(out, name)
	}
	return out
}

func (b *Builder) addTemplate(scope *Decl, node *sitter.Node, ctx *source, ms *memberState, doc string) {
	var params []string
	if list := node.ChildByFieldName("parameters"); list != nil {
		params = templateParams(list, ctx)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "class_specifier", "struct_specifier", "union_specifier":
			b.addTemplatedRecord(scope, c, params, ctx, ms, doc)
			return
		case "declaration", "field_declaration":
			if typ := c.ChildByFieldName("type"); typ != nil && len(declarators(c)) == 0 {
				switch typ.Type() {
				case "class_specifier", "struct_specifier", "union_specifier":
					b.addTemplatedRecord(scope, typ, params, ctx, ms, doc)
					return
				}
			}
			return
		case "function_definition", "template_declaration", "alias_declaration":
			// Function templates, member templates and alias templates are
			// not reflected.
			return
		}
	}
}

func (b *Builder) addTemplatedRecord(scope *Decl, node *sitter.Node, params []string, ctx *source, ms *memberState, doc string) {
	name, _, isTemplateID := specifierName(node, ctx)
	body := node.ChildByFieldName("body")
	if isTemplateID {
		if len(params) > 0 {
			// Partial specializations are not modeled.
			return
		}
		b.addRecord(scope, node, ctx, ms, doc)
		return
	}
	if body == nil {
		return
	}
	tmpl, pattern := b.tree.AddClassTemplate(scope, tagOf(node.Type()), name, params...)
	tmpl.SetLocation(ctx.file, ctx.line(node))
	tmpl.comment = doc
	tmpl.annotation = headerAnnotation(node, body, ctx)
	if ms != nil {
		tmpl.access = ms.access
	}
	b.fillRecord(pattern, node, body, ctx, nil, doc)
}

// cleanComment strips comment markers and joins the lines.
func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		text = strings.TrimLeft(text, "*!")
		var lines []string
		for _, l := range strings.Split(text, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
			if l != "" {
				lines = append(lines, l)
			}
		}
		return strings.Join(lines, " ")
	}
	text = strings.TrimLeft(text, "/!<")
	return strings.TrimSpace(text)
}
