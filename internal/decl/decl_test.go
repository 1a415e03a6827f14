package decl

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"  unsigned   long ", "unsigned long"},
		{"std::pair< int , unsigned  long >", "std::pair<int,unsigned long>"},
		{"const char *", "const char*"},
		{"vector<vector<int> >", "vector<vector<int>>"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A", []string{"A"}},
		{"::A::B", []string{"A", "B"}},
		{"std::map<std::string,int>::iterator", []string{"std", "map<std::string,int>", "iterator"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitQualified(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitQualified(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitTemplateID(t *testing.T) {
	base, args, ok := SplitTemplateID("pair<int, vector<char> >")
	if !ok || base != "pair" {
		t.Fatalf("SplitTemplateID base = %q ok = %v", base, ok)
	}
	if want := []string{"int", "vector<char>"}; !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
	if _, _, ok := SplitTemplateID("Point"); ok {
		t.Error("plain name reported as template-id")
	}
	if got := StripTemplateArgs("Box<int>"); got != "Box" {
		t.Errorf("StripTemplateArgs = %q", got)
	}
}

func TestSubstitute(t *testing.T) {
	got := substitute("const T& (*)(Tx, T)", []string{"T"}, []string{"int"})
	if got != "const int& (*)(Tx, int)" {
		t.Errorf("substitute = %q", got)
	}
}

func TestDecl_Names(t *testing.T) {
	tr := NewTree(DefaultLayout)
	geo := tr.AddNamespace(tr.TU(), "geo")
	pt := tr.AddRecord(geo, TagStruct, "Point", true)
	anon := tr.AddNamespace(geo, "")
	hidden := tr.AddRecord(anon, TagClass, "Hidden", true)
	pair := tr.AddSpecialization(tr.TU(), nil, TagStruct, "pair", []string{"int", "std::vector<char,alloc>"}, true)

	tests := []struct {
		d         *Decl
		name      string
		qualified string
	}{
		{tr.TU(), "", ""},
		{geo, "geo", "geo"},
		{pt, "Point", "geo::Point"},
		{hidden, "Hidden", "geo::(anonymous namespace)::Hidden"},
		{pair, "pair<int, std::vector<char, alloc>>", "pair<int, std::vector<char, alloc>>"},
	}
	for _, tt := range tests {
		if got := tt.d.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
		if got := tt.d.QualifiedName(); got != tt.qualified {
			t.Errorf("QualifiedName() = %q, want %q", got, tt.qualified)
		}
	}
	if pair.Identifier() != "pair" {
		t.Errorf("Identifier() = %q", pair.Identifier())
	}
}

func TestDecl_Redeclarations(t *testing.T) {
	tr := NewTree(DefaultLayout)
	ns1 := tr.AddNamespace(tr.TU(), "geo")
	fwd := tr.AddRecord(ns1, TagClass, "Shape", false)
	ns2 := tr.AddNamespace(tr.TU(), "geo")
	def := tr.AddRecord(ns2, TagClass, "Shape", true)
	lone := tr.AddRecord(ns2, TagClass, "Lonely", false)

	if got := fwd.Definition(); got != def {
		t.Errorf("Definition() of forward declaration = %v, want the definition", got)
	}
	if lone.Definition() != nil {
		t.Error("forward declaration without definition should have none")
	}
	if !fwd.IsCanonical() || def.IsCanonical() {
		t.Errorf("IsCanonical: fwd=%v def=%v", fwd.IsCanonical(), def.IsCanonical())
	}
	if !ns1.IsCanonical() || ns2.IsCanonical() {
		t.Errorf("namespace IsCanonical: first=%v second=%v", ns1.IsCanonical(), ns2.IsCanonical())
	}
	if got := ns2.Redeclarations(); len(got) != 2 || got[0] != ns1 {
		t.Errorf("Redeclarations() = %v", got)
	}
	if !Same(fwd, def) {
		t.Error("Same(fwd, def) = false")
	}
	if Same(fwd, lone) {
		t.Error("Same(fwd, lone) = true")
	}
}

func TestDecl_IsInStd(t *testing.T) {
	tr := NewTree(DefaultLayout)
	std := tr.AddNamespace(tr.TU(), "std")
	str := tr.AddRecord(std, TagClass, "string", true)
	inner := tr.AddRecord(str, TagStruct, "Rep", true)
	if !str.IsInStd() {
		t.Error("std::string not in std")
	}
	if inner.IsInStd() || std.IsInStd() || tr.TU().IsInStd() {
		t.Error("only direct members of std are in std")
	}
}

func TestDecl_Lazy(t *testing.T) {
	tr := NewTree(DefaultLayout)
	ns := tr.AddNamespace(tr.TU(), "lazy")
	calls := 0
	ns.SetLazy(func(d *Decl) {
		calls++
		tr.AddRecord(d, TagStruct, "Inner", true)
	})
	if ns.IsMaterialized() {
		t.Fatal("namespace materialized before use")
	}
	if !ns.HasChildren() {
		t.Fatal("HasChildren() = false")
	}
	ns.Children()
	if calls != 1 || tr.Materializations() != 1 {
		t.Errorf("loader calls = %d, materializations = %d", calls, tr.Materializations())
	}
}

func TestTree_Close(t *testing.T) {
	tr := NewTree(DefaultLayout)
	ns := tr.AddNamespace(tr.TU(), "n")
	ns.SetLazy(func(d *Decl) { tr.AddRecord(d, TagStruct, "S", true) })
	closed := 0
	tr.OnClose(func() { closed++ })
	tr.Close()
	if closed != 1 {
		t.Errorf("closers run %d times", closed)
	}
	if len(ns.Children()) != 0 {
		t.Error("unmaterialized scope loaded after Close")
	}
}

func TestMethod(t *testing.T) {
	tr := NewTree(DefaultLayout)
	c := tr.AddRecord(tr.TU(), TagClass, "Counter", true)
	ctor := tr.AddMethod(c, &Method{Name: "Counter", Params: []Param{{Name: "start", Type: "int", HasDefault: true}}})
	dtor := tr.AddMethod(c, &Method{Name: "~Counter"})
	assign := tr.AddMethod(c, &Method{Name: "operator=", Params: []Param{{Type: "const Counter&"}}, Return: "Counter&"})
	plus := tr.AddMethod(c, &Method{Name: "operator+", Params: []Param{{Type: "int"}}, Return: "Counter"})
	conv := tr.AddMethod(c, &Method{Name: "operator int", Const: true})
	get := tr.AddMethod(c, &Method{Name: "get", Return: "int", Const: true, Params: []Param{{Type: "int"}, {Type: "const char*", HasDefault: true}}})

	kinds := map[*Method]MethodKind{
		ctor: Constructor, dtor: Destructor, assign: CopyAssign,
		plus: Operator, conv: Conversion, get: Ordinary,
	}
	for m, want := range kinds {
		if m.Kind != want {
			t.Errorf("%s kind = %v, want %v", m.Name, m.Kind, want)
		}
	}
	if ctor.MinRequiredArgs() != 0 || get.MinRequiredArgs() != 1 || get.NumParams() != 2 {
		t.Error("MinRequiredArgs/NumParams mismatch")
	}
	if got := get.Signature(); got != "(int, const char*) const" {
		t.Errorf("Signature() = %q", got)
	}
	if got := get.Prototype(); got != "int Counter::get(int, const char*) const" {
		t.Errorf("Prototype() = %q", got)
	}
	if !get.IsMember() || get.Access != AccessPublic {
		t.Error("member defaults wrong")
	}
	free := tr.AddMethod(tr.TU(), &Method{Name: "helper", Return: "void"})
	if free.IsMember() || free.Access != AccessNone {
		t.Error("free function reported as public member")
	}
}
