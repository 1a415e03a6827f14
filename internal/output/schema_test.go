package output

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/journal"
	"github.com/hargabyte/clsinfo/internal/lookup"
)

// newTree builds:
//
//	struct A { int a; void fa(); };
//	struct B { int b; void fb(int) const; };
//	struct C : A, B {};
//	namespace ns { enum E { X }; }
func newTree(t *testing.T) (*decl.Tree, *lookup.Resolver) {
	t.Helper()
	tr := decl.NewTree(decl.DefaultLayout)
	tu := tr.TU()

	a := tr.AddRecord(tu, decl.TagStruct, "A", true)
	tr.AddField(a, decl.FieldInfo{Name: "a", Type: "int"})
	tr.AddMethod(a, &decl.Method{Name: "fa", Return: "void"})

	b := tr.AddRecord(tu, decl.TagStruct, "B", true)
	tr.AddField(b, decl.FieldInfo{Name: "b", Type: "int"})
	tr.AddMethod(b, &decl.Method{Name: "fb", Return: "void", Const: true, Params: []decl.Param{{Type: "int"}}})

	c := tr.AddRecord(tu, decl.TagStruct, "C", true)
	tr.AddBase(c, a, decl.AccessPublic, false)
	tr.AddBase(c, b, decl.AccessPublic, false)
	c.SetLocation("abc.h", 3)

	ns := tr.AddNamespace(tu, "ns")
	tr.AddEnum(ns, "E", true, "X")
	return tr, lookup.NewResolver(tr, nil)
}

func TestPropertyNames(t *testing.T) {
	got := PropertyNames(classinfo.IsClass | classinfo.IsAbstract | classinfo.IsCPPCompiled)
	want := []string{"class", "abstract", "cpp_compiled"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PropertyNames = %v, want %v", got, want)
	}
	if PropertyNames(0) != nil {
		t.Error("no bits should give no names")
	}

	got = ClassPropertyNames(classinfo.ClassIsValid | classinfo.ClassHasVirtual)
	want = []string{"valid", "virtual"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClassPropertyNames = %v, want %v", got, want)
	}
}

func TestNewEntityOutput(t *testing.T) {
	_, res := newTree(t)
	box := interp.NewSandbox(res.Tree(), nil, nil)
	rep := diag.Discard{}

	c := NewEntityOutput(classinfo.ForName(res, box, rep, "C"), true)
	if c == nil {
		t.Fatal("C did not resolve")
	}
	if c.Name != "C" || c.Kind != "record" || c.Tag != "struct" {
		t.Errorf("identity = %q %q %q", c.Name, c.Kind, c.Tag)
	}
	if c.Location != "abc.h:3" {
		t.Errorf("location = %q", c.Location)
	}
	if c.Size != 8 || !c.Loaded || !c.DefaultConstructible {
		t.Errorf("size = %d, loaded = %v, default constructible = %v", c.Size, c.Loaded, c.DefaultConstructible)
	}
	if !reflect.DeepEqual(c.Property, []string{"struct", "cpp_compiled"}) {
		t.Errorf("property = %v", c.Property)
	}
	if !reflect.DeepEqual(c.ClassProperty, []string{"valid"}) {
		t.Errorf("class property = %v", c.ClassProperty)
	}

	wantBases := []BaseOutput{
		{Name: "A", Offset: 0, Access: "public", Depth: 1},
		{Name: "B", Offset: 4, Access: "public", Depth: 1},
	}
	if !reflect.DeepEqual(c.Bases, wantBases) {
		t.Errorf("bases = %+v", c.Bases)
	}

	b := NewEntityOutput(classinfo.ForName(res, box, rep, "B"), true)
	if len(b.Methods) != 1 || b.Methods[0] != "public fb(int) const" {
		t.Errorf("methods = %v", b.Methods)
	}

	brief := NewEntityOutput(classinfo.ForName(res, box, rep, "C"), false)
	if brief.Bases != nil || brief.Methods != nil {
		t.Error("brief output must not carry bases or methods")
	}

	e := NewEntityOutput(classinfo.ForName(res, box, rep, "ns::E"), true)
	if e.Kind != "enum" || e.Size != 0 || !reflect.DeepEqual(e.Property, []string{"enum", "cpp_compiled"}) {
		t.Errorf("enum = %+v", e)
	}

	if NewEntityOutput(classinfo.ForName(res, box, rep, "Missing"), true) != nil {
		t.Error("unresolved name must give nil")
	}
}

func TestNewMethodOutput(t *testing.T) {
	_, res := newTree(t)
	c := classinfo.ForName(res, nil, diag.Discard{}, "C")

	mi, offset := c.GetMethod("fb", "int", false, classinfo.ConversionMatch)
	out := NewMethodOutput("C", "fb", mi, offset)
	if !out.Found || out.Offset != 4 || out.NArg != 1 || out.NDefaultArg != 0 {
		t.Errorf("fb = %+v", out)
	}
	if !strings.Contains(out.Prototype, "B::fb(int) const") {
		t.Errorf("prototype = %q", out.Prototype)
	}

	mi, offset = c.GetMethod("nope", "", false, classinfo.ConversionMatch)
	out = NewMethodOutput("C", "nope", mi, offset)
	if out.Found || out.Prototype != "" || out.Offset != 0 {
		t.Errorf("missing method = %+v", out)
	}
}

func TestNewSnippetAndObjectOutputs(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snippets := NewSnippetOutputs([]journal.Entry{
		{ID: 7, Session: "s1", Code: "new A;", Result: "success", ExecutedAt: at},
	})
	if len(snippets) != 1 || snippets[0].ExecutedAt != "2026-03-01T12:00:00Z" || snippets[0].Code != "new A;" {
		t.Errorf("snippets = %+v", snippets[0])
	}
	if got := NewSnippetOutputs(nil); got == nil || len(got) != 0 {
		t.Error("empty journal must give an empty, non-nil list")
	}

	objects := NewObjectOutputs([]interp.Object{{Addr: 65536, Type: "A", Count: 2, Size: 8, Array: true}})
	if len(objects) != 1 || objects[0].Address != 65536 || !objects[0].Array {
		t.Errorf("objects = %+v", objects[0])
	}
}
