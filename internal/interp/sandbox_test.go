package interp

import (
	"errors"
	"strconv"
	"testing"

	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
)

type memRecorder struct {
	codes   []string
	results []string
	err     error
}

func (m *memRecorder) Record(code, result string) error {
	m.codes = append(m.codes, code)
	m.results = append(m.results, result)
	return m.err
}

func sandboxTree(t *testing.T) *decl.Tree {
	t.Helper()
	tr := decl.NewTree(decl.DefaultLayout)
	tu := tr.TU()
	geo := tr.AddNamespace(tu, "geo")

	point := tr.AddRecord(geo, decl.TagStruct, "Point", true)
	tr.AddField(point, decl.FieldInfo{Name: "x", Type: "int"})
	tr.AddField(point, decl.FieldInfo{Name: "y", Type: "int"})

	shape := tr.AddRecord(geo, decl.TagClass, "Shape", true)
	tr.AddMethod(shape, &decl.Method{Name: "~Shape", Virtual: true})
	tr.AddMethod(shape, &decl.Method{Name: "area", Return: "double", Const: true, Virtual: true, Pure: true})

	circle := tr.AddRecord(geo, decl.TagClass, "Circle", true)
	tr.AddBase(circle, shape, decl.AccessPublic, false)
	tr.AddMethod(circle, &decl.Method{Name: "area", Return: "double", Const: true})

	needs := tr.AddRecord(geo, decl.TagClass, "NeedsArg", true)
	tr.AddMethod(needs, &decl.Method{Name: "NeedsArg", Params: []decl.Param{{Type: "int"}}})

	tr.AddRecord(geo, decl.TagClass, "Opaque", false)
	return tr
}

func TestSandbox_NewAndDelete(t *testing.T) {
	rec := &memRecorder{}
	s := NewSandbox(sandboxTree(t), rec, nil)

	v, res := s.Evaluate("new geo::Point;")
	if res != Success || !v.IsValid() || v.Pointer() != 65536 {
		t.Fatalf("new = %v %v, want 65536 success", v.Pointer(), res)
	}
	arr, res := s.Evaluate("new geo::Point[3];")
	if res != Success || arr.Pointer() != 65552 {
		t.Fatalf("new[] = %v %v, want 65552 success", arr.Pointer(), res)
	}
	if s.LiveCount() != 2 {
		t.Errorf("LiveCount = %d, want 2", s.LiveCount())
	}

	objs := s.Objects()
	if len(objs) != 2 || objs[0].Type != "geo::Point" || objs[0].Size != 8 || !objs[1].Array || objs[1].Count != 3 {
		t.Errorf("objects = %+v", objs)
	}

	// Shape mismatch between new and delete.
	if res := s.Execute("delete (geo::Point*)65552;"); res != Failure {
		t.Errorf("delete of array = %v, want failure", res)
	}
	if res := s.Execute("delete[] (geo::Point*)65536;"); res != Failure {
		t.Errorf("delete[] of scalar = %v, want failure", res)
	}

	if res := s.Execute("delete (geo::Point*)65536;"); res != Success {
		t.Errorf("delete = %v", res)
	}
	if res := s.Execute("delete (geo::Point*)65536;"); res != Failure {
		t.Errorf("double delete = %v, want failure", res)
	}
	if res := s.Execute("delete[] (geo::Point*)65552;"); res != Success {
		t.Errorf("delete[] = %v", res)
	}
	if res := s.Execute("delete (geo::Point*)0;"); res != Success {
		t.Errorf("delete null = %v", res)
	}
	if s.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0", s.LiveCount())
	}

	if len(rec.codes) != 8 || rec.results[0] != "success" || rec.results[2] != "failure" {
		t.Errorf("recorded %v %v", rec.codes, rec.results)
	}
}

func TestSandbox_Rejects(t *testing.T) {
	s := NewSandbox(sandboxTree(t), nil, nil)

	tests := []struct {
		code string
		want Result
	}{
		{"new geo::Shape;", Failure},
		{"new geo::NeedsArg;", Failure},
		{"new geo::Opaque;", Failure},
		{"new geo::Missing;", Failure},
		{"new geo;", Failure},
		{"new geo::Circle;", Success},
		{"new ((void*)0) geo::Point;", Failure},
		{"new (geo::Point", MoreInputExpected},
		{"((geo::Point*)65536)->geo::Point::~Point(", MoreInputExpected},
		{"x = 1;", Failure},
		{"", Failure},
	}
	for _, tt := range tests {
		if got := s.Execute(tt.code); got != tt.want {
			t.Errorf("Execute(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSandbox_PlacementAndDestruct(t *testing.T) {
	s := NewSandbox(sandboxTree(t), nil, nil)

	v, res := s.Evaluate("new ((void*)4096) geo::Point;")
	if res != Success || v.Pointer() != 4096 {
		t.Fatalf("placement new = %v %v", v.Pointer(), res)
	}
	if res := s.Execute("delete (geo::Point*)4096;"); res != Failure {
		t.Errorf("delete of placement object = %v, want failure", res)
	}
	if res := s.Execute("((geo::Point*)4096)->geo::Point::~Shape();"); res != Failure {
		t.Errorf("wrong destructor name = %v, want failure", res)
	}
	if res := s.Execute("((geo::Point*)4096)->geo::Point::~Point();"); res != Success {
		t.Errorf("destruct = %v", res)
	}
	if s.LiveCount() != 0 {
		t.Errorf("placement object survived destruction")
	}

	if _, res := s.Evaluate("new ((void*)8192) geo::Point[4];"); res != Success {
		t.Errorf("placement new[] = %v", res)
	}
	objs := s.Objects()
	if len(objs) != 1 || !objs[0].Placement || !objs[0].Array || objs[0].Count != 4 {
		t.Errorf("objects = %+v", objs)
	}

	// A heap object stays allocated after an explicit destructor call.
	heap, _ := s.Evaluate("new geo::Circle;")
	addr := heap.Pointer()
	code := "((geo::Circle*)" + itoa(addr) + ")->geo::Circle::~Circle();"
	if res := s.Execute(code); res != Success {
		t.Errorf("destruct heap object = %v", res)
	}
	if res := s.Execute(code); res != Failure {
		t.Errorf("second destruct = %v, want failure", res)
	}
	if res := s.Execute("delete (geo::Circle*)" + itoa(addr) + ";"); res != Failure {
		t.Errorf("delete after destruct = %v, want failure", res)
	}
}

func TestSandbox_PlacementOverExistingObject(t *testing.T) {
	s := NewSandbox(sandboxTree(t), nil, nil)

	if _, res := s.Evaluate("new ((void*)4096) geo::Point;"); res != Success {
		t.Fatalf("placement new = %v", res)
	}
	tests := []struct {
		code string
		want Result
	}{
		{"new ((void*)4096) geo::Point;", Failure},
		{"new ((void*)4100) geo::Point;", Failure},
		{"new ((void*)4092) geo::Point;", Failure},
		{"new ((void*)4104) geo::Point;", Success},
	}
	for _, tt := range tests {
		if _, got := s.Evaluate(tt.code); got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}

	heap, _ := s.Evaluate("new geo::Point;")
	addr := itoa(heap.Pointer())
	if _, res := s.Evaluate("new ((void*)" + addr + ") geo::Point;"); res != Failure {
		t.Errorf("placement over live heap object = %v, want failure", res)
	}

	// Once destroyed, the heap storage can be reused and then deleted.
	if res := s.Execute("((geo::Point*)" + addr + ")->geo::Point::~Point();"); res != Success {
		t.Fatalf("destruct = %v", res)
	}
	if v, res := s.Evaluate("new ((void*)" + addr + ") geo::Point;"); res != Success || v.Pointer() != heap.Pointer() {
		t.Errorf("reuse destroyed storage = %v %v", v.Pointer(), res)
	}
	if _, res := s.Evaluate("new ((void*)" + addr + ") geo::Point[2];"); res != Failure {
		t.Errorf("array over reused storage = %v, want failure", res)
	}
	if res := s.Execute("delete (geo::Point*)" + addr + ";"); res != Success {
		t.Errorf("delete reused storage = %v", res)
	}
	if s.LiveCount() != 2 {
		t.Errorf("LiveCount = %d, want 2", s.LiveCount())
	}
}

func TestSandbox_DeleteThroughBase(t *testing.T) {
	s := NewSandbox(sandboxTree(t), nil, nil)
	v, _ := s.Evaluate("new geo::Circle;")
	if res := s.Execute("delete (geo::Shape*)" + itoa(v.Pointer()) + ";"); res != Success {
		t.Errorf("delete through polymorphic base = %v", res)
	}
}

func TestSandbox_Transactions(t *testing.T) {
	s := NewSandbox(sandboxTree(t), nil, nil)
	outer := s.PushTransaction()
	inner := s.PushTransaction()
	if s.TransactionDepth() != 2 {
		t.Errorf("depth = %d, want 2", s.TransactionDepth())
	}
	inner.Pop()
	inner.Pop()
	if s.TransactionDepth() != 1 {
		t.Errorf("depth after double pop = %d, want 1", s.TransactionDepth())
	}
	outer.Pop()
	if s.TransactionDepth() != 0 || s.Transactions() != 2 {
		t.Errorf("depth = %d, pushed = %d", s.TransactionDepth(), s.Transactions())
	}
}

func TestSandbox_RecorderFailure(t *testing.T) {
	rep := &diag.Recorder{}
	s := NewSandbox(sandboxTree(t), &memRecorder{err: errors.New("disk full")}, rep)
	if res := s.Execute("new geo::Point;"); res != Success {
		t.Errorf("Execute = %v, want success despite recorder error", res)
	}
	if rep.Count(diag.LevelDebug) != 1 {
		t.Errorf("debug messages = %v", rep.Messages())
	}
}

func TestResultString(t *testing.T) {
	for r, want := range map[Result]string{
		Success:           "success",
		Failure:           "failure",
		MoreInputExpected: "more_input_expected",
		Result(9):         "unknown",
	} {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), want)
		}
	}
}

func itoa(p uintptr) string {
	return strconv.FormatUint(uint64(p), 10)
}
