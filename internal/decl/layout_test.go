package decl

import "testing"

func addFields(tr *Tree, d *Decl, fields ...FieldInfo) {
	for _, f := range fields {
		tr.AddField(d, f)
	}
}

func TestTree_LayoutPlainStruct(t *testing.T) {
	tr := NewTree(DefaultLayout)
	s := tr.AddRecord(tr.TU(), TagStruct, "Mixed", true)
	addFields(tr, s,
		FieldInfo{Name: "c", Type: "char"},
		FieldInfo{Name: "d", Type: "double"},
		FieldInfo{Name: "arr", Type: "short", Count: 3},
	)
	l := tr.Layout(s)
	if l == nil {
		t.Fatal("Layout() = nil")
	}
	if l.Size != 24 || l.Align != 8 {
		t.Errorf("size/align = %d/%d, want 24/8", l.Size, l.Align)
	}
	if l.FieldOffsets["d"] != 8 || l.FieldOffsets["arr"] != 16 {
		t.Errorf("field offsets = %v", l.FieldOffsets)
	}
}

func TestTree_LayoutEmptyAndUnion(t *testing.T) {
	tr := NewTree(DefaultLayout)
	empty := tr.AddRecord(tr.TU(), TagStruct, "Empty", true)
	if got := tr.SizeOf(empty); got != 1 {
		t.Errorf("empty struct size = %d, want 1", got)
	}

	u := tr.AddRecord(tr.TU(), TagUnion, "Bits", true)
	addFields(tr, u, FieldInfo{Name: "i", Type: "int"}, FieldInfo{Name: "d", Type: "double"}, FieldInfo{Name: "c", Type: "char", Count: 12})
	if got := tr.SizeOf(u); got != 16 {
		t.Errorf("union size = %d, want 16", got)
	}

	derived := tr.AddRecord(tr.TU(), TagStruct, "FromEmpty", true)
	tr.AddBase(derived, empty, AccessPublic, false)
	addFields(tr, derived, FieldInfo{Name: "x", Type: "int"})
	if got := tr.SizeOf(derived); got != 4 {
		t.Errorf("empty base not optimized away: size = %d", got)
	}
}

func TestTree_LayoutDynamic(t *testing.T) {
	tr := NewTree(DefaultLayout)
	v := tr.AddRecord(tr.TU(), TagClass, "Base", true)
	tr.AddMethod(v, &Method{Name: "~Base", Virtual: true})
	addFields(tr, v, FieldInfo{Name: "a", Type: "int"})

	d := tr.AddRecord(tr.TU(), TagClass, "Derived", true)
	tr.AddBase(d, v, AccessPublic, false)
	addFields(tr, d, FieldInfo{Name: "b", Type: "int"})

	bl := tr.Layout(v)
	if !bl.HasVPtr || bl.Size != 16 || bl.NonVirtualSize != 12 || bl.FieldOffsets["a"] != 8 {
		t.Errorf("base layout = %+v", bl)
	}
	dl := tr.Layout(d)
	if dl.PrimaryBase != v {
		t.Errorf("primary base = %v", dl.PrimaryBase)
	}
	// b reuses the tail padding of the dynamic base.
	if dl.FieldOffsets["b"] != 12 || dl.Size != 16 {
		t.Errorf("derived layout: b at %d, size %d", dl.FieldOffsets["b"], dl.Size)
	}
}

func TestTree_LayoutVirtualBase(t *testing.T) {
	tr := NewTree(DefaultLayout)
	vb := tr.AddRecord(tr.TU(), TagStruct, "VB", true)
	addFields(tr, vb, FieldInfo{Name: "v", Type: "int"})
	l := tr.AddRecord(tr.TU(), TagStruct, "L", true)
	tr.AddBase(l, vb, AccessPublic, true)
	addFields(tr, l, FieldInfo{Name: "l", Type: "int"})

	ll := tr.Layout(l)
	if ll.VirtualBaseOffsets[vb] != 12 || ll.Size != 16 {
		t.Errorf("virtual base at %d, size %d", ll.VirtualBaseOffsets[vb], ll.Size)
	}
}

func TestTree_LayoutUnknowns(t *testing.T) {
	tr := NewTree(LayoutOptions{PointerSize: 4, LongSize: 4})
	s := tr.AddRecord(tr.TU(), TagStruct, "S", true)
	addFields(tr, s,
		FieldInfo{Name: "p", Type: "Opaque*"},
		FieldInfo{Name: "n", Type: "long"},
		FieldInfo{Name: "u", Type: "SomethingUnknown"},
	)
	if got := tr.SizeOf(s); got != 12 {
		t.Errorf("ILP32 size = %d, want 12", got)
	}

	fwd := tr.AddRecord(tr.TU(), TagClass, "Fwd", false)
	if tr.Layout(fwd) != nil || tr.SizeOf(fwd) != 0 {
		t.Error("forward declaration has a layout")
	}
	if tr.Layout(tr.TU()) != nil {
		t.Error("translation unit has a layout")
	}
}

func TestBaseIterator(t *testing.T) {
	tr := NewTree(DefaultLayout)
	a := tr.AddRecord(tr.TU(), TagStruct, "A", true)
	addFields(tr, a, FieldInfo{Name: "a", Type: "int"})
	b := tr.AddRecord(tr.TU(), TagStruct, "B", true)
	addFields(tr, b, FieldInfo{Name: "b", Type: "int"})
	c := tr.AddRecord(tr.TU(), TagClass, "C", true)
	tr.AddBase(c, a, AccessPublic, false)
	tr.AddBase(c, b, AccessPrivate, false)
	addFields(tr, c, FieldInfo{Name: "c", Type: "int"})
	d := tr.AddRecord(tr.TU(), TagStruct, "D", true)
	tr.AddBaseName(d, "C", AccessPublic, false)

	want := []struct {
		base   *Decl
		offset int64
		access Access
		depth  int
	}{
		{c, 0, AccessPublic, 1},
		{a, 0, AccessPublic, 2},
		{b, 4, AccessPrivate, 2},
	}
	it := NewBaseIterator(d)
	for i, w := range want {
		if !it.Next() {
			t.Fatalf("iterator stopped after %d bases", i)
		}
		got := it.Base()
		if got.Base != w.base || got.Offset != w.offset || got.Access != w.access || got.Depth != w.depth {
			t.Errorf("base %d = {%s %d %v %d}, want {%s %d %v %d}", i,
				got.Base.Name(), got.Offset, got.Access, got.Depth,
				w.base.Name(), w.offset, w.access, w.depth)
		}
	}
	if it.Next() {
		t.Error("iterator yielded extra base")
	}
	if it.Base().Base != nil {
		t.Error("Base() after exhaustion should be empty")
	}
}
