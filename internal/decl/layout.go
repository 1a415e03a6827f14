package decl

// LayoutOptions describes the target data model.
type LayoutOptions struct {
	PointerSize int64 `yaml:"pointer_size" json:"pointer_size"`
	LongSize    int64 `yaml:"long_size" json:"long_size"`
}

// DefaultLayout is LP64.
var DefaultLayout = LayoutOptions{PointerSize: 8, LongSize: 8}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.PointerSize == 0 {
		o.PointerSize = DefaultLayout.PointerSize
	}
	if o.LongSize == 0 {
		o.LongSize = DefaultLayout.LongSize
	}
	return o
}

// RecordLayout is the computed layout of a complete record.
type RecordLayout struct {
	Size  int64
	Align int64
	// NonVirtualSize and NonVirtualAlign exclude virtual bases; they are
	// what a derived class reserves for this record as a base subobject.
	NonVirtualSize  int64
	NonVirtualAlign int64
	HasVPtr         bool
	PrimaryBase     *Decl
	// BaseOffsets holds offsets of direct non-virtual bases.
	BaseOffsets map[*Decl]int64
	// VirtualBaseOffsets holds offsets of all virtual bases, direct or
	// inherited, within the complete object.
	VirtualBaseOffsets map[*Decl]int64
	FieldOffsets       map[string]int64
}

func alignTo(n, a int64) int64 {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}

// builtinSize returns size and alignment of a canonical fundamental type.
func (o LayoutOptions) builtinSize(name string) (int64, int64) {
	switch name {
	case "bool", "char", "signed char", "unsigned char", "char8_t":
		return 1, 1
	case "short", "unsigned short", "char16_t":
		return 2, 2
	case "int", "unsigned int", "float", "wchar_t", "char32_t":
		return 4, 4
	case "long", "unsigned long":
		return o.LongSize, o.LongSize
	case "long long", "unsigned long long", "double":
		return 8, 8
	case "long double":
		return 16, 16
	case "std::nullptr_t":
		return o.PointerSize, o.PointerSize
	case "void":
		return 0, 1
	}
	return 4, 4
}

// Layout computes the layout of d. It returns nil for declarations that
// are not records or have no visible definition. Results are not cached:
// completing a forward declaration changes the answer.
func (t *Tree) Layout(d *Decl) *RecordLayout {
	return t.layoutOf(d, map[*Decl]bool{})
}

// SizeOf returns the size in bytes of a record, or 0 when unknown.
func (t *Tree) SizeOf(d *Decl) int64 {
	if l := t.Layout(d); l != nil {
		return l.Size
	}
	return 0
}

func (t *Tree) layoutOf(d *Decl, visiting map[*Decl]bool) *RecordLayout {
	if d == nil || !d.kind.IsRecord() {
		return nil
	}
	def := d.Definition()
	if def == nil || visiting[def] {
		return nil
	}
	visiting[def] = true
	defer delete(visiting, def)
	d = def

	l := &RecordLayout{
		Align:              1,
		BaseOffsets:        map[*Decl]int64{},
		VirtualBaseOffsets: map[*Decl]int64{},
		FieldOffsets:       map[string]int64{},
	}
	ptr := t.layout.PointerSize

	if d.tag == TagUnion {
		for _, f := range d.Fields() {
			if f.Static {
				continue
			}
			size, align := t.fieldSize(f, d, visiting)
			l.FieldOffsets[f.Name] = 0
			if size > l.Size {
				l.Size = size
			}
			if align > l.Align {
				l.Align = align
			}
		}
		l.Size = alignTo(l.Size, l.Align)
		if l.Size == 0 {
			l.Size = 1
		}
		l.NonVirtualSize, l.NonVirtualAlign = l.Size, l.Align
		return l
	}

	var offset int64
	dynamic := d.IsPolymorphic() || hasVirtualBases(d)

	// The first non-virtual dynamic base shares our vptr.
	for _, b := range d.Bases() {
		bd := b.Decl()
		if b.Virtual || bd == nil {
			continue
		}
		if bd.IsPolymorphic() || hasVirtualBases(bd) {
			l.PrimaryBase = bd
			break
		}
	}

	if dynamic {
		l.HasVPtr = true
		if l.PrimaryBase == nil {
			offset = ptr
			l.Align = ptr
		}
	}

	emptyAtZero := map[*Decl]bool{}
	if l.PrimaryBase != nil {
		bl := t.layoutOf(l.PrimaryBase, visiting)
		if bl != nil {
			l.BaseOffsets[l.PrimaryBase] = 0
			offset = baseSpan(l.PrimaryBase, bl)
			if bl.NonVirtualAlign > l.Align {
				l.Align = bl.NonVirtualAlign
			}
		}
	}
	for _, b := range d.Bases() {
		bd := b.Decl()
		if b.Virtual || bd == nil || bd == l.PrimaryBase {
			continue
		}
		bl := t.layoutOf(bd, visiting)
		if bl == nil {
			continue
		}
		if bl.NonVirtualAlign > l.Align {
			l.Align = bl.NonVirtualAlign
		}
		if isEmpty(bd) && !emptyAtZero[bd] {
			// Empty base optimization.
			l.BaseOffsets[bd] = 0
			emptyAtZero[bd] = true
			continue
		}
		offset = alignTo(offset, bl.NonVirtualAlign)
		l.BaseOffsets[bd] = offset
		offset += baseSpan(bd, bl)
	}

	for _, f := range d.Fields() {
		if f.Static {
			continue
		}
		size, align := t.fieldSize(f, d, visiting)
		offset = alignTo(offset, align)
		l.FieldOffsets[f.Name] = offset
		offset += size
		if align > l.Align {
			l.Align = align
		}
	}

	l.NonVirtualAlign = l.Align
	l.NonVirtualSize = offset
	if l.NonVirtualSize == 0 {
		l.NonVirtualSize = 1
	}

	for _, vb := range virtualBases(d) {
		bl := t.layoutOf(vb, visiting)
		if bl == nil {
			continue
		}
		if bl.NonVirtualAlign > l.Align {
			l.Align = bl.NonVirtualAlign
		}
		if isEmpty(vb) {
			l.VirtualBaseOffsets[vb] = 0
			continue
		}
		offset = alignTo(offset, bl.NonVirtualAlign)
		l.VirtualBaseOffsets[vb] = offset
		offset += baseSpan(vb, bl)
	}

	if offset == 0 {
		offset = 1
	}
	l.Size = alignTo(offset, l.Align)
	return l
}

// baseSpan is how many bytes a base subobject occupies. Tail padding is
// only reused for dynamic classes.
func baseSpan(bd *Decl, bl *RecordLayout) int64 {
	if bd.IsPolymorphic() || hasVirtualBases(bd) {
		return bl.NonVirtualSize
	}
	return bl.Size
}

func (t *Tree) fieldSize(f *FieldInfo, owner *Decl, visiting map[*Decl]bool) (int64, int64) {
	count := f.Count
	if count <= 0 {
		count = 1
	}
	typ := t.ResolveType(f.Type, owner)
	if f.typeDecl != nil {
		typ = &Type{Decl: f.typeDecl}
	}
	var size, align int64
	switch {
	case typ == nil:
		// Unknown names are treated as pointer-sized.
		size, align = t.layout.PointerSize, t.layout.PointerSize
	case typ.Indirect:
		size, align = t.layout.PointerSize, t.layout.PointerSize
	case typ.Builtin:
		size, align = t.layout.builtinSize(typ.Spelling)
	case typ.Decl != nil && typ.Decl.kind == Enum:
		size, align = 4, 4
	case typ.Decl != nil:
		fl := t.layoutOf(typ.Decl, visiting)
		if fl == nil {
			size, align = 0, 1
		} else {
			size, align = fl.Size, fl.Align
		}
	default:
		size, align = t.layout.PointerSize, t.layout.PointerSize
	}
	return size * count, align
}

// isEmpty reports records with no non-static data members, no virtual
// functions or bases, and only empty bases.
func isEmpty(d *Decl) bool {
	d = d.Definition()
	if d == nil {
		return false
	}
	if d.IsPolymorphic() || hasVirtualBases(d) {
		return false
	}
	for _, f := range d.Fields() {
		if !f.Static {
			return false
		}
	}
	for _, b := range d.Bases() {
		if bd := b.Decl(); bd != nil && !isEmpty(bd) {
			return false
		}
	}
	return true
}

func hasVirtualBases(d *Decl) bool {
	return len(virtualBases(d)) > 0
}

// virtualBases lists every virtual base of d, direct or inherited, once,
// in depth-first declaration order.
func virtualBases(d *Decl) []*Decl {
	var out []*Decl
	seen := map[*Decl]bool{}
	var walk func(*Decl, int)
	walk = func(r *Decl, depth int) {
		if depth > 64 {
			return
		}
		for _, b := range r.Bases() {
			bd := b.Decl()
			if bd == nil {
				continue
			}
			walk(bd, depth+1)
			if b.Virtual && !seen[bd] {
				seen[bd] = true
				out = append(out, bd)
			}
		}
	}
	walk(d, 0)
	return out
}
