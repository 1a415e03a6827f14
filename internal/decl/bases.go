package decl

// BaseInfo is one base class relationship reached from a derived record.
type BaseInfo struct {
	Base *Decl
	// Offset is the byte offset of the base subobject within the derived
	// object.
	Offset int64
	// Access is the most restrictive access along the inheritance path.
	Access  Access
	Virtual bool
	// Depth is 1 for direct bases.
	Depth int
}

// BaseIterator walks the direct and indirect bases of a record depth
// first, each base followed by its own bases.
type BaseIterator struct {
	derived *Decl
	items   []BaseInfo
	pos     int
	started bool
}

// NewBaseIterator creates an iterator over the bases of d. The iterator is
// positioned before the first base.
func NewBaseIterator(d *Decl) *BaseIterator {
	return &BaseIterator{derived: d, pos: -1}
}

// Next advances to the next base and reports whether there is one.
func (it *BaseIterator) Next() bool {
	if !it.started {
		it.started = true
		it.items = collectBases(it.derived)
	}
	if it.pos+1 >= len(it.items) {
		it.pos = len(it.items)
		return false
	}
	it.pos++
	return true
}

// Base returns the current relationship. It is only meaningful after Next
// returned true.
func (it *BaseIterator) Base() BaseInfo {
	if it.pos < 0 || it.pos >= len(it.items) {
		return BaseInfo{}
	}
	return it.items[it.pos]
}

func restrictive(a, b Access) Access {
	if a > b {
		return a
	}
	return b
}

func collectBases(d *Decl) []BaseInfo {
	r := d.def()
	if r == nil || r.tree == nil {
		return nil
	}
	t := r.tree
	complete := t.Layout(r)
	var out []BaseInfo

	var walk func(cur *Decl, curOffset int64, access Access, depth int)
	walk = func(cur *Decl, curOffset int64, access Access, depth int) {
		if depth > 64 {
			return
		}
		local := t.Layout(cur)
		for _, b := range cur.Bases() {
			bd := b.Decl()
			if bd == nil {
				continue
			}
			var off int64
			switch {
			case b.Virtual && complete != nil:
				off = complete.VirtualBaseOffsets[bd]
			case local != nil:
				off = curOffset + local.BaseOffsets[bd]
			default:
				off = curOffset
			}
			acc := b.Access
			if depth > 1 {
				acc = restrictive(access, b.Access)
			}
			out = append(out, BaseInfo{Base: bd, Offset: off, Access: acc, Virtual: b.Virtual, Depth: depth})
			walk(bd, off, acc, depth+1)
		}
	}
	walk(r, 0, AccessPublic, 1)
	return out
}
