package classinfo

import "github.com/hargabyte/clsinfo/internal/decl"

// Offset returns the byte offset to add to a pointer to the designated
// record to call m, a member function possibly declared in one of its
// bases. It is 0 when m belongs to the record itself.
//
// A definer that is not among the bases also yields 0; a debug message
// notes it.
func (c *ClassInfo) Offset(m *decl.Method) int64 {
	if m == nil || m.Parent == nil || c.decl == nil {
		return 0
	}
	definer, accessor := m.Parent, c.decl
	if decl.Same(definer, accessor) {
		return 0
	}
	if !accessor.Kind().IsRecord() {
		return 0
	}
	it := decl.NewBaseIterator(accessor)
	for it.Next() {
		b := it.Base()
		if decl.Same(b.Base, definer) {
			return b.Offset
		}
	}
	c.rep.Debugf("ClassInfo.Offset", "%s is not a base of %s",
		definer.QualifiedName(), accessor.QualifiedName())
	return 0
}
