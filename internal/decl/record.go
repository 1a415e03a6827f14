package decl

import "strings"

// Record predicates follow the rules a C++ front end applies when it
// finishes a class definition. They read the definition if one is visible
// and report false for forward declarations.

func (d *Decl) def() *Decl {
	if d == nil || !d.kind.IsRecord() {
		return nil
	}
	return d.Definition()
}

// IsUnion reports a union record.
func (d *Decl) IsUnion() bool { return d.tag == TagUnion }

// Constructors returns the user-declared constructors.
func (d *Decl) Constructors() []*Method {
	r := d.def()
	if r == nil {
		return nil
	}
	var out []*Method
	for _, m := range r.Methods() {
		if m.Kind == Constructor {
			out = append(out, m)
		}
	}
	return out
}

// Destructor returns the user-declared destructor, or nil.
func (d *Decl) Destructor() *Method {
	r := d.def()
	if r == nil {
		return nil
	}
	for _, m := range r.Methods() {
		if m.Kind == Destructor {
			return m
		}
	}
	return nil
}

// IsPolymorphic reports a record that declares or inherits a virtual
// function.
func (d *Decl) IsPolymorphic() bool {
	return d.isPolymorphic(0)
}

func (d *Decl) isPolymorphic(depth int) bool {
	r := d.def()
	if r == nil || depth > 64 {
		return false
	}
	for _, m := range r.Methods() {
		if m.Virtual || m.Pure {
			return true
		}
	}
	for _, b := range r.Bases() {
		if bd := b.Decl(); bd != nil && bd.isPolymorphic(depth+1) {
			return true
		}
	}
	return false
}

// IsAbstract reports a record with at least one pure virtual function
// that no class along the path to it overrides.
func (d *Decl) IsAbstract() bool {
	return len(d.pureVirtuals(0)) > 0
}

// pureVirtuals returns the override keys of pure virtual functions that
// remain unoverridden in d.
func (d *Decl) pureVirtuals(depth int) map[string]bool {
	out := map[string]bool{}
	r := d.def()
	if r == nil || depth > 64 {
		return out
	}
	declared := map[string]*Method{}
	for _, m := range r.Methods() {
		if m.Static || m.Kind == Constructor {
			continue
		}
		declared[m.overrideKey()] = m
	}
	for _, b := range r.Bases() {
		bd := b.Decl()
		if bd == nil {
			continue
		}
		for key := range bd.pureVirtuals(depth + 1) {
			// Every class gets a destructor, which overrides a pure one.
			if key == "~" {
				continue
			}
			if m, ok := declared[key]; ok && !m.Pure {
				continue
			}
			out[key] = true
		}
	}
	for key, m := range declared {
		if m.Pure {
			out[key] = true
		}
	}
	return out
}

// HasUserDeclaredConstructor reports any constructor written in the class,
// including defaulted and deleted ones.
func (d *Decl) HasUserDeclaredConstructor() bool {
	return len(d.Constructors()) > 0
}

// HasUserProvidedDefaultConstructor reports a constructor callable with no
// arguments whose body the user wrote.
func (d *Decl) HasUserProvidedDefaultConstructor() bool {
	for _, m := range d.Constructors() {
		if m.MinRequiredArgs() == 0 && m.UserProvided() && !m.Variadic {
			return true
		}
	}
	return false
}

// HasDefaultConstructor reports whether the class has a usable default
// constructor, declared or implicit. An implicit one is deleted when a base
// or member cannot be default-initialized.
func (d *Decl) HasDefaultConstructor() bool {
	return d.hasDefaultCtor(anyAccess, 0)
}

func anyAccess(Access) bool { return true }

// fromDerived is the access a derived class's constructor has to a base's
// members.
func fromDerived(a Access) bool { return a != AccessPrivate }

func fromOutside(a Access) bool { return a.IsPublic() }

func (d *Decl) hasDefaultCtor(reachable func(Access) bool, depth int) bool {
	r := d.def()
	if r == nil || depth > 64 {
		return false
	}
	ctors := r.Constructors()
	if len(ctors) == 0 {
		return !r.implicitDefaultCtorDeleted(depth)
	}
	for _, m := range ctors {
		if m.MinRequiredArgs() != 0 || m.Deleted || !reachable(m.Access) {
			continue
		}
		if m.Defaulted && r.implicitDefaultCtorDeleted(depth) {
			continue
		}
		return true
	}
	return false
}

// implicitDefaultCtorDeleted applies the rules that define an implicit
// default constructor as deleted.
func (d *Decl) implicitDefaultCtorDeleted(depth int) bool {
	for _, b := range d.Bases() {
		if bd := b.Decl(); bd != nil && !bd.hasDefaultCtor(fromDerived, depth+1) {
			return true
		}
	}
	union := d.IsUnion()
	allConst, anyInit, nonTrivial := true, false, false
	members := 0
	for _, f := range d.Fields() {
		if f.Static {
			continue
		}
		members++
		isConst := topLevelConst(f.Type)
		if !isConst {
			allConst = false
		}
		if f.HasInit {
			anyInit = true
			continue
		}
		if strings.HasSuffix(Normalize(f.Type), "&") {
			return true
		}
		fr := d.fieldRecord(f)
		if fr != nil {
			if !fr.hasDefaultCtor(fromOutside, depth+1) {
				return true
			}
			if union && !fr.hasTrivialDefaultCtor(depth+1) {
				nonTrivial = true
			}
		}
		if union || !isConst {
			continue
		}
		if fr == nil || !fr.HasUserProvidedDefaultConstructor() {
			return true
		}
	}
	if union {
		return (members > 0 && allConst) || (nonTrivial && !anyInit)
	}
	return false
}

// HasTrivialDefaultConstructor reports a default constructor that does no
// work: implicit or defaulted, no virtual functions or bases, no default
// member initializers, and trivial default construction of all bases and
// class-type members.
func (d *Decl) HasTrivialDefaultConstructor() bool {
	return d.hasTrivialDefaultCtor(0)
}

func (d *Decl) hasTrivialDefaultCtor(depth int) bool {
	r := d.def()
	if r == nil || depth > 64 {
		return false
	}
	ctors := r.Constructors()
	if len(ctors) > 0 {
		found := false
		for _, m := range ctors {
			if m.MinRequiredArgs() == 0 {
				if !m.Defaulted {
					return false
				}
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if r.IsPolymorphic() || hasVirtualBases(r) {
		return false
	}
	for _, b := range r.Bases() {
		if bd := b.Decl(); bd != nil && !bd.hasTrivialDefaultCtor(depth+1) {
			return false
		}
	}
	for _, f := range r.Fields() {
		if f.Static {
			continue
		}
		if f.HasInit {
			return false
		}
		if fr := r.fieldRecord(f); fr != nil && !fr.hasTrivialDefaultCtor(depth+1) {
			return false
		}
	}
	return true
}

// HasUserDeclaredDestructor reports a destructor written in the class.
func (d *Decl) HasUserDeclaredDestructor() bool {
	return d.Destructor() != nil
}

// HasTrivialDestructor reports a destructor that does no work: implicit or
// defaulted, not virtual, and trivial destruction of all bases and
// class-type members.
func (d *Decl) HasTrivialDestructor() bool {
	return d.hasTrivialDtor(0)
}

func (d *Decl) hasTrivialDtor(depth int) bool {
	r := d.def()
	if r == nil || depth > 64 {
		return false
	}
	if dtor := r.Destructor(); dtor != nil {
		if !dtor.Defaulted || dtor.Virtual {
			return false
		}
	}
	for _, b := range r.Bases() {
		if bd := b.Decl(); bd != nil && !bd.hasTrivialDtor(depth+1) {
			return false
		}
	}
	for _, f := range r.Fields() {
		if f.Static {
			continue
		}
		if fr := r.fieldRecord(f); fr != nil && !fr.hasTrivialDtor(depth+1) {
			return false
		}
	}
	return true
}

// HasUserDeclaredCopyAssignment reports operator= taking the class by
// value or reference.
func (d *Decl) HasUserDeclaredCopyAssignment() bool {
	r := d.def()
	if r == nil {
		return false
	}
	for _, m := range r.Methods() {
		if m.Kind == CopyAssign {
			return true
		}
	}
	return false
}

// IsDerivedFrom reports whether base is a direct or indirect base of d.
func (d *Decl) IsDerivedFrom(base *Decl) bool {
	if base == nil {
		return false
	}
	return d.isDerivedFrom(base, 0)
}

func (d *Decl) isDerivedFrom(base *Decl, depth int) bool {
	r := d.def()
	if r == nil || depth > 64 {
		return false
	}
	for _, b := range r.Bases() {
		bd := b.Decl()
		if bd == nil {
			continue
		}
		if Same(bd, base) || bd.isDerivedFrom(base, depth+1) {
			return true
		}
	}
	return false
}

// fieldRecord returns the record a by-value member is an instance of.
func (d *Decl) fieldRecord(f *FieldInfo) *Decl {
	if f.typeDecl != nil {
		return f.typeDecl.def()
	}
	if d.tree == nil {
		return nil
	}
	typ := d.tree.ResolveType(f.Type, d)
	return typ.RecordDecl()
}
