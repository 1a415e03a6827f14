package classinfo

import (
	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
	"github.com/hargabyte/clsinfo/internal/lookup"
)

// Property bits.
const (
	IsClass        int64 = 0x00000001
	IsStruct       int64 = 0x00000002
	IsUnion        int64 = 0x00000004
	IsEnum         int64 = 0x00000008
	IsAbstract     int64 = 0x00000040
	IsCPPCompiled  int64 = 0x00080000
	IsNamespace    int64 = 0x08000000
	IsDefinedInStd int64 = 0x40000000
)

// ClassProperty bits.
const (
	ClassIsValid         int64 = 0x00000001
	ClassHasExplicitCtor int64 = 0x00000010
	ClassHasImplicitCtor int64 = 0x00000020
	ClassHasDefaultCtor  int64 = 0x00000040
	ClassHasAssignOpr    int64 = 0x00000080
	ClassHasExplicitDtor int64 = 0x00000100
	ClassHasImplicitDtor int64 = 0x00000200
	ClassHasVirtual      int64 = 0x00001000
	ClassIsAbstract      int64 = 0x00002000
)

// IsValid reports whether the cursor designates an entity. An entity
// reached through a type must have a complete type.
func (c *ClassInfo) IsValid() bool {
	if c.decl == nil {
		return false
	}
	if c.typ != nil {
		return !c.typ.IsIncomplete()
	}
	return true
}

// IsLoaded reports a valid entity whose definition is visible. Namespaces
// and the global scope are always loaded.
func (c *ClassInfo) IsLoaded() bool {
	if !c.IsValid() {
		return false
	}
	if c.decl.Kind().IsTag() && c.decl.Definition() == nil {
		return false
	}
	return true
}

// Property returns the Is* bits describing what kind of entity the cursor
// designates. It is computed on every call.
func (c *ClassInfo) Property() int64 {
	if !c.IsValid() {
		return 0
	}
	d := c.decl
	property := IsCPPCompiled
	if d.IsInStd() {
		property |= IsDefinedInStd
	}
	switch k := d.Kind(); {
	case k == decl.Namespace || k == decl.TranslationUnit:
		return property | IsNamespace
	case k == decl.Enum:
		return property | IsEnum
	case !k.IsRecord():
		return 0
	}
	switch d.Tag() {
	case decl.TagClass:
		property |= IsClass
	case decl.TagStruct:
		property |= IsStruct
	case decl.TagUnion:
		property |= IsUnion
	}
	if d.Definition() != nil && d.IsAbstract() {
		property |= IsAbstract
	}
	return property
}

// ClassProperty returns the Class* bits describing the special members of
// a class or struct. Unions, enums and namespaces always get 0, as do
// records with no visible definition.
func (c *ClassInfo) ClassProperty() int64 {
	if !c.IsValid() {
		return 0
	}
	d := c.decl
	if !d.Kind().IsRecord() || d.IsUnion() || d.Definition() == nil {
		return 0
	}

	property := ClassIsValid
	if d.IsAbstract() {
		property |= ClassIsAbstract
	}
	userCtor := d.HasUserDeclaredConstructor()
	trivialDefault := d.HasTrivialDefaultConstructor()
	if userCtor {
		property |= ClassHasExplicitCtor
	}
	if !userCtor && !trivialDefault {
		property |= ClassHasImplicitCtor
	}
	if d.HasUserProvidedDefaultConstructor() || !trivialDefault {
		property |= ClassHasDefaultCtor
	}
	if d.HasUserDeclaredDestructor() {
		property |= ClassHasExplicitDtor
	} else if !d.HasTrivialDestructor() {
		property |= ClassHasImplicitDtor
	}
	if d.HasUserDeclaredCopyAssignment() {
		property |= ClassHasAssignOpr
	}
	if d.IsPolymorphic() {
		property |= ClassHasVirtual
	}
	return property
}

// Size returns the size in bytes of the designated record, -1 when the
// cursor is invalid or not on a record, 1 for namespaces and 0 for enums
// and records with no visible definition.
func (c *ClassInfo) Size() int64 {
	if !c.IsValid() {
		return -1
	}
	d := c.decl
	switch d.Kind() {
	case decl.Namespace:
		return 1
	case decl.Enum:
		return 0
	}
	if !d.Kind().IsRecord() {
		return -1
	}
	if d.Definition() == nil {
		return 0
	}
	return c.tree.SizeOf(d)
}

// Tagnum returns an identifier for the designated entity that is stable
// for the life of the tree, or -1.
func (c *ClassInfo) Tagnum() int64 {
	if !c.IsValid() {
		return -1
	}
	return int64(c.decl.ID())
}

// RootFlag is reserved and always 0.
func (c *ClassInfo) RootFlag() int {
	return 0
}

// HasDefaultConstructor reports whether a new object of the designated
// type can be built with no arguments: the record and its public
// constructor taking no required arguments, or its implicit default
// constructor, must both be reachable from outside. Entities that are not
// records report true.
func (c *ClassInfo) HasDefaultConstructor() bool {
	if !c.IsLoaded() {
		return false
	}
	d := c.decl
	if !d.Kind().IsRecord() {
		return true
	}
	if !d.Access().IsPublic() {
		return false
	}
	if d.Identifier() == "pair" && d.Kind() == decl.TemplateSpecialization && !c.pairArgsPublic(d) {
		return false
	}

	tx := c.push()
	defer tx.Pop()

	ctors := d.Constructors()
	if len(ctors) == 0 {
		return d.HasDefaultConstructor()
	}
	for _, m := range ctors {
		if m.Access != decl.AccessPublic || m.Deleted || m.MinRequiredArgs() != 0 {
			continue
		}
		// A defaulted constructor is deleted when the implicit one would be.
		if m.Defaulted && !d.HasDefaultConstructor() {
			continue
		}
		return true
	}
	return false
}

// pairArgsPublic reports whether every class argument of a pair
// specialization is itself publicly reachable.
func (c *ClassInfo) pairArgsPublic(d *decl.Decl) bool {
	for _, arg := range d.TemplateArgs() {
		typ := c.tree.ResolveType(arg, d.Parent())
		if typ == nil {
			return false
		}
		if typ.Indirect || typ.IsFundamental() || typ.IsEnum() {
			continue
		}
		rec := typ.RecordDecl()
		if rec == nil || !rec.Access().IsPublic() {
			return false
		}
	}
	return true
}

// IsBase reports whether the designated record derives, directly or not,
// from the record name resolves to.
func (c *ClassInfo) IsBase(name string) bool {
	if !c.IsLoaded() {
		return false
	}
	base := ForName(c.res, c.exec, c.rep, name)
	if !base.IsValid() {
		return false
	}
	if !c.decl.Kind().IsRecord() || !base.decl.Kind().IsRecord() {
		return false
	}
	return c.decl.IsDerivedFrom(base.decl)
}

// IsEnumName reports whether name resolves to an enumeration.
func IsEnumName(res *lookup.Resolver, name string) bool {
	info := ForName(res, nil, diag.Discard{}, name)
	return info.IsValid() && info.Property()&IsEnum != 0
}
