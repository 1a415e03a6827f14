package classinfo

import (
	"github.com/hargabyte/clsinfo/internal/decl"
)

// MatchMode selects how GetMethod compares a prototype with candidate
// declarations.
type MatchMode int

const (
	// ConversionMatch accepts arguments that convert implicitly to the
	// parameter types and picks the best overload.
	ConversionMatch MatchMode = iota
	// ExactMatch requires the normalized parameter types to be identical.
	ExactMatch
	// NumMatchModes is not a mode; GetMethod rejects it and anything
	// beyond.
	NumMatchModes
)

// MethodInfo is the result of a method lookup. The zero value is invalid.
type MethodInfo struct {
	m *decl.Method
}

// IsValid reports whether the lookup found a function.
func (mi MethodInfo) IsValid() bool { return mi.m != nil }

// Method returns the function declaration, or nil.
func (mi MethodInfo) Method() *decl.Method { return mi.m }

// Name returns the function name, or "".
func (mi MethodInfo) Name() string {
	if mi.m == nil {
		return ""
	}
	return mi.m.Name
}

// Prototype returns the full declaration text, or "".
func (mi MethodInfo) Prototype() string {
	if mi.m == nil {
		return ""
	}
	return mi.m.Prototype()
}

// NArg returns the number of parameters, or -1.
func (mi MethodInfo) NArg() int {
	if mi.m == nil {
		return -1
	}
	return mi.m.NumParams()
}

// NDefaultArg returns how many parameters have default values, or -1.
func (mi MethodInfo) NDefaultArg() int {
	if mi.m == nil {
		return -1
	}
	return mi.m.NumParams() - mi.m.MinRequiredArgs()
}

// GetMethod finds the function name with the given prototype in the
// designated scope, a comma separated parameter type list with or without
// parentheses. For a non-static member function defined in a base class,
// offset is the adjustment from a pointer to the designated record to a
// pointer to that base.
func (c *ClassInfo) GetMethod(name, proto string, objectIsConst bool, mode MatchMode) (mi MethodInfo, offset int64) {
	if !c.IsLoaded() {
		return MethodInfo{}, 0
	}
	// A constructor name needs no special handling: constructors are
	// members of the record and resolve like any other.
	var m *decl.Method
	switch mode {
	case ConversionMatch:
		m = c.res.FindFunctionProto(c.decl, name, proto, objectIsConst)
	case ExactMatch:
		m = c.res.MatchFunctionProto(c.decl, name, proto, objectIsConst)
	default:
		c.rep.Errorf("ClassInfo.GetMethod", "The MatchMode %d is not supported.", mode)
		return MethodInfo{}, 0
	}
	return c.methodResult(m)
}

// GetMethodWithArgs finds the overload of name best matching an argument
// expression list such as `1, "x", (short)2`. A lone ")" means no
// arguments.
func (c *ClassInfo) GetMethodWithArgs(name, arglist string, objectIsConst bool) (mi MethodInfo, offset int64) {
	if !c.IsLoaded() {
		return MethodInfo{}, 0
	}
	if arglist == ")" {
		arglist = ""
	}
	return c.methodResult(c.res.FindFunctionArgs(c.decl, name, arglist, objectIsConst))
}

func (c *ClassInfo) methodResult(m *decl.Method) (MethodInfo, int64) {
	if m == nil {
		return MethodInfo{}, 0
	}
	var offset int64
	if m.IsMember() && !m.Static {
		offset = c.Offset(m)
	}
	return MethodInfo{m: m}, offset
}

// GetMethodNArg returns the parameter count of the matching function, or
// -1 when there is none.
func (c *ClassInfo) GetMethodNArg(name, proto string, objectIsConst bool, mode MatchMode) int {
	if !c.IsLoaded() {
		return -1
	}
	mi, _ := c.GetMethod(name, proto, objectIsConst, mode)
	return mi.NArg()
}

// IsValidMethod reports whether a function with the prototype exists and
// returns its this-adjustment.
func (c *ClassInfo) IsValidMethod(name, proto string, objectIsConst bool, mode MatchMode) (bool, int64) {
	if !c.IsLoaded() {
		return false, 0
	}
	mi, offset := c.GetMethod(name, proto, objectIsConst, mode)
	return mi.IsValid(), offset
}

// HasMethod reports whether any function called name is visible in the
// designated scope.
func (c *ClassInfo) HasMethod(name string) bool {
	if !c.IsLoaded() || c.decl.Kind() == decl.Enum {
		return false
	}
	return c.res.HasFunction(c.decl, name)
}
