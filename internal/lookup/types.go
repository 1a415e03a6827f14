package lookup

import (
	"strings"

	"github.com/hargabyte/clsinfo/internal/decl"
)

// typeInfo is a type spelling taken apart for overload ranking.
type typeInfo struct {
	base      string // canonical spelling of the named type
	constBase bool   // the named type is const-qualified
	ptr       int    // pointer levels
	ref       bool   // lvalue reference
	rref      bool   // rvalue reference
	builtin   bool
	decl      *decl.Decl // tag for class and enum types

	// Facts about argument expressions.
	rvalue  bool
	nullptr bool
	zero    bool // the literal 0, a null pointer constant
}

func (t typeInfo) isRecord() bool {
	return t.ptr == 0 && t.decl != nil && t.decl.Kind().IsRecord()
}

func (t typeInfo) isEnum() bool {
	return t.ptr == 0 && t.decl != nil && t.decl.Kind() == decl.Enum
}

func (t typeInfo) isArithmetic() bool {
	return t.ptr == 0 && t.builtin && arithmetic[t.base]
}

// canonical renders the type the way two equal parameter types compare.
// Top-level const on by-value types does not take part.
func (t typeInfo) canonical() string {
	var b strings.Builder
	if t.constBase && (t.ptr > 0 || t.ref || t.rref) {
		b.WriteString("const ")
	}
	b.WriteString(t.base)
	b.WriteString(strings.Repeat("*", t.ptr))
	switch {
	case t.rref:
		b.WriteString("&&")
	case t.ref:
		b.WriteString("&")
	}
	return b.String()
}

// value returns t with any reference removed.
func (t typeInfo) value() typeInfo {
	t.ref, t.rref = false, false
	return t
}

var arithmetic = map[string]bool{
	"bool": true, "char": true, "signed char": true, "unsigned char": true,
	"wchar_t": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"short": true, "unsigned short": true, "int": true, "unsigned int": true,
	"long": true, "unsigned long": true, "long long": true, "unsigned long long": true,
	"float": true, "double": true, "long double": true,
}

// promotesToInt lists types that integral promotion turns into int.
var promotesToInt = map[string]bool{
	"bool": true, "char": true, "signed char": true, "unsigned char": true,
	"short": true, "unsigned short": true, "wchar_t": true, "char8_t": true,
	"char16_t": true, "char32_t": true,
}

func trimCV(s string) (string, bool) {
	isConst := false
	for {
		switch {
		case strings.HasPrefix(s, "const "):
			s, isConst = s[len("const "):], true
		case strings.HasPrefix(s, "volatile "):
			s = s[len("volatile "):]
		case strings.HasSuffix(s, " const"):
			s, isConst = s[:len(s)-len(" const")], true
		case strings.HasSuffix(s, "const") && len(s) > 5 && !isIdent(s[len(s)-6]):
			s, isConst = s[:len(s)-len("const")], true
		case strings.HasSuffix(s, " volatile"):
			s = s[:len(s)-len(" volatile")]
		default:
			return strings.TrimSpace(s), isConst
		}
	}
}

func trimTrailingCV(s string) string {
	for {
		trimmed := false
		for _, w := range []string{"const", "volatile"} {
			if strings.HasSuffix(s, w) && len(s) > len(w) && !isIdent(s[len(s)-len(w)-1]) {
				s = strings.TrimSpace(s[:len(s)-len(w)])
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// parseType splits a spelling into its named type, pointer levels and
// reference, resolving the named type inside scope.
func (r *Resolver) parseType(spelling string, scope *decl.Decl) typeInfo {
	s := decl.Normalize(spelling)
	var t typeInfo
	switch {
	case strings.HasSuffix(s, "&&"):
		t.rref = true
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "&"):
		t.ref = true
		s = s[:len(s)-1]
	}
	for {
		// cv after a '*' qualifies the pointer, not the pointee.
		s = trimTrailingCV(s)
		if !strings.HasSuffix(s, "*") {
			break
		}
		s = s[:len(s)-1]
		t.ptr++
	}
	s, t.constBase = trimCV(s)
	for _, kw := range []string{"class ", "struct ", "union ", "enum ", "typename "} {
		s = strings.TrimPrefix(s, kw)
	}
	t.base = s

	if r.tree == nil {
		return t
	}
	typ := r.tree.ResolveType(s, scope)
	if typ == nil {
		return t
	}
	if typ.Indirect {
		// A typedef to a pointer; references through typedefs collapse to
		// a pointer level, which is enough for ranking.
		t.ptr++
	}
	t.builtin = typ.Builtin
	t.decl = typ.Decl
	t.base = typ.Spelling
	return t
}

const noMatch = -1

// Conversion ranks, lower is better.
const (
	rankExact = iota
	rankPromotion
	rankConversion
	rankUserDefined
)

// rank grades converting arg to param. allowUser permits one user-defined
// conversion through a converting constructor or conversion function.
func (r *Resolver) rank(arg, param typeInfo, allowUser bool) int {
	if param.ref && !param.constBase {
		// A non-const lvalue reference binds only to an lvalue of the same
		// type or a derived class.
		if arg.rvalue {
			return noMatch
		}
		a, p := arg.value(), param.value()
		if a.constBase && !p.constBase {
			return noMatch
		}
		if a.ptr == p.ptr && a.base == p.base {
			return rankExact
		}
		if a.isRecord() && p.isRecord() && a.decl.IsDerivedFrom(p.decl) {
			return rankConversion
		}
		return noMatch
	}
	if param.ref || param.rref {
		// const T& and T&& bind to a temporary converted to T.
		return r.rankValue(arg.value(), param.value(), allowUser)
	}
	return r.rankValue(arg.value(), param, allowUser)
}

func (r *Resolver) rankValue(arg, param typeInfo, allowUser bool) int {
	switch {
	case param.ptr > 0:
		return rankPointer(arg, param)
	case param.isArithmetic():
		return r.rankArithmetic(arg, param, allowUser)
	case param.isEnum():
		if arg.isEnum() && decl.Same(arg.decl, param.decl) {
			return rankExact
		}
		return noMatch
	case param.isRecord():
		return r.rankRecord(arg, param, allowUser)
	}
	if arg.ptr == param.ptr && arg.base == param.base && arg.base != "" {
		return rankExact
	}
	return noMatch
}

func rankPointer(arg, param typeInfo) int {
	if arg.nullptr || arg.zero {
		return rankConversion
	}
	if arg.ptr != param.ptr {
		return noMatch
	}
	if arg.constBase && !param.constBase {
		return noMatch
	}
	qualify := 0
	if param.constBase && !arg.constBase {
		qualify = rankPromotion
	}
	switch {
	case arg.base == param.base:
		return rankExact + qualify
	case param.ptr == 1 && param.base == "void":
		return rankConversion
	case param.ptr == 1 && arg.decl != nil && param.decl != nil &&
		arg.decl.Kind().IsRecord() && arg.decl.IsDerivedFrom(param.decl):
		return rankConversion
	}
	return noMatch
}

func (r *Resolver) rankArithmetic(arg, param typeInfo, allowUser bool) int {
	switch {
	case arg.ptr > 0 || arg.nullptr:
		if param.base == "bool" && !arg.nullptr {
			return rankConversion
		}
		return noMatch
	case arg.isArithmetic():
		switch {
		case arg.base == param.base:
			return rankExact
		case param.base == "int" && promotesToInt[arg.base]:
			return rankPromotion
		case param.base == "double" && arg.base == "float":
			return rankPromotion
		}
		return rankConversion
	case arg.isEnum():
		if arg.decl.IsScopedEnum() {
			return noMatch
		}
		if param.base == "int" {
			return rankPromotion
		}
		return rankConversion
	case arg.isRecord() && allowUser:
		return r.rankConversionFunction(arg, param)
	}
	return noMatch
}

// rankConversionFunction looks for "operator T" in the argument's class.
func (r *Resolver) rankConversionFunction(arg, param typeInfo) int {
	def := arg.decl.Definition()
	if def == nil {
		return noMatch
	}
	for _, m := range def.Methods() {
		if m.Kind != decl.Conversion || m.Explicit || m.Deleted {
			continue
		}
		target := r.parseType(strings.TrimPrefix(m.Name, "operator "), def)
		if rank := r.rankValue(target.value(), param, false); rank >= 0 && rank <= rankConversion {
			return rankUserDefined
		}
	}
	return noMatch
}

func (r *Resolver) rankRecord(arg, param typeInfo, allowUser bool) int {
	if arg.isRecord() {
		if decl.Same(arg.decl, param.decl) {
			return rankExact
		}
		if arg.decl.IsDerivedFrom(param.decl) {
			return rankConversion
		}
	}
	if !allowUser {
		return noMatch
	}
	for _, ctor := range param.decl.Constructors() {
		if ctor.Explicit || ctor.Deleted || len(ctor.Params) == 0 || ctor.MinRequiredArgs() > 1 {
			continue
		}
		p0 := r.parseType(ctor.Params[0].Type, ctor.Parent)
		if p0.isRecord() && decl.Same(p0.decl, param.decl) {
			// Copy and move constructors are not conversions.
			continue
		}
		if rank := r.rank(arg, p0, false); rank >= 0 {
			return rankUserDefined
		}
	}
	if arg.isRecord() {
		return r.rankConversionFunction(arg, param)
	}
	return noMatch
}
