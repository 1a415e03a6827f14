package lookup

import (
	"regexp"
	"strings"

	"github.com/hargabyte/clsinfo/internal/decl"
)

var (
	intLiteral   = regexp.MustCompile(`^[-+]?(0[xX][0-9a-fA-F']+|0[bB][01']+|[0-9][0-9']*)([uU]?[lL]{0,2}|[lL]{1,2}[uU])$`)
	floatLiteral = regexp.MustCompile(`^[-+]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][-+]?[0-9]+)?[fFlL]?$`)
	charLiteral  = regexp.MustCompile(`^(u8|u|U|L)?'(\\.|[^'\\])+'$`)
	strLiteral   = regexp.MustCompile(`^(u8|u|U|L)?"(\\.|[^"\\])*"$`)
	cStyleCast   = regexp.MustCompile(`^\(([^()]+)\)\s*(.+)$`)
	namedCast    = regexp.MustCompile(`^(static_cast|const_cast|reinterpret_cast|dynamic_cast)\s*<(.+)>\s*\((.*)\)$`)
	funcCast     = regexp.MustCompile(`^([A-Za-z_][\w:<>, ]*?)\s*[({](.*)[)}]$`)
)

// typeArgs types each comma separated argument expression.
func (r *Resolver) typeArgs(arglist string, scope *decl.Decl) ([]typeInfo, bool) {
	arglist = strings.TrimSpace(arglist)
	if arglist == "" {
		return nil, true
	}
	var out []typeInfo
	for _, a := range decl.SplitArgs(arglist) {
		t, ok := r.typeExpr(strings.TrimSpace(a), scope)
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}

func (r *Resolver) builtinType(name string) typeInfo {
	return typeInfo{base: name, builtin: true, rvalue: true}
}

// typeExpr types one argument expression.
func (r *Resolver) typeExpr(e string, scope *decl.Decl) (typeInfo, bool) {
	for strings.HasPrefix(e, "(") && strings.HasSuffix(e, ")") && balanced(e[1:len(e)-1]) && !cStyleCast.MatchString(e) {
		e = strings.TrimSpace(e[1 : len(e)-1])
	}
	switch e {
	case "true", "false":
		return r.builtinType("bool"), true
	case "nullptr", "NULL":
		t := r.builtinType("std::nullptr_t")
		t.nullptr = true
		return t, true
	case "":
		return typeInfo{}, false
	}

	if m := intLiteral.FindStringSubmatch(e); m != nil {
		t := r.builtinType(intLiteralType(m[2]))
		digits := strings.TrimLeft(m[1], "0'")
		t.zero = digits == "" && !strings.ContainsAny(m[1], "xXbB")
		return t, true
	}
	if floatLiteral.MatchString(e) {
		switch e[len(e)-1] {
		case 'f', 'F':
			return r.builtinType("float"), true
		case 'l', 'L':
			return r.builtinType("long double"), true
		}
		return r.builtinType("double"), true
	}
	if m := charLiteral.FindStringSubmatch(e); m != nil {
		switch m[1] {
		case "L":
			return r.builtinType("wchar_t"), true
		case "u":
			return r.builtinType("char16_t"), true
		case "U":
			return r.builtinType("char32_t"), true
		case "u8":
			return r.builtinType("char8_t"), true
		}
		return r.builtinType("char"), true
	}
	if strLiteral.MatchString(e) {
		return typeInfo{base: "char", constBase: true, ptr: 1, builtin: true, rvalue: true}, true
	}
	if m := namedCast.FindStringSubmatch(e); m != nil {
		return r.castTo(m[2], scope)
	}
	if m := cStyleCast.FindStringSubmatch(e); m != nil {
		if _, ok := r.typeExpr(strings.TrimSpace(m[2]), scope); ok {
			return r.castTo(m[1], scope)
		}
	}
	if m := funcCast.FindStringSubmatch(e); m != nil {
		if t, ok := r.castTo(m[1], scope); ok && (t.builtin || t.decl != nil) {
			return t, true
		}
	}
	return typeInfo{}, false
}

// castTo types an expression explicitly converted to spelling.
func (r *Resolver) castTo(spelling string, scope *decl.Decl) (typeInfo, bool) {
	t := r.parseType(spelling, scope)
	if !t.builtin && t.decl == nil {
		return typeInfo{}, false
	}
	t.rvalue = !t.ref
	return t, true
}

func intLiteralType(suffix string) string {
	s := strings.ToLower(suffix)
	unsigned := strings.Contains(s, "u")
	switch strings.Count(s, "l") {
	case 2:
		if unsigned {
			return "unsigned long long"
		}
		return "long long"
	case 1:
		if unsigned {
			return "unsigned long"
		}
		return "long"
	}
	if unsigned {
		return "unsigned int"
	}
	return "int"
}

// balanced reports whether parentheses in s pair up, so "(a)(b)" is not
// taken for one parenthesized expression.
func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
