package decl

import (
	"strings"
	"unicode"
)

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Normalize canonicalizes a C++ name or type spelling: whitespace is
// dropped except where it separates two identifier tokens, so
// "std::pair< int , unsigned  long >" becomes "std::pair<int,unsigned long>".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unicode.IsSpace(rune(c)) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			out := b.String()
			if len(out) > 0 && isIdentByte(out[len(out)-1]) && isIdentByte(c) {
				b.WriteByte(' ')
			}
			pendingSpace = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// SplitQualified splits a qualified name on "::" outside template argument
// lists. A leading "::" is dropped.
func SplitQualified(name string) []string {
	name = Normalize(name)
	name = strings.TrimPrefix(name, "::")
	if name == "" {
		return nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ':':
			if depth == 0 && i+1 < len(name) && name[i+1] == ':' {
				parts = append(parts, name[start:i])
				start = i + 2
				i++
			}
		}
	}
	return append(parts, name[start:])
}

// SplitTemplateID splits "pair<int,float>" into "pair" and its argument
// spellings. ok is false when name has no template argument list.
func SplitTemplateID(name string) (base string, args []string, ok bool) {
	name = Normalize(name)
	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return name, nil, false
	}
	base = name[:open]
	inner := name[open+1 : len(name)-1]
	return base, SplitArgs(inner), true
}

// SplitArgs splits a comma separated argument list at nesting depth zero.
func SplitArgs(list string) []string {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case '"', '\'':
			quote := list[i]
			for i++; i < len(list) && list[i] != quote; i++ {
				if list[i] == '\\' {
					i++
				}
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(list[start:]))
}

// StripTemplateArgs removes a trailing template argument list.
func StripTemplateArgs(name string) string {
	base, _, _ := SplitTemplateID(name)
	return base
}

// substitute replaces whole-word occurrences of template parameters.
func substitute(s string, params, args []string) string {
	if s == "" || len(params) == 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if !isIdentByte(s[i]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && isIdentByte(s[j]) {
			j++
		}
		word := s[i:j]
		replaced := false
		for k, p := range params {
			if p == word && k < len(args) {
				b.WriteString(args[k])
				replaced = true
				break
			}
		}
		if !replaced {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

// DisplayArgs renders argument spellings the way Name prints them.
func DisplayArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = display(a)
	}
	return strings.Join(out, ", ")
}

func display(s string) string {
	if !strings.ContainsAny(s, "<,") {
		return s
	}
	base, args, ok := SplitTemplateID(s)
	if !ok {
		return s
	}
	return base + "<" + DisplayArgs(args) + ">"
}
