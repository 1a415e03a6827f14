// Package lookup resolves names, prototypes and argument lists against a
// declaration tree: scope lookup with the std:: retry, and member function
// overload selection by exact prototype, by conversion ranking, or by
// typing literal argument expressions.
package lookup

import (
	"strings"

	"github.com/hargabyte/clsinfo/internal/decl"
)

// DefaultStdNames are the unqualified names that get a std:: prefix when a
// first lookup fails.
var DefaultStdNames = []string{
	"string", "wstring", "basic_string", "string_view",
	"vector", "list", "deque", "forward_list", "array",
	"map", "multimap", "set", "multiset",
	"unordered_map", "unordered_multimap", "unordered_set", "unordered_multiset",
	"pair", "tuple", "complex", "bitset", "valarray",
	"queue", "priority_queue", "stack",
	"allocator", "less", "greater", "equal_to", "hash", "char_traits",
	"shared_ptr", "unique_ptr", "weak_ptr", "function", "optional", "variant",
}

// Resolver answers lookups against one tree.
type Resolver struct {
	tree     *decl.Tree
	stdNames map[string]bool
}

// NewResolver creates a resolver for t. A nil stdNames uses
// DefaultStdNames.
func NewResolver(t *decl.Tree, stdNames []string) *Resolver {
	if stdNames == nil {
		stdNames = DefaultStdNames
	}
	r := &Resolver{tree: t, stdNames: make(map[string]bool, len(stdNames))}
	for _, n := range stdNames {
		r.stdNames[n] = true
	}
	return r
}

// Tree returns the tree the resolver reads.
func (r *Resolver) Tree() *decl.Tree { return r.tree }

// FindScope looks up a fully qualified name. When nothing matches, the
// name is retried with std:: inserted before known standard library names.
func (r *Resolver) FindScope(name string) (*decl.Decl, *decl.Type) {
	d, typ := r.tree.FindScope(name)
	if d != nil || typ != nil {
		return d, typ
	}
	if alt := r.InsertStd(name); alt != decl.Normalize(name) {
		return r.tree.FindScope(alt)
	}
	return nil, nil
}

// InsertStd prefixes std:: to unqualified standard library names anywhere
// in name, including inside template arguments:
// "vector<string>" becomes "std::vector<std::string>".
func (r *Resolver) InsertStd(name string) string {
	return insertStd(decl.Normalize(name), r.stdNames)
}

func insertStd(name string, std map[string]bool) string {
	if strings.HasPrefix(name, "::") {
		return name
	}
	parts := decl.SplitQualified(name)
	if len(parts) == 0 {
		return name
	}
	for i, p := range parts {
		base, args, ok := decl.SplitTemplateID(p)
		if ok {
			for j, a := range args {
				args[j] = insertStd(a, std)
			}
			parts[i] = base + "<" + strings.Join(args, ",") + ">"
		}
	}
	first, _, _ := decl.SplitTemplateID(parts[0])
	if std[first] {
		parts = append([]string{"std"}, parts...)
	}
	return strings.Join(parts, "::")
}

// candidates returns the functions named name visible in scope. In a
// record, names declared in the class hide those of its bases, and
// constructors and destructors are never inherited.
func (r *Resolver) candidates(scope *decl.Decl, name string) []*decl.Method {
	name = decl.Normalize(name)
	if scope == nil {
		return nil
	}
	switch scope.Kind() {
	case decl.Namespace, decl.TranslationUnit:
		var out []*decl.Method
		for _, s := range scope.Redeclarations() {
			for _, m := range s.Methods() {
				if m.Name == name {
					out = append(out, m)
				}
			}
		}
		return out
	case decl.Record, decl.TemplateSpecialization:
		return r.memberCandidates(scope, name, true, map[*decl.Decl]bool{})
	}
	return nil
}

func (r *Resolver) memberCandidates(rec *decl.Decl, name string, top bool, seen map[*decl.Decl]bool) []*decl.Method {
	def := rec.Definition()
	if def == nil || seen[def] {
		return nil
	}
	seen[def] = true
	var own []*decl.Method
	for _, m := range def.Methods() {
		if m.Name != name {
			continue
		}
		if !top && (m.Kind == decl.Constructor || m.Kind == decl.Destructor) {
			continue
		}
		own = append(own, m)
	}
	if len(own) > 0 {
		return own
	}
	var out []*decl.Method
	for _, b := range def.Bases() {
		if bd := b.Decl(); bd != nil {
			out = append(out, r.memberCandidates(bd, name, false, seen)...)
		}
	}
	return out
}

// HasFunction reports whether any function called name is visible in
// scope.
func (r *Resolver) HasFunction(scope *decl.Decl, name string) bool {
	return len(r.candidates(scope, name)) > 0
}

// constOK reports whether m may be called on an object of the given
// constness. Free and static functions have no object.
func constOK(m *decl.Method, objectIsConst bool) bool {
	if !m.IsMember() || m.Static || !objectIsConst {
		return true
	}
	return m.Const
}

// MatchFunctionProto finds the function whose parameter types are exactly
// the comma separated types in proto, after typedefs are resolved and
// top-level qualifiers on by-value parameters are dropped. For member
// functions the const qualifier must equal objectIsConst.
func (r *Resolver) MatchFunctionProto(scope *decl.Decl, name, proto string, objectIsConst bool) *decl.Method {
	want, variadic := splitProto(proto)
	for _, m := range r.candidates(scope, name) {
		if len(m.Params) != len(want) || m.Variadic != variadic {
			continue
		}
		if m.IsMember() && !m.Static && m.Const != objectIsConst {
			continue
		}
		match := true
		for i, p := range m.Params {
			pt := r.parseType(p.Type, m.Parent)
			at := r.parseType(want[i], scope)
			if pt.canonical() != at.canonical() {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}

// FindFunctionProto selects the best overload callable with arguments of
// the types listed in proto, allowing standard and user-defined
// conversions.
func (r *Resolver) FindFunctionProto(scope *decl.Decl, name, proto string, objectIsConst bool) *decl.Method {
	types, _ := splitProto(proto)
	args := make([]typeInfo, len(types))
	for i, t := range types {
		args[i] = r.parseType(t, scope)
	}
	return r.bestOverload(r.candidates(scope, name), args, objectIsConst)
}

// FindFunctionArgs selects the best overload callable with the given
// argument expressions. Only literals, casts and functional casts to known
// types can be typed; any other expression makes the lookup fail.
func (r *Resolver) FindFunctionArgs(scope *decl.Decl, name, arglist string, objectIsConst bool) *decl.Method {
	args, ok := r.typeArgs(arglist, scope)
	if !ok {
		return nil
	}
	return r.bestOverload(r.candidates(scope, name), args, objectIsConst)
}

// splitProto splits a prototype into parameter type spellings. "" and
// "void" mean no parameters; a trailing "..." marks a variadic prototype.
func splitProto(proto string) ([]string, bool) {
	proto = decl.Normalize(proto)
	if strings.HasPrefix(proto, "(") && strings.HasSuffix(proto, ")") {
		proto = proto[1 : len(proto)-1]
	}
	if proto == "" || proto == "void" {
		return nil, false
	}
	parts := decl.SplitArgs(proto)
	variadic := false
	if n := len(parts); n > 0 && parts[n-1] == "..." {
		variadic = true
		parts = parts[:n-1]
	}
	return parts, variadic
}

const ellipsisRank = 4

// bestOverload picks the viable candidate with the lowest total conversion
// rank. Ties go to the non-const overload for non-const objects, then to
// the earliest declaration.
func (r *Resolver) bestOverload(cands []*decl.Method, args []typeInfo, objectIsConst bool) *decl.Method {
	var best *decl.Method
	bestScore := -1
	for _, m := range cands {
		if m.Deleted || !constOK(m, objectIsConst) {
			continue
		}
		if len(args) < m.MinRequiredArgs() || (len(args) > len(m.Params) && !m.Variadic) {
			continue
		}
		score, viable := 0, true
		for i, a := range args {
			if i >= len(m.Params) {
				score += ellipsisRank
				continue
			}
			rank := r.rank(a, r.parseType(m.Params[i].Type, m.Parent), true)
			if rank < 0 {
				viable = false
				break
			}
			score += rank
		}
		if !viable {
			continue
		}
		score *= 2
		if m.IsMember() && !m.Static && m.Const && !objectIsConst {
			score++
		}
		if best == nil || score < bestScore {
			best, bestScore = m, score
		}
	}
	return best
}
