package interp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
)

const (
	heapBase  uintptr = 0x10000
	heapAlign uintptr = 16
)

// A type name as the factory spells it: qualified, possibly a template-id.
const typeName = `([A-Za-z_:][\w:<>,\s*&]*?)`

var (
	newRe          = regexp.MustCompile(`^new\s+` + typeName + `\s*;$`)
	newArrayRe     = regexp.MustCompile(`^new\s+` + typeName + `\s*\[\s*(\d+)\s*\]\s*;$`)
	placementNewRe = regexp.MustCompile(`^new\s*\(\s*\(\s*void\s*\*\s*\)\s*(\d+)\s*\)\s*` + typeName + `\s*(?:\[\s*(\d+)\s*\])?\s*;$`)
	deleteRe       = regexp.MustCompile(`^delete\s*\(\s*` + typeName + `\s*\*\s*\)\s*(\d+)\s*;$`)
	deleteArrayRe  = regexp.MustCompile(`^delete\s*\[\s*\]\s*\(\s*` + typeName + `\s*\*\s*\)\s*(\d+)\s*;$`)
	destructRe     = regexp.MustCompile(`^\(\s*\(\s*` + typeName + `\s*\*\s*\)\s*(\d+)\s*\)\s*->\s*` + typeName + `::~(\w+)\s*\(\s*\)\s*;$`)
)

// Object describes a live allocation in the sandbox.
type Object struct {
	Addr      uintptr
	Type      string
	Count     int
	Size      int64
	Array     bool
	Placement bool
	Destroyed bool
}

type object struct {
	decl *decl.Decl
	Object
}

// Sandbox executes object factory snippets against a simulated heap.
// Constructors and destructors are not run; the sandbox checks that the
// snippet is well formed, that the named type can be built or destroyed
// that way, and that deletes match a live allocation of the right shape.
type Sandbox struct {
	mu      sync.Mutex
	tree    *decl.Tree
	rec     Recorder
	rep     diag.Reporter
	next    uintptr
	objects map[uintptr]*object
	depth   int
	pushed  int
}

// NewSandbox creates a sandbox over tree. rec may be nil; rep may be nil
// to drop recorder failures.
func NewSandbox(tree *decl.Tree, rec Recorder, rep diag.Reporter) *Sandbox {
	if rep == nil {
		rep = diag.Discard{}
	}
	return &Sandbox{
		tree:    tree,
		rec:     rec,
		rep:     rep,
		next:    heapBase,
		objects: map[uintptr]*object{},
	}
}

// Execute runs code and discards any value it produces.
func (s *Sandbox) Execute(code string) Result {
	_, res := s.Evaluate(code)
	return res
}

// Evaluate runs code. New-expressions produce the address of the object.
func (s *Sandbox) Evaluate(code string) (Value, Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, res := s.run(strings.TrimSpace(code))
	if s.rec != nil {
		if err := s.rec.Record(code, res.String()); err != nil {
			s.rep.Debugf("Sandbox.Evaluate", "record snippet: %v", err)
		}
	}
	return v, res
}

// PushTransaction opens a transaction. The sandbox only counts them.
func (s *Sandbox) PushTransaction() Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth++
	s.pushed++
	return &transaction{s: s}
}

// TransactionDepth returns how many transactions are open.
func (s *Sandbox) TransactionDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// Transactions returns how many transactions were ever pushed.
func (s *Sandbox) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushed
}

// Objects returns the live allocations ordered by address.
func (s *Sandbox) Objects() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o.Object)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// LiveCount returns how many allocations have not been deleted or
// destroyed.
func (s *Sandbox) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.objects {
		if !o.Destroyed {
			n++
		}
	}
	return n
}

type transaction struct {
	s      *Sandbox
	popped bool
}

func (t *transaction) Pop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.popped {
		return
	}
	t.popped = true
	t.s.depth--
}

func (s *Sandbox) run(code string) (Value, Result) {
	if code == "" {
		return Value{}, Failure
	}
	if !balanced(code) {
		return Value{}, MoreInputExpected
	}

	if m := newRe.FindStringSubmatch(code); m != nil {
		return s.allocate(m[1], 1, false, 0)
	}
	if m := newArrayRe.FindStringSubmatch(code); m != nil {
		n, ok := parseCount(m[2])
		if !ok {
			return Value{}, Failure
		}
		return s.allocate(m[1], n, true, 0)
	}
	if m := placementNewRe.FindStringSubmatch(code); m != nil {
		arena, ok := parseAddr(m[1])
		if !ok || arena == 0 {
			return Value{}, Failure
		}
		if m[3] == "" {
			return s.allocate(m[2], 1, false, arena)
		}
		n, ok := parseCount(m[3])
		if !ok {
			return Value{}, Failure
		}
		return s.allocate(m[2], n, true, arena)
	}
	if m := deleteRe.FindStringSubmatch(code); m != nil {
		return Value{}, s.release(m[1], m[2], false)
	}
	if m := deleteArrayRe.FindStringSubmatch(code); m != nil {
		return Value{}, s.release(m[1], m[2], true)
	}
	if m := destructRe.FindStringSubmatch(code); m != nil {
		return Value{}, s.destruct(m[1], m[2], m[3], m[4])
	}
	return Value{}, Failure
}

// record resolves a type name to a constructible record definition.
func (s *Sandbox) record(name string) *decl.Decl {
	d, typ := s.tree.FindScope(strings.TrimSpace(name))
	if d == nil {
		d = typ.RecordDecl()
	}
	if d == nil || !d.Kind().IsRecord() {
		return nil
	}
	return d.Definition()
}

func (s *Sandbox) allocate(name string, count int, array bool, arena uintptr) (Value, Result) {
	d := s.record(name)
	if d == nil || d.IsAbstract() || !d.HasDefaultConstructor() {
		return Value{}, Failure
	}
	size := s.tree.SizeOf(d)
	if size < 1 {
		size = 1
	}

	addr := arena
	if arena != 0 {
		total := uintptr(size) * uintptr(max(count, 1))
		if prev := s.objects[arena]; prev != nil && prev.Destroyed && !array && !prev.Array && total <= uintptr(prev.Size) {
			// Storage of a destroyed heap object is reused; it still
			// belongs to the heap and is freed by delete.
			prev.decl = d
			prev.Type = d.QualifiedName()
			prev.Destroyed = false
			return PointerValue(addr), Success
		}
		if s.overlapsObject(arena, total) {
			return Value{}, Failure
		}
	} else {
		addr = s.next
		total := uintptr(size) * uintptr(count)
		if total == 0 {
			total = 1
		}
		s.next = (s.next + total + heapAlign - 1) &^ (heapAlign - 1)
	}
	s.objects[addr] = &object{
		decl: d,
		Object: Object{
			Addr:      addr,
			Type:      d.QualifiedName(),
			Count:     count,
			Size:      size,
			Array:     array,
			Placement: arena != 0,
		},
	}
	return PointerValue(addr), Success
}

// overlapsObject reports whether [addr, addr+n) intersects the storage of
// any object the sandbox knows about.
func (s *Sandbox) overlapsObject(addr, n uintptr) bool {
	for _, obj := range s.objects {
		span := uintptr(obj.Size) * uintptr(max(obj.Count, 1))
		if addr < obj.Addr+span && obj.Addr < addr+n {
			return true
		}
	}
	return false
}

func (s *Sandbox) lookupObject(name, addrText string) (*object, *decl.Decl, uintptr, bool) {
	addr, ok := parseAddr(addrText)
	if !ok {
		return nil, nil, 0, false
	}
	d := s.record(name)
	if d == nil {
		return nil, nil, addr, false
	}
	return s.objects[addr], d, addr, true
}

func (s *Sandbox) release(name, addrText string, array bool) Result {
	obj, d, addr, ok := s.lookupObject(name, addrText)
	if !ok {
		return Failure
	}
	if addr == 0 {
		// Deleting a null pointer is a no-op.
		return Success
	}
	if obj == nil || obj.Placement || obj.Destroyed || obj.Array != array {
		return Failure
	}
	if !decl.Same(obj.decl, d) && !(obj.decl.IsDerivedFrom(d) && d.IsPolymorphic()) {
		return Failure
	}
	delete(s.objects, addr)
	return Success
}

func (s *Sandbox) destruct(name, addrText, qualifier, dtor string) Result {
	obj, d, _, ok := s.lookupObject(name, addrText)
	if !ok || obj == nil || obj.Array || obj.Destroyed {
		return Failure
	}
	if q := s.record(qualifier); q == nil || !decl.Same(q, d) {
		return Failure
	}
	if dtor != d.Identifier() || !decl.Same(obj.decl, d) {
		return Failure
	}
	if obj.Placement {
		delete(s.objects, obj.Addr)
		return Success
	}
	obj.Destroyed = true
	return Success
}

func parseAddr(s string) (uintptr, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uintptr(v), true
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// balanced reports whether every bracket opened in code is closed. Extra
// closers are left for the grammar to reject.
func balanced(code string) bool {
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth <= 0
}
