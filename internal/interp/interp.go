// Package interp defines the execution collaborator that reflection hands
// synthesized code to, and Sandbox, an in-process executor that
// understands the allocation and destruction snippets the object factory
// emits.
package interp

// Result is the outcome of executing a snippet.
type Result int

const (
	Success Result = iota
	Failure
	MoreInputExpected
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case MoreInputExpected:
		return "more_input_expected"
	default:
		return "unknown"
	}
}

// Value is the result of an evaluated expression.
type Value struct {
	ptr   uintptr
	valid bool
}

// PointerValue wraps an address.
func PointerValue(p uintptr) Value {
	return Value{ptr: p, valid: true}
}

// Pointer returns the address the expression produced, or 0.
func (v Value) Pointer() uintptr { return v.ptr }

// IsValid reports whether the expression produced a value.
func (v Value) IsValid() bool { return v.valid }

// Transaction scopes changes an executor makes to the declaration tree.
// Pop ends the scope; calling it twice is harmless.
type Transaction interface {
	Pop()
}

// Executor runs code snippets.
type Executor interface {
	Execute(code string) Result
	Evaluate(code string) (Value, Result)
	PushTransaction() Transaction
}

// Recorder receives every snippet an executor processed. The journal
// implements it.
type Recorder interface {
	Record(code, result string) error
}
