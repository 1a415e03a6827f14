package classinfo

import (
	"fmt"

	"github.com/hargabyte/clsinfo/internal/interp"
)

// The factory builds objects by handing new and delete expressions to the
// executor. A snippet the executor rejects yields a zero address or, for
// teardown, nothing at all.

// New allocates and default-constructs one object of the designated type.
// It returns 0 when the type has no reachable default constructor or the
// executor fails.
func (c *ClassInfo) New() uintptr {
	if !c.HasDefaultConstructor() {
		return 0
	}
	return c.evaluate(fmt.Sprintf("new %s;", c.decl.QualifiedName()))
}

// NewArray allocates and default-constructs n objects.
func (c *ClassInfo) NewArray(n int) uintptr {
	if !c.HasDefaultConstructor() {
		return 0
	}
	return c.evaluate(fmt.Sprintf("new %s[%d];", c.decl.QualifiedName(), n))
}

// NewArrayAt default-constructs n objects in caller-supplied storage.
func (c *ClassInfo) NewArrayAt(n int, arena uintptr) uintptr {
	if !c.HasDefaultConstructor() {
		return 0
	}
	return c.evaluate(fmt.Sprintf("new ((void*)%d) %s[%d];", arena, c.decl.QualifiedName(), n))
}

// NewAt default-constructs one object in caller-supplied storage.
func (c *ClassInfo) NewAt(arena uintptr) uintptr {
	if !c.HasDefaultConstructor() {
		return 0
	}
	return c.evaluate(fmt.Sprintf("new ((void*)%d) %s;", arena, c.decl.QualifiedName()))
}

// Delete destroys and frees an object allocated by New.
func (c *ClassInfo) Delete(arena uintptr) {
	if !c.IsLoaded() {
		return
	}
	c.execute(fmt.Sprintf("delete (%s*)%d;", c.decl.QualifiedName(), arena))
}

// DeleteArray destroys and frees an array allocated by NewArray. With
// dtorOnly the caller asks to destroy an array built in its own storage;
// the element count is unknown, so that is reported and nothing happens.
func (c *ClassInfo) DeleteArray(arena uintptr, dtorOnly bool) {
	if !c.IsLoaded() {
		return
	}
	if dtorOnly {
		c.rep.Errorf("ClassInfo.DeleteArray", "Placement delete of an array is unsupported!")
		return
	}
	c.execute(fmt.Sprintf("delete[] (%s*)%d;", c.decl.QualifiedName(), arena))
}

// Destruct runs the destructor of an object built by NewAt without
// releasing its storage.
func (c *ClassInfo) Destruct(arena uintptr) {
	if !c.IsLoaded() {
		return
	}
	if c.decl.Identifier() == "" {
		c.rep.Errorf("ClassInfo.Destruct", "cannot destruct object of unnamed declaration.")
		return
	}
	name := c.decl.QualifiedName()
	c.execute(fmt.Sprintf("((%s*)%d)->%s::~%s();", name, arena, name, c.decl.Identifier()))
}

func (c *ClassInfo) evaluate(code string) uintptr {
	if c.exec == nil {
		return 0
	}
	tx := c.push()
	defer tx.Pop()
	v, res := c.exec.Evaluate(code)
	if res != interp.Success {
		return 0
	}
	return v.Pointer()
}

func (c *ClassInfo) execute(code string) {
	if c.exec == nil {
		return
	}
	tx := c.push()
	defer tx.Pop()
	c.exec.Execute(code)
}
