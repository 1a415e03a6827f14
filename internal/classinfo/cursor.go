// Package classinfo is a single-cursor reflection API over a declaration
// tree. A ClassInfo designates one class, struct, union, enum or namespace
// at a time; it can be bound by name, by handle or by type, or walked
// over every such entity in program order with Next.
//
// Queries never return errors. Usage mistakes go to the diag.Reporter and
// the query returns a benign zero value; lookups that find nothing return
// an invalid result.
package classinfo

import (
	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/lookup"
)

// State describes what a cursor currently designates.
type State int

const (
	// StateUnbound: no entity. Init with an unknown name leaves the
	// cursor here.
	StateUnbound State = iota
	// StateGlobal: a cursor fresh from New. It designates the translation
	// unit and is also ready to iterate; the first Next yields the first
	// entity of the program.
	StateGlobal
	// StateEntity: positioned on an entity, by Init or by Next.
	StateEntity
	// StateExhausted: Next ran past the last entity.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateGlobal:
		return "global"
	case StateEntity:
		return "entity"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// position is a slot in one scope's declaration list.
type position struct {
	decls []*decl.Decl
	idx   int
}

func (p position) valid() bool { return p.idx < len(p.decls) }

func (p position) current() *decl.Decl { return p.decls[p.idx] }

// ClassInfo is a reflection cursor. It is not safe for concurrent use.
type ClassInfo struct {
	res  *lookup.Resolver
	tree *decl.Tree
	exec interp.Executor
	rep  diag.Reporter

	state     State
	firstTime bool
	descend   bool
	iter      position
	stack     []position

	decl *decl.Decl
	typ  *decl.Type
}

// New creates a cursor on the global scope, ready to iterate. exec
// receives transactions around tree loading and the factory's snippets;
// rep receives usage errors. A nil rep writes to stderr.
func New(res *lookup.Resolver, exec interp.Executor, rep diag.Reporter) *ClassInfo {
	c := newCursor(res, exec, rep)
	tu := c.tree.TU()

	tx := c.push()
	c.iter = position{decls: tu.Children()}
	c.firstTime = true
	tx.Pop()

	c.next()
	c.firstTime = true
	c.decl = tu
	c.typ = nil
	c.state = StateGlobal
	return c
}

// ForName creates a cursor bound to the entity name resolves to.
func ForName(res *lookup.Resolver, exec interp.Executor, rep diag.Reporter, name string) *ClassInfo {
	c := newCursor(res, exec, rep)
	c.Init(name)
	return c
}

// ForDecl creates a cursor bound to d.
func ForDecl(res *lookup.Resolver, exec interp.Executor, rep diag.Reporter, d *decl.Decl) *ClassInfo {
	c := newCursor(res, exec, rep)
	c.InitDecl(d)
	return c
}

// ForType creates a cursor bound to the tag declaration of typ.
func ForType(res *lookup.Resolver, exec interp.Executor, rep diag.Reporter, typ *decl.Type) *ClassInfo {
	c := newCursor(res, exec, rep)
	c.InitType(typ)
	return c
}

func newCursor(res *lookup.Resolver, exec interp.Executor, rep diag.Reporter) *ClassInfo {
	if rep == nil {
		rep = diag.Default()
	}
	return &ClassInfo{res: res, tree: res.Tree(), exec: exec, rep: rep, firstTime: true}
}

type noTransaction struct{}

func (noTransaction) Pop() {}

func (c *ClassInfo) push() interp.Transaction {
	if c.exec == nil {
		return noTransaction{}
	}
	return c.exec.PushTransaction()
}

func (c *ClassInfo) reset() {
	c.firstTime = true
	c.descend = false
	c.iter = position{}
	c.stack = nil
	c.decl = nil
	c.typ = nil
}

// Init rebinds the cursor to the entity name resolves to. Names the tree
// does not know are retried with std:: inserted. A name that resolves to
// a typedef binds to the tag it aliases.
func (c *ClassInfo) Init(name string) {
	c.reset()
	tx := c.push()
	defer tx.Pop()

	d, typ := c.res.FindScope(name)
	if d == nil && typ != nil && !typ.Indirect {
		d = typ.Decl
	}
	c.decl, c.typ = d, typ
	c.bound()
}

// InitDecl rebinds the cursor to d.
func (c *ClassInfo) InitDecl(d *decl.Decl) {
	c.reset()
	c.decl = d
	c.bound()
}

// InitTagnum is retired. Calling it is fatal.
func (c *ClassInfo) InitTagnum(tagnum int) {
	c.rep.Fatalf("ClassInfo.InitTagnum", "Should no longer be called")
}

// InitType rebinds the cursor to the tag declaration typ names. A type
// with no tag declaration is a usage error and leaves the cursor unbound.
func (c *ClassInfo) InitType(typ *decl.Type) {
	c.reset()
	c.typ = typ
	if typ != nil && !typ.Indirect {
		c.decl = typ.Decl
	}
	if c.decl == nil {
		spelling := ""
		if typ != nil {
			spelling = typ.Spelling
		}
		c.rep.Errorf("ClassInfo.InitType", "The given type %s does not point to a Decl", spelling)
	}
	c.bound()
}

func (c *ClassInfo) bound() {
	if c.decl == nil {
		c.state = StateUnbound
		return
	}
	c.state = StateEntity
}

// State returns what the cursor designates.
func (c *ClassInfo) State() State { return c.state }

// Decl returns the designated declaration, or nil.
func (c *ClassInfo) Decl() *decl.Decl { return c.decl }

// Type returns the type the cursor was reached through, or nil.
func (c *ClassInfo) Type() *decl.Type { return c.typ }

// Next moves to the next namespace, enum, class, struct, union or template
// specialization in program order and reports whether there was one.
//
// The walk is depth first. A namespace is yielded once, at its first
// declaration; its reopenings are entered without being yielded. Records
// are yielded only where defined, and forward declarations are neither
// yielded nor entered. A yielded namespace or record with members is
// entered on the following call. Enums are never entered.
func (c *ClassInfo) Next() bool {
	return c.next()
}

func (c *ClassInfo) next() bool {
	if !c.iter.valid() {
		if c.firstTime && c.decl != nil && c.state != StateGlobal {
			c.rep.Errorf("ClassInfo.Next", "Next called but iteration not prepared for %s!", c.decl.Name())
		}
		if c.state == StateGlobal {
			c.decl, c.typ = nil, nil
			c.state = StateExhausted
		}
		return false
	}

	tx := c.push()
	defer tx.Pop()

	for {
		if c.firstTime {
			c.firstTime = false
		} else {
			if !c.descend {
				c.iter.idx++
			} else {
				c.descend = false
				c.stack = append(c.stack, c.iter)
				c.iter = position{decls: c.iter.current().Children()}
			}
			for !c.iter.valid() && len(c.stack) > 0 {
				c.iter = c.stack[len(c.stack)-1]
				c.stack = c.stack[:len(c.stack)-1]
				c.iter.idx++
			}
			if !c.iter.valid() {
				c.decl, c.typ = nil, nil
				c.state = StateExhausted
				return false
			}
		}

		d := c.iter.current()
		switch d.Kind() {
		case decl.Namespace, decl.Enum, decl.Record, decl.TemplateSpecialization:
		default:
			continue
		}
		if d.Kind().IsTag() && !d.IsCompleteDefinition() {
			continue
		}
		if d.Kind() == decl.Namespace && !d.IsCanonical() {
			c.descend = true
			continue
		}
		if d.Kind() != decl.Enum && d.HasChildren() {
			c.descend = true
		}

		c.decl = d
		c.typ = nil
		if d.Kind().IsRecord() {
			c.typ = &decl.Type{Spelling: d.QualifiedName(), Decl: d}
		}
		c.state = StateEntity
		return true
	}
}
