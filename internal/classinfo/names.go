package classinfo

import "github.com/hargabyte/clsinfo/internal/decl"

// Name returns the unqualified name, with template arguments for
// specializations. The global scope has no name.
func (c *ClassInfo) Name() string {
	if !c.IsValid() {
		return ""
	}
	return c.decl.Name()
}

// FullName returns the qualified name. An entity reached through a type
// that carries no declaration of its own is named by the type.
func (c *ClassInfo) FullName() string {
	if !c.IsValid() {
		return ""
	}
	if c.typ != nil && c.typ.Decl == nil {
		return c.typ.Spelling
	}
	return c.decl.QualifiedName()
}

// TmpltName returns the name without template arguments.
func (c *ClassInfo) TmpltName() string {
	if !c.IsValid() {
		return ""
	}
	return c.decl.Identifier()
}

// FileName returns the header the entity was declared in.
func (c *ClassInfo) FileName() string {
	if !c.IsValid() {
		return ""
	}
	if def := c.definition(); def.File() != "" {
		return def.File()
	}
	return c.decl.File()
}

// Title returns the one-line description of a class: its annotation if it
// has one, otherwise the comment attached to its definition. Only records
// carry a comment title.
func (c *ClassInfo) Title() string {
	if !c.IsValid() {
		return ""
	}
	if c.decl.Kind().IsTag() {
		for _, d := range []*decl.Decl{c.decl, c.definition()} {
			if a := d.Annotation(); a != "" {
				return a
			}
		}
	}
	if c.decl.Kind().IsRecord() {
		return c.definition().Comment()
	}
	return ""
}

func (c *ClassInfo) definition() *decl.Decl {
	if def := c.decl.Definition(); def != nil {
		return def
	}
	return c.decl
}
