package output

import (
	"strconv"
	"time"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/journal"
)

// EntityOutput describes one class-like entity for clsinfo show and list.
type EntityOutput struct {
	// Name is the qualified name; empty for the global scope.
	Name string `yaml:"name" json:"name"`

	// Kind is the declaration kind: namespace, record, specialization, enum.
	Kind string `yaml:"kind" json:"kind"`

	// Tag is class, struct, union or enum for tag types.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`

	// Template is the name without template arguments, when it differs.
	Template string `yaml:"template,omitempty" json:"template,omitempty"`

	// Location is the defining header and line: path:line
	Location string `yaml:"location,omitempty" json:"location,omitempty"`

	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	Loaded bool   `yaml:"loaded" json:"loaded"`
	Size   int64  `yaml:"size" json:"size"`
	Tagnum int64  `yaml:"tagnum" json:"tagnum"`

	// Property lists the kind bits by name, e.g. [class, abstract].
	Property []string `yaml:"property,omitempty" json:"property,omitempty"`

	// ClassProperty lists the special member bits by name.
	ClassProperty []string `yaml:"class_property,omitempty" json:"class_property,omitempty"`

	DefaultConstructible bool `yaml:"default_constructible" json:"default_constructible"`

	Bases   []BaseOutput `yaml:"bases,omitempty" json:"bases,omitempty"`
	Methods []string     `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// BaseOutput is one direct or indirect base and its offset in the derived
// object.
type BaseOutput struct {
	Name    string `yaml:"name" json:"name"`
	Offset  int64  `yaml:"offset" json:"offset"`
	Access  string `yaml:"access" json:"access"`
	Virtual bool   `yaml:"virtual,omitempty" json:"virtual,omitempty"`
	Depth   int    `yaml:"depth" json:"depth"`
}

// ListOutput is the result of enumerating a declaration tree.
type ListOutput struct {
	Count    int             `yaml:"count" json:"count"`
	Entities []*EntityOutput `yaml:"entities" json:"entities"`
}

// MethodOutput is the result of a method lookup.
type MethodOutput struct {
	Class string `yaml:"class" json:"class"`
	Name  string `yaml:"name" json:"name"`
	Found bool   `yaml:"found" json:"found"`

	Prototype   string `yaml:"prototype,omitempty" json:"prototype,omitempty"`
	NArg        int    `yaml:"nargs" json:"nargs"`
	NDefaultArg int    `yaml:"ndefault_args" json:"ndefault_args"`

	// Offset is the this-adjustment from the class to the declaring base.
	Offset int64 `yaml:"offset" json:"offset"`
}

// SnippetOutput is one journaled snippet.
type SnippetOutput struct {
	ID         int64  `yaml:"id" json:"id"`
	Session    string `yaml:"session" json:"session"`
	Code       string `yaml:"code" json:"code"`
	Result     string `yaml:"result" json:"result"`
	ExecutedAt string `yaml:"executed_at" json:"executed_at"`
}

// ObjectOutput is an object of the sandbox executor.
type ObjectOutput struct {
	Address   uint64 `yaml:"address" json:"address"`
	Type      string `yaml:"type" json:"type"`
	Count     int    `yaml:"count" json:"count"`
	Size      int64  `yaml:"size" json:"size"`
	Array     bool   `yaml:"array,omitempty" json:"array,omitempty"`
	Placement bool   `yaml:"placement,omitempty" json:"placement,omitempty"`
	Destroyed bool   `yaml:"destroyed,omitempty" json:"destroyed,omitempty"`
}

// FactoryOutput reports one construct and destroy round trip.
type FactoryOutput struct {
	Class    string           `yaml:"class" json:"class"`
	Address  uint64           `yaml:"address" json:"address"`
	Snippets []*SnippetOutput `yaml:"snippets" json:"snippets"`
	// Live lists the objects still alive afterwards.
	Live []*ObjectOutput `yaml:"live,omitempty" json:"live,omitempty"`
}

var propertyNames = []struct {
	bit  int64
	name string
}{
	{classinfo.IsClass, "class"},
	{classinfo.IsStruct, "struct"},
	{classinfo.IsUnion, "union"},
	{classinfo.IsEnum, "enum"},
	{classinfo.IsAbstract, "abstract"},
	{classinfo.IsCPPCompiled, "cpp_compiled"},
	{classinfo.IsNamespace, "namespace"},
	{classinfo.IsDefinedInStd, "std"},
}

var classPropertyNames = []struct {
	bit  int64
	name string
}{
	{classinfo.ClassIsValid, "valid"},
	{classinfo.ClassHasExplicitCtor, "explicit_ctor"},
	{classinfo.ClassHasImplicitCtor, "implicit_ctor"},
	{classinfo.ClassHasDefaultCtor, "default_ctor"},
	{classinfo.ClassHasAssignOpr, "assign_opr"},
	{classinfo.ClassHasExplicitDtor, "explicit_dtor"},
	{classinfo.ClassHasImplicitDtor, "implicit_dtor"},
	{classinfo.ClassHasVirtual, "virtual"},
	{classinfo.ClassIsAbstract, "abstract"},
}

// PropertyNames lists the names of the Property bits set in p.
func PropertyNames(p int64) []string {
	var names []string
	for _, pn := range propertyNames {
		if p&pn.bit != 0 {
			names = append(names, pn.name)
		}
	}
	return names
}

// ClassPropertyNames lists the names of the ClassProperty bits set in p.
func ClassPropertyNames(p int64) []string {
	var names []string
	for _, pn := range classPropertyNames {
		if p&pn.bit != 0 {
			names = append(names, pn.name)
		}
	}
	return names
}

// NewEntityOutput summarizes the entity a cursor designates. Bases and
// methods are only filled in when detail is set. It returns nil for an
// invalid cursor.
func NewEntityOutput(ci *classinfo.ClassInfo, detail bool) *EntityOutput {
	if !ci.IsValid() {
		return nil
	}
	d := ci.Decl()
	out := &EntityOutput{
		Name:                 ci.FullName(),
		Kind:                 d.Kind().String(),
		Tag:                  d.Tag().String(),
		Title:                ci.Title(),
		Loaded:               ci.IsLoaded(),
		Size:                 ci.Size(),
		Tagnum:               ci.Tagnum(),
		Property:             PropertyNames(ci.Property()),
		ClassProperty:        ClassPropertyNames(ci.ClassProperty()),
		DefaultConstructible: ci.HasDefaultConstructor(),
	}
	if tmpl := ci.TmpltName(); tmpl != ci.Name() {
		out.Template = tmpl
	}
	if file := ci.FileName(); file != "" {
		out.Location = file
		if def := d.Definition(); def != nil && def.Line() > 0 {
			out.Location = file + ":" + strconv.FormatUint(uint64(def.Line()), 10)
		}
	}
	if !detail || !d.Kind().IsRecord() || d.Definition() == nil {
		return out
	}

	it := decl.NewBaseIterator(d.Definition())
	for it.Next() {
		b := it.Base()
		out.Bases = append(out.Bases, BaseOutput{
			Name:    b.Base.QualifiedName(),
			Offset:  b.Offset,
			Access:  b.Access.String(),
			Virtual: b.Virtual,
			Depth:   b.Depth,
		})
	}
	for _, m := range d.Definition().Methods() {
		out.Methods = append(out.Methods, m.Access.String()+" "+m.Name+m.Signature())
	}
	return out
}

// NewMethodOutput describes the result of a method lookup on class.
func NewMethodOutput(class, name string, mi classinfo.MethodInfo, offset int64) *MethodOutput {
	out := &MethodOutput{Class: class, Name: name, Found: mi.IsValid()}
	if !mi.IsValid() {
		return out
	}
	out.Prototype = mi.Prototype()
	out.NArg = mi.NArg()
	out.NDefaultArg = mi.NDefaultArg()
	out.Offset = offset
	return out
}

// NewSnippetOutputs converts journal entries.
func NewSnippetOutputs(entries []journal.Entry) []*SnippetOutput {
	out := make([]*SnippetOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, &SnippetOutput{
			ID:         e.ID,
			Session:    e.Session,
			Code:       e.Code,
			Result:     e.Result,
			ExecutedAt: e.ExecutedAt.Format(time.RFC3339),
		})
	}
	return out
}

// NewObjectOutputs converts sandbox objects.
func NewObjectOutputs(objects []interp.Object) []*ObjectOutput {
	out := make([]*ObjectOutput, 0, len(objects))
	for _, o := range objects {
		out = append(out, &ObjectOutput{
			Address:   uint64(o.Addr),
			Type:      o.Type,
			Count:     o.Count,
			Size:      o.Size,
			Array:     o.Array,
			Placement: o.Placement,
			Destroyed: o.Destroyed,
		})
	}
	return out
}
