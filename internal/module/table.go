// Package module builds per-file symbol tables and resolves steal
// directives across script files.
package module

import (
	"mslash/internal/ast"
	"sort"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Function is a function declaration bound to the table of the file it was
// written in. Calls made from its body resolve names in Home.
type Function struct {
	Def  *ast.FuncDef
	Home *Table
}

// Name returns the declared function name.
func (f *Function) Name() string { return f.Def.Name }

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return len(f.Def.Params) }

// Class is a class declaration bound to its defining file's table.
type Class struct {
	Def  *ast.ClassDef
	Home *Table
}

// Name returns the declared class name.
func (c *Class) Name() string { return c.Def.Name }

// Method looks up a method by name.
func (c *Class) Method(name string) mo.Option[*Function] {
	def, ok := c.Def.Methods[name]
	if !ok {
		return mo.None[*Function]()
	}
	return mo.Some(&Function{Def: def, Home: c.Home})
}

// Table is the symbol table of one loaded file: its own declarations plus
// everything it stole, with later entries replacing earlier ones.
type Table struct {
	File    string
	funcs   map[string]*Function
	classes map[string]*Class
}

// NewTable creates an empty table for file.
func NewTable(file string) *Table {
	return &Table{
		File:    file,
		funcs:   make(map[string]*Function),
		classes: make(map[string]*Class),
	}
}

// DefineFunc binds name to fn, replacing any function or class of that name.
func (t *Table) DefineFunc(name string, fn *Function) {
	delete(t.classes, name)
	t.funcs[name] = fn
}

// DefineClass binds name to c, replacing any function or class of that name.
func (t *Table) DefineClass(name string, c *Class) {
	delete(t.funcs, name)
	t.classes[name] = c
}

// Func looks up a function.
func (t *Table) Func(name string) (*Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Class looks up a class.
func (t *Table) Class(name string) (*Class, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// Names returns every bound name in sorted order.
func (t *Table) Names() []string {
	names := append(lo.Keys(t.funcs), lo.Keys(t.classes)...)
	sort.Strings(names)
	return names
}
