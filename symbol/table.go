package symbol

import (
	"slices"
	"sort"

	"github.com/aulscript/aul/value"
)

type global struct {
	index int
	owner string
}

type constant struct {
	value value.Value
	owner string
}

// Table is the default symbol store. It holds the names shared by all
// scripts (globals, constants, engine functions) and one Scope per script.
type Table struct {
	engine    map[string]*Function
	globals   map[string]global
	constants map[string]constant
	scripts   map[string]*Scope

	// script names in registration order
	order []string

	// globals keep their slot across Reset of other scripts
	nextGlobal int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		engine:    map[string]*Function{},
		globals:   map[string]global{},
		constants: map[string]constant{},
		scripts:   map[string]*Scope{},
	}
}

// DefineEngineFunction registers a function provided by the host engine.
func (t *Table) DefineEngineFunction(name string, access Access, params ...Param) *Function {
	fn := &Function{Name: name, Access: access, Params: params}
	t.engine[name] = fn
	return fn
}

// DefineConstant registers an engine-provided constant.
func (t *Table) DefineConstant(name string, v value.Value) {
	t.constants[name] = constant{value: v}
}

// Script returns the scope of the named script, creating it if needed.
func (t *Table) Script(name string) *Scope {
	s, ok := t.scripts[name]
	if !ok {
		s = &Scope{
			table:     t,
			name:      name,
			functions: map[string]*Function{},
			fields:    map[string]int{},
		}
		t.scripts[name] = s
		t.order = append(t.order, name)
	}
	return s
}

// Include makes the functions and object fields of parent visible to script
// and lets script's functions call the versions they override through
// "inherited".
func (t *Table) Include(script, parent string) {
	s := t.Script(script)
	for _, p := range s.parents {
		if p == parent {
			return
		}
	}
	s.parents = append(s.parents, parent)
}

// Reset forgets everything the named script declared, so it can be
// compiled again.
func (t *Table) Reset(script string) {
	delete(t.scripts, script)
	t.order = slices.DeleteFunc(t.order, func(name string) bool { return name == script })
	for name, g := range t.globals {
		if g.owner == script {
			delete(t.globals, name)
		}
	}
	for name, c := range t.constants {
		if c.owner == script {
			delete(t.constants, name)
		}
	}
}

// Globals returns the names of all registered globals, sorted.
func (t *Table) Globals() []string {
	names := make([]string, 0, len(t.globals))
	for name := range t.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scope resolves names for one script. It implements Resolver.
type Scope struct {
	table     *Table
	name      string
	parents   []string
	functions map[string]*Function
	order     []*Function
	fields    map[string]int
}

var _ Resolver = (*Scope)(nil)

// Name returns the script name.
func (s *Scope) Name() string {
	return s.name
}

// Include links an included or appended-to script. See Table.Include.
func (s *Scope) Include(parent string) {
	s.table.Include(s.name, parent)
}

// Functions returns the script's functions in declaration order.
func (s *Scope) Functions() []*Function {
	return s.order
}

func (s *Scope) LookupParameter(fn *Function, name string) (int, bool) {
	if fn == nil {
		return 0, false
	}
	for i, p := range fn.Params {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (s *Scope) LookupLocal(fn *Function, name string) (int, bool) {
	if fn == nil {
		return 0, false
	}
	for i, v := range fn.Locals {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (s *Scope) LookupObjectField(name string) (int, bool) {
	var found int
	ok := s.walk(func(sc *Scope) bool {
		i, ok := sc.fields[name]
		found = i
		return ok
	})
	return found, ok
}

func (s *Scope) LookupGlobal(name string) (int, bool) {
	g, ok := s.table.globals[name]
	return g.index, ok
}

func (s *Scope) LookupConstant(name string) (value.Value, bool) {
	c, ok := s.table.constants[name]
	return c.value, ok
}

// LookupFunction searches the script, then its included scripts, then
// global functions of every script in registration order, then the engine.
func (s *Scope) LookupFunction(name string) (*Function, bool) {
	var found *Function
	if s.walk(func(sc *Scope) bool {
		found = sc.functions[name]
		return found != nil
	}) {
		return found, true
	}
	for _, script := range s.table.order {
		if fn, ok := s.table.scripts[script].functions[name]; ok && fn.Access == Global {
			return fn, true
		}
	}
	fn, ok := s.table.engine[name]
	return fn, ok
}

func (s *Scope) LookupInherited(fn *Function) (*Function, bool) {
	owner := s.table.scripts[fn.Script]
	if owner == nil {
		return nil, false
	}
	var found *Function
	seen := map[string]bool{owner.name: true}
	for _, p := range owner.parents {
		parent := s.table.scripts[p]
		if parent == nil || seen[p] {
			continue
		}
		if parent.walkFrom(seen, func(sc *Scope) bool {
			found = sc.functions[fn.Name]
			return found != nil
		}) {
			return found, true
		}
	}
	if eng, ok := s.table.engine[fn.Name]; ok {
		return eng, true
	}
	return nil, false
}

func (s *Scope) RegisterFunction(fn *Function) error {
	if _, exists := s.functions[fn.Name]; exists {
		return &DuplicateError{What: "function", Name: fn.Name}
	}
	fn.Script = s.name
	s.functions[fn.Name] = fn
	s.order = append(s.order, fn)
	return nil
}

func (s *Scope) RegisterLocal(fn *Function, name string, pos int) (int, error) {
	if i, ok := s.LookupLocal(fn, name); ok {
		return i, &DuplicateError{What: "variable", Name: name}
	}
	fn.Locals = append(fn.Locals, Var{Name: name, Pos: pos})
	return len(fn.Locals) - 1, nil
}

func (s *Scope) RegisterObjectField(name string) (int, error) {
	if i, ok := s.fields[name]; ok {
		return i, &DuplicateError{What: "local", Name: name}
	}
	i := len(s.fields)
	s.fields[name] = i
	return i, nil
}

func (s *Scope) RegisterGlobal(name string) (int, error) {
	if g, ok := s.table.globals[name]; ok {
		return g.index, &DuplicateError{What: "static", Name: name}
	}
	i := s.table.nextGlobal
	s.table.nextGlobal++
	s.table.globals[name] = global{index: i, owner: s.name}
	return i, nil
}

func (s *Scope) RegisterConstant(name string, v value.Value) error {
	if _, ok := s.table.constants[name]; ok {
		return &DuplicateError{What: "constant", Name: name}
	}
	s.table.constants[name] = constant{value: v, owner: s.name}
	return nil
}

// walk visits s and then its included scripts depth first, stopping when
// visit returns true.
func (s *Scope) walk(visit func(*Scope) bool) bool {
	return s.walkFrom(map[string]bool{}, visit)
}

func (s *Scope) walkFrom(seen map[string]bool, visit func(*Scope) bool) bool {
	seen[s.name] = true
	if visit(s) {
		return true
	}
	for _, p := range s.parents {
		parent := s.table.scripts[p]
		if parent == nil || seen[p] {
			continue
		}
		if parent.walkFrom(seen, visit) {
			return true
		}
	}
	return false
}
