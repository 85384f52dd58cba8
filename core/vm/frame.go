package vm

import "github.com/coreform/jsvm/core/value"

// upvalueCell is a boxed local shared between a closure and whichever
// frame's MAKECLOSURE captured it. Unlike the corpus's open/closed upvalue
// split (captured-in-place until the enclosing frame returns, then copied
// out), every captured local here is boxed at closure-creation time: a
// simplification that trades a theoretical allocation for never needing an
// explicit close-on-scope-exit step. See DESIGN.md.
type upvalueCell struct {
	value value.Value
}

// scope is one lexical environment record: a set of named bindings
// layered in front of the frame's indexed locals (spec.md §4.4
// "environment: push-block-scope, pop-scope, define-binding,
// init-binding"). Uninitialized bindings (let/const in their temporal
// dead zone) are represented by initialized=false.
type scope struct {
	parent      *scope
	names       map[string]int // binding name -> index into values
	values      []value.Value
	initialized []bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]int)}
}

func (s *scope) define(name string) {
	s.names[name] = len(s.values)
	s.values = append(s.values, value.UndefinedValue)
	s.initialized = append(s.initialized, false)
}

func (s *scope) lookup(name string) (*scope, int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if i, ok := cur.names[name]; ok {
			return cur, i, true
		}
	}
	return nil, 0, false
}

// Frame is one activation record: a base pointer into the VM's shared
// operand stack, the running CodeBlock, and the bookkeeping Dispatch needs
// to resume the caller on return (spec.md §4.4 "Calls").
type Frame struct {
	code     *CodeBlock
	base     int // first operand-stack slot belonging to this frame
	pc       int
	locals   []value.Value
	upvalues []*upvalueCell
	lexical  *scope

	this      value.Value
	newTarget value.Value
	homeObj   value.Value // [[HomeObject]], for OpLoadSuperBase

	caller *Frame
}

// localCell boxes the current value of local i for a closure capturing it
// (see upvalueCell's doc comment: capture snapshots the value, it does not
// keep sharing it live with this frame's subsequent writes to local i).
func (f *Frame) localCell(i int) *upvalueCell {
	if i < 0 || i >= len(f.locals) {
		return &upvalueCell{}
	}
	return &upvalueCell{value: f.locals[i]}
}

func newFrame(code *CodeBlock, base int, this, newTarget value.Value, upvalues []*upvalueCell, caller *Frame) *Frame {
	return &Frame{
		code:      code,
		base:      base,
		locals:    make([]value.Value, code.NumLocals),
		upvalues:  upvalues,
		this:      this,
		newTarget: newTarget,
		caller:    caller,
	}
}
