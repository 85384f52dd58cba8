package vm

import (
	"github.com/coreform/jsvm/core/gc"
)

// FrameRoots implements gc.FrameRootsFunc (spec.md §4.1 root enumeration:
// "the operand stack, active call frames"): it visits every object
// reference reachable from the live operand stack and the active frame
// chain's locals/upvalues/this/newTarget/homeObject, plus the global
// object itself. A host wires this in once via heap.SetFrameRoots(vm.FrameRoots).
func (vm *VM) FrameRoots(visit func(gc.Cell)) {
	for _, v := range vm.stack {
		traceValue(v, visit)
	}
	for f := vm.frame; f != nil; f = f.caller {
		for _, v := range f.locals {
			traceValue(v, visit)
		}
		for _, uv := range f.upvalues {
			if uv != nil {
				traceValue(uv.value, visit)
			}
		}
		traceValue(f.this, visit)
		traceValue(f.newTarget, visit)
		traceValue(f.homeObj, visit)
	}
	if vm.global != nil {
		visit(vm.global)
	}
}
