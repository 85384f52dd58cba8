package vm

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/value"
)

// dispatch runs f's opcode stream to completion: a normal return, an
// unhandled throw bubbling past f (a *ThrowSignal), or a fatal error
// (spec.md §4.4/§7). Exactly one of the three return values is non-nil.
func (vm *VM) dispatch(f *Frame) (value.Value, *ThrowSignal, error) {
	wide := false
	for {
		if vm.interrupted.Load() {
			return value.UndefinedValue, vm.newRuntimeLimitThrow("interrupted"), nil
		}
		if f.pc >= len(f.code.Code) {
			return value.UndefinedValue, nil, nil
		}
		opPC := f.pc
		op := OpCode(f.code.Code[f.pc])
		f.pc++

		isWide := wide
		wide = false

		readOperand := func() int {
			if isWide {
				v := int(binary.BigEndian.Uint32(f.code.Code[f.pc : f.pc+wideOperandSize]))
				f.pc += wideOperandSize
				return v
			}
			v := int(f.code.Code[f.pc])
			f.pc += shortOperandSize
			return v
		}

		result, thrown, err := vm.step(f, op, readOperand)
		switch {
		case err != nil:
			return value.UndefinedValue, nil, err
		case thrown != nil:
			if handled, hf := vm.unwindToHandler(f, opPC, thrown); handled {
				f = hf
				continue
			}
			return value.UndefinedValue, thrown, nil
		case result != nil:
			return *result, nil, nil
		}

		if op == OpWide {
			wide = true
		}
	}
}

// stepResult is nil unless the opcode just executed is a return, letting
// dispatch distinguish "keep looping" from "frame is done" without an
// extra bool.
func (vm *VM) step(f *Frame, op OpCode, operand func() int) (*value.Value, *ThrowSignal, error) {
	switch op {
	case OpConst:
		if thrown, err := vm.pushChecked(f.code.Constants[operand()]); thrown != nil || err != nil {
			return nil, thrown, err
		}
	case OpPop:
		if _, err := vm.pop(); err != nil {
			return nil, nil, err
		}
	case OpDup:
		v, err := vm.peek(0)
		if err != nil {
			return nil, nil, err
		}
		if thrown, derr := vm.pushChecked(v); thrown != nil || derr != nil {
			return nil, thrown, derr
		}
	case OpSwap:
		a, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		b, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		vm.push(a)
		vm.push(b)
	case OpWide:
		// handled by dispatch's trailing check
	case OpUndefined:
		vm.push(value.UndefinedValue)
	case OpNull:
		vm.push(value.NullValue)
	case OpTrue:
		vm.push(value.TrueValue)
	case OpFalse:
		vm.push(value.FalseValue)

	case OpAdd:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) { return vm.add(a, b) })
	case OpSub:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) {
			return vm.numericBinOp(a, b, func(x, y float64) float64 { return x - y }, value.BigIntSub)
		})
	case OpMul:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) {
			return vm.numericBinOp(a, b, func(x, y float64) float64 { return x * y }, func(x, y *value.BigInt) (*value.BigInt, error) {
				return value.BigIntMul(x, y), nil
			})
		})
	case OpDiv:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) {
			return vm.numericBinOp(a, b, func(x, y float64) float64 { return x / y }, value.BigIntDiv)
		})
	case OpMod:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) {
			return vm.numericBinOp(a, b, goMod, value.BigIntMod)
		})
	case OpPow:
		return vm.binOp(func(a, b value.Value) (value.Value, *ThrowSignal, error) {
			return vm.numericBinOp(a, b, goPow, nil)
		})
	case OpNeg:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		if v.IsBigInt() {
			vm.push(value.NewBigInt(value.BigIntNeg(v.BigInt())))
		} else {
			n, thrown, cerr := vm.toNumber(v)
			if thrown != nil || cerr != nil {
				return nil, thrown, cerr
			}
			vm.push(value.NewNumber(-n))
		}
	case OpInc, OpDec:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		n, thrown, cerr := vm.toNumber(v)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		if op == OpInc {
			vm.push(value.NewNumber(n + 1))
		} else {
			vm.push(value.NewNumber(n - 1))
		}

	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr, OpUnsignedShr:
		return vm.intBinOp(op)
	case OpBitNot:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		n, thrown, cerr := vm.toNumber(v)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(value.NewNumber(float64(^toInt32(n))))

	case OpEq, OpNe:
		b, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		a, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		eq, thrown, cerr := vm.looseEquals(a, b)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(value.NewBool(eq == (op == OpEq)))
	case OpStrictEq, OpStrictNe:
		b, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		a, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		eq := value.StrictEquals(a, b)
		vm.push(value.NewBool(eq == (op == OpStrictEq)))
	case OpLt, OpLe, OpGt, OpGe:
		return vm.relOp(op)

	case OpNot:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		vm.push(value.NewBool(!toBoolean(v)))

	case OpGetLocal:
		i := operand()
		if i < 0 || i >= len(f.locals) {
			return nil, nil, ErrStackUnderflow
		}
		vm.push(f.locals[i])
	case OpSetLocal:
		i := operand()
		v, err := vm.peek(0)
		if err != nil {
			return nil, nil, err
		}
		if i >= 0 && i < len(f.locals) {
			f.locals[i] = v
		}
	case OpGetUpvalue:
		i := operand()
		if i < 0 || i >= len(f.upvalues) {
			return nil, nil, ErrStackUnderflow
		}
		vm.push(f.upvalues[i].value)
	case OpSetUpvalue:
		i := operand()
		v, err := vm.peek(0)
		if err != nil {
			return nil, nil, err
		}
		if i >= 0 && i < len(f.upvalues) {
			f.upvalues[i].value = v
		}
	case OpGetGlobal:
		key := value.StringKey(value.ToPropertyKeyString(f.code.Constants[operand()]))
		v, thrown, cerr := vm.getProperty(vm.global, key, vm.global.Value())
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)
	case OpSetGlobal:
		key := value.StringKey(value.ToPropertyKeyString(f.code.Constants[operand()]))
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		thrown, cerr := vm.setProperty(vm.global, key, v, vm.global.Value())
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)

	case OpGetProp:
		k := operand()
		operand() // IC byte, unused (see DESIGN.md)
		obj, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		o, thrown, cerr := vm.toObject(obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		key := value.StringKey(value.ToPropertyKeyString(f.code.Constants[k]))
		v, thrown, cerr := vm.getProperty(o, key, obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)
	case OpSetProp:
		k := operand()
		operand() // IC byte
		val, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		o, thrown, cerr := vm.toObject(obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		key := value.StringKey(value.ToPropertyKeyString(f.code.Constants[k]))
		thrown, cerr = vm.setProperty(o, key, val, obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(val)
	case OpGetElem:
		keyVal, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		o, thrown, cerr := vm.toObject(obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		key, thrown, cerr := vm.toPropertyKey(keyVal)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		v, thrown, cerr := vm.getProperty(o, key, obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)
	case OpSetElem:
		val, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		keyVal, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		o, thrown, cerr := vm.toObject(obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		key, thrown, cerr := vm.toPropertyKey(keyVal)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		thrown, cerr = vm.setProperty(o, key, val, obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(val)
	case OpDeleteProp:
		k := operand()
		obj, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		o, thrown, cerr := vm.toObject(obj)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		key := value.StringKey(value.ToPropertyKeyString(f.code.Constants[k]))
		ok, derr := o.Delete(key)
		if derr != nil {
			return nil, nil, derr
		}
		vm.push(value.NewBool(ok))

	case OpPushScope:
		f.lexical = newScope(f.lexical)
	case OpPopScope:
		if f.lexical != nil {
			f.lexical = f.lexical.parent
		}
	case OpDefineBinding:
		name := value.ToPropertyKeyString(f.code.Constants[operand()])
		if f.lexical == nil {
			f.lexical = newScope(nil)
		}
		f.lexical.define(name)
	case OpInitBinding:
		name := value.ToPropertyKeyString(f.code.Constants[operand()])
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		if s, i, ok := f.lexical.lookup(name); ok {
			s.values[i] = v
			s.initialized[i] = true
		}

	case OpLoadThis:
		vm.push(f.this)
	case OpLoadNewTarget:
		vm.push(f.newTarget)
	case OpLoadSuperBase:
		if o, ok := object.FromValue(f.homeObj); ok {
			if proto, ok := o.GetPrototypeOf(); ok && proto != nil {
				vm.push(proto.Value())
				break
			}
		}
		vm.push(value.UndefinedValue)

	case OpCall, OpTailCall:
		n := operand()
		args := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v, err := vm.pop()
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
		}
		this, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		callee, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		v, thrown, cerr := vm.call(callee, this, args)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)
	case OpConstruct:
		n := operand()
		args := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v, err := vm.pop()
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
		}
		callee, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		v, thrown, cerr := vm.construct(callee, args, callee)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(v)
	case OpReturn:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		return &v, nil, nil

	case OpJump:
		f.pc = operand()
	case OpJumpIfFalse:
		addr := operand()
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		if !toBoolean(v) {
			f.pc = addr
		}
	case OpJumpIfTrue:
		addr := operand()
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		if toBoolean(v) {
			f.pc = addr
		}
	case OpLoop:
		addr := operand()
		vm.loopIterations++
		if vm.cfg.MaxLoopIterations > 0 && vm.loopIterations > vm.cfg.MaxLoopIterations {
			return nil, vm.newRuntimeLimitThrow("loop-iterations"), nil
		}
		f.pc = addr

	case OpThrow:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		return nil, &ThrowSignal{Value: v}, nil
	case OpRethrow:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		return nil, &ThrowSignal{Value: v}, nil

	case OpYield, OpAwait:
		v, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		resumed, early, thrown := vm.yield(v)
		if thrown != nil {
			return nil, thrown, nil
		}
		if early != nil {
			return &early.value, nil, nil
		}
		vm.push(resumed)
	case OpResume:
		// Resumption is driven externally by generator.go's
		// driveGenerator; the opcode exists for bytecode-format symmetry
		// with the corpus's Resume-from-host convention and is a no-op
		// inside Dispatch itself.

	case OpIterNew:
		iterable, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		it, thrown, cerr := vm.getIterator(iterable)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(it)
	case OpIterNext:
		it, err := vm.peek(0)
		if err != nil {
			return nil, nil, err
		}
		step, thrown, cerr := vm.iteratorStep(it)
		if thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}
		vm.push(step)
	case OpIterClose:
		it, err := vm.pop()
		if err != nil {
			return nil, nil, err
		}
		if thrown, cerr := vm.iteratorClose(it); thrown != nil || cerr != nil {
			return nil, thrown, cerr
		}

	case OpMakeObject:
		o, err := object.New(vm.heap, vm.newObjectShape())
		if err != nil {
			return nil, nil, err
		}
		vm.push(o.Value())
	case OpMakeArray:
		n := operand()
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v, err := vm.pop()
			if err != nil {
				return nil, nil, err
			}
			elems[i] = v
		}
		arr, err := object.NewArray(vm.heap, vm.newObjectShape(), uint32(len(elems)))
		if err != nil {
			return nil, nil, err
		}
		for i, v := range elems {
			if err := arr.Set(value.StringKey(strconv.Itoa(i)), v, arr.Value()); err != nil {
				return nil, nil, err
			}
		}
		vm.push(arr.Value())
	case OpMakeClosure:
		sub := f.code.SubBlocks[operand()]
		upvalues := make([]*upvalueCell, len(sub.UpvalueSources))
		for i, src := range sub.UpvalueSources {
			if src.FromParentLocal {
				upvalues[i] = f.localCell(src.Index)
			} else if src.Index < len(f.upvalues) {
				upvalues[i] = f.upvalues[src.Index]
			} else {
				upvalues[i] = &upvalueCell{}
			}
		}
		clo, err := NewClosure(vm.heap, vm.newObjectShape(), sub, upvalues)
		if err != nil {
			return nil, nil, err
		}
		vm.push(clo.Value())

	default:
		return nil, nil, ErrInvalidOpcode
	}
	return nil, nil, nil
}

// unwindToHandler searches f.code's static exception-handler table for the
// innermost range covering the PC the throw occurred at (spec.md §4.4: a
// CodeBlock carries "a read-only... exception-handler table" the VM
// "searches... in the current frame" on throw). It never walks
// f.caller: each call frame runs its own nested dispatch loop on the Go
// call stack (OpCall recurses into callCodeBlock), so an unhandled throw
// simply returns up through that Go call chain, and the caller's own
// dispatch loop performs this same search against its own frame once
// control returns to it — "pops the frame and searches the caller's"
// implemented via Go's own call stack rather than a hand-rolled one.
func (vm *VM) unwindToHandler(f *Frame, pc int, thrown *ThrowSignal) (bool, *Frame) {
	best := -1
	for i, h := range f.code.Handlers {
		if pc < h.StartPC || pc >= h.EndPC {
			continue
		}
		if best == -1 || (h.EndPC-h.StartPC) < (f.code.Handlers[best].EndPC-f.code.Handlers[best].StartPC) {
			best = i
		}
	}
	if best == -1 {
		return false, nil
	}
	h := f.code.Handlers[best]
	target := f.base + h.StackDepth
	if target <= len(vm.stack) {
		vm.stack = vm.stack[:target]
	}
	vm.push(thrown.Value)
	f.pc = h.HandlerPC
	return true, f
}

func (vm *VM) toObject(v value.Value) (*object.Object, *ThrowSignal, error) {
	if o, ok := object.FromValue(v); ok {
		return o, nil, nil
	}
	return nil, vm.newError("TypeError", "cannot convert value to object"), nil
}

func (vm *VM) binOp(op func(a, b value.Value) (value.Value, *ThrowSignal, error)) (*value.Value, *ThrowSignal, error) {
	b, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	a, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	v, thrown, cerr := op(a, b)
	if thrown != nil || cerr != nil {
		return nil, thrown, cerr
	}
	vm.push(v)
	return nil, nil, nil
}

func (vm *VM) intBinOp(op OpCode) (*value.Value, *ThrowSignal, error) {
	b, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	a, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	na, thrown, cerr := vm.toNumber(a)
	if thrown != nil || cerr != nil {
		return nil, thrown, cerr
	}
	nb, thrown, cerr := vm.toNumber(b)
	if thrown != nil || cerr != nil {
		return nil, thrown, cerr
	}
	ia, ib := toInt32(na), toInt32(nb)
	var r float64
	switch op {
	case OpBitAnd:
		r = float64(ia & ib)
	case OpBitOr:
		r = float64(ia | ib)
	case OpBitXor:
		r = float64(ia ^ ib)
	case OpShl:
		r = float64(ia << (uint32(ib) & 31))
	case OpShr:
		r = float64(ia >> (uint32(ib) & 31))
	case OpUnsignedShr:
		r = float64(uint32(ia) >> (uint32(ib) & 31))
	}
	vm.push(value.NewNumber(r))
	return nil, nil, nil
}

func (vm *VM) relOp(op OpCode) (*value.Value, *ThrowSignal, error) {
	b, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	a, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	var less, undef bool
	var thrown *ThrowSignal
	var cerr error
	switch op {
	case OpLt:
		less, undef, thrown, cerr = vm.compare(a, b, true)
	case OpGt:
		less, undef, thrown, cerr = vm.compare(b, a, false)
	case OpLe:
		var gt bool
		gt, undef, thrown, cerr = vm.compare(b, a, false)
		less = !gt
	case OpGe:
		var lt bool
		lt, undef, thrown, cerr = vm.compare(a, b, true)
		less = !lt
	}
	if thrown != nil || cerr != nil {
		return nil, thrown, cerr
	}
	if undef {
		vm.push(value.FalseValue)
	} else {
		vm.push(value.NewBool(less))
	}
	return nil, nil, nil
}

func goMod(x, y float64) float64 { return math.Mod(x, y) }

func goPow(x, y float64) float64 { return math.Pow(x, y) }

func toInt32(f float64) int32 { return int32(int64(f)) }
