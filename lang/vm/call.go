package vm

import (
	"unsafe"

	"github.com/mna/loxvm/lang/value"
)

// callValue dispatches an argc-argument call to callee, which sits argc
// slots below the current stack top with the arguments above it. Closures
// push a new CallFrame; Natives are invoked synchronously in place.
func (v *VM) callValue(callee value.Value, argc int) error {
	if callee.IsObj() {
		switch fn := callee.AsObj().(type) {
		case *value.ObjClosure:
			return v.call(fn, argc)
		case *value.ObjNative:
			args := v.stack[v.stackTop-argc : v.stackTop]
			result, err := fn.Fn(args)
			if err != nil {
				return v.runtimeError("%s", err.Error())
			}
			v.stackTop -= argc + 1
			v.push(result)
			return nil
		}
	}
	return v.runtimeError("Can only call functions and classes.")
}

// call pushes a new CallFrame for closure, whose slot window starts argc+1
// slots below the current stack top so that slot 0 aliases the closure
// value itself (reserved for a future `this`).
func (v *VM) call(closure *value.ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return v.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if v.frameCount == v.maxFrames {
		return v.runtimeError("Stack overflow.")
	}

	fr := &v.frames[v.frameCount]
	v.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = v.stackTop - argc - 1
	return nil
}

// slotIndex recovers the index into v.stack that an open upvalue's Location
// points at, mirroring the reference VM's direct pointer comparisons
// (upvalue->location >= last) with the Go equivalent of pointer arithmetic.
func (v *VM) slotIndex(loc *value.Value) int {
	base := unsafe.Pointer(&v.stack[0])
	off := uintptr(unsafe.Pointer(loc)) - uintptr(base)
	return int(off / unsafe.Sizeof(value.Value{}))
}

// captureUpvalue returns the open Upvalue for the stack slot at index,
// reusing an existing one if another closure already captured that exact
// slot (the sharing guarantee), otherwise inserting a new one into the
// VM-wide list kept sorted by descending slot index.
func (v *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	uv := v.openUpvalues
	for uv != nil && v.slotIndex(uv.Location) > slot {
		prev = uv
		uv = uv.Next
	}
	if uv != nil && v.slotIndex(uv.Location) == slot {
		return uv
	}

	created := &value.ObjUpvalue{Location: &v.stack[slot], Next: uv}
	v.heap.Track(created)
	if prev == nil {
		v.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose captured slot is at or
// above last, detaching it from the stack it used to share with its frame.
func (v *VM) closeUpvalues(last int) {
	for v.openUpvalues != nil && v.slotIndex(v.openUpvalues.Location) >= last {
		uv := v.openUpvalues
		uv.Close()
		v.openUpvalues = uv.Next
	}
}
