package vm

import (
	"fmt"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/value"
)

// run executes bytecode starting at the current top call frame until a
// Return unwinds the last frame, or a runtime error is raised. It mirrors
// the reference VM's single dispatch loop: a switch over the next opcode,
// mutating the operand stack and/or the current frame's ip in place.
func (v *VM) run() error {
	fr := &v.frames[v.frameCount-1]

	readByte := func() byte {
		b := fr.closure.Function.Chunk.Code[fr.ip]
		fr.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return fr.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		return readConstant().AsObj().(*value.ObjString)
	}

	for {
		op := compiler.OpCode(readByte())

		switch op {
		case compiler.Constant:
			v.push(readConstant())

		case compiler.Nil:
			v.push(value.Nil)
		case compiler.True:
			v.push(value.Bool(true))
		case compiler.False:
			v.push(value.Bool(false))

		case compiler.Pop:
			v.pop()

		case compiler.GetLocal:
			slot := readByte()
			v.push(v.stack[fr.slots+int(slot)])

		case compiler.SetLocal:
			slot := readByte()
			v.stack[fr.slots+int(slot)] = v.peek(0)

		case compiler.GetGlobal:
			name := readString()
			val, ok := v.globals.Get(name)
			if !ok {
				return v.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			v.push(val)

		case compiler.SetGlobal:
			name := readString()
			if v.globals.Set(name, v.peek(0)) {
				v.globals.Delete(name)
				return v.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case compiler.DefineGlobal:
			name := readString()
			v.globals.Set(name, v.peek(0))
			v.pop()

		case compiler.GetUpvalue:
			slot := readByte()
			v.push(*fr.closure.Upvalues[slot].Location)

		case compiler.SetUpvalue:
			slot := readByte()
			*fr.closure.Upvalues[slot].Location = v.peek(0)

		case compiler.Equal:
			b := v.pop()
			a := v.pop()
			v.push(value.Bool(value.Equal(a, b)))

		case compiler.Greater:
			if err := v.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case compiler.Less:
			if err := v.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case compiler.Add:
			if err := v.add(); err != nil {
				return err
			}
		case compiler.Subtract:
			if err := v.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case compiler.Multiply:
			if err := v.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case compiler.Divide:
			if err := v.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}

		case compiler.Not:
			v.push(value.Bool(v.pop().Falsey()))

		case compiler.Negate:
			if !v.peek(0).IsNumber() {
				return v.runtimeError("Operand must be a number.")
			}
			v.push(value.Number(-v.pop().AsNumber()))

		case compiler.Print:
			fmt.Fprintln(v.Stdout, v.pop().String())

		case compiler.Jump:
			offset := readShort()
			fr.ip += offset

		case compiler.JumpIfFalse:
			offset := readShort()
			if v.peek(0).Falsey() {
				fr.ip += offset
			}

		case compiler.Loop:
			offset := readShort()
			fr.ip -= offset

		case compiler.Call:
			argc := int(readByte())
			if err := v.callValue(v.peek(argc), argc); err != nil {
				return err
			}
			fr = &v.frames[v.frameCount-1]

		case compiler.Closure:
			fn := readConstant().AsObj().(*value.ObjFunction)
			closure := &value.ObjClosure{
				Function: fn,
				Upvalues: make([]*value.ObjUpvalue, fn.UpvalueCount),
			}
			v.heap.Track(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = v.captureUpvalue(fr.slots + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			v.push(value.FromObj(closure))

		case compiler.CloseUpvalue:
			v.closeUpvalues(v.stackTop - 1)
			v.pop()

		case compiler.Return:
			result := v.pop()
			v.closeUpvalues(fr.slots)
			v.frameCount--
			if v.frameCount == 0 {
				v.pop()
				return nil
			}
			v.stackTop = fr.slots
			v.push(result)
			fr = &v.frames[v.frameCount-1]

		default:
			return v.runtimeError("unknown opcode %d", op)
		}
	}
}

func (v *VM) binaryNumberOp(op func(a, b float64) value.Value) error {
	if !v.peek(0).IsNumber() || !v.peek(1).IsNumber() {
		return v.runtimeError("Operands must be numbers.")
	}
	b := v.pop().AsNumber()
	a := v.pop().AsNumber()
	v.push(op(a, b))
	return nil
}

func (v *VM) add() error {
	a, b := v.peek(1), v.peek(0)
	switch {
	case isString(a) && isString(b):
		v.pop()
		v.pop()
		v.push(value.FromObj(v.concatenate(a.AsObj().(*value.ObjString), b.AsObj().(*value.ObjString))))
	case a.IsNumber() && b.IsNumber():
		v.pop()
		v.pop()
		v.push(value.Number(a.AsNumber() + b.AsNumber()))
	default:
		return v.runtimeError("Operands must be two numbers or two strings.")
	}
	return nil
}

func isString(val value.Value) bool {
	if !val.IsObj() {
		return false
	}
	_, ok := val.AsObj().(*value.ObjString)
	return ok
}

// concatenate builds the newly interned result of a + b, probing the
// string-intern pool before allocating so that two literal-concatenation
// results with identical content still share one ObjString.
func (v *VM) concatenate(a, b *value.ObjString) *value.ObjString {
	chars := a.Chars + b.Chars
	hash := value.FNV1a32(chars)
	if existing := v.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := v.heap.Track(&value.ObjString{Chars: chars, Hash: hash}).(*value.ObjString)
	v.strings.Set(s, value.Bool(true))
	return s
}
