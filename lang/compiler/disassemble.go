package compiler

import (
	"fmt"
	"io"

	"github.com/mna/loxvm/lang/value"
)

// Disassemble writes a human-readable listing of chunk to w, one line per
// instruction, under a header naming the chunk. It is a debugging aid (the
// CLI exposes it via --disassemble); nothing at runtime depends on it.
func Disassemble(w io.Writer, chunk *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(w, chunk, offset)
	}
}

// disassembleInstruction prints the instruction at offset and returns the
// offset of the next one, accounting for that instruction's operand width.
func disassembleInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case Constant, GetGlobal, SetGlobal, DefineGlobal:
		return constantInstruction(w, op.String(), chunk, offset)
	case Nil, True, False, Pop, Equal, Greater, Less, Add, Subtract,
		Multiply, Divide, Not, Negate, Print, CloseUpvalue, Return:
		return simpleInstruction(w, op.String(), offset)
	case GetLocal, SetLocal, GetUpvalue, SetUpvalue, Call:
		return byteInstruction(w, op.String(), chunk, offset)
	case Jump, JumpIfFalse:
		return jumpInstruction(w, op.String(), 1, chunk, offset)
	case Loop:
		return jumpInstruction(w, op.String(), -1, chunk, offset)
	case Closure:
		return closureInstruction(w, chunk, offset)
	default:
		fmt.Fprintf(w, "unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, name string, offset int) int {
	fmt.Fprintf(w, "%s\n", name)
	return offset + 1
}

func byteInstruction(w io.Writer, name string, chunk *value.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", name, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, name string, sign int, chunk *value.Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", name, offset, offset+3+sign*jump)
	return offset + 3
}

func constantInstruction(w io.Writer, name string, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", name, idx, chunk.Constants[idx].String())
	return offset + 2
}

func closureInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	offset++
	idx := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", Closure.String(), idx, chunk.Constants[idx].String())

	fn, _ := chunk.Constants[idx].AsObj().(*value.ObjFunction)
	for j := 0; j < fn.UpvalueCount; j++ {
		isLocal := chunk.Code[offset]
		offset++
		index := chunk.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
