package compiler

import (
	"testing"

	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *value.ObjFunction {
	t.Helper()
	var heap value.Heap
	var strings table.Table
	fn, err := Compile([]byte(src), "test.lox", &heap, &strings)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn := compile(t, "print 1 + 2 * 3;")
	ops := opsOf(fn.Chunk)
	require.Equal(t, []OpCode{Constant, Constant, Constant, Multiply, Add, Print, Nil, Return}, ops)
}

func TestCompileGlobalVariable(t *testing.T) {
	fn := compile(t, "var x = 1; x = 2; print x;")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, DefineGlobal)
	require.Contains(t, ops, SetGlobal)
	require.Contains(t, ops, GetGlobal)
}

func TestCompileLocalScope(t *testing.T) {
	fn := compile(t, "{ var x = 1; print x; }")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, GetLocal)
	require.NotContains(t, ops, GetGlobal)
}

func TestCompileIfElse(t *testing.T) {
	fn := compile(t, "if (true) print 1; else print 2;")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, JumpIfFalse)
	require.Contains(t, ops, Jump)
}

func TestCompileWhileLoop(t *testing.T) {
	fn := compile(t, "while (true) print 1;")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, Loop)
	require.Contains(t, ops, JumpIfFalse)
}

func TestCompileForLoop(t *testing.T) {
	fn := compile(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, Loop)
}

func TestCompileFunctionAndClosure(t *testing.T) {
	fn := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, Closure)
}

func TestCompileCall(t *testing.T) {
	fn := compile(t, "fun f() { return 1; } print f();")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, Call)
}

func TestCompileInvalidAssignmentTarget(t *testing.T) {
	var heap value.Heap
	var strings table.Table
	_, err := Compile([]byte("a + b = c;"), "test.lox", &heap, &strings)
	require.Error(t, err)
}

func TestCompileReturnAtTopLevel(t *testing.T) {
	var heap value.Heap
	var strings table.Table
	_, err := Compile([]byte("return 1;"), "test.lox", &heap, &strings)
	require.Error(t, err)
}

func TestCompileUndefinedVariableIsRuntimeNotCompileError(t *testing.T) {
	// referencing an unresolved identifier at global scope is not a compile
	// error: it compiles to a GetGlobal that fails at runtime if undefined.
	fn := compile(t, "print x;")
	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, GetGlobal)
}

func TestCompileStringInterning(t *testing.T) {
	var heap value.Heap
	var strings table.Table
	fn, err := Compile([]byte(`print "hi" == "hi";`), "test.lox", &heap, &strings)
	require.NoError(t, err)
	var strs []*value.ObjString
	for _, c := range fn.Chunk.Constants {
		if s, ok := c.AsObj().(*value.ObjString); ok {
			strs = append(strs, s)
		}
	}
	require.Len(t, strs, 2)
	require.Same(t, strs[0], strs[1])
}

func opsOf(c *value.Chunk) []OpCode {
	var ops []OpCode
	for i := 0; i < len(c.Code); {
		op := OpCode(c.Code[i])
		ops = append(ops, op)
		i += instructionWidth(op, c, i)
	}
	return ops
}

func instructionWidth(op OpCode, c *value.Chunk, offset int) int {
	switch op {
	case Nil, True, False, Pop, Equal, Greater, Less, Add, Subtract,
		Multiply, Divide, Not, Negate, Print, CloseUpvalue, Return:
		return 1
	case GetLocal, SetLocal, GetGlobal, SetGlobal, DefineGlobal, GetUpvalue,
		SetUpvalue, Call, Constant:
		return 2
	case Jump, JumpIfFalse, Loop:
		return 3
	case Closure:
		idx := c.Code[offset+1]
		fn, _ := c.Constants[idx].AsObj().(*value.ObjFunction)
		width := 2
		if fn != nil {
			width += 2 * fn.UpvalueCount
		}
		return width
	default:
		return 1
	}
}
