// Package value defines the runtime value representation shared by the
// compiler's constant pool and the virtual machine: a tagged union over nil,
// booleans, numbers and object references, plus the heap object variants
// (strings, functions, natives, closures, upvalues) those references point
// to.
package value

import "strconv"

// Kind identifies which alternative of the tagged union a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union over {Nil, Bool, Number, Object-reference}. The
// zero Value is Nil. Values are small and copied by assignment; Object
// identity (not Value identity) is what equality and interning rely on.
type Value struct {
	kind   Kind
	b      bool
	number float64
	obj    Obj
}

// Nil is the singular nil value.
var Nil = Value{kind: KindNil}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// FromObj returns a Value wrapping an object reference. Passing a nil Obj
// returns Nil, matching the convention that there is no "nil object" value.
func FromObj(o Obj) Value {
	if o == nil {
		return Nil
	}
	return Value{kind: KindObj, obj: o}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNil() bool  { return v.kind == KindNil }
func (v Value) IsBool() bool { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool  { return v.kind == KindObj }

// AsBool returns the boolean payload. Callers must check IsBool first; the
// zero-value result for any other kind is false.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload. Callers must check IsNumber first.
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns the object payload, or nil if v is not an object.
func (v Value) AsObj() Obj { return v.obj }

// Falsey reports whether v is considered false by a condition: only Nil and
// Bool(false) are falsey, everything else — including 0 and "" — is truthy.
func (v Value) Falsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Equal reports whether a and b hold the same tag and payload. Object
// equality is pointer identity: two Values wrapping different *ObjString
// point to equal content only if string interning made them the same object.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.number == b.number
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// TypeName returns a short, lowercase description of v's runtime type.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObj:
		return v.obj.Type()
	default:
		return "unknown"
	}
}

// String renders v the way the print statement and REPL do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		// 6 significant digits, matching C's printf("%g", ...) default
		// precision (clox's value.c prints numbers this way).
		return strconv.FormatFloat(v.number, 'g', 6, 64)
	case KindObj:
		return v.obj.String()
	default:
		return "?"
	}
}
