package value

import "fmt"

// ObjType identifies which heap object variant an Obj is.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeClosure
	ObjTypeUpvalue
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeFunction:
		return "function"
	case ObjTypeNative:
		return "native function"
	case ObjTypeClosure:
		return "closure"
	case ObjTypeUpvalue:
		return "upvalue"
	default:
		return "object"
	}
}

// Obj is implemented by every heap-allocated object variant: strings,
// functions, natives, closures and upvalues. Object equality is always
// pointer identity — two Obj values are equal iff they are the same Go
// pointer, which is why strings must be interned to get value semantics.
type Obj interface {
	// Type returns the variant's runtime type name, as reported by
	// Value.TypeName.
	Type() string
	// String renders the object the way the print statement does.
	String() string

	// next/setNext thread the object through its owning Heap's linked list.
	// Unexported: only Heap.Track may use them, keeping the list an
	// implementation detail of this package rather than something every
	// object variant's callers need to manage by hand.
	next() Obj
	setNext(Obj)
}

// header is embedded by every concrete object type to supply the shared
// "next object in the heap's list" link described by the object model.
type header struct {
	nextObj Obj
}

func (h *header) next() Obj     { return h.nextObj }
func (h *header) setNext(o Obj) { h.nextObj = o }

// Heap is the VM-owned, singly-linked list that threads together every
// object allocated over the lifetime of a run, so they can be walked (and,
// since this implementation performs no garbage collection, simply dropped)
// together at shutdown.
type Heap struct {
	head Obj
}

// Track links o in at the head of the heap's object list and returns it, so allocation
// sites can write `return heap.Track(&ObjString{...}).(*ObjString)`-style
// one-liners.
func (h *Heap) Track(o Obj) Obj {
	o.setNext(h.head)
	h.head = o
	return o
}

// Head returns the first object in the list (most recently tracked), or nil
// if the heap is empty.
func (h *Heap) Head() Obj { return h.head }

// ObjString is an immutable, interned byte sequence. Two ObjStrings are
// equal (as Values) iff they are the same object; the VM's string-intern
// table is responsible for guaranteeing at most one ObjString per distinct
// content.
type ObjString struct {
	header
	Chars string
	Hash  uint32
}

var _ Obj = (*ObjString)(nil)

func (s *ObjString) Type() string   { return ObjTypeString.String() }
func (s *ObjString) String() string { return s.Chars }

// FNV1a32 computes the 32-bit FNV-1a hash of s, used both to hash new
// ObjStrings and to probe the intern table for an existing one before
// allocating.
func FNV1a32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// ObjFunction is a compiled function: its arity, the number of upvalues its
// closures must capture, its bytecode Chunk, and an optional name (nil for
// the implicit top-level script function).
type ObjFunction struct {
	header
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString
}

var _ Obj = (*ObjFunction)(nil)

func (f *ObjFunction) Type() string { return ObjTypeFunction.String() }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is a function implemented in Go and exposed to scripts; it
// receives its arguments as a slice and returns a Value or an error, which
// the VM turns into a runtime error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a NativeFn so it can be stored in a Value and called like
// any other Lox function.
type ObjNative struct {
	header
	Name string
	Fn   NativeFn
}

var _ Obj = (*ObjNative)(nil)

func (n *ObjNative) Type() string   { return ObjTypeNative.String() }
func (n *ObjNative) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// ObjUpvalue is a reference to a variable captured by a closure. While open,
// Location points at the variable's live stack slot; Next threads it into
// the VM's sorted list of open upvalues. Closing copies the value into
// Closed and repoints Location at it, so closures keep working once the
// frame that owned the slot returns.
type ObjUpvalue struct {
	header
	Location *Value
	Closed   Value
	Next     *ObjUpvalue
}

var _ Obj = (*ObjUpvalue)(nil)

func (u *ObjUpvalue) Type() string   { return ObjTypeUpvalue.String() }
func (u *ObjUpvalue) String() string { return "<upvalue>" }

// Close copies the current value out of the captured stack slot and
// repoints Location at the copy, detaching the upvalue from the stack it
// used to share with its frame.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a compiled Function with the live Upvalues its nested
// function literals captured at creation time. Multiple closures may share
// an Upvalue if they close over the same variable.
type ObjClosure struct {
	header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

var _ Obj = (*ObjClosure)(nil)

func (c *ObjClosure) Type() string   { return ObjTypeClosure.String() }
func (c *ObjClosure) String() string { return c.Function.String() }
