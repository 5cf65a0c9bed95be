package ir

import "fmt"

// Type tags every value produced by an instruction.
// The set is closed: the backend maps each tag onto a register class.
type Type uint8

const (
	Void Type = iota // no result

	Bool
	Int32
	Int64
	PtrInt

	typeMax
)

func (t Type) Valid() bool { return t > Void && t < typeMax }

// Arith reports whether t is allowed as an add/sub/mul operand.
// Bool is excluded: it only acts as a 1-bit integer in bitwise ops.
func (t Type) Arith() bool { return t == Int32 || t == Int64 || t == PtrInt }

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case PtrInt:
		return "ptr"
	}

	return fmt.Sprintf("type(%d)", int(t))
}

// ResultType is the single source of truth for operand type rules.
// It returns the result tag for op applied to operands tagged l and r,
// or false if the combination is not allowed.
func ResultType(op Op, l, r Type) (Type, bool) {
	if l != r || !l.Valid() {
		return Void, false
	}

	switch {
	case op.IsCmp():
		return Bool, true
	case op == Add || op == Sub || op == Mul:
		if !l.Arith() {
			return Void, false
		}

		return l, true
	case op == And || op == Or || op == Xor:
		return l, true
	}

	return Void, false
}
