package ir

import "fmt"

// Op is the operation an instruction performs.
type Op uint8

const (
	Nop Op = 1 + iota
	Phi

	ConstBool
	ConstInt32
	ConstInt64

	Add
	Sub
	Mul
	And
	Or
	Xor

	Eq
	Ne
	Lt
	Le
	Gt
	Ge

	Jump
	Branch
	Ret
)

// IsEnd reports whether op finishes its block.
func (op Op) IsEnd() bool { return op == Jump || op == Branch || op == Ret }

func (op Op) IsConst() bool { return op >= ConstBool && op <= ConstInt64 }
func (op Op) IsBin() bool   { return op >= Add && op <= Ge }
func (op Op) IsCmp() bool   { return op >= Eq && op <= Ge }

func (op Op) String() string {
	switch op {
	case Nop:
		return "nop"
	case Phi:
		return "phi"
	case ConstBool:
		return "const.bool"
	case ConstInt32:
		return "const.i32"
	case ConstInt64:
		return "const.i64"
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case Lt:
		return "lt"
	case Le:
		return "le"
	case Gt:
		return "gt"
	case Ge:
		return "ge"
	case Jump:
		return "jump"
	case Branch:
		return "branch"
	case Ret:
		return "ret"
	}

	return fmt.Sprintf("op(%d)", int(op))
}
