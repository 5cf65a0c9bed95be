package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultTypeRules(t *testing.T) {
	ints := []Type{Int32, Int64, PtrInt}
	all := []Type{Bool, Int32, Int64, PtrInt}

	for _, typ := range ints {
		for _, op := range []Op{Add, Sub, Mul} {
			r, ok := ResultType(op, typ, typ)
			assert.True(t, ok, "%v.%v", op, typ)
			assert.Equal(t, typ, r)
		}
	}

	for _, op := range []Op{Add, Sub, Mul} {
		_, ok := ResultType(op, Bool, Bool)
		assert.False(t, ok, "%v on bool", op)
	}

	for _, typ := range all {
		for _, op := range []Op{And, Or, Xor} {
			r, ok := ResultType(op, typ, typ)
			assert.True(t, ok, "%v.%v", op, typ)
			assert.Equal(t, typ, r)
		}

		for _, op := range []Op{Eq, Ne, Lt, Le, Gt, Ge} {
			r, ok := ResultType(op, typ, typ)
			assert.True(t, ok, "%v.%v", op, typ)
			assert.Equal(t, Bool, r)
		}
	}

	// mixed tags are never allowed
	for _, op := range []Op{Add, And, Eq} {
		_, ok := ResultType(op, Int32, Int64)
		assert.False(t, ok, "%v i32 i64", op)
	}

	_, ok := ResultType(Add, Void, Void)
	assert.False(t, ok)

	_, ok = ResultType(Jump, Int32, Int32)
	assert.False(t, ok)
}

func TestResultTypeDeterministic(t *testing.T) {
	ops := []Op{Add, Sub, Mul, And, Or, Xor, Eq, Ne, Lt, Le, Gt, Ge}
	types := []Type{Void, Bool, Int32, Int64, PtrInt}

	for _, op := range ops {
		for _, l := range types {
			for _, r := range types {
				r1, ok1 := ResultType(op, l, r)
				r2, ok2 := ResultType(op, l, r)

				assert.Equal(t, ok1, ok2)
				assert.Equal(t, r1, r2)
			}
		}
	}
}

func TestOpPredicates(t *testing.T) {
	for _, op := range []Op{Jump, Branch, Ret} {
		assert.True(t, op.IsEnd(), "%v", op)
	}

	for _, op := range []Op{Nop, Phi, ConstBool, Add, Eq} {
		assert.False(t, op.IsEnd(), "%v", op)
	}

	assert.True(t, ConstInt32.IsConst())
	assert.True(t, Eq.IsCmp())
	assert.True(t, Add.IsBin())
	assert.False(t, Add.IsCmp())
	assert.False(t, Phi.IsBin())
}
