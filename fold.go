package vcsimp

import "math/big"

// FoldCall attempts to fold an operator call whose arguments are all
// literals. It returns false when the call cannot be fully resolved, which
// includes arithmetic whose result falls outside the bounds of the operand
// type and division by zero.
func FoldCall(op Op, args []Exp) (Exp, bool) {
	switch op {
	case MAXU8:
		return NewIntConst(U8, U8.MaxValue()), true
	case MAXU16:
		return NewIntConst(U16, U16.MaxValue()), true
	case MAXU32:
		return NewIntConst(U32, U32.MaxValue()), true
	case MAXU64:
		return NewIntConst(U64, U64.MaxValue()), true
	case MAXU128:
		return NewIntConst(U128, U128.MaxValue()), true
	case MAXU256:
		return NewIntConst(U256, U256.MaxValue()), true
	}

	consts := make([]*ConstExp, len(args))
	for i, arg := range args {
		c, ok := arg.(*ConstExp)
		if !ok {
			return nil, false
		}
		consts[i] = c
	}

	switch {
	case op.IsArithmetic():
		return foldArithmetic(op, consts)
	case op.IsCompare():
		return foldCompare(op, consts)
	case op.IsBool():
		return foldBool(op, consts)
	default:
		return nil, false
	}
}

func foldArithmetic(op Op, args []*ConstExp) (Exp, bool) {
	lhs, rhs := args[0], args[1]
	t, ok := lhs.Type.(IntType)
	if !ok {
		return nil, false
	}

	out := new(big.Int)
	switch op {
	case ADD:
		out.Add(lhs.Value, rhs.Value)
	case SUB:
		out.Sub(lhs.Value, rhs.Value)
	case MUL:
		out.Mul(lhs.Value, rhs.Value)
	case DIV:
		if rhs.Value.Sign() == 0 {
			return nil, false
		}
		out.Quo(lhs.Value, rhs.Value)
	case MOD:
		if rhs.Value.Sign() == 0 {
			return nil, false
		}
		out.Rem(lhs.Value, rhs.Value)
	default:
		panic("unreachable")
	}

	if out.Sign() < 0 {
		return nil, false
	}
	if max := t.MaxValue(); max != nil && out.Cmp(max) > 0 {
		return nil, false
	}
	return &ConstExp{Value: out, Type: t}, true
}

func foldCompare(op Op, args []*ConstExp) (Exp, bool) {
	lhs, rhs := args[0], args[1]
	cmp := lhs.Value.Cmp(rhs.Value)
	switch op {
	case EQ:
		return NewBoolConst(cmp == 0), true
	case NEQ:
		return NewBoolConst(cmp != 0), true
	case LT:
		return NewBoolConst(cmp < 0), true
	case LE:
		return NewBoolConst(cmp <= 0), true
	case GT:
		return NewBoolConst(cmp > 0), true
	case GE:
		return NewBoolConst(cmp >= 0), true
	default:
		panic("unreachable")
	}
}

func foldBool(op Op, args []*ConstExp) (Exp, bool) {
	switch op {
	case NOT:
		return NewBoolConst(args[0].IsFalse()), true
	case AND:
		return NewBoolConst(args[0].IsTrue() && args[1].IsTrue()), true
	case OR:
		return NewBoolConst(args[0].IsTrue() || args[1].IsTrue()), true
	case IMPLIES:
		return NewBoolConst(args[0].IsFalse() || args[1].IsTrue()), true
	case IFF:
		return NewBoolConst(args[0].IsTrue() == args[1].IsTrue()), true
	default:
		panic("unreachable")
	}
}
