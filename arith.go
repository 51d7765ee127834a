package vcsimp

import "math/big"

func zeroConst(t Type) *ConstExp {
	return &ConstExp{Value: big.NewInt(0), Type: t}
}

func isZero(e Exp) bool {
	c, ok := e.(*ConstExp)
	return ok && IsIntType(c.Type) && c.Value.Sign() == 0
}

func isOne(e Exp) bool {
	c, ok := e.(*ConstExp)
	return ok && IsIntType(c.Type) && c.Value.Cmp(big.NewInt(1)) == 0
}

// simplifyCompare rewrites a comparison whose sides have already been
// rewritten and which the constant folder could not fully resolve.
func (s *Simplifier) simplifyCompare(e *CallExp) (Exp, bool) {
	lhs, rhs := e.Args[0], e.Args[1]

	// Reflexivity.
	if CompareExp(lhs, rhs) == 0 {
		switch e.Op {
		case EQ, LE, GE:
			return NewBoolConst(true), true
		case NEQ, LT, GT:
			return NewBoolConst(false), true
		}
	}

	if s.IsKnownTrue(e) {
		return NewBoolConst(true), true
	}
	if s.IsKnownFalse(e) {
		return NewBoolConst(false), true
	}

	if out, ok := s.foldTypeBound(e.Op, lhs, rhs); ok {
		return out, true
	}

	// Addend normalization: (e±C1) op C2 becomes e op (C2∓C1). Only legal in
	// specification mode, where arithmetic is unchecked.
	if s.specMode {
		if op, base, k, ok := normalizeAddend(e.Op, lhs, rhs); ok {
			if out, ok := s.foldTypeBoundK(op, base, k); ok {
				return out, true
			}
			t, isInt := s.env.TypeOf(base).(IntType)
			if !isInt {
				return nil, false
			}
			return NewCall(op, base, NewIntConst(t, k)), true
		}
	}
	return nil, false
}

// foldTypeBound decides a comparison between a constant and a
// bounded-integer-typed expression when the constant sits at or beyond the
// type's bounds.
func (s *Simplifier) foldTypeBound(op Op, lhs, rhs Exp) (Exp, bool) {
	if k, ok := intConst(rhs); ok && !IsConst(lhs) {
		return s.foldTypeBoundK(op, lhs, k)
	}
	if k, ok := intConst(lhs); ok && !IsConst(rhs) {
		return s.foldTypeBoundK(swapCmp(op), rhs, k)
	}
	return nil, false
}

// foldTypeBoundK decides "x op k" from the bounds of x's type. Unbounded
// numeric types only decide against negative constants.
func (s *Simplifier) foldTypeBoundK(op Op, x Exp, k *big.Int) (Exp, bool) {
	t, ok := s.env.TypeOf(x).(IntType)
	if !ok {
		return nil, false
	}
	min, max := t.MinValue(), t.MaxValue()

	switch op {
	case LT:
		if max != nil && k.Cmp(max) > 0 {
			return NewBoolConst(true), true
		}
		if k.Cmp(min) <= 0 {
			return NewBoolConst(false), true
		}
	case LE:
		if max != nil && k.Cmp(max) >= 0 {
			return NewBoolConst(true), true
		}
		if k.Cmp(min) < 0 {
			return NewBoolConst(false), true
		}
	case GT:
		if max != nil && k.Cmp(max) >= 0 {
			return NewBoolConst(false), true
		}
		if k.Cmp(min) < 0 {
			return NewBoolConst(true), true
		}
	case GE:
		if k.Cmp(min) <= 0 {
			return NewBoolConst(true), true
		}
		if max != nil && k.Cmp(max) > 0 {
			return NewBoolConst(false), true
		}
	case EQ:
		if k.Cmp(min) < 0 || (max != nil && k.Cmp(max) > 0) {
			return NewBoolConst(false), true
		}
	case NEQ:
		if k.Cmp(min) < 0 || (max != nil && k.Cmp(max) > 0) {
			return NewBoolConst(true), true
		}
	}
	return nil, false
}

// swapCmp mirrors a comparison operator so the constant moves to the right.
func swapCmp(op Op) Op {
	switch op {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	default:
		return op // EQ, NEQ
	}
}

// normalizeAddend moves a constant addend of the expression side over to the
// constant side: (e±C1) op C2 becomes e op (C2∓C1).
func normalizeAddend(op Op, lhs, rhs Exp) (Op, Exp, *big.Int, bool) {
	if k, ok := intConst(rhs); ok {
		if base, off := splitAddend(lhs); base != nil && off.Sign() != 0 {
			return op, base, new(big.Int).Sub(k, off), true
		}
	}
	if k, ok := intConst(lhs); ok {
		if base, off := splitAddend(rhs); base != nil && off.Sign() != 0 {
			return swapCmp(op), base, new(big.Int).Sub(k, off), true
		}
	}
	return op, nil, nil, false
}

// simplifyArith rewrites an arithmetic call the constant folder could not
// fully resolve. All identity rules here assume unchecked arithmetic and are
// gated on specification mode.
func (s *Simplifier) simplifyArith(e *CallExp) (Exp, bool) {
	if !s.specMode {
		return nil, false
	}
	lhs, rhs := e.Args[0], e.Args[1]

	switch e.Op {
	case ADD:
		if isZero(lhs) {
			return rhs, true
		}
		if isZero(rhs) {
			return lhs, true
		}
	case SUB:
		if isZero(rhs) {
			return lhs, true
		}
		if CompareExp(lhs, rhs) == 0 {
			return zeroConst(s.env.TypeOf(lhs)), true
		}
	case MUL:
		if isOne(lhs) {
			return rhs, true
		}
		if isOne(rhs) {
			return lhs, true
		}
		if isZero(lhs) {
			return lhs, true
		}
		if isZero(rhs) {
			return rhs, true
		}
		return s.combineFactors(e)
	case DIV:
		if isOne(rhs) {
			return lhs, true
		}
	}

	if e.Op == ADD || e.Op == SUB {
		return s.combineAddends(e)
	}
	return nil, false
}

// combineAddends collapses nested additive chains carrying two constants,
// e.g. (x+C1)-C2, into a single combined constant.
func (s *Simplifier) combineAddends(e *CallExp) (Exp, bool) {
	outer, outerOff := splitAddend(e)
	if outer == nil || outer == Exp(e) || outerOff.Sign() == 0 {
		return nil, false
	}
	inner, innerOff := splitAddend(outer)
	if inner == nil || innerOff.Sign() == 0 {
		return nil, false
	}
	t, ok := s.env.TypeOf(inner).(IntType)
	if !ok {
		return nil, false
	}
	combined := new(big.Int).Add(outerOff, innerOff)
	return addConst(inner, combined, t), true
}

// addConst builds e+k, e-|k| or just e depending on the sign of k.
func addConst(e Exp, k *big.Int, t IntType) Exp {
	switch k.Sign() {
	case 0:
		return e
	case 1:
		return NewAdd(e, NewIntConst(t, k))
	default:
		return NewSub(e, NewIntConst(t, new(big.Int).Neg(k)))
	}
}

// combineFactors collapses nested multiplicative chains carrying two
// constants into a single combined constant factor.
func (s *Simplifier) combineFactors(e *CallExp) (Exp, bool) {
	outerBase, outerK, ok := splitFactor(e)
	if !ok {
		return nil, false
	}
	innerBase, innerK, ok := splitFactor(outerBase)
	if !ok {
		return nil, false
	}
	t, isInt := s.env.TypeOf(innerBase).(IntType)
	if !isInt {
		return nil, false
	}
	combined := new(big.Int).Mul(outerK, innerK)
	if combined.Cmp(big.NewInt(1)) == 0 {
		return innerBase, true
	}
	if max := t.MaxValue(); max != nil && combined.Cmp(max) > 0 {
		return nil, false
	}
	return NewCall(MUL, innerBase, NewIntConst(t, combined)), true
}

// splitFactor decomposes a product with one constant factor.
func splitFactor(e Exp) (Exp, *big.Int, bool) {
	call, ok := e.(*CallExp)
	if !ok || call.Op != MUL {
		return nil, nil, false
	}
	if k, ok := intConst(call.Args[0]); ok {
		return call.Args[1], k, true
	}
	if k, ok := intConst(call.Args[1]); ok {
		return call.Args[0], k, true
	}
	return nil, nil, false
}
