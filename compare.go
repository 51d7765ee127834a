package vcsimp

import "math/big"

// normCmp is a comparison canonicalized into one of two normal forms:
// a < b (strict) or a >= b. Gt/Le/Ge and Not-wrapped comparisons all reduce
// to these, so logically equal facts phrased with different operators meet
// in the same shape.
type normCmp struct {
	strict bool // a < b when true, a >= b when false
	a, b   Exp
}

// canonCmp canonicalizes a comparison expression. Returns false for anything
// that is not a recognized ordering comparison.
func canonCmp(e Exp) (normCmp, bool) {
	call, ok := e.(*CallExp)
	if !ok {
		return normCmp{}, false
	}
	switch call.Op {
	case LT:
		return normCmp{strict: true, a: call.Args[0], b: call.Args[1]}, true
	case GT:
		return normCmp{strict: true, a: call.Args[1], b: call.Args[0]}, true
	case GE:
		return normCmp{strict: false, a: call.Args[0], b: call.Args[1]}, true
	case LE:
		return normCmp{strict: false, a: call.Args[1], b: call.Args[0]}, true
	case NOT:
		inner, ok := canonCmp(call.Args[0])
		if !ok {
			return normCmp{}, false
		}
		// !(a<b) == a>=b and !(a>=b) == a<b.
		return normCmp{strict: !inner.strict, a: inner.a, b: inner.b}, true
	default:
		return normCmp{}, false
	}
}

// bound is an integer ordering fact in the normal form D >= K (lower) or
// D <= K (upper), where D is a-b, or just a when b is nil. Strict
// comparisons are tightened into non-strict ones, which is sound because
// every ordered operand in this language is an integer.
type bound struct {
	a, b  Exp
	lower bool
	k     *big.Int
}

// splitAddend decomposes e into a base expression and an additive constant
// offset. A pure integer literal decomposes into a nil base.
func splitAddend(e Exp) (Exp, *big.Int) {
	switch e := e.(type) {
	case *ConstExp:
		if IsIntType(e.Type) {
			return nil, e.Value
		}
	case *CallExp:
		if len(e.Args) == 2 {
			lc, lok := intConst(e.Args[0])
			rc, rok := intConst(e.Args[1])
			switch e.Op {
			case ADD:
				if rok && !lok {
					return e.Args[0], rc
				}
				if lok && !rok {
					return e.Args[1], lc
				}
			case SUB:
				if rok && !lok {
					return e.Args[0], new(big.Int).Neg(rc)
				}
			}
		}
	}
	return e, big.NewInt(0)
}

func intConst(e Exp) (*big.Int, bool) {
	c, ok := e.(*ConstExp)
	if !ok || !IsIntType(c.Type) {
		return nil, false
	}
	return c.Value, true
}

// cmpBounds extracts the ordering bounds carried by e: one bound for a
// comparison, two for an equality with an integer literal on one side.
func cmpBounds(e Exp) []bound {
	if c, ok := canonCmp(e); ok {
		if b, ok := canonBound(c); ok {
			return []bound{b}
		}
		return nil
	}

	// An equality x == v bounds x from both sides.
	if call, ok := e.(*CallExp); ok && call.Op == EQ {
		lhs, rhs := call.Args[0], call.Args[1]
		if _, ok := intConst(lhs); ok {
			lhs, rhs = rhs, lhs
		}
		if v, ok := intConst(rhs); ok {
			base, off := splitAddend(lhs)
			if base != nil {
				k := new(big.Int).Sub(v, off)
				return []bound{
					{a: base, lower: true, k: k},
					{a: base, lower: false, k: k},
				}
			}
		}
	}
	return nil
}

// canonBound converts a canonical comparison into a single integer bound.
func canonBound(c normCmp) (bound, bool) {
	pa, ca := splitAddend(c.a)
	pb, cb := splitAddend(c.b)
	if pa == nil && pb == nil {
		return bound{}, false
	}

	// Fact: pa+ca REL pb+cb, i.e. pa-pb REL cb-ca.
	k := new(big.Int).Sub(cb, ca)
	out := bound{a: pa, b: pb, lower: !c.strict, k: k}
	if c.strict {
		// pa-pb < k tightens to pa-pb <= k-1.
		out.k = k.Sub(k, big.NewInt(1))
	}
	if out.a == nil {
		out = flipBound(out)
	}
	return out, true
}

// flipBound negates the difference of a bound: -D >= K becomes D <= -K.
func flipBound(b bound) bound {
	return bound{a: b.b, b: b.a, lower: !b.lower, k: new(big.Int).Neg(b.k)}
}

// alignBound reorients fact onto the operand pair of target. Returns false
// if the two bounds constrain different expressions.
func alignBound(target, fact bound) (bound, bool) {
	if CompareExp(fact.a, target.a) == 0 && CompareExp(fact.b, target.b) == 0 {
		return fact, true
	}
	if fact.b != nil && target.b != nil &&
		CompareExp(fact.a, target.b) == 0 && CompareExp(fact.b, target.a) == 0 {
		return flipBound(fact), true
	}
	return bound{}, false
}

// boundImplies returns true if holding fact guarantees target.
func boundImplies(fact, target bound) bool {
	fact, ok := alignBound(target, fact)
	if !ok || fact.lower != target.lower {
		return false
	}
	if target.lower {
		return fact.k.Cmp(target.k) >= 0
	}
	return fact.k.Cmp(target.k) <= 0
}

// impliesComparison returns true when the truth of stronger guarantees the
// truth of weaker, comparing both in bound normal form. Covers strict
// implying non-strict, operator reorientation, additive offsets and an
// equality implying any consistent ordering fact.
func impliesComparison(stronger, weaker Exp) bool {
	targets := cmpBounds(weaker)
	if len(targets) == 0 {
		return false
	}
	facts := cmpBounds(stronger)
	if len(facts) == 0 {
		return false
	}
	for _, target := range targets {
		implied := false
		for _, fact := range facts {
			if boundImplies(fact, target) {
				implied = true
				break
			}
		}
		if !implied {
			return false
		}
	}
	return true
}

// conjunctionImpliesComparison recursively checks whether any conjunct of a
// (possibly nested) conjunction implies target.
func conjunctionImpliesComparison(conj, target Exp) bool {
	if call, ok := conj.(*CallExp); ok && call.Op == AND {
		return conjunctionImpliesComparison(call.Args[0], target) ||
			conjunctionImpliesComparison(call.Args[1], target)
	}
	return impliesComparison(conj, target)
}

// isComplementary returns true iff one expression is exactly the negation of
// the other.
func isComplementary(a, b Exp) bool {
	if call, ok := a.(*CallExp); ok && call.Op == NOT && CompareExp(call.Args[0], b) == 0 {
		return true
	}
	if call, ok := b.(*CallExp); ok && call.Op == NOT && CompareExp(call.Args[0], a) == 0 {
		return true
	}
	return false
}

// negateBound produces the bound holding exactly when b does not.
func negateBound(b bound) bound {
	out := bound{a: b.a, b: b.b, lower: !b.lower, k: new(big.Int).Set(b.k)}
	if b.lower {
		out.k.Sub(out.k, big.NewInt(1)) // !(D>=k) == D<=k-1
	} else {
		out.k.Add(out.k, big.NewInt(1)) // !(D<=k) == D>=k+1
	}
	return out
}

// impliesComplementary returns true when assumption forces e to be false.
func impliesComplementary(assumption, e Exp) bool {
	// A negation is false exactly when its operand is true.
	if call, ok := e.(*CallExp); ok && call.Op == NOT {
		return impliesComparison(assumption, call.Args[0])
	}

	if c, ok := canonCmp(e); ok {
		if target, ok := canonBound(c); ok {
			for _, fact := range cmpBounds(assumption) {
				if boundImplies(fact, negateBound(target)) {
					return true
				}
			}
		}
	}
	return false
}

// TryAntisymmetryToEq recognizes a<=b && a>=b in any of its four syntactic
// orientations and rewrites the pair to a==b.
func (s *Simplifier) TryAntisymmetryToEq(a, b Exp) (Exp, bool) {
	ca, aok := canonCmp(a)
	cb, bok := canonCmp(b)
	if !aok || !bok || ca.strict || cb.strict {
		return nil, false
	}
	if CompareExp(ca.a, cb.b) == 0 && CompareExp(ca.b, cb.a) == 0 {
		return NewEq(cb.a, cb.b), true
	}
	return nil, false
}

// TryPinchToEq recognizes two integer bounds that pinch an expression to a
// single admissible value, such as c<x && !(c+1<x), and rewrites the pair to
// an equality with that value.
func (s *Simplifier) TryPinchToEq(a, b Exp) (Exp, bool) {
	lo, hi, ok := boundsPair(a, b)
	if !ok || lo.b != nil || lo.k.Cmp(hi.k) != 0 || lo.k.Sign() < 0 {
		return nil, false
	}
	t, ok := s.env.TypeOf(lo.a).(IntType)
	if !ok {
		return nil, false
	}
	if max := t.MaxValue(); max != nil && lo.k.Cmp(max) > 0 {
		return nil, false
	}
	return NewEq(lo.a, NewIntConst(t, lo.k)), true
}

// TryEmptyRange recognizes two bounds that admit no integer value and
// rewrites the pair to the boolean false constant.
func (s *Simplifier) TryEmptyRange(a, b Exp) (Exp, bool) {
	lo, hi, ok := boundsPair(a, b)
	if !ok || hi.k.Cmp(lo.k) >= 0 {
		return nil, false
	}
	return NewBoolConst(false), true
}

// boundsPair extracts a lower and an upper bound over the same difference
// from two comparison expressions, in either argument order.
func boundsPair(a, b Exp) (lo, hi bound, ok bool) {
	ca, aok := canonCmp(a)
	cb, bok := canonCmp(b)
	if !aok || !bok {
		return bound{}, bound{}, false
	}
	ba, aok := canonBound(ca)
	bb, bok := canonBound(cb)
	if !aok || !bok {
		return bound{}, bound{}, false
	}
	if aligned, ok := alignBound(ba, bb); ok {
		bb = aligned
	} else {
		return bound{}, bound{}, false
	}
	if ba.lower && !bb.lower {
		return ba, bb, true
	}
	if !ba.lower && bb.lower {
		return bb, ba, true
	}
	return bound{}, bound{}, false
}

// orderingKnownLt returns true if a<b follows from a stored assumption.
func (s *Simplifier) orderingKnownLt(a, b Exp) bool {
	return s.anyAssumptionImplies(NewLt(a, b))
}

// orderingKnownNotLt returns true if a>=b follows from a stored assumption.
func (s *Simplifier) orderingKnownNotLt(a, b Exp) bool {
	return s.anyAssumptionImplies(NewGe(a, b))
}

func (s *Simplifier) anyAssumptionImplies(target Exp) bool {
	for _, assumption := range s.assumptions {
		if conjunctionImpliesComparison(assumption, target) {
			return true
		}
	}
	return false
}

// isKnownTrueByOrdering decides comparison facts from the total-order axioms
// over the stored assumptions, e.g. a==b iff !(a<b) && !(b<a). It never
// recurses into IsKnownTrue, so the two cannot loop through each other.
func (s *Simplifier) isKnownTrueByOrdering(e Exp) bool {
	call, ok := e.(*CallExp)
	if !ok || !call.Op.IsCompare() {
		return false
	}
	a, b := call.Args[0], call.Args[1]
	switch call.Op {
	case EQ:
		return s.orderingKnownNotLt(a, b) && s.orderingKnownNotLt(b, a)
	case NEQ:
		return s.orderingKnownLt(a, b) || s.orderingKnownLt(b, a)
	case LT:
		return s.orderingKnownLt(a, b)
	case GT:
		return s.orderingKnownLt(b, a)
	case LE:
		return s.orderingKnownNotLt(b, a)
	case GE:
		return s.orderingKnownNotLt(a, b)
	default:
		return false
	}
}

// isKnownFalseByOrdering is the dual of isKnownTrueByOrdering.
func (s *Simplifier) isKnownFalseByOrdering(e Exp) bool {
	call, ok := e.(*CallExp)
	if !ok || !call.Op.IsCompare() {
		return false
	}
	a, b := call.Args[0], call.Args[1]
	switch call.Op {
	case EQ:
		return s.orderingKnownLt(a, b) || s.orderingKnownLt(b, a)
	case NEQ:
		return s.orderingKnownNotLt(a, b) && s.orderingKnownNotLt(b, a)
	case LT:
		return s.orderingKnownNotLt(a, b)
	case GT:
		return s.orderingKnownNotLt(b, a)
	case LE:
		return s.orderingKnownLt(b, a)
	case GE:
		return s.orderingKnownLt(a, b)
	default:
		return false
	}
}
