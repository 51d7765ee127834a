package vcsimp

// simplifyNot rewrites a negation over an already-simplified operand.
func (s *Simplifier) simplifyNot(arg Exp) (Exp, bool) {
	if call, ok := arg.(*CallExp); ok {
		switch call.Op {
		case NOT:
			// Double negation.
			return call.Args[0], true
		case LT:
			// The only unsigned value not above zero is zero itself.
			if c, ok := call.Args[0].(*ConstExp); ok && IsIntType(c.Type) && c.Value.Sign() == 0 {
				if IsIntType(s.env.TypeOf(call.Args[1])) {
					return NewEq(call.Args[1], zeroConst(s.env.TypeOf(call.Args[1]))), true
				}
			}
			return NewGe(call.Args[0], call.Args[1]), true
		case LE:
			return NewGt(call.Args[0], call.Args[1]), true
		case GT:
			return NewLe(call.Args[0], call.Args[1]), true
		case GE:
			return NewLt(call.Args[0], call.Args[1]), true
		case EQ:
			return NewNeq(call.Args[0], call.Args[1]), true
		case NEQ:
			return NewEq(call.Args[0], call.Args[1]), true
		}
	}
	return nil, false
}

// simplifyAnd rewrites a binary conjunction over already-simplified operands.
func (s *Simplifier) simplifyAnd(a, b Exp) (Exp, bool) {
	if IsConstTrue(a) {
		return b, true
	}
	if IsConstTrue(b) {
		return a, true
	}
	if IsConstFalse(a) || IsConstFalse(b) {
		return NewBoolConst(false), true
	}
	if CompareExp(a, b) == 0 {
		return a, true
	}
	if isComplementary(a, b) {
		return NewBoolConst(false), true
	}
	if impliesComparison(a, b) {
		return a, true
	}
	if impliesComparison(b, a) {
		return b, true
	}

	// Prune conjuncts of either operand that the other side already implies.
	conjs := append(flattenConj(a), flattenConj(b)...)
	if len(conjs) > 2 {
		if pruned, changed := pruneConjuncts(conjs); changed {
			return AndList(pruned), true
		}
	}

	if out, ok := s.TryAntisymmetryToEq(a, b); ok {
		return out, true
	}
	if out, ok := s.TryPinchToEq(a, b); ok {
		return out, true
	}
	if out, ok := s.TryEmptyRange(a, b); ok {
		return out, true
	}
	return nil, false
}

// simplifyOr rewrites a binary disjunction over already-simplified operands.
func (s *Simplifier) simplifyOr(a, b Exp) (Exp, bool) {
	if IsConstFalse(a) {
		return b, true
	}
	if IsConstFalse(b) {
		return a, true
	}
	if IsConstTrue(a) || IsConstTrue(b) {
		return NewBoolConst(true), true
	}
	if CompareExp(a, b) == 0 {
		return a, true
	}
	if isComplementary(a, b) {
		return NewBoolConst(true), true
	}
	// Keep the weaker operand: if one side implies the other, the
	// disjunction is the implied side.
	if s.Subsumes(b, a) {
		return b, true
	}
	if s.Subsumes(a, b) {
		return a, true
	}
	return nil, false
}

// simplifyImplies rewrites an implication whose sides have already been
// rewritten. Right-nested implications flatten into a conjoined antecedent.
func (s *Simplifier) simplifyImplies(a, b Exp) (Exp, bool) {
	if IsConstTrue(a) {
		return b, true
	}
	if IsConstFalse(a) {
		return NewBoolConst(true), true
	}
	if IsConstTrue(b) {
		return NewBoolConst(true), true
	}
	if IsConstFalse(b) {
		if out, ok := s.simplifyNot(a); ok {
			return out, true
		}
		return NewNot(a), true
	}
	if CompareExp(a, b) == 0 {
		return NewBoolConst(true), true
	}

	// a => (c => d) flattens to (a && c) => d, dropping a redundant inner
	// antecedent along the way.
	if inner, ok := b.(*CallExp); ok && inner.Op == IMPLIES {
		c, d := inner.Args[0], inner.Args[1]
		if isComplementary(a, c) {
			return NewBoolConst(true), true
		}
		if CompareExp(a, c) == 0 || impliesComparison(a, c) {
			return s.implies(a, d), true
		}
		return s.implies(s.and(a, c), d), true
	}
	return nil, false
}

// simplifyIff rewrites an equivalence over already-simplified operands.
func (s *Simplifier) simplifyIff(a, b Exp) (Exp, bool) {
	if CompareExp(a, b) == 0 {
		return NewBoolConst(true), true
	}
	if isComplementary(a, b) {
		return NewBoolConst(false), true
	}
	if IsConstTrue(a) {
		return b, true
	}
	if IsConstTrue(b) {
		return a, true
	}
	if IsConstFalse(a) {
		if out, ok := s.simplifyNot(b); ok {
			return out, true
		}
		return NewNot(b), true
	}
	if IsConstFalse(b) {
		if out, ok := s.simplifyNot(a); ok {
			return out, true
		}
		return NewNot(a), true
	}
	return nil, false
}

// Subsumes returns true when b implies a, so that a disjunction of the two
// can keep only a. It recognizes structural equality, comparison
// implication, double negation and conjunctions (a conjunction implies a if
// either conjunct does).
func (s *Simplifier) Subsumes(a, b Exp) bool {
	if inner, ok := notNot(a); ok {
		return s.Subsumes(inner, b)
	}
	if inner, ok := notNot(b); ok {
		return s.Subsumes(a, inner)
	}
	if CompareExp(a, b) == 0 {
		return true
	}
	if impliesComparison(b, a) {
		return true
	}
	if call, ok := b.(*CallExp); ok && call.Op == AND {
		return s.Subsumes(a, call.Args[0]) || s.Subsumes(a, call.Args[1])
	}
	return false
}

// notNot unwraps a double negation.
func notNot(e Exp) (Exp, bool) {
	outer, ok := e.(*CallExp)
	if !ok || outer.Op != NOT {
		return nil, false
	}
	inner, ok := outer.Args[0].(*CallExp)
	if !ok || inner.Op != NOT {
		return nil, false
	}
	return inner.Args[0], true
}

// flattenConj returns the conjuncts of a (possibly nested) conjunction.
func flattenConj(e Exp) []Exp {
	if call, ok := e.(*CallExp); ok && call.Op == AND {
		return append(flattenConj(call.Args[0]), flattenConj(call.Args[1])...)
	}
	return []Exp{e}
}

// pruneConjuncts drops conjuncts that are duplicates of, or implied by, an
// earlier kept conjunct.
func pruneConjuncts(conjs []Exp) ([]Exp, bool) {
	kept := make([]Exp, 0, len(conjs))
	for _, c := range conjs {
		drop := false
		for _, k := range kept {
			if CompareExp(k, c) == 0 || impliesComparison(k, c) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(conjs) {
		return conjs, false
	}
	return kept, true
}
