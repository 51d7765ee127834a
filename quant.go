package vcsimp

import (
	log "github.com/sirupsen/logrus"
)

// simplifyQuant runs the quantifier rewriting passes over a quantifier whose
// parts have already been rewritten. Each pass either keeps the quantifier,
// shrinks its range list, or collapses it into a plain expression; passes
// loop only while the range list strictly shrinks, so the chain terminates.
func (s *Simplifier) simplifyQuant(q *QuantExp) Exp {
	if len(q.Triggers) > 0 {
		return q
	}

	// Fold the filter condition into the body so the passes below only deal
	// with plain bodies. For forall the filter weakens the body, for exists
	// it constrains it.
	if q.Condition != nil {
		body := q.Body
		if q.Kind == Forall {
			body = s.implies(q.Condition, body)
		} else {
			body = s.and(q.Condition, body)
		}
		q = &QuantExp{Kind: q.Kind, Ranges: q.Ranges, Body: body}
	}

	q = s.flattenQuant(q)
	if q.Kind == Exists {
		q = s.absorbInnerExists(q)
	}

	var cur Exp = q
	if next, ok := cur.(*QuantExp); ok {
		cur = s.eliminateOnePoint(next)
	}
	if next, ok := cur.(*QuantExp); ok {
		cur = s.eliminateStructOnePoint(next)
	}
	if next, ok := cur.(*QuantExp); ok {
		cur = s.dropUnusedVars(next)
	}
	if next, ok := cur.(*QuantExp); ok && next.Kind == Forall {
		cur = s.dropAntecedentOnlyVars(next)
	}
	if next, ok := cur.(*QuantExp); ok && next.Kind == Exists {
		cur = s.splitIndependentExists(next)
	}
	if next, ok := cur.(*QuantExp); ok && next.Kind == Exists {
		cur = s.eliminateUpperBoundWitness(next)
	}
	if next, ok := cur.(*QuantExp); ok && next.Kind == Exists {
		cur = s.tryWitnessInstantiation(next)
	}
	if next, ok := cur.(*QuantExp); ok && len(next.Ranges) == 0 {
		return next.Body
	}
	return cur
}

// flattenQuant merges nested same-kind quantifiers carrying no triggers or
// filter into one quantifier with a concatenated, symbol-deduplicated range
// list.
func (s *Simplifier) flattenQuant(q *QuantExp) *QuantExp {
	inner, ok := q.Body.(*QuantExp)
	if !ok || inner.Kind != q.Kind || len(inner.Triggers) > 0 || inner.Condition != nil {
		return q
	}
	ranges := append([]Range{}, q.Ranges...)
	for _, r := range inner.Ranges {
		if !rangesContain(ranges, r.Var) {
			ranges = append(ranges, r)
		}
	}
	log.Debugf("flattened nested %s into %d ranges", q.Kind, len(ranges))
	return s.flattenQuant(&QuantExp{Kind: q.Kind, Ranges: ranges, Body: inner.Body})
}

// absorbInnerExists merges exists conjuncts of an exists body into the outer
// quantifier, splicing their conjuncts into the outer conjunct list.
func (s *Simplifier) absorbInnerExists(q *QuantExp) *QuantExp {
	conjs := flattenConj(q.Body)
	ranges := append([]Range{}, q.Ranges...)
	changed := false
	var out []Exp
	for _, c := range conjs {
		inner, ok := c.(*QuantExp)
		if !ok || inner.Kind != Exists || len(inner.Triggers) > 0 || inner.Condition != nil {
			out = append(out, c)
			continue
		}
		for _, r := range inner.Ranges {
			if !rangesContain(ranges, r.Var) {
				ranges = append(ranges, r)
			}
		}
		out = append(out, flattenConj(inner.Body)...)
		changed = true
	}
	if !changed {
		return q
	}
	log.Debugf("absorbed inner exists into %d ranges", len(ranges))
	return &QuantExp{Kind: Exists, Ranges: ranges, Body: AndList(out)}
}

// eliminateOnePoint applies the one-point rule to a fixed point: a bound
// variable equated with an expression not containing it is substituted away.
// Antisymmetric and duplicate conjunct pairs are normalized between
// iterations, which can expose new bindings.
func (s *Simplifier) eliminateOnePoint(q *QuantExp) Exp {
	for {
		var ante, cons Exp
		if q.Kind == Forall {
			impl, ok := q.Body.(*CallExp)
			if !ok || impl.Op != IMPLIES {
				return q
			}
			ante, cons = impl.Args[0], impl.Args[1]
		} else {
			ante = q.Body
		}

		conjs, normalized := s.normalizeConjuncts(flattenConj(ante))
		v, repl, idx, found := findOnePoint(conjs, q.Ranges)
		if !found {
			if !normalized {
				return q
			}
			body := AndList(conjs)
			if q.Kind == Forall {
				body = s.implies(body, cons)
			}
			q = &QuantExp{Kind: q.Kind, Ranges: q.Ranges, Body: body}
			continue
		}

		log.Debugf("one-point elimination of %s", v)
		m := map[Symbol]Exp{v: repl}
		rest := make([]Exp, 0, len(conjs)-1)
		for i, c := range conjs {
			if i != idx {
				rest = append(rest, SubstLocalVars(c, m))
			}
		}
		ranges := removeRange(q.Ranges, v)

		var body Exp = AndList(rest)
		if q.Kind == Forall {
			body = NewImplies(body, SubstLocalVars(cons, m))
		}
		body = s.simplifyUnder(rangeVars(ranges), body)

		if len(ranges) == 0 {
			return body
		}
		q = &QuantExp{Kind: q.Kind, Ranges: ranges, Body: body}
		if _, ok := body.(*ConstExp); ok {
			return s.dropUnusedVars(q)
		}
	}
}

// normalizeConjuncts deduplicates conjuncts and rewrites antisymmetric pairs
// into equalities.
func (s *Simplifier) normalizeConjuncts(conjs []Exp) ([]Exp, bool) {
	changed := false
	var out []Exp
	for _, c := range conjs {
		dup := false
		for _, k := range out {
			if CompareExp(k, c) == 0 {
				dup = true
				break
			}
		}
		if dup {
			changed = true
			continue
		}
		out = append(out, c)
	}

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if eq, ok := s.TryAntisymmetryToEq(out[i], out[j]); ok {
				out[i] = eq
				out = append(out[:j], out[j+1:]...)
				changed = true
				j--
			}
		}
	}
	return out, changed
}

// findOnePoint searches conjuncts for an equality binding a bound variable
// to an expression in which the variable is not free.
func findOnePoint(conjs []Exp, ranges []Range) (Symbol, Exp, int, bool) {
	for i, c := range conjs {
		call, ok := c.(*CallExp)
		if !ok || call.Op != EQ {
			continue
		}
		for side := 0; side < 2; side++ {
			lv, ok := call.Args[side].(*LocalVarExp)
			if !ok || !rangesContain(ranges, lv.Name) {
				continue
			}
			other := call.Args[1-side]
			if !IsFreeIn(other, lv.Name) {
				return lv.Name, other, i, true
			}
		}
	}
	return "", nil, 0, false
}

// eliminateStructOnePoint replaces a bound struct variable whose every field
// is pinned by an equality conjunct with a freshly packed value. Partial
// field coverage never fires the rule.
func (s *Simplifier) eliminateStructOnePoint(q *QuantExp) Exp {
	for {
		var ante, cons Exp
		if q.Kind == Forall {
			impl, ok := q.Body.(*CallExp)
			if !ok || impl.Op != IMPLIES {
				return q
			}
			ante, cons = impl.Args[0], impl.Args[1]
		} else {
			ante = q.Body
		}
		conjs := flattenConj(ante)

		v, pack, used, found := s.findStructOnePoint(conjs, q.Ranges)
		if !found {
			return q
		}

		log.Debugf("struct one-point elimination of %s", v)
		m := map[Symbol]Exp{v: pack}
		var rest []Exp
		for i, c := range conjs {
			if !used[i] {
				rest = append(rest, SubstLocalVars(c, m))
			}
		}
		ranges := removeRange(q.Ranges, v)

		var body Exp = AndList(rest)
		if q.Kind == Forall {
			body = NewImplies(body, SubstLocalVars(cons, m))
		}
		body = s.simplifyUnder(rangeVars(ranges), body)

		if len(ranges) == 0 {
			return body
		}
		q = &QuantExp{Kind: q.Kind, Ranges: ranges, Body: body}
		if _, ok := body.(*ConstExp); ok {
			return s.dropUnusedVars(q)
		}
	}
}

// findStructOnePoint looks for a bound variable of a non-variant struct type
// whose every field is bound by an x.f==e conjunct with e free of x.
func (s *Simplifier) findStructOnePoint(conjs []Exp, ranges []Range) (Symbol, Exp, map[int]bool, bool) {
	for _, r := range ranges {
		st, ok := r.Type.(StructType)
		if !ok {
			continue
		}
		def := s.env.Struct(st.Name)
		if def == nil || def.Variant || len(def.Fields) == 0 {
			continue
		}

		fieldVals := make([]Exp, len(def.Fields))
		used := make(map[int]bool)
		count := 0
		for i, c := range conjs {
			f, val, ok := fieldBinding(c, st.Name, r.Var)
			if !ok || f >= len(fieldVals) || fieldVals[f] != nil {
				continue
			}
			fieldVals[f] = val
			used[i] = true
			count++
		}
		if count == len(def.Fields) {
			return r.Var, NewPack(st.Name, fieldVals...), used, true
		}
	}
	return "", nil, nil, false
}

// fieldBinding matches a conjunct of the shape x.f==e or e==x.f where e does
// not mention x.
func fieldBinding(c Exp, structName string, v Symbol) (int, Exp, bool) {
	call, ok := c.(*CallExp)
	if !ok || call.Op != EQ {
		return 0, nil, false
	}
	for side := 0; side < 2; side++ {
		sel, ok := call.Args[side].(*SelectExp)
		if !ok || sel.Struct != structName {
			continue
		}
		lv, ok := sel.Arg.(*LocalVarExp)
		if !ok || lv.Name != v {
			continue
		}
		other := call.Args[1-side]
		if !IsFreeIn(other, v) {
			return sel.Field, other, true
		}
	}
	return 0, nil, false
}

// dropUnusedVars removes bound variables not free in the body. This is sound
// for both kinds: vacuous for forall, and every domain here is non-empty, so
// a witness exists for exists.
func (s *Simplifier) dropUnusedVars(q *QuantExp) Exp {
	free := FreeLocalVars(q.Body)
	kept := make([]Range, 0, len(q.Ranges))
	for _, r := range q.Ranges {
		if _, ok := free[r.Var]; ok {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(q.Ranges) {
		return q
	}
	log.Debugf("dropped %d unused bound variables", len(q.Ranges)-len(kept))
	if len(kept) == 0 {
		return q.Body
	}
	return &QuantExp{Kind: q.Kind, Ranges: kept, Body: q.Body}
}

// dropAntecedentOnlyVars eliminates forall-bound variables that occur only
// in the antecedent, together with the antecedent conjuncts that reference
// only eliminated variables. A variable stays if any kept conjunct mentions
// it alongside a remaining variable, which would otherwise dangle free.
func (s *Simplifier) dropAntecedentOnlyVars(q *QuantExp) Exp {
	impl, ok := q.Body.(*CallExp)
	if !ok || impl.Op != IMPLIES {
		return q
	}
	ante, cons := impl.Args[0], impl.Args[1]
	conjs := flattenConj(ante)

	bound := make(map[Symbol]struct{}, len(q.Ranges))
	for _, r := range q.Ranges {
		bound[r.Var] = struct{}{}
	}
	consFree := FreeLocalVars(cons)

	eliminated := make(map[Symbol]struct{})
	for v := range bound {
		if _, ok := consFree[v]; !ok {
			eliminated[v] = struct{}{}
		}
	}
	if len(eliminated) == 0 {
		return q
	}

	// A conjunct that survives must not pin an eliminated variable.
	for changed := true; changed; {
		changed = false
		for _, c := range conjs {
			mv := boundMentions(c, bound)
			kept := false
			for v := range mv {
				if _, ok := eliminated[v]; !ok {
					kept = true
					break
				}
			}
			if !kept {
				continue
			}
			for v := range mv {
				if _, ok := eliminated[v]; ok {
					delete(eliminated, v)
					changed = true
				}
			}
		}
	}
	if len(eliminated) == 0 {
		return q
	}

	log.Debugf("eliminated %d antecedent-only variables", len(eliminated))
	var keptConjs []Exp
	for _, c := range conjs {
		mv := boundMentions(c, bound)
		droppable := len(mv) > 0
		for v := range mv {
			if _, ok := eliminated[v]; !ok {
				droppable = false
				break
			}
		}
		if !droppable {
			keptConjs = append(keptConjs, c)
		}
	}

	kept := make([]Range, 0, len(q.Ranges))
	for _, r := range q.Ranges {
		if _, ok := eliminated[r.Var]; !ok {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return cons
	}
	if len(keptConjs) == 0 {
		return &QuantExp{Kind: Forall, Ranges: kept, Body: cons}
	}
	return &QuantExp{Kind: Forall, Ranges: kept, Body: s.implies(AndList(keptConjs), cons)}
}

// splitIndependentExists partitions the body conjuncts of an exists by
// shared bound-variable co-occurrence into connected components, turning
// each component into its own narrower exists and hoisting variable-free
// conjuncts to the top level.
func (s *Simplifier) splitIndependentExists(q *QuantExp) Exp {
	conjs := flattenConj(q.Body)
	if len(conjs) < 2 {
		return q
	}
	bound := make(map[Symbol]struct{}, len(q.Ranges))
	varIndex := make(map[Symbol]int, len(q.Ranges))
	for i, r := range q.Ranges {
		bound[r.Var] = struct{}{}
		varIndex[r.Var] = i
	}

	uf := newUnionFind(len(q.Ranges))
	mentions := make([][]Symbol, len(conjs))
	var varFree []Exp
	for i, c := range conjs {
		mv := boundMentions(c, bound)
		for v := range mv {
			mentions[i] = append(mentions[i], v)
		}
		if len(mentions[i]) == 0 {
			varFree = append(varFree, c)
			continue
		}
		first := varIndex[mentions[i][0]]
		for _, v := range mentions[i][1:] {
			uf.union(first, varIndex[v])
		}
	}

	// Group conjuncts by component root, preserving conjunct order.
	componentConjs := make(map[int][]Exp)
	var roots []int
	for i, c := range conjs {
		if len(mentions[i]) == 0 {
			continue
		}
		root := uf.find(varIndex[mentions[i][0]])
		if _, ok := componentConjs[root]; !ok {
			roots = append(roots, root)
		}
		componentConjs[root] = append(componentConjs[root], c)
	}
	if len(roots)+btoi(len(varFree) > 0) < 2 {
		return q
	}

	log.Debugf("split exists into %d components and %d free conjuncts", len(roots), len(varFree))
	parts := append([]Exp{}, varFree...)
	for _, root := range roots {
		var vars []Range
		for i, r := range q.Ranges {
			if uf.find(i) == root {
				vars = append(vars, r)
			}
		}
		sub := &QuantExp{Kind: Exists, Ranges: vars, Body: AndList(componentConjs[root])}
		parts = append(parts, s.Simplify(sub))
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out = s.and(out, p)
	}
	return out
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// witnessBound records an upper bound xi<=e or xi<e found for a bound
// variable.
type witnessBound struct {
	expr   Exp
	strict bool
}

// eliminateUpperBoundWitness discharges an exists whose variables all range
// over unsigned integers and all carry an upper bound free of bound
// variables, provided every remaining conjunct is monotone non-decreasing in
// every bound variable: substituting the bounds themselves is then a valid
// witness.
func (s *Simplifier) eliminateUpperBoundWitness(q *QuantExp) Exp {
	for _, r := range q.Ranges {
		if !IsIntType(r.Type) {
			return q
		}
	}
	bound := make(map[Symbol]struct{}, len(q.Ranges))
	for _, r := range q.Ranges {
		bound[r.Var] = struct{}{}
	}

	conjs := flattenConj(q.Body)
	witnesses := make(map[Symbol]witnessBound)
	used := make(map[int]bool)
	for i, c := range conjs {
		v, e, strict, ok := upperBoundOn(c, bound)
		if !ok {
			continue
		}
		if _, dup := witnesses[v]; dup {
			continue
		}
		if len(boundMentions(e, bound)) > 0 {
			continue
		}
		witnesses[v] = witnessBound{expr: e, strict: strict}
		used[i] = true
	}
	if len(witnesses) != len(q.Ranges) {
		return q
	}

	var remaining []Exp
	for i, c := range conjs {
		if !used[i] {
			remaining = append(remaining, c)
		}
	}
	for _, c := range remaining {
		if !s.upwardSafe(c, bound) {
			return q
		}
	}

	log.Debugf("upper-bound witness elimination of %d variables", len(q.Ranges))
	subst := make(map[Symbol]Exp, len(q.Ranges))
	var guards []Exp
	for _, r := range q.Ranges {
		w := witnesses[r.Var]
		if w.strict {
			t, ok := s.env.TypeOf(w.expr).(IntType)
			if !ok {
				t = r.Type.(IntType)
			}
			// xi < e needs a non-empty domain below e.
			guards = append(guards, NewLt(zeroConst(t), w.expr))
			subst[r.Var] = NewSub(w.expr, NewIntConst64(t, 1))
		} else {
			subst[r.Var] = w.expr
		}
	}

	parts := append([]Exp{}, guards...)
	for _, c := range remaining {
		parts = append(parts, SubstLocalVars(c, subst))
	}
	return s.Simplify(AndList(parts))
}

// upperBoundOn matches a conjunct of the shape v<=e or v<e for a bound
// variable v.
func upperBoundOn(c Exp, bound map[Symbol]struct{}) (Symbol, Exp, bool, bool) {
	cc, ok := canonCmp(c)
	if !ok {
		return "", nil, false, false
	}
	if cc.strict {
		// a < b bounds a from above.
		if lv, ok := cc.a.(*LocalVarExp); ok {
			if _, isBound := bound[lv.Name]; isBound {
				return lv.Name, cc.b, true, true
			}
		}
	} else {
		// a >= b bounds b from above.
		if lv, ok := cc.b.(*LocalVarExp); ok {
			if _, isBound := bound[lv.Name]; isBound {
				return lv.Name, cc.a, false, true
			}
		}
	}
	return "", nil, false, false
}

// upwardSafe reports whether a conjunct, once true, stays true as any bound
// variable grows. Checked structurally: a comparison holding a monotone
// non-decreasing term above a fixed one.
func (s *Simplifier) upwardSafe(c Exp, bound map[Symbol]struct{}) bool {
	if len(boundMentions(c, bound)) == 0 {
		return true
	}
	cc, ok := canonCmp(c)
	if !ok {
		return false
	}
	if cc.strict {
		// a < b: safe when a is fixed and b only grows.
		return len(boundMentions(cc.a, bound)) == 0 && s.monotone(cc.b, bound)
	}
	// a >= b: safe when a only grows and b is fixed.
	return s.monotone(cc.a, bound) && len(boundMentions(cc.b, bound)) == 0
}

// monotone reports whether e is non-decreasing in every bound variable:
// sums of monotone parts, products and quotients-by-positive-constant of
// monotone parts (sound here because every bound domain is unsigned), the
// variable itself, or any bound-variable-free subexpression.
func (s *Simplifier) monotone(e Exp, bound map[Symbol]struct{}) bool {
	if len(boundMentions(e, bound)) == 0 {
		return true
	}
	switch e := e.(type) {
	case *LocalVarExp:
		_, ok := bound[e.Name]
		return ok
	case *CallExp:
		switch e.Op {
		case ADD:
			return s.monotone(e.Args[0], bound) && s.monotone(e.Args[1], bound)
		case MUL:
			return s.monotone(e.Args[0], bound) && s.monotone(e.Args[1], bound)
		case DIV:
			k, ok := intConst(e.Args[1])
			return ok && k.Sign() > 0 && s.monotone(e.Args[0], bound)
		}
	}
	return false
}

// tryWitnessInstantiation proves an exists over bounded domains by trying
// the minimum of every domain at once, then the maximum.
func (s *Simplifier) tryWitnessInstantiation(q *QuantExp) Exp {
	for _, r := range q.Ranges {
		switch t := r.Type.(type) {
		case BoolType:
		case IntType:
			if !t.IsBounded() {
				return q
			}
		default:
			return q
		}
	}

	min := make(map[Symbol]Exp, len(q.Ranges))
	max := make(map[Symbol]Exp, len(q.Ranges))
	for _, r := range q.Ranges {
		switch t := r.Type.(type) {
		case BoolType:
			min[r.Var] = NewBoolConst(false)
			max[r.Var] = NewBoolConst(true)
		case IntType:
			min[r.Var] = NewIntConst(t, t.MinValue())
			max[r.Var] = NewIntConst(t, t.MaxValue())
		}
	}

	if out := s.Simplify(SubstLocalVars(q.Body, min)); IsConstTrue(out) {
		log.Debugf("exists discharged by minimum witness")
		return out
	}
	if out := s.Simplify(SubstLocalVars(q.Body, max)); IsConstTrue(out) {
		log.Debugf("exists discharged by maximum witness")
		return out
	}
	return q
}

// IsForallProvablyFalse instantiates every bound variable of a universal
// quantifier with the minimum of its domain and reports whether the body
// collapses to the false constant, exposing vacuously-false obligations.
func (s *Simplifier) IsForallProvablyFalse(exp Exp) bool {
	q, ok := exp.(*QuantExp)
	if !ok || q.Kind != Forall {
		return false
	}
	m := make(map[Symbol]Exp, len(q.Ranges))
	for _, r := range q.Ranges {
		switch t := r.Type.(type) {
		case BoolType:
			m[r.Var] = NewBoolConst(false)
		case IntType:
			m[r.Var] = NewIntConst(t, t.MinValue())
		default:
			return false
		}
	}
	if q.Condition != nil {
		if !IsConstTrue(s.Simplify(SubstLocalVars(q.Condition, m))) {
			return false
		}
	}
	return IsConstFalse(s.Simplify(SubstLocalVars(q.Body, m)))
}

// boundMentions returns the bound variables free in e.
func boundMentions(e Exp, bound map[Symbol]struct{}) map[Symbol]struct{} {
	out := make(map[Symbol]struct{})
	for v := range FreeLocalVars(e) {
		if _, ok := bound[v]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func rangeVars(ranges []Range) []Symbol {
	out := make([]Symbol, len(ranges))
	for i, r := range ranges {
		out[i] = r.Var
	}
	return out
}

func rangesContain(ranges []Range, v Symbol) bool {
	for _, r := range ranges {
		if r.Var == v {
			return true
		}
	}
	return false
}

func removeRange(ranges []Range, v Symbol) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Var != v {
			out = append(out, r)
		}
	}
	return out
}

// unionFind is a plain disjoint-set over range indexes, used to find
// connected components of bound-variable co-occurrence.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
