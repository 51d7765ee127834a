package vcsimp

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/benbjohnson/immutable"
)

// RewriteTarget identifies a substitutable slot: a temporary by index or a
// local variable by symbol. Used as the key of the substitution map.
type RewriteTarget struct {
	Local Symbol // empty unless the target is a local variable
	Temp  int    // valid only when Local is empty
}

// substTarget returns the rewrite target addressed by a bare reference
// expression, if any.
func substTarget(e Exp) (RewriteTarget, bool) {
	switch e := e.(type) {
	case *LocalVarExp:
		return RewriteTarget{Local: e.Name}, true
	case *TemporaryExp:
		return RewriteTarget{Temp: e.Index}, true
	default:
		return RewriteTarget{}, false
	}
}

// rewriteTargetHasher implements immutable.Hasher for RewriteTarget keys.
type rewriteTargetHasher struct{}

func (rewriteTargetHasher) Hash(key RewriteTarget) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key.Local))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key.Temp))
	h.Write(buf[:])
	return h.Sum32()
}

func (rewriteTargetHasher) Equal(a, b RewriteTarget) bool { return a == b }

// Simplifier rewrites verification-condition expressions under a set of
// known-true assumptions. One instance serves a single simplification
// session; independent sessions need independent instances.
type Simplifier struct {
	env      *Env
	specMode bool

	// Known-true predicates, deduplicated by structural equality, and the
	// variable-to-expression substitution map derived from equalities among
	// them. The map is persistent so implication scopes can snapshot it in
	// O(1).
	assumptions []Exp
	subs        *immutable.Map[RewriteTarget, Exp]

	// Stack of symbol sets shadowed by enclosing binder scopes.
	shadowed []map[Symbol]struct{}

	oldDepth    int
	unfoldDepth int
}

// NewSimplifier returns a simplifier for checked-arithmetic expressions.
func NewSimplifier(env *Env) *Simplifier {
	return NewSimplifierWithMode(env, false)
}

// NewSimplifierWithMode returns a simplifier. Specification mode additionally
// enables arithmetic-identity and addend-normalization rules that are
// unsound for wrapping machine arithmetic.
func NewSimplifierWithMode(env *Env, specMode bool) *Simplifier {
	return &Simplifier{
		env:      env,
		specMode: specMode,
		subs:     immutable.NewMap[RewriteTarget, Exp](rewriteTargetHasher{}),
	}
}

// Assume registers a known-true fact. The fact is stored in its
// substitution-processed form so direct queries against the list agree with
// what Simplify would produce. Conjunctions are split into their conjuncts;
// equalities against a substitutable reference additionally record a
// substitution binding. Assuming the same fact twice is a no-op.
func (s *Simplifier) Assume(exp Exp) {
	exp = s.resolveReferences(exp)

	if call, ok := exp.(*CallExp); ok && call.Op == AND {
		s.Assume(call.Args[0])
		s.Assume(call.Args[1])
		return
	}

	if call, ok := exp.(*CallExp); ok && call.Op == EQ {
		if target, ok := substTarget(call.Args[0]); ok {
			s.subs = s.subs.Set(target, call.Args[1])
		} else if target, ok := substTarget(call.Args[1]); ok {
			s.subs = s.subs.Set(target, call.Args[0])
		}
	}

	for _, a := range s.assumptions {
		if CompareExp(a, exp) == 0 {
			return
		}
	}
	s.assumptions = append(s.assumptions, exp)
}

// resolveReferences replaces every substitutable reference in exp with its
// current image, under the same guards the traversal applies: shadowed
// symbols keep their binder meaning, images a binder scope would capture stay
// unresolved, and old() contexts see no substitution at all.
func (s *Simplifier) resolveReferences(exp Exp) Exp {
	if s.oldDepth > 0 || s.subs.Len() == 0 {
		return exp
	}
	locals := make(map[Symbol]Exp)
	temps := make(map[int]Exp)
	itr := s.subs.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		if s.mentionsShadowed(v) {
			continue
		}
		if k.Local != "" {
			if !s.isShadowed(k.Local) {
				locals[k.Local] = v
			}
		} else {
			temps[k.Temp] = v
		}
	}
	return substVars(exp, locals, temps)
}

// IsKnownTrue returns true if exp is the boolean true constant, structurally
// equal to a stored assumption, implied by one via comparison implication, or
// deducible from the total-order axioms.
func (s *Simplifier) IsKnownTrue(exp Exp) bool {
	if c, ok := exp.(*ConstExp); ok {
		return c.IsTrue()
	}
	for _, a := range s.assumptions {
		if CompareExp(a, exp) == 0 || impliesComparison(a, exp) {
			return true
		}
	}
	return s.isKnownTrueByOrdering(exp)
}

// IsKnownFalse returns true if exp is the boolean false constant,
// complementary to a stored assumption, forced false by one, or refutable
// from the total-order axioms.
func (s *Simplifier) IsKnownFalse(exp Exp) bool {
	if c, ok := exp.(*ConstExp); ok {
		return c.IsFalse()
	}
	for _, a := range s.assumptions {
		if isComplementary(a, exp) || impliesComplementary(a, exp) {
			return true
		}
	}
	return s.isKnownFalseByOrdering(exp)
}

// ApplySubstitutions resolves a bare temporary or local-variable reference
// against the substitution map. Composite expressions are returned unchanged;
// substitution inside them happens through the bottom-up rewrite.
func (s *Simplifier) ApplySubstitutions(exp Exp) Exp {
	if target, ok := substTarget(exp); ok {
		if repl, ok := s.subs.Get(target); ok {
			return repl
		}
	}
	return exp
}

// Simplify returns the fully rewritten form of exp.
func (s *Simplifier) Simplify(exp Exp) Exp {
	return Rewrite(exp, s)
}

// snapshot captures the rollback point for an implication-local assumption.
type snapshot struct {
	assumptions int
	subs        *immutable.Map[RewriteTarget, Exp]
}

func (s *Simplifier) snapshot() snapshot {
	return snapshot{assumptions: len(s.assumptions), subs: s.subs}
}

// restore truncates the assumption list and swaps the substitution map back.
// Truncation rather than reset preserves assumptions from outer scopes.
func (s *Simplifier) restore(snap snapshot) {
	s.assumptions = s.assumptions[:snap.assumptions]
	s.subs = snap.subs
}

// RewriteExp intercepts implications, old() contexts and quantifiers before
// normal bottom-up descent: all three need work scoped around only part of
// their subtree.
func (s *Simplifier) RewriteExp(e Exp) (Exp, bool) {
	switch e := e.(type) {
	case *CallExp:
		switch e.Op {
		case IMPLIES:
			return s.rewriteImplies(e), true
		case OLD:
			return s.rewriteOld(e), true
		}
	case *QuantExp:
		return s.rewriteQuantExp(e), true
	}
	return nil, false
}

// rewriteImplies rewrites the antecedent first, assumes its rewritten form
// while rewriting the consequent, and restores the tracker state before
// rebuilding the implication.
func (s *Simplifier) rewriteImplies(e *CallExp) Exp {
	lhs := s.Simplify(e.Args[0])
	snap := s.snapshot()
	s.Assume(lhs)
	rhs := s.Simplify(e.Args[1])
	s.restore(snap)
	return s.implies(lhs, rhs)
}

// rewriteOld rewrites the operand of an old() context with substitution
// disabled, then collapses nested old().
func (s *Simplifier) rewriteOld(e *CallExp) Exp {
	s.oldDepth++
	arg := s.Simplify(e.Args[0])
	s.oldDepth--

	if inner, ok := arg.(*CallExp); ok && inner.Op == OLD {
		return inner
	}
	if arg == e.Args[0] {
		return e
	}
	return NewCall(OLD, arg)
}

// rewriteQuantExp rewrites the parts of a quantifier under a shadow scope for
// its bound variables, then runs the quantifier simplification passes.
func (s *Simplifier) rewriteQuantExp(e *QuantExp) Exp {
	vars := make([]Symbol, len(e.Ranges))
	for i, r := range e.Ranges {
		vars[i] = r.Var
	}
	s.EnterScope(vars)
	var cond Exp
	if e.Condition != nil {
		cond = s.Simplify(e.Condition)
	}
	body := s.Simplify(e.Body)
	s.ExitScope()

	node := e
	if cond != e.Condition || body != e.Body {
		node = &QuantExp{Kind: e.Kind, Ranges: e.Ranges, Triggers: e.Triggers, Condition: cond, Body: body}
	}
	return s.simplifyQuant(node)
}

// simplifyUnder rewrites e with the given bound variables shadowed.
func (s *Simplifier) simplifyUnder(vars []Symbol, e Exp) Exp {
	s.EnterScope(vars)
	out := s.Simplify(e)
	s.ExitScope()
	return out
}

// EnterScope pushes a shadow frame for newly bound symbols.
func (s *Simplifier) EnterScope(vars []Symbol) {
	frame := make(map[Symbol]struct{}, len(vars))
	for _, v := range vars {
		frame[v] = struct{}{}
	}
	s.shadowed = append(s.shadowed, frame)
}

// ExitScope pops the innermost shadow frame.
func (s *Simplifier) ExitScope() {
	assert(len(s.shadowed) > 0, "scope stack underflow")
	s.shadowed = s.shadowed[:len(s.shadowed)-1]
}

func (s *Simplifier) isShadowed(name Symbol) bool {
	for _, frame := range s.shadowed {
		if _, ok := frame[name]; ok {
			return true
		}
	}
	return false
}

// mentionsShadowed reports whether a free variable of e is rebound by an
// enclosing binder scope. Substituting such an expression under the binder
// would capture the variable.
func (s *Simplifier) mentionsShadowed(e Exp) bool {
	if len(s.shadowed) == 0 {
		return false
	}
	for v := range FreeLocalVars(e) {
		if s.isShadowed(v) {
			return true
		}
	}
	return false
}

// RewriteConst implements Rewriter.
func (s *Simplifier) RewriteConst(e *ConstExp) (Exp, bool) {
	return nil, false
}

// RewriteLocalVar substitutes a bound reference unless the symbol is
// shadowed, the replacement mentions a shadowed symbol, or the traversal is
// inside an old() context. A replacement mentioning a shadowed symbol refers
// to an outer binding of it and must not be placed under the binder.
func (s *Simplifier) RewriteLocalVar(e *LocalVarExp) (Exp, bool) {
	if s.oldDepth > 0 || s.isShadowed(e.Name) {
		return nil, false
	}
	if repl, ok := s.subs.Get(RewriteTarget{Local: e.Name}); ok && !s.mentionsShadowed(repl) {
		return repl, true
	}
	return nil, false
}

// RewriteTemporary substitutes a bound temporary unless the replacement
// mentions a shadowed symbol or the traversal is inside an old() context.
func (s *Simplifier) RewriteTemporary(e *TemporaryExp) (Exp, bool) {
	if s.oldDepth > 0 {
		return nil, false
	}
	if repl, ok := s.subs.Get(RewriteTarget{Temp: e.Index}); ok && !s.mentionsShadowed(repl) {
		return repl, true
	}
	return nil, false
}

// RewriteCall dispatches the operator rule sets over already-simplified
// arguments.
func (s *Simplifier) RewriteCall(e *CallExp) (Exp, bool) {
	// Literal-only subexpressions go to the constant folder first.
	if out, ok := FoldCall(e.Op, e.Args); ok {
		return out, true
	}

	switch {
	case e.Op.IsCompare():
		return s.simplifyCompare(e)
	case e.Op.IsArithmetic():
		return s.simplifyArith(e)
	}

	switch e.Op {
	case NOT:
		return s.simplifyNot(e.Args[0])
	case AND:
		return s.simplifyAnd(e.Args[0], e.Args[1])
	case OR:
		return s.simplifyOr(e.Args[0], e.Args[1])
	case IMPLIES:
		return s.simplifyImplies(e.Args[0], e.Args[1])
	case IFF:
		return s.simplifyIff(e.Args[0], e.Args[1])
	case FREEZE:
		// Reference freezing is erased in specifications.
		if s.specMode {
			return e.Args[0], true
		}
	case WELLFORMED:
		return NewBoolConst(true), true
	case ABORTFLAG:
		return NewBoolConst(false), true
	case OLD:
		if inner, ok := e.Args[0].(*CallExp); ok && inner.Op == OLD {
			return inner, true
		}
	}
	return nil, false
}

// RewriteIfElse selects a branch on a decided condition and collapses
// identical branches.
func (s *Simplifier) RewriteIfElse(e *IfElseExp) (Exp, bool) {
	if IsConstTrue(e.Cond) || s.IsKnownTrue(e.Cond) {
		return e.Then, true
	}
	if IsConstFalse(e.Cond) || s.IsKnownFalse(e.Cond) {
		return e.Else, true
	}
	if CompareExp(e.Then, e.Else) == 0 {
		return e.Then, true
	}
	return nil, false
}

// RewriteQuant implements Rewriter. Quantifiers are normally intercepted
// pre-descent; this covers drivers that reach one through the generic path.
func (s *Simplifier) RewriteQuant(e *QuantExp) (Exp, bool) {
	return s.simplifyQuant(e), true
}

// implies rebuilds an implication through the rule set.
func (s *Simplifier) implies(a, b Exp) Exp {
	if out, ok := s.simplifyImplies(a, b); ok {
		return out
	}
	return NewImplies(a, b)
}

// and rebuilds a conjunction through the rule set.
func (s *Simplifier) and(a, b Exp) Exp {
	if out, ok := s.simplifyAnd(a, b); ok {
		return out
	}
	return NewAnd(a, b)
}
