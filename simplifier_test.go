package vcsimp_test

import (
	"testing"

	"github.com/movelight/vcsimp"
)

func TestSimplifier_Substitution(t *testing.T) {
	t.Run("LocalVar", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		x := u64v("x")
		s.Assume(vcsimp.NewEq(x, u64c(5)))

		got := s.Simplify(vcsimp.NewAdd(x, u64c(1)))
		if diff := diffExp(u64c(6), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Temporary", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		tmp := vcsimp.NewTemporary(0, vcsimp.U64)
		s.Assume(vcsimp.NewEq(tmp, u64c(7)))

		got := s.Simplify(tmp)
		if diff := diffExp(u64c(7), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ReversedEquality", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		x := u64v("x")
		s.Assume(vcsimp.NewEq(u64c(5), x))

		got := s.Simplify(x)
		if diff := diffExp(u64c(5), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ChainedBindings", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		x, y := u64v("x"), u64v("y")
		s.Assume(vcsimp.NewEq(x, u64c(5)))
		s.Assume(vcsimp.NewEq(y, x))

		got := s.Simplify(y)
		if diff := diffExp(u64c(5), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AppliedUnderBinder", func(t *testing.T) {
		env := vcsimp.NewEnv()
		declareBinaryPredicate(env, "p", vcsimp.U64)
		s := vcsimp.NewSimplifier(env)
		x, n := u64v("x"), u64v("n")
		s.Assume(vcsimp.NewEq(x, n))

		got := s.Simplify(vcsimp.NewQuant(vcsimp.Forall,
			[]vcsimp.Range{{Var: "y", Type: vcsimp.U64}},
			vcsimp.NewFunCall("p", x, u64v("y"))))
		want := vcsimp.NewQuant(vcsimp.Forall,
			[]vcsimp.Range{{Var: "y", Type: vcsimp.U64}},
			vcsimp.NewFunCall("p", n, u64v("y")))
		if diff := diffExp(want, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("RefusedWhenBinderWouldCapture", func(t *testing.T) {
		// x is bound to y; replacing it under "forall y" would conflate the
		// outer y with the bound one.
		env := vcsimp.NewEnv()
		declareBinaryPredicate(env, "p", vcsimp.U64)
		s := vcsimp.NewSimplifier(env)
		x, y := u64v("x"), u64v("y")
		s.Assume(vcsimp.NewEq(x, y))

		e := vcsimp.NewQuant(vcsimp.Forall,
			[]vcsimp.Range{{Var: "y", Type: vcsimp.U64}},
			vcsimp.NewFunCall("p", x, u64v("y")))
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplifier_AssumptionResolution(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x, y := u64v("x"), u64v("y")
	s.Assume(vcsimp.NewEq(y, u64c(5)))
	s.Assume(vcsimp.NewEq(x, y))

	// The second fact is stored with y already resolved, so the direct query
	// surface agrees with what Simplify would produce.
	if !s.IsKnownTrue(vcsimp.NewEq(x, u64c(5))) {
		t.Fatal("expected x == 5 to be known")
	}
	got := s.Simplify(x)
	if diff := diffExp(u64c(5), got); diff != "" {
		t.Fatal(diff)
	}
}

func TestSimplifier_ImplicationScope(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := u64v("x")

	got := s.Simplify(vcsimp.NewImplies(
		vcsimp.NewEq(x, u64c(5)),
		vcsimp.NewEq(vcsimp.NewAdd(x, u64c(1)), u64c(6)),
	))
	if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
		t.Fatal(diff)
	}

	// The antecedent binding must not leak past the implication.
	if diff := diffExp(x, s.Simplify(x)); diff != "" {
		t.Fatal(diff)
	}
}

func TestSimplifier_DischargeConsequent(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	n := u64v("n")
	s.Assume(vcsimp.NewLt(u64c(3), n))

	got := s.Simplify(vcsimp.NewImplies(vcsimp.NewLt(u64c(2), n), boolv("p")))
	if diff := diffExp(boolv("p"), got); diff != "" {
		t.Fatal(diff)
	}
}

func TestSimplifier_Old(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := u64v("x")
	s.Assume(vcsimp.NewEq(x, u64c(5)))

	t.Run("BlocksSubstitution", func(t *testing.T) {
		e := vcsimp.NewCall(vcsimp.OLD, x)
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("CollapsesNested", func(t *testing.T) {
		inner := vcsimp.NewCall(vcsimp.OLD, x)
		got := s.Simplify(vcsimp.NewCall(vcsimp.OLD, inner))
		if diff := diffExp(inner, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplifier_SpecialOps(t *testing.T) {
	env := vcsimp.NewEnv()
	x := u64v("x")

	t.Run("WellFormed", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		got := s.Simplify(vcsimp.NewCall(vcsimp.WELLFORMED, x))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AbortFlag", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		got := s.Simplify(vcsimp.NewCall(vcsimp.ABORTFLAG))
		if diff := diffExp(vcsimp.NewBoolConst(false), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FreezeErasedInSpecMode", func(t *testing.T) {
		s := vcsimp.NewSimplifierWithMode(env, true)
		got := s.Simplify(vcsimp.NewCall(vcsimp.FREEZE, x))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FreezeKeptInCheckedMode", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		e := vcsimp.NewCall(vcsimp.FREEZE, x)
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplifier_IfElse(t *testing.T) {
	env := vcsimp.NewEnv()
	a, b := u64v("a"), u64v("b")

	t.Run("ConstCondition", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		got := s.Simplify(vcsimp.NewIfElse(vcsimp.NewBoolConst(true), a, b))
		if diff := diffExp(a, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("KnownCondition", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		n := u64v("n")
		s.Assume(vcsimp.NewLt(u64c(3), n))
		got := s.Simplify(vcsimp.NewIfElse(vcsimp.NewLt(u64c(2), n), a, b))
		if diff := diffExp(a, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("EqualBranches", func(t *testing.T) {
		s := vcsimp.NewSimplifier(env)
		got := s.Simplify(vcsimp.NewIfElse(boolv("p"), a, u64v("a")))
		if diff := diffExp(a, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplifier_Idempotent(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := u64v("x")

	out := s.Simplify(vcsimp.NewAnd(
		vcsimp.NewLt(u64c(5), x),
		vcsimp.NewNot(vcsimp.NewLt(u64c(6), x)),
	))
	again := s.Simplify(out)
	if diff := diffExp(out, again); diff != "" {
		t.Fatal(diff)
	}
}
