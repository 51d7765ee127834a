package vcsimp_test

import (
	"testing"

	"github.com/movelight/vcsimp"
)

func TestSimplifier_IsKnownTrue_Comparison(t *testing.T) {
	t.Run("StrictTightening", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		n := u64v("n")
		s.Assume(vcsimp.NewLt(u64c(3), n))

		if !s.IsKnownTrue(vcsimp.NewLt(u64c(2), n)) {
			t.Fatal("expected known true")
		}
		if !s.IsKnownTrue(vcsimp.NewGe(n, u64c(4))) {
			t.Fatal("expected known true")
		}
		if s.IsKnownTrue(vcsimp.NewLt(u64c(5), n)) {
			t.Fatal("expected unknown")
		}
		if !s.IsKnownFalse(vcsimp.NewLe(n, u64c(2))) {
			t.Fatal("expected known false")
		}
	})
	t.Run("EqualityBoundsBothSides", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		n := u64v("n")
		s.Assume(vcsimp.NewEq(n, u64c(5)))

		if !s.IsKnownTrue(vcsimp.NewLt(n, u64c(10))) {
			t.Fatal("expected known true")
		}
		if !s.IsKnownTrue(vcsimp.NewGe(n, u64c(5))) {
			t.Fatal("expected known true")
		}
		if !s.IsKnownFalse(vcsimp.NewLt(n, u64c(5))) {
			t.Fatal("expected known false")
		}
	})
	t.Run("AdditiveOffset", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		n := u64v("n")
		s.Assume(vcsimp.NewLt(vcsimp.NewAdd(n, u64c(1)), u64c(10)))

		if !s.IsKnownTrue(vcsimp.NewLt(n, u64c(9))) {
			t.Fatal("expected known true")
		}
	})
	t.Run("OrderingAxioms", func(t *testing.T) {
		env := vcsimp.NewEnv()
		s := vcsimp.NewSimplifier(env)
		a, b := u64v("a"), u64v("b")
		s.Assume(vcsimp.NewLe(a, b))
		s.Assume(vcsimp.NewGe(a, b))

		if !s.IsKnownTrue(vcsimp.NewEq(a, b)) {
			t.Fatal("expected known true")
		}
		if !s.IsKnownFalse(vcsimp.NewNeq(a, b)) {
			t.Fatal("expected known false")
		}
	})
}

func TestSimplifier_TryAntisymmetryToEq(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	a, b := u64v("a"), u64v("b")

	t.Run("Direct", func(t *testing.T) {
		out, ok := s.TryAntisymmetryToEq(vcsimp.NewLe(a, b), vcsimp.NewGe(a, b))
		if !ok {
			t.Fatal("expected rewrite")
		}
		if diff := diffExp(vcsimp.NewEq(a, b), out); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("StrictRejected", func(t *testing.T) {
		if _, ok := s.TryAntisymmetryToEq(vcsimp.NewLt(a, b), vcsimp.NewGe(a, b)); ok {
			t.Fatal("expected no rewrite")
		}
	})
	t.Run("ThroughConjunction", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewAnd(vcsimp.NewLe(a, b), vcsimp.NewGe(a, b)))
		if diff := diffExp(vcsimp.NewEq(a, b), got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplifier_TryPinchToEq(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := u64v("x")

	got := s.Simplify(vcsimp.NewAnd(
		vcsimp.NewLt(u64c(5), x),
		vcsimp.NewNot(vcsimp.NewLt(u64c(6), x)),
	))
	if diff := diffExp(vcsimp.NewEq(x, u64c(6)), got); diff != "" {
		t.Fatal(diff)
	}
}

func TestSimplifier_TryEmptyRange(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := u64v("x")

	got := s.Simplify(vcsimp.NewAnd(
		vcsimp.NewLt(u64c(6), x),
		vcsimp.NewLt(x, u64c(5)),
	))
	if diff := diffExp(vcsimp.NewBoolConst(false), got); diff != "" {
		t.Fatal(diff)
	}
}
