package vcsimp_test

import (
	"testing"

	"github.com/movelight/vcsimp"
)

func TestSimplify_TypeBounds(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifier(env)
	x := vcsimp.NewLocalVar("x", vcsimp.U8)

	t.Run("LtAboveMax", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewLt(x, vcsimp.NewIntConst64(vcsimp.Num, 300)))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("GeZero", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewGe(x, vcsimp.NewIntConst64(vcsimp.U8, 0)))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("LtZero", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewLt(x, vcsimp.NewIntConst64(vcsimp.U8, 0)))
		if diff := diffExp(vcsimp.NewBoolConst(false), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("EqOutOfRange", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewEq(x, vcsimp.NewIntConst64(vcsimp.Num, 300)))
		if diff := diffExp(vcsimp.NewBoolConst(false), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NeqOutOfRange", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewNeq(x, vcsimp.NewIntConst64(vcsimp.Num, 300)))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConstantOnLeft", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewGt(vcsimp.NewIntConst64(vcsimp.Num, 300), x))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})

	// The unbounded num domain is the non-negative integers, so only its
	// minimum side ever decides a comparison.
	t.Run("NumGeZero", func(t *testing.T) {
		n := vcsimp.NewLocalVar("n", vcsimp.Num)
		got := s.Simplify(vcsimp.NewGe(n, vcsimp.NewIntConst64(vcsimp.Num, 0)))
		if diff := diffExp(vcsimp.NewBoolConst(true), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NumMaxSideUndecided", func(t *testing.T) {
		n := vcsimp.NewLocalVar("n", vcsimp.Num)
		e := vcsimp.NewLe(n, vcsimp.NewIntConst64(vcsimp.Num, 1000000))
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplify_ArithmeticIdentities(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifierWithMode(env, true)
	x := u64v("x")

	t.Run("AddZero", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewAdd(x, u64c(0)))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SubZero", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSub(x, u64c(0)))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SubSelf", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSub(x, u64v("x")))
		if diff := diffExp(u64c(0), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MulOne", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewCall(vcsimp.MUL, x, u64c(1)))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MulZero", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewCall(vcsimp.MUL, x, u64c(0)))
		if diff := diffExp(u64c(0), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DivOne", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewCall(vcsimp.DIV, x, u64c(1)))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("CheckedModeUntouched", func(t *testing.T) {
		checked := vcsimp.NewSimplifier(env)
		e := vcsimp.NewAdd(x, u64c(0))
		got := checked.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplify_CombineAddends(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifierWithMode(env, true)
	x := u64v("x")

	t.Run("PositiveResidue", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSub(vcsimp.NewAdd(x, u64c(5)), u64c(3)))
		if diff := diffExp(vcsimp.NewAdd(x, u64c(2)), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NegativeResidue", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSub(vcsimp.NewAdd(x, u64c(3)), u64c(5)))
		if diff := diffExp(vcsimp.NewSub(x, u64c(2)), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ZeroResidue", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSub(vcsimp.NewAdd(x, u64c(3)), u64c(3)))
		if diff := diffExp(x, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplify_CombineFactors(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifierWithMode(env, true)
	x := u64v("x")

	got := s.Simplify(vcsimp.NewCall(vcsimp.MUL, vcsimp.NewCall(vcsimp.MUL, x, u64c(2)), u64c(3)))
	if diff := diffExp(vcsimp.NewCall(vcsimp.MUL, x, u64c(6)), got); diff != "" {
		t.Fatal(diff)
	}
}

func TestSimplify_NormalizeAddend(t *testing.T) {
	env := vcsimp.NewEnv()
	s := vcsimp.NewSimplifierWithMode(env, true)
	x := u64v("x")

	t.Run("MoveConstant", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewLt(vcsimp.NewAdd(x, u64c(2)), u64c(10)))
		if diff := diffExp(vcsimp.NewLt(x, u64c(8)), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DecideAgainstBounds", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewLt(vcsimp.NewAdd(x, u64c(2)), u64c(1)))
		if diff := diffExp(vcsimp.NewBoolConst(false), got); diff != "" {
			t.Fatal(diff)
		}
	})
}
