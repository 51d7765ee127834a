package main

import (
	"testing"

	"github.com/movelight/vcsimp"
)

func TestParser_Expression(t *testing.T) {
	env := vcsimp.NewEnv()
	p := newParser(env)
	if err := p.declareVar("n:u64"); err != nil {
		t.Fatal(err)
	}

	exp, err := p.parseString("(=> (< 3 n) (< 2 n))")
	if err != nil {
		t.Fatal(err)
	}
	out := vcsimp.NewSimplifier(env).Simplify(exp)
	if s := out.String(); s != "true" {
		t.Fatalf("unexpected result: %s", s)
	}
}

func TestParser_Declarations(t *testing.T) {
	t.Run("Struct", func(t *testing.T) {
		env := vcsimp.NewEnv()
		p := newParser(env)
		exps, err := p.parseAll("(struct P (a u64) (b u64)) (select P a (pack P 1 2))")
		if err != nil {
			t.Fatal(err)
		} else if len(exps) != 1 {
			t.Fatalf("unexpected expression count: %d", len(exps))
		}
		out := vcsimp.NewSimplifier(env).Simplify(exps[0])
		if s := out.String(); s != "1" {
			t.Fatalf("unexpected result: %s", s)
		}
	})
	t.Run("Defun", func(t *testing.T) {
		env := vcsimp.NewEnv()
		p := newParser(env)
		exps, err := p.parseAll("(defun double ((z u64)) (+ z z)) (call double 5)")
		if err != nil {
			t.Fatal(err)
		} else if len(exps) != 1 {
			t.Fatalf("unexpected expression count: %d", len(exps))
		}
		out := vcsimp.NewSimplifier(env).Simplify(exps[0])
		if s := out.String(); s != "10" {
			t.Fatalf("unexpected result: %s", s)
		}
	})
}

func TestParser_Quantifier(t *testing.T) {
	env := vcsimp.NewEnv()
	p := newParser(env)
	if err := p.declareVar("y:u64"); err != nil {
		t.Fatal(err)
	}

	exp, err := p.parseString("(forall ((x u64)) (=> (== x y) (<= x y)))")
	if err != nil {
		t.Fatal(err)
	}
	out := vcsimp.NewSimplifier(env).Simplify(exp)
	if s := out.String(); s != "true" {
		t.Fatalf("unexpected result: %s", s)
	}
}

func TestParser_Errors(t *testing.T) {
	env := vcsimp.NewEnv()
	p := newParser(env)

	t.Run("Unterminated", func(t *testing.T) {
		if _, err := p.parseString("(and true"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("UnknownForm", func(t *testing.T) {
		if _, err := p.parseString("(frobnicate 1 2)"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("Arity", func(t *testing.T) {
		if _, err := p.parseString("(and true)"); err == nil {
			t.Fatal("expected error")
		}
	})
}
