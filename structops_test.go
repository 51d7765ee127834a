package vcsimp_test

import (
	"testing"

	"github.com/movelight/vcsimp"
)

func pointEnv() *vcsimp.Env {
	env := vcsimp.NewEnv()
	env.DeclareStruct(&vcsimp.StructDef{
		Name: "Point",
		Fields: []vcsimp.Field{
			{Name: "a", Offset: 0, Type: vcsimp.U64},
			{Name: "b", Offset: 1, Type: vcsimp.U64},
		},
	})
	return env
}

func TestSimplify_Select(t *testing.T) {
	env := pointEnv()
	s := vcsimp.NewSimplifier(env)
	u, v, w := u64v("u"), u64v("v"), u64v("w")
	sv := vcsimp.NewLocalVar("s", vcsimp.StructType{Name: "Point"})

	t.Run("OfPack", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSelect("Point", 1, vcsimp.NewPack("Point", u, v)))
		if diff := diffExp(v, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OfUpdateSameField", func(t *testing.T) {
		got := s.Simplify(vcsimp.NewSelect("Point", 0, vcsimp.NewUpdateField("Point", 0, sv, w)))
		if diff := diffExp(w, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OfUpdateOtherField", func(t *testing.T) {
		e := vcsimp.NewSelect("Point", 0, vcsimp.NewUpdateField("Point", 1, sv, w))
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplify_UpdateField(t *testing.T) {
	env := pointEnv()
	s := vcsimp.NewSimplifier(env)
	u, v := u64v("u"), u64v("v")
	w1, w2 := u64v("w1"), u64v("w2")
	sv := vcsimp.NewLocalVar("s", vcsimp.StructType{Name: "Point"})

	t.Run("OfUpdateSameField", func(t *testing.T) {
		e := vcsimp.NewUpdateField("Point", 0, vcsimp.NewUpdateField("Point", 0, sv, w1), w2)
		got := s.Simplify(e)
		if diff := diffExp(vcsimp.NewUpdateField("Point", 0, sv, w2), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OfPack", func(t *testing.T) {
		e := vcsimp.NewUpdateField("Point", 1, vcsimp.NewPack("Point", u, v), w1)
		got := s.Simplify(e)
		if diff := diffExp(vcsimp.NewPack("Point", u, w1), got); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSimplify_FunCall(t *testing.T) {
	t.Run("UnfoldConstantArgs", func(t *testing.T) {
		env := vcsimp.NewEnv()
		env.DeclareSpecFun(&vcsimp.SpecFun{
			Name:       "double",
			Params:     []vcsimp.Symbol{"z"},
			ParamTypes: []vcsimp.Type{vcsimp.U64},
			Result:     vcsimp.U64,
			Body:       vcsimp.NewAdd(u64v("z"), u64v("z")),
		})
		s := vcsimp.NewSimplifier(env)

		got := s.Simplify(vcsimp.NewFunCall("double", u64c(5)))
		if diff := diffExp(u64c(10), got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NonConstantArgsKept", func(t *testing.T) {
		env := vcsimp.NewEnv()
		env.DeclareSpecFun(&vcsimp.SpecFun{
			Name:       "double",
			Params:     []vcsimp.Symbol{"z"},
			ParamTypes: []vcsimp.Type{vcsimp.U64},
			Result:     vcsimp.U64,
			Body:       vcsimp.NewAdd(u64v("z"), u64v("z")),
		})
		s := vcsimp.NewSimplifier(env)

		e := vcsimp.NewFunCall("double", u64v("x"))
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("UninterpretedKept", func(t *testing.T) {
		env := vcsimp.NewEnv()
		env.DeclareSpecFun(&vcsimp.SpecFun{
			Name:          "oracle",
			Params:        []vcsimp.Symbol{"z"},
			ParamTypes:    []vcsimp.Type{vcsimp.U64},
			Result:        vcsimp.U64,
			Body:          vcsimp.NewAdd(u64v("z"), u64v("z")),
			Uninterpreted: true,
		})
		s := vcsimp.NewSimplifier(env)

		e := vcsimp.NewFunCall("oracle", u64c(5))
		got := s.Simplify(e)
		if diff := diffExp(e, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("RecursionBounded", func(t *testing.T) {
		env := vcsimp.NewEnv()
		env.DeclareSpecFun(&vcsimp.SpecFun{
			Name:       "spin",
			Params:     []vcsimp.Symbol{"z"},
			ParamTypes: []vcsimp.Type{vcsimp.U64},
			Result:     vcsimp.U64,
			Body:       vcsimp.NewFunCall("spin", u64v("z")),
		})
		s := vcsimp.NewSimplifier(env)

		got := s.Simplify(vcsimp.NewFunCall("spin", u64c(5)))
		if diff := diffExp(vcsimp.NewFunCall("spin", u64c(5)), got); diff != "" {
			t.Fatal(diff)
		}
	})
}
