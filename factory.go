package vcsimp

import "math/big"

// NewBoolConst returns a boolean literal.
func NewBoolConst(value bool) *ConstExp {
	v := big.NewInt(0)
	if value {
		v.SetInt64(1)
	}
	return &ConstExp{Value: v, Type: Bool}
}

// NewIntConst returns an integer literal of the given type. The value must be
// within the bounds of the type.
func NewIntConst(t IntType, value *big.Int) *ConstExp {
	assert(value.Sign() >= 0, "negative literal: %s", value)
	if max := t.MaxValue(); max != nil {
		assert(value.Cmp(max) <= 0, "literal out of range for %s: %s", t, value)
	}
	return &ConstExp{Value: new(big.Int).Set(value), Type: t}
}

// NewIntConst64 returns an integer literal of the given type from an int64.
func NewIntConst64(t IntType, value int64) *ConstExp {
	return NewIntConst(t, big.NewInt(value))
}

// NewCall returns an operator call expression.
func NewCall(op Op, args ...Exp) *CallExp {
	return &CallExp{Op: op, Args: args}
}

// NewNot returns the negation of e.
func NewNot(e Exp) *CallExp { return NewCall(NOT, e) }

// NewAnd returns the conjunction of a and b.
func NewAnd(a, b Exp) *CallExp { return NewCall(AND, a, b) }

// NewOr returns the disjunction of a and b.
func NewOr(a, b Exp) *CallExp { return NewCall(OR, a, b) }

// NewImplies returns the implication of b by a.
func NewImplies(a, b Exp) *CallExp { return NewCall(IMPLIES, a, b) }

// NewIff returns the equivalence of a and b.
func NewIff(a, b Exp) *CallExp { return NewCall(IFF, a, b) }

// NewEq returns the equality of a and b.
func NewEq(a, b Exp) *CallExp { return NewCall(EQ, a, b) }

// NewNeq returns the disequality of a and b.
func NewNeq(a, b Exp) *CallExp { return NewCall(NEQ, a, b) }

// NewLt returns the less-than comparison of a and b.
func NewLt(a, b Exp) *CallExp { return NewCall(LT, a, b) }

// NewLe returns the less-than-or-equal comparison of a and b.
func NewLe(a, b Exp) *CallExp { return NewCall(LE, a, b) }

// NewGt returns the greater-than comparison of a and b.
func NewGt(a, b Exp) *CallExp { return NewCall(GT, a, b) }

// NewGe returns the greater-than-or-equal comparison of a and b.
func NewGe(a, b Exp) *CallExp { return NewCall(GE, a, b) }

// NewAdd returns the sum of a and b.
func NewAdd(a, b Exp) *CallExp { return NewCall(ADD, a, b) }

// NewSub returns the difference of a and b.
func NewSub(a, b Exp) *CallExp { return NewCall(SUB, a, b) }

// NewLocalVar returns a local-variable reference.
func NewLocalVar(name Symbol, t Type) *LocalVarExp {
	return &LocalVarExp{Name: name, Type: t}
}

// NewTemporary returns a temporary-slot reference.
func NewTemporary(index int, t Type) *TemporaryExp {
	return &TemporaryExp{Index: index, Type: t}
}

// NewSelect returns a field read.
func NewSelect(structName string, field int, arg Exp) *SelectExp {
	return &SelectExp{Struct: structName, Field: field, Arg: arg}
}

// NewUpdateField returns a functional field update.
func NewUpdateField(structName string, field int, arg, value Exp) *UpdateFieldExp {
	return &UpdateFieldExp{Struct: structName, Field: field, Arg: arg, Value: value}
}

// NewPack returns a struct construction from field values in offset order.
func NewPack(structName string, args ...Exp) *PackExp {
	return &PackExp{Struct: structName, Args: args}
}

// NewFunCall returns a specification function call.
func NewFunCall(name Symbol, args ...Exp) *FunCallExp {
	return &FunCallExp{Name: name, Args: args}
}

// NewIfElse returns a conditional expression.
func NewIfElse(cond, then, els Exp) *IfElseExp {
	return &IfElseExp{Cond: cond, Then: then, Else: els}
}

// NewQuant returns a quantifier over the given ranges.
func NewQuant(kind QuantKind, ranges []Range, body Exp) *QuantExp {
	return &QuantExp{Kind: kind, Ranges: ranges, Body: body}
}

// AndList returns the conjunction of the given expressions, or the boolean
// true constant for an empty list.
func AndList(exps []Exp) Exp {
	if len(exps) == 0 {
		return NewBoolConst(true)
	}
	out := exps[0]
	for _, e := range exps[1:] {
		out = NewAnd(out, e)
	}
	return out
}
