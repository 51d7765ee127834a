package vcsimp

// Rewriter receives per-node-kind callbacks from Rewrite. Children have
// already been rewritten when a kind callback fires. Returning false keeps
// the original node.
type Rewriter interface {
	// RewriteExp is called before descending into e. Returning a replacement
	// makes it final for that position; the driver does not descend into it.
	RewriteExp(e Exp) (Exp, bool)

	RewriteConst(e *ConstExp) (Exp, bool)
	RewriteLocalVar(e *LocalVarExp) (Exp, bool)
	RewriteTemporary(e *TemporaryExp) (Exp, bool)
	RewriteCall(e *CallExp) (Exp, bool)
	RewriteSelect(e *SelectExp) (Exp, bool)
	RewriteUpdateField(e *UpdateFieldExp) (Exp, bool)
	RewritePack(e *PackExp) (Exp, bool)
	RewriteFunCall(e *FunCallExp) (Exp, bool)
	RewriteIfElse(e *IfElseExp) (Exp, bool)
	RewriteQuant(e *QuantExp) (Exp, bool)

	// Scope notifications, fired when the driver traverses into and out of a
	// binder node, carrying the symbols newly bound in that scope.
	EnterScope(vars []Symbol)
	ExitScope()
}

// Rewrite walks e bottom-up and dispatches per-node-kind callbacks on r.
func Rewrite(e Exp, r Rewriter) Exp {
	if out, ok := r.RewriteExp(e); ok {
		return out
	}

	switch e := e.(type) {
	case *ConstExp:
		if out, ok := r.RewriteConst(e); ok {
			return out
		}
		return e

	case *LocalVarExp:
		if out, ok := r.RewriteLocalVar(e); ok {
			return out
		}
		return e

	case *TemporaryExp:
		if out, ok := r.RewriteTemporary(e); ok {
			return out
		}
		return e

	case *CallExp:
		node := e
		if args, changed := rewriteList(e.Args, r); changed {
			node = &CallExp{Op: e.Op, Args: args}
		}
		if out, ok := r.RewriteCall(node); ok {
			return out
		}
		return node

	case *SelectExp:
		node := e
		if arg := Rewrite(e.Arg, r); arg != e.Arg {
			node = &SelectExp{Struct: e.Struct, Field: e.Field, Arg: arg}
		}
		if out, ok := r.RewriteSelect(node); ok {
			return out
		}
		return node

	case *UpdateFieldExp:
		node := e
		arg, value := Rewrite(e.Arg, r), Rewrite(e.Value, r)
		if arg != e.Arg || value != e.Value {
			node = &UpdateFieldExp{Struct: e.Struct, Field: e.Field, Arg: arg, Value: value}
		}
		if out, ok := r.RewriteUpdateField(node); ok {
			return out
		}
		return node

	case *PackExp:
		node := e
		if args, changed := rewriteList(e.Args, r); changed {
			node = &PackExp{Struct: e.Struct, Args: args}
		}
		if out, ok := r.RewritePack(node); ok {
			return out
		}
		return node

	case *FunCallExp:
		node := e
		if args, changed := rewriteList(e.Args, r); changed {
			node = &FunCallExp{Name: e.Name, Args: args}
		}
		if out, ok := r.RewriteFunCall(node); ok {
			return out
		}
		return node

	case *IfElseExp:
		node := e
		cond, then, els := Rewrite(e.Cond, r), Rewrite(e.Then, r), Rewrite(e.Else, r)
		if cond != e.Cond || then != e.Then || els != e.Else {
			node = &IfElseExp{Cond: cond, Then: then, Else: els}
		}
		if out, ok := r.RewriteIfElse(node); ok {
			return out
		}
		return node

	case *QuantExp:
		vars := make([]Symbol, len(e.Ranges))
		for i, rng := range e.Ranges {
			vars[i] = rng.Var
		}
		r.EnterScope(vars)
		var cond Exp
		if e.Condition != nil {
			cond = Rewrite(e.Condition, r)
		}
		body := Rewrite(e.Body, r)
		r.ExitScope()

		node := e
		if cond != e.Condition || body != e.Body {
			node = &QuantExp{Kind: e.Kind, Ranges: e.Ranges, Triggers: e.Triggers, Condition: cond, Body: body}
		}
		if out, ok := r.RewriteQuant(node); ok {
			return out
		}
		return node

	default:
		panic("unreachable")
	}
}

func rewriteList(args []Exp, r Rewriter) ([]Exp, bool) {
	var out []Exp
	for i, arg := range args {
		if other := Rewrite(arg, r); other != arg {
			if out == nil {
				out = make([]Exp, len(args))
				copy(out, args)
			}
			out[i] = other
		}
	}
	if out == nil {
		return args, false
	}
	return out, true
}
