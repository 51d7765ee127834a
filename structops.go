package vcsimp

import (
	log "github.com/sirupsen/logrus"
)

// RewriteSelect projects through field updates and packed values.
func (s *Simplifier) RewriteSelect(e *SelectExp) (Exp, bool) {
	switch arg := e.Arg.(type) {
	case *UpdateFieldExp:
		if arg.Struct == e.Struct && arg.Field == e.Field {
			return arg.Value, true
		}
	case *PackExp:
		if arg.Struct == e.Struct && e.Field < len(arg.Args) {
			return arg.Args[e.Field], true
		}
	}
	return nil, false
}

// RewriteUpdateField collapses an update over an update of the same field
// and pushes an update into a packed value.
func (s *Simplifier) RewriteUpdateField(e *UpdateFieldExp) (Exp, bool) {
	switch arg := e.Arg.(type) {
	case *UpdateFieldExp:
		if arg.Struct == e.Struct && arg.Field == e.Field {
			return &UpdateFieldExp{Struct: e.Struct, Field: e.Field, Arg: arg.Arg, Value: e.Value}, true
		}
	case *PackExp:
		if arg.Struct == e.Struct && e.Field < len(arg.Args) {
			args := make([]Exp, len(arg.Args))
			copy(args, arg.Args)
			args[e.Field] = e.Value
			return &PackExp{Struct: e.Struct, Args: args}, true
		}
	}
	return nil, false
}

// RewritePack implements Rewriter. Packed values have no rewrites of their
// own beyond their already-rewritten arguments.
func (s *Simplifier) RewritePack(e *PackExp) (Exp, bool) {
	return nil, false
}

// RewriteFunCall unfolds a specification function call whose arguments are
// all literal constants, up to a fixed depth so mutually recursive
// definitions cannot loop the rewriter.
func (s *Simplifier) RewriteFunCall(e *FunCallExp) (Exp, bool) {
	fn := s.env.SpecFun(e.Name)
	if fn == nil || fn.Native || fn.Uninterpreted || fn.Body == nil {
		return nil, false
	}
	if s.unfoldDepth >= maxUnfoldDepth {
		return nil, false
	}
	if len(fn.Params) != len(e.Args) {
		return nil, false
	}
	for _, arg := range e.Args {
		if !IsConst(arg) {
			return nil, false
		}
	}

	m := make(map[Symbol]Exp, len(fn.Params))
	for i, p := range fn.Params {
		m[p] = e.Args[i]
	}
	log.Debugf("unfolding %s at depth %d", e.Name, s.unfoldDepth)
	s.unfoldDepth++
	out := s.Simplify(SubstLocalVars(fn.Body, m))
	s.unfoldDepth--
	return out, true
}
