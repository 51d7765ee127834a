package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/movelight/vcsimp"
)

// sexp is one node of the textual input form: either an atom or a list.
type sexp struct {
	atom string
	list []sexp
	leaf bool
}

func tokenize(src string) []string {
	src = strings.ReplaceAll(src, "(", " ( ")
	src = strings.ReplaceAll(src, ")", " ) ")
	return strings.Fields(src)
}

func readSexp(tokens []string) (sexp, []string, error) {
	if len(tokens) == 0 {
		return sexp{}, nil, fmt.Errorf("unexpected end of input")
	}
	tok, rest := tokens[0], tokens[1:]
	switch tok {
	case "(":
		var list []sexp
		for {
			if len(rest) == 0 {
				return sexp{}, nil, fmt.Errorf("unterminated list")
			}
			if rest[0] == ")" {
				return sexp{list: list}, rest[1:], nil
			}
			node, r, err := readSexp(rest)
			if err != nil {
				return sexp{}, nil, err
			}
			list, rest = append(list, node), r
		}
	case ")":
		return sexp{}, nil, fmt.Errorf("unexpected %q", tok)
	default:
		return sexp{atom: tok, leaf: true}, rest, nil
	}
}

var opNames = map[string]vcsimp.Op{
	"+": vcsimp.ADD, "-": vcsimp.SUB, "*": vcsimp.MUL, "/": vcsimp.DIV, "%": vcsimp.MOD,
	"not": vcsimp.NOT, "and": vcsimp.AND, "or": vcsimp.OR,
	"=>": vcsimp.IMPLIES, "<=>": vcsimp.IFF,
	"==": vcsimp.EQ, "!=": vcsimp.NEQ,
	"<": vcsimp.LT, "<=": vcsimp.LE, ">": vcsimp.GT, ">=": vcsimp.GE,
	"old": vcsimp.OLD, "freeze": vcsimp.FREEZE,
	"well-formed": vcsimp.WELLFORMED, "abort-flag": vcsimp.ABORTFLAG,
	"max-u8": vcsimp.MAXU8, "max-u16": vcsimp.MAXU16, "max-u32": vcsimp.MAXU32,
	"max-u64": vcsimp.MAXU64, "max-u128": vcsimp.MAXU128, "max-u256": vcsimp.MAXU256,
}

var typeNames = map[string]vcsimp.Type{
	"bool": vcsimp.Bool,
	"u8":   vcsimp.U8, "u16": vcsimp.U16, "u32": vcsimp.U32,
	"u64": vcsimp.U64, "u128": vcsimp.U128, "u256": vcsimp.U256,
	"num": vcsimp.Num,
}

// parser turns textual forms into expressions against a shared environment.
// Struct and spec-function forms mutate the environment and yield no
// expression.
type parser struct {
	env  *vcsimp.Env
	vars map[vcsimp.Symbol]vcsimp.Type
}

func newParser(env *vcsimp.Env) *parser {
	return &parser{env: env, vars: make(map[vcsimp.Symbol]vcsimp.Type)}
}

// declareVar registers a free variable from a name:type command-line spec.
func (p *parser) declareVar(spec string) error {
	name, typ, ok := strings.Cut(spec, ":")
	if !ok {
		return fmt.Errorf("malformed variable %q, want name:type", spec)
	}
	t, ok := typeNames[typ]
	if !ok {
		return fmt.Errorf("unknown type %q", typ)
	}
	p.vars[vcsimp.Symbol(name)] = t
	return nil
}

// parseAll reads every top-level form from src. Declaration forms are applied
// to the environment; the remaining expressions are returned in order.
func (p *parser) parseAll(src string) ([]vcsimp.Exp, error) {
	tokens := tokenize(src)
	var out []vcsimp.Exp
	for len(tokens) > 0 {
		node, rest, err := readSexp(tokens)
		if err != nil {
			return nil, err
		}
		tokens = rest

		if !node.leaf && len(node.list) > 0 && node.list[0].leaf {
			switch node.list[0].atom {
			case "struct":
				if err := p.declareStruct(node); err != nil {
					return nil, err
				}
				continue
			case "defun":
				if err := p.declareFun(node); err != nil {
					return nil, err
				}
				continue
			}
		}

		exp, err := p.parse(node)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}

// parseString reads exactly one expression.
func (p *parser) parseString(src string) (vcsimp.Exp, error) {
	node, rest, err := readSexp(tokenize(src))
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("trailing input after expression")
	}
	return p.parse(node)
}

// declareStruct handles (struct Name (field type)...).
func (p *parser) declareStruct(node sexp) error {
	if len(node.list) < 2 || !node.list[1].leaf {
		return fmt.Errorf("malformed struct declaration")
	}
	def := &vcsimp.StructDef{Name: node.list[1].atom}
	for i, f := range node.list[2:] {
		if f.leaf || len(f.list) != 2 || !f.list[0].leaf || !f.list[1].leaf {
			return fmt.Errorf("malformed field in struct %s", def.Name)
		}
		t, ok := typeNames[f.list[1].atom]
		if !ok {
			return fmt.Errorf("unknown type %q in struct %s", f.list[1].atom, def.Name)
		}
		def.Fields = append(def.Fields, vcsimp.Field{Name: f.list[0].atom, Offset: i, Type: t})
	}
	p.env.DeclareStruct(def)
	return nil
}

// declareFun handles (defun name ((param type)...) body).
func (p *parser) declareFun(node sexp) error {
	if len(node.list) != 4 || !node.list[1].leaf || node.list[2].leaf {
		return fmt.Errorf("malformed defun")
	}
	fn := &vcsimp.SpecFun{Name: vcsimp.Symbol(node.list[1].atom)}
	saved := make(map[vcsimp.Symbol]vcsimp.Type)
	for _, param := range node.list[2].list {
		if param.leaf || len(param.list) != 2 || !param.list[0].leaf || !param.list[1].leaf {
			return fmt.Errorf("malformed parameter in defun %s", fn.Name)
		}
		t, ok := typeNames[param.list[1].atom]
		if !ok {
			return fmt.Errorf("unknown type %q in defun %s", param.list[1].atom, fn.Name)
		}
		name := vcsimp.Symbol(param.list[0].atom)
		fn.Params = append(fn.Params, name)
		fn.ParamTypes = append(fn.ParamTypes, t)
		if old, ok := p.vars[name]; ok {
			saved[name] = old
		}
		p.vars[name] = t
	}
	body, err := p.parse(node.list[3])
	for _, param := range fn.Params {
		if old, ok := saved[param]; ok {
			p.vars[param] = old
		} else {
			delete(p.vars, param)
		}
	}
	if err != nil {
		return err
	}
	fn.Body = body
	fn.Result = p.env.TypeOf(body)
	p.env.DeclareSpecFun(fn)
	return nil
}

func (p *parser) parse(node sexp) (vcsimp.Exp, error) {
	if node.leaf {
		return p.parseAtom(node.atom)
	}
	if len(node.list) == 0 || !node.list[0].leaf {
		return nil, fmt.Errorf("malformed form")
	}
	head, args := node.list[0].atom, node.list[1:]

	if op, ok := opNames[head]; ok {
		return p.parseCall(op, args)
	}
	if t, ok := typeNames[head]; ok {
		return p.parseTypedConst(t, args)
	}

	switch head {
	case "forall":
		return p.parseQuant(vcsimp.Forall, args)
	case "exists":
		return p.parseQuant(vcsimp.Exists, args)
	case "select":
		return p.parseSelect(args)
	case "update":
		return p.parseUpdate(args)
	case "pack":
		return p.parsePack(args)
	case "call":
		return p.parseFunCall(args)
	case "if":
		return p.parseIf(args)
	}
	return nil, fmt.Errorf("unknown form %q", head)
}

func (p *parser) parseAtom(atom string) (vcsimp.Exp, error) {
	switch atom {
	case "true":
		return vcsimp.NewBoolConst(true), nil
	case "false":
		return vcsimp.NewBoolConst(false), nil
	}
	if strings.HasPrefix(atom, "$") {
		index, err := strconv.Atoi(atom[1:])
		if err != nil {
			return nil, fmt.Errorf("malformed temporary %q", atom)
		}
		return vcsimp.NewTemporary(index, vcsimp.Num), nil
	}
	if v, ok := new(big.Int).SetString(atom, 10); ok {
		return vcsimp.NewIntConst(vcsimp.Num, v), nil
	}
	name := vcsimp.Symbol(atom)
	t, ok := p.vars[name]
	if !ok {
		t = vcsimp.Num
	}
	return vcsimp.NewLocalVar(name, t), nil
}

var opArity = map[vcsimp.Op]int{
	vcsimp.NOT: 1, vcsimp.OLD: 1, vcsimp.FREEZE: 1, vcsimp.WELLFORMED: 1,
	vcsimp.ABORTFLAG: 0,
	vcsimp.MAXU8:     0, vcsimp.MAXU16: 0, vcsimp.MAXU32: 0,
	vcsimp.MAXU64: 0, vcsimp.MAXU128: 0, vcsimp.MAXU256: 0,
}

func (p *parser) parseCall(op vcsimp.Op, args []sexp) (vcsimp.Exp, error) {
	want, ok := opArity[op]
	if !ok {
		want = 2
	}
	if len(args) != want {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", op, want, len(args))
	}
	exps, err := p.parseList(args)
	if err != nil {
		return nil, err
	}
	return vcsimp.NewCall(op, exps...), nil
}

// parseTypedConst handles (u8 5) and friends.
func (p *parser) parseTypedConst(t vcsimp.Type, args []sexp) (vcsimp.Exp, error) {
	it, ok := t.(vcsimp.IntType)
	if !ok || len(args) != 1 || !args[0].leaf {
		return nil, fmt.Errorf("malformed typed literal")
	}
	v, ok := new(big.Int).SetString(args[0].atom, 10)
	if !ok {
		return nil, fmt.Errorf("malformed integer %q", args[0].atom)
	}
	if v.Sign() < 0 || (it.MaxValue() != nil && v.Cmp(it.MaxValue()) > 0) {
		return nil, fmt.Errorf("literal %s out of range for %s", v, it)
	}
	return vcsimp.NewIntConst(it, v), nil
}

// parseQuant handles (forall ((x u64)...) body).
func (p *parser) parseQuant(kind vcsimp.QuantKind, args []sexp) (vcsimp.Exp, error) {
	if len(args) != 2 || args[0].leaf {
		return nil, fmt.Errorf("malformed %s", kind)
	}
	var ranges []vcsimp.Range
	saved := make(map[vcsimp.Symbol]vcsimp.Type)
	for _, r := range args[0].list {
		if r.leaf || len(r.list) != 2 || !r.list[0].leaf || !r.list[1].leaf {
			return nil, fmt.Errorf("malformed range in %s", kind)
		}
		t, ok := typeNames[r.list[1].atom]
		if !ok {
			if def := p.env.Struct(r.list[1].atom); def != nil {
				t = vcsimp.StructType{Name: def.Name}
			} else {
				return nil, fmt.Errorf("unknown type %q", r.list[1].atom)
			}
		}
		name := vcsimp.Symbol(r.list[0].atom)
		ranges = append(ranges, vcsimp.Range{Var: name, Type: t})
		if old, ok := p.vars[name]; ok {
			saved[name] = old
		}
		p.vars[name] = t
	}
	body, err := p.parse(args[1])
	for _, r := range ranges {
		if old, ok := saved[r.Var]; ok {
			p.vars[r.Var] = old
		} else {
			delete(p.vars, r.Var)
		}
	}
	if err != nil {
		return nil, err
	}
	return vcsimp.NewQuant(kind, ranges, body), nil
}

func (p *parser) parseSelect(args []sexp) (vcsimp.Exp, error) {
	structName, field, err := p.fieldRef(args, 3)
	if err != nil {
		return nil, err
	}
	arg, err := p.parse(args[2])
	if err != nil {
		return nil, err
	}
	return vcsimp.NewSelect(structName, field, arg), nil
}

func (p *parser) parseUpdate(args []sexp) (vcsimp.Exp, error) {
	structName, field, err := p.fieldRef(args, 4)
	if err != nil {
		return nil, err
	}
	arg, err := p.parse(args[2])
	if err != nil {
		return nil, err
	}
	value, err := p.parse(args[3])
	if err != nil {
		return nil, err
	}
	return vcsimp.NewUpdateField(structName, field, arg, value), nil
}

// fieldRef resolves the Struct field-name prefix shared by select and update.
func (p *parser) fieldRef(args []sexp, want int) (string, int, error) {
	if len(args) != want || !args[0].leaf || !args[1].leaf {
		return "", 0, fmt.Errorf("malformed field access")
	}
	def := p.env.Struct(args[0].atom)
	if def == nil {
		return "", 0, fmt.Errorf("unknown struct %q", args[0].atom)
	}
	for _, f := range def.Fields {
		if f.Name == args[1].atom {
			return def.Name, f.Offset, nil
		}
	}
	return "", 0, fmt.Errorf("unknown field %s.%s", def.Name, args[1].atom)
}

func (p *parser) parsePack(args []sexp) (vcsimp.Exp, error) {
	if len(args) < 1 || !args[0].leaf {
		return nil, fmt.Errorf("malformed pack")
	}
	def := p.env.Struct(args[0].atom)
	if def == nil {
		return nil, fmt.Errorf("unknown struct %q", args[0].atom)
	}
	if len(args)-1 != len(def.Fields) {
		return nil, fmt.Errorf("pack of %s takes %d values, got %d", def.Name, len(def.Fields), len(args)-1)
	}
	exps, err := p.parseList(args[1:])
	if err != nil {
		return nil, err
	}
	return vcsimp.NewPack(def.Name, exps...), nil
}

func (p *parser) parseFunCall(args []sexp) (vcsimp.Exp, error) {
	if len(args) < 1 || !args[0].leaf {
		return nil, fmt.Errorf("malformed call")
	}
	exps, err := p.parseList(args[1:])
	if err != nil {
		return nil, err
	}
	return vcsimp.NewFunCall(vcsimp.Symbol(args[0].atom), exps...), nil
}

func (p *parser) parseIf(args []sexp) (vcsimp.Exp, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("if takes 3 arguments, got %d", len(args))
	}
	exps, err := p.parseList(args)
	if err != nil {
		return nil, err
	}
	return vcsimp.NewIfElse(exps[0], exps[1], exps[2]), nil
}

func (p *parser) parseList(args []sexp) ([]vcsimp.Exp, error) {
	out := make([]vcsimp.Exp, len(args))
	for i, a := range args {
		exp, err := p.parse(a)
		if err != nil {
			return nil, err
		}
		out[i] = exp
	}
	return out, nil
}
