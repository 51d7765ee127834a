package vcsimp

import (
	"bytes"
	"fmt"
	"math/big"
)

// Exp represents an immutable verification-condition expression node. Nodes
// are shared freely between trees; rewrites build new nodes and never mutate
// existing ones, so a subexpression may safely appear in several owners.
type Exp interface {
	exp()
	String() string
}

func (*ConstExp) exp()       {}
func (*LocalVarExp) exp()    {}
func (*TemporaryExp) exp()   {}
func (*CallExp) exp()        {}
func (*SelectExp) exp()      {}
func (*UpdateFieldExp) exp() {}
func (*PackExp) exp()        {}
func (*FunCallExp) exp()     {}
func (*IfElseExp) exp()      {}
func (*QuantExp) exp()       {}

// Op represents an expression operator.
type Op int

// CallExp operators.
const (
	arithmetic_op_begin = Op(iota)
	ADD
	SUB
	MUL
	DIV
	MOD
	arithmetic_op_end

	bool_op_begin
	NOT
	AND
	OR
	IMPLIES
	IFF
	bool_op_end

	compare_op_begin
	EQ
	NEQ
	LT
	LE
	GT
	GE
	compare_op_end

	special_op_begin
	OLD
	FREEZE
	WELLFORMED
	ABORTFLAG
	MAXU8
	MAXU16
	MAXU32
	MAXU64
	MAXU128
	MAXU256
	special_op_end
)

var ops = [...]string{
	ADD:        "+",
	SUB:        "-",
	MUL:        "*",
	DIV:        "/",
	MOD:        "%",
	NOT:        "not",
	AND:        "and",
	OR:         "or",
	IMPLIES:    "=>",
	IFF:        "<=>",
	EQ:         "==",
	NEQ:        "!=",
	LT:         "<",
	LE:         "<=",
	GT:         ">",
	GE:         ">=",
	OLD:        "old",
	FREEZE:     "freeze",
	WELLFORMED: "well-formed",
	ABORTFLAG:  "abort-flag",
	MAXU8:      "max-u8",
	MAXU16:     "max-u16",
	MAXU32:     "max-u32",
	MAXU64:     "max-u64",
	MAXU128:    "max-u128",
	MAXU256:    "max-u256",
}

// String returns the string representation of the operator.
func (op Op) String() string {
	if op >= 0 && op < Op(len(ops)) && ops[op] != "" {
		return ops[op]
	}
	return fmt.Sprintf("Op<%d>", op)
}

// IsArithmetic returns true if op is an arithmetic operator.
func (op Op) IsArithmetic() bool {
	return op > arithmetic_op_begin && op < arithmetic_op_end
}

// IsBool returns true if op is a boolean connective.
func (op Op) IsBool() bool {
	return op > bool_op_begin && op < bool_op_end
}

// IsCompare returns true if op is a comparison operator.
func (op Op) IsCompare() bool {
	return op > compare_op_begin && op < compare_op_end
}

// ConstExp represents a literal value. Boolean constants carry BoolType and
// the values zero and one.
type ConstExp struct {
	Value *big.Int
	Type  Type
}

// String returns the string representation of the expression.
func (e *ConstExp) String() string {
	if _, ok := e.Type.(BoolType); ok {
		if e.Value.Sign() != 0 {
			return "true"
		}
		return "false"
	}
	return e.Value.String()
}

// IsTrue returns true if this is the boolean true constant.
func (e *ConstExp) IsTrue() bool {
	_, ok := e.Type.(BoolType)
	return ok && e.Value.Sign() != 0
}

// IsFalse returns true if this is the boolean false constant.
func (e *ConstExp) IsFalse() bool {
	_, ok := e.Type.(BoolType)
	return ok && e.Value.Sign() == 0
}

// LocalVarExp references a local variable by symbol.
type LocalVarExp struct {
	Name Symbol
	Type Type
}

// String returns the string representation of the expression.
func (e *LocalVarExp) String() string { return string(e.Name) }

// TemporaryExp references a temporary slot by index.
type TemporaryExp struct {
	Index int
	Type  Type
}

// String returns the string representation of the expression.
func (e *TemporaryExp) String() string { return fmt.Sprintf("$%d", e.Index) }

// CallExp represents an n-ary operator call.
type CallExp struct {
	Op   Op
	Args []Exp
}

// String returns the string representation of the expression.
func (e *CallExp) String() string {
	var buf bytes.Buffer
	buf.WriteRune('(')
	buf.WriteString(e.Op.String())
	for _, arg := range e.Args {
		buf.WriteRune(' ')
		buf.WriteString(arg.String())
	}
	buf.WriteRune(')')
	return buf.String()
}

// SelectExp reads a field of a struct value.
type SelectExp struct {
	Struct string
	Field  int
	Arg    Exp
}

// String returns the string representation of the expression.
func (e *SelectExp) String() string {
	return fmt.Sprintf("(select %s.%d %s)", e.Struct, e.Field, e.Arg)
}

// UpdateFieldExp produces a struct value with one field replaced.
type UpdateFieldExp struct {
	Struct string
	Field  int
	Arg    Exp
	Value  Exp
}

// String returns the string representation of the expression.
func (e *UpdateFieldExp) String() string {
	return fmt.Sprintf("(update %s.%d %s %s)", e.Struct, e.Field, e.Arg, e.Value)
}

// PackExp builds a struct value from field values in offset order.
type PackExp struct {
	Struct string
	Args   []Exp
}

// String returns the string representation of the expression.
func (e *PackExp) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "(pack %s", e.Struct)
	for _, arg := range e.Args {
		buf.WriteRune(' ')
		buf.WriteString(arg.String())
	}
	buf.WriteRune(')')
	return buf.String()
}

// FunCallExp calls a specification function.
type FunCallExp struct {
	Name Symbol
	Args []Exp
}

// String returns the string representation of the expression.
func (e *FunCallExp) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "(call %s", e.Name)
	for _, arg := range e.Args {
		buf.WriteRune(' ')
		buf.WriteString(arg.String())
	}
	buf.WriteRune(')')
	return buf.String()
}

// IfElseExp represents a conditional expression.
type IfElseExp struct {
	Cond Exp
	Then Exp
	Else Exp
}

// String returns the string representation of the expression.
func (e *IfElseExp) String() string {
	return fmt.Sprintf("(if %s %s %s)", e.Cond, e.Then, e.Else)
}

// QuantKind distinguishes universal from existential quantifiers.
type QuantKind int

// Quantifier kinds.
const (
	Forall = QuantKind(iota)
	Exists
)

// String returns the string representation of the kind.
func (k QuantKind) String() string {
	if k == Forall {
		return "forall"
	}
	return "exists"
}

// Range binds one quantified variable to the domain of its type.
type Range struct {
	Var  Symbol
	Type Type
}

// QuantExp represents a quantified boolean expression. Triggers are opaque
// instantiation hints; Condition is an optional filter over the ranges.
type QuantExp struct {
	Kind      QuantKind
	Ranges    []Range
	Triggers  [][]Exp
	Condition Exp
	Body      Exp
}

// String returns the string representation of the expression.
func (e *QuantExp) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "(%s (", e.Kind)
	for i, r := range e.Ranges {
		if i > 0 {
			buf.WriteRune(' ')
		}
		fmt.Fprintf(&buf, "(%s %s)", r.Var, r.Type)
	}
	buf.WriteString(")")
	if e.Condition != nil {
		fmt.Fprintf(&buf, " :where %s", e.Condition)
	}
	fmt.Fprintf(&buf, " %s)", e.Body)
	return buf.String()
}

// CompareExp returns an integer comparing two expressions structurally.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareExp(a, b Exp) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := expKind(a), expKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ConstExp:
		return compareConstExp(a, b.(*ConstExp))
	case *LocalVarExp:
		return compareStrings(string(a.Name), string(b.(*LocalVarExp).Name))
	case *TemporaryExp:
		return compareInts(a.Index, b.(*TemporaryExp).Index)
	case *CallExp:
		return compareCallExp(a, b.(*CallExp))
	case *SelectExp:
		return compareSelectExp(a, b.(*SelectExp))
	case *UpdateFieldExp:
		return compareUpdateFieldExp(a, b.(*UpdateFieldExp))
	case *PackExp:
		return comparePackExp(a, b.(*PackExp))
	case *FunCallExp:
		return compareFunCallExp(a, b.(*FunCallExp))
	case *IfElseExp:
		return compareIfElseExp(a, b.(*IfElseExp))
	case *QuantExp:
		return compareQuantExp(a, b.(*QuantExp))
	default:
		panic("unreachable")
	}
}

func compareConstExp(a, b *ConstExp) int {
	if cmp := compareStrings(a.Type.String(), b.Type.String()); cmp != 0 {
		return cmp
	}
	return a.Value.Cmp(b.Value)
}

func compareCallExp(a, b *CallExp) int {
	if a.Op < b.Op {
		return -1
	} else if a.Op > b.Op {
		return 1
	}
	return compareExpList(a.Args, b.Args)
}

func compareSelectExp(a, b *SelectExp) int {
	if cmp := compareStrings(a.Struct, b.Struct); cmp != 0 {
		return cmp
	}
	if cmp := compareInts(a.Field, b.Field); cmp != 0 {
		return cmp
	}
	return CompareExp(a.Arg, b.Arg)
}

func compareUpdateFieldExp(a, b *UpdateFieldExp) int {
	if cmp := compareStrings(a.Struct, b.Struct); cmp != 0 {
		return cmp
	}
	if cmp := compareInts(a.Field, b.Field); cmp != 0 {
		return cmp
	}
	if cmp := CompareExp(a.Arg, b.Arg); cmp != 0 {
		return cmp
	}
	return CompareExp(a.Value, b.Value)
}

func comparePackExp(a, b *PackExp) int {
	if cmp := compareStrings(a.Struct, b.Struct); cmp != 0 {
		return cmp
	}
	return compareExpList(a.Args, b.Args)
}

func compareFunCallExp(a, b *FunCallExp) int {
	if cmp := compareStrings(string(a.Name), string(b.Name)); cmp != 0 {
		return cmp
	}
	return compareExpList(a.Args, b.Args)
}

func compareIfElseExp(a, b *IfElseExp) int {
	if cmp := CompareExp(a.Cond, b.Cond); cmp != 0 {
		return cmp
	}
	if cmp := CompareExp(a.Then, b.Then); cmp != 0 {
		return cmp
	}
	return CompareExp(a.Else, b.Else)
}

func compareQuantExp(a, b *QuantExp) int {
	if a.Kind < b.Kind {
		return -1
	} else if a.Kind > b.Kind {
		return 1
	}
	if cmp := compareInts(len(a.Ranges), len(b.Ranges)); cmp != 0 {
		return cmp
	}
	for i := range a.Ranges {
		if cmp := compareStrings(string(a.Ranges[i].Var), string(b.Ranges[i].Var)); cmp != 0 {
			return cmp
		}
		if cmp := compareStrings(a.Ranges[i].Type.String(), b.Ranges[i].Type.String()); cmp != 0 {
			return cmp
		}
	}
	if cmp := CompareExp(a.Condition, b.Condition); cmp != 0 {
		return cmp
	}
	return CompareExp(a.Body, b.Body)
}

func compareExpList(a, b []Exp) int {
	if cmp := compareInts(len(a), len(b)); cmp != 0 {
		return cmp
	}
	for i := range a {
		if cmp := CompareExp(a[i], b[i]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareStrings(a, b string) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// expKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func expKind(e Exp) int {
	switch e.(type) {
	case *ConstExp:
		return 1
	case *LocalVarExp:
		return 2
	case *TemporaryExp:
		return 3
	case *CallExp:
		return 4
	case *SelectExp:
		return 5
	case *UpdateFieldExp:
		return 6
	case *PackExp:
		return 7
	case *FunCallExp:
		return 8
	case *IfElseExp:
		return 9
	case *QuantExp:
		return 10
	default:
		panic("unreachable")
	}
}

// IsConst returns true if e is a literal value.
func IsConst(e Exp) bool {
	_, ok := e.(*ConstExp)
	return ok
}

// IsConstTrue returns true if e is the boolean true constant.
func IsConstTrue(e Exp) bool {
	c, ok := e.(*ConstExp)
	return ok && c.IsTrue()
}

// IsConstFalse returns true if e is the boolean false constant.
func IsConstFalse(e Exp) bool {
	c, ok := e.(*ConstExp)
	return ok && c.IsFalse()
}

// FreeLocalVars returns the set of local-variable symbols free in e.
func FreeLocalVars(e Exp) map[Symbol]struct{} {
	out := make(map[Symbol]struct{})
	freeLocalVars(e, make(map[Symbol]int), out)
	return out
}

// IsFreeIn returns true if the local variable v occurs free in e.
func IsFreeIn(e Exp, v Symbol) bool {
	_, ok := FreeLocalVars(e)[v]
	return ok
}

func freeLocalVars(e Exp, bound map[Symbol]int, out map[Symbol]struct{}) {
	switch e := e.(type) {
	case *ConstExp, *TemporaryExp:
		// nop
	case *LocalVarExp:
		if bound[e.Name] == 0 {
			out[e.Name] = struct{}{}
		}
	case *CallExp:
		for _, arg := range e.Args {
			freeLocalVars(arg, bound, out)
		}
	case *SelectExp:
		freeLocalVars(e.Arg, bound, out)
	case *UpdateFieldExp:
		freeLocalVars(e.Arg, bound, out)
		freeLocalVars(e.Value, bound, out)
	case *PackExp:
		for _, arg := range e.Args {
			freeLocalVars(arg, bound, out)
		}
	case *FunCallExp:
		for _, arg := range e.Args {
			freeLocalVars(arg, bound, out)
		}
	case *IfElseExp:
		freeLocalVars(e.Cond, bound, out)
		freeLocalVars(e.Then, bound, out)
		freeLocalVars(e.Else, bound, out)
	case *QuantExp:
		for _, r := range e.Ranges {
			bound[r.Var]++
		}
		for _, trig := range e.Triggers {
			for _, t := range trig {
				freeLocalVars(t, bound, out)
			}
		}
		if e.Condition != nil {
			freeLocalVars(e.Condition, bound, out)
		}
		freeLocalVars(e.Body, bound, out)
		for _, r := range e.Ranges {
			bound[r.Var]--
		}
	default:
		panic("unreachable")
	}
}

// SubstLocalVar returns e with every free occurrence of v replaced by repl.
// Occurrences under a binder that rebinds v are left alone; a binder that
// would capture a free variable of repl is renamed before descending.
func SubstLocalVar(e Exp, v Symbol, repl Exp) Exp {
	return SubstLocalVars(e, map[Symbol]Exp{v: repl})
}

// SubstLocalVars returns e with every free occurrence of a mapped variable
// replaced by its image.
func SubstLocalVars(e Exp, m map[Symbol]Exp) Exp {
	return substVars(e, m, nil)
}

func substVars(e Exp, m map[Symbol]Exp, temps map[int]Exp) Exp {
	if len(m) == 0 && len(temps) == 0 {
		return e
	}
	switch e := e.(type) {
	case *ConstExp:
		return e
	case *TemporaryExp:
		if repl, ok := temps[e.Index]; ok {
			return repl
		}
		return e
	case *LocalVarExp:
		if repl, ok := m[e.Name]; ok {
			return repl
		}
		return e
	case *CallExp:
		if args, changed := substExpList(e.Args, m, temps); changed {
			return &CallExp{Op: e.Op, Args: args}
		}
		return e
	case *SelectExp:
		if arg := substVars(e.Arg, m, temps); arg != e.Arg {
			return &SelectExp{Struct: e.Struct, Field: e.Field, Arg: arg}
		}
		return e
	case *UpdateFieldExp:
		arg, value := substVars(e.Arg, m, temps), substVars(e.Value, m, temps)
		if arg != e.Arg || value != e.Value {
			return &UpdateFieldExp{Struct: e.Struct, Field: e.Field, Arg: arg, Value: value}
		}
		return e
	case *PackExp:
		if args, changed := substExpList(e.Args, m, temps); changed {
			return &PackExp{Struct: e.Struct, Args: args}
		}
		return e
	case *FunCallExp:
		if args, changed := substExpList(e.Args, m, temps); changed {
			return &FunCallExp{Name: e.Name, Args: args}
		}
		return e
	case *IfElseExp:
		cond, then, els := substVars(e.Cond, m, temps), substVars(e.Then, m, temps), substVars(e.Else, m, temps)
		if cond != e.Cond || then != e.Then || els != e.Else {
			return &IfElseExp{Cond: cond, Then: then, Else: els}
		}
		return e
	case *QuantExp:
		return substQuant(e, m, temps)
	default:
		panic("unreachable")
	}
}

// substQuant substitutes under a binder. Mappings for symbols the binder
// rebinds are stripped, and a range variable occurring free in a surviving
// replacement image is renamed to a fresh symbol before descending so the
// image cannot be captured.
func substQuant(e *QuantExp, m map[Symbol]Exp, temps map[int]Exp) Exp {
	inner := make(map[Symbol]Exp, len(m))
	for k, v := range m {
		inner[k] = v
	}
	for _, r := range e.Ranges {
		delete(inner, r.Var)
	}
	if len(inner) == 0 && len(temps) == 0 {
		return e
	}

	replFree := make(map[Symbol]struct{})
	for _, repl := range inner {
		for v := range FreeLocalVars(repl) {
			replFree[v] = struct{}{}
		}
	}
	for _, repl := range temps {
		for v := range FreeLocalVars(repl) {
			replFree[v] = struct{}{}
		}
	}

	ranges := e.Ranges
	renamed := false
	var avoid map[Symbol]struct{}
	for i, r := range e.Ranges {
		if _, clash := replFree[r.Var]; !clash {
			continue
		}
		if avoid == nil {
			avoid = make(map[Symbol]struct{}, len(replFree))
			for v := range replFree {
				avoid[v] = struct{}{}
			}
			for v := range FreeLocalVars(e.Body) {
				avoid[v] = struct{}{}
			}
			if e.Condition != nil {
				for v := range FreeLocalVars(e.Condition) {
					avoid[v] = struct{}{}
				}
			}
			for _, group := range e.Triggers {
				for _, trig := range group {
					for v := range FreeLocalVars(trig) {
						avoid[v] = struct{}{}
					}
				}
			}
			for _, r2 := range e.Ranges {
				avoid[r2.Var] = struct{}{}
			}
			for k := range m {
				avoid[k] = struct{}{}
			}
		}
		fresh := freshSymbol(r.Var, avoid)
		avoid[fresh] = struct{}{}
		if !renamed {
			ranges = make([]Range, len(e.Ranges))
			copy(ranges, e.Ranges)
			renamed = true
		}
		ranges[i] = Range{Var: fresh, Type: r.Type}
		inner[r.Var] = &LocalVarExp{Name: fresh, Type: r.Type}
	}

	triggers := e.Triggers
	trigChanged := false
	for i, group := range e.Triggers {
		if out, changed := substExpList(group, inner, temps); changed {
			if !trigChanged {
				triggers = make([][]Exp, len(e.Triggers))
				copy(triggers, e.Triggers)
				trigChanged = true
			}
			triggers[i] = out
		}
	}

	var cond Exp
	if e.Condition != nil {
		cond = substVars(e.Condition, inner, temps)
	}
	body := substVars(e.Body, inner, temps)
	if renamed || trigChanged || cond != e.Condition || body != e.Body {
		return &QuantExp{Kind: e.Kind, Ranges: ranges, Triggers: triggers, Condition: cond, Body: body}
	}
	return e
}

// freshSymbol derives a symbol from base that is absent from avoid.
func freshSymbol(base Symbol, avoid map[Symbol]struct{}) Symbol {
	for i := 1; ; i++ {
		cand := Symbol(fmt.Sprintf("%s#%d", base, i))
		if _, ok := avoid[cand]; !ok {
			return cand
		}
	}
}

func substExpList(args []Exp, m map[Symbol]Exp, temps map[int]Exp) ([]Exp, bool) {
	var out []Exp
	for i, arg := range args {
		if other := substVars(arg, m, temps); other != arg {
			if out == nil {
				out = make([]Exp, len(args))
				copy(out, args)
			}
			out[i] = other
		} else if out != nil {
			out[i] = arg
		}
	}
	if out == nil {
		return args, false
	}
	return out, true
}
