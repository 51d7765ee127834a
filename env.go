package vcsimp

// Field describes a single struct field. Offset is the position of the field
// within its struct and doubles as the argument position in pack expressions.
type Field struct {
	Name   string
	Offset int
	Type   Type
}

// StructDef describes the layout of a declared struct.
type StructDef struct {
	Name    string
	Fields  []Field // ordered by offset
	Variant bool    // true for structs with variants; field rules do not apply
}

// SpecFun describes a specification function. Functions with a nil body, or
// marked native or uninterpreted, are never unfolded.
type SpecFun struct {
	Name          Symbol
	Params        []Symbol
	ParamTypes    []Type
	Result        Type
	Body          Exp
	Native        bool
	Uninterpreted bool
}

// Env answers struct layout, function and type queries during simplification.
// The simplifier treats it as a read-only oracle.
type Env struct {
	structs map[string]*StructDef
	funs    map[Symbol]*SpecFun
}

// NewEnv returns a new, empty environment.
func NewEnv() *Env {
	return &Env{
		structs: make(map[string]*StructDef),
		funs:    make(map[Symbol]*SpecFun),
	}
}

// DeclareStruct registers a struct layout.
func (env *Env) DeclareStruct(def *StructDef) {
	assert(def.Name != "", "struct must be named")
	for i, f := range def.Fields {
		assert(f.Offset == i, "field %q out of order: offset %d at position %d", f.Name, f.Offset, i)
	}
	env.structs[def.Name] = def
}

// DeclareSpecFun registers a specification function.
func (env *Env) DeclareSpecFun(fn *SpecFun) {
	assert(fn.Name != "", "spec function must be named")
	assert(len(fn.Params) == len(fn.ParamTypes), "param/type count mismatch: %d != %d", len(fn.Params), len(fn.ParamTypes))
	env.funs[fn.Name] = fn
}

// Struct returns the layout of the named struct, or nil if unknown.
func (env *Env) Struct(name string) *StructDef {
	return env.structs[name]
}

// SpecFun returns the named specification function, or nil if unknown.
func (env *Env) SpecFun(name Symbol) *SpecFun {
	return env.funs[name]
}

// TypeOf derives the type of an expression. Input trees are well-typed by
// construction, so failures here are programming errors.
func (env *Env) TypeOf(e Exp) Type {
	switch e := e.(type) {
	case *ConstExp:
		return e.Type
	case *LocalVarExp:
		return e.Type
	case *TemporaryExp:
		return e.Type
	case *CallExp:
		return env.typeOfCall(e)
	case *SelectExp:
		def := env.Struct(e.Struct)
		assert(def != nil && e.Field < len(def.Fields), "unknown field %s.%d", e.Struct, e.Field)
		return def.Fields[e.Field].Type
	case *UpdateFieldExp:
		return StructType{Name: e.Struct}
	case *PackExp:
		return StructType{Name: e.Struct}
	case *FunCallExp:
		fn := env.SpecFun(e.Name)
		assert(fn != nil, "unknown spec function: %s", e.Name)
		return fn.Result
	case *IfElseExp:
		return env.TypeOf(e.Then)
	case *QuantExp:
		return Bool
	default:
		panic("unreachable")
	}
}

func (env *Env) typeOfCall(e *CallExp) Type {
	switch {
	case e.Op.IsCompare() || e.Op.IsBool():
		return Bool
	case e.Op.IsArithmetic():
		return env.TypeOf(e.Args[0])
	}
	switch e.Op {
	case OLD, FREEZE:
		return env.TypeOf(e.Args[0])
	case WELLFORMED, ABORTFLAG:
		return Bool
	case MAXU8:
		return U8
	case MAXU16:
		return U16
	case MAXU32:
		return U32
	case MAXU64:
		return U64
	case MAXU128:
		return U128
	case MAXU256:
		return U256
	default:
		panic("unreachable")
	}
}
