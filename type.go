package vcsimp

import (
	"fmt"
	"math/big"
)

// Type represents the type of an expression. Types are small comparable
// values; struct details live in the environment.
type Type interface {
	typ()
	String() string
}

func (BoolType) typ()   {}
func (IntType) typ()    {}
func (StructType) typ() {}

// BoolType is the type of boolean expressions.
type BoolType struct{}

// String returns the string representation of the type.
func (BoolType) String() string { return "bool" }

// IntType represents an unsigned integer type. A zero width denotes the
// unbounded specification integer type.
type IntType struct {
	Width uint
}

// String returns the string representation of the type.
func (t IntType) String() string {
	if t.Width == 0 {
		return "num"
	}
	return fmt.Sprintf("u%d", t.Width)
}

// IsBounded returns true if the type has a finite bit width.
func (t IntType) IsBounded() bool { return t.Width != 0 }

// MinValue returns the smallest value of the type.
func (t IntType) MinValue() *big.Int { return big.NewInt(0) }

// MaxValue returns the largest value of the type, or nil if unbounded.
func (t IntType) MaxValue() *big.Int {
	if t.Width == 0 {
		return nil
	}
	max := new(big.Int).Lsh(big.NewInt(1), t.Width)
	return max.Sub(max, big.NewInt(1))
}

// StructType refers to a struct declared in the environment.
type StructType struct {
	Name string
}

// String returns the string representation of the type.
func (t StructType) String() string { return t.Name }

// Standard types.
var (
	Bool = BoolType{}
	U8   = IntType{Width: 8}
	U16  = IntType{Width: 16}
	U32  = IntType{Width: 32}
	U64  = IntType{Width: 64}
	U128 = IntType{Width: 128}
	U256 = IntType{Width: 256}
	Num  = IntType{}
)

// IsIntType returns true if t is an integer type.
func IsIntType(t Type) bool {
	_, ok := t.(IntType)
	return ok
}

// IsBoundedIntType returns true if t is an integer type with a finite width.
func IsBoundedIntType(t Type) bool {
	it, ok := t.(IntType)
	return ok && it.IsBounded()
}
