// Package vcsimp simplifies verification-condition expressions produced from
// a smart-contract specification language before they are handed to an
// automated theorem prover. It reduces proof-obligation size and discharges
// trivial obligations locally by applying algebraic identities, constant
// folding, assumption-based reasoning and quantifier elimination to a
// tree-shaped boolean/arithmetic expression.
//
// The package does not decide satisfiability and does not talk to a solver;
// it is a purely in-process rewriting library.
package vcsimp

import "fmt"

// Maximum nesting depth for specification function unfolding.
const maxUnfoldDepth = 10

// Symbol names a local variable or a specification function.
type Symbol string

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
