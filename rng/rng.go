// Package rng implements the pseudo random number generator of PC Rogue.
//
// The generator is adapted from the FORTRAN version in "Software Manual for
// the Elementary Functions" by W.J. Cody, Jr and William Waite. It is a
// multiplicative congruential generator without an increment term.
package rng

const (
	multiplier = 125
	modulus    = 2796203

	// rndMask keeps the sum of two draws non-negative before it is reduced
	// into a range.
	rndMask = 0x7fffffff
)

// Generator holds the state of a Rogue PRNG.
//
// A Generator is a single stream and is not safe for concurrent use.
// Concurrent streams must each own a Generator.
type Generator struct {
	state int64
}

// New creates a new Generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{state: seed}
}

// Seed sets the state of g.
//
// Any value is accepted, including zero and negative values. A state of zero
// (or any multiple of the modulus) makes the generator return zero forever.
func (g *Generator) Seed(seed int64) {
	g.state = seed
}

// State returns the current state of g.
// Passing it to Seed resumes the sequence where it was left.
func (g *Generator) State() int64 {
	return g.state
}

// Ran advances the state of g and returns it.
//
// The multiply wraps around for seeds beyond ±2^63/125; every value returned
// lies strictly between -modulus and modulus.
func (g *Generator) Ran() int64 {
	g.state *= multiplier
	g.state = truncRem(g.state, modulus)
	return g.state
}

// Rnd returns a number k that satisfies k >= 0 && k < n.
//
// Two draws are summed for every call. If n < 1, Rnd returns 0 and the state
// of g is left untouched.
func (g *Generator) Rnd(n int) int {
	if n < 1 {
		return 0
	}
	v := (g.Ran() + g.Ran()) & rndMask
	return int(v % int64(n))
}

// truncRem returns the remainder of a/m with the quotient truncated toward
// zero, so the result has the sign of a.
func truncRem(a, m int64) int64 {
	return a - (a/m)*m
}
