// Package monster implements the monster selection rules of PC Rogue.
//
// Every dungeon depth maps to one species in a fixed table, listed in rough
// order of vorpalness. A selection jitters the requested level, clamps it
// into the table and retries whenever it lands on an empty slot.
package monster

import (
	"errors"
	"strings"
)

// Depths is the number of slots in a species table.
const Depths = 26

// MaxRetries bounds the number of depth computations made by a single
// selection. A healthy generator needs a handful at most.
const MaxRetries = 10000

// blank marks a depth without a monster.
const blank = ' '

// maxLevel is the lowest level from which every jitter overflows the table,
// levels above it behave exactly like it.
const maxLevel = Depths + 6

// ErrInvalidLevel is returned when a selection is requested for a level
// below 1.
var ErrInvalidLevel = errors.New("level must be >= 1")

// ErrInvalidCount is returned when a negative number of monsters is
// requested.
var ErrInvalidCount = errors.New("monster count must be >= 0")

// ErrInvalidCategory is returned for an unknown Category.
var ErrInvalidCategory = errors.New("invalid monster category")

// ErrRetriesExhausted is returned when a selection hit MaxRetries empty slots
// in a row. This only happens with a degenerate Source, such as a generator
// seeded with zero.
var ErrRetriesExhausted = errors.New("monster selection exhausted its retries")

// Category is the kind of monster being spawned.
type Category int

const (
	// Resident monsters are placed when a level is created.
	Resident Category = iota

	// Wandering monsters show up while the level is being explored.
	Wandering
)

var tables = [...]string{
	Resident:  "K BHISOR LCA NYTWFP GMXVJD",
	Wandering: "KEBHISORZ CAQ YTW PUGM VJ ",
}

// Categories lists every Category, in output order.
var Categories = []Category{Resident, Wandering}

// Valid reports whether c is a known Category.
func (c Category) Valid() bool {
	return c == Resident || c == Wandering
}

// Table returns the species table of c.
// Index i holds the species for depth i+1, a space means none.
func (c Category) Table() string {
	if !c.Valid() {
		return ""
	}
	return tables[c]
}

func (c Category) String() string {
	switch c {
	case Resident:
		return "resident"
	case Wandering:
		return "wandering"
	default:
		return "unknown"
	}
}

// ParseCategory parses the name of a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resident", "level", "lvl":
		return Resident, nil
	case "wandering", "wander", "wand":
		return Wandering, nil
	}
	return 0, ErrInvalidCategory
}

// Source describes the functionality needed to pick monsters.
// *rng.Generator implements it.
type Source interface {
	// Rnd returns a number k that satisfies k >= 0 && k < n, or 0 if n < 1.
	Rnd(n int) int
}

// Selector picks monsters using the draws of a Source.
//
// A Selector holds no state of its own, but it is exactly as safe for
// concurrent use as its Source.
type Selector struct {
	src Source
}

// NewSelector creates a new Selector drawing from src.
func NewSelector(src Source) *Selector {
	return &Selector{src: src}
}

// Select picks a monster to show up at level. The lower the level, the
// meaner the monster.
//
// No draws are consumed when an error is returned for an invalid level or
// category.
func (s *Selector) Select(level int, c Category) (byte, error) {
	if level < 1 {
		return 0, ErrInvalidLevel
	}
	if !c.Valid() {
		return 0, ErrInvalidCategory
	}
	if level > maxLevel {
		level = maxLevel
	}

	table := tables[c]
	for retries := 0; retries < MaxRetries; retries++ {
		d := s.depth(level)
		if m := table[d]; m != blank {
			recordSelection(c, m, retries)
			return m, nil
		}
	}

	recordExhausted(c)
	return 0, ErrRetriesExhausted
}

// depth computes a jittered, clamped, 0-based table index for level.
func (s *Selector) depth(level int) int {
	r10 := s.src.Rnd(5) + s.src.Rnd(6)
	d := level + (r10 - 5)
	if d < 1 {
		d = s.src.Rnd(5) + 1
	}
	if d > Depths {
		d = s.src.Rnd(5) + 22
	}
	return d - 1
}

// SelectN picks n monsters at level and returns them concatenated.
func (s *Selector) SelectN(level int, c Category, n int) (string, error) {
	if n < 0 {
		return "", ErrInvalidCount
	}

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		m, err := s.Select(level, c)
		if err != nil {
			return b.String(), err
		}
		b.WriteByte(m)
	}
	return b.String(), nil
}
