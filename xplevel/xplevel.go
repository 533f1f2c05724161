// Package xplevel implements the experience level table of PC Rogue.
package xplevel

import (
	"fmt"
	"io"
)

// Size is the number of entries in the table, including the zero sentinel.
const Size = 20

// base is the experience needed to reach level 2.
const base = 10

// Table returns the experience thresholds of Rogue.
//
// Entry i holds the experience needed to reach level i+2. Each threshold
// doubles the previous one and the last entry is a zero sentinel.
func Table() [Size]int64 {
	var t [Size]int64
	t[0] = base
	for i := 1; i < Size-1; i++ {
		t[i] = t[i-1] << 1
	}
	return t
}

// LevelFor returns the level reached by a player holding exp experience
// points.
func LevelFor(exp int64) int {
	t := Table()
	i := 0
	for ; t[i] != 0; i++ {
		if t[i] > exp {
			break
		}
	}
	return i + 1
}

// Write writes one line per threshold to w.
func Write(w io.Writer) error {
	t := Table()
	for i := 0; t[i] != 0; i++ {
		if _, err := fmt.Fprintf(w, "XP level %2d: %10d\n", i+2, t[i]); err != nil {
			return err
		}
	}
	return nil
}
