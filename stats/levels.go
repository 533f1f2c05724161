package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MestreLion/roguestats/monster"
)

// Share holds, per species, the percentage of the monsters of a level.
type Share [len(Species)]float64

// Levels holds the normalized monster distribution of every level.
// Index i describes level i+1.
type Levels []Share

// Weighted combines resident and wandering counts of every level, weighting
// each category, and normalizes the result as a percentage of the level.
//
// Negative weights count as positive. Levels without monsters are all zero.
func (c *Counts) Weighted(residentWeight, wanderingWeight int) Levels {
	rw, ww := abs(residentWeight), abs(wanderingWeight)

	levels := make(Levels, c.Levels())
	for i := range levels {
		resident := c.rows[monster.Resident][i]
		wandering := c.rows[monster.Wandering][i]

		var weighted [len(Species)]int
		total := 0
		for m := range weighted {
			weighted[m] = resident[m]*rw + wandering[m]*ww
			total += weighted[m]
		}
		if total == 0 {
			continue
		}
		for m, n := range weighted {
			levels[i][m] = 100 * float64(n) / float64(total)
		}
	}
	return levels
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Range returns the first level at which species shows up and the last level
// of that first uninterrupted run.
// It returns (0, 0) if species never shows up, as the dragon never wanders.
func (l Levels) Range(species byte) (first, last int) {
	idx := speciesIndex(species)
	if idx < 0 {
		return 0, 0
	}

	for i, share := range l {
		if share[idx] > 0 {
			if first == 0 {
				first = i + 1
			}
			last = i + 1
		} else if last != 0 {
			break
		}
	}
	return first, last
}

// Types returns the species showing up at level, in alphabetical order.
func (l Levels) Types(level int) string {
	if level < 1 || level > len(l) {
		return ""
	}

	var b strings.Builder
	for m, share := range l[level-1] {
		if share > 0 {
			b.WriteByte(Species[m])
		}
	}
	return b.String()
}

// ByFrequency returns the species showing up at level, most frequent first.
// Ties are broken by reverse alphabetical order.
func (l Levels) ByFrequency(level int) string {
	if level < 1 || level > len(l) {
		return ""
	}

	share := l[level-1]
	present := []byte(l.Types(level))
	sort.Slice(present, func(i, j int) bool {
		si, sj := share[speciesIndex(present[i])], share[speciesIndex(present[j])]
		if si != sj {
			return si > sj
		}
		return present[i] > present[j]
	})
	return string(present)
}

// Monster returns the share of species at every level, index i describing
// level i+1. It is nil for a letter outside Species.
func (l Levels) Monster(species byte) []float64 {
	idx := speciesIndex(species)
	if idx < 0 {
		return nil
	}

	shares := make([]float64, len(l))
	for i, share := range l {
		shares[i] = share[idx]
	}
	return shares
}

// RangeOrder returns every species sorted by level range, first level then
// last level then letter. Species that never show up come first.
func (l Levels) RangeOrder() string {
	type speciesRange struct {
		m           byte
		first, last int
	}

	ranges := make([]speciesRange, len(Species))
	for i := range ranges {
		m := Species[i]
		first, last := l.Range(m)
		ranges[i] = speciesRange{m: m, first: first, last: last}
	}
	sort.Slice(ranges, func(i, j int) bool {
		ri, rj := ranges[i], ranges[j]
		if ri.first != rj.first {
			return ri.first < rj.first
		}
		if ri.last != rj.last {
			return ri.last < rj.last
		}
		return ri.m < rj.m
	})

	order := make([]byte, len(ranges))
	for i, r := range ranges {
		order[i] = r.m
	}
	return string(order)
}

// FrequentLevels returns the levels at which species shows up, most frequent
// first. Ties are broken by deepest level first.
func (l Levels) FrequentLevels(species byte) []int {
	shares := l.Monster(species)

	var levels []int
	for i, share := range shares {
		if share > 0 {
			levels = append(levels, i+1)
		}
	}
	sort.Slice(levels, func(i, j int) bool {
		si, sj := shares[levels[i]-1], shares[levels[j]-1]
		if si != sj {
			return si > sj
		}
		return levels[i] > levels[j]
	})
	return levels
}

// Write renders the distribution report of l to w.
func (l Levels) Write(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Monsters per level, as a percentage of the level\n")
	ew.printf("%5s", "")
	for i := 0; i < len(Species); i++ {
		ew.printf(" %5c", Species[i])
	}
	ew.printf("\n")
	for i, share := range l {
		ew.printf("%5d", i+1)
		for _, v := range share {
			ew.percent(v)
		}
		ew.printf("\n")
	}

	ew.printf("\nLevels per monster, as a percentage of the level\n")
	ew.printf("%5s", "")
	for level := 1; level <= len(l); level++ {
		ew.printf(" %5d", level)
	}
	ew.printf("\n")
	for i := 0; i < len(Species); i++ {
		ew.printf("%5c", Species[i])
		for _, v := range l.Monster(Species[i]) {
			ew.percent(v)
		}
		ew.printf("\n")
	}

	ew.printf("\nMonster level range: first and last level of each monster\n")
	for i := 0; i < len(Species); i++ {
		first, last := l.Range(Species[i])
		ew.printf("%c: %2d %2d\n", Species[i], first, last)
	}
	ew.printf("Sorted by level:\n")
	for _, m := range []byte(l.RangeOrder()) {
		first, last := l.Range(m)
		ew.printf("%c: %2d %2d\n", m, first, last)
	}

	ew.printf("\nMonster types in each level, most frequent first\n")
	for level := 1; level <= len(l); level++ {
		ew.printf("%5d: %-26s %s\n", level, l.Types(level), l.ByFrequency(level))
	}

	ew.printf("\nLevels of each monster, most frequent first\n")
	for i := 0; i < len(Species); i++ {
		ew.printf("%c:", Species[i])
		for _, level := range l.FrequentLevels(Species[i]) {
			ew.printf(" %2d", level)
		}
		ew.printf("\n")
	}

	return ew.err
}

// errWriter keeps the first error of a sequence of writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// percent writes a table cell, blank for zero.
func (ew *errWriter) percent(v float64) {
	if v == 0 {
		ew.printf(" %5s", "")
		return
	}
	ew.printf(" %5.1f", v)
}
