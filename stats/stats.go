// Package stats computes the distribution of Rogue monsters across dungeon
// levels.
//
// Counts are gathered either from the line oriented output of the monster
// generator (one resident line and one wandering line per level) or by
// sampling a Selector directly.
package stats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/MestreLion/roguestats/monster"
)

// Species lists every monster letter, in column order.
const Species = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrUnbalancedInput is returned when the input does not hold a wandering
// line for every resident line.
var ErrUnbalancedInput = errors.New("input must hold one resident and one wandering line per level")

// ErrInvalidSpecies is returned for a letter outside Species.
var ErrInvalidSpecies = errors.New("invalid monster species")

// speciesIndex returns the column of m, or -1.
func speciesIndex(m byte) int {
	if m < 'A' || m > 'Z' {
		return -1
	}
	return int(m - 'A')
}

// Row holds a number of monsters per species.
type Row [len(Species)]int

// Total returns the number of monsters in r.
func (r Row) Total() int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}

// Counts holds raw monster counts per category and level.
type Counts struct {
	rows [2][]Row

	// lines and monsters size the input, every character of a line counting
	// as a monster.
	lines    int
	monsters int
}

// NewCounts returns empty Counts.
func NewCounts() *Counts {
	return &Counts{}
}

// Levels returns the number of levels held by c.
func (c *Counts) Levels() int {
	return len(c.rows[monster.Resident])
}

// Add counts every species letter of line at level for category cat.
// Characters that are not species letters are ignored.
func (c *Counts) Add(cat monster.Category, level int, line string) error {
	if !cat.Valid() {
		return monster.ErrInvalidCategory
	}
	if level < 1 {
		return monster.ErrInvalidLevel
	}
	c.count(cat, level, []byte(line))
	c.lines++
	return nil
}

// count adds a chunk of a line. cat and level must be valid.
func (c *Counts) count(cat monster.Category, level int, chunk []byte) {
	c.grow(level)

	row := &c.rows[cat][level-1]
	for _, b := range chunk {
		if idx := speciesIndex(b); idx >= 0 {
			row[idx]++
		}
	}
	c.monsters += len(chunk)
}

func (c *Counts) grow(level int) {
	for _, cat := range monster.Categories {
		for len(c.rows[cat]) < level {
			c.rows[cat] = append(c.rows[cat], Row{})
		}
	}
}

// Row returns the counts of category cat at level.
// Levels beyond those held by c are empty.
func (c *Counts) Row(cat monster.Category, level int) Row {
	if !cat.Valid() || level < 1 || level > len(c.rows[cat]) {
		return Row{}
	}
	return c.rows[cat][level-1]
}

// Count returns how many times species showed up at level for category cat.
func (c *Counts) Count(cat monster.Category, level int, species byte) int {
	idx := speciesIndex(species)
	if idx < 0 {
		return 0
	}
	return c.Row(cat, level)[idx]
}

// Total returns the number of monsters counted.
func (c *Counts) Total() int {
	total := 0
	for _, cat := range monster.Categories {
		for _, row := range c.rows[cat] {
			total += row.Total()
		}
	}
	return total
}

// ReadCounts parses generated monster lines from r.
//
// Line 2k+1 holds the resident monsters of level k+1 and line 2k+2 its
// wandering monsters. Lines may be of any length.
func ReadCounts(r io.Reader) (*Counts, error) {
	c := NewCounts()
	br := bufio.NewReader(r)

	// open is set while a line has been started but not terminated.
	open := false
	for {
		chunk, err := br.ReadSlice('\n')
		eol := len(chunk) > 0 && chunk[len(chunk)-1] == '\n'
		if eol {
			chunk = bytes.TrimSuffix(chunk[:len(chunk)-1], []byte{'\r'})
		}
		if len(chunk) > 0 || eol {
			open = true
			c.count(monster.Categories[c.lines%2], c.lines/2+1, chunk)
		}
		if eol {
			c.lines++
			open = false
		}

		if err == io.EOF {
			break
		}
		if err != nil && err != bufio.ErrBufferFull {
			return nil, err
		}
	}
	if open {
		c.lines++
	}

	if c.lines%2 != 0 {
		return nil, ErrUnbalancedInput
	}
	return c, nil
}

// Sample selects samples monsters of each category for every level from 1 to
// levels, drawing from src.
func Sample(src monster.Source, levels, samples int) (*Counts, error) {
	if levels < 1 {
		return nil, monster.ErrInvalidLevel
	}
	if samples < 0 {
		return nil, monster.ErrInvalidCount
	}

	s := monster.NewSelector(src)
	c := NewCounts()
	for level := 1; level <= levels; level++ {
		for _, cat := range monster.Categories {
			line, err := s.SelectN(level, cat, samples)
			if err != nil {
				return nil, err
			}
			if err := c.Add(cat, level, line); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Summary sizes the input of a distribution.
type Summary struct {
	Levels          int
	MonstersPerLine int
	TotalMonsters   int
}

// Summary returns the size of the input counted by c.
func (c *Counts) Summary() Summary {
	s := Summary{
		Levels:        c.Levels(),
		TotalMonsters: c.monsters,
	}
	if c.lines > 0 {
		s.MonstersPerLine = c.monsters / c.lines
	}
	return s
}

// Write renders s to w.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Levels: %d, monsters per line: %d, total monsters: %d\n",
		s.Levels, s.MonstersPerLine, s.TotalMonsters)
	return err
}
