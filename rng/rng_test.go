package rng

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ranTests = []struct {
	seed     int64
	expected []int64
}{
	{1, []int64{125, 15625, 1953125, 870964, 2614786}},
	{42, []int64{5250, 656250, 941363, 229849}},
	{-7, []int64{-875, -109375, -2487063, -504342}},
	{0, []int64{0, 0, 0}},
	{modulus, []int64{0, 0}},
}

func TestRan(t *testing.T) {
	for _, tt := range ranTests {
		t.Run(fmt.Sprintf("seed %d", tt.seed), func(t *testing.T) {
			g := New(tt.seed)
			for i, want := range tt.expected {
				require.Equal(t, want, g.Ran(), "draw %d", i)
			}
			require.Equal(t, tt.expected[len(tt.expected)-1], g.State())
		})
	}
}

func TestTruncRem(t *testing.T) {
	require.Equal(t, int64(-1), truncRem(-7, 3))
	require.Equal(t, int64(1), truncRem(7, 3))
	require.Equal(t, int64(-1), truncRem(-7, -3))
	require.Equal(t, int64(0), truncRem(-9, 3))
	require.Equal(t, int64(-875), truncRem(-875, modulus))
}

func TestRndGolden(t *testing.T) {
	g := New(42)
	expected := []int{0, 2, 8, 1, 8, 0, 7, 5}
	for i, want := range expected {
		require.Equal(t, want, g.Rnd(10), "call %d", i)
	}
}

func TestRndConsumesTwoDraws(t *testing.T) {
	a, b := New(1234), New(1234)
	a.Rnd(7)
	b.Ran()
	b.Ran()
	require.Equal(t, b.State(), a.State())
}

func TestRndInvalidRange(t *testing.T) {
	g := New(42)
	for _, n := range []int{0, -1, -100} {
		require.Equal(t, 0, g.Rnd(n))
		require.Equal(t, int64(42), g.State(), "Rnd(%d) must not draw", n)
	}
}

func TestRndBounds(t *testing.T) {
	rand.Seed(time.Now().UnixNano())
	for s := 0; s < 100; s++ {
		seed := rand.Int63() - rand.Int63()
		g := New(seed)
		for _, n := range []int{1, 2, 5, 6, 26, 1000} {
			for i := 0; i < 100; i++ {
				k := g.Rnd(n)
				require.True(t, k >= 0, "Rnd() must be >= 0 (seed %d)", seed)
				require.True(t, k < n, "Rnd(n) must be < n (seed %d)", seed)
			}
		}
	}
}

func TestRanBounded(t *testing.T) {
	for _, seed := range []int64{1<<62 + 3, -(1 << 62) - 3, 1<<31 - 1, -1} {
		g := New(seed)
		for i := 0; i < 1000; i++ {
			v := g.Ran()
			require.True(t, v > -modulus && v < modulus, "seed %d draw %d out of bounds: %d", seed, i, v)
		}
	}
}

func TestReseed(t *testing.T) {
	g := New(987654)
	first := make([]int, 50)
	for i := range first {
		first[i] = g.Rnd(26)
	}

	g.Seed(987654)
	for i := range first {
		require.Equal(t, first[i], g.Rnd(26))
	}
}

func TestResumeFromState(t *testing.T) {
	g := New(31337)
	for i := 0; i < 10; i++ {
		g.Ran()
	}

	resumed := New(g.State())
	for i := 0; i < 10; i++ {
		require.Equal(t, g.Ran(), resumed.Ran())
	}
}

func TestPhraseSeed(t *testing.T) {
	s := PhraseSeed("dungeon of doom")
	require.Equal(t, s, PhraseSeed("dungeon of doom"))
	require.NotEqual(t, s, PhraseSeed("dungeons of doom"))
	require.True(t, s >= 0 && s <= rndMask)
}

func TestTimeSeed(t *testing.T) {
	require.True(t, TimeSeed() > 0)
	require.NotNil(t, NewFromTime())
}

func BenchmarkRan(b *testing.B) {
	g := New(rand.Int63())
	var v int64
	for i := 0; i < b.N; i++ {
		v = g.Ran()
	}
	_ = v
}

func BenchmarkRnd(b *testing.B) {
	g := New(rand.Int63())
	var v int
	for i := 0; i < b.N; i++ {
		v = g.Rnd(26)
	}
	_ = v
}
