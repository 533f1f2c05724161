package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MestreLion/roguestats/rng"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWriteMonsters(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, writeMonsters(&buf, rng.New(42), 5, 2))
	require.Equal(t, "HKKBK\nKKHKK\nKKBBK\nBHIII\n", buf.String())
}

func TestRootCommand(t *testing.T) {
	out, err := execute(t, "", "--seed", "42", "5", "2")
	require.Nil(t, err)
	require.Equal(t, "HKKBK\nKKHKK\nKKBBK\nBHIII\n", out)
}

func TestRootCommandDefaults(t *testing.T) {
	out, err := execute(t, "", "--seed-phrase", "yendor")
	require.Nil(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2*defaultLevels)
	for _, line := range lines {
		require.Len(t, line, defaultMonsters)
	}
}

func TestRootCommandInvalidArgs(t *testing.T) {
	for _, args := range [][]string{
		{"0"},
		{"-5"},
		{"ten"},
		{"10", "zero"},
		{"1", "2", "3"},
	} {
		_, err := execute(t, "", append([]string{"--seed", "1"}, args...)...)
		require.NotNil(t, err, "%v", args)
	}
}

func TestStatsCommandFromStdin(t *testing.T) {
	gen, err := execute(t, "", "--seed", "42", "50", "26")
	require.Nil(t, err)

	out, err := execute(t, gen, "stats")
	require.Nil(t, err)
	require.Contains(t, out, "Monster level range")
}

func TestStatsCommandSample(t *testing.T) {
	out, err := execute(t, "", "--seed", "42", "stats", "--sample", "50", "-w", "0")
	require.Nil(t, err)
	require.Contains(t, out, "Monsters per level")
}

func TestStatsCommandSampleLevels(t *testing.T) {
	out, err := execute(t, "", "--seed", "42", "stats", "--sample", "20", "--levels", "3")
	require.Nil(t, err)
	require.True(t, strings.HasPrefix(out, "Levels: 3, monsters per line: 20, total monsters: 120\n"), out)

	for _, args := range [][]string{
		{"stats", "--sample", "0"},
		{"stats", "--sample", "-3"},
		{"stats", "--sample", "10", "--levels", "0"},
		{"stats", "--sample", "10", "monsters.txt"},
	} {
		_, err := execute(t, "", append([]string{"--seed", "1"}, args...)...)
		require.NotNil(t, err, "%v", args)
	}
}

func TestServeStopsMetricsOnStoreFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := ln.Addr().String()
	require.Nil(t, ln.Close())

	path := filepath.Join(t.TempDir(), "roguestats.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte(fmt.Sprintf(`
roguestats:
  metrics_addr: %s
  state:
    name: nonexistent
`, addr)), 0o644))

	_, err = execute(t, "", "--config", path, "serve")
	require.NotNil(t, err)

	// The metrics listener must have been released.
	ln, err = net.Listen("tcp", addr)
	require.Nil(t, err)
	require.Nil(t, ln.Close())
}

func TestStatsCommandUnbalanced(t *testing.T) {
	_, err := execute(t, "KKK\n", "stats")
	require.NotNil(t, err)
}

func TestXPLevelsCommand(t *testing.T) {
	out, err := execute(t, "", "xplevels")
	require.Nil(t, err)
	require.True(t, strings.HasPrefix(out, "XP level  2:         10\n"))
}

func TestParseConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roguestats.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte(`
roguestats:
  monsters: 3
  levels: 1
  seed: 42
  state:
    name: memory
    config:
      streams:
        dungeon: 42
`), 0o644))

	cfgFile, err := ParseConfigFile(path)
	require.Nil(t, err)
	cfg := cfgFile.Roguestats
	require.Equal(t, 3, cfg.Monsters)
	require.Equal(t, 1, cfg.Levels)
	require.NotNil(t, cfg.Seed)
	require.Equal(t, int64(42), *cfg.Seed)

	s, err := cfg.NewStore()
	require.Nil(t, err)
	require.Empty(t, s.Stop().Wait())

	out, err := execute(t, "", "--config", path)
	require.Nil(t, err)
	require.Equal(t, "HKK\nBEK\n", out)
}

func TestParseConfigFileErrors(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, err)

	cfgFile, err := ParseConfigFile("")
	require.Nil(t, err)
	require.Equal(t, DefaultConfig(), cfgFile.Roguestats)

	cfg := Config{State: storeConfig{Name: "nonexistent"}}
	_, err = cfg.NewStore()
	require.NotNil(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Monsters: -1}.Validate()
	require.Equal(t, defaultMonsters, cfg.Monsters)
	require.Equal(t, defaultLevels, cfg.Levels)
	require.Equal(t, "memory", cfg.State.Name)
}
