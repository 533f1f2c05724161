package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	httpfrontend "github.com/MestreLion/roguestats/frontend/http"
	"github.com/MestreLion/roguestats/monster"
	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/pkg/metrics"
	"github.com/MestreLion/roguestats/pkg/stop"
	"github.com/MestreLion/roguestats/rng"
	"github.com/MestreLion/roguestats/stats"
	"github.com/MestreLion/roguestats/xplevel"

	// Register the state store drivers.
	_ "github.com/MestreLion/roguestats/state/memory"
	_ "github.com/MestreLion/roguestats/state/redis"
)

// loadConfig reads the configuration file named by the --config flag.
func loadConfig(cmd *cobra.Command) (Config, error) {
	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}

	configFile, err := ParseConfigFile(configFilePath)
	if err != nil {
		return Config{}, err
	}

	cfg := configFile.Roguestats.Validate()
	log.Debug("loaded config", cfg)
	return cfg, nil
}

// seedGenerator creates a Generator from the --seed and --seed-phrase flags,
// falling back to the configuration and finally to the current time.
func seedGenerator(cmd *cobra.Command, cfg Config) (*rng.Generator, error) {
	var seed int64
	var source string

	phrase, err := cmd.Flags().GetString("seed-phrase")
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Flags().Changed("seed"):
		seed, err = cmd.Flags().GetInt64("seed")
		if err != nil {
			return nil, err
		}
		source = "flag"
	case phrase != "":
		seed = rng.PhraseSeed(phrase)
		source = "phrase flag"
	case cfg.Seed != nil:
		seed = *cfg.Seed
		source = "config"
	case cfg.SeedPhrase != "":
		seed = rng.PhraseSeed(cfg.SeedPhrase)
		source = "config phrase"
	default:
		seed = rng.TimeSeed()
		source = "time"
	}

	log.Debug("seeded generator", log.Fields{"seed": seed, "source": source})
	return rng.New(seed), nil
}

// parsePositive parses a positional argument that must be a positive
// integer.
func parsePositive(arg, name string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid number of %s: %s", name, arg)
	}
	return v, nil
}

// writeMonsters writes, for each level, a line of resident monsters followed
// by a line of wandering monsters.
func writeMonsters(w io.Writer, src monster.Source, monsters, levels int) error {
	s := monster.NewSelector(src)
	for level := 1; level <= levels; level++ {
		for _, c := range monster.Categories {
			line, err := s.SelectN(level, c, monsters)
			if err != nil {
				return errors.Wrapf(err, "level %d %s", level, c)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// RootRunCmdFunc implements a Cobra command that prints random monsters
// chosen according to the Rogue level rules.
func RootRunCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	monsters, levels := cfg.Monsters, cfg.Levels
	if len(args) >= 1 {
		if monsters, err = parsePositive(args[0], "MONSTERS"); err != nil {
			return err
		}
	}
	if len(args) >= 2 {
		if levels, err = parsePositive(args[1], "LEVELS"); err != nil {
			return err
		}
	}

	g, err := seedGenerator(cmd, cfg)
	if err != nil {
		return err
	}

	return writeMonsters(cmd.OutOrStdout(), g, monsters, levels)
}

// StatsRunCmdFunc implements a Cobra command that reports the distribution of
// monsters per level.
func StatsRunCmdFunc(cmd *cobra.Command, args []string) error {
	residentWeight, err := cmd.Flags().GetInt("level-weight")
	if err != nil {
		return err
	}
	wanderingWeight, err := cmd.Flags().GetInt("wander-weight")
	if err != nil {
		return err
	}
	samples, err := cmd.Flags().GetInt("sample")
	if err != nil {
		return err
	}

	levels, err := cmd.Flags().GetInt("levels")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sample") && samples < 1 {
		return fmt.Errorf("invalid number of samples: %d", samples)
	}
	if cmd.Flags().Changed("levels") && levels < 1 {
		return fmt.Errorf("invalid number of levels: %d", levels)
	}

	var counts *stats.Counts
	if samples > 0 {
		if len(args) > 0 {
			return errors.New("FILE cannot be combined with --sample")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if levels == 0 {
			levels = cfg.Levels
		}
		g, err := seedGenerator(cmd, cfg)
		if err != nil {
			return err
		}
		counts, err = stats.Sample(g, levels, samples)
		if err != nil {
			return err
		}
	} else {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		counts, err = stats.ReadCounts(in)
		if err != nil {
			return errors.Wrap(err, "failed to read monsters")
		}
	}

	log.Debug("counted monsters", log.Fields{"levels": counts.Levels(), "total": counts.Total()})
	if err := counts.Summary().Write(cmd.OutOrStdout()); err != nil {
		return err
	}
	return counts.Weighted(residentWeight, wanderingWeight).Write(cmd.OutOrStdout())
}

// XPLevelsRunCmdFunc implements a Cobra command that prints the experience
// level table.
func XPLevelsRunCmdFunc(cmd *cobra.Command, args []string) error {
	return xplevel.Write(cmd.OutOrStdout())
}

// ServeRunCmdFunc implements a Cobra command that serves monster selections
// over HTTP until a shutdown signal is received.
func ServeRunCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stopGroup := stop.NewGroup()

	if cfg.MetricsAddr != "" {
		ms, err := metrics.NewServer(cfg.MetricsAddr)
		if err != nil {
			return errors.Wrap(err, "failed to start metrics server")
		}
		log.Info("started serving metrics", log.Fields{"addr": ms.Addr().String()})
		stopGroup.Add(ms)
	}

	store, err := cfg.NewStore()
	if err != nil {
		stopGroup.Stop().Wait()
		return err
	}
	log.Info("started state store", log.Fields{"name": cfg.State.Name})

	frontend, err := httpfrontend.NewFrontend(store, cfg.HTTPConfig)
	if err != nil {
		stopGroup.Add(store)
		stopGroup.Stop().Wait()
		return err
	}
	log.Info("started serving HTTP", frontend.LogFields())

	// The frontend must stop before the store it writes to.
	stopGroup.AddFunc(func() stop.Result {
		c := make(stop.Channel)
		go func() {
			errs := frontend.Stop().Wait()
			errs = append(errs, store.Stop().Wait()...)
			c.Done(errs...)
		}()
		return c.Result()
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, shutdownSignals...)
	<-shutdown
	log.Info("received shutdown signal, stopping")

	if errs := stopGroup.Stop().Wait(); len(errs) > 0 {
		for _, err := range errs {
			log.Error("failed while shutting down", log.Err(err))
		}
		return errors.New("failed to shutdown cleanly")
	}
	return nil
}

// PreRunCmdFunc configures logging before any command runs.
func PreRunCmdFunc(cmd *cobra.Command, args []string) error {
	debugLog, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return err
	}
	jsonLog, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	log.SetDebug(debugLog)
	if jsonLog {
		return log.SetFormat("json")
	}
	return log.SetFormat("text")
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roguestats [MONSTERS] [LEVELS]",
		Short: "Rogue monster generator",
		Long: fmt.Sprintf("Generates MONSTERS [default: %d] monsters for each one of LEVELS [default: %d] levels,\n"+
			"printing a line of generated level monsters and a line of wander monsters\n"+
			"chosen randomly according to Rogue level rules", defaultMonsters, defaultLevels),
		Args:              cobra.MaximumNArgs(2),
		PersistentPreRunE: PreRunCmdFunc,
		RunE:              RootRunCmdFunc,
	}

	rootCmd.PersistentFlags().String("config", "", "location of configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "enable json logging")
	rootCmd.PersistentFlags().Int64("seed", 0, "seed of the random number generator [default: current time]")
	rootCmd.PersistentFlags().String("seed-phrase", "", "derive the seed from a phrase")

	statsCmd := &cobra.Command{
		Use:   "stats [FILE]",
		Short: "Statistics on monsters and levels",
		Long:  "Reports the distribution of monsters per level from FILE (or stdin) as generated by roguestats",
		Args:  cobra.MaximumNArgs(1),
		RunE:  StatsRunCmdFunc,
	}
	statsCmd.Flags().IntP("level-weight", "l", 1, "weight of monsters spawned at level initialization")
	statsCmd.Flags().IntP("wander-weight", "w", 1, "weight of wander monsters spawned afterwards")
	statsCmd.Flags().Int("sample", 0, "generate this many monsters per level and category instead of reading them")
	statsCmd.Flags().Int("levels", 0, "number of levels generated by --sample [default: from config]")

	xpCmd := &cobra.Command{
		Use:   "xplevels",
		Short: "Prints the experience needed for each level",
		Args:  cobra.NoArgs,
		RunE:  XPLevelsRunCmdFunc,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves monster selections over HTTP",
		Args:  cobra.NoArgs,
		RunE:  ServeRunCmdFunc,
	}

	rootCmd.AddCommand(statsCmd, xpCmd, serveCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal("failed when executing root cobra command: " + err.Error())
	}
}
