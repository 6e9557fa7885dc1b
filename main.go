package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/arena"
	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/config"
	"github.com/milk9111/robotmasters/ecs/system"
	"github.com/milk9111/robotmasters/logging"
	"github.com/milk9111/robotmasters/prefabs"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "robotmasters",
	Short: "Boss fights driven by prefab-defined state machines",
	Long: `robotmasters runs boss fights whose behavior comes entirely from the
YAML prefabs under prefabs/bosses. Use play for the interactive arena, sim
for a headless fight with a state-change trace and validate to check every
prefab.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("dev", false, "human readable development logs")
	pf.String("level", "", "embedded level to load")
	pf.String("boss", "", "boss placed instead of the level's own")
	pf.Uint64("seed", 0, "seed for boss decisions")
	pf.String("prefabs", "", "on-disk prefab directory checked before the embedded copy")

	rootCmd.AddCommand(playCmd, simCmd, validateCmd, ledgerCmd)
}

var flagKeys = map[string]string{
	"log-level": "log.level",
	"dev":       "log.development",
	"level":     "sim.level",
	"boss":      "sim.boss",
	"seed":      "sim.seed",
	"prefabs":   "prefabs.dir",
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	c, err := config.Decode(v)
	if err != nil {
		return err
	}
	cfg = c
	prefabs.Dir = cfg.Prefabs.Dir
	logger = logging.Must(cfg.Log)
	logger.Debug("config loaded", zap.String("file", v.ConfigFileUsed()), zap.String("command", cmd.Name()))
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// newArena builds a fight from the loaded config.
func newArena(input system.InputSource, sounds behavior.SoundRequester) (*arena.Arena, error) {
	return arena.New(arena.Options{
		Level:    cfg.Sim.Level,
		Boss:     cfg.Sim.Boss,
		Seed:     cfg.Sim.Seed,
		Gravity:  cfg.Sim.Gravity,
		Substeps: cfg.Sim.Substeps,
		Input:    input,
		Sounds:   sounds,
		Logger:   logger,
	})
}
