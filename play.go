package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/prefabs"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Fight the boss in a window",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().Bool("debug", false, "draw physics shapes")
	playCmd.Flags().Bool("watch", false, "reload prefabs from --prefabs when they change")
	flagKeys["debug"] = "window.debug"
	flagKeys["watch"] = "prefabs.watch"
}

func runPlay(cmd *cobra.Command, args []string) error {
	l, closeLedger := openLedger(cmd.Context())
	defer closeLedger()

	var watcher *prefabs.Watcher
	if cfg.Prefabs.Watch && cfg.Prefabs.Dir != "" {
		w, err := prefabs.WatchDir(cfg.Prefabs.Dir)
		if err != nil {
			logger.Warn("prefab watch disabled", zap.String("dir", cfg.Prefabs.Dir), zap.Error(err))
		} else {
			watcher = w
			defer w.Close()
		}
	}

	game, err := NewGame(l, watcher)
	if err != nil {
		return err
	}

	scale := cfg.Window.Scale
	if scale <= 0 {
		scale = 1
	}
	ebiten.SetWindowSize(int(float64(game.width)*scale), int(float64(game.height)*scale))
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Sim.TickRate)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("starting arena",
		zap.String("level", cfg.Sim.Level),
		zap.String("boss", cfg.Sim.Boss),
		zap.Bool("watch", watcher != nil),
	)
	return ebiten.RunGame(game)
}
