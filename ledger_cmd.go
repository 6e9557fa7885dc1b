package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/arena"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ledger"
)

const ledgerTimeout = 2 * time.Second

var fastestCount int64

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the boss defeat ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [boss...]",
	Short: "Print defeat records",
	RunE:  runLedgerShow,
}

var ledgerResetCmd = &cobra.Command{
	Use:   "reset boss...",
	Short: "Forget the records of the given bosses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLedgerReset,
}

func init() {
	ledgerShowCmd.Flags().Int64Var(&fastestCount, "fastest", 5, "number of fastest clears to list")
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerResetCmd)
}

func dialLedger(ctx context.Context) (*ledger.Ledger, *redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()
	return ledger.Dial(ctx, cfg.Ledger)
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, client, err := dialLedger(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bosses := args
	if len(bosses) == 0 {
		if bosses, err = l.Defeated(ctx); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	for _, boss := range bosses {
		rec, err := l.Get(ctx, boss)
		if err != nil {
			return err
		}
		last := "never"
		if !rec.LastDefeat.IsZero() {
			last = rec.LastDefeat.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%-14s defeats=%d best=%.2fs last=%s health_left=%d\n",
			rec.Boss, rec.Defeats, rec.BestSeconds, last, rec.PlayerHealth)
	}

	fastest, err := l.Fastest(ctx, fastestCount)
	if err != nil {
		return err
	}
	if len(fastest) > 0 {
		fmt.Fprintln(out, "fastest:")
		for i, rec := range fastest {
			fmt.Fprintf(out, "  %d. %-14s %.2fs\n", i+1, rec.Boss, rec.BestSeconds)
		}
	}
	return nil
}

func runLedgerReset(cmd *cobra.Command, args []string) error {
	l, client, err := dialLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()
	if err := l.Reset(cmd.Context(), args...); err != nil {
		return err
	}
	logger.Info("ledger reset", zap.Strings("bosses", args))
	return nil
}

// recordDefeats writes every boss defeat in a to l. Failures are logged;
// a missing ledger never interrupts a fight.
func recordDefeats(a *arena.Arena, l *ledger.Ledger) {
	if l == nil {
		return
	}
	a.OnDefeat(func(boss string, _ ecs.Entity) {
		d := ledger.Defeat{Boss: boss, Seconds: a.World.Elapsed()}
		if p, ok := a.Player(); ok {
			d.PlayerHealth = p.Health
		}
		ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
		defer cancel()
		best, err := l.RecordDefeat(ctx, d)
		if err != nil {
			logger.Warn("ledger write failed", zap.String("boss", boss), zap.Error(err))
			return
		}
		logger.Info("defeat recorded",
			zap.String("boss", boss),
			zap.Float64("seconds", d.Seconds),
			zap.Bool("best", best),
		)
	})
}

// openLedger dials the ledger when it is enabled. The returned close
// function is always safe to call.
func openLedger(ctx context.Context) (*ledger.Ledger, func()) {
	if !cfg.Ledger.Enabled {
		return nil, func() {}
	}
	l, client, err := dialLedger(ctx)
	if err != nil {
		logger.Warn("ledger unavailable, defeats will not be recorded", zap.Error(err))
		return nil, func() {}
	}
	return l, func() { _ = client.Close() }
}
