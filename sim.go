package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/arena"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/ecs/system"
	"github.com/milk9111/robotmasters/sound"
)

var (
	simSeconds   float64
	simAutopilot bool
	simSounds    bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a fight headless and print the boss state trace",
	RunE:  runSim,
}

func init() {
	f := simCmd.Flags()
	f.Float64Var(&simSeconds, "seconds", 120, "simulated time limit")
	f.BoolVar(&simAutopilot, "autopilot", true, "let the player face the boss and fire charged shots")
	f.BoolVar(&simSounds, "sounds", false, "print sound requests")
}

func runSim(cmd *cobra.Command, args []string) error {
	rec := &sound.Recorder{}
	pilot := &autopilot{}
	var input system.InputSource
	if simAutopilot {
		input = pilot
	}
	a, err := newArena(input, rec)
	if err != nil {
		return err
	}
	pilot.a = a

	l, closeLedger := openLedger(cmd.Context())
	defer closeLedger()
	recordDefeats(a, l)

	delta := cfg.Sim.Delta()
	limit := int(simSeconds / delta)
	ticks := a.Run(limit, delta)

	out := cmd.OutOrStdout()
	for _, entry := range a.Trace() {
		fmt.Fprintln(out, entry)
	}
	if simSounds {
		for _, req := range rec.Requests {
			fmt.Fprintf(out, "sound %s loop=%v\n", req.Asset, req.Loop)
		}
	}

	result := "timeout"
	switch p, ok := a.Player(); {
	case ok && p.Defeated():
		result = "player defeated"
	case a.Over():
		result = "boss defeated"
	}
	fmt.Fprintf(out, "%s after %d ticks (%.2fs)\n", result, ticks, float64(ticks)*delta)
	logger.Info("sim finished",
		zap.String("result", result),
		zap.Int("ticks", ticks),
		zap.Int("state_changes", len(a.Trace())),
	)
	return nil
}

// autopilot turns the player toward the nearest boss, charges the
// buster fully and releases, over and over.
type autopilot struct {
	a        *arena.Arena
	held     int
	released bool
}

const chargeTicks = 66

func (p *autopilot) Poll() component.Input {
	var in component.Input
	if p.a == nil {
		return in
	}
	player := p.a.Loaded.Player
	tr, ok := ecs.Get(p.a.World, player, component.TransformComponent)
	if !ok {
		return in
	}
	if _, e, ok := p.a.Boss(""); ok {
		if bt, ok := ecs.Get(p.a.World, e, component.TransformComponent); ok {
			// A single step toward the boss turns the player around.
			if facing := p.facing(player); (bt.X < tr.X) != (facing < 0) {
				if bt.X < tr.X {
					in.MoveX = -1
				} else {
					in.MoveX = 1
				}
			}
		}
	}

	if p.released {
		p.released = false
		p.held = 0
		return in
	}
	p.held++
	if p.held >= chargeTicks {
		in.ShootReleased = true
		p.released = true
		return in
	}
	in.Shoot = true
	return in
}

func (p *autopilot) facing(e ecs.Entity) int {
	if pl, ok := ecs.Get(p.a.World, e, component.PlayerComponent); ok {
		return pl.Facing
	}
	return 1
}
