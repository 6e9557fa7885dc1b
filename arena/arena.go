// Package arena assembles a playable boss fight: the world, the prefab
// catalog, the entity factory, the systems in tick order and a level.
// Nothing here depends on a window, so the same assembly drives the
// interactive host, the headless sim command and tests.
package arena

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/ecs/entity"
	"github.com/milk9111/robotmasters/ecs/system"
	"github.com/milk9111/robotmasters/levels"
	"github.com/milk9111/robotmasters/prefabs"
)

var ErrNoBoss = errors.New("arena: no boss could be placed")

type Options struct {
	// Level is an embedded level name; LevelData wins when set.
	Level     string
	LevelData *levels.Level
	// Boss overrides every boss placement in the level.
	Boss     string
	Seed     uint64
	Gravity  float64
	Substeps int

	Input   system.InputSource
	Sounds  behavior.SoundRequester
	Catalog *behavior.Catalog
	Logger  *zap.Logger
}

// Arena is one running fight.
type Arena struct {
	World   *ecs.World
	Catalog *behavior.Catalog
	Factory *entity.Factory
	Physics *system.PhysicsSystem
	Damage  *system.DamageSystem
	Spawner *system.SpawnSystem
	Level   *levels.Level
	Loaded  entity.Loaded

	log   *zap.Logger
	trace []TraceEntry
}

// TraceEntry is one boss state change or destruction, in tick order.
type TraceEntry struct {
	Tick      uint64
	Time      float64
	Entity    ecs.Entity
	Boss      string
	From      behavior.StateID
	To        behavior.StateID
	Destroyed bool
}

func (t TraceEntry) String() string {
	if t.Destroyed {
		return fmt.Sprintf("%6d %8.3fs %-14s %s destroyed", t.Tick, t.Time, t.Boss, t.Entity)
	}
	from := string(t.From)
	if from == "" {
		from = "-"
	}
	return fmt.Sprintf("%6d %8.3fs %-14s %s -> %s", t.Tick, t.Time, t.Boss, from, t.To)
}

func New(opts Options) (*Arena, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = behavior.NewCatalog(behavior.Options{RequiredDamageTags: behavior.DefaultDamageTags}, log)
		if err := catalog.LoadAll(); err != nil {
			// Bosses that compiled stay usable.
			log.Warn("some boss prefabs failed to compile", zap.Error(err))
		}
	}

	projectiles, err := prefabs.LoadProjectilesSpec()
	if err != nil {
		return nil, fmt.Errorf("arena: projectiles: %w", err)
	}
	player, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return nil, fmt.Errorf("arena: player: %w", err)
	}

	lvl := opts.LevelData
	if lvl == nil {
		name := opts.Level
		if name == "" {
			name = "arena"
		}
		if lvl, err = levels.Load(name); err != nil {
			return nil, fmt.Errorf("arena: %w", err)
		}
	}

	w := ecs.NewWorld()
	a := &Arena{
		World:   w,
		Catalog: catalog,
		Level:   lvl,
		log:     log,
	}
	a.Factory = entity.NewFactory(w, entity.Options{
		Catalog:     catalog,
		Projectiles: projectiles.Projectiles,
		Player:      player,
		Sounds:      opts.Sounds,
		Logger:      log,
		Seed:        opts.Seed,
	})
	a.Physics = system.NewPhysicsSystem(system.PhysicsOptions{
		Gravity:  opts.Gravity,
		Substeps: opts.Substeps,
		Logger:   log,
	})
	a.Damage = system.NewDamageSystem(log)
	a.Spawner = system.NewSpawnSystem(a.Factory)

	w.AddSystem(system.NewInputSystem(opts.Input))
	w.AddSystem(system.NewPlayerControllerSystem(a.Factory))
	w.AddSystem(system.NewBossSystem())
	w.AddSystem(a.Physics)
	w.AddSystem(a.Damage)
	w.AddSystem(system.NewTTLSystem())
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(ecs.SystemFunc(a.record))
	w.AddSystem(a.Spawner)

	loaded, err := a.Factory.BuildLevel(lvl, entity.LevelOptions{Boss: opts.Boss})
	a.Loaded = loaded
	if len(loaded.Bosses) == 0 {
		if err != nil {
			return nil, errors.Join(ErrNoBoss, err)
		}
		return nil, ErrNoBoss
	}
	if err != nil {
		log.Warn("level built with skipped entities", zap.Error(err))
	}
	log.Info("arena ready",
		zap.Int("solids", loaded.Solids),
		zap.Strings("bosses", a.Factory.Bosses()),
	)
	return a, nil
}

// record drains boss events into the trace before the tick ends.
func (a *Arena) record(w *ecs.World) {
	for _, evt := range w.Events().Drain("") {
		switch evt.Type {
		case ecs.EventBossChange:
			sc, ok := evt.Data.(entity.StateChange)
			if !ok {
				continue
			}
			a.trace = append(a.trace, TraceEntry{
				Tick:   w.Tick(),
				Time:   w.Elapsed(),
				Entity: sc.Entity,
				Boss:   sc.Boss,
				From:   sc.Previous,
				To:     sc.Current,
			})
		case ecs.EventDestroyed:
			d, ok := evt.Data.(entity.Destroyed)
			if !ok {
				continue
			}
			a.trace = append(a.trace, TraceEntry{
				Tick:      w.Tick(),
				Time:      w.Elapsed(),
				Entity:    d.Entity,
				Boss:      d.Boss,
				Destroyed: true,
			})
		}
	}
}

// Step advances the fight by one tick.
func (a *Arena) Step(delta float64) {
	a.World.Update(delta)
}

// Run steps up to ticks times and stops early once the fight is over. It
// returns the number of ticks taken.
func (a *Arena) Run(ticks int, delta float64) int {
	for i := 0; i < ticks; i++ {
		if a.Over() {
			return i
		}
		a.Step(delta)
	}
	return ticks
}

// Over reports whether every boss is gone or the player is down.
func (a *Arena) Over() bool {
	if p, ok := a.Player(); ok && p.Defeated() {
		return true
	}
	return system.LiveBosses(a.World) == 0
}

// Trace returns the recorded state changes.
func (a *Arena) Trace() []TraceEntry {
	return append([]TraceEntry(nil), a.trace...)
}

func (a *Arena) Player() (*component.Player, bool) {
	if !a.World.IsAlive(a.Loaded.Player) {
		return nil, false
	}
	return ecs.Get(a.World, a.Loaded.Player, component.PlayerComponent)
}

// Boss finds the first live boss with the given name; an empty name
// matches any boss.
func (a *Arena) Boss(name string) (*behavior.Controller, ecs.Entity, bool) {
	for _, e := range ecs.Query(a.World, component.BossComponent) {
		boss, _ := ecs.Get(a.World, e, component.BossComponent)
		if name == "" || boss.Name == name {
			return boss.Controller, e, true
		}
	}
	return nil, 0, false
}

// OnDefeat forwards to the damage system.
func (a *Arena) OnDefeat(fn system.DefeatFunc) {
	a.Damage.OnDefeat(fn)
}

// ApplyReload recompiles whatever prefab the changed file belongs to.
// Live bosses keep their definition until they respawn.
func (a *Arena) ApplyReload(path string) {
	names, err := a.Catalog.ReloadPath(path)
	if err != nil {
		a.log.Warn("prefab reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if len(names) > 0 {
		a.log.Info("prefabs reloaded", zap.Strings("bosses", names))
	}
}
