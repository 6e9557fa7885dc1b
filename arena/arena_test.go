package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/robotmasters/arena"
	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/sound"
)

const dt = 1.0 / 60

func newArena(t *testing.T, boss string) (*arena.Arena, *sound.Recorder) {
	t.Helper()
	rec := &sound.Recorder{}
	a, err := arena.New(arena.Options{Boss: boss, Seed: 3, Substeps: 2, Sounds: rec})
	require.NoError(t, err)
	return a, rec
}

func untilActive(t *testing.T, a *arena.Arena, ctrl *behavior.Controller) {
	t.Helper()
	for i := 0; i < 300 && ctrl.Lifecycle() != behavior.Active; i++ {
		a.Step(dt)
	}
	require.Equal(t, behavior.Active, ctrl.Lifecycle())
}

// chargedHit lands a fully charged shot on e without going through a
// physics overlap.
func chargedHit(t *testing.T, a *arena.Arena, e ecs.Entity) {
	t.Helper()
	shot, err := a.Factory.SpawnProjectile("charged_shot", behavior.Properties{
		"x": 40, "y": 180, "facing": -1,
		"flags": map[string]bool{"fully_charged": true},
	})
	require.NoError(t, err)
	a.World.Events().Push(ecs.Event{Type: ecs.EventHit, Data: ecs.HitEvent{Projectile: shot, Target: e}})
	a.Step(dt)
}

func TestNewPlacesLevel(t *testing.T) {
	a, _ := newArena(t, "")

	assert.Positive(t, a.Loaded.Solids)
	assert.Len(t, a.Loaded.Bosses, 1)
	ctrl, e, ok := a.Boss("reactor_man")
	require.True(t, ok)
	assert.Equal(t, a.Loaded.Bosses[0], e)
	assert.Equal(t, behavior.NotReady, ctrl.Lifecycle())
	assert.Equal(t, -1, ctrl.Facing())

	player, ok := a.Player()
	require.True(t, ok)
	assert.Equal(t, player.Tuning.Health, player.Health)
	assert.False(t, a.Over())
}

func TestNewBossOverride(t *testing.T) {
	a, _ := newArena(t, "guts_tank")
	_, _, ok := a.Boss("guts_tank")
	assert.True(t, ok)
	_, _, ok = a.Boss("reactor_man")
	assert.False(t, ok)
}

func TestNewWithoutPlaceableBoss(t *testing.T) {
	_, err := arena.New(arena.Options{Boss: "glacier_man"})
	require.ErrorIs(t, err, arena.ErrNoBoss)
	require.ErrorIs(t, err, behavior.ErrNotImplemented)

	_, err = arena.New(arena.Options{Level: "missing"})
	require.Error(t, err)
}

func TestEveryPlaceableBossWakesUp(t *testing.T) {
	catalog := behavior.NewCatalog(behavior.Options{RequiredDamageTags: behavior.DefaultDamageTags}, nil)
	require.NoError(t, catalog.LoadAll())

	placeable := 0
	for _, name := range catalog.Names() {
		def, err := catalog.Get(name)
		require.NoError(t, err)
		if def.NotImplemented() != "" {
			continue
		}
		placeable++
		t.Run(name, func(t *testing.T) {
			a, err := arena.New(arena.Options{Boss: name, Catalog: catalog, Seed: 3, Substeps: 2, Sounds: &sound.Recorder{}})
			require.NoError(t, err)
			ctrl, _, ok := a.Boss(name)
			require.True(t, ok)
			for i := 0; i < 600 && ctrl.Lifecycle() == behavior.NotReady; i++ {
				a.Step(dt)
			}
			assert.NotEqual(t, behavior.NotReady, ctrl.Lifecycle(), "%s stuck before the fight", name)
			a.Step(dt)
			assert.Equal(t, behavior.Active, ctrl.Lifecycle())
		})
	}
	assert.GreaterOrEqual(t, placeable, 4)
}

func TestBossWakesUpAndFights(t *testing.T) {
	a, rec := newArena(t, "")
	ctrl, _, ok := a.Boss("reactor_man")
	require.True(t, ok)

	untilActive(t, a, ctrl)
	assert.Contains(t, rec.Assets(), "boss_ready")

	for i := 0; i < 240; i++ {
		a.Step(dt)
	}
	trace := a.Trace()
	require.NotEmpty(t, trace)
	states := ctrl.Definition().States()
	for _, entry := range trace {
		assert.Equal(t, "reactor_man", entry.Boss)
		assert.False(t, entry.Destroyed)
		assert.Contains(t, states, entry.To)
		assert.Contains(t, entry.String(), string(entry.To))
	}
	for i := 1; i < len(trace); i++ {
		assert.LessOrEqual(t, trace[i-1].Tick, trace[i].Tick)
	}
}

func TestDefeatDestroysAndPools(t *testing.T) {
	a, rec := newArena(t, "")
	ctrl, e, ok := a.Boss("reactor_man")
	require.True(t, ok)

	var defeated []string
	a.OnDefeat(func(boss string, _ ecs.Entity) { defeated = append(defeated, boss) })

	untilActive(t, a, ctrl)
	for i := 0; i < 20 && ctrl.Lifecycle() != behavior.Defeated; i++ {
		chargedHit(t, a, e)
		// Wait out the invincibility window.
		for j := 0; j < 35; j++ {
			a.Step(dt)
			if ctrl.Lifecycle() == behavior.Defeated {
				break
			}
		}
	}
	require.Equal(t, behavior.Defeated, ctrl.Lifecycle())
	assert.Equal(t, 0, ctrl.Health())
	assert.Equal(t, []string{"reactor_man"}, defeated)
	assert.Contains(t, rec.Assets(), "boss_defeat")

	for i := 0; i < 150 && a.World.IsAlive(e); i++ {
		a.Step(dt)
	}
	assert.False(t, a.World.IsAlive(e))
	assert.Equal(t, behavior.Destroyed, ctrl.Lifecycle())
	assert.True(t, a.Over())
	assert.Equal(t, 1, a.Factory.Idle()["reactor_man"])

	trace := a.Trace()
	require.NotEmpty(t, trace)
	last := trace[len(trace)-1]
	assert.True(t, last.Destroyed)
	assert.Equal(t, "reactor_man", last.Boss)
	assert.Equal(t, e, last.Entity)
	assert.Equal(t, 0, a.Run(10, dt))
}

func TestApplyReloadKeepsLiveBoss(t *testing.T) {
	a, _ := newArena(t, "")
	before, _, ok := a.Boss("reactor_man")
	require.True(t, ok)

	a.ApplyReload("prefabs/bosses/reactor_man.yaml")
	assert.Empty(t, a.Catalog.Errors())

	after, _, ok := a.Boss("reactor_man")
	require.True(t, ok)
	assert.Same(t, before, after)

	a.ApplyReload("prefabs/scripts/guts_tank.tengo")
	assert.Empty(t, a.Catalog.Errors())
	a.ApplyReload("README.md")
}
