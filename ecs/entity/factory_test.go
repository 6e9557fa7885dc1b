package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/ecs/entity"
	"github.com/milk9111/robotmasters/levels"
	"github.com/milk9111/robotmasters/prefabs"
	"github.com/milk9111/robotmasters/sound"
)

const dummySpec = `
name: dummy
health: 4
body: {width: 20, height: 20}
lifecycle:
  defeat_duration: 0.1
states:
  - name: idle
    animation: idle
damage:
  table: {bullet: 1, charged_shot: 2}
`

func newFactory(t *testing.T) (*ecs.World, *entity.Factory, *behavior.Catalog, *sound.Recorder) {
	t.Helper()
	cat := behavior.NewCatalog(behavior.Options{RequiredDamageTags: behavior.DefaultDamageTags}, nil)
	cat.SetLoader(func(name string) (prefabs.BossSpec, error) {
		if name != "dummy" {
			return prefabs.LoadBossSpec(name)
		}
		var spec prefabs.BossSpec
		err := yaml.Unmarshal([]byte(dummySpec), &spec)
		return spec, err
	})
	require.NoError(t, cat.Load("dummy", "reactor_man", "glacier_man"))

	projectiles, err := prefabs.LoadProjectilesSpec()
	require.NoError(t, err)
	player, err := prefabs.LoadPlayerSpec()
	require.NoError(t, err)

	rec := &sound.Recorder{}
	w := ecs.NewWorld()
	f := entity.NewFactory(w, entity.Options{
		Catalog:     cat,
		Projectiles: projectiles.Projectiles,
		Player:      player,
		Sounds:      rec,
		Seed:        1,
	})
	return w, f, cat, rec
}

func TestFetchValidates(t *testing.T) {
	_, f, _, _ := newFactory(t)

	cases := []struct {
		name       string
		entityType string
		variant    string
		check      func(t *testing.T, err error)
	}{
		{"unknown_type", "pickup", "health", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, entity.ErrUnknownType)
		}},
		{"unknown_projectile", entity.TypeProjectile, "laser", func(t *testing.T, err error) {
			var cfg *behavior.ConfigError
			assert.ErrorAs(t, err, &cfg)
		}},
		{"unknown_boss", entity.TypeBoss, "nobody", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, behavior.ErrConfig)
		}},
		{"projectile", entity.TypeProjectile, "bullet", func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"effect", entity.TypeEffect, "explosion", func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.Fetch(c.entityType, c.variant)
			c.check(t, err)
		})
	}
}

func TestSpawnIsDeferredUntilFlush(t *testing.T) {
	w, f, _, rec := newFactory(t)

	s, err := f.Fetch(entity.TypeProjectile, "bullet")
	require.NoError(t, err)
	props := behavior.Properties{"x": 10, "y": 20, "facing": -1}
	require.NoError(t, s.Spawn(props))
	props["x"] = 999

	assert.Equal(t, 1, f.Pending())
	assert.Empty(t, ecs.Query(w, component.ProjectileComponent))

	require.NoError(t, f.Flush())
	assert.Zero(t, f.Pending())
	shots := ecs.Query(w, component.ProjectileComponent)
	require.Len(t, shots, 1)

	tr, _ := ecs.Get(w, shots[0], component.TransformComponent)
	assert.Equal(t, 10.0, tr.X)
	proj, _ := ecs.Get(w, shots[0], component.ProjectileComponent)
	assert.Equal(t, component.FactionPlayer, proj.Faction)
	assert.EqualValues(t, "bullet", proj.Tag)
	pb, _ := ecs.Get(w, shots[0], component.PhysicsBodyComponent)
	assert.True(t, pb.Sensor)
	vx, _ := pb.Sense.Velocity()
	assert.Equal(t, -300.0, vx)
	ttl, ok := ecs.Get(w, shots[0], component.TTLComponent)
	require.True(t, ok)
	assert.Equal(t, 1.2, ttl.Remaining)
	assert.Equal(t, []string{"buster"}, rec.Assets())
}

func TestProjectileFlagsAndExplicitSpeed(t *testing.T) {
	w, f, _, _ := newFactory(t)

	e, err := f.SpawnProjectile("charged_shot", behavior.Properties{
		"speed_x": 5, "speed_y": 7,
		"flags": map[string]bool{"fully_charged": true},
	})
	require.NoError(t, err)

	proj, _ := ecs.Get(w, e, component.ProjectileComponent)
	assert.True(t, proj.Piercing)
	assert.True(t, proj.Flag("fully_charged"))
	assert.False(t, proj.Flag("other"))
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
	vx, vy := pb.Sense.Velocity()
	assert.Equal(t, 5.0, vx)
	assert.Equal(t, 7.0, vy)
}

func TestFlushSkipsFailures(t *testing.T) {
	w, f, _, _ := newFactory(t)

	good, err := f.Fetch(entity.TypeEffect, "explosion")
	require.NoError(t, err)
	require.NoError(t, good.Spawn(behavior.Properties{"x": 1}))
	broken, err := f.Fetch(entity.TypeBoss, "glacier_man")
	require.NoError(t, err)
	require.NoError(t, broken.Spawn(nil))

	err = f.Flush()
	require.ErrorIs(t, err, behavior.ErrNotImplemented)
	assert.Len(t, ecs.Query(w, component.EffectTagComponent), 1)
	assert.Empty(t, ecs.Query(w, component.BossComponent))
}

func TestBossPooling(t *testing.T) {
	w, f, cat, _ := newFactory(t)

	e, err := f.SpawnBoss("dummy", behavior.Properties{"x": 50, "y": 60})
	require.NoError(t, err)
	boss, ok := ecs.Get(w, e, component.BossComponent)
	require.True(t, ok)
	first := boss.Controller
	assert.Equal(t, []string{"dummy"}, f.Bosses())
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.Equal(t, 50.0, tr.X)
	assert.Equal(t, 60.0, tr.Y)

	require.True(t, f.Despawn(e))
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 1, f.Idle()["dummy"])
	assert.Empty(t, f.Bosses())
	assert.False(t, f.Despawn(e))

	e2, err := f.SpawnBoss("dummy", nil)
	require.NoError(t, err)
	again, _ := ecs.Get(w, e2, component.BossComponent)
	assert.Same(t, first, again.Controller)
	assert.Equal(t, behavior.NotReady, again.Controller.Lifecycle())
	assert.Zero(t, f.Idle()["dummy"])

	// A reload invalidates idle controllers.
	require.True(t, f.Despawn(e2))
	require.NoError(t, cat.Reload("dummy"))
	assert.Zero(t, f.Idle()["dummy"])
	e3, err := f.SpawnBoss("dummy", nil)
	require.NoError(t, err)
	fresh, _ := ecs.Get(w, e3, component.BossComponent)
	assert.NotSame(t, first, fresh.Controller)
}

func TestDefeatedBossReturnsToPool(t *testing.T) {
	w, f, _, _ := newFactory(t)
	e, err := f.SpawnBoss("dummy", nil)
	require.NoError(t, err)
	boss, _ := ecs.Get(w, e, component.BossComponent)
	ctrl := boss.Controller

	ctrl.Update(1.0 / 60)
	require.True(t, ctrl.Lifecycle().Vulnerable())
	assert.Equal(t, 4, ctrl.OnDamaged("charged_shot", nil)+ctrl.OnDamaged("charged_shot", nil))
	require.Equal(t, behavior.Defeated, ctrl.Lifecycle())

	for i := 0; i < 20 && w.IsAlive(e); i++ {
		ctrl.Update(1.0 / 60)
	}
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 1, f.Idle()["dummy"])

	var destroyed []entity.Destroyed
	w.AddSystem(ecs.SystemFunc(func(w *ecs.World) {
		for _, evt := range w.Events().Drain(ecs.EventDestroyed) {
			destroyed = append(destroyed, evt.Data.(entity.Destroyed))
		}
	}))
	w.Update(0)
	require.Len(t, destroyed, 1)
	assert.Equal(t, entity.Destroyed{Entity: e, Boss: "dummy"}, destroyed[0])
}

func TestBuildLevel(t *testing.T) {
	w, f, _, _ := newFactory(t)
	lvl, err := levels.Parse([]byte(`{
  "width": 4, "height": 3, "tile_size": 10,
  "layers": [[0,0,0,0, 0,0,0,0, 1,1,1,1]],
  "entities": [
    {"type": "player", "x": 0, "y": 1},
    {"type": "boss", "x": 3, "y": 1, "props": {"name": "reactor_man"}},
    {"type": "boss", "x": 2, "y": 1, "props": {"name": "glacier_man"}},
    {"type": "pickup", "x": 1, "y": 1}
  ]
}`))
	require.NoError(t, err)

	loaded, err := f.BuildLevel(lvl, entity.LevelOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, behavior.ErrNotImplemented)
	assert.ErrorIs(t, err, entity.ErrUnknownType)

	assert.Equal(t, 1, loaded.Solids)
	require.Len(t, loaded.Bosses, 1)
	assert.True(t, w.IsAlive(loaded.Player))

	tr, _ := ecs.Get(w, loaded.Player, component.TransformComponent)
	assert.Equal(t, 5.0, tr.X)
	assert.Equal(t, 15.0, tr.Y)
	boss, _ := ecs.Get(w, loaded.Bosses[0], component.BossComponent)
	assert.Equal(t, "reactor_man", boss.Name)

	solids := ecs.Query(w, component.SolidTagComponent)
	require.Len(t, solids, 1)
	pb, _ := ecs.Get(w, solids[0], component.PhysicsBodyComponent)
	assert.True(t, pb.Static)
	assert.Equal(t, 40.0, pb.Width)

	t.Run("override", func(t *testing.T) {
		w, f, _, _ := newFactory(t)
		loaded, _ := f.BuildLevel(lvl, entity.LevelOptions{Boss: "dummy"})
		require.Len(t, loaded.Bosses, 2)
		for _, e := range loaded.Bosses {
			boss, _ := ecs.Get(w, e, component.BossComponent)
			assert.Equal(t, "dummy", boss.Name)
		}
	})
}
