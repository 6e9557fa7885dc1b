package system_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/behavior/mocks"
	"github.com/milk9111/robotmasters/damage"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/ecs/entity"
	"github.com/milk9111/robotmasters/ecs/system"
	"github.com/milk9111/robotmasters/prefabs"
)

const dt = 1.0 / 60

func TestTTLSystem(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(system.NewTTLSystem())
	short := w.CreateEntity()
	long := w.CreateEntity()
	require.NoError(t, ecs.Add(w, short, component.TTLComponent, &component.TTL{Remaining: 0.06}))
	require.NoError(t, ecs.Add(w, long, component.TTLComponent, &component.TTL{Remaining: 1}))

	for i := 0; i < 3; i++ {
		w.Update(dt)
	}
	assert.True(t, w.IsAlive(short))
	w.Update(dt)
	assert.False(t, w.IsAlive(short))
	assert.True(t, w.IsAlive(long))
}

func TestInputSystemCopiesState(t *testing.T) {
	w := ecs.NewWorld()
	state := component.Input{MoveX: -1, Jump: true}
	w.AddSystem(system.NewInputSystem(system.InputFunc(func() component.Input { return state })))
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.InputComponent, &component.Input{}))

	w.Update(dt)
	in, _ := ecs.Get(w, e, component.InputComponent)
	assert.Equal(t, state, *in)

	// A nil source leaves input alone.
	w2 := ecs.NewWorld()
	w2.AddSystem(system.NewInputSystem(nil))
	w2.Update(dt)
}

type flusher struct {
	calls int
	err   error
}

func (f *flusher) Flush() error {
	f.calls++
	return f.err
}

func TestSpawnSystemCountsFailures(t *testing.T) {
	f := &flusher{}
	s := system.NewSpawnSystem(f)
	w := ecs.NewWorld()
	w.AddSystem(s)

	w.Update(dt)
	f.err = errors.New("boom")
	w.Update(dt)
	w.Update(dt)

	assert.Equal(t, 3, f.calls)
	assert.Equal(t, 2, s.Failed())
}

func TestAnimationSystemAdvancesClip(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(system.NewAnimationSystem())
	e := w.CreateEntity()
	anim := &component.Animation{Key: "idle"}
	require.NoError(t, ecs.Add(w, e, component.AnimationComponent, anim))

	w.Update(0.5)
	assert.Equal(t, 0.5, anim.Elapsed)
	anim.Play("idle")
	assert.Equal(t, 0.5, anim.Elapsed)
	anim.Play("run")
	assert.Zero(t, anim.Elapsed)
}

const dummySpec = `
name: dummy
health: 3
states:
  - name: idle
    animation: idle
damage:
  table:
    bullet: 1
    charged_shot: {flag: fully_charged, then: 3, else: 2}
  immune: [fireball]
`

func spawnDummy(t *testing.T, w *ecs.World) (ecs.Entity, *behavior.Controller) {
	t.Helper()
	var spec prefabs.BossSpec
	require.NoError(t, yaml.Unmarshal([]byte(dummySpec), &spec))
	def, err := behavior.Compile(spec, behavior.Options{RequiredDamageTags: behavior.DefaultDamageTags})
	require.NoError(t, err)

	body := entity.NewBody(20, 20, 1, 0, false)
	ctrl, err := behavior.NewController(def, behavior.Deps{Body: body.Sense})
	require.NoError(t, err)
	require.NoError(t, ctrl.Spawn(nil))

	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, &component.Transform{}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, body))
	require.NoError(t, ecs.Add(w, e, component.BossComponent, &component.Boss{Name: "dummy", Controller: ctrl}))
	return e, ctrl
}

func shot(t *testing.T, w *ecs.World, tag string, faction component.Faction, piercing bool, flags map[string]bool) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.ProjectileComponent, &component.Projectile{
		Tag:      damage.Tag(tag),
		Faction:  faction,
		Damage:   2,
		Flags:    flags,
		Piercing: piercing,
		Hit:      map[uint64]bool{},
	}))
	return e
}

func hit(w *ecs.World, projectile, target ecs.Entity) {
	w.Events().Push(ecs.Event{Type: ecs.EventHit, Data: ecs.HitEvent{Projectile: projectile, Target: target}})
}

func TestDamageSystemBossHits(t *testing.T) {
	w := ecs.NewWorld()
	ds := system.NewDamageSystem(nil)
	boss, ctrl := spawnDummy(t, w)
	var defeated []string
	ds.OnDefeat(func(name string, e ecs.Entity) {
		assert.Equal(t, boss, e)
		defeated = append(defeated, name)
	})

	// Not ready yet: the shot passes through.
	early := shot(t, w, "bullet", component.FactionPlayer, false, nil)
	hit(w, early, boss)
	ds.Update(w)
	assert.True(t, w.IsAlive(early))
	assert.Equal(t, 3, ctrl.Health())

	ctrl.Update(dt)
	require.True(t, ctrl.Lifecycle().Vulnerable())

	hit(w, early, boss)
	ds.Update(w)
	assert.False(t, w.IsAlive(early), "a consumed bullet is removed")
	assert.Equal(t, 2, ctrl.Health())

	immune := shot(t, w, "fireball", component.FactionPlayer, false, nil)
	hit(w, immune, boss)
	ds.Update(w)
	assert.Equal(t, 2, ctrl.Health())

	beam := shot(t, w, "charged_shot", component.FactionPlayer, true, map[string]bool{"fully_charged": false})
	hit(w, beam, boss)
	hit(w, beam, boss)
	ds.Update(w)
	assert.True(t, w.IsAlive(beam), "piercing shots survive")
	assert.Equal(t, 0, ctrl.Health(), "one projectile damages a target once")
	assert.Equal(t, behavior.Defeated, ctrl.Lifecycle())
	assert.Equal(t, []string{"dummy"}, defeated)

	enemy := shot(t, w, "bullet", component.FactionEnemy, false, nil)
	hit(w, enemy, boss)
	ds.Update(w)
	assert.True(t, w.IsAlive(enemy))
}

func TestDamageSystemPlayerHits(t *testing.T) {
	w := ecs.NewWorld()
	ds := system.NewDamageSystem(nil)
	tuning, err := prefabs.LoadPlayerSpec()
	require.NoError(t, err)

	p := w.CreateEntity()
	player := &component.Player{Tuning: tuning, Health: 5, Facing: 1}
	require.NoError(t, ecs.Add(w, p, component.PlayerComponent, player))

	first := shot(t, w, "fireball", component.FactionEnemy, false, nil)
	hit(w, first, p)
	ds.Update(w)
	assert.Equal(t, 3, player.Health)
	assert.Equal(t, tuning.Invincible, player.Invincible)
	assert.False(t, w.IsAlive(first))

	second := shot(t, w, "fireball", component.FactionEnemy, false, nil)
	hit(w, second, p)
	ds.Update(w)
	assert.Equal(t, 3, player.Health, "invincible after a hit")
	assert.False(t, w.IsAlive(second))

	player.Invincible = 0
	third := shot(t, w, "fireball", component.FactionEnemy, false, nil)
	fourth := shot(t, w, "fireball", component.FactionEnemy, false, nil)
	hit(w, third, p)
	ds.Update(w)
	player.Invincible = 0
	hit(w, fourth, p)
	ds.Update(w)
	assert.Zero(t, player.Health)
	assert.True(t, player.Defeated())

	friendly := shot(t, w, "bullet", component.FactionPlayer, false, nil)
	hit(w, friendly, p)
	ds.Update(w)
	assert.True(t, w.IsAlive(friendly))
}

func newPlayer(t *testing.T, w *ecs.World) (ecs.Entity, *component.Player, *component.Input, *component.PhysicsBody) {
	t.Helper()
	tuning, err := prefabs.LoadPlayerSpec()
	require.NoError(t, err)
	e := w.CreateEntity()
	player := &component.Player{Tuning: tuning, Health: tuning.Health, Facing: 1}
	input := &component.Input{}
	body := entity.NewBody(tuning.Width, tuning.Height, 1, 0, false)
	require.NoError(t, ecs.Add(w, e, component.PlayerComponent, player))
	require.NoError(t, ecs.Add(w, e, component.InputComponent, input))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, body))
	require.NoError(t, ecs.Add(w, e, component.AnimationComponent, &component.Animation{}))
	return e, player, input, body
}

func TestPlayerControllerShoots(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockFactory(ctrl)
	spawnable := mocks.NewMockSpawnable(ctrl)

	w := ecs.NewWorld()
	w.AddSystem(system.NewPlayerControllerSystem(factory))
	e, player, input, body := newPlayer(t, w)

	var fired []behavior.Properties
	capture := func(props behavior.Properties) error {
		fired = append(fired, props)
		return nil
	}

	factory.EXPECT().Fetch("projectile", "bullet").Return(spawnable, nil)
	spawnable.EXPECT().Spawn(gomock.Any()).DoAndReturn(capture)

	input.MoveX, input.Shoot = -1, true
	w.Update(dt)
	w.Update(dt)
	require.Len(t, fired, 1)
	assert.Equal(t, -1, player.Facing)
	assert.Equal(t, "player", fired[0]["owner"])
	assert.Nil(t, fired[0]["flags"])
	vx, _ := body.Sense.Velocity()
	assert.Equal(t, -player.Tuning.MoveSpeed, vx)
	anim, _ := ecs.Get(w, e, component.AnimationComponent)
	assert.Equal(t, "jump", anim.Key, "no ground contact without physics")

	// A short tap releases nothing.
	input.Shoot, input.ShootReleased = false, true
	w.Update(dt)
	require.Len(t, fired, 1)
	assert.Zero(t, player.Charge)

	factory.EXPECT().Fetch("projectile", "charged_shot").Return(spawnable, nil)
	spawnable.EXPECT().Spawn(gomock.Any()).DoAndReturn(capture)
	player.Charge = player.Tuning.FullCharge + 0.1
	w.Update(dt)
	require.Len(t, fired, 2)
	assert.Equal(t, map[string]bool{"fully_charged": true}, fired[1]["flags"])
}

func TestPlayerControllerDefeatedStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockFactory(ctrl)

	w := ecs.NewWorld()
	w.AddSystem(system.NewPlayerControllerSystem(factory))
	_, player, input, body := newPlayer(t, w)
	player.Health = 0
	input.MoveX, input.Shoot = 1, true

	w.Update(dt)
	vx, vy := body.Sense.Velocity()
	assert.Zero(t, vx)
	assert.Zero(t, vy)
}

func TestPhysicsSyncsAndReportsOverlaps(t *testing.T) {
	w := ecs.NewWorld()
	ps := system.NewPhysicsSystem(system.PhysicsOptions{Substeps: 2})
	var hits []ecs.HitEvent
	w.AddSystem(ps)
	w.AddSystem(ecs.SystemFunc(func(w *ecs.World) {
		for _, evt := range w.Events().Drain(ecs.EventHit) {
			hits = append(hits, evt.Data.(ecs.HitEvent))
		}
	}))

	floor := w.CreateEntity()
	require.NoError(t, ecs.Add(w, floor, component.TransformComponent, &component.Transform{X: 0, Y: -100}))
	require.NoError(t, ecs.Add(w, floor, component.PhysicsBodyComponent, &component.PhysicsBody{Width: 400, Height: 16, Static: true}))

	boss, _ := spawnDummy(t, w)
	projectile := shot(t, w, "bullet", component.FactionPlayer, false, nil)
	pb := entity.NewBody(6, 4, 1, 0, true)
	require.NoError(t, ecs.Add(w, projectile, component.TransformComponent, &component.Transform{}))
	require.NoError(t, ecs.Add(w, projectile, component.PhysicsBodyComponent, pb))

	w.Update(dt)
	require.NotEmpty(t, hits)
	assert.Equal(t, ecs.HitEvent{Projectile: projectile, Target: boss}, hits[0])

	tr, _ := ecs.Get(w, boss, component.TransformComponent)
	assert.Less(t, tr.Y, 0.0, "gravity pulls bodies down")

	require.True(t, ps.Space().ContainsBody(pb.Body))
	require.True(t, w.DestroyEntity(projectile))
	w.Update(dt)
	assert.False(t, ps.Space().ContainsBody(pb.Body))
}
