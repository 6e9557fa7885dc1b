// Package entity builds bosses, projectiles, effects and the player into an
// ecs.World. Factory is the behavior.Factory handed to every controller.
package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/prefabs"
	"github.com/milk9111/robotmasters/sense"
)

// Entity types understood by Fetch.
const (
	TypeBoss       = "boss"
	TypeProjectile = "projectile"
	TypeEffect     = "effect"
)

var ErrUnknownType = errors.New("entity: unknown entity type")

// StateChange is the payload of ecs.EventBossChange.
type StateChange struct {
	Entity   ecs.Entity
	Boss     string
	Current  behavior.StateID
	Previous behavior.StateID
}

// Destroyed is the payload of ecs.EventDestroyed.
type Destroyed struct {
	Entity ecs.Entity
	Boss   string
}

// Options configure a Factory.
type Options struct {
	Catalog     *behavior.Catalog
	Projectiles map[string]prefabs.ProjectileSpec
	Player      prefabs.PlayerSpec
	Sounds      behavior.SoundRequester
	Logger      *zap.Logger
	// Seed makes controller randomness reproducible. Each new controller
	// draws from its own stream.
	Seed uint64
}

// Factory creates entities on request. Spawns requested during a tick are
// queued and built by Flush, so systems never mutate the stores they are
// iterating.
type Factory struct {
	w           *ecs.World
	catalog     *behavior.Catalog
	projectiles map[string]prefabs.ProjectileSpec
	player      prefabs.PlayerSpec
	sounds      behavior.SoundRequester
	log         *zap.Logger
	seed        uint64
	streams     uint64

	pending []request
	pools   map[string][]*pooled
	active  map[*behavior.Controller]*active
}

type request struct {
	entityType string
	variant    string
	props      behavior.Properties
}

type pooled struct {
	ctrl *behavior.Controller
	body *component.PhysicsBody
}

type active struct {
	entity ecs.Entity
	pooled *pooled
}

var _ behavior.Factory = (*Factory)(nil)

func NewFactory(w *ecs.World, opts Options) *Factory {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	f := &Factory{
		w:           w,
		catalog:     opts.Catalog,
		projectiles: opts.Projectiles,
		player:      opts.Player,
		sounds:      opts.Sounds,
		log:         log,
		seed:        opts.Seed,
		pools:       map[string][]*pooled{},
		active:      map[*behavior.Controller]*active{},
	}
	if f.catalog != nil {
		f.catalog.OnReload(func(name string, _ *behavior.Definition) {
			// Idle controllers hold the old definition.
			delete(f.pools, name)
			f.log.Info("boss pool dropped after reload", zap.String("boss", name))
		})
	}
	return f
}

// Fetch validates the request and returns a handle that queues the spawn.
func (f *Factory) Fetch(entityType, variant string) (behavior.Spawnable, error) {
	switch entityType {
	case TypeBoss:
		if f.catalog == nil {
			return nil, fmt.Errorf("fetch boss %q: no catalog", variant)
		}
		if _, err := f.catalog.Get(variant); err != nil {
			return nil, err
		}
	case TypeProjectile, TypeEffect:
		if _, ok := f.projectiles[variant]; !ok {
			return nil, fmt.Errorf("fetch %s %q: %w", entityType, variant, &behavior.ConfigError{Entity: variant, Field: "projectiles", Err: errors.New("no such prefab")})
		}
	default:
		return nil, fmt.Errorf("fetch %q: %w", entityType, ErrUnknownType)
	}
	return spawnable{f: f, entityType: entityType, variant: variant}, nil
}

type spawnable struct {
	f          *Factory
	entityType string
	variant    string
}

func (s spawnable) Spawn(props behavior.Properties) error {
	copied := make(behavior.Properties, len(props))
	for k, v := range props {
		copied[k] = v
	}
	s.f.pending = append(s.f.pending, request{entityType: s.entityType, variant: s.variant, props: copied})
	return nil
}

// Pending reports how many spawns are queued.
func (f *Factory) Pending() int {
	return len(f.pending)
}

// Flush builds every queued spawn. A spawn that fails is logged and
// skipped; the returned error joins all failures.
func (f *Factory) Flush() error {
	queue := f.pending
	f.pending = nil
	var errs []error
	for _, req := range queue {
		var err error
		switch req.entityType {
		case TypeBoss:
			_, err = f.SpawnBoss(req.variant, req.props)
		case TypeProjectile:
			_, err = f.SpawnProjectile(req.variant, req.props)
		case TypeEffect:
			_, err = f.SpawnEffect(req.variant, req.props)
		default:
			err = ErrUnknownType
		}
		if err != nil {
			f.log.Warn("spawn skipped",
				zap.String("type", req.entityType),
				zap.String("variant", req.variant),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("spawn %s %q: %w", req.entityType, req.variant, err))
		}
	}
	return errors.Join(errs...)
}

// SpawnBoss builds a boss entity right away, reusing an idle controller
// for the same boss when one exists.
func (f *Factory) SpawnBoss(name string, props behavior.Properties) (ecs.Entity, error) {
	if f.catalog == nil {
		return 0, fmt.Errorf("spawn boss %q: no catalog", name)
	}
	p, err := f.acquire(name)
	if err != nil {
		return 0, err
	}
	if err := p.ctrl.Spawn(props); err != nil {
		f.release(name, p)
		return 0, err
	}

	e := f.w.CreateEntity()
	x, y := p.ctrl.Body().Position()
	_ = ecs.Add(f.w, e, component.TransformComponent, &component.Transform{X: x, Y: y})
	_ = ecs.Add(f.w, e, component.PhysicsBodyComponent, p.body)
	_ = ecs.Add(f.w, e, component.BossComponent, &component.Boss{Name: name, Controller: p.ctrl})
	_ = ecs.Add(f.w, e, component.AnimationComponent, &component.Animation{Key: p.ctrl.AnimationKey()})
	f.active[p.ctrl] = &active{entity: e, pooled: p}

	f.log.Debug("boss spawned", zap.String("boss", name), zap.Stringer("entity", e))
	return e, nil
}

func (f *Factory) acquire(name string) (*pooled, error) {
	if idle := f.pools[name]; len(idle) > 0 {
		p := idle[len(idle)-1]
		f.pools[name] = idle[:len(idle)-1]
		return p, nil
	}

	def, err := f.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	body := NewBody(def.Body.Width, def.Body.Height, def.Body.Mass, def.Body.Friction, false)
	f.streams++
	ctrl, err := behavior.NewController(def, behavior.Deps{
		Body:          body.Sense,
		Target:        playerTarget{w: f.w},
		Sounds:        f.sounds,
		Factory:       f,
		Logger:        f.log,
		Rand:          rand.New(rand.NewPCG(f.seed, f.streams)),
		OnStateChange: f.stateChanged,
		OnDestroyed:   f.destroyed,
	})
	if err != nil {
		return nil, err
	}
	return &pooled{ctrl: ctrl, body: body}, nil
}

func (f *Factory) release(name string, p *pooled) {
	p.body.Body.SetVelocity(0, 0)
	f.pools[name] = append(f.pools[name], p)
}

func (f *Factory) stateChanged(c *behavior.Controller, current, previous behavior.StateID) {
	a := f.active[c]
	if a == nil {
		return
	}
	f.w.Events().Push(ecs.Event{Type: ecs.EventBossChange, Data: StateChange{
		Entity:   a.entity,
		Boss:     c.Name(),
		Current:  current,
		Previous: previous,
	}})
}

func (f *Factory) destroyed(c *behavior.Controller) {
	a := f.active[c]
	if a == nil {
		return
	}
	delete(f.active, c)
	f.w.Events().Push(ecs.Event{Type: ecs.EventDestroyed, Data: Destroyed{Entity: a.entity, Boss: c.Name()}})
	f.w.DestroyEntity(a.entity)
	f.release(c.Name(), a.pooled)
}

// Despawn removes a live boss without running its defeat sequence, e.g.
// when the level is torn down.
func (f *Factory) Despawn(e ecs.Entity) bool {
	boss, ok := ecs.Get(f.w, e, component.BossComponent)
	if !ok {
		return false
	}
	a := f.active[boss.Controller]
	delete(f.active, boss.Controller)
	f.w.DestroyEntity(e)
	if a != nil {
		f.release(boss.Name, a.pooled)
	}
	return true
}

// Idle reports the pooled controller count per boss.
func (f *Factory) Idle() map[string]int {
	out := make(map[string]int, len(f.pools))
	for name, p := range f.pools {
		out[name] = len(p)
	}
	return out
}

// Bosses lists live boss names, sorted.
func (f *Factory) Bosses() []string {
	var names []string
	for c := range f.active {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// NewBody creates an unattached Chipmunk body and box shape. The physics
// system adds both to its space the first time it sees the entity.
func NewBody(width, height, mass, friction float64, sensor bool) *component.PhysicsBody {
	if width <= 0 {
		width = 16
	}
	if height <= 0 {
		height = 16
	}
	if mass <= 0 {
		mass = 1
	}
	// Infinite moment keeps actors upright.
	body := cp.NewBody(mass, cp.INFINITY)
	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(friction)
	shape.SetSensor(sensor)
	return &component.PhysicsBody{
		Body:     body,
		Shape:    shape,
		Sense:    sense.NewCPBody(body),
		Width:    width,
		Height:   height,
		Mass:     mass,
		Friction: friction,
		Sensor:   sensor,
	}
}

// playerTarget resolves the player's position each time it is asked.
type playerTarget struct {
	w *ecs.World
}

func (t playerTarget) TargetPosition() (x, y float64, ok bool) {
	e, ok := ecs.First(t.w, component.PlayerTagComponent)
	if !ok {
		return 0, 0, false
	}
	tr, ok := ecs.Get(t.w, e, component.TransformComponent)
	if !ok {
		return 0, 0, false
	}
	return tr.X, tr.Y, true
}
