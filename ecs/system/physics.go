// Package system holds the per-tick systems of the arena simulation.
package system

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeActor
	collisionTypeProjectile
)

// DefaultGravity is the downward acceleration in world units per second
// squared.
const DefaultGravity = 900.0

type PhysicsSystem struct {
	space    *cp.Space
	substeps int
	log      *zap.Logger

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity
	overlaps map[[2]ecs.Entity]struct{}
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

type PhysicsOptions struct {
	Gravity float64
	// Substeps splits each tick into equal space steps.
	Substeps int
	Logger   *zap.Logger
}

func NewPhysicsSystem(opts PhysicsOptions) *PhysicsSystem {
	if opts.Gravity == 0 {
		opts.Gravity = DefaultGravity
	}
	if opts.Substeps <= 0 {
		opts.Substeps = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: -opts.Gravity})
	ps := &PhysicsSystem{
		space:    space,
		substeps: opts.Substeps,
		log:      opts.Logger,
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]ecs.Entity),
		overlaps: make(map[[2]ecs.Entity]struct{}),
	}
	ps.installHandlers()
	return ps
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.syncEntities(w)

	if dt := w.Delta(); dt > 0 {
		step := dt / float64(ps.substeps)
		for i := 0; i < ps.substeps; i++ {
			ps.space.Step(step)
		}
	}

	ecs.ForEach(w, component.PhysicsBodyComponent, func(_ ecs.Entity, pb *component.PhysicsBody) {
		if pb.Sense != nil && !pb.Static {
			pb.Sense.Sense()
		}
	})
	ps.syncTransforms(w)
	ps.flushOverlaps(w)
}

// installHandlers records projectile overlaps during the step. Callbacks
// only collect pairs; events are pushed after the step completes.
func (ps *PhysicsSystem) installHandlers() {
	handler := ps.space.NewCollisionHandler(collisionTypeProjectile, collisionTypeActor)
	handler.UserData = ps
	handler.PreSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok {
			return false
		}
		shapeA, shapeB := arb.Shapes()
		projectile, okA := sys.shapes[shapeA]
		target, okB := sys.shapes[shapeB]
		if okA && okB {
			sys.overlaps[[2]ecs.Entity{projectile, target}] = struct{}{}
		}
		return false
	}
}

func (ps *PhysicsSystem) flushOverlaps(w *ecs.World) {
	for pair := range ps.overlaps {
		delete(ps.overlaps, pair)
		if !w.IsAlive(pair[0]) || !w.IsAlive(pair[1]) {
			continue
		}
		w.Events().Push(ecs.Event{Type: ecs.EventHit, Data: ecs.HitEvent{Projectile: pair[0], Target: pair[1]}})
	}
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent, component.TransformComponent, func(e ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		info := ps.createBodyInfo(w, e, pb, tr)
		ps.entities[e] = info
		for _, s := range info.shapes {
			ps.shapes[s] = e
		}
	})
}

func (ps *PhysicsSystem) collisionType(w *ecs.World, e ecs.Entity) cp.CollisionType {
	switch {
	case ecs.Has(w, e, component.ProjectileComponent):
		return collisionTypeProjectile
	case ecs.Has(w, e, component.BossComponent), ecs.Has(w, e, component.PlayerTagComponent):
		return collisionTypeActor
	default:
		return collisionTypeSolid
	}
}

func (ps *PhysicsSystem) createBodyInfo(w *ecs.World, e ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) *bodyInfo {
	if pb.Static {
		bb := cp.BB{
			L: tr.X - pb.Width/2,
			B: tr.Y - pb.Height/2,
			R: tr.X + pb.Width/2,
			T: tr.Y + pb.Height/2,
		}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(pb.Friction)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		pb.Body = ps.space.StaticBody
		pb.Shape = shape
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	if pb.Body == nil {
		mass := pb.Mass
		if mass <= 0 {
			mass = 1
		}
		pb.Body = cp.NewBody(mass, cp.INFINITY)
		pb.Body.SetPosition(cp.Vector{X: tr.X, Y: tr.Y})
	}
	if pb.Shape == nil {
		pb.Shape = cp.NewBox(pb.Body, pb.Width, pb.Height, 0)
		pb.Shape.SetFriction(pb.Friction)
		pb.Shape.SetSensor(pb.Sensor)
	}
	pb.Shape.SetCollisionType(ps.collisionType(w, e))
	ps.space.AddBody(pb.Body)
	ps.space.AddShape(pb.Shape)
	return &bodyInfo{body: pb.Body, shapes: []*cp.Shape{pb.Shape}}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent, component.TransformComponent, func(_ ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) {
		if pb.Static || pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		tr.X, tr.Y = pos.X, pos.Y
	})
}

// cleanupEntities removes bodies whose entity died or lost its body.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
			delete(ps.shapes, shape)
		}
		if !info.static && info.body != nil {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		ps.log.Debug("physics body removed", zap.Stringer("entity", e))
	}
}
