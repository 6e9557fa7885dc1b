package entity

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

// SpawnPlayer builds the player at x, y facing right.
func (f *Factory) SpawnPlayer(x, y float64) ecs.Entity {
	tuning := f.player
	body := NewBody(tuning.Width, tuning.Height, 1, 0, false)
	body.Body.SetPosition(cp.Vector{X: x, Y: y})

	e := f.w.CreateEntity()
	_ = ecs.Add(f.w, e, component.TransformComponent, &component.Transform{X: x, Y: y})
	_ = ecs.Add(f.w, e, component.PhysicsBodyComponent, body)
	_ = ecs.Add(f.w, e, component.PlayerTagComponent, &component.PlayerTag{})
	_ = ecs.Add(f.w, e, component.PlayerComponent, &component.Player{
		Tuning: tuning,
		Health: tuning.Health,
		Facing: 1,
	})
	_ = ecs.Add(f.w, e, component.InputComponent, &component.Input{})
	_ = ecs.Add(f.w, e, component.AnimationComponent, &component.Animation{Key: "idle"})
	return e
}
