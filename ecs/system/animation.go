package system

import (
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

// AnimationSystem advances clip time; frame selection belongs to the
// renderer.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem { return &AnimationSystem{} }

func (s *AnimationSystem) Update(w *ecs.World) {
	dt := w.Delta()
	ecs.ForEach(w, component.AnimationComponent, func(_ ecs.Entity, anim *component.Animation) {
		anim.Elapsed += dt
	})
}
