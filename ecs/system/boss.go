package system

import (
	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

// BossSystem ticks every boss controller and mirrors its animation key.
type BossSystem struct{}

func NewBossSystem() *BossSystem { return &BossSystem{} }

func (s *BossSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Delta()
	ecs.ForEach(w, component.BossComponent, func(e ecs.Entity, boss *component.Boss) {
		if boss.Controller == nil {
			return
		}
		boss.Controller.Update(dt)
		// The defeat sequence may have destroyed the entity.
		if !w.IsAlive(e) {
			return
		}
		if anim, ok := ecs.Get(w, e, component.AnimationComponent); ok {
			anim.Play(boss.Controller.AnimationKey())
		}
	})
}

// LiveBosses counts bosses that have not been destroyed.
func LiveBosses(w *ecs.World) int {
	n := 0
	ecs.ForEach(w, component.BossComponent, func(_ ecs.Entity, boss *component.Boss) {
		if boss.Controller != nil && boss.Controller.Lifecycle() != behavior.Destroyed {
			n++
		}
	})
	return n
}
