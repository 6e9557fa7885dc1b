package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

// DefeatFunc observes a boss reaching zero health.
type DefeatFunc func(boss string, e ecs.Entity)

// DamageSystem resolves the hit events pushed by physics. Player shots
// are negotiated against the boss damage table; enemy shots deal their
// flat damage to the player.
type DamageSystem struct {
	log      *zap.Logger
	onDefeat []DefeatFunc
}

func NewDamageSystem(logger *zap.Logger) *DamageSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DamageSystem{log: logger}
}

// OnDefeat registers fn for every boss defeat.
func (s *DamageSystem) OnDefeat(fn DefeatFunc) {
	s.onDefeat = append(s.onDefeat, fn)
}

func (s *DamageSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, evt := range w.Events().Drain(ecs.EventHit) {
		hit, ok := evt.Data.(ecs.HitEvent)
		if !ok || !w.IsAlive(hit.Projectile) || !w.IsAlive(hit.Target) {
			continue
		}
		proj, ok := ecs.Get(w, hit.Projectile, component.ProjectileComponent)
		if !ok || proj.Hit[uint64(hit.Target)] {
			continue
		}

		consumed := false
		switch {
		case proj.Faction == component.FactionPlayer && ecs.Has(w, hit.Target, component.BossComponent):
			consumed = s.hitBoss(w, hit.Target, proj)
		case proj.Faction == component.FactionEnemy && ecs.Has(w, hit.Target, component.PlayerComponent):
			consumed = s.hitPlayer(w, hit.Target, proj)
		}
		if !consumed {
			continue
		}
		proj.Hit[uint64(hit.Target)] = true
		if !proj.Piercing {
			w.DestroyEntity(hit.Projectile)
		}
	}
}

// hitBoss reports whether the projectile struck a vulnerable boss.
func (s *DamageSystem) hitBoss(w *ecs.World, e ecs.Entity, proj *component.Projectile) bool {
	boss, _ := ecs.Get(w, e, component.BossComponent)
	ctrl := boss.Controller
	if ctrl == nil || !ctrl.Lifecycle().Vulnerable() {
		return false
	}
	if ctrl.Invincible() {
		return true
	}
	dealt := ctrl.OnDamaged(proj.Tag, proj)
	s.log.Debug("boss hit",
		zap.String("boss", boss.Name),
		zap.String("tag", string(proj.Tag)),
		zap.Int("damage", dealt),
		zap.Int("health", ctrl.Health()),
	)
	if ctrl.Lifecycle() == behavior.Defeated {
		s.log.Info("boss defeated", zap.String("boss", boss.Name))
		for _, fn := range s.onDefeat {
			fn(boss.Name, e)
		}
	}
	return true
}

func (s *DamageSystem) hitPlayer(w *ecs.World, e ecs.Entity, proj *component.Projectile) bool {
	player, _ := ecs.Get(w, e, component.PlayerComponent)
	if player.Defeated() {
		return false
	}
	if player.Invincible > 0 {
		return true
	}
	player.Health -= proj.Damage
	if player.Health < 0 {
		player.Health = 0
	}
	player.Invincible = player.Tuning.Invincible
	s.log.Debug("player hit", zap.String("by", string(proj.Tag)), zap.Int("health", player.Health))
	return true
}
