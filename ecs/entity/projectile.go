package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/damage"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

func facingOf(props behavior.Properties) float64 {
	if v, ok := props.Float("facing"); ok && v < 0 {
		return -1
	}
	return 1
}

// SpawnProjectile builds a projectile from its prefab. Without explicit
// speed_x/speed_y props it flies at the prefab speed along facing.
func (f *Factory) SpawnProjectile(variant string, props behavior.Properties) (ecs.Entity, error) {
	spec, ok := f.projectiles[variant]
	if !ok {
		return 0, fmt.Errorf("projectile %q: %w", variant, ErrUnknownType)
	}
	x, _ := props.Float("x")
	y, _ := props.Float("y")
	vx, _ := props.Float("speed_x")
	vy, _ := props.Float("speed_y")
	if vx == 0 && vy == 0 {
		vx = spec.Speed * facingOf(props)
	}

	body := NewBody(spec.Width, spec.Height, 1, 0, true)
	body.Sense.SetGravityScale(spec.GravityScale)
	body.Body.SetPosition(cp.Vector{X: x, Y: y})
	body.Body.SetVelocity(vx, vy)

	tag := spec.Tag
	if tag == "" {
		tag = variant
	}
	faction := component.Faction(spec.Faction)
	if faction == "" {
		faction = component.FactionEnemy
	}
	flags := make(map[string]bool, len(spec.Flags))
	for k, v := range spec.Flags {
		flags[k] = v
	}
	if extra, ok := props["flags"].(map[string]bool); ok {
		for k, v := range extra {
			flags[k] = v
		}
	}
	owner, _ := props.String("owner")

	e := f.w.CreateEntity()
	_ = ecs.Add(f.w, e, component.TransformComponent, &component.Transform{X: x, Y: y})
	_ = ecs.Add(f.w, e, component.PhysicsBodyComponent, body)
	_ = ecs.Add(f.w, e, component.ProjectileComponent, &component.Projectile{
		Tag:      damage.Tag(tag),
		Faction:  faction,
		Damage:   spec.Damage,
		Flags:    flags,
		Piercing: spec.Piercing,
		Owner:    owner,
		Hit:      map[uint64]bool{},
	})
	_ = ecs.Add(f.w, e, component.AnimationComponent, &component.Animation{Key: variant})
	if spec.TTL > 0 {
		_ = ecs.Add(f.w, e, component.TTLComponent, &component.TTL{Remaining: spec.TTL})
	}
	if spec.Sound != "" && f.sounds != nil {
		f.sounds.RequestSound(spec.Sound, false)
	}
	return e, nil
}

// SpawnEffect builds a body-less visual such as an explosion.
func (f *Factory) SpawnEffect(variant string, props behavior.Properties) (ecs.Entity, error) {
	spec, ok := f.projectiles[variant]
	if !ok {
		return 0, fmt.Errorf("effect %q: %w", variant, ErrUnknownType)
	}
	x, _ := props.Float("x")
	y, _ := props.Float("y")

	e := f.w.CreateEntity()
	_ = ecs.Add(f.w, e, component.TransformComponent, &component.Transform{X: x, Y: y})
	_ = ecs.Add(f.w, e, component.EffectTagComponent, &component.EffectTag{})
	_ = ecs.Add(f.w, e, component.AnimationComponent, &component.Animation{Key: variant})
	ttl := spec.TTL
	if ttl <= 0 {
		ttl = 0.5
	}
	_ = ecs.Add(f.w, e, component.TTLComponent, &component.TTL{Remaining: ttl})
	if spec.Sound != "" && f.sounds != nil {
		f.sounds.RequestSound(spec.Sound, false)
	}
	return e, nil
}
