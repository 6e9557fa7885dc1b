package system

import (
	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

const (
	shotOffsetX = 10.0
	flagCharged = "fully_charged"
)

// PlayerControllerSystem turns input into movement and shots. Holding
// shoot charges the buster; releasing past the half charge fires a
// charged shot, flagged fully charged past the full charge.
type PlayerControllerSystem struct {
	factory behavior.Factory
}

func NewPlayerControllerSystem(factory behavior.Factory) *PlayerControllerSystem {
	return &PlayerControllerSystem{factory: factory}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Delta()
	for _, e := range ecs.Query(w, component.PlayerComponent, component.InputComponent, component.PhysicsBodyComponent) {
		player, _ := ecs.Get(w, e, component.PlayerComponent)
		input, _ := ecs.Get(w, e, component.InputComponent)
		pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		if pb.Sense == nil {
			continue
		}
		if player.Invincible > 0 {
			player.Invincible -= dt
		}
		if player.Cooldown > 0 {
			player.Cooldown -= dt
		}
		if player.Defeated() {
			pb.Sense.SetVelocity(0, 0)
			continue
		}

		t := player.Tuning
		_, vy := pb.Sense.Velocity()
		vx := input.MoveX * t.MoveSpeed
		if input.MoveX > 0 {
			player.Facing = 1
		} else if input.MoveX < 0 {
			player.Facing = -1
		}
		if input.JumpPressed && pb.Sense.Grounded() {
			vy = t.JumpSpeed
		} else if !input.Jump && vy > 0 {
			// Releasing jump cuts the rise short.
			vy = 0
		}
		pb.Sense.SetVelocity(vx, vy)

		p.shoot(pb, player, input, dt)

		if anim, ok := ecs.Get(w, e, component.AnimationComponent); ok {
			anim.Play(playerAnimation(pb, input))
		}
	}
}

func (p *PlayerControllerSystem) shoot(pb *component.PhysicsBody, player *component.Player, input *component.Input, dt float64) {
	t := player.Tuning
	switch {
	case input.Shoot:
		if player.Charge == 0 && player.Cooldown <= 0 {
			p.fire(pb, player, "bullet", nil)
			player.Cooldown = t.ShotCooldown
		}
		player.Charge += dt
	case input.ShootReleased:
		if player.Charge >= t.HalfCharge && t.HalfCharge > 0 {
			full := player.Charge >= t.FullCharge
			p.fire(pb, player, "charged_shot", map[string]bool{flagCharged: full})
			player.Cooldown = t.ShotCooldown
		}
		player.Charge = 0
	default:
		player.Charge = 0
	}
}

func (p *PlayerControllerSystem) fire(pb *component.PhysicsBody, player *component.Player, variant string, flags map[string]bool) {
	if p.factory == nil {
		return
	}
	s, err := p.factory.Fetch("projectile", variant)
	if err != nil {
		return
	}
	x, y := pb.Sense.Position()
	props := behavior.Properties{
		"x":      x + shotOffsetX*float64(player.Facing),
		"y":      y,
		"facing": player.Facing,
		"owner":  "player",
	}
	if flags != nil {
		props["flags"] = flags
	}
	_ = s.Spawn(props)
}

func playerAnimation(pb *component.PhysicsBody, input *component.Input) string {
	switch {
	case !pb.Sense.Grounded():
		return "jump"
	case input.MoveX != 0:
		return "run"
	default:
		return "idle"
	}
}
