package component

import "github.com/milk9111/robotmasters/prefabs"

// Player is the runtime state of the player-controlled target.
type Player struct {
	Tuning     prefabs.PlayerSpec
	Health     int
	Facing     int
	Cooldown   float64
	Charge     float64
	Invincible float64
}

// Defeated reports whether the player has no health left.
func (p *Player) Defeated() bool {
	return p.Health <= 0
}

var PlayerComponent = NewComponentKind[Player]()
