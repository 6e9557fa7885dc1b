package component

import "github.com/milk9111/robotmasters/damage"

// Faction decides which entities a projectile may hurt.
type Faction string

const (
	FactionPlayer Faction = "player"
	FactionEnemy  Faction = "enemy"
	FactionNone   Faction = "none"
)

// Projectile is a live attack. It implements damage.Attacker and
// damage.Flagger so boss damage tables can inspect it.
type Projectile struct {
	Tag      damage.Tag
	Faction  Faction
	Damage   int
	Flags    map[string]bool
	Piercing bool
	Owner    string
	// Hit records targets already struck so a piercing shot hurts each once.
	Hit map[uint64]bool
}

var _ damage.Flagger = (*Projectile)(nil)

func (p *Projectile) DamageTag() damage.Tag { return p.Tag }
func (p *Projectile) Flag(name string) bool { return p.Flags[name] }

var ProjectileComponent = NewComponentKind[Projectile]()
