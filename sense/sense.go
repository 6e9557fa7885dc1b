// Package sense exposes physics bodies to behavior code. The world is
// y-up: positive Y velocity moves a body upward.
package sense

// Sensor is the read-only query surface AI predicates use.
type Sensor interface {
	Grounded() bool
	TouchingCeiling() bool
	TouchingWallLeft() bool
	TouchingWallRight() bool
	Velocity() (x, y float64)
	Position() (x, y float64)
}

// Body is a Sensor plus the mutations the owning controller may apply.
type Body interface {
	Sensor
	SetVelocity(x, y float64)
	ApplyImpulse(x, y float64)
	SetPosition(x, y float64)
	SetGravityScale(scale float64)
	GravityScale() float64
}

// Contacts is the set of contact flags derived from one physics step.
type Contacts struct {
	Grounded  bool
	Ceiling   bool
	WallLeft  bool
	WallRight bool
}

// normalThreshold is the minimum normal component that counts as touching.
const normalThreshold = 0.5

// Classify folds a contact normal, pointing from the sensed body toward
// the other shape, into the contact flags.
func (c *Contacts) Classify(nx, ny float64) {
	if ny < -normalThreshold {
		c.Grounded = true
	} else if ny > normalThreshold {
		c.Ceiling = true
	}
	if nx < -normalThreshold {
		c.WallLeft = true
	} else if nx > normalThreshold {
		c.WallRight = true
	}
}

func (c *Contacts) Clear() {
	*c = Contacts{}
}

// AnyWall reports contact with either side wall.
func AnyWall(s Sensor) bool {
	return s != nil && (s.TouchingWallLeft() || s.TouchingWallRight())
}
