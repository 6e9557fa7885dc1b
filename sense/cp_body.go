package sense

import "github.com/jakecoffman/cp"

// CPBody adapts a Chipmunk2D body. Contacts are refreshed by Sense after
// each space step; gravity is scaled through the body's velocity update.
type CPBody struct {
	body         *cp.Body
	contacts     Contacts
	gravityScale float64
}

var _ Body = (*CPBody)(nil)

func NewCPBody(body *cp.Body) *CPBody {
	b := &CPBody{body: body, gravityScale: 1}
	if body != nil {
		body.SetVelocityUpdateFunc(b.updateVelocity)
	}
	return b
}

func (b *CPBody) updateVelocity(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	cp.BodyUpdateVelocity(body, gravity.Mult(b.gravityScale), damping, dt)
}

// Raw returns the underlying Chipmunk body.
func (b *CPBody) Raw() *cp.Body {
	return b.body
}

// Sense recomputes contact flags from the body's current arbiters.
func (b *CPBody) Sense() {
	b.contacts.Clear()
	if b.body == nil {
		return
	}
	b.body.EachArbiter(func(arb *cp.Arbiter) {
		shapeA, shapeB := arb.Shapes()
		if shapeA.Sensor() || shapeB.Sensor() {
			return
		}
		n := arb.Normal()
		if bodyA, _ := arb.Bodies(); bodyA != b.body {
			n = n.Neg()
		}
		b.contacts.Classify(n.X, n.Y)
	})
}

// Contacts returns the flags from the last Sense call.
func (b *CPBody) Contacts() Contacts {
	return b.contacts
}

func (b *CPBody) Grounded() bool          { return b.contacts.Grounded }
func (b *CPBody) TouchingCeiling() bool   { return b.contacts.Ceiling }
func (b *CPBody) TouchingWallLeft() bool  { return b.contacts.WallLeft }
func (b *CPBody) TouchingWallRight() bool { return b.contacts.WallRight }

func (b *CPBody) Velocity() (x, y float64) {
	if b.body == nil {
		return 0, 0
	}
	v := b.body.Velocity()
	return v.X, v.Y
}

func (b *CPBody) Position() (x, y float64) {
	if b.body == nil {
		return 0, 0
	}
	p := b.body.Position()
	return p.X, p.Y
}

func (b *CPBody) SetVelocity(x, y float64) {
	if b.body == nil {
		return
	}
	b.body.SetVelocity(x, y)
}

func (b *CPBody) ApplyImpulse(x, y float64) {
	if b.body == nil {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(cp.Vector{X: x, Y: y}, b.body.Position())
}

func (b *CPBody) SetPosition(x, y float64) {
	if b.body == nil {
		return
	}
	b.body.SetPosition(cp.Vector{X: x, Y: y})
}

func (b *CPBody) SetGravityScale(scale float64) {
	b.gravityScale = scale
}

func (b *CPBody) GravityScale() float64 {
	return b.gravityScale
}
