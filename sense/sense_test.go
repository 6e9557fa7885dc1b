package sense

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		nx, ny float64
		want   Contacts
	}{
		{"floor", 0, -1, Contacts{Grounded: true}},
		{"ceiling", 0, 1, Contacts{Ceiling: true}},
		{"left_wall", -1, 0, Contacts{WallLeft: true}},
		{"right_wall", 1, 0, Contacts{WallRight: true}},
		{"shallow_slope", 0.3, -0.95, Contacts{Grounded: true}},
		{"diagonal_corner", 0.7071, -0.7071, Contacts{Grounded: true, WallRight: true}},
		{"grazing", 0.4, 0.4, Contacts{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got Contacts
			got.Classify(c.nx, c.ny)
			assert.Equal(t, c.want, got)
		})
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: -300})

	floor := cp.NewSegment(space.StaticBody, cp.Vector{X: -500, Y: 0}, cp.Vector{X: 500, Y: 0}, 0)
	floor.SetFriction(1)
	space.AddShape(floor)
	return space
}

func addBox(space *cp.Space, x, y float64) *CPBody {
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	space.AddBody(body)
	shape := cp.NewBox(body, 10, 10, 0)
	shape.SetFriction(1)
	space.AddShape(shape)
	return NewCPBody(body)
}

func TestCPBodyGrounded(t *testing.T) {
	space := newSpace()
	b := addBox(space, 0, 40)

	b.Sense()
	require.False(t, b.Grounded())

	for i := 0; i < 240; i++ {
		space.Step(1.0 / 60.0)
		b.Sense()
	}

	assert.True(t, b.Grounded())
	assert.False(t, b.TouchingCeiling())
	_, y := b.Position()
	assert.InDelta(t, 5, y, 1)
}

func TestCPBodyGravityScale(t *testing.T) {
	space := newSpace()
	b := addBox(space, 0, 40)
	b.SetGravityScale(0)

	for i := 0; i < 60; i++ {
		space.Step(1.0 / 60.0)
	}
	_, y := b.Position()
	assert.InDelta(t, 40, y, 1e-9)
	assert.Zero(t, b.GravityScale())

	b.SetGravityScale(1)
	for i := 0; i < 10; i++ {
		space.Step(1.0 / 60.0)
	}
	_, vy := b.Velocity()
	assert.Less(t, vy, 0.0)
}

func TestCPBodyImpulse(t *testing.T) {
	space := newSpace()
	b := addBox(space, 0, 40)
	b.ApplyImpulse(3, 12)
	vx, vy := b.Velocity()
	assert.InDelta(t, 3, vx, 1e-9)
	assert.InDelta(t, 12, vy, 1e-9)
}

func TestMemory(t *testing.T) {
	m := NewMemory(1, 2)
	m.ApplyImpulse(2, 5)
	m.ApplyImpulse(-1, 1)
	x, y, ok := m.LastImpulse()
	require.True(t, ok)
	assert.Equal(t, [2]float64{-1, 1}, [2]float64{x, y})
	vx, vy := m.Velocity()
	assert.Equal(t, 1.0, vx)
	assert.Equal(t, 6.0, vy)

	m.Contacts.WallLeft = true
	assert.True(t, AnyWall(m))
}
