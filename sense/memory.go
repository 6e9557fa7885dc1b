package sense

// Memory is a Body backed by plain fields. It treats mass as 1, so an
// impulse adds directly to velocity. Headless tools and tests drive it by
// setting Contacts between ticks.
type Memory struct {
	Contacts Contacts
	X, Y     float64
	VX, VY   float64
	Gravity  float64

	Impulses [][2]float64
}

var _ Body = (*Memory)(nil)

func NewMemory(x, y float64) *Memory {
	return &Memory{X: x, Y: y, Gravity: 1}
}

func (m *Memory) Grounded() bool          { return m.Contacts.Grounded }
func (m *Memory) TouchingCeiling() bool   { return m.Contacts.Ceiling }
func (m *Memory) TouchingWallLeft() bool  { return m.Contacts.WallLeft }
func (m *Memory) TouchingWallRight() bool { return m.Contacts.WallRight }

func (m *Memory) Velocity() (x, y float64) { return m.VX, m.VY }
func (m *Memory) Position() (x, y float64) { return m.X, m.Y }

func (m *Memory) SetVelocity(x, y float64) {
	m.VX, m.VY = x, y
}

func (m *Memory) ApplyImpulse(x, y float64) {
	m.Impulses = append(m.Impulses, [2]float64{x, y})
	m.VX += x
	m.VY += y
}

func (m *Memory) SetPosition(x, y float64) {
	m.X, m.Y = x, y
}

func (m *Memory) SetGravityScale(scale float64) {
	m.Gravity = scale
}

func (m *Memory) GravityScale() float64 {
	return m.Gravity
}

// LastImpulse returns the most recent impulse, if any.
func (m *Memory) LastImpulse() (x, y float64, ok bool) {
	if len(m.Impulses) == 0 {
		return 0, 0, false
	}
	i := m.Impulses[len(m.Impulses)-1]
	return i[0], i[1], true
}
