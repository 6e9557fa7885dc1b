package component

// Input stores per-tick input state for an entity.
type Input struct {
	MoveX       float64
	Jump        bool
	JumpPressed bool
	Shoot       bool
	// ShootReleased is set on the tick the shoot button is let go.
	ShootReleased bool
}

var InputComponent = NewComponentKind[Input]()
