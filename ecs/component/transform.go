package component

// Transform is an entity's world position, y-up, at the body's center.
type Transform struct {
	X float64
	Y float64
}

var TransformComponent = NewComponentKind[Transform]()
