package component

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/robotmasters/sense"
)

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body, Shape and Sense are filled in by the physics system.
type PhysicsBody struct {
	Body  *cp.Body
	Shape *cp.Shape
	Sense *sense.CPBody

	Width    float64
	Height   float64
	Mass     float64
	Friction float64
	Static   bool
	// Sensor shapes report overlaps without a collision response.
	Sensor bool
}

var PhysicsBodyComponent = NewComponentKind[PhysicsBody]()
