package system

import (
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
)

// InputSource samples the controls once per tick.
type InputSource interface {
	Poll() component.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() component.Input

func (f InputFunc) Poll() component.Input { return f() }

type InputSystem struct {
	source InputSource
}

func NewInputSystem(source InputSource) *InputSystem {
	return &InputSystem{source: source}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil || i.source == nil {
		return
	}
	state := i.source.Poll()
	ecs.ForEach(w, component.InputComponent, func(_ ecs.Entity, input *component.Input) {
		*input = state
	})
}
