package system

import "github.com/milk9111/robotmasters/ecs"

// Flusher builds spawns queued during the tick.
type Flusher interface {
	Flush() error
}

// SpawnSystem runs last so entities requested this tick join the world
// before the next one. Failures are already logged by the flusher.
type SpawnSystem struct {
	spawner Flusher
	failed  int
}

func NewSpawnSystem(spawner Flusher) *SpawnSystem {
	return &SpawnSystem{spawner: spawner}
}

func (s *SpawnSystem) Update(w *ecs.World) {
	if s.spawner == nil {
		return
	}
	if err := s.spawner.Flush(); err != nil {
		s.failed++
	}
}

// Failed counts ticks in which at least one spawn was skipped.
func (s *SpawnSystem) Failed() int {
	return s.failed
}
