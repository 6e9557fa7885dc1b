package behavior

//go:generate mockgen -destination=mocks/mock_behavior.go -package=mocks github.com/milk9111/robotmasters/behavior Target,SoundRequester,Factory,Spawnable

// Target is whatever the boss is fighting, normally the player.
type Target interface {
	TargetPosition() (x, y float64, ok bool)
}

// SoundRequester receives one-shot and looping sound requests by asset key.
type SoundRequester interface {
	RequestSound(asset string, loop bool)
}

// Factory hands out spawnable entities such as projectiles and explosions.
type Factory interface {
	Fetch(entityType, variant string) (Spawnable, error)
}

type Spawnable interface {
	Spawn(props Properties) error
}
