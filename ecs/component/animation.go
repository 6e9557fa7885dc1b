package component

// Animation names the clip an entity should show. Rendering resolves Key
// to frames; Elapsed restarts whenever Key changes.
type Animation struct {
	Key     string
	Elapsed float64
}

// Play switches to key, restarting the clip only when it changes.
func (a *Animation) Play(key string) {
	if a.Key == key {
		return
	}
	a.Key = key
	a.Elapsed = 0
}

var AnimationComponent = NewComponentKind[Animation]()
