package behavior

// Lifecycle gates what a controller does each tick.
//
//	NotReady -> Ready -> Active -> Defeated -> Destroyed
//
// Spawn always returns a controller to NotReady.
type Lifecycle uint8

const (
	NotReady Lifecycle = iota
	Ready
	Active
	Defeated
	Destroyed
)

func (l Lifecycle) String() string {
	switch l {
	case NotReady:
		return "not_ready"
	case Ready:
		return "ready"
	case Active:
		return "active"
	case Defeated:
		return "defeated"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Vulnerable reports whether damage can land in this lifecycle.
func (l Lifecycle) Vulnerable() bool {
	return l == Ready || l == Active
}
