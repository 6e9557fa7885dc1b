package component

import "github.com/milk9111/robotmasters/behavior"

// Boss binds an entity to the behavior controller driving it. Controllers
// are pooled per boss name and reused across respawns.
type Boss struct {
	Name       string
	Controller *behavior.Controller
}

var BossComponent = NewComponentKind[Boss]()
