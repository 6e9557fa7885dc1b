package behavior

import (
	"math"
	"strings"

	"github.com/milk9111/robotmasters/prefabs"
	"github.com/milk9111/robotmasters/sense"
)

type predicateMaker func(cc *compiler, arg any) Predicate

var predicateRegistry map[string]predicateMaker

func init() {
	predicateRegistry = map[string]predicateMaker{
		"always": func(cc *compiler, arg any) Predicate {
			want := flag(arg)
			return func(*Controller) bool { return want }
		},
		"timer_finished": func(cc *compiler, arg any) Predicate {
			name := cc.timerArg(arg)
			return func(c *Controller) bool {
				t, ok := c.timers.Get(name)
				return ok && t.IsFinished()
			}
		},
		"timer_just_finished": func(cc *compiler, arg any) Predicate {
			name := cc.timerArg(arg)
			return func(c *Controller) bool {
				t, ok := c.timers.Get(name)
				return ok && t.IsJustFinished()
			}
		},
		"grounded": sensorFlag(func(s sense.Sensor) bool {
			return s.Grounded()
		}),
		"touching_ceiling": sensorFlag(func(s sense.Sensor) bool {
			return s.TouchingCeiling()
		}),
		"falling": sensorFlag(func(s sense.Sensor) bool {
			_, vy := s.Velocity()
			return vy < 0
		}),
		"rising": sensorFlag(func(s sense.Sensor) bool {
			_, vy := s.Velocity()
			return vy > 0
		}),
		"touching_wall": func(cc *compiler, arg any) Predicate {
			cc.senses = true
			side := "any"
			if b, ok := arg.(bool); ok {
				if !b {
					return func(c *Controller) bool { return !sense.AnyWall(c.body) }
				}
			} else if arg != nil {
				side = strings.ToLower(asString(arg))
			}
			switch side {
			case "any":
				return func(c *Controller) bool { return sense.AnyWall(c.body) }
			case "left":
				return func(c *Controller) bool { return c.body.TouchingWallLeft() }
			case "right":
				return func(c *Controller) bool { return c.body.TouchingWallRight() }
			case "facing":
				return func(c *Controller) bool {
					if c.facing < 0 {
						return c.body.TouchingWallLeft()
					}
					return c.body.TouchingWallRight()
				}
			}
			cc.fail("touching_wall: unknown side %q", side)
			return nil
		},
		"random_bool": func(cc *compiler, arg any) Predicate {
			want := flag(arg)
			return func(c *Controller) bool { return c.randBool == want }
		},
		"roll_below": func(cc *compiler, arg any) Predicate {
			n := cc.number("roll_below", arg)
			return func(c *Controller) bool { return c.roll < n.get(c) }
		},
		"player_within": func(cc *compiler, arg any) Predicate {
			n := cc.number("player_within", arg)
			return func(c *Controller) bool {
				dx, _, ok := c.toTarget()
				return ok && math.Abs(dx) <= n.get(c)
			}
		},
		"player_beyond": func(cc *compiler, arg any) Predicate {
			n := cc.number("player_beyond", arg)
			return func(c *Controller) bool {
				dx, _, ok := c.toTarget()
				return ok && math.Abs(dx) > n.get(c)
			}
		},
		"player_above": func(cc *compiler, arg any) Predicate {
			n := cc.number("player_above", arg)
			return func(c *Controller) bool {
				_, dy, ok := c.toTarget()
				return ok && dy > n.get(c)
			}
		},
		"health_at_most": func(cc *compiler, arg any) Predicate {
			n := cc.number("health_at_most", arg)
			return func(c *Controller) bool { return float64(c.health) <= n.get(c) }
		},
		"previous_state": func(cc *compiler, arg any) Predicate {
			name := asString(arg)
			if !cc.states[name] {
				cc.fail("previous_state: unknown state %q", name)
			}
			return func(c *Controller) bool {
				prev, ok := c.machine.Previous()
				return ok && prev == StateID(name)
			}
		},
		"pick_is": func(cc *compiler, arg any) Predicate {
			v, err := prefabs.Decode[struct {
				Key   string `yaml:"key"`
				Value string `yaml:"value"`
			}](arg)
			if err != nil || v.Key == "" {
				cc.fail("pick_is: expected {key, value}")
				return nil
			}
			return func(c *Controller) bool { return c.picks[v.Key] == v.Value }
		},
		"not": func(cc *compiler, arg any) Predicate {
			inner := cc.conditions(conditionList(arg))
			if inner == nil {
				cc.fail("not: empty condition")
				return nil
			}
			return func(c *Controller) bool { return !inner(c) }
		},
		"any": func(cc *compiler, arg any) Predicate {
			var alts []Predicate
			for _, entry := range conditionList(arg) {
				if p := cc.conditions([]map[string]any{entry}); p != nil {
					alts = append(alts, p)
				}
			}
			return func(c *Controller) bool {
				for _, p := range alts {
					if p(c) {
						return true
					}
				}
				return false
			}
		},
		"script": func(cc *compiler, arg any) Predicate {
			name := asString(arg)
			if cc.script == nil {
				cc.fail("script condition %q without a script", name)
				return nil
			}
			if !cc.script.checks[name] {
				cc.fail("script %s has no check %q", cc.script.name, name)
				return nil
			}
			return func(c *Controller) bool { return c.script.check(c, name) }
		},
	}
}

// flag reads an optional boolean argument; a missing value means true.
func flag(arg any) bool {
	if b, ok := arg.(bool); ok {
		return b
	}
	return true
}

func sensorFlag(read func(s sense.Sensor) bool) predicateMaker {
	return func(cc *compiler, arg any) Predicate {
		cc.senses = true
		want := flag(arg)
		return func(c *Controller) bool { return read(c.body) == want }
	}
}

func (cc *compiler) timerArg(arg any) string {
	name := asString(arg)
	if !cc.hasTimer(name) {
		cc.fail("unknown timer %q", name)
	}
	return name
}

func conditionList(arg any) []map[string]any {
	switch t := arg.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case string:
		return []map[string]any{{t: nil}}
	}
	return nil
}
