package behavior

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/prefabs"
)

type actionMaker func(cc *compiler, arg any) Action

var actionRegistry map[string]actionMaker

func init() {
	actionRegistry = map[string]actionMaker{
		"reset_timer": func(cc *compiler, arg any) Action {
			names := asStringList(arg)
			for _, n := range names {
				cc.timerArg(n)
			}
			return func(c *Controller) {
				for _, n := range names {
					c.timers.Reset(n)
				}
			}
		},
		"reset_timer_duration": func(cc *compiler, arg any) Action {
			m, ok := asMap(arg)
			if !ok {
				cc.fail("reset_timer_duration: expected {name, duration}")
				return nil
			}
			name := cc.timerArg(m["name"])
			d := cc.number("reset_timer_duration.duration", m["duration"])
			return func(c *Controller) {
				if t, ok := c.timers.Get(name); ok {
					t.ResetDuration(d.get(c))
				}
			}
		},
		"set_timer_to_end": func(cc *compiler, arg any) Action {
			name := cc.timerArg(arg)
			return func(c *Controller) {
				if t, ok := c.timers.Get(name); ok {
					t.SetToEnd()
				}
			}
		},
		"stop": func(cc *compiler, _ any) Action {
			return func(c *Controller) { c.body.SetVelocity(0, 0) }
		},
		"stop_x": func(cc *compiler, _ any) Action {
			return func(c *Controller) {
				_, vy := c.body.Velocity()
				c.body.SetVelocity(0, vy)
			}
		},
		"set_velocity": func(cc *compiler, arg any) Action {
			m, ok := asMap(arg)
			if !ok {
				cc.fail("set_velocity: expected {x, y}")
				return nil
			}
			_, hasX := m["x"]
			_, hasY := m["y"]
			x := cc.number("set_velocity.x", m["x"])
			y := cc.number("set_velocity.y", m["y"])
			byFacing := m["facing"] == true
			return func(c *Controller) {
				vx, vy := c.body.Velocity()
				if hasX {
					vx = x.get(c)
					if byFacing {
						vx *= float64(c.facing)
					}
				}
				if hasY {
					vy = y.get(c)
				}
				c.body.SetVelocity(vx, vy)
			}
		},
		"jump": func(cc *compiler, arg any) Action {
			m, ok := asMap(arg)
			if !ok {
				cc.fail("jump: expected {impulse_y, scalar_x, max_x}")
				return nil
			}
			impulseY := cc.number("jump.impulse_y", m["impulse_y"])
			scalarX := cc.number("jump.scalar_x", m["scalar_x"])
			maxX := cc.number("jump.max_x", m["max_x"])
			return func(c *Controller) {
				vx := 0.0
				if dx, _, ok := c.toTarget(); ok {
					vx = dx * scalarX.get(c)
				}
				if limit := maxX.get(c); limit > 0 {
					vx = math.Max(-limit, math.Min(limit, vx))
				}
				c.body.SetVelocity(0, 0)
				c.body.ApplyImpulse(vx, impulseY.get(c))
			}
		},
		"face_player": func(cc *compiler, _ any) Action {
			return func(c *Controller) { c.facePlayer() }
		},
		"turn_around": func(cc *compiler, _ any) Action {
			return func(c *Controller) { c.facing = -c.facing }
		},
		"set_facing": func(cc *compiler, arg any) Action {
			dir, ok := parseFacing(arg)
			if !ok {
				cc.fail("set_facing: expected left or right, got %v", arg)
				return nil
			}
			return func(c *Controller) { c.facing = dir }
		},
		"set_gravity": func(cc *compiler, arg any) Action {
			n := cc.number("set_gravity", arg)
			return func(c *Controller) { c.body.SetGravityScale(n.get(c)) }
		},
		"spawn": func(cc *compiler, arg any) Action {
			m, ok := asMap(arg)
			if !ok || asString(m["type"]) == "" {
				cc.fail("spawn: expected {type, variant, offset_x, offset_y, speed_x, speed_y}")
				return nil
			}
			cc.spawns = true
			entityType := asString(m["type"])
			variant := asString(m["variant"])
			ox := cc.number("spawn.offset_x", m["offset_x"])
			oy := cc.number("spawn.offset_y", m["offset_y"])
			sx := cc.number("spawn.speed_x", m["speed_x"])
			sy := cc.number("spawn.speed_y", m["speed_y"])
			return func(c *Controller) {
				dir := float64(c.facing)
				c.spawnAt(entityType, variant, ox.get(c)*dir, oy.get(c), Properties{
					"speed_x": sx.get(c) * dir,
					"speed_y": sy.get(c),
				})
			}
		},
		"sound": func(cc *compiler, arg any) Action {
			cc.sounds = true
			if s, ok := arg.(string); ok {
				asset := strings.TrimSpace(s)
				return func(c *Controller) { c.requestSound(asset, false) }
			}
			v, err := prefabs.Decode[struct {
				Asset string `yaml:"asset"`
				Loop  bool   `yaml:"loop"`
			}](arg)
			if err != nil || v.Asset == "" {
				cc.fail("sound: expected asset name or {asset, loop}")
				return nil
			}
			return func(c *Controller) { c.requestSound(v.Asset, v.Loop) }
		},
		"pick": func(cc *compiler, arg any) Action {
			v, err := prefabs.Decode[struct {
				Key     string   `yaml:"key"`
				Options []string `yaml:"options"`
			}](arg)
			if err != nil || v.Key == "" || len(v.Options) == 0 {
				cc.fail("pick: expected {key, options}")
				return nil
			}
			return func(c *Controller) {
				c.picks[v.Key] = v.Options[c.rng.IntN(len(v.Options))]
			}
		},
		"log": func(cc *compiler, arg any) Action {
			msg := asString(arg)
			return func(c *Controller) {
				c.log.Info(msg, zap.String("state", string(c.State())))
			}
		},
		"script": func(cc *compiler, arg any) Action {
			name := asString(arg)
			var param any
			if m, ok := asMap(arg); ok {
				name = asString(m["name"])
				param = m["arg"]
			}
			if cc.script == nil {
				cc.fail("script action %q without a script", name)
				return nil
			}
			if !cc.script.actions[name] {
				cc.fail("script %s has no action %q", cc.script.name, name)
				return nil
			}
			return func(c *Controller) { c.script.act(c, name, param) }
		},
	}
}
