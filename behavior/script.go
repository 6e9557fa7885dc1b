package behavior

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

// Scripts declare two maps of functions:
//
//	checks := { name: func(e) { return bool } }
//	actions := { name: func(e, arg) { ... } }
//
// The engine map e exposes the controller. Checks get a read-only engine.
const scriptDispatch = `
__result = false
if __kind == "check" {
	__result = checks[__name](__engine)
} else if __kind == "action" {
	actions[__name](__engine, __arg)
}
`

var scriptModules = []string{"math", "text", "fmt", "times"}

type scriptProgram struct {
	name     string
	compiled *tengo.Compiled
	checks   map[string]bool
	actions  map[string]bool
}

func compileScript(name string, src []byte) (*scriptProgram, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__kind", "")
	_ = script.Add("__name", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__arg", nil)
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__result", false)
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	prog := &scriptProgram{
		name:     name,
		compiled: compiled,
		checks:   map[string]bool{},
		actions:  map[string]bool{},
	}

	// Run once with no dispatch to populate the checks/actions maps.
	first := compiled.Clone()
	if err := first.Set("__state", &tengo.Map{Value: map[string]tengo.Object{}}); err != nil {
		return nil, err
	}
	if err := first.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	for _, table := range []struct {
		global string
		into   map[string]bool
	}{{"checks", prog.checks}, {"actions", prog.actions}} {
		if !first.IsDefined(table.global) {
			continue
		}
		for k := range first.Get(table.global).Map() {
			table.into[k] = true
		}
	}
	return prog, nil
}

// scriptInstance is one controller's private copy of a script program.
type scriptInstance struct {
	prog     *scriptProgram
	compiled *tengo.Compiled
	state    *tengo.Map
	read     *tengo.ImmutableMap
	write    *tengo.ImmutableMap
}

func newScriptInstance(prog *scriptProgram, c *Controller) *scriptInstance {
	if prog == nil {
		return nil
	}
	s := &scriptInstance{
		prog:     prog,
		compiled: prog.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.read = buildScriptEngine(c, false)
	s.write = buildScriptEngine(c, true)
	return s
}

func (s *scriptInstance) reset() {
	if s == nil {
		return
	}
	s.state = &tengo.Map{Value: map[string]tengo.Object{}}
}

func (s *scriptInstance) check(c *Controller, name string) bool {
	if s == nil {
		return false
	}
	if err := s.run("check", name, s.read, nil); err != nil {
		c.log.Warn("script check failed", zap.String("script", s.prog.name), zap.String("check", name), zap.Error(err))
		return false
	}
	return !s.compiled.Get("__result").Object().IsFalsy()
}

func (s *scriptInstance) act(c *Controller, name string, arg any) {
	if s == nil {
		return
	}
	if err := s.run("action", name, s.write, arg); err != nil {
		c.log.Warn("script action failed", zap.String("script", s.prog.name), zap.String("action", name), zap.Error(err))
	}
}

func (s *scriptInstance) run(kind, name string, engine *tengo.ImmutableMap, arg any) error {
	if err := s.compiled.Set("__kind", kind); err != nil {
		return err
	}
	if err := s.compiled.Set("__name", name); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__arg", arg); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	return s.compiled.Run()
}

func buildScriptEngine(c *Controller, mutable bool) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("state", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: string(c.State())}, nil
	})
	fn("previous", func(args ...tengo.Object) (tengo.Object, error) {
		prev, ok := c.Previous()
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: string(prev)}, nil
	})
	fn("position", func(args ...tengo.Object) (tengo.Object, error) {
		x, y := c.body.Position()
		return pair(x, y), nil
	})
	fn("velocity", func(args ...tengo.Object) (tengo.Object, error) {
		x, y := c.body.Velocity()
		return pair(x, y), nil
	})
	fn("player_position", func(args ...tengo.Object) (tengo.Object, error) {
		if c.deps.Target == nil {
			return tengo.UndefinedValue, nil
		}
		x, y, ok := c.deps.Target.TargetPosition()
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return pair(x, y), nil
	})
	fn("grounded", func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(c.body.Grounded()), nil
	})
	fn("wall", func(args ...tengo.Object) (tengo.Object, error) {
		side := "any"
		if len(args) > 0 {
			side = objectAsString(args[0])
		}
		switch side {
		case "left":
			return boolObject(c.body.TouchingWallLeft()), nil
		case "right":
			return boolObject(c.body.TouchingWallRight()), nil
		}
		return boolObject(c.body.TouchingWallLeft() || c.body.TouchingWallRight()), nil
	})
	fn("facing", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(c.facing)}, nil
	})
	fn("health", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(c.health)}, nil
	})
	fn("max_health", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(c.def.Health)}, nil
	})
	fn("timer_finished", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		t, ok := c.timers.Get(objectAsString(args[0]))
		return boolObject(ok && t.IsFinished()), nil
	})
	fn("timer_elapsed", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Float{Value: 0}, nil
		}
		t, _ := c.timers.Get(objectAsString(args[0]))
		return &tengo.Float{Value: t.Elapsed()}, nil
	})
	fn("param", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: c.params[objectAsString(args[0])]}, nil
	})
	fn("random_bool", func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(c.randBool), nil
	})
	fn("roll", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: c.roll}, nil
	})
	fn("pick", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		v, ok := c.picks[objectAsString(args[0])]
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: v}, nil
	})

	if !mutable {
		// Checks see a frozen copy of the script memory.
		fn("memory", func(args ...tengo.Object) (tengo.Object, error) {
			frozen := c.script.state.Copy().(*tengo.Map)
			return &tengo.ImmutableMap{Value: frozen.Value}, nil
		})
		return &tengo.ImmutableMap{Value: values}
	}

	fn("memory", func(args ...tengo.Object) (tengo.Object, error) {
		return c.script.state, nil
	})

	fn("set_velocity", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, _ := tengo.ToFloat64(args[0])
		y, _ := tengo.ToFloat64(args[1])
		c.body.SetVelocity(x, y)
		return tengo.TrueValue, nil
	})
	fn("impulse", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, _ := tengo.ToFloat64(args[0])
		y, _ := tengo.ToFloat64(args[1])
		c.body.ApplyImpulse(x, y)
		return tengo.TrueValue, nil
	})
	fn("reset_timer", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		return boolObject(c.timers.Reset(objectAsString(args[0]))), nil
	})
	fn("set_facing", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		dir, ok := parseFacing(objectToAny(args[0]))
		if ok {
			c.facing = dir
		}
		return boolObject(ok), nil
	})
	fn("face_player", func(args ...tengo.Object) (tengo.Object, error) {
		c.facePlayer()
		return tengo.TrueValue, nil
	})
	fn("spawn", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		entityType := objectAsString(args[0])
		variant := ""
		if len(args) > 1 {
			variant = objectAsString(args[1])
		}
		props := Properties{}
		if len(args) > 2 {
			if m, ok := objectToAny(args[2]).(map[string]any); ok {
				props = m
			}
		}
		ox, oy := asFloat(props["offset_x"]), asFloat(props["offset_y"])
		delete(props, "offset_x")
		delete(props, "offset_y")
		return boolObject(c.spawnAt(entityType, variant, ox, oy, props)), nil
	})
	fn("sound", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		loop := len(args) > 1 && !args[1].IsFalsy()
		c.requestSound(objectAsString(args[0]), loop)
		return tengo.TrueValue, nil
	})
	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		c.log.Info(strings.Join(parts, " "), zap.String("state", string(c.State())))
		return tengo.TrueValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func pair(x, y float64) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
