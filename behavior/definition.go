package behavior

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/robotmasters/damage"
	"github.com/milk9111/robotmasters/prefabs"
)

// StateID names a behavior state, e.g. "stand" or "jump".
type StateID string

type FacingMode uint8

const (
	FacePlayer FacingMode = iota
	FaceVelocity
	FaceFixed
)

// Predicate is a compiled condition. Predicates read the controller and
// never mutate it.
type Predicate func(c *Controller) bool

// Action is a compiled side effect run against one controller.
type Action func(c *Controller)

type timerDef struct {
	name          string
	duration      float64
	alwaysOn      bool
	startFinished bool
	runnables     []runnableDef
	onFinish      []Action
}

type runnableDef struct {
	at      float64
	actions []Action
}

type stateDef struct {
	id             StateID
	animation      string
	timers         []string
	onEnter        []Action
	while          []Action
	onExit         []Action
	advanceWhen    Predicate
	notImplemented string
}

type transitionDef struct {
	from StateID
	to   StateID
	when Predicate
}

type lifecycleDef struct {
	intro             float64
	readyWhen         Predicate
	holdStill         bool
	invincibility     float64
	defeatDuration    float64
	explosionInterval float64
	explosion         string
	defeatSound       string
	defeatAnimation   string
	onReady           []Action
	onDefeated        []Action
}

// Definition is a compiled boss prefab. It is immutable and shared by
// every controller of the same type.
type Definition struct {
	Name   string
	Kind   string
	Health int
	Body   prefabs.BodySpec

	required       []string
	params         map[string]float64
	facing         FacingMode
	timers         []timerDef
	initial        StateID
	triggerSame    bool
	states         []*stateDef
	byID           map[StateID]*stateDef
	transitions    []transitionDef
	table          *damage.Table
	lifecycle      lifecycleDef
	script         *scriptProgram
	spawns         bool
	sounds         bool
	notImplemented string
}

func (d *Definition) Initial() StateID { return d.initial }

func (d *Definition) States() []StateID {
	out := make([]StateID, 0, len(d.states))
	for _, s := range d.states {
		out = append(out, s.id)
	}
	return out
}

// DamageTable returns the shared, read-only damage table.
func (d *Definition) DamageTable() *damage.Table { return d.table }

// Spawns reports whether any action or the defeat sequence spawns entities.
func (d *Definition) Spawns() bool { return d.spawns }

// PlaysSounds reports whether any action or the defeat sequence plays sounds.
func (d *Definition) PlaysSounds() bool { return d.sounds }

// NotImplemented returns the reason the boss is unfinished, or "".
func (d *Definition) NotImplemented() string { return d.notImplemented }

// Script is the base name of the boss's script file, or "".
func (d *Definition) Script() string {
	if d.script == nil {
		return ""
	}
	return filepath.Base(d.script.name)
}

func (d *Definition) Params() map[string]float64 {
	out := make(map[string]float64, len(d.params))
	for k, v := range d.params {
		out[k] = v
	}
	return out
}

func (d *Definition) state(id StateID) *stateDef {
	if d == nil {
		return nil
	}
	return d.byID[id]
}

// Options tune compilation.
type Options struct {
	// RequiredDamageTags lists attacker tags every damageable boss must
	// either take damage from or mark immune.
	RequiredDamageTags []damage.Tag
	// LoadScript overrides where tengo scripts are read from.
	LoadScript func(name string) ([]byte, error)
}

// DefaultDamageTags are the player weapons every boss must account for.
var DefaultDamageTags = []damage.Tag{"bullet", "charged_shot"}

type compiler struct {
	name    string
	spec    *prefabs.BossSpec
	timers  map[string]*prefabs.TimerSpec
	states  map[string]bool
	params  map[string]float64
	script  *scriptProgram
	spawns  bool
	sounds  bool
	// senses is set while compiling a condition that reads body contacts
	// or motion.
	senses  bool
	errs    []error
	context string
}

func (cc *compiler) fail(format string, args ...any) {
	cc.errs = append(cc.errs, configErr(cc.name, cc.context, format, args...))
}

func (cc *compiler) hasTimer(name string) bool {
	_, ok := cc.timers[name]
	return ok
}

// in compiles fn with the error context set to field.
func (cc *compiler) in(field string, fn func()) {
	prev := cc.context
	cc.context = field
	fn()
	cc.context = prev
}

// Compile validates a boss prefab and turns it into a Definition. All
// problems found are returned joined; each one matches ErrConfig.
func Compile(spec prefabs.BossSpec, opts Options) (*Definition, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, configErr("<unnamed>", "name", "missing name")
	}

	def := &Definition{
		Name:           name,
		Kind:           spec.Kind,
		Health:         spec.Health,
		Body:           spec.Body,
		notImplemented: strings.TrimSpace(spec.NotImplemented),
		byID:           map[StateID]*stateDef{},
	}
	if def.Kind == "" {
		def.Kind = "boss"
	}
	if def.Body.Mass <= 0 {
		def.Body.Mass = 1
	}
	if def.notImplemented != "" {
		return def, nil
	}

	cc := &compiler{
		name:   name,
		spec:   &spec,
		timers: map[string]*prefabs.TimerSpec{},
		states: map[string]bool{},
		params: map[string]float64{},
	}
	for k, v := range spec.Params {
		cc.params[k] = v
	}
	for k := range spec.Timers {
		t := spec.Timers[k]
		cc.timers[k] = &t
	}
	for _, s := range spec.States {
		cc.states[s.Name] = true
	}

	if spec.Health <= 0 {
		cc.in("health", func() { cc.fail("must be positive, got %d", spec.Health) })
	}

	if spec.Script != "" {
		cc.in("script", func() {
			load := opts.LoadScript
			if load == nil {
				load = prefabs.LoadScript
			}
			src, err := load(spec.Script)
			if err != nil {
				cc.fail("load %s: %w", spec.Script, err)
				return
			}
			prog, err := compileScript(spec.Script, src)
			if err != nil {
				cc.fail("%w", err)
				return
			}
			cc.script = prog
		})
	}

	def.required = append([]string(nil), spec.RequiredProperties...)
	def.params = cc.params

	cc.in("facing", func() {
		switch strings.ToLower(strings.TrimSpace(spec.Facing)) {
		case "", "player":
			def.facing = FacePlayer
		case "velocity":
			def.facing = FaceVelocity
		case "fixed":
			def.facing = FaceFixed
		default:
			cc.fail("unknown facing mode %q", spec.Facing)
		}
	})

	def.timers = compileTimers(cc)
	compileStates(cc, def, spec.Animation)

	def.initial = StateID(spec.Initial)
	if def.initial == "" && len(def.states) > 0 {
		def.initial = def.states[0].id
	}
	cc.in("initial", func() {
		if len(def.states) == 0 {
			cc.fail("no states declared")
		} else if def.byID[def.initial] == nil {
			cc.fail("unknown state %q", def.initial)
		}
	})

	def.triggerSame = true
	if spec.TriggerOnSameState != nil {
		def.triggerSame = *spec.TriggerOnSameState
	}

	for i, t := range spec.Transitions {
		cc.in(fmt.Sprintf("transitions[%d]", i), func() {
			if !cc.states[t.From] {
				cc.fail("unknown from state %q", t.From)
			}
			if !cc.states[t.To] {
				cc.fail("unknown to state %q", t.To)
			}
			when := cc.conditions(t.When)
			if when == nil {
				when = func(*Controller) bool { return true }
			}
			def.transitions = append(def.transitions, transitionDef{
				from: StateID(t.From),
				to:   StateID(t.To),
				when: when,
			})
		})
	}

	def.lifecycle = compileLifecycle(cc, spec.Lifecycle)
	def.table = compileDamage(cc, spec.Damage, opts.RequiredDamageTags)

	def.script = cc.script
	def.spawns = cc.spawns
	def.sounds = cc.sounds

	if len(cc.errs) > 0 {
		return nil, errors.Join(cc.errs...)
	}
	return def, nil
}

func compileTimers(cc *compiler) []timerDef {
	names := make([]string, 0, len(cc.timers))
	for k := range cc.timers {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]timerDef, 0, len(names))
	for _, name := range names {
		spec := cc.timers[name]
		cc.in("timers."+name, func() {
			if spec.Duration < 0 {
				cc.fail("negative duration %v", spec.Duration)
			}
			td := timerDef{
				name:          name,
				duration:      spec.Duration,
				alwaysOn:      spec.AlwaysOn,
				startFinished: spec.StartFinished,
				onFinish:      cc.actions(spec.OnFinish),
			}
			for _, r := range spec.Runnables {
				if r.At < 0 || r.At > spec.Duration {
					cc.fail("runnable at %v outside [0, %v]", r.At, spec.Duration)
				}
				td.runnables = append(td.runnables, runnableDef{at: r.At, actions: cc.actions(r.Do)})
			}
			out = append(out, td)
		})
	}
	return out
}

func compileStates(cc *compiler, def *Definition, defaultAnimation string) {
	for i, s := range cc.spec.States {
		field := fmt.Sprintf("states[%d]", i)
		if s.Name != "" {
			field = "states." + s.Name
		}
		cc.in(field, func() {
			if s.Name == "" {
				cc.fail("missing name")
				return
			}
			id := StateID(s.Name)
			if def.byID[id] != nil {
				cc.fail("duplicate state")
				return
			}
			st := &stateDef{
				id:             id,
				animation:      s.Animation,
				notImplemented: strings.TrimSpace(s.NotImplemented),
			}
			if st.animation == "" {
				st.animation = defaultAnimation
			}
			for _, t := range s.Timers {
				spec, ok := cc.timers[t]
				switch {
				case !ok:
					cc.fail("unknown timer %q", t)
				case spec.AlwaysOn:
					cc.fail("timer %q is always_on and cannot be owned by a state", t)
				default:
					st.timers = append(st.timers, t)
				}
			}
			st.onEnter = cc.actions(s.OnEnter)
			st.while = cc.actions(s.While)
			st.onExit = cc.actions(s.OnExit)
			st.advanceWhen = cc.conditions(s.AdvanceWhen)

			def.states = append(def.states, st)
			def.byID[id] = st
		})
	}
}

func compileLifecycle(cc *compiler, spec prefabs.LifecycleSpec) lifecycleDef {
	var l lifecycleDef
	cc.in("lifecycle", func() {
		if spec.Intro < 0 || spec.Invincibility < 0 || spec.DefeatDuration < 0 || spec.ExplosionInterval < 0 {
			cc.fail("durations must not be negative")
		}
		cc.senses = false
		readyWhen := cc.conditions(spec.ReadyWhen)
		holdStill := spec.HoldStill == nil || *spec.HoldStill
		if holdStill && cc.senses {
			// A held body never moves, so its contacts never change.
			cc.fail("ready_when reads body sensing while hold_still freezes the body; set hold_still: false")
		}
		l = lifecycleDef{
			intro:             spec.Intro,
			readyWhen:         readyWhen,
			holdStill:         holdStill,
			invincibility:     spec.Invincibility,
			defeatDuration:    spec.DefeatDuration,
			explosionInterval: spec.ExplosionInterval,
			explosion:         spec.Explosion,
			defeatSound:       spec.DefeatSound,
			defeatAnimation:   spec.DefeatAnimation,
			onReady:           cc.actions(spec.OnReady),
			onDefeated:        cc.actions(spec.OnDefeated),
		}
		if l.explosion != "" {
			cc.spawns = true
		}
		if l.defeatSound != "" {
			cc.sounds = true
		}
	})
	return l
}

func compileDamage(cc *compiler, spec prefabs.DamageSpec, required []damage.Tag) *damage.Table {
	table := damage.NewTable()
	cc.in("damage", func() {
		tags := make([]string, 0, len(spec.Table))
		for tag := range spec.Table {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			e := spec.Table[tag]
			if e.Flag != "" {
				table.SetFunc(damage.Tag(tag), damage.ByFlag(e.Flag, e.Then, e.Else))
				continue
			}
			table.Set(damage.Tag(tag), e.Amount)
		}
		for _, tag := range spec.Immune {
			table.Immune(damage.Tag(tag))
		}
		if err := table.Validate(required); err != nil {
			cc.fail("%w", err)
		}
	})
	return table
}

// conditions compiles an all-of condition list. It returns nil for an
// empty list.
func (cc *compiler) conditions(list []map[string]any) Predicate {
	var preds []Predicate
	for _, entry := range list {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			build, ok := predicateRegistry[k]
			if !ok {
				cc.fail("unknown condition %q", k)
				continue
			}
			if p := build(cc, entry[k]); p != nil {
				preds = append(preds, p)
			}
		}
	}
	switch len(preds) {
	case 0:
		if len(list) == 0 {
			return nil
		}
		return func(*Controller) bool { return false }
	case 1:
		return preds[0]
	}
	return func(c *Controller) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

func (cc *compiler) actions(list []map[string]any) []Action {
	if len(list) == 0 {
		return nil
	}
	out := make([]Action, 0, len(list))
	for _, entry := range list {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			build, ok := actionRegistry[k]
			if !ok {
				cc.fail("unknown action %q", k)
				continue
			}
			if a := build(cc, entry[k]); a != nil {
				out = append(out, a)
			}
		}
	}
	return out
}

// number is a literal or a "$param" reference resolved per instance.
type number struct {
	value float64
	param string
}

func (n number) get(c *Controller) float64 {
	if n.param != "" {
		return c.params[n.param]
	}
	return n.value
}

func (cc *compiler) number(field string, v any) number {
	if v == nil {
		return number{}
	}
	if f, ok := toFloat(v); ok {
		return number{value: f}
	}
	s := asString(v)
	if name, ok := strings.CutPrefix(s, "$"); ok {
		if _, exists := cc.params[name]; !exists {
			cc.fail("%s: unknown param %q", field, name)
		}
		return number{param: name}
	}
	cc.fail("%s: expected number or $param, got %v", field, v)
	return number{}
}
