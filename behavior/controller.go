package behavior

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/damage"
	"github.com/milk9111/robotmasters/fsm"
	"github.com/milk9111/robotmasters/sense"
	"github.com/milk9111/robotmasters/timer"
)

const facingEpsilon = 0.5

// Deps are the collaborators a controller talks to. Body is required;
// Factory and Sounds are required when the definition uses them.
type Deps struct {
	Body    sense.Body
	Target  Target
	Sounds  SoundRequester
	Factory Factory
	Logger  *zap.Logger
	Rand    *rand.Rand

	// OnStateChange observes every fired transition, between the previous
	// state's exit actions and the new state's enter actions.
	OnStateChange func(c *Controller, current, previous StateID)
	// OnDestroyed is called once when the defeat sequence ends.
	OnDestroyed func(c *Controller)
}

// Controller runs one boss instance: its state machine, timers, damage
// table, facing, health and lifecycle.
type Controller struct {
	def     *Definition
	deps    Deps
	body    sense.Body
	log     *zap.Logger
	rng     *rand.Rand
	machine *fsm.Machine[StateID]
	timers  *timer.Bank
	script  *scriptInstance

	alwaysOn []string

	intro         *timer.Timer
	invincibility *timer.Timer
	defeat        *timer.Timer
	explosion     *timer.Timer

	lifecycle Lifecycle
	health    int
	facing    int
	gravity   float64
	params    map[string]float64
	picks     map[string]string

	randBool bool
	roll     float64
}

// NewController builds a controller for def. The controller starts
// unspawned; call Spawn before the first Update.
func NewController(def *Definition, deps Deps) (*Controller, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrIncompleteSetup)
	}
	if def.notImplemented != "" {
		return nil, &NotImplementedError{Entity: def.Name, Reason: def.notImplemented}
	}
	for _, s := range def.states {
		if s.notImplemented != "" {
			return nil, &NotImplementedError{Entity: def.Name, State: s.id, Reason: s.notImplemented}
		}
	}
	if deps.Body == nil {
		return nil, incomplete(def.Name, "no body")
	}
	if def.spawns && deps.Factory == nil {
		return nil, incomplete(def.Name, "spawns entities but has no factory")
	}
	if def.sounds && deps.Sounds == nil {
		return nil, incomplete(def.Name, "plays sounds but has no sound requester")
	}
	for _, s := range def.states {
		if s.animation == "" {
			return nil, incomplete(def.Name, "state %s has no animation", s.id)
		}
	}

	c := &Controller{
		def:       def,
		deps:      deps,
		body:      deps.Body,
		log:       deps.Logger,
		rng:       deps.Rand,
		timers:    timer.NewBank(),
		lifecycle: Destroyed,
		facing:    -1,
		gravity:   1,
		params:    map[string]float64{},
		picks:     map[string]string{},
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("boss", def.Name))
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for _, td := range def.timers {
		t := timer.New(td.duration)
		if len(td.onFinish) > 0 {
			acts := td.onFinish
			t.SetOnFinish(func() { c.run(acts) })
		}
		for _, r := range td.runnables {
			acts := r.actions
			t.AddRunnables(timer.Runnable{At: r.at, Run: func() { c.run(acts) }})
		}
		if err := c.timers.Add(td.name, t); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrIncompleteSetup, def.Name, err)
		}
		if td.alwaysOn {
			c.alwaysOn = append(c.alwaysOn, td.name)
		}
	}

	l := def.lifecycle
	c.intro = timer.New(l.intro)
	c.invincibility = timer.New(l.invincibility)
	c.defeat = timer.New(l.defeatDuration)
	c.explosion = timer.New(l.explosionInterval)

	b := fsm.NewBuilder[StateID]()
	for _, s := range def.states {
		b.State(s.id, s)
	}
	b.InitialState(def.initial)
	for _, tr := range def.transitions {
		when := tr.when
		b.Transition(tr.from, tr.to, func() bool { return when(c) })
	}
	b.OnChangeState(c.changeState)
	b.TriggerChangeWhenSameElement(def.triggerSame)
	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIncompleteSetup, def.Name, err)
	}
	c.machine = m
	c.script = newScriptInstance(def.script, c)

	return c, nil
}

// Spawn places the controller in the world and puts it back to NotReady
// with a fresh machine, timers and health. It is safe to call again on a
// pooled controller.
func (c *Controller) Spawn(props Properties) error {
	for _, key := range c.def.required {
		if !props.Has(key) {
			return &ConfigError{Entity: c.def.Name, Field: key, Err: fmt.Errorf("missing required property")}
		}
	}

	params := make(map[string]float64, len(c.def.params))
	for k, v := range c.def.params {
		params[k] = v
		if raw, ok := props[k]; ok {
			f, ok := toFloat(raw)
			if !ok {
				return &ConfigError{Entity: c.def.Name, Field: k, Err: fmt.Errorf("param override %v is not a number", raw)}
			}
			params[k] = f
		}
	}

	facing := -1
	if raw, ok := props["facing"]; ok {
		dir, ok := parseFacing(raw)
		if !ok {
			return &ConfigError{Entity: c.def.Name, Field: "facing", Err: fmt.Errorf("unknown facing %v", raw)}
		}
		facing = dir
	}

	gravity := c.def.Body.GravityScale
	if gravity == 0 {
		gravity = 1
	}
	if g, ok := props.Float("gravity_scalar"); ok {
		gravity = g
	}

	x, y := c.body.Position()
	if v, ok := props.Float("x"); ok {
		x = v
	}
	if v, ok := props.Float("y"); ok {
		y = v
	}

	c.params = params
	c.facing = facing
	c.gravity = gravity
	c.health = c.def.Health
	c.picks = map[string]string{}
	c.randBool, c.roll = false, 0

	c.timers.ResetAll()
	for _, td := range c.def.timers {
		if td.startFinished {
			if t, ok := c.timers.Get(td.name); ok {
				t.SetToEnd()
			}
		}
	}
	c.intro.Restore()
	c.invincibility.Restore()
	c.invincibility.SetToEnd()
	c.defeat.Restore()
	c.explosion.Restore()
	c.machine.Reset()
	c.script.reset()

	c.body.SetPosition(x, y)
	c.body.SetVelocity(0, 0)
	c.body.SetGravityScale(gravity)

	c.lifecycle = NotReady
	c.log.Debug("spawned", zap.Float64("x", x), zap.Float64("y", y), zap.Int("health", c.health))
	return nil
}

// Update advances the controller by delta seconds.
func (c *Controller) Update(delta float64) {
	if delta < 0 {
		delta = 0
	}

	switch c.lifecycle {
	case Destroyed:
		return
	case NotReady:
		c.intro.Update(delta)
		if c.intro.IsFinished() && (c.def.lifecycle.readyWhen == nil || c.def.lifecycle.readyWhen(c)) {
			c.lifecycle = Ready
			c.body.SetGravityScale(c.gravity)
			c.log.Debug("ready")
			c.run(c.def.lifecycle.onReady)
			return
		}
		if c.def.lifecycle.holdStill {
			c.body.SetVelocity(0, 0)
			c.body.SetGravityScale(0)
		}
		return
	case Defeated:
		c.updateDefeated(delta)
		return
	case Ready:
		c.lifecycle = Active
		c.updateFacing()
		if s := c.def.state(c.machine.Current()); s != nil {
			c.run(s.onEnter)
		}
	}

	c.updateFacing()

	for _, name := range c.alwaysOn {
		c.timers.Update(name, delta)
	}
	c.invincibility.Update(delta)
	c.randBool = c.rng.IntN(2) == 1
	c.roll = c.rng.Float64()

	st := c.def.state(c.machine.Current())
	if st == nil {
		return
	}
	for _, name := range st.timers {
		c.timers.Update(name, delta)
	}
	c.run(st.while)
	if c.lifecycle != Active {
		return
	}
	if st.advanceWhen != nil && !st.advanceWhen(c) {
		return
	}
	c.machine.Next()
}

func (c *Controller) updateDefeated(delta float64) {
	c.body.SetVelocity(0, 0)
	c.body.SetGravityScale(0)

	l := c.def.lifecycle
	if l.explosion != "" && l.explosionInterval > 0 {
		c.explosion.Update(delta)
		if c.explosion.IsJustFinished() {
			c.spawnAt("effect", l.explosion, 0, 0, Properties{})
			c.explosion.Reset()
		}
	}

	c.defeat.Update(delta)
	if !c.defeat.IsFinished() {
		return
	}
	c.lifecycle = Destroyed
	c.log.Info("destroyed")
	if c.deps.OnDestroyed != nil {
		c.deps.OnDestroyed(c)
	}
}

// OnDamaged applies a hit from attacker and returns the health removed.
// Hits land only while Ready or Active and outside the invincibility
// window.
func (c *Controller) OnDamaged(tag damage.Tag, attacker damage.Attacker) int {
	if !c.lifecycle.Vulnerable() || c.Invincible() {
		return 0
	}
	amount := c.def.table.Negotiate(tag, attacker)
	if amount <= 0 {
		return 0
	}
	if amount > c.health {
		amount = c.health
	}
	c.health -= amount
	c.log.Debug("damaged", zap.String("tag", string(tag)), zap.Int("amount", amount), zap.Int("health", c.health))

	if c.health <= 0 {
		c.enterDefeated()
		return amount
	}
	if c.def.lifecycle.invincibility > 0 {
		c.invincibility.Reset()
	}
	return amount
}

func (c *Controller) enterDefeated() {
	c.lifecycle = Defeated
	c.defeat.Restore()
	c.explosion.Restore()
	c.log.Info("defeated")
	l := c.def.lifecycle
	if l.defeatSound != "" {
		c.requestSound(l.defeatSound, false)
	}
	if l.explosion != "" {
		c.spawnAt("effect", l.explosion, 0, 0, Properties{})
	}
	c.run(l.onDefeated)
}

func (c *Controller) changeState(current, previous StateID) {
	if s := c.def.state(previous); s != nil {
		c.run(s.onExit)
	}
	c.log.Debug("state change", zap.String("from", string(previous)), zap.String("to", string(current)))
	if c.deps.OnStateChange != nil {
		c.deps.OnStateChange(c, current, previous)
	}
	if s := c.def.state(current); s != nil {
		c.run(s.onEnter)
	}
}

func (c *Controller) run(actions []Action) {
	for _, a := range actions {
		a(c)
	}
}

func (c *Controller) updateFacing() {
	switch c.def.facing {
	case FacePlayer:
		c.facePlayer()
	case FaceVelocity:
		vx, _ := c.body.Velocity()
		if vx > facingEpsilon {
			c.facing = 1
		} else if vx < -facingEpsilon {
			c.facing = -1
		}
	}
}

func (c *Controller) facePlayer() {
	dx, _, ok := c.toTarget()
	if !ok {
		return
	}
	if dx > facingEpsilon {
		c.facing = 1
	} else if dx < -facingEpsilon {
		c.facing = -1
	}
}

// toTarget returns the offset from the boss to its target.
func (c *Controller) toTarget() (dx, dy float64, ok bool) {
	if c.deps.Target == nil {
		return 0, 0, false
	}
	tx, ty, ok := c.deps.Target.TargetPosition()
	if !ok {
		return 0, 0, false
	}
	x, y := c.body.Position()
	return tx - x, ty - y, true
}

func (c *Controller) spawnAt(entityType, variant string, ox, oy float64, props Properties) bool {
	if c.deps.Factory == nil {
		c.log.Warn("spawn without factory", zap.String("type", entityType), zap.String("variant", variant))
		return false
	}
	s, err := c.deps.Factory.Fetch(entityType, variant)
	if err != nil {
		c.log.Warn("spawn fetch failed", zap.String("type", entityType), zap.String("variant", variant), zap.Error(err))
		return false
	}
	x, y := c.body.Position()
	if props == nil {
		props = Properties{}
	}
	props["x"] = x + ox
	props["y"] = y + oy
	props["facing"] = c.facing
	props["owner"] = c.def.Name
	if err := s.Spawn(props); err != nil {
		c.log.Warn("spawn failed", zap.String("type", entityType), zap.String("variant", variant), zap.Error(err))
		return false
	}
	return true
}

func (c *Controller) requestSound(asset string, loop bool) {
	if c.deps.Sounds == nil || asset == "" {
		return
	}
	c.deps.Sounds.RequestSound(asset, loop)
}

func (c *Controller) Definition() *Definition { return c.def }
func (c *Controller) Name() string            { return c.def.Name }
func (c *Controller) Lifecycle() Lifecycle    { return c.lifecycle }
func (c *Controller) State() StateID          { return c.machine.Current() }
func (c *Controller) Health() int             { return c.health }
func (c *Controller) Body() sense.Body        { return c.body }

// Facing is -1 for left and 1 for right.
func (c *Controller) Facing() int { return c.facing }

func (c *Controller) Previous() (StateID, bool) {
	return c.machine.Previous()
}

func (c *Controller) Invincible() bool {
	return c.def.lifecycle.invincibility > 0 && !c.invincibility.IsFinished()
}

// AnimationKey is the animation the renderer should play this frame.
func (c *Controller) AnimationKey() string {
	if c.lifecycle >= Defeated && c.def.lifecycle.defeatAnimation != "" {
		return c.def.lifecycle.defeatAnimation
	}
	if s := c.def.state(c.machine.Current()); s != nil {
		return s.animation
	}
	return ""
}

// Timer exposes a named timer for inspection.
func (c *Controller) Timer(name string) (*timer.Timer, bool) {
	return c.timers.Get(name)
}

func (c *Controller) Param(name string) float64 {
	return c.params[name]
}

func (c *Controller) Pick(key string) (string, bool) {
	v, ok := c.picks[key]
	return v, ok
}

func (c *Controller) DamageTable() *damage.Table { return c.def.table }
