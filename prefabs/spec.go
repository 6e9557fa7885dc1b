package prefabs

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Conditions is a list of single-key condition maps. Every entry must hold.
type Conditions []map[string]any

// Actions is a list of single-key action maps executed in order.
type Actions []map[string]any

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// BossSpec is the authored behavior of one boss, mini-boss or enemy type.
type BossSpec struct {
	Name               string               `yaml:"name"`
	Kind               string               `yaml:"kind"`
	Health             int                  `yaml:"health"`
	Body               BodySpec             `yaml:"body"`
	RequiredProperties []string             `yaml:"required_properties"`
	Params             map[string]float64   `yaml:"params"`
	Lifecycle          LifecycleSpec        `yaml:"lifecycle"`
	Facing             string               `yaml:"facing"`
	Animation          string               `yaml:"animation"`
	Timers             map[string]TimerSpec `yaml:"timers"`
	Initial            string               `yaml:"initial"`
	TriggerOnSameState *bool                `yaml:"trigger_change_when_same_element"`
	States             []StateSpec          `yaml:"states"`
	Transitions        []TransitionSpec     `yaml:"transitions"`
	Damage             DamageSpec           `yaml:"damage"`
	Script             string               `yaml:"script"`
	NotImplemented     string               `yaml:"not_implemented"`
}

type BodySpec struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Mass         float64 `yaml:"mass"`
	Friction     float64 `yaml:"friction"`
	GravityScale float64 `yaml:"gravity_scale"`
}

type LifecycleSpec struct {
	Intro             float64    `yaml:"intro"`
	ReadyWhen         Conditions `yaml:"ready_when"`
	HoldStill         *bool      `yaml:"hold_still"`
	Invincibility     float64    `yaml:"invincibility"`
	DefeatDuration    float64    `yaml:"defeat_duration"`
	ExplosionInterval float64    `yaml:"explosion_interval"`
	Explosion         string     `yaml:"explosion"`
	DefeatSound       string     `yaml:"defeat_sound"`
	DefeatAnimation   string     `yaml:"defeat_animation"`
	OnReady           Actions    `yaml:"on_ready"`
	OnDefeated        Actions    `yaml:"on_defeated"`
}

// TimerSpec accepts either a bare duration or a mapping.
type TimerSpec struct {
	Duration      float64        `yaml:"duration"`
	AlwaysOn      bool           `yaml:"always_on"`
	StartFinished bool           `yaml:"start_finished"`
	Runnables     []RunnableSpec `yaml:"runnables"`
	OnFinish      Actions        `yaml:"on_finish"`
}

func (t *TimerSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var d float64
		if err := value.Decode(&d); err != nil {
			return fmt.Errorf("timer duration: %w", err)
		}
		*t = TimerSpec{Duration: d}
		return nil
	}
	type plain TimerSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = TimerSpec(p)
	return nil
}

type RunnableSpec struct {
	At float64 `yaml:"at"`
	Do Actions `yaml:"do"`
}

type StateSpec struct {
	Name               string     `yaml:"name"`
	Animation          string     `yaml:"animation"`
	Timers             []string   `yaml:"timers"`
	OnEnter        Actions    `yaml:"on_enter"`
	While          Actions    `yaml:"while"`
	OnExit         Actions    `yaml:"on_exit"`
	AdvanceWhen    Conditions `yaml:"advance_when"`
	NotImplemented     string     `yaml:"not_implemented"`
}

type TransitionSpec struct {
	From string     `yaml:"from"`
	To   string     `yaml:"to"`
	When Conditions `yaml:"when"`
}

type DamageSpec struct {
	Table  map[string]DamageEntrySpec `yaml:"table"`
	Immune []string                   `yaml:"immune"`
}

// DamageEntrySpec accepts a bare amount or a flag-dependent mapping:
//
//	charged_shot: {flag: fully_charged, then: 4, else: 2}
type DamageEntrySpec struct {
	Amount int    `yaml:"amount"`
	Flag   string `yaml:"flag"`
	Then   int    `yaml:"then"`
	Else   int    `yaml:"else"`
}

func (d *DamageEntrySpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("damage amount: %w", err)
		}
		*d = DamageEntrySpec{Amount: n}
		return nil
	}
	type plain DamageEntrySpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DamageEntrySpec(p)
	return nil
}

// BossPath returns the prefab path for a boss name.
func BossPath(name string) string {
	return path.Join("bosses", name+".yaml")
}

func LoadBossSpec(name string) (BossSpec, error) {
	spec, err := LoadSpec[BossSpec](BossPath(name))
	if err != nil {
		return BossSpec{}, err
	}
	if spec.Name == "" {
		spec.Name = name
	}
	return spec, nil
}

// BossNames lists the embedded boss prefabs, sorted.
func BossNames() ([]string, error) {
	entries, err := PrefabsFS.ReadDir("bosses")
	if err != nil {
		return nil, fmt.Errorf("prefabs: list bosses: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSpecFile(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// BossNameFromPath maps a changed file path back to a boss name. ok is
// false for files outside the bosses directory.
func BossNameFromPath(p string) (string, bool) {
	clean := cleanPrefabPath(p)
	dir, file := path.Split(clean)
	if !strings.HasSuffix(strings.TrimSuffix(dir, "/"), "bosses") || !isSpecFile(file) {
		return "", false
	}
	return strings.TrimSuffix(file, path.Ext(file)), true
}

// ProjectileSpec describes a projectile or effect the factory can build.
type ProjectileSpec struct {
	Tag          string          `yaml:"tag"`
	Width        float64         `yaml:"width"`
	Height       float64         `yaml:"height"`
	Speed        float64         `yaml:"speed"`
	GravityScale float64         `yaml:"gravity_scale"`
	TTL          float64         `yaml:"ttl"`
	Faction      string          `yaml:"faction"`
	Damage       int             `yaml:"damage"`
	Flags        map[string]bool `yaml:"flags"`
	Piercing     bool            `yaml:"piercing"`
	Sound        string          `yaml:"sound"`
}

// ProjectilesSpec maps projectile kinds to their specs.
type ProjectilesSpec struct {
	Projectiles map[string]ProjectileSpec `yaml:"projectiles"`
}

func LoadProjectilesSpec() (ProjectilesSpec, error) {
	return LoadSpec[ProjectilesSpec]("projectiles.yaml")
}

// PlayerSpec tunes the player-controlled target.
type PlayerSpec struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Health       int     `yaml:"health"`
	MoveSpeed    float64 `yaml:"move_speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	ShotCooldown float64 `yaml:"shot_cooldown"`
	FullCharge   float64 `yaml:"full_charge"`
	HalfCharge   float64 `yaml:"half_charge"`
	Invincible   float64 `yaml:"invincibility"`
}

func LoadPlayerSpec() (PlayerSpec, error) {
	return LoadSpec[PlayerSpec]("player.yaml")
}
