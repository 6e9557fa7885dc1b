package behavior_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/sense"
)

func gutsTank(t *testing.T, targetX float64) (*behavior.Controller, *sense.Memory, *world) {
	t.Helper()
	def, err := loadCatalog(t).Get("guts_tank")
	require.NoError(t, err)

	w := &world{}
	body := sense.NewMemory(0, 0)
	body.Contacts.Grounded = true
	c, err := behavior.NewController(def, behavior.Deps{
		Body:    body,
		Target:  &point{x: targetX},
		Factory: w,
		Sounds:  w,
	})
	require.NoError(t, err)
	require.NoError(t, c.Spawn(behavior.Properties{"facing": "right"}))
	return c, body, w
}

func TestScriptedFireInRange(t *testing.T) {
	c, _, w := gutsTank(t, 100)

	for i := 0; i < 240; i++ {
		c.Update(dt)
	}

	require.Equal(t, 2, w.count("tank_shell"))
	var shells []behavior.Properties
	for _, s := range w.spawns {
		if s.variant == "tank_shell" {
			assert.Equal(t, "projectile", s.entityType)
			shells = append(shells, s.props)
		}
	}
	assert.EqualValues(t, 160, shells[0]["speed_x"])
	assert.EqualValues(t, 0, shells[0]["speed_y"])
	assert.EqualValues(t, 60, shells[1]["speed_y"])
	assert.Equal(t, "guts_tank", shells[0]["owner"])
	assert.Equal(t, []string{"tank_fire", "tank_fire"}, w.sounds)
	assert.Equal(t, behavior.StateID("idle"), c.State())
}

func TestScriptedRollWhenFar(t *testing.T) {
	c, body, _ := gutsTank(t, 500)

	c.Update(dt)
	c.Update(dt)
	c.Update(dt)

	assert.Equal(t, behavior.StateID("roll"), c.State())
	assert.Equal(t, 1, c.Facing())
	assert.InDelta(t, 40, body.VX, 1e-9)
}

func TestScriptMemoryResetsOnSpawn(t *testing.T) {
	c, _, w := gutsTank(t, 100)
	for i := 0; i < 240; i++ {
		c.Update(dt)
	}
	require.NoError(t, c.Spawn(behavior.Properties{"facing": "right"}))
	w.spawns = nil
	for i := 0; i < 240; i++ {
		c.Update(dt)
	}

	require.Equal(t, 2, w.count("tank_shell"))
	var first behavior.Properties
	for _, s := range w.spawns {
		if s.variant == "tank_shell" {
			first = s.props
			break
		}
	}
	assert.EqualValues(t, 0, first["speed_y"])
}

func TestScriptCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		script string
		yaml   string
	}{
		{"syntax", `checks := {`, ""},
		{"missing_check", "checks := {}\nactions := {}\n", `
transitions:
  - from: idle
    to: idle
    when: [script: nearby]
`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec := parseSpec(t, `
name: scripted
health: 3
script: custom.tengo
states:
  - name: idle
    animation: idle
`+c.yaml)
			_, err := behavior.Compile(spec, behavior.Options{
				LoadScript: func(string) ([]byte, error) { return []byte(c.script), nil },
			})
			require.ErrorIs(t, err, behavior.ErrConfig)
		})
	}
}

const counterScript = `
checks := {
	tamper: func(e) {
		m := e.memory()
		m.count = 100
		return true
	},
	counted: func(e) {
		m := e.memory()
		return !is_undefined(m.count) && m.count >= 2
	}
}

actions := {
	count: func(e, arg) {
		m := e.memory()
		if is_undefined(m.count) {
			m.count = 0
		}
		m.count = m.count + 1
	}
}
`

func TestScriptChecksCannotWriteMemory(t *testing.T) {
	spec := parseSpec(t, `
name: counter
health: 3
script: counter.tengo
states:
  - name: idle
    animation: idle
    while: [script: count]
  - name: tampered
    animation: idle
  - name: done
    animation: idle
transitions:
  - from: idle
    to: tampered
    when: [script: tamper]
  - from: idle
    to: done
    when: [script: counted]
`)
	def, err := behavior.Compile(spec, behavior.Options{
		LoadScript: func(string) ([]byte, error) { return []byte(counterScript), nil },
	})
	require.NoError(t, err)

	c, err := behavior.NewController(def, behavior.Deps{Body: sense.NewMemory(0, 0)})
	require.NoError(t, err)
	require.NoError(t, c.Spawn(behavior.Properties{}))

	c.Update(dt) // ready
	c.Update(dt) // active, count=1
	assert.Equal(t, behavior.StateID("idle"), c.State())
	c.Update(dt) // count=2
	assert.Equal(t, behavior.StateID("done"), c.State())
}
