package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/robotmasters/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			require.Len(t, Entities(w), c.create)
			if c.destroyIndex < 0 {
				return
			}
			require.True(t, DestroyEntity(w, ents[c.destroyIndex]))
			assert.False(t, IsAlive(w, ents[c.destroyIndex]))
			assert.False(t, DestroyEntity(w, ents[c.destroyIndex]))
			assert.Len(t, Entities(w), c.create-1)
		})
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	h := component.NewComponentKind[int]()

	old := CreateEntity(w)
	require.NoError(t, Add(w, old, h, intPtr(1)))
	require.True(t, DestroyEntity(w, old))

	reused := CreateEntity(w)
	assert.Equal(t, old.id(), reused.id())
	assert.NotEqual(t, old, reused)
	assert.False(t, IsAlive(w, old))
	assert.False(t, Has(w, reused, h), "components must not survive destruction")
	assert.ErrorIs(t, Add(w, old, h, intPtr(2)), component.ErrEntityNotAlive)

	var zero Entity
	assert.False(t, zero.Valid())
	assert.False(t, IsAlive(w, zero))
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponentKind[int]()
	h2 := component.NewComponentKind[string]()
	h3 := component.NewComponentKind[float64]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1, intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1)
				require.True(t, ok)
				assert.Equal(t, 10, *v)
			},
			teardown: func() bool { return Remove(w, e1, h1) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2, stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2, stringPtr("b"))
			},
			check: func(t *testing.T) {
				assert.True(t, Has(w, e1, h2))
				assert.True(t, Has(w, e2, h2))
			},
			teardown: func() bool { return Remove(w, e1, h2) },
		},
		{
			name:  "replace_float",
			setup: func() error { return Add(w, e1, h3, float64Ptr(1.23)) },
			check: func(t *testing.T) {
				require.NoError(t, Add(w, e1, h3, float64Ptr(4.5)))
				v, ok := Get(w, e1, h3)
				require.True(t, ok)
				assert.Equal(t, 4.5, *v)
			},
			teardown: func() bool { return Remove(w, e1, h3) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.setup())
			tc.check(t)
			require.True(t, tc.teardown())
		})
	}

	assert.ErrorIs(t, Add(w, e1, h1, nil), component.ErrNilComponent)
	assert.ErrorIs(t, Add(w, e1, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind)
	assert.False(t, Remove(w, e1, h1))
}

func TestGetSharesPointer(t *testing.T) {
	w := NewWorld()
	h := component.NewComponentKind[int]()
	e := CreateEntity(w)
	require.NoError(t, Add(w, e, h, intPtr(1)))

	v, _ := Get(w, e, h)
	*v = 7
	again, _ := Get(w, e, h)
	assert.Equal(t, 7, *again)
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponentKind[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	require.NoError(t, Add(w, e1, h, intPtr(1)))
	require.NoError(t, Add(w, e3, h, intPtr(3)))

	seen := map[Entity]int{}
	ForEach(w, h, func(e Entity, v *int) { seen[e] = *v })
	assert.Equal(t, map[Entity]int{e1: 1, e3: 3}, seen)
	assert.NotContains(t, seen, e2)

	t.Run("destroy_while_iterating", func(t *testing.T) {
		visited := 0
		ForEach(w, h, func(e Entity, _ *int) {
			visited++
			DestroyEntity(w, e1)
			DestroyEntity(w, e3)
		})
		assert.Equal(t, 1, visited)
		assert.Empty(t, Query(w, h))
	})
}

func TestForEachMulti(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponentKind[int]()
	hs := component.NewComponentKind[string]()
	hf := component.NewComponentKind[float64]()

	all := CreateEntity(w)
	two := CreateEntity(w)
	one := CreateEntity(w)
	require.NoError(t, Add(w, all, hi, intPtr(1)))
	require.NoError(t, Add(w, all, hs, stringPtr("all")))
	require.NoError(t, Add(w, all, hf, float64Ptr(1)))
	require.NoError(t, Add(w, two, hi, intPtr(2)))
	require.NoError(t, Add(w, two, hs, stringPtr("two")))
	require.NoError(t, Add(w, one, hi, intPtr(3)))

	var pairs []string
	ForEach2(w, hi, hs, func(_ Entity, _ *int, s *string) { pairs = append(pairs, *s) })
	assert.ElementsMatch(t, []string{"all", "two"}, pairs)

	var triples []Entity
	ForEach3(w, hi, hs, hf, func(e Entity, _ *int, _ *string, _ *float64) { triples = append(triples, e) })
	assert.Equal(t, []Entity{all}, triples)

	assert.ElementsMatch(t, []Entity{all, two, one}, Query(w, hi))
	assert.ElementsMatch(t, []Entity{all, two}, Query(w, hs, hi))
	assert.Empty(t, Query(w, hi, component.NewComponentKind[bool]()))

	first, ok := First(w, hf)
	require.True(t, ok)
	assert.Equal(t, all, first)
}

func TestUpdateRunsSystemsInOrder(t *testing.T) {
	w := NewWorld()
	var order []string
	var deltas []float64
	w.AddSystem(SystemFunc(func(w *World) {
		order = append(order, "first")
		deltas = append(deltas, w.Delta())
		w.Events().Push(Event{Type: EventHit})
	}))
	w.AddSystem(SystemFunc(func(w *World) {
		order = append(order, "second")
		assert.Len(t, w.Events().Drain(EventHit), 1)
		w.Events().Push(Event{Type: "left_over"})
	}))
	w.AddSystem(nil)

	w.Update(0.5)
	w.Update(-1)

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
	assert.Equal(t, []float64{0.5, 0}, deltas)
	assert.Equal(t, 0.5, w.Elapsed())
	assert.Equal(t, uint64(2), w.Tick())
	assert.Zero(t, w.Events().Len(), "undrained events are dropped at the end of a tick")
}

func TestEventQueueDrain(t *testing.T) {
	var q EventQueue
	q.Push(Event{Type: "a", Data: 1})
	q.Push(Event{Type: "b", Data: 2})
	q.Push(Event{Type: "a", Data: 3})

	a := q.Drain("a")
	require.Len(t, a, 2)
	assert.Equal(t, 1, a[0].Data)
	assert.Equal(t, 3, a[1].Data)
	assert.Equal(t, 1, q.Len())

	rest := q.Drain("")
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].Type)
	assert.Nil(t, q.Drain("a"))
}
