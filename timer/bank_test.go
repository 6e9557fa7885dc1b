package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Add("stand", New(0.75)))
	require.NoError(t, b.Add("shoot", New(0.5)))
	require.ErrorIs(t, b.Add("stand", New(1)), ErrDuplicateTimer)
	require.ErrorIs(t, b.Add("", New(1)), ErrEmptyName)

	assert.Equal(t, []string{"stand", "shoot"}, b.Names())
	assert.Equal(t, 2, b.Len())

	assert.True(t, b.Update("stand", 0.75))
	assert.False(t, b.Update("missing", 1))

	stand, ok := b.Get("stand")
	require.True(t, ok)
	assert.True(t, stand.IsJustFinished())

	shoot, _ := b.Get("shoot")
	shoot.ResetDuration(4)
	shoot.Update(1)

	b.ResetAll()
	assert.False(t, stand.IsFinished())
	assert.False(t, stand.IsJustFinished())
	assert.Equal(t, 0.5, shoot.Duration())
	assert.Zero(t, shoot.Elapsed())
}
