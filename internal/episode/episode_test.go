package episode

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Lifecycle(t *testing.T) {
	ctx := NewContext()

	_, ok := ctx.Current()
	assert.False(t, ok)

	ep := ctx.Begin("single", 1)
	assert.Equal(t, 1, ep.Round)
	assert.NotEqual(t, uuid.Nil, ep.ID)

	ctx.Update(func(e *Episode) {
		e.Opponent = "X"
		e.Ticks = 12
	})
	cur, ok := ctx.Current()
	require.True(t, ok)
	assert.Equal(t, "X", cur.Opponent)

	sum, ok := ctx.End(Won, 64, 0)
	require.True(t, ok)
	assert.Equal(t, Won, sum.Outcome)
	assert.Equal(t, int64(12), sum.Ticks)
	assert.False(t, sum.Ended.Before(sum.Started))

	_, ok = ctx.End(Lost, 0, 0)
	assert.False(t, ok, "already ended")
}

func TestContext_RoundsAndIDs(t *testing.T) {
	ctx := NewContext()

	first := ctx.Begin("multi", 5)
	ctx.End(Lost, 0, 30)
	second := ctx.Begin("single", 1)

	assert.Equal(t, 2, second.Round)
	assert.Equal(t, 2, ctx.Round())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestContext_UpdateBetweenEpisodes(t *testing.T) {
	ctx := NewContext()
	called := false

	ctx.Update(func(*Episode) { called = true })

	assert.False(t, called)
}
