package runctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScopeContains(t *testing.T) {
	require.True(t, Scope(nil).Contains("mypy"))
	require.True(t, NewScope("mypy", "ty").Contains("ty"))
	require.False(t, NewScope("mypy").Contains("ty"))
}

func TestScopeUnion(t *testing.T) {
	require.Nil(t, Scope(nil).Union(NewScope("mypy")))
	require.Nil(t, NewScope("mypy").Union(nil))
	require.Equal(t, NewScope("mypy", "ty"), NewScope("mypy").Union(NewScope("ty")))
}

func TestRequestReturnsDelayAndFreshGeneration(t *testing.T) {
	c := NewController(250 * time.Millisecond)

	delay, gen1 := c.Request(nil)
	require.Equal(t, 250*time.Millisecond, delay)
	require.Equal(t, Scheduled, c.State())

	_, gen2 := c.Request(nil)
	require.Greater(t, gen2, gen1)
}

func TestDefaultDelay(t *testing.T) {
	c := NewController(0)
	delay, _ := c.Request(nil)
	require.Equal(t, DefaultDelay, delay)
}

func TestFireWithStaleGenerationIsNoOp(t *testing.T) {
	c := NewController(0)

	_, gen1 := c.Request(NewScope("mypy"))
	_, gen2 := c.Request(NewScope("ty"))

	_, ok := c.Fire(gen1)
	require.False(t, ok)
	require.Equal(t, Scheduled, c.State())

	run, ok := c.Fire(gen2)
	require.True(t, ok)
	require.Equal(t, 1, run.ID)
	require.Equal(t, NewScope("mypy", "ty"), run.Scope)
	require.Equal(t, InFlight, c.State())
}

func TestFireWithoutPendingIsNoOp(t *testing.T) {
	c := NewController(0)

	_, ok := c.Fire(0)
	require.False(t, ok)

	_, gen := c.Request(nil)
	run, ok := c.Fire(gen)
	require.True(t, ok)

	_, ok = c.Fire(gen)
	require.False(t, ok, "firing the same generation twice must not dispatch twice")
	require.Equal(t, 1, run.ID)
}

func TestScopedRequestsMergeAndFullWins(t *testing.T) {
	c := NewController(0)

	c.Request(NewScope("mypy"))
	_, gen := c.Request(nil)

	run, ok := c.Fire(gen)
	require.True(t, ok)
	require.Nil(t, run.Scope, "a full request absorbs scoped ones")
}

func TestRunIDsStrictlyIncrease(t *testing.T) {
	c := NewController(0)

	var last int
	for i := 0; i < 5; i++ {
		_, gen := c.Request(nil)
		run, ok := c.Fire(gen)
		require.True(t, ok)
		require.Greater(t, run.ID, last)
		last = run.ID
		c.Finish(run.ID)
	}
}

func TestStaleResultsRejectedAfterNewerDispatch(t *testing.T) {
	c := NewController(0)

	_, gen := c.Request(nil)
	run1, _ := c.Fire(gen)
	require.True(t, c.Accept(run1.ID))

	_, gen = c.Request(nil)
	run2, _ := c.Fire(gen)

	require.False(t, c.Accept(run1.ID), "run 1 results must be dropped once run 2 dispatched")
	require.True(t, c.Accept(run2.ID))
}

func TestFinish(t *testing.T) {
	c := NewController(0)

	_, gen := c.Request(nil)
	run, _ := c.Fire(gen)

	c.Finish(run.ID + 100) // stale id, no-op
	require.Equal(t, InFlight, c.State())
	require.True(t, c.Accept(run.ID))

	c.Finish(run.ID)
	require.Equal(t, Completed, c.State())
	require.False(t, c.Accept(run.ID))
}

func TestFinishWhileRescheduledKeepsSchedule(t *testing.T) {
	c := NewController(0)

	_, gen := c.Request(nil)
	run, _ := c.Fire(gen)

	c.Request(NewScope("mypy"))
	require.Equal(t, Scheduled, c.State())
	require.True(t, c.Accept(run.ID), "the streaming run stays accepted until a newer run dispatches")

	c.Finish(run.ID)
	require.Equal(t, Scheduled, c.State())
	require.False(t, c.Accept(run.ID))
}

func TestCancelActive(t *testing.T) {
	c := NewController(0)

	c.CancelActive() // nothing active, no-op
	require.Equal(t, Idle, c.State())

	_, gen := c.Request(nil)
	run, _ := c.Fire(gen)

	c.CancelActive()
	require.Equal(t, Cancelled, c.State())
	require.False(t, c.Accept(run.ID))

	// Re-requests are permitted from a terminal state.
	_, gen = c.Request(nil)
	run2, ok := c.Fire(gen)
	require.True(t, ok)
	require.Greater(t, run2.ID, run.ID)
}

func TestAcceptZeroIDNeverAccepted(t *testing.T) {
	c := NewController(0)
	require.False(t, c.Accept(0))
}
