package listing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	mu     sync.Mutex
	values []string
}

func (e *emitted) add(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = append(e.values, v)
}

func (e *emitted) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.values...)
}

func TestDebouncer_OnlyFinalValueEmitted(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, 500*time.Millisecond, "", out.add)

	for _, v := range []string{"a", "al", "ali", "alic", "alice"} {
		d.Set(v)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, out.get())
	assert.True(t, d.Pending())

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, []string{"alice"}, out.get())
	assert.False(t, d.Pending())
	assert.Equal(t, "alice", d.Value())

	// Nothing more without new input.
	clock.Advance(time.Second)
	assert.Equal(t, []string{"alice"}, out.get())
}

func TestDebouncer_OncePerSettledPeriod(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, 200*time.Millisecond, "", out.add)

	d.Set("x")
	clock.Advance(200 * time.Millisecond)
	d.Set("xy")
	clock.Advance(199 * time.Millisecond)
	require.Equal(t, []string{"x"}, out.get())
	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"x", "xy"}, out.get())
}

func TestDebouncer_UnchangedValueNotReemitted(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, 100*time.Millisecond, "", out.add)

	d.Set("b")
	d.Set("")
	clock.Advance(100 * time.Millisecond)
	assert.Empty(t, out.get())
}

func TestDebouncer_StopCancelsPendingTimer(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, 100*time.Millisecond, "", out.add)

	d.Set("late")
	require.Equal(t, 1, clock.Active())
	d.Stop()
	assert.Equal(t, 0, clock.Active())

	clock.Advance(time.Second)
	d.Set("after stop")
	clock.Advance(time.Second)
	assert.Empty(t, out.get())
}

func TestDebouncer_StaleTimerIgnored(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, 100*time.Millisecond, "", out.add)

	d.Set("first")
	// Simulate a timer that already fired in its own goroutine but lost the
	// race with a newer Set.
	stale := d.gen
	d.Set("second")
	d.fire(stale, "first")
	assert.Empty(t, out.get())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"second"}, out.get())
}

func TestDebouncer_ZeroDelayEmitsImmediately(t *testing.T) {
	var out emitted
	d := NewDebouncer(&manualClock{}, 0, "", out.add)
	d.Set("now")
	assert.Equal(t, []string{"now"}, out.get())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := &manualClock{}
	var out emitted
	d := NewDebouncer(clock, time.Second, "", out.add)

	d.Set("carol")
	d.Flush("carol")
	assert.Equal(t, []string{"carol"}, out.get())
	assert.Equal(t, 0, clock.Active())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"carol"}, out.get())
}
