package timer

import "sort"

// epsilon absorbs float accumulation so that deltas summing to the
// duration finish the timer on the expected update.
const epsilon = 1e-9

// Runnable is a callback fired once when a timer's elapsed time first
// reaches At.
type Runnable struct {
	At  float64
	Run func()
}

// Timer is a countdown measured in seconds. A timer is finished once
// elapsed reaches duration; IsJustFinished reports the crossing edge only.
// A zero-length timer crosses on the first update after a rewind.
type Timer struct {
	base         float64
	duration     float64
	elapsed      float64
	justFinished bool
	// pending is set while the finish of the current run is unreported.
	pending bool

	onFinish  func()
	runnables []Runnable
	next      int
}

// New creates a timer with the given duration. Negative durations are
// treated as zero.
func New(duration float64) *Timer {
	if duration < 0 {
		duration = 0
	}
	return &Timer{base: duration, duration: duration, pending: true}
}

// SetOnFinish registers a callback invoked on the update that finishes the timer.
func (t *Timer) SetOnFinish(fn func()) *Timer {
	if t == nil {
		return nil
	}
	t.onFinish = fn
	return t
}

// AddRunnables registers time-marked callbacks. Runnables fire in order of At.
func (t *Timer) AddRunnables(rs ...Runnable) *Timer {
	if t == nil {
		return nil
	}
	for _, r := range rs {
		if r.Run == nil {
			continue
		}
		t.runnables = append(t.runnables, r)
	}
	sort.SliceStable(t.runnables, func(i, j int) bool {
		return t.runnables[i].At < t.runnables[j].At
	})
	t.next = 0
	for t.next < len(t.runnables) && t.runnables[t.next].At < t.elapsed {
		t.next++
	}
	return t
}

// Update advances the timer by delta seconds.
func (t *Timer) Update(delta float64) {
	if t == nil {
		return
	}
	if t.IsFinished() && !t.pending {
		t.justFinished = false
		return
	}
	if delta > 0 {
		t.elapsed += delta
	}
	if t.elapsed >= t.duration-epsilon {
		t.elapsed = t.duration
	}

	for t.next < len(t.runnables) && t.runnables[t.next].At <= t.elapsed+epsilon {
		r := t.runnables[t.next]
		t.next++
		r.Run()
	}

	if t.elapsed >= t.duration {
		t.justFinished = true
		t.pending = false
		if t.onFinish != nil {
			t.onFinish()
		}
		return
	}
	t.justFinished = false
}

// Reset rewinds elapsed time to zero, keeping the current duration.
func (t *Timer) Reset() {
	if t == nil {
		return
	}
	t.elapsed = 0
	t.justFinished = false
	t.pending = true
	t.next = 0
}

// ResetDuration changes the duration and rewinds the timer.
func (t *Timer) ResetDuration(duration float64) {
	if t == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	t.duration = duration
	t.Reset()
}

// Restore rewinds the timer and puts back the duration it was created with.
func (t *Timer) Restore() {
	t.ResetDuration(t.base)
}

// SetToEnd marks the timer finished without firing onFinish or runnables.
func (t *Timer) SetToEnd() {
	if t == nil {
		return
	}
	t.elapsed = t.duration
	t.justFinished = false
	t.pending = false
	t.next = len(t.runnables)
}

func (t *Timer) IsFinished() bool {
	return t != nil && t.elapsed >= t.duration
}

func (t *Timer) IsJustFinished() bool {
	return t != nil && t.justFinished
}

func (t *Timer) Duration() float64 {
	if t == nil {
		return 0
	}
	return t.duration
}

func (t *Timer) Elapsed() float64 {
	if t == nil {
		return 0
	}
	return t.elapsed
}

// Ratio returns elapsed/duration in [0, 1]. A zero-length timer reports 1.
func (t *Timer) Ratio() float64 {
	if t == nil || t.duration <= 0 {
		return 1
	}
	return t.elapsed / t.duration
}
