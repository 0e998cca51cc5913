package input

import "time"

// HoldTracker turns Enter press/release edges into either a plain Enter or,
// when held long enough, a Cancel. Cancel fires at the threshold while the
// button is still down; the eventual release of a press that already fired
// emits nothing, so one physical press never produces two actions.
type HoldTracker struct {
	threshold time.Duration
	pressedAt time.Time
	down      bool
	fired     bool
}

// NewHoldTracker returns a tracker with the given long-press threshold.
func NewHoldTracker(threshold time.Duration) *HoldTracker {
	return &HoldTracker{threshold: threshold}
}

// Press records the falling edge at t. A repeated press without a release is
// ignored, which also debounces chatter on the pin.
func (h *HoldTracker) Press(t time.Time) {
	if h.down {
		return
	}
	h.down = true
	h.fired = false
	h.pressedAt = t
}

// Check reports Cancel once the press has been held past the threshold.
// The poller calls this every sample so the cancel lands at the 3 s mark,
// not whenever the user lets go.
func (h *HoldTracker) Check(t time.Time) (Action, bool) {
	if !h.down || h.fired || t.Sub(h.pressedAt) < h.threshold {
		return 0, false
	}
	h.fired = true
	return ActionCancel, true
}

// Release resolves the press. Reports the resulting action and whether the
// release produced one; a press consumed by Check produces nothing here.
func (h *HoldTracker) Release(t time.Time) (Action, bool) {
	if !h.down {
		return 0, false
	}
	h.down = false
	if h.fired {
		h.fired = false
		return 0, false
	}
	if t.Sub(h.pressedAt) >= h.threshold {
		return ActionCancel, true
	}
	return ActionEnter, true
}

// Held reports whether a press is in progress.
func (h *HoldTracker) Held() bool { return h.down }
