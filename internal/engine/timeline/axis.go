package timeline

// ClampDirection reports which bound a SetBounds transition pushed Current
// against.
type ClampDirection int

// Clamp directions.
const (
	// ClampNone means Current was already inside the new bounds.
	ClampNone ClampDirection = iota

	// ClampToStart means Current was below the new minimum.
	ClampToStart

	// ClampToEnd means Current was above the new maximum.
	ClampToEnd
)

// String returns the wire note for the clamp direction ("" for ClampNone).
func (c ClampDirection) String() string {
	switch c {
	case ClampToStart:
		return "clamped-to-start"
	case ClampToEnd:
		return "clamped-to-end"
	default:
		return ""
	}
}

// Transition describes the outcome of a SetBounds call so dependent controls
// know whether to re-render.
type Transition struct {
	// Bounded reports whether the axis is Bounded after the call.
	Bounded bool

	// Moved reports whether Current changed, including its initial placement.
	Moved bool

	// Clamp is the direction Current was pushed, if it was out of range.
	Clamp ClampDirection
}

// Axis is one bounded, clamped month timeline.
//
// An axis starts Unbounded: no bounds are known, Current is absent and every
// navigation call is rejected (the UI disables its timeline controls).
// SetBounds with two valid months moves it to Bounded; with either bound
// absent (or inverted bounds, which the dashboard treats as malformed
// metadata) it falls back to Unbounded.
type Axis struct {
	bounded bool
	min     Month
	max     Month
	current Month
}

// NewAxis returns an Unbounded axis.
func NewAxis() *Axis {
	return &Axis{}
}

// Bounded reports whether bounds are known.
func (a *Axis) Bounded() bool {
	return a.bounded
}

// Bounds returns the inclusive bounds. ok is false while Unbounded.
func (a *Axis) Bounds() (min, max Month, ok bool) {
	if !a.bounded {
		return 0, 0, false
	}
	return a.min, a.max, true
}

// Current returns the current month, or the absent sentinel while Unbounded.
func (a *Axis) Current() Month {
	if !a.bounded {
		return 0
	}
	return a.current
}

// SetBounds installs new inclusive bounds and re-clamps Current into them in
// one atomic transition. If either bound is absent, or min > max, the axis
// becomes Unbounded.
func (a *Axis) SetBounds(min, max Month) Transition {
	if min.IsZero() || max.IsZero() || min > max {
		moved := a.bounded
		a.bounded = false
		a.min, a.max, a.current = 0, 0, 0
		return Transition{Bounded: false, Moved: moved}
	}

	prev := a.current
	hadBounds := a.bounded

	a.bounded = true
	a.min, a.max = min, max

	if prev.IsZero() {
		// First bounds for this axis: open on the most recent month.
		a.current = max
		return Transition{Bounded: true, Moved: true}
	}

	t := Transition{Bounded: true}
	switch {
	case prev < min:
		a.current = min
		t.Clamp = ClampToStart
	case prev > max:
		a.current = max
		t.Clamp = ClampToEnd
	default:
		a.current = prev
	}
	t.Moved = !hadBounds || a.current != prev
	return t
}

// Set moves Current to m. Navigation outside the bounds (or while Unbounded)
// is rejected as a no-op; the return value reports whether Current changed.
func (a *Axis) Set(m Month) bool {
	if !a.bounded || m < a.min || m > a.max {
		return false
	}
	if a.current == m {
		return false
	}
	a.current = m
	return true
}

// SetClamped moves Current to m clamped into the bounds. Used by "sync to
// map", where an out-of-range target snaps to the nearest bound instead of
// being rejected. Returns whether Current changed.
func (a *Axis) SetClamped(m Month) bool {
	if !a.bounded || m.IsZero() {
		return false
	}
	return a.Set(Clamp(m, a.min, a.max))
}

// Step moves Current by delta months, rejecting moves past either bound.
func (a *Axis) Step(delta int) bool {
	if !a.bounded {
		return false
	}
	return a.Set(a.current.Add(delta))
}

// JumpStart moves Current to the lower bound.
func (a *Axis) JumpStart() bool {
	if !a.bounded {
		return false
	}
	return a.Set(a.min)
}

// JumpEnd moves Current to the upper bound.
func (a *Axis) JumpEnd() bool {
	if !a.bounded {
		return false
	}
	return a.Set(a.max)
}
