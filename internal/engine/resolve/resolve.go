// Package resolve reconciles a requested month with the months that
// actually carry data. When a panel asks for a month the dataset has no
// value for, the resolver deterministically substitutes a nearby month
// and records how the substitution was made.
package resolve

import "github.com/droughtwatch/droughtwatch/internal/engine/timeline"

// Note describes how an effective month was derived from a requested one.
type Note string

const (
	// NoteNone means the requested month was used as-is.
	NoteNone Note = ""
	// NoteClampedStart means the request fell before the axis range.
	NoteClampedStart Note = "clamped-to-start"
	// NoteClampedEnd means the request fell after the axis range.
	NoteClampedEnd Note = "clamped-to-end"
	// NoteNearestPrevious means an earlier month with data was substituted.
	NoteNearestPrevious Note = "nearest-previous"
	// NoteNearestNext means a later month with data was substituted.
	NoteNearestNext Note = "nearest-next"
	// NoteNoData means no month in range carries data.
	NoteNoData Note = "no-data"
)

// Outcome records a single month resolution. It is advisory: callers
// re-point their axis at Effective but never re-trigger a fetch from it.
type Outcome struct {
	Requested timeline.Month
	Effective timeline.Month
	Note      Note
}

// Changed reports whether resolution moved away from the requested month.
func (o Outcome) Changed() bool {
	return o.Effective != o.Requested
}

// HasValue reports whether the month carries a value.
type HasValue func(timeline.Month) bool

// Availability builds a HasValue predicate from the set of months known
// to carry values.
func Availability(months []timeline.Month) HasValue {
	set := make(map[timeline.Month]struct{}, len(months))
	for _, m := range months {
		set[m] = struct{}{}
	}
	return func(m timeline.Month) bool {
		_, ok := set[m]
		return ok
	}
}

// EffectiveMonth resolves requested against the inclusive range
// [min, max] and the availability of data within it.
//
// Out-of-range requests clamp to the nearest bound and stop there, even
// if the bound itself carries no value. In-range requests prefer an
// exact hit, then the nearest earlier month with data, then the nearest
// later one. If the whole range is empty the requested month is kept
// unchanged with NoteNoData.
func EffectiveMonth(requested, min, max timeline.Month, has HasValue) Outcome {
	out := Outcome{Requested: requested, Effective: requested}
	if min.IsZero() || max.IsZero() || min > max {
		out.Note = NoteNoData
		return out
	}
	if requested < min {
		out.Effective = min
		out.Note = NoteClampedStart
		return out
	}
	if requested > max {
		out.Effective = max
		out.Note = NoteClampedEnd
		return out
	}
	if has == nil {
		has = func(timeline.Month) bool { return false }
	}
	if has(requested) {
		return out
	}
	for m := requested - 1; m >= min; m-- {
		if has(m) {
			out.Effective = m
			out.Note = NoteNearestPrevious
			return out
		}
	}
	for m := requested + 1; m <= max; m++ {
		if has(m) {
			out.Effective = m
			out.Note = NoteNearestNext
			return out
		}
	}
	out.Note = NoteNoData
	return out
}
