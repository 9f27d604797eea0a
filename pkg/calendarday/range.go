package calendarday

import (
	"fmt"
	"iter"
)

// Range is an inclusive, ascending run of days. It is a value: iterating it
// never mutates it, and it can be iterated any number of times.
type Range struct {
	start Day
	end   Day
}

// DaysBetween returns the inclusive range from a to b.
func DaysBetween(a, b Day) (Range, error) {
	if a.After(b) {
		return Range{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, a, b)
	}
	return Range{start: a, end: b}, nil
}

// MustRange is DaysBetween for ranges known to be ordered.
func MustRange(a, b Day) Range {
	r, err := DaysBetween(a, b)
	if err != nil {
		panic(err)
	}
	return r
}

// Start returns the first day.
func (r Range) Start() Day { return r.start }

// End returns the last day.
func (r Range) End() Day { return r.end }

// Len is the number of days in the range, both ends included.
func (r Range) Len() int {
	return Diff(r.start, r.end) + 1
}

// Contains reports whether d lies within the range.
func (r Range) Contains(d Day) bool {
	return !d.Before(r.start) && !d.After(r.end)
}

// Index returns the zero-based offset of d from the range start.
func (r Range) Index(d Day) int {
	return Diff(r.start, d)
}

// At returns the i-th day of the range.
func (r Range) At(i int) Day {
	return AddDays(r.start, i)
}

// Clamp pulls d into the range.
func (r Range) Clamp(d Day) Day {
	return Max(r.start, Min(d, r.end))
}

// Intersect returns the overlap of r and other.
func (r Range) Intersect(other Range) (Range, bool) {
	start := Max(r.start, other.start)
	end := Min(r.end, other.end)
	if start.After(end) {
		return Range{}, false
	}
	return Range{start: start, end: end}, true
}

// Overlaps reports whether the two ranges share at least one day.
func (r Range) Overlaps(other Range) bool {
	_, ok := r.Intersect(other)
	return ok
}

// All yields every day of the range in ascending order.
func (r Range) All() iter.Seq[Day] {
	return func(yield func(Day) bool) {
		n := r.Len()
		for i := 0; i < n; i++ {
			if !yield(AddDays(r.start, i)) {
				return
			}
		}
	}
}

// Slice materialises the range.
func (r Range) Slice() []Day {
	days := make([]Day, 0, r.Len())
	for d := range r.All() {
		days = append(days, d)
	}
	return days
}

func (r Range) String() string {
	return r.start.String() + ".." + r.end.String()
}
