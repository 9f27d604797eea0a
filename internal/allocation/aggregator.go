// Package allocation sums fractional FTE allocations per calendar day and
// judges those sums against the overallocation tolerance.
package allocation

import (
	"errors"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

var (
	// ErrInvalidRange reports an assignment or candidate whose start is after its end.
	ErrInvalidRange = calendarday.ErrInvalidRange
	// ErrInvalidAllocation reports a non-positive or non-finite allocation.
	ErrInvalidAllocation = errors.New("invalid allocation")
)

// DayTotal is the summed allocation of one person on one day.
type DayTotal struct {
	Day             calendarday.Day `json:"day"`
	TotalAllocation float64         `json:"total_allocation"`
	Overallocated   bool            `json:"overallocated"`
}

// Contribution is one assignment's share of a day total.
type Contribution struct {
	AssignmentID string  `json:"assignment_id"`
	ProjectID    string  `json:"project_id"`
	Allocation   float64 `json:"allocation"`
}

// DayBreakdown explains a day total.
type DayBreakdown struct {
	Day             calendarday.Day `json:"day"`
	TotalAllocation float64         `json:"total_allocation"`
	Overallocated   bool            `json:"overallocated"`
	Contributions   []Contribution  `json:"contributions"`
}

// TotalAllocation sums the allocation of every assignment covering day,
// skipping excludeID when it is non-empty.
func TotalAllocation(assignments []models.Assignment, day calendarday.Day, excludeID string) float64 {
	return totalDecimal(assignments, day, excludeID).InexactFloat64()
}

func totalDecimal(assignments []models.Assignment, day calendarday.Day, excludeID string) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range assignments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.Covers(day) {
			sum = sum.Add(decimal.NewFromFloat(a.Allocation))
		}
	}
	return sum
}

// DailyTotals computes the total for every day of rng in one pass over the
// assignments, instead of re-filtering the list for each day.
func DailyTotals(assignments []models.Assignment, rng calendarday.Range, excludeID string) []DayTotal {
	n := rng.Len()
	deltas := make([]decimal.Decimal, n+1)
	for i := range deltas {
		deltas[i] = decimal.Zero
	}
	for _, a := range assignments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		span, err := a.Span()
		if err != nil {
			continue
		}
		overlap, ok := rng.Intersect(span)
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(a.Allocation)
		from := rng.Index(overlap.Start())
		to := rng.Index(overlap.End()) + 1
		deltas[from] = deltas[from].Add(amount)
		deltas[to] = deltas[to].Sub(amount)
	}

	totals := make([]DayTotal, 0, n)
	running := decimal.Zero
	i := 0
	for day := range rng.All() {
		running = running.Add(deltas[i])
		totals = append(totals, DayTotal{
			Day:             day,
			TotalAllocation: running.InexactFloat64(),
			Overallocated:   exceedsTolerance(running),
		})
		i++
	}
	return totals
}

// Breakdown lists the assignments behind a day's total, largest share first.
func Breakdown(assignments []models.Assignment, day calendarday.Day, excludeID string) DayBreakdown {
	out := DayBreakdown{Day: day, Contributions: []Contribution{}}
	sum := decimal.Zero
	for _, a := range assignments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if !a.Covers(day) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(a.Allocation))
		out.Contributions = append(out.Contributions, Contribution{
			AssignmentID: a.ID,
			ProjectID:    a.ProjectID,
			Allocation:   a.Allocation,
		})
	}
	sort.SliceStable(out.Contributions, func(i, j int) bool {
		return out.Contributions[i].Allocation > out.Contributions[j].Allocation
	})
	out.TotalAllocation = sum.InexactFloat64()
	out.Overallocated = exceedsTolerance(sum)
	return out
}

// ForPerson returns the assignments owned by personID, preserving order.
func ForPerson(assignments []models.Assignment, personID string) []models.Assignment {
	owned := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.PersonID == personID {
			owned = append(owned, a)
		}
	}
	return owned
}

// FromPercent converts a whole-percentage allocation (50) to a fraction (0.5).
// Only request and export edges call it.
func FromPercent(percent float64) float64 {
	return decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)).InexactFloat64()
}

// ToPercent converts a fraction (0.5) to a whole percentage (50).
func ToPercent(fraction float64) float64 {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func validAllocation(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
