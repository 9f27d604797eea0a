package models

import (
	"time"

	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// Assignment is a person working on a project over an inclusive day range at a
// fraction of one FTE.
type Assignment struct {
	ID         string          `db:"id" json:"id" yaml:"id"`
	PersonID   string          `db:"person_id" json:"person_id" yaml:"person_id"`
	ProjectID  string          `db:"project_id" json:"project_id" yaml:"project_id"`
	StartDay   calendarday.Day `db:"start_date" json:"start_date" yaml:"start_date"`
	EndDay     calendarday.Day `db:"end_date" json:"end_date" yaml:"end_date"`
	Allocation float64         `db:"allocation" json:"allocation" yaml:"allocation"`
	IsBillable bool            `db:"is_billable" json:"is_billable" yaml:"is_billable"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at" yaml:"created_at"`
}

// Span returns the assignment's inclusive day range.
func (a Assignment) Span() (calendarday.Range, error) {
	return calendarday.DaysBetween(a.StartDay, a.EndDay)
}

// Covers reports whether the assignment is active on day.
func (a Assignment) Covers(day calendarday.Day) bool {
	return !day.Before(a.StartDay) && !day.After(a.EndDay)
}
