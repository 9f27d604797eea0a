package snapshot

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

// Store answers repository queries from an in-memory snapshot. Result order
// matches the SQL repositories: people and projects by name then id,
// assignments by start day then file order.
type Store struct {
	people      []models.Person
	projects    []models.Project
	assignments []models.Assignment
}

// NewStore indexes a snapshot. The snapshot is copied.
func NewStore(snap *Snapshot) *Store {
	s := &Store{}
	if snap == nil {
		return s
	}
	s.people = append([]models.Person(nil), snap.People...)
	s.projects = append([]models.Project(nil), snap.Projects...)
	s.assignments = append([]models.Assignment(nil), snap.Assignments...)

	sort.SliceStable(s.people, func(i, j int) bool {
		return nameLess(s.people[i].Name, s.people[i].ID, s.people[j].Name, s.people[j].ID)
	})
	sort.SliceStable(s.projects, func(i, j int) bool {
		return nameLess(s.projects[i].Name, s.projects[i].ID, s.projects[j].Name, s.projects[j].ID)
	})
	sort.SliceStable(s.assignments, func(i, j int) bool {
		return s.assignments[i].StartDay.Before(s.assignments[j].StartDay)
	})
	return s
}

// List returns the people matching the filter's person dimensions.
func (s *Store) List(_ context.Context, filter models.PlanningFilter) ([]models.Person, error) {
	out := make([]models.Person, 0, len(s.people))
	for _, p := range s.people {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByID returns sql.ErrNoRows for unknown ids, like the SQL repository.
func (s *Store) FindByID(_ context.Context, id string) (*models.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			person := p
			return &person, nil
		}
	}
	return nil, sql.ErrNoRows
}

// ListByIDs returns the known projects among ids.
func (s *Store) ListByIDs(_ context.Context, ids []string) ([]models.Project, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]models.Project, 0, len(ids))
	for _, p := range s.projects {
		if _, ok := wanted[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListByPerson returns every assignment of one person.
func (s *Store) ListByPerson(_ context.Context, personID string) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0)
	for _, a := range s.assignments {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListByPeople returns the assignments of the given people overlapping window.
func (s *Store) ListByPeople(_ context.Context, personIDs []string, window calendarday.Range) ([]models.Assignment, error) {
	wanted := make(map[string]struct{}, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = struct{}{}
	}
	out := make([]models.Assignment, 0)
	for _, a := range s.assignments {
		if _, ok := wanted[a.PersonID]; !ok {
			continue
		}
		if a.StartDay.After(window.End()) || a.EndDay.Before(window.Start()) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func nameLess(nameA, idA, nameB, idB string) bool {
	if c := strings.Compare(nameA, nameB); c != 0 {
		return c < 0
	}
	return idA < idB
}
