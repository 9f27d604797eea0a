package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

func day(s string) calendarday.Day {
	return calendarday.MustParse(s)
}

func plannedAssignment(id, person, project, start, end string, alloc float64) models.Assignment {
	return models.Assignment{
		ID:         id,
		PersonID:   person,
		ProjectID:  project,
		StartDay:   day(start),
		EndDay:     day(end),
		Allocation: alloc,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

type stubPeople struct {
	people  []models.Person
	listErr error
	lists   int
}

func (s *stubPeople) List(_ context.Context, filter models.PlanningFilter) ([]models.Person, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Person, 0, len(s.people))
	for _, p := range s.people {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPeople) FindByID(_ context.Context, id string) (*models.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			person := p
			return &person, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubAssignments struct {
	assignments []models.Assignment
	err         error
}

func (s *stubAssignments) ListByPerson(_ context.Context, personID string) ([]models.Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Assignment, 0)
	for _, a := range s.assignments {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAssignments) ListByPeople(_ context.Context, personIDs []string, window calendarday.Range) ([]models.Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]bool, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = true
	}
	out := make([]models.Assignment, 0)
	for _, a := range s.assignments {
		if wanted[a.PersonID] && !a.StartDay.After(window.End()) && !a.EndDay.Before(window.Start()) {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubProjects struct {
	projects []models.Project
}

func (s *stubProjects) ListByIDs(_ context.Context, ids []string) ([]models.Project, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]models.Project, 0)
	for _, p := range s.projects {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// memoryCache stores JSON payloads in a map so cached values round-trip the
// same way they do through redis.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = payload
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}
