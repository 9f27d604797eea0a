// Package snapshot reads planning data from YAML files and serves it through
// the same reader interfaces as the SQL repositories.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/models"
)

// ErrInvalidSnapshot wraps every consistency problem found in a file.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is one self-contained planning data set.
type Snapshot struct {
	People      []models.Person     `yaml:"people"`
	Projects    []models.Project    `yaml:"projects"`
	Assignments []models.Assignment `yaml:"assignments"`
}

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a snapshot and validates it.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.applyDefaults()
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Encode writes the snapshot as YAML.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

func (s *Snapshot) applyDefaults() {
	for i := range s.People {
		if s.People[i].Status == "" {
			s.People[i].Status = models.PersonStatusActive
		}
	}
}

// Validate reports duplicate ids, dangling references and assignments that
// break the range or allocation invariants. All problems are returned at once.
func (s *Snapshot) Validate() error {
	var problems []error
	people := make(map[string]struct{}, len(s.People))
	for _, p := range s.People {
		if p.ID == "" {
			problems = append(problems, errors.New("person with empty id"))
			continue
		}
		if _, dup := people[p.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate person %s", p.ID))
		}
		people[p.ID] = struct{}{}
	}
	projects := make(map[string]struct{}, len(s.Projects))
	for _, p := range s.Projects {
		if p.ID == "" {
			problems = append(problems, errors.New("project with empty id"))
			continue
		}
		if _, dup := projects[p.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate project %s", p.ID))
		}
		projects[p.ID] = struct{}{}
	}
	assignments := make(map[string]struct{}, len(s.Assignments))
	for _, a := range s.Assignments {
		if _, dup := assignments[a.ID]; dup || a.ID == "" {
			problems = append(problems, fmt.Errorf("duplicate or empty assignment id %q", a.ID))
		}
		assignments[a.ID] = struct{}{}
		if _, ok := people[a.PersonID]; !ok {
			problems = append(problems, fmt.Errorf("assignment %s: unknown person %s", a.ID, a.PersonID))
		}
		if _, ok := projects[a.ProjectID]; !ok {
			problems = append(problems, fmt.Errorf("assignment %s: unknown project %s", a.ID, a.ProjectID))
		}
		if err := allocation.Validate(a); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSnapshot, errors.Join(problems...))
}
