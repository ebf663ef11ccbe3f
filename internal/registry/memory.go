package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seaboard-labs/rosterd/internal/roster"
)

// Memory is an in-memory person registry. It backs tests and dry runs and
// mirrors the Postgres implementation's observable behavior.
type Memory struct {
	mu     sync.RWMutex
	people map[uuid.UUID]*roster.Person
	runs   []roster.ImportRun
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{people: make(map[uuid.UUID]*roster.Person)}
}

// FindByEmail looks up a person by lower-cased email.
// Returns (nil, nil) when no record matches.
func (m *Memory) FindByEmail(ctx context.Context, email string) (*roster.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, p := range m.people {
		if p.Email.Valid && strings.ToLower(p.Email.String) == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Create stores a new person, assigning an id when none is set.
func (m *Memory) Create(ctx context.Context, p roster.Person) (*roster.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	m.people[p.ID] = &p
	cp := p
	return &cp, nil
}

// Update applies a partial update to a stored person.
func (m *Memory) Update(ctx context.Context, id uuid.UUID, upd roster.PersonUpdate) (*roster.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.people[id]
	if !ok {
		return nil, fmt.Errorf("person not found: %s", id)
	}

	if upd.PreferredName.Valid {
		p.PreferredName = upd.PreferredName
	}
	if upd.Pronouns.Valid {
		p.Pronouns = upd.Pronouns
	}
	if upd.Phone.Valid {
		p.Phone = upd.Phone
	}
	if upd.BirthDate.Valid {
		p.BirthDate = upd.BirthDate
	}
	if upd.StartDate.Valid {
		p.StartDate = upd.StartDate
	}
	if upd.Address.Valid {
		p.Address = upd.Address
	}
	if upd.Emergency != nil {
		p.Emergency = upd.Emergency
	}
	if upd.Health != nil {
		p.Health = upd.Health
	}
	if upd.PoliceCheck.Valid {
		p.PoliceCheck = upd.PoliceCheck
	}
	if upd.FirstAid.Valid {
		p.FirstAid = upd.FirstAid
	}
	if upd.DriversLicense.Valid {
		p.DriversLicense = upd.DriversLicense
	}
	if upd.ExperienceRating.Valid {
		p.ExperienceRating = upd.ExperienceRating
	}
	if upd.TeamCode.Valid {
		p.TeamCode = upd.TeamCode
	}
	p.UpdatedAt = time.Now()

	cp := *p
	return &cp, nil
}

// RecordRun appends an import run summary.
func (m *Memory) RecordRun(ctx context.Context, run roster.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

// ListRuns returns recorded runs, newest first.
func (m *Memory) ListRuns(ctx context.Context, limit int) ([]roster.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]roster.ImportRun, len(m.runs))
	copy(runs, m.runs)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Count returns the number of stored people.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.people)
}

// All returns every stored person, ordered by name.
func (m *Memory) All() []roster.Person {
	m.mu.RLock()
	defer m.mu.RUnlock()

	people := make([]roster.Person, 0, len(m.people))
	for _, p := range m.people {
		people = append(people, *p)
	}
	sort.Slice(people, func(i, j int) bool {
		return people[i].Name < people[j].Name
	})
	return people
}
