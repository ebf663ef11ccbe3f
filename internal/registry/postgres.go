// Package registry provides person-registry implementations backed by
// PostgreSQL and by memory. Both satisfy the collaborator interfaces the
// reconciliation engine depends on.
package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seaboard-labs/rosterd/internal/roster"
)

//go:embed schema.sql
var schemaSQL string

const personColumns = `id, name, preferred_name, pronouns, email, phone,
	birth_date, start_date, address, emergency_contact, health_info,
	police_check, first_aid, drivers_license, experience_rating,
	team_code, team_type, role, status, created_at, updated_at`

// Postgres is the pgx-backed person registry.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a registry over an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the registry tables when they do not exist yet.
func (r *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FindByEmail looks up a person by lower-cased email.
// Returns (nil, nil) when no record matches.
func (r *Postgres) FindByEmail(ctx context.Context, email string) (*roster.Person, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM people WHERE lower(email) = $1`,
		strings.ToLower(email),
	)

	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	return p, nil
}

// Create persists a new person and returns the stored record.
func (r *Postgres) Create(ctx context.Context, p roster.Person) (*roster.Person, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	emergency, err := marshalNullable(p.Emergency)
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	health, err := marshalNullable(p.Health)
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO people (
			id, name, preferred_name, pronouns, email, phone,
			birth_date, start_date, address, emergency_contact, health_info,
			police_check, first_aid, drivers_license, experience_rating,
			team_code, team_type, role, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		) RETURNING `+personColumns,
		p.ID, p.Name, p.PreferredName, p.Pronouns, p.Email, p.Phone,
		p.BirthDate, p.StartDate, p.Address, emergency, health,
		p.PoliceCheck, p.FirstAid, p.DriversLicense, p.ExperienceRating,
		p.TeamCode, p.TeamType, p.Role, p.Status,
	)

	created, err := scanPerson(row)
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return created, nil
}

// Update applies a partial update, writing only the fields the update set
// carries, and returns the stored record.
func (r *Postgres) Update(ctx context.Context, id uuid.UUID, upd roster.PersonUpdate) (*roster.Person, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.PreferredName.Valid {
		add("preferred_name", upd.PreferredName)
	}
	if upd.Pronouns.Valid {
		add("pronouns", upd.Pronouns)
	}
	if upd.Phone.Valid {
		add("phone", upd.Phone)
	}
	if upd.BirthDate.Valid {
		add("birth_date", upd.BirthDate)
	}
	if upd.StartDate.Valid {
		add("start_date", upd.StartDate)
	}
	if upd.Address.Valid {
		add("address", upd.Address)
	}
	if upd.Emergency != nil {
		data, err := json.Marshal(upd.Emergency)
		if err != nil {
			return nil, fmt.Errorf("update person: %w", err)
		}
		add("emergency_contact", data)
	}
	if upd.Health != nil {
		data, err := json.Marshal(upd.Health)
		if err != nil {
			return nil, fmt.Errorf("update person: %w", err)
		}
		add("health_info", data)
	}
	if upd.PoliceCheck.Valid {
		add("police_check", upd.PoliceCheck)
	}
	if upd.FirstAid.Valid {
		add("first_aid", upd.FirstAid)
	}
	if upd.DriversLicense.Valid {
		add("drivers_license", upd.DriversLicense)
	}
	if upd.ExperienceRating.Valid {
		add("experience_rating", upd.ExperienceRating)
	}
	if upd.TeamCode.Valid {
		add("team_code", upd.TeamCode)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("update person: empty update set")
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE people SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), personColumns),
		args...,
	)

	updated, err := scanPerson(row)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return updated, nil
}

// RecordRun persists an import run summary.
func (r *Postgres) RecordRun(ctx context.Context, run roster.ImportRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO import_runs (
			id, default_role, created_count, updated_count, skipped_count,
			error_count, uncertain_count, duration_ms, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.DefaultRole, run.Created, run.Updated, run.Skipped,
		run.ErrorCount, run.UncertainCount, run.Duration.Milliseconds(), run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent import runs, newest first.
func (r *Postgres) ListRuns(ctx context.Context, limit int) ([]roster.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, default_role, created_count, updated_count, skipped_count,
			error_count, uncertain_count, duration_ms, started_at
		FROM import_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []roster.ImportRun
	for rows.Next() {
		var (
			run        roster.ImportRun
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &run.DefaultRole, &run.Created, &run.Updated,
			&run.Skipped, &run.ErrorCount, &run.UncertainCount, &durationMs, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// scanPerson reads one person row, decoding the JSONB composites.
func scanPerson(row pgx.Row) (*roster.Person, error) {
	var (
		p         roster.Person
		emergency []byte
		health    []byte
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.PreferredName, &p.Pronouns, &p.Email, &p.Phone,
		&p.BirthDate, &p.StartDate, &p.Address, &emergency, &health,
		&p.PoliceCheck, &p.FirstAid, &p.DriversLicense, &p.ExperienceRating,
		&p.TeamCode, &p.TeamType, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(emergency) > 0 {
		p.Emergency = &roster.EmergencyContact{}
		if err := json.Unmarshal(emergency, p.Emergency); err != nil {
			return nil, fmt.Errorf("decode emergency contact: %w", err)
		}
	}
	if len(health) > 0 {
		p.Health = &roster.HealthInfo{}
		if err := json.Unmarshal(health, p.Health); err != nil {
			return nil, fmt.Errorf("decode health info: %w", err)
		}
	}

	return &p, nil
}

// marshalNullable marshals a composite pointer, mapping nil to SQL NULL.
func marshalNullable(v any) (any, error) {
	switch c := v.(type) {
	case *roster.EmergencyContact:
		if c == nil {
			return nil, nil
		}
	case *roster.HealthInfo:
		if c == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
