// Package roster implements the bulk roster reconciliation engine: tolerant
// delimited-text parsing, fuzzy header resolution, per-field normalization,
// and a non-destructive merge of imported rows into the person registry.
//
// The engine is synchronous and single-pass. Rows are processed strictly in
// document order, one registry read and at most one registry write per row,
// so no two rows can race to update the same record and the fill-only merge
// policy stays race-free. A failed row is recorded and skipped, never
// retried; a crash mid-import leaves a valid partial result.
package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Roles, team types and statuses assigned during import.
const (
	RoleContractor = "CONTRACTOR"

	TeamTypeContractor = "Contractor"
	TeamTypeEmployee   = "Employee"

	StatusPending = "PENDING"
)

// EmergencyContact is the composite emergency-contact object attached to a
// person record, stored as a single structured value.
type EmergencyContact struct {
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// HealthInfo is the composite health-information object attached to a
// person record.
type HealthInfo struct {
	Allergies string `json:"allergies,omitempty"`
	Medical   string `json:"medical,omitempty"`
}

// Person is a registry record. Nullable columns use pgtype values so that
// null-ness is explicit and the fill-only merge rule is a plain Valid
// check, not dynamic key iteration.
type Person struct {
	ID               uuid.UUID
	Name             string
	PreferredName    pgtype.Text
	Pronouns         pgtype.Text
	Email            pgtype.Text
	Phone            pgtype.Text
	BirthDate        pgtype.Date
	StartDate        pgtype.Date
	Address          pgtype.Text
	Emergency        *EmergencyContact
	Health           *HealthInfo
	PoliceCheck      pgtype.Bool
	FirstAid         pgtype.Bool
	DriversLicense   pgtype.Bool
	ExperienceRating pgtype.Int4
	TeamCode         pgtype.Text
	TeamType         string
	Role             string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PersonUpdate is a partial update to an existing person. Only fields with
// Valid (or non-nil) values are written; the reconciler only sets fields
// the existing record is currently missing.
type PersonUpdate struct {
	PreferredName    pgtype.Text
	Pronouns         pgtype.Text
	Phone            pgtype.Text
	BirthDate        pgtype.Date
	StartDate        pgtype.Date
	Address          pgtype.Text
	Emergency        *EmergencyContact
	Health           *HealthInfo
	PoliceCheck      pgtype.Bool
	FirstAid         pgtype.Bool
	DriversLicense   pgtype.Bool
	ExperienceRating pgtype.Int4
	TeamCode         pgtype.Text
}

// Empty reports whether the update would change nothing.
func (u PersonUpdate) Empty() bool {
	return !u.PreferredName.Valid &&
		!u.Pronouns.Valid &&
		!u.Phone.Valid &&
		!u.BirthDate.Valid &&
		!u.StartDate.Valid &&
		!u.Address.Valid &&
		u.Emergency == nil &&
		u.Health == nil &&
		!u.PoliceCheck.Valid &&
		!u.FirstAid.Valid &&
		!u.DriversLicense.Valid &&
		!u.ExperienceRating.Valid &&
		!u.TeamCode.Valid
}

// UncertainField flags a tri-state answer that could not be confidently
// classified as yes or no, keyed by the row's natural key so a reviewer can
// find the record later.
type UncertainField struct {
	Email string `json:"email"`
	Field string `json:"field"`
}

// ImportResult is the aggregate returned once per import run.
type ImportResult struct {
	Success         bool             `json:"success"`
	Created         int              `json:"created"`
	Updated         int              `json:"updated"`
	Skipped         int              `json:"skipped"`
	Errors          []string         `json:"errors"`
	UncertainFields []UncertainField `json:"uncertainFields"`
}

// PreviewResult is the read-only summary returned before an operator
// commits an import.
type PreviewResult struct {
	Headers    []string   `json:"headers"`
	RowCount   int        `json:"rowCount"`
	SampleRows [][]string `json:"sampleRows"`
}

// ImportRun is the persisted summary of one completed import, kept for the
// run history view.
type ImportRun struct {
	ID             uuid.UUID     `json:"id"`
	DefaultRole    string        `json:"defaultRole,omitempty"`
	Created        int           `json:"created"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	ErrorCount     int           `json:"errorCount"`
	UncertainCount int           `json:"uncertainCount"`
	Duration       time.Duration `json:"duration"`
	StartedAt      time.Time     `json:"startedAt"`
}
