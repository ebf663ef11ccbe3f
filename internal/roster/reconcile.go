package roster

import (
	"context"
	"fmt"
	"strings"
)

// reconcile.go decides, for each tokenized data row, whether to create a
// new person, fill gaps on an existing one, or skip the row entirely.

// RowOutcome is what the reconciler decided for a single data row.
type RowOutcome int

const (
	RowSkipped RowOutcome = iota
	RowCreated
	RowUpdated
)

// rowResult carries a row's outcome and any uncertainty flags back to the
// orchestrator. Failures are returned as ordinary errors rather than
// propagated past the per-row boundary.
type rowResult struct {
	outcome   RowOutcome
	uncertain []UncertainField
}

// cell returns the raw value of a canonical field in a row, or "" when the
// column is unresolved or the row is too short.
func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// reconcileRow processes one data row: skip rows without a usable name,
// build a fully normalized candidate, then create or conflict-safe-merge
// against the registry keyed by lower-cased email.
func (im *Importer) reconcileRow(ctx context.Context, row []string, cols map[string]int, defaultRole string) (rowResult, error) {
	// A row with no usable name never reaches normalization.
	rawName := strings.TrimSpace(cell(row, cols, FieldLegalName))
	if len(rawName) < 2 {
		return rowResult{outcome: RowSkipped}, nil
	}

	// The natural key: a lower-cased email. Rows without one are always
	// create candidates and are never looked up.
	email := ""
	if raw := strings.TrimSpace(cell(row, cols, FieldEmail)); strings.Contains(raw, "@") {
		email = strings.ToLower(raw)
	}

	candidate := im.buildCandidate(row, cols, rawName, email, defaultRole)

	// Uncertain answers are only tracked when the row has a natural key;
	// with no email there is nothing to reconcile the flag against later.
	var uncertain []UncertainField
	if email != "" {
		for _, tf := range []struct {
			field string
			raw   string
		}{
			{FieldPoliceCheck, cell(row, cols, FieldPoliceCheck)},
			{FieldFirstAid, cell(row, cols, FieldFirstAid)},
			{FieldDriversLicense, cell(row, cols, FieldDriversLicense)},
		} {
			if ClassifyAnswer(tf.raw) == AnswerUncertain {
				uncertain = append(uncertain, UncertainField{Email: email, Field: tf.field})
			}
		}
	}

	var existing *Person
	if email != "" {
		found, err := im.registry.FindByEmail(ctx, email)
		if err != nil {
			return rowResult{}, fmt.Errorf("lookup %s: %w", email, err)
		}
		existing = found
	}

	if existing == nil {
		if _, err := im.registry.Create(ctx, candidate); err != nil {
			return rowResult{}, fmt.Errorf("create: %w", err)
		}
		return rowResult{outcome: RowCreated, uncertain: uncertain}, nil
	}

	upd := fillOnlyUpdate(existing, candidate)
	if upd.Empty() {
		return rowResult{outcome: RowSkipped, uncertain: uncertain}, nil
	}
	if _, err := im.registry.Update(ctx, existing.ID, upd); err != nil {
		return rowResult{}, fmt.Errorf("update %s: %w", email, err)
	}
	return rowResult{outcome: RowUpdated, uncertain: uncertain}, nil
}

// buildCandidate runs every applicable normalizer over the row's raw values
// and assembles the composite objects.
func (im *Importer) buildCandidate(row []string, cols map[string]int, rawName, email, defaultRole string) Person {
	p := Person{
		Name:             TitleCase(rawName),
		PreferredName:    NormalizeName(cell(row, cols, FieldPreferredName)),
		Pronouns:         NormalizePronouns(cell(row, cols, FieldPronouns)),
		Phone:            NormalizePhone(cell(row, cols, FieldPhone)),
		BirthDate:        NormalizeDate(cell(row, cols, FieldBirthDate)),
		StartDate:        NormalizeDate(cell(row, cols, FieldStartDate)),
		PoliceCheck:      ClassifyAnswer(cell(row, cols, FieldPoliceCheck)).Bool(),
		FirstAid:         ClassifyAnswer(cell(row, cols, FieldFirstAid)).Bool(),
		DriversLicense:   ClassifyAnswer(cell(row, cols, FieldDriversLicense)).Bool(),
		ExperienceRating: NormalizeRating(cell(row, cols, FieldExperienceRating)),
		TeamCode:         NormalizeTeamCode(cell(row, cols, FieldTeamCode)),
		Status:           StatusPending,
	}

	if email != "" {
		p.Email.String = email
		p.Email.Valid = true
	}

	p.Address = ComposeAddress(
		cell(row, cols, FieldStreet),
		cell(row, cols, FieldCity),
		cell(row, cols, FieldProvince),
		cell(row, cols, FieldPostal),
	)

	// Role and team type derive from the single team-type signal.
	if strings.TrimSpace(cell(row, cols, FieldTeamType)) == TeamTypeContractor {
		p.Role = RoleContractor
		p.TeamType = TeamTypeContractor
	} else {
		p.Role = defaultRole
		p.TeamType = TeamTypeEmployee
	}

	ecName := TitleCase(cell(row, cols, FieldEmergencyName))
	ecRelation := TitleCase(cell(row, cols, FieldEmergencyRelation))
	ecPhone := NormalizePhone(cell(row, cols, FieldEmergencyPhone))
	if ecName != "" || ecRelation != "" || ecPhone.Valid {
		p.Emergency = &EmergencyContact{
			Name:     ecName,
			Relation: ecRelation,
			Phone:    ecPhone.String,
		}
	}

	allergies := strings.TrimSpace(cell(row, cols, FieldAllergies))
	medical := strings.TrimSpace(cell(row, cols, FieldMedical))
	if allergies != "" || medical != "" {
		p.Health = &HealthInfo{Allergies: allergies, Medical: medical}
	}

	return p
}

// fillOnlyUpdate builds the non-destructive update set: a candidate field
// is included only when it has a value and the existing field is currently
// null. Populated fields on the existing record are never overwritten.
func fillOnlyUpdate(existing *Person, candidate Person) PersonUpdate {
	var upd PersonUpdate

	if candidate.PreferredName.Valid && !existing.PreferredName.Valid {
		upd.PreferredName = candidate.PreferredName
	}
	if candidate.Pronouns.Valid && !existing.Pronouns.Valid {
		upd.Pronouns = candidate.Pronouns
	}
	if candidate.Phone.Valid && !existing.Phone.Valid {
		upd.Phone = candidate.Phone
	}
	if candidate.BirthDate.Valid && !existing.BirthDate.Valid {
		upd.BirthDate = candidate.BirthDate
	}
	if candidate.StartDate.Valid && !existing.StartDate.Valid {
		upd.StartDate = candidate.StartDate
	}
	if candidate.Address.Valid && !existing.Address.Valid {
		upd.Address = candidate.Address
	}
	if candidate.Emergency != nil && existing.Emergency == nil {
		upd.Emergency = candidate.Emergency
	}
	if candidate.Health != nil && existing.Health == nil {
		upd.Health = candidate.Health
	}
	if candidate.PoliceCheck.Valid && !existing.PoliceCheck.Valid {
		upd.PoliceCheck = candidate.PoliceCheck
	}
	if candidate.FirstAid.Valid && !existing.FirstAid.Valid {
		upd.FirstAid = candidate.FirstAid
	}
	if candidate.DriversLicense.Valid && !existing.DriversLicense.Valid {
		upd.DriversLicense = candidate.DriversLicense
	}
	if candidate.ExperienceRating.Valid && !existing.ExperienceRating.Valid {
		upd.ExperienceRating = candidate.ExperienceRating
	}
	if candidate.TeamCode.Valid && !existing.TeamCode.Valid {
		upd.TeamCode = candidate.TeamCode
	}

	return upd
}
