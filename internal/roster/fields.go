package roster

import "strings"

// fields.go defines the canonical field vocabulary and the fuzzy header
// resolver that maps externally authored spreadsheet columns onto it.

// Canonical field names. Source spreadsheets name their columns freely;
// ResolveHeaders maps whatever the export calls them onto this fixed set.
const (
	FieldLegalName        = "legal_name"
	FieldPreferredName    = "preferred_name"
	FieldPronouns         = "pronouns"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldBirthDate        = "birth_date"
	FieldStartDate        = "start_date"
	FieldStreet           = "street"
	FieldCity             = "city"
	FieldProvince         = "province"
	FieldPostal           = "postal"
	FieldEmergencyName    = "emergency_name"
	FieldEmergencyRelation = "emergency_relation"
	FieldEmergencyPhone   = "emergency_phone"
	FieldAllergies        = "allergies"
	FieldMedical          = "medical"
	FieldPoliceCheck      = "police_check"
	FieldFirstAid         = "first_aid"
	FieldDriversLicense   = "drivers_license"
	FieldExperienceRating = "experience_rating"
	FieldTeamCode         = "team_code"
	FieldTeamType         = "team_type"
)

// canonicalFields lists every field the engine understands. Composite
// sub-fields (emergency contact, address parts) resolve independently.
var canonicalFields = []string{
	FieldLegalName,
	FieldPreferredName,
	FieldPronouns,
	FieldEmail,
	FieldEmergencyName,
	FieldEmergencyRelation,
	FieldEmergencyPhone,
	FieldPhone,
	FieldBirthDate,
	FieldStartDate,
	FieldStreet,
	FieldCity,
	FieldProvince,
	FieldPostal,
	FieldAllergies,
	FieldMedical,
	FieldPoliceCheck,
	FieldFirstAid,
	FieldDriversLicense,
	FieldExperienceRating,
	FieldTeamCode,
	FieldTeamType,
}

var (
	spaceReplacer = strings.NewReplacer("_", " ", "-", " ")
	joinReplacer  = strings.NewReplacer("_", "", "-", "")
)

// ResolveHeaders maps every canonical field to a zero-based column index in
// the given header row, or -1 when no column matches. Matching is a pure
// function of the header row, so resolving the same row twice yields the
// same mapping.
func ResolveHeaders(header []string) map[string]int {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	idx := make(map[string]int, len(canonicalFields))
	for _, field := range canonicalFields {
		idx[field] = FindColumn(field, lowered)
	}
	return idx
}

// FindColumn locates the column for one canonical field among lower-cased
// header cells. Each candidate spelling of the field is compared against
// every cell with bidirectional substring containment, which tolerates
// real-world header drift ("Full Legal Name", "legal-name", "Legal Name:").
// The first matching cell in document order wins, so the leftmost of
// several ambiguous columns is preferred.
func FindColumn(field string, headers []string) int {
	for _, cand := range candidateSpellings(field) {
		for i, h := range headers {
			if h == "" {
				continue
			}
			if strings.Contains(h, cand) || strings.Contains(cand, h) {
				return i
			}
		}
	}
	return -1
}

// candidateSpellings expands a canonical label into the spellings the
// resolver will look for: the label itself, the label with separators as
// spaces, and the label with separators removed.
func candidateSpellings(field string) []string {
	cands := []string{field}
	if spaced := spaceReplacer.Replace(field); spaced != field {
		cands = append(cands, spaced)
	}
	if joined := joinReplacer.Replace(field); joined != field {
		cands = append(cands, joined)
	}
	return cands
}
