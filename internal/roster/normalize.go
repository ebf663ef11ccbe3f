package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

// normalize.go converts raw spreadsheet text into canonical values.
//
// Every normalizer is pure and total: malformed input degrades to an
// invalid pgtype value (stored as NULL), never an error. Phone is the one
// exception to "degrade to null" — when the digit-count heuristics don't
// apply, the original string is passed through unformatted so the operator
// can still see what was entered.

// TitleCase lower-cases the whole string and then capitalizes each
// whitespace-delimited word, so all-caps and all-lowercase source data both
// come out as "Jane Doe".
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizeName title-cases a personal name field.
func NormalizeName(s string) pgtype.Text {
	name := TitleCase(s)
	if name == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: name, Valid: true}
}

// NormalizePronouns capitalizes each slash-delimited part: "she/her"
// becomes "She/Her".
func NormalizePronouns(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = TitleCase(p)
	}
	return pgtype.Text{String: strings.Join(parts, "/"), Valid: true}
}

// NormalizePhone formats a phone number by digit count. Multi-value cells
// ("709-123-4567; 709-765-4321") keep only the first entry. Ten digits get
// the local format, eleven digits starting with the country digit 1 get the
// international format, and anything else passes through unchanged.
func NormalizePhone(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ";,"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return pgtype.Text{}
	}

	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}

	switch {
	case len(digits) == 10:
		return pgtype.Text{
			String: fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10]),
			Valid:  true,
		}
	case len(digits) == 11 && digits[0] == '1':
		return pgtype.Text{
			String: fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:11]),
			Valid:  true,
		}
	default:
		return pgtype.Text{String: s, Valid: true}
	}
}

// genericDateLayouts are the free-form formats accepted after the ISO
// attempts fail. A fixed table rather than a locale-aware parser keeps
// results deterministic.
var genericDateLayouts = []string{
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// NormalizeDate parses a date through an ordered chain of attempts:
// ISO YYYY-MM-DD, year-month YYYY-MM (day defaults to 1), the generic
// layout table, and finally D-Mon-YY / D-Mon-YYYY. Unparseable text yields
// an invalid date.
func NormalizeDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return pgtype.Date{Time: t, Valid: true}
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return pgtype.Date{Time: t, Valid: true}
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}
	if t, ok := parseDayMonthYear(s); ok {
		return pgtype.Date{Time: t, Valid: true}
	}

	return pgtype.Date{}
}

// parseDayMonthYear handles the D-Mon-YY and D-Mon-YYYY forms common in
// exported sheets ("5-Mar-24"). Two-digit years at or below 50 land in
// 20xx, above 50 in 19xx.
func parseDayMonthYear(s string) (time.Time, bool) {
	if t, err := time.Parse("2-Jan-2006", s); err == nil {
		return t, true
	}
	t, err := time.Parse("2-Jan-06", s)
	if err != nil {
		return time.Time{}, false
	}
	// time.Parse pivots two-digit years at 68; shift 51-68 back a century.
	if yy := t.Year() % 100; yy > 50 && t.Year() >= 2000 {
		t = t.AddDate(-100, 0, 0)
	}
	return t, true
}

// Answer is the tri-state classification of a yes/no column: a value is
// yes, no, uncertain (the operator hedged), or absent entirely.
type Answer int

const (
	AnswerAbsent Answer = iota
	AnswerYes
	AnswerNo
	AnswerUncertain
)

// ClassifyAnswer maps raw text onto an Answer. Hedged entries like "?",
// "y?" and "n?" classify as uncertain; they are stored as false but
// reported for human follow-up. Unrecognized text classifies as absent.
func ClassifyAnswer(raw string) Answer {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes":
		return AnswerYes
	case "n", "no":
		return AnswerNo
	case "?", "y?", "n?":
		return AnswerUncertain
	default:
		return AnswerAbsent
	}
}

// Bool returns the stored representation of an answer. Uncertain defaults
// to false; absent stores NULL.
func (a Answer) Bool() pgtype.Bool {
	switch a {
	case AnswerYes:
		return pgtype.Bool{Bool: true, Valid: true}
	case AnswerNo, AnswerUncertain:
		return pgtype.Bool{Bool: false, Valid: true}
	default:
		return pgtype.Bool{}
	}
}

// NormalizeRating parses a 1-5 rating from a numeric or numeric-string
// cell. Out-of-range or unparseable input yields an invalid value.
func NormalizeRating(raw string) pgtype.Int4 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pgtype.Int4{}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return pgtype.Int4{}
		}
		n = int(f)
	}

	if n < 1 || n > 5 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

// ComposeAddress joins the non-empty address parts with ", ". All parts
// empty yields an invalid value.
func ComposeAddress(street, city, province, postal string) pgtype.Text {
	var parts []string
	for _, p := range []string{street, city, province, postal} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.Join(parts, ", "), Valid: true}
}

// NormalizeTeamCode upper-cases and trims a team identifier.
func NormalizeTeamCode(s string) pgtype.Text {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
