package roster

import (
	"testing"
	"time"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{"all lowercase", "jane doe", true, "Jane Doe"},
		{"all caps", "JANE DOE", true, "Jane Doe"},
		{"mixed with extra spaces", "  jAnE   dOE ", true, "Jane Doe"},
		{"single word", "cher", true, "Cher"},
		{"empty", "", false, ""},
		{"whitespace only", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("NormalizeName(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.String != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got.String, tt.want)
			}
		})
	}
}

func TestNormalizePronouns(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"she/her", "She/Her"},
		{"THEY/THEM", "They/Them"},
		{"he / him", "He/Him"},
	}

	for _, tt := range tests {
		got := NormalizePronouns(tt.input)
		if !got.Valid || got.String != tt.want {
			t.Errorf("NormalizePronouns(%q) = %q (valid=%v), want %q", tt.input, got.String, got.Valid, tt.want)
		}
	}

	if NormalizePronouns("").Valid {
		t.Error("NormalizePronouns(\"\") should be invalid")
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digits", "7091234567", "(709) 123-4567"},
		{"ten digits with punctuation", "709-123-4567", "(709) 123-4567"},
		{"eleven digits with country code", "17091234567", "+1 (709) 123-4567"},
		{"formatted international", "+1 709 123 4567", "+1 (709) 123-4567"},
		{"too short passes through", "123", "123"},
		{"multi-value keeps first", "7091234567; 7097654321", "(709) 123-4567"},
		{"comma separated keeps first", "709-123-4567,709-765-4321", "(709) 123-4567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if !got.Valid || got.String != tt.want {
				t.Errorf("NormalizePhone(%q) = %q (valid=%v), want %q", tt.input, got.String, got.Valid, tt.want)
			}
		})
	}

	if NormalizePhone("").Valid {
		t.Error("NormalizePhone(\"\") should be invalid")
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{
			name:      "ISO date",
			input:     "2024-03-05",
			wantValid: true,
			want:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "year-month defaults to first",
			input:     "2024-03",
			wantValid: true,
			want:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "day-month-two-digit-year",
			input:     "5-Mar-24",
			wantValid: true,
			want:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "day-month-four-digit-year",
			input:     "5-Mar-1998",
			wantValid: true,
			want:      time.Date(1998, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "two-digit year above pivot lands last century",
			input:     "1-Jun-62",
			wantValid: true,
			want:      time.Date(1962, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "two-digit year at pivot stays this century",
			input:     "1-Jun-50",
			wantValid: true,
			want:      time.Date(2050, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "generic long form",
			input:     "March 5, 2024",
			wantValid: true,
			want:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "generic slash form",
			input:     "03/05/2024",
			wantValid: true,
			want:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "garbage",
			input:     "sometime next spring",
			wantValid: false,
		},
		{
			name:      "empty",
			input:     "",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("NormalizeDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && !got.Time.Equal(tt.want) {
				t.Errorf("NormalizeDate(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

func TestClassifyAnswer(t *testing.T) {
	tests := []struct {
		input string
		want  Answer
	}{
		{"y", AnswerYes},
		{"yes", AnswerYes},
		{"Y", AnswerYes},
		{"YES", AnswerYes},
		{"n", AnswerNo},
		{"no", AnswerNo},
		{"?", AnswerUncertain},
		{"y?", AnswerUncertain},
		{"n?", AnswerUncertain},
		{"", AnswerAbsent},
		{"   ", AnswerAbsent},
		{"maybe", AnswerAbsent},
	}

	for _, tt := range tests {
		if got := ClassifyAnswer(tt.input); got != tt.want {
			t.Errorf("ClassifyAnswer(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAnswerBool(t *testing.T) {
	if b := AnswerYes.Bool(); !b.Valid || !b.Bool {
		t.Errorf("AnswerYes.Bool() = %+v, want valid true", b)
	}
	if b := AnswerNo.Bool(); !b.Valid || b.Bool {
		t.Errorf("AnswerNo.Bool() = %+v, want valid false", b)
	}
	// Uncertain stores false; the flag travels separately.
	if b := AnswerUncertain.Bool(); !b.Valid || b.Bool {
		t.Errorf("AnswerUncertain.Bool() = %+v, want valid false", b)
	}
	if b := AnswerAbsent.Bool(); b.Valid {
		t.Errorf("AnswerAbsent.Bool() = %+v, want invalid", b)
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int32
	}{
		{"1", true, 1},
		{"5", true, 5},
		{"3", true, 3},
		{"3.0", true, 3},
		{"0", false, 0},
		{"6", false, 0},
		{"-1", false, 0},
		{"3.5", false, 0},
		{"high", false, 0},
		{"", false, 0},
	}

	for _, tt := range tests {
		got := NormalizeRating(tt.input)
		if got.Valid != tt.wantValid {
			t.Errorf("NormalizeRating(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			continue
		}
		if got.Valid && got.Int32 != tt.want {
			t.Errorf("NormalizeRating(%q) = %d, want %d", tt.input, got.Int32, tt.want)
		}
	}
}

func TestComposeAddress(t *testing.T) {
	tests := []struct {
		name                           string
		street, city, province, postal string
		wantValid                      bool
		want                           string
	}{
		{
			name:   "all parts",
			street: "12 Water St", city: "St. John's", province: "NL", postal: "A1C 1A1",
			wantValid: true,
			want:      "12 Water St, St. John's, NL, A1C 1A1",
		},
		{
			name: "missing parts skipped",
			city: "St. John's", postal: "A1C 1A1",
			wantValid: true,
			want:      "St. John's, A1C 1A1",
		},
		{
			name:      "all empty",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeAddress(tt.street, tt.city, tt.province, tt.postal)
			if got.Valid != tt.wantValid {
				t.Fatalf("ComposeAddress.Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.Valid && got.String != tt.want {
				t.Errorf("ComposeAddress = %q, want %q", got.String, tt.want)
			}
		})
	}
}

func TestNormalizeTeamCode(t *testing.T) {
	if got := NormalizeTeamCode(" nw-7 "); !got.Valid || got.String != "NW-7" {
		t.Errorf("NormalizeTeamCode = %q (valid=%v), want NW-7", got.String, got.Valid)
	}
	if NormalizeTeamCode("  ").Valid {
		t.Error("NormalizeTeamCode of blank should be invalid")
	}
}
