package roster

import "strings"

// tokenizer.go splits raw delimited text into lines and fields.
//
// The splitter is deliberately hand-rolled rather than encoding/csv: roster
// exports arrive with ragged rows, stray whitespace around delimiters, and
// occasional unbalanced quotes, all of which encoding/csv rejects outright.
// Known limitation: iteration is line-based, so newlines embedded inside
// quoted fields are not supported.

// SplitLine tokenizes a single line of comma-delimited text into field
// values. A double quote toggles quoting; a doubled quote inside a quoted
// field emits a literal quote. Fields are trimmed of surrounding whitespace.
func SplitLine(line string) []string {
	var fields []string
	var cur strings.Builder

	inQuotes := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				// Escaped quote: emit one literal " and consume both.
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))

	return fields
}

// splitLines breaks a raw document into its non-empty lines, tolerating
// both LF and CRLF line endings.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// stripTitleRow discards a leading spreadsheet title row. Exports commonly
// carry a banner line such as "Staff Table - 2024" above the real header;
// any first line mentioning "table" is treated as one.
func stripTitleRow(lines []string) []string {
	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "table") {
		return lines[1:]
	}
	return lines
}
