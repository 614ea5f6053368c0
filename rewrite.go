package main

import "strings"

// rewriteLines re-emits the export with journal-entry account fields pushed
// through the mapping. Everything else is copied verbatim. Returns the lines
// and how many had their account field substituted.
func rewriteLines(lines []string, m *Mapping) ([]string, int) {
	out := make([]string, 0, len(lines))
	var substituted int
	for _, line := range lines {
		rewritten, changed := rewriteLine(line, m)
		if changed {
			substituted++
		}
		out = append(out, rewritten)
	}
	return out, substituted
}

// rewriteLine substitutes the account field of a journal-entry line when the
// mapping covers it. The substitution is strictly single-field: the line is
// split on the delimiter, one field replaced, and the fields rejoined, so
// field count and every other field survive byte for byte. Lines of any
// other record type, lines too short for the account field, and unmapped
// accounts pass through unchanged.
func rewriteLine(line string, m *Mapping) (string, bool) {
	if !hasTag(line, journalTag) {
		return line, false
	}
	fields := strings.Split(line, fieldSep)
	if len(fields) <= journalAccountField {
		return line, false
	}
	// The usage set is keyed by trimmed identifiers, so the lookup trims too.
	code, has := m.Get(strings.TrimSpace(fields[journalAccountField]))
	if !has {
		return line, false
	}
	fields[journalAccountField] = code
	return strings.Join(fields, fieldSep), true
}
