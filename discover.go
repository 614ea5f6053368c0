package main

import "strings"

// Record layout of the pipe-delimited export. Every line starts with an
// empty field, then the record-type tag. Only two tags matter here; all
// other records pass through untouched.
const (
	fieldSep   = "|"
	chartTag   = "I050"
	journalTag = "I250"

	// Field offset of the account identifier in journal-entry records.
	journalAccountField = 4
)

// The identifier's offset in chart records is not fixed across export
// variants. These candidate offsets are probed in order, earliest first.
var chartIDOffsets = []int{2, 4, 6}

const unnamedAccount = "(unnamed)"

func hasTag(line, tag string) bool {
	return strings.HasPrefix(line, fieldSep+tag+fieldSep)
}

// SourceAccount is an account found in the export's chart records that has
// movement in at least one journal entry.
type SourceAccount struct {
	ID             string
	Classification string
	Name           string
	Group          string
}

// findUsedAccounts collects the account identifiers referenced by the
// export's journal-entry records. Lines too short for the account field are
// skipped, not reported.
func findUsedAccounts(lines []string) map[string]bool {
	used := make(map[string]bool)
	for _, line := range lines {
		if !hasTag(line, journalTag) {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) <= journalAccountField {
			continue
		}
		if id := strings.TrimSpace(fields[journalAccountField]); len(id) > 0 {
			used[id] = true
		}
	}
	return used
}

// namePredicate decides whether a chart-record field holds a descriptive
// account name. Export variants with unusual layouts can substitute their
// own predicate without touching the discovery pass.
type namePredicate func(string) bool

// defaultNamePredicate accepts the first field that is long enough and not
// purely numeric once grouping punctuation is stripped.
func defaultNamePredicate(field string) bool {
	field = strings.TrimSpace(field)
	if len(field) <= 3 {
		return false
	}
	stripped, letters := 0, false
	for _, r := range field {
		switch r {
		case '.', ',', '-', '/', ' ':
			continue
		}
		stripped++
		if r < '0' || r > '9' {
			letters = true
		}
	}
	return stripped > 0 && letters
}

// discoverAccounts walks the chart records of the export and keeps the
// accounts that appear in the usage set. Each line is probed at the
// candidate offsets; the first offset holding a used identifier becomes the
// line's pivot, the name is the first field after it that satisfies the
// predicate. Exact repeats collapse; entries differing only in case or
// whitespace stay distinct.
func discoverAccounts(lines []string, used map[string]bool, isName namePredicate) []SourceAccount {
	if isName == nil {
		isName = defaultNamePredicate
	}
	seen := make(map[SourceAccount]bool)
	var accounts []SourceAccount
	for _, line := range lines {
		if !hasTag(line, chartTag) {
			continue
		}
		fields := strings.Split(line, fieldSep)

		pos := -1
		var id string
		for _, off := range chartIDOffsets {
			if off >= len(fields) {
				break
			}
			if v := strings.TrimSpace(fields[off]); used[v] {
				pos, id = off, v
				break
			}
		}
		if pos < 0 {
			// The line identifies no account with movement.
			continue
		}

		name := unnamedAccount
		for _, f := range fields[pos+1:] {
			if isName(f) {
				name = strings.TrimSpace(f)
				break
			}
		}

		acc := SourceAccount{
			ID:             id,
			Classification: id,
			Name:           name,
			Group:          firstChar(id),
		}
		if seen[acc] {
			continue
		}
		seen[acc] = true
		accounts = append(accounts, acc)
	}
	return accounts
}
