package main

import (
	"strings"
	"testing"
)

// End to end over the real fuzzy scorer: discover the source account, take
// the matcher's suggestion, rewrite the journal entry with it.
func TestConversionRoundTrip(t *testing.T) {
	chart, err := loadChart([][]string{{"10", "1.01", "Caixa"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := readLines([]byte(
		"|0000|LECD|01012024|31122024|EMPRESA|\n" +
			"|I050|01012024|01|S|1|001|1|Caixa Geral|\n" +
			"|I250|1|2|001|100,00|D|\n"))
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	used := findUsedAccounts(lines)
	accounts := discoverAccounts(lines, used, nil)
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1: %+v", len(accounts), accounts)
	}
	acc := accounts[0]
	if acc.ID != "001" || acc.Name != "Caixa Geral" {
		t.Fatalf("discovered %+v, want id 001 name Caixa Geral", acc)
	}

	// Group 0 has no chart entries, so the matcher must fall back to the
	// whole chart and still land on Caixa with a strong token overlap.
	sg := suggest(acc, chart, fuzzyOracle{})
	if !sg.Found || sg.Entry.Code != "10" {
		t.Fatalf("suggestion = %+v, want code 10", sg)
	}
	if sg.Score <= 50 {
		t.Errorf("score = %d, want a strong match", sg.Score)
	}

	m := NewMapping()
	m.Set(acc.ID, sg.Entry.Code)
	if !m.Complete(accounts) {
		t.Fatal("mapping should be complete")
	}

	out, substituted := rewriteLines(lines, m)
	if substituted != 1 {
		t.Fatalf("substituted = %d, want 1", substituted)
	}
	if want := "|I250|1|2|10|100,00|D|"; out[2] != want {
		t.Errorf("got %q, want %q", out[2], want)
	}
	if out[0] != lines[0] || out[1] != lines[1] {
		t.Error("lines other than the journal entry changed")
	}
	if strings.Contains(out[2], "001") {
		t.Error("source id still present in the converted journal entry")
	}
}
