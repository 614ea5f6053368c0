package main

import (
	"reflect"
	"strings"
	"testing"
)

var sampleLines = []string{
	"|0000|LECD|01012024|31122024|EMPRESA|",
	"|I050|01012024|01|S|1|001|1|Caixa Geral|",
	"|I250|1|2|001|100,00|D|",
	"|I250|1|2|777|50,00|C|",
	"|I250|short",
	"|J900|TERMO|",
}

func TestRewriteEmptyMappingIsIdentity(t *testing.T) {
	out, substituted := rewriteLines(sampleLines, NewMapping())
	if !reflect.DeepEqual(out, sampleLines) {
		t.Errorf("got %q, want input unchanged", out)
	}
	if substituted != 0 {
		t.Errorf("substituted = %d, want 0", substituted)
	}
}

func TestRewriteSubstitutesExactlyOneField(t *testing.T) {
	m := NewMapping()
	m.Set("001", "10")
	out, substituted := rewriteLines(sampleLines, m)

	if substituted != 1 {
		t.Fatalf("substituted = %d, want 1", substituted)
	}
	got := strings.Split(out[2], fieldSep)
	want := strings.Split(sampleLines[2], fieldSep)
	if len(got) != len(want) {
		t.Fatalf("field count changed: %d -> %d", len(want), len(got))
	}
	for i := range got {
		if i == journalAccountField {
			if got[i] != "10" {
				t.Errorf("account field = %q, want 10", got[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Errorf("field %d changed: %q -> %q", i, want[i], got[i])
		}
	}
}

func TestRewriteLeavesNonJournalLinesAlone(t *testing.T) {
	m := NewMapping()
	// Values that collide with fields of non-journal lines.
	m.Set("001", "10")
	m.Set("EMPRESA", "X")
	m.Set("TERMO", "Y")
	out, _ := rewriteLines(sampleLines, m)

	for _, i := range []int{0, 1, 5} {
		if out[i] != sampleLines[i] {
			t.Errorf("non-journal line %d changed: %q", i, out[i])
		}
	}
}

func TestRewriteSkipsShortAndUnmappedLines(t *testing.T) {
	m := NewMapping()
	m.Set("001", "10")
	out, _ := rewriteLines(sampleLines, m)

	if out[3] != sampleLines[3] {
		t.Errorf("unmapped account line changed: %q", out[3])
	}
	if out[4] != sampleLines[4] {
		t.Errorf("short line changed: %q", out[4])
	}
}
