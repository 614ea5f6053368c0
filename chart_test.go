package main

import (
	"errors"
	"testing"
)

func TestLoadChart(t *testing.T) {
	rows := [][]string{
		{"10", "1.01", "Caixa"},
		{"11", "1.02.01", "Bancos", "extra", "columns", "ignored"},
		{"", "", ""},
		{"40", "4.01", "Receita de Vendas"},
	}
	entries, err := loadChart(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	first := entries[0]
	if first.Code != "10" || first.Classification != "1.01" || first.Name != "Caixa" {
		t.Errorf("fields not mapped positionally: %+v", first)
	}
	if first.Group != "1" {
		t.Errorf("group = %q, want %q", first.Group, "1")
	}
	if want := "1.01 - Caixa"; first.Display != want {
		t.Errorf("display = %q, want %q", first.Display, want)
	}
	if entries[2].Group != "4" {
		t.Errorf("group = %q, want %q", entries[2].Group, "4")
	}
}

func TestLoadChartMalformed(t *testing.T) {
	_, err := loadChart([][]string{{"10", "1.01"}})
	if !errors.Is(err, errMalformedChart) {
		t.Errorf("got %v, want errMalformedChart", err)
	}
}

func TestChartGroup(t *testing.T) {
	entries, err := loadChart([][]string{
		{"10", "1.01", "Caixa"},
		{"20", "2.01", "Fornecedores"},
		{"12", "1.05", "Estoques"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g1 := chartGroup(entries, "1")
	if len(g1) != 2 || g1[0].Code != "10" || g1[1].Code != "12" {
		t.Errorf("group 1 = %+v, want codes 10, 12 in chart order", g1)
	}
	if g9 := chartGroup(entries, "9"); len(g9) != 0 {
		t.Errorf("group 9 = %+v, want empty", g9)
	}
}

func TestChartLookups(t *testing.T) {
	entries, _ := loadChart([][]string{
		{"10", "1.01", "Caixa"},
		{"20", "2.01", "Fornecedores"},
	})

	byDisplay := chartByDisplay(entries)
	if e, has := byDisplay["2.01 - Fornecedores"]; !has || e.Code != "20" {
		t.Errorf("display lookup failed: %+v", e)
	}
	byCode := chartByCode(entries)
	if e, has := byCode["10"]; !has || e.Name != "Caixa" {
		t.Errorf("code lookup failed: %+v", e)
	}
}
