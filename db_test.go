package main

import (
	"reflect"
	"testing"
)

func TestDefaultChartRoundTrip(t *testing.T) {
	db, err := openChartDB(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := loadDefaultChart(db); err == nil {
		t.Error("expected an error before any chart is registered")
	}

	entries, err := loadChart([][]string{
		{"10", "1.01", "Caixa"},
		{"20", "2.01", "Fornecedores"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := saveDefaultChart(db, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := loadDefaultChart(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("got %+v, want %+v in original order", got, entries)
	}
}
