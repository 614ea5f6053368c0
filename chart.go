package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Positional layout of an uploaded target chart. No header row is expected;
// columns beyond the third are ignored.
const (
	colCode           = 0
	colClassification = 1
	colName           = 2
	chartMinFields    = 3
)

var errMalformedChart = errors.New("chart needs at least three columns: code, classification, name")

// ChartEntry is one row of the target chart of accounts. Group and Display
// are derived on load and never change afterwards.
type ChartEntry struct {
	Code           string
	Classification string
	Name           string
	Group          string
	Display        string
}

func newChartEntry(code, classification, name string) ChartEntry {
	return ChartEntry{
		Code:           code,
		Classification: classification,
		Name:           name,
		Group:          firstChar(classification),
		Display:        classification + " - " + name,
	}
}

// loadChart builds the in-memory target chart from tabular rows. Fully empty
// rows are skipped; a row with fewer than three cells is a configuration
// error, not a skippable record.
func loadChart(rows [][]string) ([]ChartEntry, error) {
	var entries []ChartEntry
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		if len(row) < chartMinFields {
			return nil, errors.Wrapf(errMalformedChart, "row %d has %d columns", i+1, len(row))
		}
		entries = append(entries, newChartEntry(row[colCode], row[colClassification], row[colName]))
	}
	return entries, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if len(strings.TrimSpace(cell)) > 0 {
			return false
		}
	}
	return true
}

// readChartRows parses the chart file into rows of text cells. Spreadsheets
// read the first sheet; anything else is treated as csv.
func readChartRows(fpath string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(fpath), ".xlsx") {
		f, err := excelize.OpenFile(fpath)
		if err != nil {
			return nil, errors.Wrapf(err, "opening chart workbook %v", fpath)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Errorf("chart workbook %v has no sheets", fpath)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, errors.Wrapf(err, "reading sheet %v", sheets[0])
		}
		return rows, nil
	}

	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening chart file %v", fpath)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading chart csv %v", fpath)
	}
	return rows, nil
}

func chartGroup(entries []ChartEntry, group string) []ChartEntry {
	var filtered []ChartEntry
	for _, e := range entries {
		if e.Group == group {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// chartByDisplay is the reverse lookup used when the user picks an entry by
// its label. Displays are expected to be unique per chart; the first
// occurrence wins.
func chartByDisplay(entries []ChartEntry) map[string]ChartEntry {
	byDisplay := make(map[string]ChartEntry, len(entries))
	for _, e := range entries {
		if _, has := byDisplay[e.Display]; !has {
			byDisplay[e.Display] = e
		}
	}
	return byDisplay
}

func chartByCode(entries []ChartEntry) map[string]ChartEntry {
	byCode := make(map[string]ChartEntry, len(entries))
	for _, e := range entries {
		if _, has := byCode[e.Code]; !has {
			byCode[e.Code] = e
		}
	}
	return byCode
}
