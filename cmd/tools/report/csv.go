package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fabzclean/analytics/internal/analytics"
)

// csvOptions selects the columns of a series file
type csvOptions struct {
	ValueColumn string // header name; empty picks "value", then the last column
	DateColumn  string // header name; empty picks "date" when present
	DateFormat  string
	NoHeader    bool // columns are date,value (or value alone)
}

func defaultCSVOptions() csvOptions {
	return csvOptions{DateFormat: "2006-01-02"}
}

// loadSeriesFile reads a series from path, or from stdin when path is "-"
func loadSeriesFile(path string, opts csvOptions) (analytics.TimeSeriesData, error) {
	if path == "-" {
		return loadSeries(os.Stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return loadSeries(f, opts)
}

// loadSeries parses CSV rows into a series. Blank value cells are an error
// since the analytics never fill gaps.
func loadSeries(r io.Reader, opts csvOptions) (analytics.TimeSeriesData, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	valueIdx, dateIdx := -1, -1
	line := 0

	if opts.NoHeader {
		valueIdx, dateIdx = 1, 0
	} else {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line++
		valueIdx, dateIdx, err = resolveColumns(header, opts)
		if err != nil {
			return nil, err
		}
	}

	var series analytics.TimeSeriesData
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		vi, di := valueIdx, dateIdx
		if opts.NoHeader && len(record) == 1 {
			vi, di = 0, -1
		}
		if vi >= len(record) {
			return nil, fmt.Errorf("line %d: missing value column", line)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[vi]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q", line, record[vi])
		}

		point := analytics.TimeSeriesPoint{Value: value}
		if di >= 0 && di < len(record) {
			point.Time, err = time.Parse(opts.DateFormat, strings.TrimSpace(record[di]))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid date %q", line, record[di])
			}
		}
		series = append(series, point)
	}

	if len(series) == 0 {
		return nil, errors.New("no data rows")
	}
	return series, nil
}

func resolveColumns(header []string, opts csvOptions) (valueIdx, dateIdx int, err error) {
	valueIdx, dateIdx = -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case opts.ValueColumn != "" && h == opts.ValueColumn:
			valueIdx = i
		case opts.ValueColumn == "" && strings.EqualFold(h, "value"):
			valueIdx = i
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case opts.DateColumn == "" && strings.EqualFold(h, "date"):
			dateIdx = i
		}
	}

	if valueIdx == -1 {
		if opts.ValueColumn != "" {
			return 0, 0, fmt.Errorf("value column %q not found", opts.ValueColumn)
		}
		valueIdx = len(header) - 1
	}
	if dateIdx == -1 && opts.DateColumn != "" {
		return 0, 0, fmt.Errorf("date column %q not found", opts.DateColumn)
	}
	if dateIdx == valueIdx {
		dateIdx = -1
	}
	return valueIdx, dateIdx, nil
}
