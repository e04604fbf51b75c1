package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// WriteTable writes a table as a date column followed by its indicator
// columns in insertion order
func (w *CSVWriter) WriteTable(filePath string, t *domain.Table) error {
	names := t.Columns()
	columns := make([][]float64, len(names))
	for i, name := range names {
		values, err := t.Column(name)
		if err != nil {
			return err
		}
		columns[i] = values
	}

	stream, err := w.CreateStreamWriter(filePath, append([]string{domain.ColDate}, names...))
	if err != nil {
		return apperrors.NewIOError("failed to create table file", err).WithContext("path", filePath)
	}

	record := make([]string, len(names)+1)
	for row, d := range t.Dates() {
		record[0] = formatDate(d)
		for i := range columns {
			record[i+1] = formatFloat(columns[i][row])
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return apperrors.NewIOError("failed to write table row", err).WithContext("path", filePath)
		}
	}
	return stream.Close()
}

// ReadTable loads a file written by WriteTable
func ReadTable(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open table", err).WithContext("path", path)
	}
	defer f.Close()

	t, err := DecodeTable(f)
	if err != nil {
		if ae, ok := err.(*apperrors.AppError); ok {
			return nil, ae.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// DecodeTable parses a dated table from CSV. The first column must be the
// date column; empty cells are missing values. A leading BOM is ignored.
func DecodeTable(r io.Reader) (*domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewIOError("failed to read table", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed table", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("table has no header", nil)
	}

	header := records[0]
	if strings.TrimSpace(header[0]) != domain.ColDate {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("first column is %q, want %q", header[0], domain.ColDate), nil)
	}

	rows := records[1:]
	dates := make([]time.Time, len(rows))
	columns := make([][]float64, len(header)-1)
	for i := range columns {
		columns[i] = make([]float64, len(rows))
	}

	for r, rec := range rows {
		d, err := time.Parse(domain.DateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: bad date", r+1), err)
		}
		if r > 0 && !d.After(dates[r-1]) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d: date %s is not after %s", r+1, rec[0], dates[r-1].Format(domain.DateLayout)), nil)
		}
		dates[r] = d
		for c := range columns {
			v, err := parseFloat(rec[c+1])
			if err != nil {
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("row %d column %s: bad number %q", r+1, header[c+1], rec[c+1]), err)
			}
			columns[c][r] = v
		}
	}

	t := domain.NewTable(dates)
	for c, name := range header[1:] {
		if err := t.AddColumn(strings.TrimSpace(name), columns[c]); err != nil {
			return nil, apperrors.NewParsingError("invalid column", err)
		}
	}
	return t, nil
}
