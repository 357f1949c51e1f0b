package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/glycoguard/glycoguard/internal/model"
)

// NameColumn labels each CSV row in the batch output.
const NameColumn = "Name"

// ParseBatchCSV reads a header row followed by one record per line. All
// feature columns and Name are required in any order; extra columns are
// ignored. Row numbers in errors count data rows from 1.
func ParseBatchCSV(r io.Reader) ([]BatchRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("file", "CSV file is empty")
		}
		return nil, csvError(err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []BatchRow
	for n := 1; ; n++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		row, err := parseRecord(record, index, n)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range append(model.FeatureNames[:], NameColumn) {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("file", "Missing required columns: "+strings.Join(missing, ", "))
	}

	return index, nil
}

func parseRecord(record []string, index map[string]int, n int) (BatchRow, error) {
	vec := make([]float64, model.FeatureCount)
	for i, col := range model.FeatureNames {
		raw := strings.TrimSpace(record[index[col]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !model.IsFinite(v) {
			return BatchRow{}, invalid(col, fmt.Sprintf("row %d: invalid numeric value for %s: %q", n, col, raw))
		}
		vec[i] = v
	}

	return BatchRow{
		Name:     strings.TrimSpace(record[index[NameColumn]]),
		Features: model.FeaturesFromVector(vec),
	}, nil
}

func csvError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return invalid("file", fmt.Sprintf("malformed CSV at line %d: %v", parseErr.Line, parseErr.Err))
	}
	return fmt.Errorf("failed to read CSV: %w", err)
}
