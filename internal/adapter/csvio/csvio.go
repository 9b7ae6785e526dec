// Package csvio reads location batches from CSV and exports the
// success and failure tables.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/location-mapper/internal/domain"
)

// Required input columns, case-sensitive. A header missing either one is
// a fatal input error: the pipeline never starts.
const (
	columnName    = "name"
	columnAddress = "address"
)

// ReadRecords parses the input table. Column order is free; extra
// columns are ignored. Rows shorter than the required columns are a
// parse error, not a per-record failure.
func ReadRecords(r io.Reader) ([]domain.LocationRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx, addressIdx := -1, -1
	for i, col := range header {
		switch col {
		case columnName:
			nameIdx = i
		case columnAddress:
			addressIdx = i
		}
	}
	if nameIdx < 0 || addressIdx < 0 {
		return nil, fmt.Errorf("input header %v is missing required column(s): need %q and %q", header, columnName, columnAddress)
	}

	var records []domain.LocationRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, domain.LocationRecord{
			Name:    row[nameIdx],
			Address: row[addressIdx],
		})
	}
	return records, nil
}

// WriteSuccesses exports the success table:
// name, address, latitude, longitude, provider.
func WriteSuccesses(w io.Writer, successes []domain.GeocodeResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "address", "latitude", "longitude", "provider"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range successes {
		row := []string{
			r.Record.Name,
			r.Record.Address,
			formatFloat(r.Coordinates.Lat),
			formatFloat(r.Coordinates.Lon),
			r.Provider,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailures exports the failure table:
// name, address, status, error_detail.
func WriteFailures(w io.Writer, failures []domain.GeocodeResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "address", "status", "error_detail"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range failures {
		row := []string{
			r.Record.Name,
			r.Record.Address,
			string(r.Status),
			r.ErrorDetail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
