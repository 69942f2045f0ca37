// Package ingest reads the flat-file inputs described in spec.md section 6:
// packages.csv, addresses.csv, and distances.csv. This is the "external
// collaborator" tier spec.md section 1 calls out as out of scope for the
// dispatch-and-routing core, but the simulator still needs something to
// produce its Parcel set and DistanceTable from. Grounded on the original
// implementation's distance.py/main.py CSV handling
// (_examples/original_source) and the teacher's wrapped-error,
// fail-the-whole-read style (_examples/erenceh-delivery-route-api/internal/adapters/repositories/sqlite_init.go).
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"delivery-route-service/internal/domain"
)

// LoadParcels reads packages.csv and builds one domain.Parcel per row.
// Malformed rows fail the entire read: a schedule built from partially
// ingested data is meaningless, so there is no partial-success path.
func LoadParcels(path string, baseDate time.Time) ([]*domain.Parcel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load parcels: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load parcels: read %q: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("load parcels: %q has no header row", path)
	}

	parcels := make([]*domain.Parcel, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 7 {
			return nil, fmt.Errorf("load parcels: %q row %d: want at least 7 columns, got %d", path, i+2, len(row))
		}

		notes := ""
		if len(row) > 7 {
			notes = strings.TrimSpace(row[7])
		}

		deadline, isEOD, err := parseDeadline(strings.TrimSpace(row[5]), baseDate)
		if err != nil {
			return nil, fmt.Errorf("load parcels: %q row %d: %w", path, i+2, err)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return nil, fmt.Errorf("load parcels: %q row %d: parse weight: %w", path, i+2, err)
		}

		id := strings.TrimSpace(row[0])
		address := strings.TrimSpace(row[1])
		city := strings.TrimSpace(row[2])
		state := strings.TrimSpace(row[3])
		zip := strings.TrimSpace(row[4])

		if id == "" || address == "" {
			return nil, fmt.Errorf("load parcels: %q row %d: id and address must be non-empty", path, i+2)
		}

		parcels = append(parcels, &domain.Parcel{
			ID:              id,
			Address:         address,
			City:            city,
			State:           state,
			Zip:             zip,
			OriginalAddress: address,
			OriginalCity:    city,
			OriginalState:   state,
			OriginalZip:     zip,
			Deadline:        deadline,
			DeadlineIsEOD:   isEOD,
			DeadlineInstant: deadline,
			Weight:          weight,
			Notes:           notes,
			Constraint:      ParseConstraint(notes),
			Status:          domain.AtHub,
		})
	}

	return parcels, nil
}

// LoadDistanceTable reads addresses.csv (column index 2, 0-indexed, per
// spec.md section 6) for the address order and distances.csv for the
// lower-triangular matrix, and builds a domain.DistanceTable.
func LoadDistanceTable(addressesPath, distancesPath string) (*domain.DistanceTable, error) {
	addresses, err := loadAddresses(addressesPath)
	if err != nil {
		return nil, fmt.Errorf("load distance table: %w", err)
	}

	matrix, err := loadDistanceMatrix(distancesPath)
	if err != nil {
		return nil, fmt.Errorf("load distance table: %w", err)
	}

	table, err := domain.NewDistanceTable(addresses, matrix)
	if err != nil {
		return nil, fmt.Errorf("load distance table: %w", err)
	}
	return table, nil
}

func loadAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%q has no header row", path)
	}

	seen := make(map[string]struct{})
	addresses := make([]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 3 {
			return nil, fmt.Errorf("%q row %d: want at least 3 columns, got %d", path, i+2, len(row))
		}
		address := strings.TrimSpace(row[2])
		if address == "" {
			return nil, fmt.Errorf("%q row %d: address must be non-empty", path, i+2)
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}

	return addresses, nil
}

func loadDistanceMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%q has no header row", path)
	}

	matrix := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		distances := make([]float64, 0, len(row)-1)
		for _, cell := range row[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				distances = append(distances, 0.0)
				continue
			}
			d, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%q row %d: parse distance %q: %w", path, i+2, cell, err)
			}
			distances = append(distances, d)
		}
		matrix = append(matrix, distances)
	}

	return matrix, nil
}

// parseDeadline turns "EOD" or "h:mm AM/PM" into an instant on baseDate.
// EOD is treated as 23:59 per the GLOSSARY in spec.md.
func parseDeadline(raw string, baseDate time.Time) (time.Time, bool, error) {
	if strings.EqualFold(raw, "EOD") {
		return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), 23, 59, 0, 0, time.UTC), true, nil
	}

	t, err := time.Parse("3:04 PM", raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse deadline %q: %w", raw, err)
	}

	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), false, nil
}

var (
	truckOnlyRe = regexp.MustCompile(`can only be on truck (\d+)`)
	groupRe     = regexp.MustCompile(`must be delivered with(.*)`)
)

// ParseConstraint interprets a parcel's free-text notes into the small set
// of directives the Dispatcher understands, per spec.md section 9: the
// parser is small, case-insensitive, and runs once at ingest so that
// runtime checks stay declarative instead of re-parsing strings every tick.
func ParseConstraint(notes string) domain.Constraint {
	lower := strings.ToLower(notes)

	var c domain.Constraint
	c.Delayed = strings.Contains(lower, "delayed")
	c.WrongAddress = strings.Contains(lower, "wrong address")

	if m := truckOnlyRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.TruckOnly = n
		}
	}

	if m := groupRe.FindStringSubmatch(lower); m != nil {
		for _, part := range strings.Split(m[1], ",") {
			id := strings.TrimSpace(strings.Trim(part, `" `))
			if id != "" {
				c.MustBeDeliveredWith = append(c.MustBeDeliveredWith, id)
			}
		}
	}

	return c
}

// CSVParcelRepository adapts LoadParcels to the ports.ParcelRepository
// interface so the composition root can hand the simulator a repository
// value instead of a file path.
type CSVParcelRepository struct {
	Path     string
	BaseDate time.Time
}

// ListParcels implements ports.ParcelRepository.
func (r CSVParcelRepository) ListParcels() ([]*domain.Parcel, error) {
	return LoadParcels(r.Path, r.BaseDate)
}
