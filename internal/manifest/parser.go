package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"route-planner/internal/models"
)

// Column headers as exported by the booking system
const (
	colJobDate           = "JobDate"
	colIDNumber          = "ID Number"
	colCustName          = "CustName"
	colPhone             = "Phone"
	colBookingPurpose    = "Booking Purpose"
	colPUAddr            = "PUAddr"
	colPUUnit            = "PU Unit"
	colPickupCity        = "PickupCity"
	colPUState           = "PUState"
	colPickZip           = "PickZip"
	colDOAddr            = "DOAddr"
	colDOUnit            = "DO Unit"
	colDropCity          = "DropCity"
	colDOState           = "DOState"
	colDropZip           = "DropZip"
	colAssistiveDevice   = "Assistive Device"
	colNTotalWheelChairs = "nTotalWheelChairs"
	colNTotalPassengers  = "nTotalPassengers"
	colSchPU             = "SchPU"
	colAptTime           = "AptTime"
	colNotes             = "Notes"
	colJobID             = "JobID"
)

// ParseResult holds the accepted rows and a human-readable line for every
// rejected or malformed record.
type ParseResult struct {
	Rows   []models.ManifestRow `json:"rows"`
	Errors []string             `json:"errors"`
}

// ParseCSV reads a manifest export. Per-row problems never abort the parse;
// only an unreadable header does.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &ParseResult{Rows: []models.ManifestRow{}, Errors: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	result := &ParseResult{Rows: []models.ManifestRow{}, Errors: []string{}}

	for i := 0; ; i++ {
		// header is row 1
		rowNum := i + 2

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, parseErr.Err))
				continue
			}
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		jobID := field(colJobID)
		custName := field(colCustName)

		if jobID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing JobID, skipping", rowNum))
			continue
		}
		if custName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing CustName, skipping", rowNum))
			continue
		}

		result.Rows = append(result.Rows, models.ManifestRow{
			JobDate:           field(colJobDate),
			IDNumber:          field(colIDNumber),
			CustName:          custName,
			Phone:             field(colPhone),
			BookingPurpose:    field(colBookingPurpose),
			PUAddr:            field(colPUAddr),
			PUUnit:            field(colPUUnit),
			PickupCity:        field(colPickupCity),
			PUState:           field(colPUState),
			PickZip:           field(colPickZip),
			DOAddr:            field(colDOAddr),
			DOUnit:            field(colDOUnit),
			DropCity:          field(colDropCity),
			DOState:           field(colDOState),
			DropZip:           field(colDropZip),
			AssistiveDevice:   field(colAssistiveDevice),
			NTotalWheelChairs: parseCount(field(colNTotalWheelChairs)),
			NTotalPassengers:  parseCount(field(colNTotalPassengers)),
			SchPU:             field(colSchPU),
			AptTime:           field(colAptTime),
			Notes:             field(colNotes),
			JobID:             jobID,
			Leg:               ClassifyLeg(jobID),
		})
	}

	log.Printf("[MANIFEST] Parsed manifest: rows=%d errors=%d", len(result.Rows), len(result.Errors))
	return result, nil
}

// FilterRows returns the rows of a single leg type, preserving order
func FilterRows(rows []models.ManifestRow, leg models.LegType) []models.ManifestRow {
	filtered := make([]models.ManifestRow, 0, len(rows))
	for _, row := range rows {
		if row.Leg == leg {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// UniquePassengers counts distinct ID numbers across rows
func UniquePassengers(rows []models.ManifestRow) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[row.IDNumber] = struct{}{}
	}
	return len(seen)
}

// parseCount reads the leading digits of a count cell, so "2.0" and
// "2 chairs" both count as 2. Anything else is 0.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
