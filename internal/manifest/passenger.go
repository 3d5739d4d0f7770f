package manifest

import (
	"regexp"
	"strconv"
	"strings"

	"route-planner/internal/models"
)

// UnparsedTime is returned by ParseTime for empty or malformed input. It is
// below some real times (16:39 is 999), so use ParseClock to test validity.
const UnparsedTime = 999

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)?$`)

// ClassifyLeg derives the leg from a job id: a "-B" suffix is a dropoff,
// anything else (including "-A" and no suffix) is a pickup.
func ClassifyLeg(jobID string) models.LegType {
	if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(jobID)), "-B") {
		return models.LegDropoff
	}
	return models.LegPickup
}

// ParseTime converts "8:30 AM", "08:30PM" or "14:05" to minutes since
// midnight, or UnparsedTime. Callers that need to tell a late afternoon time
// from a missing one use ParseClock.
func ParseTime(s string) int {
	if minutes, ok := ParseClock(s); ok {
		return minutes
	}
	return UnparsedTime
}

// ParseClock is ParseTime with an explicit ok flag
func ParseClock(s string) (int, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "" {
		return 0, false
	}

	m := timePattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, false
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])

	switch m[3] {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}

	return hours*60 + minutes, true
}

// RowTime is the time that matters for the row's leg: the appointment time
// for pickups, the scheduled pickup for dropoffs.
func RowTime(row *models.ManifestRow) string {
	if ClassifyLeg(row.JobID) == models.LegPickup {
		return row.AptTime
	}
	return row.SchPU
}

// RowToPassenger projects a row into its presentation view. Coordinates are
// left unset.
func RowToPassenger(row *models.ManifestRow) models.Passenger {
	return models.Passenger{
		Name:            row.CustName,
		Leg:             ClassifyLeg(row.JobID),
		Address:         joinAddress(row.PUAddr, row.PUUnit, row.PickupCity, row.PUState, row.PickZip),
		DestAddress:     joinAddress(row.DOAddr, row.DOUnit, row.DropCity, row.DOState, row.DropZip),
		Time:            RowTime(row),
		Purpose:         row.BookingPurpose,
		Phone:           row.Phone,
		Notes:           row.Notes,
		AssistiveDevice: row.AssistiveDevice,
	}
}

func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
