package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/models"
)

const testHeader = "JobDate,ID Number,CustName,Phone,Booking Purpose,PUAddr,PU Unit,PickupCity,PUState,PickZip,DOAddr,DO Unit,DropCity,DOState,DropZip,Assistive Device,nTotalWheelChairs,nTotalPassengers,SchPU,AptTime,Notes,JobID\n"

func TestParseCSVValidRows(t *testing.T) {
	csv := testHeader +
		"03/04/2025,1001,Jane Doe,555-0100,Day Program,123 Main St,Apt 4,Monterey Park,CA,91754,1839 W Valley Blvd,,Alhambra,CA,91803,Walker,0,1,07:45 AM,08:30 AM,Gate code 12,J100-A\n" +
		"03/04/2025,1001,Jane Doe,555-0100,Day Program,1839 W Valley Blvd,,Alhambra,CA,91803,123 Main St,Apt 4,Monterey Park,CA,91754,Walker,0,1,02:30 PM,,,J100-B\n"

	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.Errors)

	first := result.Rows[0]
	assert.Equal(t, "03/04/2025", first.JobDate)
	assert.Equal(t, "1001", first.IDNumber)
	assert.Equal(t, "Jane Doe", first.CustName)
	assert.Equal(t, "Apt 4", first.PUUnit)
	assert.Equal(t, "91754", first.PickZip)
	assert.Equal(t, "Walker", first.AssistiveDevice)
	assert.Equal(t, 1, first.NTotalPassengers)
	assert.Equal(t, "08:30 AM", first.AptTime)
	assert.Equal(t, "Gate code 12", first.Notes)
	assert.Equal(t, models.LegPickup, first.Leg)

	assert.Equal(t, models.LegDropoff, result.Rows[1].Leg)
	assert.Equal(t, "02:30 PM", result.Rows[1].SchPU)
}

func TestParseCSVMissingJobIDRejected(t *testing.T) {
	csv := testHeader +
		"03/04/2025,1001,Jane Doe,,,123 Main St,,Alhambra,CA,91801,,,,,,,,,,08:30 AM,,\n" +
		"03/04/2025,1002,John Roe,,,456 Oak Ave,,Alhambra,CA,91801,,,,,,,,,,09:00 AM,,J200-A\n"

	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "John Roe", result.Rows[0].CustName)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Row 2: Missing JobID, skipping", result.Errors[0])
}

func TestParseCSVMissingCustNameRejected(t *testing.T) {
	csv := testHeader +
		"03/04/2025,1001,   ,,,123 Main St,,Alhambra,CA,91801,,,,,,,,,,08:30 AM,,J100-A\n"

	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Equal(t, []string{"Row 2: Missing CustName, skipping"}, result.Errors)
}

func TestParseCSVTrimsHeadersAndSkipsBlankLines(t *testing.T) {
	csv := " JobDate , ID Number ,CustName, JobID \n" +
		"\n" +
		"03/04/2025,7,Ann Lee,K1-A\n" +
		"\n" +
		"03/04/2025,8,Bo Kim,K2-B\n"

	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "7", result.Rows[0].IDNumber)
	assert.Equal(t, "K2-B", result.Rows[1].JobID)
	assert.Empty(t, result.Errors)
}

func TestParseCSVNumericFallback(t *testing.T) {
	csv := "CustName,JobID,nTotalWheelChairs,nTotalPassengers\nAnn Lee,K1-A,two,\n"

	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 0, result.Rows[0].NTotalWheelChairs)
	assert.Equal(t, 0, result.Rows[0].NTotalPassengers)
}

func TestParseCountLeadingDigits(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2", 2},
		{"2.0", 2},
		{"2 chairs", 2},
		{" 3 ", 3},
		{"two", 0},
		{"", 0},
		{"-1", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCount(tt.in), tt.in)
	}
}

func TestParseCSVFractionalCounts(t *testing.T) {
	csv := "CustName,JobID,nTotalWheelChairs,nTotalPassengers\nAnn Lee,K1-A,1.0,2 riders\n"
	result, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Rows[0].NTotalWheelChairs)
	assert.Equal(t, 2, result.Rows[0].NTotalPassengers)
}

func TestParseCSVEmptyInput(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Errors)
}

func TestFilterRowsAndUniquePassengers(t *testing.T) {
	rows := []models.ManifestRow{
		{IDNumber: "1", JobID: "A-A", Leg: models.LegPickup},
		{IDNumber: "1", JobID: "A-B", Leg: models.LegDropoff},
		{IDNumber: "2", JobID: "B-A", Leg: models.LegPickup},
	}

	pickups := FilterRows(rows, models.LegPickup)
	require.Len(t, pickups, 2)
	assert.Equal(t, "A-A", pickups[0].JobID)
	assert.Equal(t, "B-A", pickups[1].JobID)

	assert.Len(t, FilterRows(rows, models.LegDropoff), 1)
	assert.Equal(t, 2, UniquePassengers(rows))
}
