package export

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/dealflow/internal/contracts"
)

func TestWriteDealsXLSX(t *testing.T) {
	cargo := "Electronics"
	deals := []contracts.Deal{
		{
			DealID: "RV-001", CompanyName: "Pacific Logistics Inc", ContactName: "Sarah Chen",
			TransportationMode: contracts.ModeOcean, Stage: contracts.StageProposal,
			Value: 45000, Probability: 70,
			CreatedDate: "2024-10-15", UpdatedDate: "2024-11-28", ExpectedCloseDate: "2024-12-15",
			SalesRep: "Mike Rodriguez", OriginCity: "Los Angeles, CA", DestinationCity: "Shanghai, China",
			CargoType: &cargo,
		},
		{
			DealID: "RV-002", CompanyName: "Mountain Transport Co", ContactName: "David Park",
			TransportationMode: contracts.ModeTrucking, Stage: contracts.StageNegotiation,
			Value: 12000, Probability: 85,
			CreatedDate: "2024-11-01", UpdatedDate: "2024-12-03", ExpectedCloseDate: "2024-12-10",
			SalesRep: "Jennifer Walsh", OriginCity: "Denver, CO", DestinationCity: "Phoenix, AZ",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDealsXLSX(&buf, deals))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Deal ID", rows[0][0])
	assert.Equal(t, "Cargo Type", rows[0][len(rows[0])-1])
	assert.Equal(t, "RV-001", rows[1][0])
	assert.Equal(t, "45000", rows[1][5])
	weighted, err := strconv.ParseFloat(rows[1][7], 64)
	require.NoError(t, err)
	assert.InDelta(t, 31500, weighted, 0.01)
	assert.Equal(t, "Electronics", rows[1][14])
	assert.Equal(t, "RV-002", rows[2][0])

	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestWriteDealsXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDealsXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
