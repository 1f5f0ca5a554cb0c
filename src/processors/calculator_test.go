package processors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cgtfolio/backend/src/models"
)

func TestCalculator_Deterministic(t *testing.T) {
	raw := []models.RawTransaction{
		rawTx("BBB", "SELL", "2024-05-10", 150, 20),
		rawTx("AAA", "BUY", "2023-01-01", 100, 10),
		rawTx("BBB", "BUY", "2024-05-10", 50, 18),
		rawTx("AAA", "SELL", "2024-06-01", 60, 15),
		rawTx("BBB", "BUY", "2024-05-25", 50, 15),
		{Symbol: "AAA", Type: "BUY", Date: "not-a-date", Quantity: 1, PricePerUnit: 1},
	}

	first := NewCGTCalculator().Calculate(raw)
	second := NewCGTCalculator().Calculate(raw)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "same input must produce byte-identical reports")
}

func TestCalculator_YearBoundarySnapshots(t *testing.T) {
	report := NewCGTCalculator().Calculate([]models.RawTransaction{
		rawTx("XYZ", "BUY", "2023-01-01", 100, 10),
		rawTx("XYZ", "SELL", "2024-06-01", 50, 12),
	})

	require.Len(t, report.TaxYears, 1)
	y := report.TaxYears[0]
	assert.Equal(t, "2024/25", y.TaxYear)

	require.Len(t, y.Section104Start, 1)
	assert.Equal(t, 100.0, y.Section104Start[0].Quantity)
	assert.Equal(t, 1000.0, y.Section104Start[0].TotalCost)

	require.Len(t, y.Section104End, 1)
	assert.Equal(t, 50.0, y.Section104End[0].Quantity)
	assert.Equal(t, 500.0, y.Section104End[0].TotalCost)

	// End-of-data holdings agree with the last snapshot here.
	require.Len(t, report.Section104Pools, 1)
	assert.Equal(t, 50.0, report.Section104Pools[0].Quantity)
}

func TestCalculator_SummaryTotals(t *testing.T) {
	report := NewCGTCalculator().Calculate([]models.RawTransaction{
		rawTx("AAA", "BUY", "2024-05-01", 100, 10),
		rawTx("AAA", "SELL", "2024-05-01", 100, 12),
		rawTx("BBB", "BUY", "2024-06-01", 10, 5),
	})

	assert.Equal(t, 1, report.Summary.TotalDisposals)
	assert.Equal(t, 2, report.Summary.TotalSymbolsTraded)
	assert.Equal(t, 200.0, report.Summary.OverallGain)

	require.Len(t, report.Acquisitions, 2)
	for _, a := range report.Acquisitions {
		assert.Equal(t, models.TypeAcquire, a.Type)
	}
}

func TestCalculator_InvalidRowsReportedNotFatal(t *testing.T) {
	report := NewCGTCalculator().Calculate([]models.RawTransaction{
		rawTx("AAA", "BUY", "2024-05-01", 100, 10),
		rawTx("AAA", "SELL", "2024-05-01", 100, 12),
		{Symbol: "AAA", Type: "SELL", Date: "2024-05-02", Quantity: -5, PricePerUnit: 1},
		{Symbol: "", Type: "BUY", Date: "2024-05-02", Quantity: 5, PricePerUnit: 1},
	})

	require.Len(t, report.AllDisposals, 1)
	assert.Equal(t, 200.0, report.AllDisposals[0].Gain)

	require.Len(t, report.Errors, 2)
	for _, diag := range report.Errors {
		assert.Equal(t, models.ErrInvalidTransaction, diag.Type)
	}
}

func TestCalculator_EmptyInput(t *testing.T) {
	report := NewCGTCalculator().Calculate(nil)

	require.NotNil(t, report)
	assert.Empty(t, report.TaxYears)
	assert.Empty(t, report.AllDisposals)
	assert.NotNil(t, report.Errors)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 0, report.Summary.TotalDisposals)
}
