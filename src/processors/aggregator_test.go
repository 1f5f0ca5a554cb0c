package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cgtfolio/backend/src/models"
)

func disposalOn(day time.Time, gain float64) models.Disposal {
	return models.Disposal{
		Symbol:   "XYZ",
		Date:     day,
		Quantity: 1,
		Proceeds: gain,
		Gain:     gain,
		TaxYear:  TaxYearLabel(day),
	}
}

func TestTaxYearLabel(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date(2024, 4, 5), "2023/24"},
		{date(2024, 4, 6), "2024/25"},
		{date(2025, 4, 5), "2024/25"},
		{date(2025, 4, 6), "2025/26"},
		{date(2023, 12, 31), "2023/24"},
		{date(2099, 7, 1), "2099/00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TaxYearLabel(tc.date), "date %s", tc.date.Format("2006-01-02"))
	}
}

func TestAggregator_AnnualExemptionApplied(t *testing.T) {
	summaries, diags := buildTaxYearSummaries(
		[]models.Disposal{disposalOn(date(2023, 6, 1), 8000)},
		NewPoolLedger(),
	)

	require.Empty(t, diags)
	require.Len(t, summaries, 1)
	y := summaries[0]
	assert.Equal(t, "2023/24", y.TaxYear)
	assert.Equal(t, 8000.0, y.NetGain)
	assert.Equal(t, 6000.0, y.AnnualExemption)
	assert.Equal(t, 2000.0, y.TaxableGain)
	assert.Equal(t, 200.0, y.EstimatedTaxBasic)
	assert.Equal(t, 400.0, y.EstimatedTaxHigher)
	assert.Nil(t, y.RateChange)
}

func TestAggregator_GainBelowExemptionIsNotTaxable(t *testing.T) {
	summaries, _ := buildTaxYearSummaries(
		[]models.Disposal{disposalOn(date(2023, 6, 1), 4000)},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].TaxableGain)
	assert.Equal(t, 0.0, summaries[0].EstimatedTaxBasic)
	assert.Equal(t, 0.0, summaries[0].EstimatedTaxHigher)
}

func TestAggregator_LossesOffsetGainsWithinYear(t *testing.T) {
	summaries, _ := buildTaxYearSummaries(
		[]models.Disposal{
			disposalOn(date(2022, 6, 1), 10000),
			disposalOn(date(2022, 9, 1), -3000),
		},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 1)
	y := summaries[0]
	assert.Equal(t, 10000.0, y.TotalGains)
	assert.Equal(t, 3000.0, y.TotalLosses)
	assert.Equal(t, 7000.0, y.NetGain)
	assert.Equal(t, 0.0, y.TaxableGain, "net gain is inside the 12300 exemption")
}

func TestAggregator_RateChangeSplit(t *testing.T) {
	summaries, diags := buildTaxYearSummaries(
		[]models.Disposal{
			disposalOn(date(2024, 6, 1), 4000),
			disposalOn(date(2025, 1, 15), 2000),
		},
		NewPoolLedger(),
	)

	require.Empty(t, diags)
	require.Len(t, summaries, 1)
	y := summaries[0]
	assert.Equal(t, "2024/25", y.TaxYear)
	require.NotNil(t, y.RateChange)
	assert.Equal(t, "2024-10-30", y.RateChange.ChangeDate)

	pre, post := y.RateChange.Pre, y.RateChange.Post
	assert.Equal(t, 1, pre.NumberOfDisposals)
	assert.Equal(t, 4000.0, pre.TotalGains)
	assert.Equal(t, 0.10, pre.BasicRate)
	assert.Equal(t, 0.20, pre.HigherRate)
	assert.Equal(t, 1, post.NumberOfDisposals)
	assert.Equal(t, 2000.0, post.TotalGains)
	assert.Equal(t, 0.18, post.BasicRate)
	assert.Equal(t, 0.24, post.HigherRate)

	// Exemption split 2:1 by each side's share of gains.
	assert.Equal(t, 2000.0, pre.AllocatedExempt)
	assert.Equal(t, 1000.0, post.AllocatedExempt)
	assert.Equal(t, 2000.0, pre.TaxableGain)
	assert.Equal(t, 1000.0, post.TaxableGain)

	assert.Equal(t, 3000.0, y.TaxableGain)
	assert.Equal(t, 380.0, y.EstimatedTaxBasic, "2000x10% + 1000x18%")
	assert.Equal(t, 640.0, y.EstimatedTaxHigher, "2000x20% + 1000x24%")
}

func TestAggregator_RateChangeDateIsPostSide(t *testing.T) {
	summaries, _ := buildTaxYearSummaries(
		[]models.Disposal{disposalOn(date(2024, 10, 30), 5000)},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].RateChange)
	assert.Equal(t, 0, summaries[0].RateChange.Pre.NumberOfDisposals)
	assert.Equal(t, 1, summaries[0].RateChange.Post.NumberOfDisposals)
}

func TestAggregator_UnknownYearFallsBackWithDiagnostic(t *testing.T) {
	summaries, diags := buildTaxYearSummaries(
		[]models.Disposal{disposalOn(date(2016, 1, 1), 20000)},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 1)
	y := summaries[0]
	assert.Equal(t, "2015/16", y.TaxYear)
	assert.Equal(t, 12300.0, y.AnnualExemption)
	assert.Equal(t, 7700.0, y.TaxableGain)
	assert.Equal(t, 770.0, y.EstimatedTaxBasic)

	require.Len(t, diags, 1)
	assert.Equal(t, models.ErrUnknownTaxYear, diags[0].Type)
	assert.Equal(t, "2015/16", diags[0].Date)
}

func TestAggregator_YearsSortedAscending(t *testing.T) {
	summaries, _ := buildTaxYearSummaries(
		[]models.Disposal{
			disposalOn(date(2024, 6, 1), 100),
			disposalOn(date(2022, 6, 1), 100),
			disposalOn(date(2023, 6, 1), 100),
		},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 3)
	assert.Equal(t, "2022/23", summaries[0].TaxYear)
	assert.Equal(t, "2023/24", summaries[1].TaxYear)
	assert.Equal(t, "2024/25", summaries[2].TaxYear)
}

func TestAggregator_DisposalsSortedByDateWithinYear(t *testing.T) {
	summaries, _ := buildTaxYearSummaries(
		[]models.Disposal{
			disposalOn(date(2023, 9, 1), 100),
			disposalOn(date(2023, 5, 1), 100),
		},
		NewPoolLedger(),
	)

	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Disposals, 2)
	assert.True(t, summaries[0].Disposals[0].Date.Before(summaries[0].Disposals[1].Date))
}
