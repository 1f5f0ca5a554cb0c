package processors

import (
	"sort"

	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/utils"
)

// assembleReport composes the final report object: per-year summaries,
// final pool state, the full disposal and acquisition lists, diagnostics,
// and the global totals. Pure aggregation, no new computation.
func assembleReport(txs []models.Transaction, disposals []models.Disposal, summaries []models.TaxYearSummary, ledger *PoolLedger, diags []models.CalculationError) *models.CalculationReport {
	allDisposals := make([]models.Disposal, len(disposals))
	copy(allDisposals, disposals)
	sort.SliceStable(allDisposals, func(i, j int) bool {
		return allDisposals[i].Date.Before(allDisposals[j].Date)
	})

	var acquisitions []models.Transaction
	symbolsSeen := make(map[string]bool)
	for _, tx := range txs {
		symbolsSeen[tx.Symbol] = true
		if tx.Type == models.TypeAcquire {
			acquisitions = append(acquisitions, tx)
		}
	}

	var overallGain float64
	for _, d := range allDisposals {
		overallGain += d.Gain
	}

	if summaries == nil {
		summaries = []models.TaxYearSummary{}
	}
	if acquisitions == nil {
		acquisitions = []models.Transaction{}
	}
	if diags == nil {
		diags = []models.CalculationError{}
	}

	return &models.CalculationReport{
		TaxYears:        summaries,
		Section104Pools: ledger.FinalHoldings(),
		AllDisposals:    allDisposals,
		Acquisitions:    acquisitions,
		Errors:          diags,
		Summary: models.ReportSummary{
			TotalDisposals:     len(allDisposals),
			TotalSymbolsTraded: len(symbolsSeen),
			OverallGain:        utils.RoundGBP(overallGain),
		},
	}
}
