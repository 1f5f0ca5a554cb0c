package processors

import (
	"sort"

	"github.com/username/cgtfolio/backend/src/logger"
	"github.com/username/cgtfolio/backend/src/models"
)

// CGTCalculator implements CalculationEngine. It is stateless: every
// Calculate call builds a fresh PoolLedger and matcher, so two runs over
// the same input produce identical reports.
type CGTCalculator struct{}

func NewCGTCalculator() *CGTCalculator { return &CGTCalculator{} }

func (c *CGTCalculator) Calculate(records []models.RawTransaction) *models.CalculationReport {
	txs, diags := normalizeTransactions(records)

	if logger.L != nil {
		logger.L.Debug("Calculation starting", "inputRecords", len(records), "normalized", len(txs), "dropped", len(diags))
	}

	bySymbol := make(map[string][]models.Transaction)
	for _, tx := range txs {
		bySymbol[tx.Symbol] = append(bySymbol[tx.Symbol], tx)
	}
	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	ledger := NewPoolLedger()
	matcher := newDisposalMatcher(ledger)

	var disposals []models.Disposal
	for _, symbol := range symbols {
		symbolDisposals, symbolDiags := matcher.processSymbol(symbol, bySymbol[symbol])
		disposals = append(disposals, symbolDisposals...)
		diags = append(diags, symbolDiags...)
	}

	summaries, aggDiags := buildTaxYearSummaries(disposals, ledger)
	diags = append(diags, aggDiags...)

	return assembleReport(txs, disposals, summaries, ledger, diags)
}
