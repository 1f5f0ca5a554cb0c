package processors

import (
	"fmt"

	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/utils"
)

// bedAndBreakfastWindowDays is the statutory anti-avoidance window: a
// re-purchase up to 30 calendar days (inclusive) after a disposal funds
// that disposal at the actual re-purchase cost, not the pool average.
const bedAndBreakfastWindowDays = 30

// disposalMatcher allocates each disposal's quantity across acquisitions
// using the statutory precedence: same day, then bed-and-breakfast, then
// the Section 104 pool. It owns the per-acquisition remaining balances
// (keyed by transaction ID) so input records are never mutated.
type disposalMatcher struct {
	ledger    *PoolLedger
	remaining map[int64]float64
}

func newDisposalMatcher(ledger *PoolLedger) *disposalMatcher {
	return &disposalMatcher{
		ledger:    ledger,
		remaining: make(map[int64]float64),
	}
}

// processSymbol runs one symbol's chronological event stream. Symbols are
// independent: no state is shared between them, so the order in which
// symbols are processed cannot affect results.
func (m *disposalMatcher) processSymbol(symbol string, txs []models.Transaction) ([]models.Disposal, []models.CalculationError) {
	var acquisitions []*models.Transaction
	for i := range txs {
		if txs[i].Type == models.TypeAcquire {
			acquisitions = append(acquisitions, &txs[i])
			m.remaining[txs[i].ID] = txs[i].Quantity
		}
	}

	var disposals []models.Disposal
	var diags []models.CalculationError

	for i := range txs {
		if txs[i].Type != models.TypeDispose {
			continue
		}
		d, diag := m.matchDisposal(symbol, &txs[i], acquisitions)
		disposals = append(disposals, d)
		if diag != nil {
			diags = append(diags, *diag)
		}
	}

	// Everything bought and never matched belongs in the pool so the
	// end-of-data holdings reflect the full position.
	for _, acq := range acquisitions {
		m.rollIntoPool(symbol, acq)
	}

	return disposals, diags
}

func (m *disposalMatcher) matchDisposal(symbol string, sale *models.Transaction, acquisitions []*models.Transaction) (models.Disposal, *models.CalculationError) {
	proceeds := disposalProceedsGBP(sale)
	toMatch := sale.Quantity
	var details []models.MatchDetail

	// Acquisitions strictly before the disposal can no longer be same-day
	// or B&B candidates for this or any later disposal, so they roll into
	// the pool first. This also fixes the pool average that the B&B impact
	// figure is compared against.
	for _, acq := range acquisitions {
		if acq.Date.Before(sale.Date) && !utils.SameCalendarDay(acq.Date, sale.Date) {
			m.rollIntoPool(symbol, acq)
		}
	}

	// Rule 1: same calendar date, in input order.
	for _, acq := range acquisitions {
		if toMatch <= utils.QuantityEpsilon {
			break
		}
		if !utils.SameCalendarDay(acq.Date, sale.Date) || m.remaining[acq.ID] <= utils.QuantityEpsilon {
			continue
		}
		matched := utils.MinFloat(toMatch, m.remaining[acq.ID])
		cost := m.consume(acq, matched)
		detail := newMatchDetail(models.RuleSameDay, matched, cost, sale, proceeds)
		detail.AcquisitionDate = acq.Date.Format(utils.ISODateFormat)
		details = append(details, detail)
		toMatch -= matched
	}

	// Rule 2: re-purchases within 30 days after the sale, ascending date.
	// Cost comes from the actual re-purchase, and the detail records how
	// far that cost sits from the pool average it displaced.
	for _, acq := range acquisitions {
		if toMatch <= utils.QuantityEpsilon {
			break
		}
		days := utils.DaysBetween(sale.Date, acq.Date)
		if days < 1 {
			continue
		}
		if days > bedAndBreakfastWindowDays {
			break
		}
		if m.remaining[acq.ID] <= utils.QuantityEpsilon {
			continue
		}
		matched := utils.MinFloat(toMatch, m.remaining[acq.ID])
		cost := m.consume(acq, matched)
		detail := newMatchDetail(models.RuleBedAndBreakfast, matched, cost, sale, proceeds)
		detail.AcquisitionDate = acq.Date.Format(utils.ISODateFormat)
		detail.DaysAfterSale = days
		detail.PoolAvgImpact = utils.RoundGBP(detail.CostPerShare - m.ledger.Pool(symbol).AverageCost())
		details = append(details, detail)
		toMatch -= matched
	}

	// Rule 3: draw the remainder from the Section 104 pool at average cost.
	pool := m.ledger.Pool(symbol)
	if toMatch > utils.QuantityEpsilon && pool.Quantity > utils.QuantityEpsilon {
		matched := utils.MinFloat(toMatch, pool.Quantity)
		qtyBefore, costBefore := pool.Quantity, pool.Cost
		cost := m.ledger.Draw(symbol, sale.Date, matched)
		detail := newMatchDetail(models.RuleSection104, matched, cost, sale, proceeds)
		detail.PoolQuantityBefore = qtyBefore
		detail.PoolCostBefore = costBefore
		detail.PoolQuantityAfter = pool.Quantity
		detail.PoolCostAfter = pool.Cost
		details = append(details, detail)
		toMatch -= matched
	}

	disposal := models.Disposal{
		Symbol:       symbol,
		Date:         sale.Date,
		Quantity:     sale.Quantity,
		Proceeds:     proceeds,
		TaxYear:      TaxYearLabel(sale.Date),
		MatchDetails: details,
	}

	var totalCost float64
	for _, d := range details {
		totalCost += d.Cost
	}
	disposal.Cost = utils.RoundGBP(totalCost)
	disposal.Gain = utils.RoundGBP(proceeds - disposal.Cost)

	// Shortfall: the stock record is incomplete (disposal precedes any
	// acquisition). The disposal stands with zero cost for the unmatched
	// remainder, which inflates the gain conservatively, and the gap is
	// flagged to the caller instead of being silently dropped.
	var diag *models.CalculationError
	if toMatch > utils.QuantityEpsilon {
		disposal.Unmatched = toMatch
		diag = &models.CalculationError{
			Type:              models.ErrUnmatchedDisposal,
			Symbol:            symbol,
			Date:              sale.Date.Format(utils.ISODateFormat),
			UnmatchedQuantity: toMatch,
			Message:           fmt.Sprintf("disposal of %v %s on %s could not be fully matched: %v units have no acquisition and were assigned zero cost", sale.Quantity, symbol, sale.Date.Format(utils.ISODateFormat), toMatch),
		}
	}

	return disposal, diag
}

// consume takes matched units from an acquisition's remaining balance and
// returns their pro-rata GBP cost.
func (m *disposalMatcher) consume(acq *models.Transaction, matched float64) float64 {
	m.remaining[acq.ID] -= matched
	if m.remaining[acq.ID] < utils.QuantityEpsilon {
		m.remaining[acq.ID] = 0
	}
	return prorateGBP(acquisitionCostGBP(acq), matched, acq.Quantity)
}

// rollIntoPool moves an acquisition's remaining balance into the Section
// 104 pool at its pro-rata cost. Safe to call repeatedly; an exhausted
// acquisition contributes nothing.
func (m *disposalMatcher) rollIntoPool(symbol string, acq *models.Transaction) {
	rem := m.remaining[acq.ID]
	if rem <= utils.QuantityEpsilon {
		return
	}
	cost := prorateGBP(acquisitionCostGBP(acq), rem, acq.Quantity)
	m.ledger.Add(symbol, acq.Date, rem, cost)
	m.remaining[acq.ID] = 0
}

func newMatchDetail(rule string, matched, cost float64, sale *models.Transaction, proceeds float64) models.MatchDetail {
	trancheProceeds := prorateGBP(proceeds, matched, sale.Quantity)
	detail := models.MatchDetail{
		Rule:             rule,
		Quantity:         matched,
		Cost:             cost,
		Proceeds:         trancheProceeds,
		Gain:             utils.RoundGBP(trancheProceeds - cost),
		CostPerShare:     utils.RoundGBP(cost / matched),
		ProceedsPerShare: utils.RoundGBP(trancheProceeds / matched),
	}
	return detail
}

// acquisitionCostGBP is the full GBP cost of an acquisition: gross amount
// plus fees, converted at the record's exchange rate and rounded at the
// point of computation.
func acquisitionCostGBP(t *models.Transaction) float64 {
	return utils.RoundGBP((t.GrossAmount() + t.Fees) / effectiveRate(t))
}

// disposalProceedsGBP is the net GBP proceeds of a disposal: gross amount
// minus fees, converted and rounded the same way.
func disposalProceedsGBP(t *models.Transaction) float64 {
	return utils.RoundGBP((t.GrossAmount() - t.Fees) / effectiveRate(t))
}

func effectiveRate(t *models.Transaction) float64 {
	if t.ExchangeRate > 0 {
		return t.ExchangeRate
	}
	return 1
}

func prorateGBP(total, part, whole float64) float64 {
	if whole <= utils.QuantityEpsilon {
		return 0
	}
	if part >= whole-utils.QuantityEpsilon {
		return total
	}
	return utils.RoundGBP(total * part / whole)
}
