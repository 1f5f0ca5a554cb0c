package processors

import (
	"fmt"
	"sort"

	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/utils"
)

// buildTaxYearSummaries partitions disposals into UK tax years, applies the
// annual exempt amount, and computes estimated tax per year. Pool snapshots
// at the year boundaries come from a pure replay of the ledger's event log.
func buildTaxYearSummaries(disposals []models.Disposal, ledger *PoolLedger) ([]models.TaxYearSummary, []models.CalculationError) {
	byYear := make(map[string][]models.Disposal)
	for _, d := range disposals {
		byYear[d.TaxYear] = append(byYear[d.TaxYear], d)
	}

	labels := make([]string, 0, len(byYear))
	for label := range byYear {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var summaries []models.TaxYearSummary
	var diags []models.CalculationError

	for _, label := range labels {
		cfg, known := resolveTaxYear(label)
		if !known {
			diags = append(diags, models.CalculationError{
				Type:    models.ErrUnknownTaxYear,
				Date:    label,
				Message: fmt.Sprintf("no configuration for tax year %s: using derived defaults (exemption %.2f, rates %.0f%%/%.0f%%)", label, cfg.AnnualExemption, cfg.BasicRate*100, cfg.HigherRate*100),
			})
		}
		summaries = append(summaries, summarizeTaxYear(cfg, byYear[label], ledger))
	}

	return summaries, diags
}

func summarizeTaxYear(cfg TaxYearConfig, disposals []models.Disposal, ledger *PoolLedger) models.TaxYearSummary {
	sort.SliceStable(disposals, func(i, j int) bool {
		return disposals[i].Date.Before(disposals[j].Date)
	})

	summary := models.TaxYearSummary{
		TaxYear:           cfg.Label,
		NumberOfDisposals: len(disposals),
		AnnualExemption:   cfg.AnnualExemption,
		Disposals:         disposals,
		// Year start state excludes the 6 April trades themselves; year
		// end includes everything through 5 April.
		Section104Start: ledger.SnapshotAt(cfg.Start),
		Section104End:   ledger.SnapshotAt(cfg.End.AddDate(0, 0, 1)),
	}

	var proceeds, cost, gains, losses float64
	for _, d := range disposals {
		proceeds += d.Proceeds
		cost += d.Cost
		if d.Gain >= 0 {
			gains += d.Gain
		} else {
			losses += -d.Gain
		}
	}

	summary.TotalProceeds = utils.RoundGBP(proceeds)
	summary.TotalCost = utils.RoundGBP(cost)
	summary.TotalGains = utils.RoundGBP(gains)
	summary.TotalLosses = utils.RoundGBP(losses)
	// Losses always offset gains fully within the year; there is no
	// carryback here.
	summary.NetGain = utils.RoundGBP(gains - losses)

	if cfg.RateChange != nil {
		applyRateChangeSplit(&summary, cfg)
		return summary
	}

	summary.TaxableGain = taxableGain(summary.NetGain, cfg.AnnualExemption)
	summary.EstimatedTaxBasic = utils.RoundGBP(summary.TaxableGain * cfg.BasicRate)
	summary.EstimatedTaxHigher = utils.RoundGBP(summary.TaxableGain * cfg.HigherRate)
	return summary
}

// applyRateChangeSplit handles the one year with a mid-year rate change.
// Each disposal lands on the pre or post side of the change date; the
// annual exemption is allocated between the sides in proportion to each
// side's share of total gains (not losses), and each side's taxable gain
// is taxed at that side's own rates. The blended estimates are exactly
// that, estimates: the precise liability depends on the taxpayer's unused
// basic-rate band, which the downstream income-tax collaborator owns.
func applyRateChangeSplit(summary *models.TaxYearSummary, cfg TaxYearConfig) {
	rc := cfg.RateChange

	pre := models.RateChangeSide{BasicRate: rc.PreBasic, HigherRate: rc.PreHigher}
	post := models.RateChangeSide{BasicRate: rc.PostBasic, HigherRate: rc.PostHigher}

	for _, d := range summary.Disposals {
		side := &post
		if d.Date.Before(rc.Date) {
			side = &pre
		}
		side.NumberOfDisposals++
		if d.Gain >= 0 {
			side.TotalGains = utils.RoundGBP(side.TotalGains + d.Gain)
		} else {
			side.TotalLosses = utils.RoundGBP(side.TotalLosses - d.Gain)
		}
	}
	pre.NetGain = utils.RoundGBP(pre.TotalGains - pre.TotalLosses)
	post.NetGain = utils.RoundGBP(post.TotalGains - post.TotalLosses)

	totalGains := pre.TotalGains + post.TotalGains
	if totalGains > 0 {
		pre.AllocatedExempt = utils.RoundGBP(cfg.AnnualExemption * pre.TotalGains / totalGains)
		post.AllocatedExempt = utils.RoundGBP(cfg.AnnualExemption - pre.AllocatedExempt)
	}

	pre.TaxableGain = taxableGain(pre.NetGain, pre.AllocatedExempt)
	post.TaxableGain = taxableGain(post.NetGain, post.AllocatedExempt)

	summary.TaxableGain = utils.RoundGBP(pre.TaxableGain + post.TaxableGain)
	summary.EstimatedTaxBasic = utils.RoundGBP(pre.TaxableGain*rc.PreBasic + post.TaxableGain*rc.PostBasic)
	summary.EstimatedTaxHigher = utils.RoundGBP(pre.TaxableGain*rc.PreHigher + post.TaxableGain*rc.PostHigher)
	summary.RateChange = &models.RateChangeBreakdown{
		ChangeDate: rc.Date.Format(utils.ISODateFormat),
		Pre:        pre,
		Post:       post,
	}
}

func taxableGain(netGain, exemption float64) float64 {
	taxable := utils.RoundGBP(netGain - exemption)
	if taxable < 0 {
		return 0
	}
	return taxable
}
