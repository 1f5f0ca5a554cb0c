package models

import "time"

// Share identification rules, in order of statutory precedence.
const (
	RuleSameDay         = "SAME_DAY"
	RuleBedAndBreakfast = "BED_AND_BREAKFAST"
	RuleSection104      = "SECTION_104"
)

// Diagnostic types accumulated in CalculationReport.Errors.
const (
	ErrInvalidTransaction = "INVALID_TRANSACTION"
	ErrUnmatchedDisposal  = "UNMATCHED_DISPOSAL"
	ErrUnknownTaxYear     = "UNKNOWN_TAX_YEAR"
)

// MatchDetail records one (disposal, rule) pairing: which acquisition(s)
// funded a slice of a disposal and at what cost. Immutable once created.
type MatchDetail struct {
	Rule              string  `json:"rule"`
	Quantity          float64 `json:"quantity"`
	Cost              float64 `json:"cost"`
	CostPerShare      float64 `json:"costPerShare"`
	Proceeds          float64 `json:"proceeds"`
	ProceedsPerShare  float64 `json:"proceedsPerShare"`
	Gain              float64 `json:"gain"`
	AcquisitionDate   string  `json:"acquisitionDate,omitempty"`
	DaysAfterSale     int     `json:"daysAfterSale,omitempty"`
	PoolAvgImpact      float64 `json:"poolAvgImpact,omitempty"` // B&B cost/share minus the pool average it displaced
	PoolQuantityBefore float64 `json:"poolQuantityBefore,omitempty"`
	PoolCostBefore     float64 `json:"poolCostBefore,omitempty"`
	PoolQuantityAfter  float64 `json:"poolQuantityAfter,omitempty"`
	PoolCostAfter      float64 `json:"poolCostAfter,omitempty"`
}

// Disposal is one sale with its full cost-basis breakdown. Created exactly
// once per sale transaction, immutable after creation.
type Disposal struct {
	Symbol       string        `json:"symbol"`
	Date         time.Time     `json:"date"`
	Quantity     float64       `json:"quantity"`
	Proceeds     float64       `json:"proceeds"`
	Cost         float64       `json:"cost"`
	Gain         float64       `json:"gain"`
	TaxYear      string        `json:"taxYear"`
	MatchDetails []MatchDetail `json:"matchDetails"`
	Unmatched    float64       `json:"unmatchedQuantity,omitempty"`
}

// Section104Holding is a point-in-time snapshot of one symbol's pool.
type Section104Holding struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	TotalCost   float64 `json:"totalCost"`
	AverageCost float64 `json:"averageCost"`
}

// RateChangeSide holds one side of a mid-year CGT rate change split.
type RateChangeSide struct {
	NumberOfDisposals int     `json:"numberOfDisposals"`
	TotalGains        float64 `json:"totalGains"`
	TotalLosses       float64 `json:"totalLosses"`
	NetGain           float64 `json:"netGain"`
	AllocatedExempt   float64 `json:"allocatedExemption"`
	TaxableGain       float64 `json:"taxableGain"`
	BasicRate         float64 `json:"basicRate"`
	HigherRate        float64 `json:"higherRate"`
}

// RateChangeBreakdown is only present for the tax year containing a
// mid-year rate change (30 October 2024).
type RateChangeBreakdown struct {
	ChangeDate string         `json:"changeDate"`
	Pre        RateChangeSide `json:"pre"`
	Post       RateChangeSide `json:"post"`
}

// TaxYearSummary aggregates one UK tax year (6 April to 5 April).
type TaxYearSummary struct {
	TaxYear              string               `json:"taxYear"`
	NumberOfDisposals    int                  `json:"numberOfDisposals"`
	TotalProceeds        float64              `json:"totalProceeds"`
	TotalCost            float64              `json:"totalCost"`
	TotalGains           float64              `json:"totalGains"`
	TotalLosses          float64              `json:"totalLosses"`
	NetGain              float64              `json:"netGain"`
	AnnualExemption      float64              `json:"annualExemption"`
	TaxableGain          float64              `json:"taxableGain"`
	EstimatedTaxBasic    float64              `json:"estimatedTaxBasicRate"`
	EstimatedTaxHigher   float64              `json:"estimatedTaxHigherRate"`
	Disposals            []Disposal           `json:"disposals"`
	Section104Start      []Section104Holding  `json:"section104Start"`
	Section104End        []Section104Holding  `json:"section104End"`
	RateChange           *RateChangeBreakdown `json:"rateChange,omitempty"`
}

// CalculationError is a non-fatal diagnostic. One malformed transaction
// never prevents reporting on the rest; callers decide whether diagnostics
// block or are advisory.
type CalculationError struct {
	Type              string  `json:"type"`
	Symbol            string  `json:"symbol,omitempty"`
	Date              string  `json:"date,omitempty"`
	UnmatchedQuantity float64 `json:"unmatchedQuantity,omitempty"`
	Message           string  `json:"message"`
}

// ReportSummary carries the global totals.
type ReportSummary struct {
	TotalDisposals     int     `json:"totalDisposals"`
	TotalSymbolsTraded int     `json:"totalSymbolsTraded"`
	OverallGain        float64 `json:"overallGain"`
}

// CalculationReport is the full output contract returned to the caller.
type CalculationReport struct {
	TaxYears       []TaxYearSummary    `json:"taxYears"`
	Section104Pools []Section104Holding `json:"section104Pools"`
	AllDisposals   []Disposal          `json:"allDisposals"`
	Acquisitions   []Transaction       `json:"acquisitions"`
	Errors         []CalculationError  `json:"errors"`
	Summary        ReportSummary       `json:"summary"`
}
