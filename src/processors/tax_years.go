package processors

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RateChangeConfig describes a mid-year CGT rate change: disposals dated
// before Date use the pre rates, disposals on or after it use the post
// rates.
type RateChangeConfig struct {
	Date       time.Time
	PreBasic   float64
	PreHigher  float64
	PostBasic  float64
	PostHigher float64
}

// TaxYearConfig is the per-year constants record, resolved once at load
// time. It is configuration data, not behavior, but every computation
// depends on it, so the table is versioned alongside the engine.
type TaxYearConfig struct {
	Label           string
	Start           time.Time
	End             time.Time
	AnnualExemption float64
	BasicRate       float64
	HigherRate      float64
	RateChange      *RateChangeConfig
}

// Fallback used for years absent from the table: the long-standing
// pre-2023 exemption and the pre-change share rates.
const (
	fallbackExemption  = 12300.0
	fallbackBasicRate  = 0.10
	fallbackHigherRate = 0.20
)

func aprilDate(year, day int) time.Time {
	return time.Date(year, time.April, day, 0, 0, 0, 0, time.UTC)
}

func newTaxYearConfig(startYear int, exemption, basic, higher float64) TaxYearConfig {
	return TaxYearConfig{
		Label:           taxYearLabelForStartYear(startYear),
		Start:           aprilDate(startYear, 6),
		End:             aprilDate(startYear+1, 5),
		AnnualExemption: exemption,
		BasicRate:       basic,
		HigherRate:      higher,
	}
}

// taxYearTable holds the annual exempt amounts and CGT rates for shares.
// 2024/25 is the rate-change year: the Autumn Budget moved the rates from
// 10%/20% to 18%/24% for disposals on or after 30 October 2024.
var taxYearTable = buildTaxYearTable()

func buildTaxYearTable() map[string]TaxYearConfig {
	table := make(map[string]TaxYearConfig)

	add := func(cfg TaxYearConfig) { table[cfg.Label] = cfg }

	add(newTaxYearConfig(2017, 11300, 0.10, 0.20))
	add(newTaxYearConfig(2018, 11700, 0.10, 0.20))
	add(newTaxYearConfig(2019, 12000, 0.10, 0.20))
	add(newTaxYearConfig(2020, 12300, 0.10, 0.20))
	add(newTaxYearConfig(2021, 12300, 0.10, 0.20))
	add(newTaxYearConfig(2022, 12300, 0.10, 0.20))
	add(newTaxYearConfig(2023, 6000, 0.10, 0.20))

	splitYear := newTaxYearConfig(2024, 3000, 0.18, 0.24)
	splitYear.RateChange = &RateChangeConfig{
		Date:       time.Date(2024, time.October, 30, 0, 0, 0, 0, time.UTC),
		PreBasic:   0.10,
		PreHigher:  0.20,
		PostBasic:  0.18,
		PostHigher: 0.24,
	}
	add(splitYear)

	add(newTaxYearConfig(2025, 3000, 0.18, 0.24))

	return table
}

// taxYearStartYear returns the calendar year in which the UK tax year
// containing date begins (6 April boundary).
func taxYearStartYear(date time.Time) int {
	if date.Before(aprilDate(date.Year(), 6)) {
		return date.Year() - 1
	}
	return date.Year()
}

func taxYearLabelForStartYear(startYear int) string {
	return fmt.Sprintf("%d/%02d", startYear, (startYear+1)%100)
}

// TaxYearLabel returns the label of the UK tax year containing date,
// e.g. "2024/25" for any date from 2024-04-06 through 2025-04-05.
func TaxYearLabel(date time.Time) string {
	return taxYearLabelForStartYear(taxYearStartYear(date))
}

// resolveTaxYear returns the constants for a tax year label. For labels
// outside the table it derives a default config (older exemption amount,
// standard rates) so one exotic year never fails the whole computation;
// the second return value reports whether the label was known.
func resolveTaxYear(label string) (TaxYearConfig, bool) {
	if cfg, ok := taxYearTable[label]; ok {
		return cfg, true
	}
	startYear, err := startYearFromLabel(label)
	if err != nil {
		startYear = time.Now().UTC().Year()
	}
	return newTaxYearConfig(startYear, fallbackExemption, fallbackBasicRate, fallbackHigherRate), false
}

func startYearFromLabel(label string) (int, error) {
	parts := strings.SplitN(label, "/", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid tax year label %q", label)
	}
	return year, nil
}
