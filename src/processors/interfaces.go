package processors

import (
	"github.com/username/cgtfolio/backend/src/models"
)

// CalculationEngine is the interface for the CGT matching and reporting
// engine. Calculate is a pure, deterministic fold over a fully materialized
// transaction list: no I/O, no retries, no shared state between calls.
type CalculationEngine interface {
	Calculate(records []models.RawTransaction) *models.CalculationReport
}
