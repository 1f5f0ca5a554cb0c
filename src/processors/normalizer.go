package processors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/utils"
)

// normalizeTransactions validates and canonicalizes raw records: dates are
// parsed with one consistent heuristic, symbols uppercased, and the result
// sorted strictly ascending by date with ties broken by input order. The
// stable tie-break matters: same-day ordering determines which acquisition
// a same-day disposal draws from first.
//
// Invalid rows (unparseable date, non-positive quantity, empty symbol,
// unknown type) are dropped from the matching stream and surfaced as
// non-fatal INVALID_TRANSACTION diagnostics.
func normalizeTransactions(raw []models.RawTransaction) ([]models.Transaction, []models.CalculationError) {
	var txs []models.Transaction
	var diags []models.CalculationError

	for i, r := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if symbol == "" {
			diags = append(diags, invalidRow(r, fmt.Sprintf("row %d: empty symbol", i+1)))
			continue
		}

		txType, ok := canonicalType(r.Type)
		if !ok {
			diags = append(diags, invalidRow(r, fmt.Sprintf("row %d: unknown transaction type %q", i+1, r.Type)))
			continue
		}

		date, err := utils.ParseFlexibleDate(r.Date)
		if err != nil {
			diags = append(diags, invalidRow(r, fmt.Sprintf("row %d: %v", i+1, err)))
			continue
		}

		if r.Quantity <= 0 {
			diags = append(diags, invalidRow(r, fmt.Sprintf("row %d: non-positive quantity %v", i+1, r.Quantity)))
			continue
		}

		txs = append(txs, models.Transaction{
			ID:           int64(i + 1),
			Symbol:       symbol,
			Type:         txType,
			Date:         date,
			Quantity:     r.Quantity,
			PricePerUnit: r.PricePerUnit,
			TotalAmount:  r.TotalAmount,
			Fees:         r.Fees,
			Currency:     strings.ToUpper(strings.TrimSpace(r.Currency)),
			ExchangeRate: r.ExchangeRate,
			Broker:       strings.TrimSpace(r.Broker),
		})
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	return txs, diags
}

func canonicalType(t string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case models.TypeAcquire, "BUY", "PURCHASE":
		return models.TypeAcquire, true
	case models.TypeDispose, "SELL", "SALE":
		return models.TypeDispose, true
	}
	return "", false
}

func invalidRow(r models.RawTransaction, message string) models.CalculationError {
	return models.CalculationError{
		Type:    models.ErrInvalidTransaction,
		Symbol:  strings.ToUpper(strings.TrimSpace(r.Symbol)),
		Date:    r.Date,
		Message: message,
	}
}
