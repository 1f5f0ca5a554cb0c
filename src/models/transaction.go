package models

import "time"

// Transaction types after normalization.
const (
	TypeAcquire = "ACQUIRE"
	TypeDispose = "DISPOSE"
)

// RawTransaction is the input contract: one already currency-resolved
// transaction record handed over by the upstream collaborators (broker
// parsing, FX and price lookup happen before this system is invoked).
// ExchangeRate expresses units of the transaction currency per GBP, i.e.
// divide by it to get GBP.
type RawTransaction struct {
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"` // ACQUIRE/DISPOSE (BUY/SELL accepted)
	Date         string  `json:"date"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalAmount  float64 `json:"totalAmount,omitempty"`
	Fees         float64 `json:"fees"`
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchangeRate"`
	Broker       string  `json:"broker"`
}

// Transaction is the canonical form produced by the normalizer. It is
// read-only once created; the matcher tracks per-acquisition remaining
// balances in its own map keyed by ID rather than mutating records.
type Transaction struct {
	ID           int64     `json:"id"` // stable, assigned in input order
	Symbol       string    `json:"symbol"`
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	Quantity     float64   `json:"quantity"`
	PricePerUnit float64   `json:"pricePerUnit"`
	TotalAmount  float64   `json:"totalAmount,omitempty"`
	Fees         float64   `json:"fees"`
	Currency     string    `json:"currency"`
	ExchangeRate float64   `json:"exchangeRate"`
	Broker       string    `json:"broker"`
}

// GrossAmount returns the transaction value in its own currency, preferring
// an explicit total amount over quantity x price when both are present.
func (t *Transaction) GrossAmount() float64 {
	if t.TotalAmount != 0 {
		return t.TotalAmount
	}
	return t.Quantity * t.PricePerUnit
}
