package services

import (
	"errors"

	"github.com/username/cgtfolio/backend/src/models"
)

var (
	ErrInvalidBatch = errors.New("invalid transaction batch")
	ErrStorage      = errors.New("storage failure")
)

// CalculationService is the DB-backed orchestration around the engine:
// it stores a user's normalized transaction records, runs the CGT
// calculation on demand, and caches the resulting report per user.
type CalculationService interface {
	SaveTransactions(userID int64, records []models.RawTransaction) (int, error)
	GetTransactions(userID int64) ([]models.RawTransaction, error)
	DeleteAllTransactions(userID int64) error
	GetReport(userID int64) (*models.CalculationReport, error)
	InvalidateUserCache(userID int64)
}
