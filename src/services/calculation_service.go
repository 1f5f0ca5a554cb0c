package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cgtfolio/backend/src/logger"
	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/processors"
	"github.com/username/cgtfolio/backend/src/security/validation"
)

const (
	ckReport = "res_cgt_report_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type calculationServiceImpl struct {
	db          *sql.DB
	engine      processors.CalculationEngine
	reportCache *cache.Cache
}

func NewCalculationService(db *sql.DB, engine processors.CalculationEngine, reportCache *cache.Cache) CalculationService {
	return &calculationServiceImpl{
		db:          db,
		engine:      engine,
		reportCache: reportCache,
	}
}

// SaveTransactions sanitizes and stores a batch of already currency-resolved
// transaction records for a user. Validation beyond string hygiene is the
// engine's job: invalid rows are kept and surfaced as report diagnostics,
// not rejected at upload time.
func (s *calculationServiceImpl) SaveTransactions(userID int64, records []models.RawTransaction) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: empty batch", ErrInvalidBatch)
	}
	startTime := time.Now()
	logger.L.Info("SaveTransactions START", "userID", userID, "records", len(records))

	dbTx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: beginning database transaction: %v", ErrStorage, err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (user_id, symbol, type, date, quantity, price_per_unit, total_amount, fees, currency, exchange_rate, broker) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing insert statement: %v", ErrStorage, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		r = sanitizeRecord(r)
		_, err := stmt.Exec(userID, r.Symbol, r.Type, r.Date, r.Quantity, r.PricePerUnit, r.TotalAmount, r.Fees, r.Currency, r.ExchangeRate, r.Broker)
		if err != nil {
			return 0, fmt.Errorf("%w: inserting transaction (%s %s): %v", ErrStorage, r.Symbol, r.Date, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing transactions: %v", ErrStorage, err)
	}

	s.InvalidateUserCache(userID)

	logger.L.Info("SaveTransactions END", "userID", userID, "inserted", inserted, "duration", time.Since(startTime))
	return inserted, nil
}

func (s *calculationServiceImpl) GetTransactions(userID int64) ([]models.RawTransaction, error) {
	return fetchUserTransactions(s.db, userID)
}

func (s *calculationServiceImpl) DeleteAllTransactions(userID int64) error {
	if _, err := s.db.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("%w: deleting transactions for userID %d: %v", ErrStorage, userID, err)
	}
	s.InvalidateUserCache(userID)
	logger.L.Info("Deleted all transactions", "userID", userID)
	return nil
}

// GetReport returns the user's CGT report, recalculating from the stored
// transactions on a cache miss. The engine itself is stateless, so a
// recalculation always starts from a fresh pool ledger.
func (s *calculationServiceImpl) GetReport(userID int64) (*models.CalculationReport, error) {
	cacheKey := fmt.Sprintf(ckReport, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetReport", "userID", userID)
		return cached.(*models.CalculationReport), nil
	}
	logger.L.Info("Cache miss for GetReport, recalculating from DB", "userID", userID)

	records, err := fetchUserTransactions(s.db, userID)
	if err != nil {
		return nil, err
	}

	report := s.engine.Calculate(records)
	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	logger.L.Info("Report calculated",
		"userID", userID,
		"disposals", report.Summary.TotalDisposals,
		"symbols", report.Summary.TotalSymbolsTraded,
		"diagnostics", len(report.Errors))
	return report, nil
}

// InvalidateUserCache clears the cached report for a user, forcing a full
// recalculation on the next request.
func (s *calculationServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckReport, userID))
	logger.L.Debug("Invalidated report cache for user", "userID", userID)
}

func sanitizeRecord(r models.RawTransaction) models.RawTransaction {
	r.Symbol = validation.SanitizeUserText(r.Symbol)
	r.Type = validation.SanitizeUserText(r.Type)
	r.Date = validation.SanitizeUserText(r.Date)
	r.Currency = validation.SanitizeUserText(r.Currency)
	r.Broker = validation.SanitizeForFormulaInjection(validation.SanitizeUserText(r.Broker))
	return r
}

func fetchUserTransactions(db *sql.DB, userID int64) ([]models.RawTransaction, error) {
	logger.L.Debug("Fetching transactions from DB", "userID", userID)
	rows, err := db.Query(`SELECT symbol, type, date, quantity, price_per_unit, total_amount, fees, currency, exchange_rate, broker FROM transactions WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions for userID %d: %v", ErrStorage, userID, err)
	}
	defer rows.Close()

	var records []models.RawTransaction
	for rows.Next() {
		var r models.RawTransaction
		if scanErr := rows.Scan(&r.Symbol, &r.Type, &r.Date, &r.Quantity, &r.PricePerUnit, &r.TotalAmount, &r.Fees, &r.Currency, &r.ExchangeRate, &r.Broker); scanErr != nil {
			return nil, fmt.Errorf("%w: scanning transaction row for userID %d: %v", ErrStorage, userID, scanErr)
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating over transaction rows for userID %d: %v", ErrStorage, userID, err)
	}
	logger.L.Debug("DB fetch complete", "userID", userID, "transactionCount", len(records))
	return records, nil
}
