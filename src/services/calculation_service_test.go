package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cgtfolio/backend/src/database"
	"github.com/username/cgtfolio/backend/src/logger"
	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/processors"
)

// Uses a temp-file database rather than ":memory:": database/sql pools
// connections, and an in-memory sqlite database is private to the
// connection that opened it.
func newTestService(t *testing.T) CalculationService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	reportCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	return NewCalculationService(database.DB, processors.NewCGTCalculator(), reportCache)
}

func sampleBatch() []models.RawTransaction {
	return []models.RawTransaction{
		{Symbol: "XYZ", Type: "BUY", Date: "2024-05-01", Quantity: 100, PricePerUnit: 10, Currency: "GBP", ExchangeRate: 1, Broker: "degiro"},
		{Symbol: "XYZ", Type: "SELL", Date: "2024-05-01", Quantity: 100, PricePerUnit: 12, Currency: "GBP", ExchangeRate: 1, Broker: "degiro"},
	}
}

func TestSaveAndGetTransactions(t *testing.T) {
	svc := newTestService(t)

	inserted, err := svc.SaveTransactions(1, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	records, err := svc.GetTransactions(1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "XYZ", records[0].Symbol)
	assert.Equal(t, "BUY", records[0].Type)
	assert.Equal(t, 100.0, records[0].Quantity)

	// Another user's data stays separate.
	other, err := svc.GetTransactions(2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveTransactions_EmptyBatchRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveTransactions(1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBatch))
}

func TestGetReport_CalculatesAndCaches(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveTransactions(1, sampleBatch())
	require.NoError(t, err)

	report, err := svc.GetReport(1)
	require.NoError(t, err)
	require.Len(t, report.AllDisposals, 1)
	assert.Equal(t, 200.0, report.AllDisposals[0].Gain)

	// Second call is served from cache: identical pointer.
	cached, err := svc.GetReport(1)
	require.NoError(t, err)
	assert.Same(t, report, cached)
}

func TestSaveTransactions_InvalidatesCachedReport(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveTransactions(1, sampleBatch())
	require.NoError(t, err)
	first, err := svc.GetReport(1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Summary.TotalDisposals)

	_, err = svc.SaveTransactions(1, []models.RawTransaction{
		{Symbol: "ABC", Type: "BUY", Date: "2024-06-01", Quantity: 10, PricePerUnit: 5, Currency: "GBP", ExchangeRate: 1},
		{Symbol: "ABC", Type: "SELL", Date: "2024-06-01", Quantity: 10, PricePerUnit: 6, Currency: "GBP", ExchangeRate: 1},
	})
	require.NoError(t, err)

	second, err := svc.GetReport(1)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.Summary.TotalDisposals)
	assert.Equal(t, 2, second.Summary.TotalSymbolsTraded)
}

func TestDeleteAllTransactions(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveTransactions(1, sampleBatch())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAllTransactions(1))

	records, err := svc.GetTransactions(1)
	require.NoError(t, err)
	assert.Empty(t, records)

	report, err := svc.GetReport(1)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.TotalDisposals)
}

func TestSaveTransactions_SanitizesBrokerField(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveTransactions(1, []models.RawTransaction{
		{Symbol: "XYZ", Type: "BUY", Date: "2024-05-01", Quantity: 1, PricePerUnit: 1, Broker: "=SUM(A1:A5)"},
	})
	require.NoError(t, err)

	records, err := svc.GetTransactions(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "'=SUM(A1:A5)", records[0].Broker)
}
