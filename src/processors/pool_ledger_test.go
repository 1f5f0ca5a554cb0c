package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestPoolLedger_AddAndDraw(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2023, 1, 1), 100, 1000)
	l.Add("XYZ", date(2023, 6, 1), 100, 2000)

	p := l.Pool("XYZ")
	assert.Equal(t, 200.0, p.Quantity)
	assert.Equal(t, 3000.0, p.Cost)
	assert.Equal(t, 15.0, p.AverageCost())

	cost := l.Draw("XYZ", date(2024, 1, 1), 100)
	assert.Equal(t, 1500.0, cost)
	assert.Equal(t, 100.0, p.Quantity)
	assert.Equal(t, 1500.0, p.Cost)
}

func TestPoolLedger_FullDrawClearsExactly(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2023, 1, 1), 3, 10)

	cost := l.Draw("XYZ", date(2023, 2, 1), 3)
	p := l.Pool("XYZ")
	assert.Equal(t, 10.0, cost, "a full draw takes the entire cost, rounding aside")
	assert.Zero(t, p.Quantity)
	assert.Zero(t, p.Cost)
}

func TestPoolLedger_InvariantsNeverNegative(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2023, 1, 1), 1, 0.01)
	for i := 0; i < 10; i++ {
		l.Draw("XYZ", date(2023, 2, 1), 0.1)
		p := l.Pool("XYZ")
		assert.GreaterOrEqual(t, p.Quantity, 0.0)
		assert.GreaterOrEqual(t, p.Cost, 0.0)
	}
}

func TestPoolLedger_SnapshotAt(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2023, 1, 1), 100, 1000)
	l.Draw("XYZ", date(2024, 6, 1), 50)
	l.Add("AAA", date(2024, 7, 1), 10, 500)

	// Before anything happened.
	assert.Empty(t, l.SnapshotAt(date(2022, 12, 31)))

	// Start of the 2024/25 tax year: only the 2023 buy has happened.
	start := l.SnapshotAt(date(2024, 4, 6))
	require.Len(t, start, 1)
	assert.Equal(t, "XYZ", start[0].Symbol)
	assert.Equal(t, 100.0, start[0].Quantity)
	assert.Equal(t, 1000.0, start[0].TotalCost)
	assert.Equal(t, 10.0, start[0].AverageCost)

	// End of 2024/25: the draw and the AAA buy are both in.
	end := l.SnapshotAt(date(2025, 4, 6))
	require.Len(t, end, 2)
	assert.Equal(t, "AAA", end[0].Symbol)
	assert.Equal(t, "XYZ", end[1].Symbol)
	assert.Equal(t, 50.0, end[1].Quantity)
	assert.Equal(t, 500.0, end[1].TotalCost)
}

func TestPoolLedger_SnapshotIsCutoffExclusive(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2024, 4, 6), 100, 1000)

	// A trade on 6 April belongs to the year being opened, not to the
	// opening snapshot.
	assert.Empty(t, l.SnapshotAt(date(2024, 4, 6)))
	require.Len(t, l.SnapshotAt(date(2024, 4, 7)), 1)
}

func TestPoolLedger_SnapshotIndependentOfLiveState(t *testing.T) {
	l := NewPoolLedger()
	l.Add("XYZ", date(2023, 1, 1), 100, 1000)
	before := l.SnapshotAt(date(2024, 1, 1))

	// Forward processing keeps going; the historical snapshot must not move.
	l.Draw("XYZ", date(2024, 6, 1), 100)
	after := l.SnapshotAt(date(2024, 1, 1))
	assert.Equal(t, before, after)
}
