package processors

import (
	"sort"
	"time"

	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/utils"
)

// Section104Pool is the running average-cost holding for one symbol.
// Invariant: Quantity >= 0 and Cost >= 0 at every point during processing.
type Section104Pool struct {
	Quantity float64
	Cost     float64
}

// AverageCost returns cost per share, or 0 for an empty pool.
func (p *Section104Pool) AverageCost() float64 {
	if p.Quantity <= utils.QuantityEpsilon {
		return 0
	}
	return p.Cost / p.Quantity
}

// poolEvent is one append-only ledger entry: a roll-in (positive quantity)
// or a pool draw (negative quantity), dated at the underlying transaction's
// date rather than at processing time.
type poolEvent struct {
	Symbol   string
	Date     time.Time
	Quantity float64
	Cost     float64
}

// PoolLedger owns the Section 104 pools for a single calculation. One
// ledger is created per Calculate invocation and discarded at the end;
// it is never shared across invocations.
//
// Besides the live per-symbol state used during matching, the ledger keeps
// a full event log so that pool state at any cutoff date (tax year
// boundaries in particular) can be reconstructed by pure replay,
// independent of whatever forward processing has done since.
type PoolLedger struct {
	pools  map[string]*Section104Pool
	events []poolEvent
}

func NewPoolLedger() *PoolLedger {
	return &PoolLedger{pools: make(map[string]*Section104Pool)}
}

// Pool returns the live pool for a symbol, creating it if needed.
func (l *PoolLedger) Pool(symbol string) *Section104Pool {
	p, ok := l.pools[symbol]
	if !ok {
		p = &Section104Pool{}
		l.pools[symbol] = p
	}
	return p
}

// Add rolls quantity and cost into a symbol's pool, dated at the
// acquisition's own date.
func (l *PoolLedger) Add(symbol string, date time.Time, quantity, cost float64) {
	p := l.Pool(symbol)
	p.Quantity += quantity
	p.Cost = utils.RoundGBP(p.Cost + cost)
	l.events = append(l.events, poolEvent{Symbol: symbol, Date: date, Quantity: quantity, Cost: cost})
}

// Draw removes quantity from a symbol's pool at its current average cost
// and returns the cost removed. Cost is decremented proportionally; a draw
// of the full balance clears the pool exactly so the invariants
// (quantity >= 0, cost >= 0) hold regardless of rounding.
func (l *PoolLedger) Draw(symbol string, date time.Time, quantity float64) float64 {
	p := l.Pool(symbol)

	var cost float64
	if p.Quantity-quantity <= utils.QuantityEpsilon {
		quantity = p.Quantity
		cost = p.Cost
		p.Quantity = 0
		p.Cost = 0
	} else {
		cost = utils.RoundGBP(p.Cost * quantity / p.Quantity)
		p.Quantity -= quantity
		p.Cost = utils.RoundGBP(p.Cost - cost)
	}

	l.events = append(l.events, poolEvent{Symbol: symbol, Date: date, Quantity: -quantity, Cost: -cost})
	return cost
}

// SnapshotAt reconstructs every symbol's pool as it stood immediately
// before the cutoff date, by replaying the event log. The replay never
// reads the live pool state, so snapshots are unaffected by how far
// forward processing has advanced.
func (l *PoolLedger) SnapshotAt(cutoff time.Time) []models.Section104Holding {
	events := make([]poolEvent, len(l.events))
	copy(events, l.events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	state := make(map[string]*Section104Pool)
	for _, ev := range events {
		if !ev.Date.Before(cutoff) {
			continue
		}
		p, ok := state[ev.Symbol]
		if !ok {
			p = &Section104Pool{}
			state[ev.Symbol] = p
		}
		p.Quantity += ev.Quantity
		p.Cost = utils.RoundGBP(p.Cost + ev.Cost)
		if p.Quantity < utils.QuantityEpsilon {
			p.Quantity = 0
			p.Cost = 0
		}
	}

	return holdingsFromState(state)
}

// FinalHoldings returns the live end-of-data pool state.
func (l *PoolLedger) FinalHoldings() []models.Section104Holding {
	return holdingsFromState(l.pools)
}

func holdingsFromState(state map[string]*Section104Pool) []models.Section104Holding {
	symbols := make([]string, 0, len(state))
	for s, p := range state {
		if p.Quantity > utils.QuantityEpsilon {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)

	holdings := make([]models.Section104Holding, 0, len(symbols))
	for _, s := range symbols {
		p := state[s]
		holdings = append(holdings, models.Section104Holding{
			Symbol:      s,
			Quantity:    p.Quantity,
			TotalCost:   utils.RoundGBP(p.Cost),
			AverageCost: utils.RoundGBP(p.AverageCost()),
		})
	}
	return holdings
}
