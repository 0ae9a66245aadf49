// Package exposure tracks which members drank or washed in water of which purity.
package exposure

import (
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/water"
)

// Record is a single drink or wash reported by the ledger.
type Record struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Tick      uint64          `json:"tick" db:"tick"`
	CaravanID uint64          `json:"caravan_id" db:"caravan_id"`
	MemberID  agents.MemberID `json:"member_id" db:"member_id"`
	Member    string          `json:"member" db:"member"`
	Tier      water.Tier      `json:"tier" db:"tier"`
}

// Log collects exposures until they are drained to storage. Totals survive draining.
type Log struct {
	mu      sync.Mutex
	tick    uint64
	pending []Record
	totals  [len(water.Tiers)]int
}

// NewLog creates an empty exposure log.
func NewLog() *Log {
	return &Log{}
}

// SetTick stamps subsequent records with tick.
func (l *Log) SetTick(tick uint64) {
	l.mu.Lock()
	l.tick = tick
	l.mu.Unlock()
}

// Report implements caravan.ExposureSink.
func (l *Log) Report(m *agents.Member, tier water.Tier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, Record{
		ID:        uuid.New(),
		Tick:      l.tick,
		CaravanID: m.CaravanID,
		MemberID:  m.ID,
		Member:    m.Name,
		Tier:      tier,
	})
	if int(tier) < len(l.totals) {
		l.totals[tier]++
	}
}

// Totals returns exposure counts per tier since the log was created.
func (l *Log) Totals() map[water.Tier]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[water.Tier]int, len(l.totals))
	for _, t := range water.Tiers {
		out[t] = l.totals[t]
	}
	return out
}

// Pending returns how many records await draining.
func (l *Log) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain returns and clears the pending records.
func (l *Log) Drain() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Unsaved returns a copy of the pending records without clearing them.
func (l *Log) Unsaved() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.pending...)
}

// Ack drops the n oldest pending records once they are stored.
func (l *Log) Ack(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n = min(n, len(l.pending))
	l.pending = append([]Record(nil), l.pending[n:]...)
	if len(l.pending) == 0 {
		l.pending = nil
	}
}
