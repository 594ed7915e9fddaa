// Package costs tracks per-run external provider spend.
package costs

import (
	"sync"
	"time"
)

// Entry is one recorded external call.
type Entry struct {
	Provider   string    `json:"provider"`
	Operation  string    `json:"operation"`
	CostCents  int       `json:"costCents"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Ledger accumulates provider costs keyed by run ID. Totals only grow;
// entries are append-only for the lifetime of a run.
type Ledger struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[string][]Entry{}}
}

// Record appends a cost entry for the run. Zero and negative amounts are
// ignored so callers can pass through provider-reported numbers unchecked.
func (l *Ledger) Record(runID, provider, operation string, cents int) {
	if cents <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[runID] = append(l.entries[runID], Entry{
		Provider:   provider,
		Operation:  operation,
		CostCents:  cents,
		RecordedAt: time.Now().UTC(),
	})
}

// Total returns the accumulated cost for a run in cents.
func (l *Ledger) Total(runID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, e := range l.entries[runID] {
		total += e.CostCents
	}
	return total
}

// Entries returns a copy of the run's cost entries in recording order.
func (l *Ledger) Entries(runID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.entries[runID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Forget drops all entries for a run. Called when a run is evicted.
func (l *Ledger) Forget(runID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, runID)
}
