package costs

import (
	"fmt"
	"sync"
	"testing"
)

func TestLedgerTotals(t *testing.T) {
	l := NewLedger()
	l.Record("run-1", "openai", "suggest_competitors", 2)
	l.Record("run-1", "dataforseo", "serp_search", 3)
	l.Record("run-2", "openai", "profile", 2)

	if got := l.Total("run-1"); got != 5 {
		t.Errorf("Total(run-1) = %d, want 5", got)
	}
	if got := l.Total("run-2"); got != 2 {
		t.Errorf("Total(run-2) = %d, want 2", got)
	}
	if got := l.Total("missing"); got != 0 {
		t.Errorf("Total(missing) = %d, want 0", got)
	}
}

func TestLedgerIgnoresNonPositive(t *testing.T) {
	l := NewLedger()
	l.Record("run-1", "openai", "noop", 0)
	l.Record("run-1", "openai", "refund", -3)
	if got := l.Total("run-1"); got != 0 {
		t.Errorf("Total = %d, want 0", got)
	}
	if entries := l.Entries("run-1"); len(entries) != 0 {
		t.Errorf("entries = %v", entries)
	}
}

func TestLedgerEntriesOrderedAndCopied(t *testing.T) {
	l := NewLedger()
	l.Record("run-1", "openai", "a", 1)
	l.Record("run-1", "dataforseo", "b", 2)

	entries := l.Entries("run-1")
	if len(entries) != 2 || entries[0].Operation != "a" || entries[1].Operation != "b" {
		t.Fatalf("entries = %v", entries)
	}

	entries[0].CostCents = 999
	if got := l.Total("run-1"); got != 3 {
		t.Errorf("mutating returned slice changed ledger, Total = %d", got)
	}
}

func TestLedgerForget(t *testing.T) {
	l := NewLedger()
	l.Record("run-1", "openai", "a", 1)
	l.Forget("run-1")
	if got := l.Total("run-1"); got != 0 {
		t.Errorf("Total after Forget = %d", got)
	}
}

func TestLedgerConcurrentRecords(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Record("run-1", "openai", fmt.Sprintf("op-%d", n), 1)
		}(i)
	}
	wg.Wait()
	if got := l.Total("run-1"); got != 50 {
		t.Errorf("Total = %d, want 50", got)
	}
}
