package quota

import (
	"testing"

	"family-ledger-sync-go/internal/models"

	"github.com/shopspring/decimal"
)

func ledgerState(entryDates ...string) *models.State {
	s := models.NewInitialState()
	p := models.Profile{ID: "p1", Name: "Kid"}
	for i, d := range entryDates {
		p.History = append(p.History, models.HistoryEntry{
			ID:     string(rune('a' + i)),
			Date:   d,
			Amount: decimal.NewFromInt(1),
		})
	}
	s.Profiles = []models.Profile{p}
	return s
}

func TestTrimDropsOldestFirst(t *testing.T) {
	g := NewGovernor(500, 250, 1<<20)
	s := ledgerState(
		"2025-01-01T10:00:00Z",
		"2025-03-01T10:00:00Z",
		"2025-02-01T10:00:00Z",
	)

	trimmed := g.Trim(s, 2)

	history := trimmed.Profiles[0].History
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries after trim, got %d", len(history))
	}
	for _, e := range history {
		if e.Date == "2025-01-01T10:00:00Z" {
			t.Error("Oldest entry survived the trim")
		}
	}
	if history[0].Date != "2025-03-01T10:00:00Z" {
		t.Errorf("Expected newest entry first, got %s", history[0].Date)
	}
}

func TestTrimIsIdempotent(t *testing.T) {
	g := NewGovernor(500, 250, 1<<20)
	s := ledgerState("2025-01-01T10:00:00Z", "2025-02-01T10:00:00Z")

	once := g.Trim(s, 5)
	twice := g.Trim(once, 5)

	if len(once.Profiles[0].History) != 2 || len(twice.Profiles[0].History) != 2 {
		t.Error("Trimming an already-short history must be a no-op")
	}
}

func TestTrimDoesNotMutateInput(t *testing.T) {
	g := NewGovernor(500, 250, 1<<20)
	s := ledgerState(
		"2025-01-01T10:00:00Z",
		"2025-02-01T10:00:00Z",
		"2025-03-01T10:00:00Z",
	)

	_ = g.Trim(s, 1)

	if len(s.Profiles[0].History) != 3 {
		t.Errorf("Trim mutated its input, %d entries left", len(s.Profiles[0].History))
	}
}

func TestTrimLeavesBalanceAlone(t *testing.T) {
	g := NewGovernor(500, 250, 1<<20)
	s := ledgerState("2025-01-01T10:00:00Z", "2025-02-01T10:00:00Z")
	s.Profiles[0].Balance = decimal.NewFromInt(2)

	trimmed := g.Trim(s, 1)

	if !trimmed.Profiles[0].Balance.Equal(decimal.NewFromInt(2)) {
		t.Error("Trimming settled entries must not change the visible balance")
	}
}

func TestSoftAndHardCaps(t *testing.T) {
	g := NewGovernor(2, 1, 1<<20)
	s := ledgerState(
		"2025-01-01T10:00:00Z",
		"2025-02-01T10:00:00Z",
		"2025-03-01T10:00:00Z",
	)

	soft := g.TrimSoft(s)
	if len(soft.Profiles[0].History) != 2 {
		t.Errorf("Expected soft cap of 2, got %d entries", len(soft.Profiles[0].History))
	}

	hard := g.TrimHard(s)
	if len(hard.Profiles[0].History) != 1 {
		t.Errorf("Expected hard cap of 1, got %d entries", len(hard.Profiles[0].History))
	}
}

func TestOversized(t *testing.T) {
	g := NewGovernor(500, 250, 64)
	s := ledgerState("2025-01-01T10:00:00Z")

	if !g.Oversized(s) {
		t.Errorf("Expected %d-byte threshold to flag the snapshot (size %d)",
			g.SoftSizeBytes, g.SerializedSize(s))
	}

	g = NewGovernor(500, 250, 1<<20)
	if g.Oversized(s) {
		t.Error("Snapshot flagged oversized under a 1MiB threshold")
	}
}

func TestGovernorDefaults(t *testing.T) {
	g := NewGovernor(0, 0, 0)
	if g.SoftMaxEntries <= 0 || g.HardMaxEntries <= 0 || g.SoftSizeBytes <= 0 {
		t.Error("Defaults must be positive")
	}
	if g.HardMaxEntries >= g.SoftMaxEntries {
		t.Error("Hard cap must be smaller than the soft cap")
	}
}
