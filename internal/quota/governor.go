package quota

import (
	"encoding/json"
	"sort"

	"family-ledger-sync-go/internal/models"

	"go.uber.org/zap"
)

// Governor keeps serialized snapshots inside the local storage quota by
// trimming transaction history, oldest entries first. It is applied
// proactively when the serialized size crosses a soft threshold and
// reactively with a smaller cap when a write fails with a quota error.
type Governor struct {
	// SoftMaxEntries is the per-profile history cap for proactive trims.
	SoftMaxEntries int
	// HardMaxEntries is the smaller cap used after a quota failure.
	HardMaxEntries int
	// SoftSizeBytes is the serialized size above which a proactive trim runs.
	SoftSizeBytes int64
}

// NewGovernor builds a Governor, falling back to defaults for non-positive
// values.
func NewGovernor(softMaxEntries, hardMaxEntries int, softSizeBytes int64) *Governor {
	g := &Governor{
		SoftMaxEntries: softMaxEntries,
		HardMaxEntries: hardMaxEntries,
		SoftSizeBytes:  softSizeBytes,
	}
	if g.SoftMaxEntries <= 0 {
		g.SoftMaxEntries = 500
	}
	if g.HardMaxEntries <= 0 || g.HardMaxEntries > g.SoftMaxEntries {
		g.HardMaxEntries = g.SoftMaxEntries / 2
	}
	if g.SoftSizeBytes <= 0 {
		g.SoftSizeBytes = 2 << 20
	}
	return g
}

// Trim returns a copy of the state with every profile's history truncated to
// maxEntriesPerProfile, dropping the oldest entries first. Trimming an
// already-short history is a no-op, so the operation is idempotent. Balances
// are left untouched: trimming drops settled entries for storage reasons and
// must not change what the user sees as their balance.
func (g *Governor) Trim(state *models.State, maxEntriesPerProfile int) *models.State {
	if state == nil || maxEntriesPerProfile <= 0 {
		return state
	}
	out := state.Clone()
	for i := range out.Profiles {
		p := &out.Profiles[i]
		if len(p.History) <= maxEntriesPerProfile {
			continue
		}
		sorted := append([]models.HistoryEntry(nil), p.History...)
		sort.SliceStable(sorted, func(a, b int) bool {
			return models.ParseTimestamp(sorted[a].Date) > models.ParseTimestamp(sorted[b].Date)
		})
		dropped := len(sorted) - maxEntriesPerProfile
		p.History = sorted[:maxEntriesPerProfile]
		zap.L().Info("Trimmed profile history",
			zap.String("profile_id", p.ID),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(p.History)))
	}
	return out
}

// TrimSoft applies the proactive cap.
func (g *Governor) TrimSoft(state *models.State) *models.State {
	return g.Trim(state, g.SoftMaxEntries)
}

// TrimHard applies the reactive cap used after a quota failure.
func (g *Governor) TrimHard(state *models.State) *models.State {
	return g.Trim(state, g.HardMaxEntries)
}

// SerializedSize returns the snapshot's JSON size in bytes, or 0 for nil.
func (g *Governor) SerializedSize(state *models.State) int64 {
	if state == nil {
		return 0
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return 0
	}
	return int64(len(payload))
}

// Oversized reports whether the snapshot exceeds the soft size threshold.
func (g *Governor) Oversized(state *models.State) bool {
	return g.SerializedSize(state) > g.SoftSizeBytes
}
