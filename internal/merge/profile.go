package merge

import (
	"sort"

	"family-ledger-sync-go/internal/models"
)

// Profiles merges two versions of one beneficiary ledger into a single
// profile. It is total over well-formed input: malformed dates degrade to
// epoch 0 instead of failing, and neither input is mutated.
//
// Tie-break policy, applied consistently across all entity sets: when both
// sides carry an entity with the same ID and the resolution rule cannot
// separate them (equal dates, equal status ranks), the second argument's
// version wins.
func Profiles(local, remote models.Profile) models.Profile {
	// Scalar fields come from the side whose own ledger was written to most
	// recently. A side with no history counts as epoch 0.
	merged := local.Clone()
	if remote.LatestHistoryTimestamp() > local.LatestHistoryTimestamp() {
		merged = remote.Clone()
	}

	merged.History = mergeHistory(local.History, remote.History)
	merged.Missions = mergeMissions(local.Missions, remote.Missions)
	merged.Goals = mergeGoals(local.Goals, remote.Goals)

	// A pending request on either side must survive the merge.
	merged.GiftRequested = local.GiftRequested || remote.GiftRequested
	merged.MissionRequested = local.MissionRequested || remote.MissionRequested

	// The stored balances are discarded unconditionally: balance is a view
	// over the merged history, never merged directly.
	merged.Balance = merged.ComputeBalance()

	return merged
}

// mergeHistory unions two ledgers by entry ID. On collision the entry whose
// date parses later wins; equal dates keep the second side's entry. The
// result is sorted most recent first, which history views depend on.
func mergeHistory(local, remote []models.HistoryEntry) []models.HistoryEntry {
	byID := make(map[string]models.HistoryEntry, len(local)+len(remote))
	for _, e := range local {
		byID[e.ID] = e
	}
	for _, e := range remote {
		existing, ok := byID[e.ID]
		if !ok || models.ParseTimestamp(e.Date) >= models.ParseTimestamp(existing.Date) {
			byID[e.ID] = e
		}
	}

	merged := make([]models.HistoryEntry, 0, len(byID))
	for _, e := range byID {
		merged = append(merged, e)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := models.ParseTimestamp(merged[i].Date), models.ParseTimestamp(merged[j].Date)
		if ti != tj {
			return ti > tj
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// mergeMissions unions two chore sets by ID. On collision the more advanced
// status wins: progression is monotonic, so a regression is never
// legitimate. Local-first insertion order is preserved.
func mergeMissions(local, remote []models.Mission) []models.Mission {
	byID := make(map[string]int, len(local)+len(remote))
	merged := make([]models.Mission, 0, len(local)+len(remote))

	for _, m := range local {
		byID[m.ID] = len(merged)
		merged = append(merged, m)
	}
	for _, m := range remote {
		idx, ok := byID[m.ID]
		if !ok {
			byID[m.ID] = len(merged)
			merged = append(merged, m)
			continue
		}
		if m.Status.Rank() >= merged[idx].Status.Rank() {
			merged[idx] = m
		}
	}
	return merged
}

// mergeGoals unions two goal sets by ID. On collision the goal with the
// later per-goal UpdatedAt wins; goals without one compare as epoch 0, so
// the second side wins ties, which matches the historical behavior for data
// written before goals carried timestamps.
func mergeGoals(local, remote []models.Goal) []models.Goal {
	byID := make(map[string]int, len(local)+len(remote))
	merged := make([]models.Goal, 0, len(local)+len(remote))

	for _, g := range local {
		byID[g.ID] = len(merged)
		merged = append(merged, g)
	}
	for _, g := range remote {
		idx, ok := byID[g.ID]
		if !ok {
			byID[g.ID] = len(merged)
			merged = append(merged, g)
			continue
		}
		if models.ParseTimestamp(g.UpdatedAt) >= models.ParseTimestamp(merged[idx].UpdatedAt) {
			merged[idx] = g
		}
	}
	return merged
}
