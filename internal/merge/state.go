package merge

import (
	"family-ledger-sync-go/internal/models"
)

// States merges two whole-application snapshots. The result's profile set is
// a superset by ID of both inputs: a profile present on only one side is
// carried through unchanged (absence never implies deletion), a profile
// present on both delegates to Profiles. Neither input is mutated.
//
// Global scalars come from the side with the more recent top-level
// UpdatedAt, except the approved-missions counter, which takes the maximum
// of the two sides, and the tutorial flag, which is OR-combined. The
// result's UpdatedAt is the current wall-clock time: the merge itself is a
// new write, not a replay of either input.
func States(local, remote *models.State) *models.State {
	if local == nil && remote == nil {
		return nil
	}
	if local == nil {
		merged := remote.Clone()
		merged.UpdatedAt = models.NowTimestamp()
		return merged
	}
	if remote == nil {
		merged := local.Clone()
		merged.UpdatedAt = models.NowTimestamp()
		return merged
	}

	base := local
	if models.ParseTimestamp(remote.UpdatedAt) > models.ParseTimestamp(local.UpdatedAt) {
		base = remote
	}
	merged := base.Clone()

	merged.Profiles = mergeProfileSets(local.Profiles, remote.Profiles)

	// Monotonically increasing by construction; must never regress.
	merged.TotalApprovedMissions = local.TotalApprovedMissions
	if remote.TotalApprovedMissions > merged.TotalApprovedMissions {
		merged.TotalApprovedMissions = remote.TotalApprovedMissions
	}

	// Once anyone has seen the tutorial, nobody should see it again.
	merged.TutorialSeen = local.TutorialSeen || remote.TutorialSeen

	merged.UpdatedAt = models.NowTimestamp()
	return merged
}

// mergeProfileSets unions two profile lists by ID, keeping local-first
// insertion order for UI stability.
func mergeProfileSets(local, remote []models.Profile) []models.Profile {
	byID := make(map[string]int, len(local)+len(remote))
	merged := make([]models.Profile, 0, len(local)+len(remote))

	remoteByID := make(map[string]models.Profile, len(remote))
	for _, p := range remote {
		remoteByID[p.ID] = p
	}

	for _, p := range local {
		if rp, ok := remoteByID[p.ID]; ok {
			byID[p.ID] = len(merged)
			merged = append(merged, Profiles(p, rp))
		} else {
			byID[p.ID] = len(merged)
			merged = append(merged, p.Clone())
		}
	}
	for _, p := range remote {
		if _, ok := byID[p.ID]; ok {
			continue
		}
		byID[p.ID] = len(merged)
		merged = append(merged, p.Clone())
	}
	return merged
}
