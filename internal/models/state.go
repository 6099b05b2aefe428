package models

import (
	"github.com/shopspring/decimal"
)

// State is the whole-application snapshot: every profile ledger plus the
// global settings that travel with it. It is the unit of persistence for both
// the local store and the remote store, and the unit of merging when two
// devices diverge.
type State struct {
	Profiles []Profile `json:"profiles"`

	Language             string          `json:"language"`
	PinCode              string          `json:"pinCode"`
	SoundEnabled         bool            `json:"soundEnabled"`
	NotificationsEnabled bool            `json:"notificationsEnabled"`
	BadgeTier            int             `json:"badgeTier"`
	TotalApprovedMissions int            `json:"totalApprovedMissions"`
	MaxBalance           decimal.Decimal `json:"maxBalance"`
	TutorialSeen         bool            `json:"tutorialSeen"`

	// UpdatedAt is the ISO-8601 timestamp of the last write. It is the
	// authoritative field for conflict classification between replicas.
	UpdatedAt string `json:"updatedAt"`
}

// NewInitialState returns the install-time snapshot: no profiles, defaults on.
func NewInitialState() *State {
	return &State{
		Profiles:             []Profile{},
		Language:             "en",
		SoundEnabled:         true,
		NotificationsEnabled: true,
		MaxBalance:           decimal.Zero,
		UpdatedAt:            NowTimestamp(),
	}
}

// Normalize repairs a snapshot loaded from storage so a corrupted or
// partially-written payload never prevents startup. Nil collections become
// empty, negative counters reset to zero. It never rejects data.
func (s *State) Normalize() {
	if s.Profiles == nil {
		s.Profiles = []Profile{}
	}
	for i := range s.Profiles {
		s.Profiles[i].Normalize()
	}
	if s.BadgeTier < 0 {
		s.BadgeTier = 0
	}
	if s.TotalApprovedMissions < 0 {
		s.TotalApprovedMissions = 0
	}
}

// Clone returns a deep copy. Merge logic always builds new snapshots and
// never mutates its inputs, so sharing between the in-memory state and a
// merge result is never allowed to alias.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Profiles = make([]Profile, len(s.Profiles))
	for i := range s.Profiles {
		out.Profiles[i] = s.Profiles[i].Clone()
	}
	return &out
}

// FindProfile returns the profile with the given ID, or nil.
func (s *State) FindProfile(id string) *Profile {
	for i := range s.Profiles {
		if s.Profiles[i].ID == id {
			return &s.Profiles[i]
		}
	}
	return nil
}
