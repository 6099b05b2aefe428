package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewInitialStateDefaults(t *testing.T) {
	s := NewInitialState()

	if len(s.Profiles) != 0 || s.Profiles == nil {
		t.Error("Expected an empty profile slice")
	}
	if s.Language != "en" {
		t.Errorf("Expected default language en, got %q", s.Language)
	}
	if !s.SoundEnabled || !s.NotificationsEnabled {
		t.Error("Sound and notifications default on")
	}
	if s.TutorialSeen || s.PinCode != "" {
		t.Error("Tutorial and PIN start unset")
	}
	if ParseTimestamp(s.UpdatedAt) == 0 {
		t.Errorf("Initial UpdatedAt must be a valid timestamp, got %q", s.UpdatedAt)
	}
}

func TestNormalizeRepairsMalformedSnapshot(t *testing.T) {
	// The shape a partially-written or legacy payload decodes into: nulls
	// everywhere and a negative counter.
	raw := `{
		"profiles": [{"id": "p1", "name": "Kid", "goals": null, "missions": null, "history": null}],
		"badgeTier": -3,
		"totalApprovedMissions": -1,
		"updatedAt": "2025-01-10T10:00:00Z"
	}`

	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Failed to decode test payload: %v", err)
	}
	s.Normalize()

	if s.BadgeTier != 0 || s.TotalApprovedMissions != 0 {
		t.Errorf("Negative counters must reset: tier=%d approved=%d",
			s.BadgeTier, s.TotalApprovedMissions)
	}
	p := s.FindProfile("p1")
	if p == nil {
		t.Fatal("Profile missing")
	}
	if p.Goals == nil || p.Missions == nil || p.History == nil {
		t.Error("Nil collections must become empty slices")
	}
}

func TestNormalizeNilProfiles(t *testing.T) {
	s := &State{}
	s.Normalize()
	if s.Profiles == nil {
		t.Error("Nil profile slice must become empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewInitialState()
	s.Profiles = []Profile{{
		ID:      "p1",
		History: []HistoryEntry{{ID: "h1", Amount: decimal.NewFromInt(5)}},
		Goals:   []Goal{{ID: "g1", Name: "bike"}},
	}}

	clone := s.Clone()
	clone.Profiles[0].History[0].Amount = decimal.NewFromInt(99)
	clone.Profiles[0].Goals[0].Name = "scooter"
	clone.Profiles = append(clone.Profiles, Profile{ID: "p2"})

	if !s.Profiles[0].History[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Error("Clone shares history storage with the original")
	}
	if s.Profiles[0].Goals[0].Name != "bike" {
		t.Error("Clone shares goal storage with the original")
	}
	if len(s.Profiles) != 1 {
		t.Error("Appending to the clone grew the original")
	}
}

func TestCloneNil(t *testing.T) {
	var s *State
	if s.Clone() != nil {
		t.Error("Cloning a nil state must return nil")
	}
}

func TestFindProfile(t *testing.T) {
	s := NewInitialState()
	s.Profiles = []Profile{{ID: "a"}, {ID: "b"}}

	if p := s.FindProfile("b"); p == nil || p.ID != "b" {
		t.Error("Expected profile b")
	}
	if s.FindProfile("missing") != nil {
		t.Error("Expected nil for an unknown ID")
	}

	// The returned pointer addresses the state's own element.
	s.FindProfile("a").Name = "renamed"
	if s.Profiles[0].Name != "renamed" {
		t.Error("FindProfile must return a pointer into the state")
	}
}

func TestComputeBalanceRoundsToCents(t *testing.T) {
	p := Profile{History: []HistoryEntry{
		{ID: "a", Amount: decimal.NewFromFloat(0.105)},
		{ID: "b", Amount: decimal.NewFromFloat(0.10)},
	}}

	got := p.ComputeBalance()
	want := decimal.NewFromFloat(0.21)
	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestComputeBalanceEmptyHistory(t *testing.T) {
	p := Profile{}
	if !p.ComputeBalance().IsZero() {
		t.Error("Expected zero balance for empty history")
	}
}

func TestLatestHistoryTimestamp(t *testing.T) {
	p := Profile{History: []HistoryEntry{
		{ID: "a", Date: "2025-01-01T10:00:00Z"},
		{ID: "b", Date: "2025-03-01T10:00:00Z"},
		{ID: "c", Date: "garbage"},
	}}

	want := ParseTimestamp("2025-03-01T10:00:00Z")
	if got := p.LatestHistoryTimestamp(); got != want {
		t.Errorf("Expected %d, got %d", want, got)
	}

	empty := Profile{}
	if empty.LatestHistoryTimestamp() != 0 {
		t.Error("Expected 0 for a profile without history")
	}
}

func TestMissionStatusRank(t *testing.T) {
	if MissionActive.Rank() >= MissionPending.Rank() ||
		MissionPending.Rank() >= MissionCompleted.Rank() {
		t.Error("Ranks must order active < pending < completed")
	}
	if MissionStatus("bogus").Rank() != -1 {
		t.Error("Unknown statuses must rank below every real status")
	}
}

func TestStateJSONFieldNames(t *testing.T) {
	s := NewInitialState()
	payload, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"profiles", "language", "updatedAt", "tutorialSeen", "maxBalance"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Wire payload is missing field %q", key)
		}
	}
}
