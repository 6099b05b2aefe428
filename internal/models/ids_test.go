package models

import (
	"testing"
)

func TestNewTempID(t *testing.T) {
	id := NewTempID()
	if !IsTempID(id) {
		t.Errorf("Generated ID %q is not recognized as temporary", id)
	}
	if id == NewTempID() {
		t.Error("Temporary IDs must be unique")
	}
}

func TestIsTempID(t *testing.T) {
	if IsTempID("srv-42") {
		t.Error("Server IDs must not look temporary")
	}
	if !IsTempID("local-abc") {
		t.Error("local- prefixed IDs are temporary")
	}
}

func TestApplyIDRemapping(t *testing.T) {
	s := NewInitialState()
	s.Profiles = []Profile{{
		ID:       "local-p",
		Goals:    []Goal{{ID: "local-g"}, {ID: "g-kept"}},
		Missions: []Mission{{ID: "local-m"}},
		History:  []HistoryEntry{{ID: "local-h"}},
	}}

	ApplyIDRemapping(s, map[string]string{
		"local-p": "p-1",
		"local-g": "g-1",
		"local-m": "m-1",
		"local-h": "h-1",
	})

	p := s.FindProfile("p-1")
	if p == nil {
		t.Fatal("Profile ID was not remapped")
	}
	if p.Goals[0].ID != "g-1" || p.Missions[0].ID != "m-1" || p.History[0].ID != "h-1" {
		t.Errorf("Nested IDs not remapped: goal=%s mission=%s history=%s",
			p.Goals[0].ID, p.Missions[0].ID, p.History[0].ID)
	}
	if p.Goals[1].ID != "g-kept" {
		t.Error("IDs absent from the mapping must be untouched")
	}
}

func TestApplyIDRemappingIgnoresEmptyTargets(t *testing.T) {
	s := NewInitialState()
	s.Profiles = []Profile{{ID: "local-p"}}

	ApplyIDRemapping(s, map[string]string{"local-p": ""})
	if s.Profiles[0].ID != "local-p" {
		t.Error("An empty replacement must leave the ID alone")
	}
}

func TestApplyIDRemappingNilInputs(t *testing.T) {
	ApplyIDRemapping(nil, map[string]string{"a": "b"})

	s := NewInitialState()
	s.Profiles = []Profile{{ID: "p1"}}
	ApplyIDRemapping(s, nil)
	if s.Profiles[0].ID != "p1" {
		t.Error("A nil mapping must be a no-op")
	}
}
