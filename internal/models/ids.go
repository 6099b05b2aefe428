package models

import (
	"strings"

	"github.com/google/uuid"
)

// tempIDPrefix marks IDs generated on a device before the remote store has
// assigned a permanent one.
const tempIDPrefix = "local-"

// NewTempID generates a client-side temporary entity ID. The remote store
// remaps it to a server-assigned ID on the first successful write.
func NewTempID() string {
	return tempIDPrefix + uuid.New().String()
}

// IsTempID reports whether an ID is still client-generated.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// ApplyIDRemapping substitutes server-assigned IDs into a snapshot in place.
// The remapping covers profile, goal, mission and history-entry IDs; IDs
// absent from the map are left untouched.
func ApplyIDRemapping(s *State, remapping map[string]string) {
	if s == nil || len(remapping) == 0 {
		return
	}
	mapped := func(id string) string {
		if newID, ok := remapping[id]; ok && newID != "" {
			return newID
		}
		return id
	}
	for i := range s.Profiles {
		p := &s.Profiles[i]
		p.ID = mapped(p.ID)
		for j := range p.Goals {
			p.Goals[j].ID = mapped(p.Goals[j].ID)
		}
		for j := range p.Missions {
			p.Missions[j].ID = mapped(p.Missions[j].ID)
		}
		for j := range p.History {
			p.History[j].ID = mapped(p.History[j].ID)
		}
	}
}
