package models

import (
	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle status of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

// MissionStatus is the lifecycle status of a chore. Progression is monotonic:
// active -> pending -> completed. A regression is never legitimate, which is
// why merges resolve collisions by rank instead of by timestamp.
type MissionStatus string

const (
	MissionActive    MissionStatus = "active"
	MissionPending   MissionStatus = "pending"
	MissionCompleted MissionStatus = "completed"
)

// Rank returns the priority of the status for merge resolution.
// Unknown statuses rank lowest so malformed data never beats real progress.
func (m MissionStatus) Rank() int {
	switch m {
	case MissionActive:
		return 0
	case MissionPending:
		return 1
	case MissionCompleted:
		return 2
	default:
		return -1
	}
}

// Profile is one beneficiary's ledger: identity, savings goals, chores and
// the transaction history that is the system of record for the balance.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Theme     string `json:"theme"`
	BirthDate string `json:"birthDate,omitempty"`

	// Balance is derived, never authoritative: it must always equal the sum
	// of Amount over History. Merges discard stored balances and recompute.
	Balance decimal.Decimal `json:"balance"`

	Goals    []Goal         `json:"goals"`
	Missions []Mission      `json:"missions"`
	History  []HistoryEntry `json:"history"`

	GiftRequested      bool `json:"giftRequested"`
	MissionRequested   bool `json:"missionRequested"`
	BirthdayRewardYear int  `json:"birthdayRewardYear,omitempty"`
}

// Goal is a savings target. UpdatedAt is the explicit per-goal timestamp used
// to resolve merge collisions deterministically.
type Goal struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Status    GoalStatus      `json:"status"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// Mission is a chore with a reward. Feedback carries an optional rejection
// note from the guardian when a pending mission is sent back.
type Mission struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Reward   decimal.Decimal `json:"reward"`
	Status   MissionStatus   `json:"status"`
	Feedback string          `json:"feedback,omitempty"`
}

// HistoryEntry is one signed transaction in the append-mostly ledger.
type HistoryEntry struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// Normalize repairs nil collections loaded from malformed storage.
func (p *Profile) Normalize() {
	if p.Goals == nil {
		p.Goals = []Goal{}
	}
	if p.Missions == nil {
		p.Missions = []Mission{}
	}
	if p.History == nil {
		p.History = []HistoryEntry{}
	}
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	out.Goals = append([]Goal(nil), p.Goals...)
	out.Missions = append([]Mission(nil), p.Missions...)
	out.History = append([]HistoryEntry(nil), p.History...)
	return out
}

// LatestHistoryTimestamp returns the epoch-millisecond timestamp of the most
// recent history entry, or 0 when the profile has no history. Used to decide
// which side's scalar fields win a profile merge.
func (p *Profile) LatestHistoryTimestamp() int64 {
	var latest int64
	for i := range p.History {
		if ts := ParseTimestamp(p.History[i].Date); ts > latest {
			latest = ts
		}
	}
	return latest
}

// ComputeBalance returns the sum of all history amounts rounded to cents.
func (p *Profile) ComputeBalance() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.History {
		sum = sum.Add(p.History[i].Amount)
	}
	return RoundAmount(sum)
}
