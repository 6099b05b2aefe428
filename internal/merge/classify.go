package merge

import (
	"family-ledger-sync-go/internal/models"
)

// Classification labels the relationship between a local and a remote
// snapshot's last-write timestamps.
type Classification int

const (
	// NoConflict means the timestamps fall within the tolerance window and
	// the replicas count as synchronized. Callers prefer local, which is the
	// freshest in-memory copy.
	NoConflict Classification = iota
	// LocalNewer means the local snapshot is clearly ahead.
	LocalNewer
	// RemoteNewer means the remote snapshot is clearly ahead.
	RemoteNewer
	// ConcurrentEdit means both replicas were modified independently.
	ConcurrentEdit
)

func (c Classification) String() string {
	switch c {
	case NoConflict:
		return "no_conflict"
	case LocalNewer:
		return "local_newer"
	case RemoteNewer:
		return "remote_newer"
	case ConcurrentEdit:
		return "concurrent_edit"
	default:
		return "unknown"
	}
}

// Result carries the classification and the parsed timestamps it was based
// on, in epoch milliseconds.
type Result struct {
	Kind     Classification
	LocalTs  int64
	RemoteTs int64
}

// Classifier decides how two snapshots relate. It is an interface so the
// timestamp heuristic can later be swapped for a logical-clock scheme
// without touching the mergers, which are already clock-agnostic.
type Classifier interface {
	Classify(local, remote *models.State) Result
}

// TimestampClassifier classifies by comparing the snapshots' UpdatedAt
// fields against a tolerance window. Pure and deterministic; missing or
// malformed timestamps degrade to epoch 0.
type TimestampClassifier struct {
	toleranceMs int64
}

// NewTimestampClassifier creates a classifier with the given tolerance in
// milliseconds. Non-positive values fall back to the default window.
func NewTimestampClassifier(toleranceMs int64) *TimestampClassifier {
	if toleranceMs <= 0 {
		toleranceMs = models.DefaultToleranceMs
	}
	return &TimestampClassifier{toleranceMs: toleranceMs}
}

// Classify implements Classifier.
func (c *TimestampClassifier) Classify(local, remote *models.State) Result {
	var localTs, remoteTs int64
	if local != nil {
		localTs = models.ParseTimestamp(local.UpdatedAt)
	}
	if remote != nil {
		remoteTs = models.ParseTimestamp(remote.UpdatedAt)
	}

	res := Result{LocalTs: localTs, RemoteTs: remoteTs}

	delta := localTs - remoteTs
	if delta < 0 {
		delta = -delta
	}

	switch {
	case delta < c.toleranceMs:
		res.Kind = NoConflict
	case localTs > remoteTs+c.toleranceMs:
		res.Kind = LocalNewer
	case remoteTs > localTs+c.toleranceMs:
		res.Kind = RemoteNewer
	default:
		// Residual case: the delta equals the tolerance exactly, so neither
		// side is clearly ahead.
		res.Kind = ConcurrentEdit
	}
	return res
}
