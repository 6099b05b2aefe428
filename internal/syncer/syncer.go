package syncer

import (
	"context"
	"errors"
	"fmt"

	"family-ledger-sync-go/internal/merge"
	"family-ledger-sync-go/internal/metrics"
	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/quota"
	"family-ledger-sync-go/internal/store"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrStorageExhausted is the one terminal, user-visible failure of the sync
// core: the local store rejected the snapshot even after the hard trim. The
// caller should instruct the user to export their data.
var ErrStorageExhausted = errors.New("local storage exhausted after trimming")

// Params collects the collaborators for a Syncer. Local and Remote are
// required unless the owner ID is empty (guest mode needs only Local);
// Classifier, Notifier and Metrics are optional.
type Params struct {
	Config     models.SyncConfig
	Local      store.LocalStore
	Remote     store.RemoteStore
	Governor   *quota.Governor
	Classifier merge.Classifier
	Notifier   store.MergeNotifier
	Metrics    *metrics.Metrics
}

// Syncer drives one save cycle: load remote, classify against local, merge
// or select, persist locally and remotely. All remote failures degrade to
// "use what we have locally"; configuration is fixed at construction.
type Syncer struct {
	cfg        models.SyncConfig
	local      store.LocalStore
	remote     store.RemoteStore
	governor   *quota.Governor
	classifier merge.Classifier
	notifier   store.MergeNotifier
	metrics    *metrics.Metrics
	inFlight   *atomic.Bool
}

// New validates the params and builds a Syncer.
func New(p Params) (*Syncer, error) {
	if p.Local == nil {
		return nil, fmt.Errorf("syncer requires a local store")
	}
	if p.Remote == nil && p.Config.OwnerID != "" {
		return nil, fmt.Errorf("syncer requires a remote store when an owner is configured")
	}
	if p.Governor == nil {
		p.Governor = quota.NewGovernor(0, 0, 0)
	}
	if p.Classifier == nil {
		p.Classifier = merge.NewTimestampClassifier(p.Config.ToleranceMs)
	}
	return &Syncer{
		cfg:        p.Config,
		local:      p.Local,
		remote:     p.Remote,
		governor:   p.Governor,
		classifier: p.Classifier,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
		inFlight:   atomic.NewBool(false),
	}, nil
}

// Bootstrap loads the persisted snapshot at startup, or the initial empty
// state when none exists. The local store handles backup fallback; loaded
// snapshots are shape-normalized so corrupted data never blocks startup.
func (s *Syncer) Bootstrap(ctx context.Context) (*models.State, error) {
	state, err := s.local.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load local snapshot: %w", err)
	}
	if state == nil {
		zap.L().Info("No local snapshot found, starting from initial state")
		return models.NewInitialState(), nil
	}
	state.Normalize()
	return state, nil
}

// Save runs one full sync cycle for the given in-memory state and returns
// the reconciled state, which becomes the new in-memory source of truth.
//
// A cycle that starts while another is in flight is skipped, not queued: the
// state is returned unchanged and the next state change triggers the next
// cycle naturally.
func (s *Syncer) Save(ctx context.Context, current *models.State) (*models.State, error) {
	if current == nil {
		return nil, fmt.Errorf("cannot save a nil state")
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		zap.L().Debug("Save cycle already in flight, skipping")
		s.metrics.CycleCompleted("skipped")
		return current, nil
	}
	defer s.inFlight.Store(false)

	// Guest mode: no remote identity configured, persist locally only.
	if s.cfg.OwnerID == "" {
		result, err := s.persistLocal(ctx, current)
		if err != nil {
			return nil, err
		}
		s.metrics.CycleCompleted("local_only")
		return result, nil
	}

	remoteState, err := s.remote.LoadState(ctx, s.cfg.OwnerID)
	if err != nil {
		// Fail open: a transient remote failure never blocks local data from
		// being the fallback of record.
		zap.L().Warn("Remote load failed, continuing with local state",
			zap.String("owner_id", s.cfg.OwnerID),
			zap.Error(err))
		result, perr := s.persistLocal(ctx, current)
		if perr != nil {
			return nil, perr
		}
		s.metrics.CycleCompleted("remote_unavailable")
		return result, nil
	}

	if remoteState == nil {
		return s.firstSync(ctx, current)
	}
	remoteState.Normalize()

	res := s.classifier.Classify(current, remoteState)
	zap.L().Debug("Classified snapshots",
		zap.String("kind", res.Kind.String()),
		zap.Int64("local_ts", res.LocalTs),
		zap.Int64("remote_ts", res.RemoteTs))

	var result *models.State
	switch res.Kind {
	case merge.NoConflict, merge.LocalNewer:
		result = current
	case merge.RemoteNewer:
		if s.cfg.DiscardLocalOnRemoteNewer {
			zap.L().Info("Remote snapshot is newer, discarding local edits",
				zap.String("owner_id", s.cfg.OwnerID))
			result = remoteState
		} else {
			result = merge.States(current, remoteState)
		}
	case merge.ConcurrentEdit:
		zap.L().Info("Concurrent edit detected, merging snapshots",
			zap.String("owner_id", s.cfg.OwnerID))
		result = merge.States(current, remoteState)
		s.metrics.MergeResolved()
		if s.notifier != nil {
			s.notifier.MergePerformed(s.cfg.OwnerID)
		}
	}

	result = s.writeRemote(ctx, result)

	result, err = s.persistLocal(ctx, result)
	if err != nil {
		return nil, err
	}
	s.metrics.CycleCompleted(res.Kind.String())
	return result, nil
}

// firstSync handles an absent remote snapshot: the local state is written to
// the remote verbatim and returned, with any server-assigned IDs applied.
func (s *Syncer) firstSync(ctx context.Context, current *models.State) (*models.State, error) {
	zap.L().Info("No remote snapshot found, performing first sync",
		zap.String("owner_id", s.cfg.OwnerID))

	result := s.writeRemote(ctx, current)
	result, err := s.persistLocal(ctx, result)
	if err != nil {
		return nil, err
	}
	s.metrics.CycleCompleted("first_sync")
	return result, nil
}

// writeRemote pushes the result to the remote store and applies the returned
// ID remapping. Remote sync is advisory, not transactional: a failed write
// is logged and the already-computed result stands; the next cycle
// reconciles the drift.
func (s *Syncer) writeRemote(ctx context.Context, result *models.State) *models.State {
	remapping, err := s.remote.SaveState(ctx, s.cfg.OwnerID, result)
	if err != nil {
		zap.L().Warn("Remote write failed, keeping local result",
			zap.String("owner_id", s.cfg.OwnerID),
			zap.Error(err))
		return result
	}
	if len(remapping) > 0 {
		result = result.Clone()
		models.ApplyIDRemapping(result, remapping)
		zap.L().Info("Applied server ID remapping",
			zap.Int("remapped_ids", len(remapping)))
	}
	return result
}

// persistLocal writes the snapshot to the local store, trimming proactively
// above the soft size threshold and retrying once with the hard cap when the
// store reports a quota failure.
func (s *Syncer) persistLocal(ctx context.Context, state *models.State) (*models.State, error) {
	out := state
	if s.governor.Oversized(out) {
		zap.L().Info("Snapshot over soft size threshold, trimming history",
			zap.Int64("size_bytes", s.governor.SerializedSize(out)))
		out = s.governor.TrimSoft(out)
		s.metrics.TrimApplied()
	}

	err := s.local.SaveState(ctx, out)
	if errors.Is(err, store.ErrQuotaExceeded) {
		zap.L().Warn("Local storage quota exceeded, applying hard trim")
		out = s.governor.TrimHard(out)
		s.metrics.TrimApplied()
		if err = s.local.SaveState(ctx, out); err != nil {
			s.metrics.CycleCompleted("storage_exhausted")
			return nil, fmt.Errorf("%w: %v", ErrStorageExhausted, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return out, nil
}
