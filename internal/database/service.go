package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LocalStore.
var _ store.LocalStore = (*Service)(nil)

const (
	slotCurrent = "current"
	slotBackup  = "backup"
)

// Service is the SQLite-backed local snapshot store. It persists the JSON
// snapshot under a 'current' slot and rotates the previous payload into a
// 'backup' slot on every overwrite, used as a last-resort fallback when the
// primary slot is unreadable.
type Service struct {
	db               *sql.DB
	maxSnapshotBytes int64
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite snapshot store", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db, maxSnapshotBytes: cfg.MaxSnapshotBytes}
	if err := service.initSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Snapshot store initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Snapshot slots: 'current' and one-generation 'backup'
	CREATE TABLE IF NOT EXISTS snapshots (
		slot TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LoadState returns the persisted snapshot. When the current slot is missing
// or holds an unparseable payload, the backup slot is tried; if neither is
// readable the store reports no snapshot rather than an error, so a corrupted
// write never prevents the app from starting.
func (s *Service) LoadState(ctx context.Context) (*models.State, error) {
	state, err := s.loadSlot(ctx, slotCurrent)
	if err == nil && state != nil {
		return state, nil
	}
	if err != nil {
		zap.L().Warn("Current snapshot unreadable, falling back to backup", zap.Error(err))
	}

	backup, berr := s.loadSlot(ctx, slotBackup)
	if berr != nil {
		zap.L().Warn("Backup snapshot unreadable as well", zap.Error(berr))
		return nil, nil
	}
	return backup, nil
}

// loadSlot reads and decodes one snapshot slot. A missing row returns
// (nil, nil); a present but undecodable payload returns an error so the
// caller can decide about fallback.
func (s *Service) loadSlot(ctx context.Context, slot string) (*models.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, queryGetSnapshot, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s snapshot: %w", slot, err)
	}

	var state models.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", slot, err)
	}
	state.Normalize()
	return &state, nil
}

// SaveState persists the snapshot, rotating the previous current payload
// into the backup slot in the same transaction. Payloads over the configured
// quota are rejected with store.ErrQuotaExceeded before anything is written.
func (s *Service) SaveState(ctx context.Context, state *models.State) error {
	if state == nil {
		return fmt.Errorf("cannot persist a nil state")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if s.maxSnapshotBytes > 0 && int64(len(payload)) > s.maxSnapshotBytes {
		return fmt.Errorf("snapshot is %d bytes, quota is %d: %w",
			len(payload), s.maxSnapshotBytes, store.ErrQuotaExceeded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, queryRotateBackup); err != nil {
		return fmt.Errorf("failed to rotate backup snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryUpsertSnapshot, slotCurrent, string(payload)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	zap.L().Debug("Snapshot persisted", zap.Int("size_bytes", len(payload)))
	return nil
}
