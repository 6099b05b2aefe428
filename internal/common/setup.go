package common

import (
	"context"
	"log"
	"strings"

	"family-ledger-sync-go/internal/config"
	"family-ledger-sync-go/internal/database"
	"family-ledger-sync-go/internal/metrics"
	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/quota"
	"family-ledger-sync-go/internal/remote"
	"family-ledger-sync-go/internal/store"
	"family-ledger-sync-go/internal/syncer"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	LocalStore  *database.Service
	RemoteStore store.RemoteStore
	Syncer      *syncer.Syncer
	Policy      config.Policy
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the local store, the remote client (when an owner
// is configured) and the sync orchestrator from the loaded configuration.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	localStore, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	policy, err := config.LoadPolicy(cfg.Sync.PolicyFile)
	if err != nil {
		localStore.Close()
		return nil, err
	}
	governor := quota.NewGovernor(
		policy.SoftMaxEntriesPerProfile,
		policy.HardMaxEntriesPerProfile,
		policy.SoftSizeBytes)

	var remoteStore store.RemoteStore
	if cfg.Sync.OwnerID != "" {
		zap.L().Info("Remote sync enabled",
			zap.String("owner_id", cfg.Sync.OwnerID),
			zap.String("base_url", cfg.Remote.BaseURL))
		client, err := remote.NewClient(cfg.Remote)
		if err != nil {
			localStore.Close()
			return nil, err
		}
		remoteStore = client
	} else {
		zap.L().Info("No owner configured, running in guest mode (local only)")
	}

	engine, err := syncer.New(syncer.Params{
		Config:   cfg.Sync,
		Local:    localStore,
		Remote:   remoteStore,
		Governor: governor,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		localStore.Close()
		return nil, err
	}

	return &Services{
		LocalStore:  localStore,
		RemoteStore: remoteStore,
		Syncer:      engine,
		Policy:      policy,
	}, nil
}

// InitializeDatabaseOnly initializes just the local store without the remote
// client. Useful for read-only operations like exporting the snapshot.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	localStore, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return localStore, nil
}

func (cs *Services) Close() {
	if cs.LocalStore != nil {
		cs.LocalStore.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
