package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"family-ledger-sync-go/internal/common"
	"family-ledger-sync-go/internal/config"

	"go.uber.org/zap"
)

// export writes the local snapshot to a JSON file. It is the manual escape
// hatch for the one unrecoverable condition in the sync core: local storage
// staying full even after history trimming.
func main() {
	outFlag := flag.String("out", "family-ledger-export.json", "output file path")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	localStore, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	defer localStore.Close()

	state, err := localStore.LoadState(ctx)
	if err != nil {
		logger.Fatal("Failed to load local snapshot", zap.Error(err))
	}
	if state == nil {
		fmt.Fprintln(os.Stderr, "No local snapshot found, nothing to export.")
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode snapshot", zap.Error(err))
	}
	if err := os.WriteFile(*outFlag, payload, 0o600); err != nil {
		logger.Fatal("Failed to write export file", zap.Error(err))
	}

	common.PrintFooter(fmt.Sprintf("Exported %d profiles to %s", len(state.Profiles), *outFlag), common.DefaultWidth)
}
