package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"family-ledger-sync-go/internal/common"
	"family-ledger-sync-go/internal/config"
	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/syncer"

	"go.uber.org/zap"
)

func printProfile(p models.Profile, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-20s balance: %10s  goals: %d  missions: %d  history: %d\n",
		symbol,
		p.Name,
		p.Balance.StringFixed(2),
		len(p.Goals),
		len(p.Missions),
		len(p.History))
}

func printState(state *models.State, policy config.Policy) {
	fmt.Printf("\n┌─ Snapshot (updated: %s)\n", state.UpdatedAt)
	fmt.Printf("│  Profiles: %d\n", len(state.Profiles))
	fmt.Printf("│  Approved missions: %d (badge tier %d)\n",
		state.TotalApprovedMissions, policy.TierFor(state.TotalApprovedMissions))
	common.PrintBoxSeparator(78)
	for i, p := range state.Profiles {
		printProfile(p, i == len(state.Profiles)-1)
	}
}

func main() {
	ownerFlag := flag.String("owner", "", "override the configured owner ID")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if *ownerFlag != "" {
		cfg.Sync.OwnerID = *ownerFlag
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("Family Ledger Sync", common.DefaultWidth)

	state, err := services.Syncer.Bootstrap(ctx)
	if err != nil {
		logger.Fatal("Failed to load local snapshot", zap.Error(err))
	}

	result, err := services.Syncer.Save(ctx, state)
	if err != nil {
		if errors.Is(err, syncer.ErrStorageExhausted) {
			fmt.Fprintln(os.Stderr, "Local storage is full even after trimming.")
			fmt.Fprintln(os.Stderr, "Export your data with the export tool, then reinstall.")
			os.Exit(1)
		}
		logger.Fatal("Sync cycle failed", zap.Error(err))
	}

	printState(result, services.Policy)
	common.PrintFooter("Sync cycle complete", common.DefaultWidth)
}
