package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swiftbuild/swiftwrap/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:          "cache",
	Short:        "Inspect the build ledger",
	SilenceUsage: true,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show recorded build statistics",
	RunE:         runCacheStats,
	SilenceUsage: true,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Clear the build ledger",
	RunE:         runCacheClear,
	SilenceUsage: true,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openLedger() (*cache.Ledger, error) {
	dir, err := cache.DefaultLedgerDir()
	if err != nil {
		return nil, err
	}

	return cache.OpenLedger(dir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	count, succeeded, err := ledger.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Recorded builds: %d\nSucceeded: %d\nFailed: %d\n", count, succeeded, count-succeeded)

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	if err := ledger.Clear(); err != nil {
		return err
	}

	fmt.Println("Build ledger cleared")

	return nil
}
