// Package main is the entry point for the compendium console
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

var (
	dbPath    string
	redisAddr string
	verbose   bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "compendium",
	Short: "D&D 5e compendium importer and character wizard test harness",
	Long: `compendium imports rulebook content from compendium XML files into a
SQLite store, serves it over gRPC, and drives the character wizard through
randomized creation and level up flows.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync() // nolint:errcheck // stderr sync fails on some terminals
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(max(errors.GetCode(err).ExitCode(), 1))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides COMPENDIUM_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis address (overrides COMPENDIUM_REDIS_ADDR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clientCmd)
	addImportCommands(rootCmd)
	rootCmd.AddCommand(wizardFlowCmd)
	rootCmd.AddCommand(levelUpFlowCmd)
	rootCmd.AddCommand(classCombinationsCmd)
	rootCmd.AddCommand(optionalFeaturesCmd)
	rootCmd.AddCommand(multiclassCmd)
	rootCmd.AddCommand(fixturesExportCmd)
	rootCmd.AddCommand(fixturesImportCmd)
	rootCmd.AddCommand(fixturesExtractCmd)
	rootCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheWarmCmd)
	rootCmd.AddCommand(charactersAuditCmd)
	rootCmd.AddCommand(counterAuditCmd)
}

// setup loads the environment, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if redisAddr != "" {
		loaded.RedisAddr = redisAddr
	}
	cfg = loaded

	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	built, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = built.With(zap.String("command", cmd.Name()))
	return nil
}
