package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/counteraudit"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
)

var auditDetailed bool

var counterAuditCmd = &cobra.Command{
	Use:   "audit:optional-feature-counters",
	Short: "Compare imported optional feature counters with the rules",
	Long: `Check the class counters written by the importers, e.g. "Maneuvers Known",
against the optional feature progressions in rules.yaml. Mismatches point at an
importer or parser bug; fix them at the source and re-import.`,
	Args: cobra.NoArgs,
	RunE: runCounterAudit,
}

func init() {
	counterAuditCmd.Flags().BoolVar(&auditDetailed, "detailed", false, "List passing checks too")
}

func runCounterAudit(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rules, err := config.LoadRules()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, openOptions{skipMigrate: true})
	if err != nil {
		return err
	}
	defer a.close()

	auditor, err := counteraudit.New(&counteraudit.Config{Store: a.store, Rules: rules, Logger: logger})
	if err != nil {
		return err
	}
	report, err := auditor.Audit(ctx)
	if err != nil {
		return err
	}
	issues := report.Issues()
	if len(issues) == 0 && !auditDetailed {
		fmt.Println(console.Status(true, fmt.Sprintf("All %d counter checks match the rules", len(report.Checks))))
		return nil
	}
	fmt.Println(report.Table(auditDetailed))
	if len(issues) > 0 {
		return errors.FailedPreconditionf("%d optional feature counters do not match the rules", len(issues))
	}
	return nil
}
