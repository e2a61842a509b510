package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/clients/external"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
)

var (
	importDir   string
	importOnly  []string
	skipMigrate bool

	srdLevel int
	srdClass string
)

// typeCommands are the single type import commands, named after their importer
var typeCommands = []struct {
	importer string
	short    string
}{
	{"classes", "Import classes and subclasses from class-*.xml files"},
	{"spells", "Import spells from spells-*.xml files"},
	{"spell-class-mappings", "Link spells to extra classes from spells-*+*.xml files"},
	{"races", "Import races and subraces from races-*.xml files"},
	{"items", "Import items from items-*.xml files"},
	{"backgrounds", "Import backgrounds from backgrounds-*.xml files"},
	{"feats", "Import feats from feats-*.xml files"},
	{"optional-features", "Import optional features from optionalfeatures-*.xml files"},
	{"monsters", "Import monsters from bestiary-*.xml files"},
}

var importAllCmd = &cobra.Command{
	Use:   "import:all",
	Short: "Import every compendium file in a directory in dependency order",
	Long: `Import every compendium file in the import directory. Classes come first,
then spells, spell class mappings, races, items, backgrounds, feats, optional
features and monsters. Files are matched by prefix, e.g. <dir>/class-*.xml.
The command fails when any file or record failed.`,
	Args: cobra.NoArgs,
	RunE: runImportAll,
}

var importSRDSpellsCmd = &cobra.Command{
	Use:   "import:srd-spells",
	Short: "Import spells from the SRD API",
	Long:  `Import spells from the D&D 5e SRD API. Spells already imported from a compendium file are skipped.`,
	Args:  cobra.NoArgs,
	RunE:  runImportSRDSpells,
}

var importWatchCmd = &cobra.Command{
	Use:   "import:watch",
	Short: "Re-import compendium files as they change",
	Args:  cobra.NoArgs,
	RunE:  runImportWatch,
}

func addImportCommands(root *cobra.Command) {
	importAllCmd.Flags().StringVar(&importDir, "dir", "", "Import directory (overrides COMPENDIUM_IMPORT_DIR)")
	importAllCmd.Flags().StringSliceVar(&importOnly, "only", nil, "Only import these types, e.g. --only=classes,spells")
	importAllCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations first")
	root.AddCommand(importAllCmd)

	for _, tc := range typeCommands {
		name := tc.importer
		root.AddCommand(&cobra.Command{
			Use:   "import:" + name + " <file...>",
			Short: tc.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, stop := signalContext(cmd.Context())
				defer stop()
				return runImportFiles(ctx, name, args)
			},
		})
	}

	importSRDSpellsCmd.Flags().IntVar(&srdLevel, "level", -1, "Only spells of this level (0 for cantrips)")
	importSRDSpellsCmd.Flags().StringVar(&srdClass, "class", "", "Only spells of this class, e.g. wizard")
	root.AddCommand(importSRDSpellsCmd)

	importWatchCmd.Flags().StringVar(&importDir, "dir", "", "Directory to watch (overrides COMPENDIUM_IMPORT_DIR)")
	root.AddCommand(importWatchCmd)
}

// newImportRunner opens the store and, when Redis answers, the cache the
// importers invalidate
func newImportRunner(ctx context.Context, migrate bool) (*importers.Runner, *app, error) {
	a, err := openApp(ctx, openOptions{skipMigrate: !migrate})
	if err != nil {
		return nil, nil, err
	}
	importCfg := &importers.Config{Store: a.store, Logger: logger}
	if invalidator := a.tryCache(ctx); invalidator != nil {
		importCfg.Cache = invalidator
	}
	runner, err := importers.NewRunner(&importers.RunnerConfig{Importer: importCfg})
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return runner, a, nil
}

func runImportAll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()
	runner, a, err := newImportRunner(ctx, !skipMigrate)
	if err != nil {
		return err
	}
	defer a.close()

	dir := cfg.ImportDir
	if importDir != "" {
		dir = importDir
	}
	out, err := runner.ImportAll(ctx, &importers.ImportAllInput{Dir: dir, Only: importOnly})
	if err != nil {
		return err
	}

	fmt.Println(importAllTable(dir, out))
	if details := importFailures(out); details != "" {
		fmt.Println(details)
	}
	if n := out.Failed(); n > 0 {
		return fmt.Errorf("%d files failed to import", n)
	}
	return nil
}

// importAllTable renders one row per step with file and record counts
func importAllTable(dir string, out *importers.ImportAllOutput) string {
	table := console.NewTable(fmt.Sprintf("Import of %s (%s)", dir, out.Duration.Round(time.Millisecond)),
		"Type", "Importer", "Files", "Success", "Fail", "Records", "Created", "Updated", "Failed")
	for _, step := range out.Steps {
		var records, created, updated, failed int
		for _, f := range step.Files {
			if f.Result == nil {
				continue
			}
			records += f.Result.Total
			created += f.Result.Created
			updated += f.Result.Updated
			failed += f.Result.Failed
		}
		table.AddRow(step.Group, step.Importer,
			strconv.Itoa(len(step.Files)),
			console.Status(true, strconv.Itoa(step.Success())),
			console.Status(step.Fail() == 0, strconv.Itoa(step.Fail())),
			strconv.Itoa(records), strconv.Itoa(created), strconv.Itoa(updated),
			console.Status(failed == 0, strconv.Itoa(failed)))
	}
	return table.Render()
}

// importFailures lists every failed file and record
func importFailures(out *importers.ImportAllOutput) string {
	var sb strings.Builder
	for _, step := range out.Steps {
		for _, f := range step.Files {
			writeFileFailures(&sb, f)
		}
	}
	return sb.String()
}

func writeFileFailures(sb *strings.Builder, f *importers.FileOutcome) {
	if !f.Failed() {
		return
	}
	fmt.Fprintf(sb, "%s %s\n", console.FailureStyle.Render("FAILED"), f.Path)
	if f.Err != nil {
		fmt.Fprintf(sb, "  %s\n", f.Err)
	}
	if f.Result != nil {
		for _, e := range f.Result.Errors {
			fmt.Fprintf(sb, "  - %s (%s): %s\n", e.Name, e.Slug, e.Message)
			if e.Related != "" {
				fmt.Fprintf(sb, "    see %s\n", e.Related)
			}
		}
	}
}

func fileTable(title string, outcomes []*importers.FileOutcome) string {
	table := console.NewTable(title, "File", "Total", "Created", "Updated", "Skipped", "Failed", "Warnings", "Strategies")
	for _, o := range outcomes {
		if o.Result == nil {
			table.AddRow(o.Path, "", "", "", "", console.Status(false, "error"))
			continue
		}
		r := o.Result
		table.AddRow(o.Path, strconv.Itoa(r.Total), strconv.Itoa(r.Created), strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped), console.Status(r.Failed == 0, strconv.Itoa(r.Failed)),
			strconv.Itoa(len(r.Warnings)), strings.Join(r.StrategyNames(), ","))
	}
	return table.Render()
}

func runImportFiles(ctx context.Context, name string, paths []string) error {
	runner, a, err := newImportRunner(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	imp, ok := runner.Importer(name)
	if !ok {
		return fmt.Errorf("unknown importer %s", name)
	}

	var outcomes []*importers.FileOutcome
	failed := 0
	for _, path := range paths {
		outcome := &importers.FileOutcome{Path: path}
		outcome.Result, outcome.Err = imp.ImportFile(ctx, path)
		if outcome.Failed() {
			failed++
		}
		if outcome.Result != nil {
			for _, w := range outcome.Result.Warnings {
				logger.Debug("import warning", zap.String("path", path), zap.String("warning", w))
			}
		}
		outcomes = append(outcomes, outcome)
	}

	fmt.Println(fileTable("Import "+name, outcomes))
	var sb strings.Builder
	for _, o := range outcomes {
		writeFileFailures(&sb, o)
	}
	if sb.Len() > 0 {
		fmt.Print(sb.String())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(paths))
	}
	return nil
}

func runImportSRDSpells(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()
	a, err := openApp(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	client, err := external.New(&external.Config{BaseURL: cfg.SRDBaseURL, Logger: logger})
	if err != nil {
		return err
	}
	importCfg := &importers.Config{Store: a.store, Logger: logger}
	if invalidator := a.tryCache(ctx); invalidator != nil {
		importCfg.Cache = invalidator
	}
	srd, err := importers.NewSRDSpellImporter(&importers.SRDSpellImporterConfig{Importer: importCfg, Client: client})
	if err != nil {
		return err
	}

	input := &external.ListSpellsInput{Class: srdClass}
	if srdLevel >= 0 {
		input.Level = &srdLevel
	}
	result, err := srd.Run(ctx, input)
	if err != nil {
		return err
	}
	outcome := &importers.FileOutcome{Path: result.Path, Result: result}
	fmt.Println(fileTable("SRD spells", []*importers.FileOutcome{outcome}))
	if outcome.Failed() {
		var sb strings.Builder
		writeFileFailures(&sb, outcome)
		fmt.Print(sb.String())
		return fmt.Errorf("%d spells failed to import", result.Failed)
	}
	return nil
}

func runImportWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()
	runner, a, err := newImportRunner(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	dir := cfg.ImportDir
	if importDir != "" {
		dir = importDir
	}
	w, err := importers.NewWatcher(&importers.WatcherConfig{
		Runner: runner,
		Dir:    dir,
		Logger: logger,
		OnImport: func(o *importers.FileOutcome) {
			fmt.Println(fileTable("", []*importers.FileOutcome{o}))
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
