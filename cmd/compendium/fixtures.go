package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/entityfixtures"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

var (
	fixtureTag       string
	fixtureIDs       []string
	fixtureOverwrite bool
	fixtureOutput    string
	fixtureLimit     int
)

var fixturesExportCmd = &cobra.Command{
	Use:   "fixtures:export <file>",
	Short: "Write characters to a fixture file",
	Long:  `Write characters to a JSON fixture file. Without --id every character is exported.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFixturesExport,
}

var fixturesImportCmd = &cobra.Command{
	Use:   "fixtures:import <file>",
	Short: "Load characters from a fixture file",
	Long:  `Load characters from a JSON fixture file. Existing characters are skipped unless --overwrite is set.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFixturesImport,
}

var fixturesExtractCmd = &cobra.Command{
	Use:   "fixtures:extract <type|all>",
	Short: "Write a sample of imported entities for test seeding",
	Long: `Write up to --limit entities of a type to <output>/entities/<type>.json.
Spells cover every level and school, plus concentration and ritual spells.
Monsters cover every challenge rating, size and creature type. The rest of the
limit is filled in name order.

Types: class, spell, race, item, background, feat, optional_feature, monster.`,
	Args: cobra.ExactArgs(1),
	RunE: runFixturesExtract,
}

func init() {
	fixturesExportCmd.Flags().StringVar(&fixtureTag, "tag", "", "Tag recorded on the exported characters")
	fixturesExportCmd.Flags().StringSliceVar(&fixtureIDs, "id", nil, "Only these character IDs")
	fixturesImportCmd.Flags().BoolVar(&fixtureOverwrite, "overwrite", false, "Replace characters that already exist")
	fixturesExtractCmd.Flags().StringVar(&fixtureOutput, "output", "tests/fixtures", "Output directory")
	fixturesExtractCmd.Flags().IntVar(&fixtureLimit, "limit", entityfixtures.DefaultLimit, "Most entities per type")
}

func runFixturesExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.wizard.Export(ctx, &character.ExportInput{CharacterIDs: fixtureIDs, Tag: fixtureTag})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(out.Fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode fixture: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	fmt.Printf("Exported %d characters to %s\n", len(out.Fixture.Characters), args[0])
	return nil
}

func runFixturesImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	fixture := &character.Fixture{}
	if err := json.Unmarshal(data, fixture); err != nil {
		return errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to decode %s", args[0])
	}

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.wizard.Import(ctx, &character.ImportInput{Fixture: fixture, Overwrite: fixtureOverwrite})
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s: %d created, %d updated, %d skipped\n", args[0], out.Created, out.Updated, out.Skipped)
	return nil
}

func runFixturesExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var types []dnd5e.EntityType
	if args[0] != "all" {
		t, ok := dnd5e.ParseEntityType(args[0])
		if !ok {
			return errors.InvalidArgumentf("unknown entity type %q", args[0])
		}
		types = append(types, t)
	}

	a, err := openApp(ctx, openOptions{skipMigrate: true})
	if err != nil {
		return err
	}
	defer a.close()

	extractor, err := entityfixtures.New(&entityfixtures.Config{Store: a.store, Logger: logger})
	if err != nil {
		return err
	}
	out, err := extractor.Extract(ctx, &entityfixtures.ExtractInput{Types: types, OutputDir: fixtureOutput, Limit: fixtureLimit})
	if err != nil {
		return err
	}
	table := console.NewTable("Extracted fixtures", "Type", "Entities", "File")
	for _, f := range out.Files {
		table.AddRow(string(f.Type), strconv.Itoa(f.Count), f.Path)
	}
	fmt.Println(table.Render())
	return nil
}
