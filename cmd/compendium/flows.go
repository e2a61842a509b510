package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

const reportListLimit = 20

var (
	flowCount       int
	flowChaos       bool
	flowSeed        int64
	flowForceClass  string
	flowForceSub    string
	flowCleanup     bool
	flowListReports bool
	flowShowReport  string

	wizardSwitches       []string
	wizardAllRaces       bool
	wizardEquipmentModes bool
	wizardClassTypes     []string
	wizardMinSwitches    int
	wizardMaxSwitches    int
	wizardVerboseSteps   bool
	wizardScenarioFile   string
	wizardScenarioName   string
	wizardScenarioVars   map[string]string

	levelTargetLevel int
	levelRealistic   bool
	levelCharacterID string

	comboTargetLevel int
	comboClass       string

	optionalClass   string
	optionalLevel   int
	optionalVerbose bool

	multiCombinations string
	multiCount        int
	multiNoForce      bool
	multiExport       string
)

var wizardFlowCmd = &cobra.Command{
	Use:   "test:wizard-flow",
	Short: "Drive the character wizard through randomized creation flows",
	Long: `Create characters through the wizard, switching earlier choices along the
way, and validate every step. Iteration i is seeded with --seed + i - 1 so a
failing iteration can be replayed with --count 1 --seed <n>.

Switches: race, background, class.
Class types: caster, martial, e.g. --class-types caster,martial.`,
	Args: cobra.NoArgs,
	RunE: runWizardFlow,
}

var levelUpFlowCmd = &cobra.Command{
	Use:   "test:level-up-flow",
	Short: "Level characters through the wizard and validate every level",
	Long: `Create characters and level them to --target-level. --realistic rolls hit
points and multiclasses the way players do and wins over --chaos. --character
levels one existing character instead.`,
	Args: cobra.NoArgs,
	RunE: runLevelUpFlow,
}

var classCombinationsCmd = &cobra.Command{
	Use:   "test:class-combinations",
	Short: "Build and level every class and subclass",
	Args:  cobra.NoArgs,
	RunE:  runClassCombinations,
}

var optionalFeaturesCmd = &cobra.Command{
	Use:   "test:optional-features",
	Short: "Level one character per optional feature track and count its features",
	Long: `For every optional feature track in rules.yaml (fighting styles, maneuvers,
invocations and so on) build a character with the track's class and subclass,
level it through every milestone of the track up to --level and check the
number of features granted at each one. Tracks whose class or subclass is not
imported are skipped.`,
	Args: cobra.NoArgs,
	RunE: runOptionalFeatures,
}

var multiclassCmd = &cobra.Command{
	Use:   "test:multiclass-combinations",
	Short: "Build multiclass characters through the wizard",
	Long: `Build every combination in --combinations, e.g.
--combinations "wizard:5,cleric:5|fighter:10,rogue:10". The first class is the
starting class. Multiclass requirements are skipped unless --no-force is set.
--export writes one fixture per character, named like wizard-5-cleric-5.json.`,
	Args: cobra.NoArgs,
	RunE: runMulticlass,
}

func init() {
	for _, cmd := range []*cobra.Command{wizardFlowCmd, levelUpFlowCmd} {
		cmd.Flags().IntVar(&flowCount, "count", 1, "Number of iterations")
		cmd.Flags().BoolVar(&flowChaos, "chaos", false, "Randomize flows")
		cmd.Flags().Int64Var(&flowSeed, "seed", 0, "Random seed (current time when 0)")
		cmd.Flags().StringVar(&flowForceClass, "force-class", "", "Always pick this class")
		cmd.Flags().StringVar(&flowForceSub, "force-subclass", "", "Always pick this subclass")
		cmd.Flags().BoolVar(&flowCleanup, "cleanup", false, "Delete created characters afterwards")
		cmd.Flags().BoolVar(&flowListReports, "list-reports", false, "List stored reports and exit")
		cmd.Flags().StringVar(&flowShowReport, "show-report", "", "Show a stored report and exit")
	}

	wizardFlowCmd.Flags().StringSliceVar(&wizardSwitches, "switches", nil, "Switches to place in every flow")
	wizardFlowCmd.Flags().BoolVar(&wizardAllRaces, "all-races", false, "Run one chaos flow per race")
	wizardFlowCmd.Flags().BoolVar(&wizardEquipmentModes, "equipment-modes", false, "Switch background or class after equipment is chosen")
	wizardFlowCmd.Flags().StringSliceVar(&wizardClassTypes, "class-types", nil, "Switch from one class type to another, e.g. caster,martial")
	wizardFlowCmd.Flags().IntVar(&wizardMinSwitches, "min-switches", 0, "Fewest switches in a chaos flow")
	wizardFlowCmd.Flags().IntVar(&wizardMaxSwitches, "max-switches", 0, "Most switches in a chaos flow")
	wizardFlowCmd.Flags().BoolVar(&wizardVerboseSteps, "verbose-steps", false, "Print every step with its changes")
	wizardFlowCmd.Flags().StringVar(&wizardScenarioFile, "scenario", "", "HCL scenario file")
	wizardFlowCmd.Flags().StringVar(&wizardScenarioName, "scenario-name", "", "Only run this scenario from the file")
	wizardFlowCmd.Flags().StringToStringVar(&wizardScenarioVars, "var", nil, "Scenario variables, e.g. --var class=wizard")

	levelUpFlowCmd.Flags().IntVar(&levelTargetLevel, "target-level", 20, "Level to reach")
	levelUpFlowCmd.Flags().BoolVar(&levelRealistic, "realistic", false, "Level like a player would")
	levelUpFlowCmd.Flags().StringVar(&levelCharacterID, "character", "", "Level this existing character")

	classCombinationsCmd.Flags().IntVar(&comboTargetLevel, "target-level", 5, "Level every combination reaches")
	classCombinationsCmd.Flags().StringVar(&comboClass, "class", "", "Only this class")
	classCombinationsCmd.Flags().Int64Var(&flowSeed, "seed", 0, "Random seed (current time when 0)")
	classCombinationsCmd.Flags().BoolVar(&flowCleanup, "cleanup", false, "Delete created characters afterwards")

	optionalFeaturesCmd.Flags().StringVar(&optionalClass, "class", "", "Only the tracks of this class")
	optionalFeaturesCmd.Flags().IntVar(&optionalLevel, "level", 20, "Last class level checked")
	optionalFeaturesCmd.Flags().BoolVar(&optionalVerbose, "verbose-steps", false, "Print every checked level")
	optionalFeaturesCmd.Flags().Int64Var(&flowSeed, "seed", 0, "Random seed (current time when 0)")
	optionalFeaturesCmd.Flags().BoolVar(&flowCleanup, "cleanup", false, "Delete created characters afterwards")

	multiclassCmd.Flags().StringVar(&multiCombinations, "combinations", "", "Builds separated by |, e.g. wizard:5,cleric:5|fighter:10,rogue:10")
	multiclassCmd.Flags().IntVar(&multiCount, "count", 1, "Characters per combination")
	multiclassCmd.Flags().BoolVar(&multiNoForce, "no-force", false, "Apply multiclass ability score requirements")
	multiclassCmd.Flags().StringVar(&multiExport, "export", "", "Directory to write a fixture per character to")
	multiclassCmd.Flags().Int64Var(&flowSeed, "seed", 0, "Random seed (current time when 0)")
	multiclassCmd.Flags().BoolVar(&flowCleanup, "cleanup", false, "Delete created characters afterwards")
	_ = multiclassCmd.MarkFlagRequired("combinations") // nolint:errcheck // flag is defined above
}

func runWizardFlow(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	input := &wizardflow.RunInput{
		Count:          flowCount,
		Seed:           flowSeed,
		Chaos:          flowChaos,
		Switches:       wizardSwitches,
		MinSwitches:    wizardMinSwitches,
		MaxSwitches:    wizardMaxSwitches,
		AllRaces:       wizardAllRaces,
		EquipmentModes: wizardEquipmentModes,
		ForceClass:     flowForceClass,
		ForceSubclass:  flowForceSub,
		Cleanup:        flowCleanup,
	}
	if len(wizardClassTypes) > 0 {
		if len(wizardClassTypes) != 2 {
			return errors.InvalidArgumentf("--class-types takes two types, got %q", strings.Join(wizardClassTypes, ","))
		}
		input.ClassTypes = [2]string{wizardClassTypes[0], wizardClassTypes[1]}
	}

	inputs := []*wizardflow.RunInput{input}
	if wizardScenarioFile != "" {
		scenarios, err := wizardflow.LoadScenarios(wizardScenarioFile, wizardScenarioVars)
		if err != nil {
			return err
		}
		inputs = inputs[:0]
		for _, sc := range scenarios {
			if wizardScenarioName != "" && sc.Name != wizardScenarioName {
				continue
			}
			in := *input
			sc.Apply(&in)
			inputs = append(inputs, &in)
		}
		if len(inputs) == 0 {
			return errors.NotFoundf("no scenario named %q in %s", wizardScenarioName, wizardScenarioFile)
		}
	}

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := wizardflow.NewRunner(a.runnerConfig())
	if err != nil {
		return err
	}
	if flowListReports || flowShowReport != "" {
		return showWizardReports(ctx, runner.Reports())
	}

	failed := 0
	for _, in := range inputs {
		if in.Scenario != "" {
			fmt.Printf("Scenario %s\n", in.Scenario)
		}
		report, err := runner.Run(ctx, in)
		if err != nil {
			return err
		}
		if wizardVerboseSteps {
			fmt.Println(report.Details(true))
		} else if !report.Succeeded() {
			fmt.Println(report.Details(false))
		}
		fmt.Println(report.ConsoleSummary())
		if !report.Succeeded() {
			failed += report.Summary.Failed + report.Summary.Errors
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d wizard flows failed", failed)
	}
	return nil
}

func showWizardReports(ctx context.Context, reports *wizardflow.ReportGenerator) error {
	if flowShowReport != "" {
		report, err := reports.Load(ctx, flowShowReport)
		if err != nil {
			return err
		}
		fmt.Println(report.Details(wizardVerboseSteps))
		fmt.Println(report.ConsoleSummary())
		return nil
	}
	rows, err := reports.List(ctx, reportListLimit)
	if err != nil {
		return err
	}
	fmt.Println(wizardflow.ListTable("Wizard flow reports", rows))
	return nil
}

func runLevelUpFlow(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := levelupflow.NewRunner(a.runnerConfig())
	if err != nil {
		return err
	}

	if flowShowReport != "" {
		report, err := runner.Reports().Load(ctx, flowShowReport)
		if err != nil {
			return err
		}
		fmt.Println(report.Classes())
		fmt.Println(report.ConsoleSummary())
		return nil
	}
	if flowListReports {
		rows, err := runner.Reports().List(ctx, reportListLimit)
		if err != nil {
			return err
		}
		fmt.Println(wizardflow.ListTable("Level up flow reports", rows))
		return nil
	}

	report, err := runner.Run(ctx, &levelupflow.RunInput{
		Count:         flowCount,
		TargetLevel:   levelTargetLevel,
		Seed:          flowSeed,
		Chaos:         flowChaos,
		Realistic:     levelRealistic,
		ForceClass:    flowForceClass,
		ForceSubclass: flowForceSub,
		CharacterID:   levelCharacterID,
		Cleanup:       flowCleanup,
	})
	if err != nil {
		return err
	}
	fmt.Println(report.Classes())
	fmt.Println(report.ConsoleSummary())
	if !report.Succeeded() {
		return fmt.Errorf("%d level up flows failed", report.Summary.Failed+report.Summary.Errors)
	}
	return nil
}

func runClassCombinations(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := wizardflow.NewCombinationRunner(a.runnerConfig())
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx, &wizardflow.CombinationInput{
		TargetLevel: comboTargetLevel,
		Class:       comboClass,
		Seed:        flowSeed,
		Cleanup:     flowCleanup,
	})
	if err != nil {
		return err
	}
	fmt.Println(report.Table())
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d combinations failed", report.Failed, report.Passed+report.Failed)
	}
	return nil
}

func runOptionalFeatures(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := levelupflow.NewOptionalFeatureRunner(a.runnerConfig(), nil)
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx, &levelupflow.OptionalFeatureInput{
		Class:       optionalClass,
		TargetLevel: optionalLevel,
		Seed:        flowSeed,
		Cleanup:     flowCleanup,
	})
	if err != nil {
		return err
	}
	fmt.Println(report.Table(optionalVerbose))
	if !report.Succeeded() {
		return fmt.Errorf("%d of %d optional feature tracks failed", report.Failed, len(report.Results))
	}
	return nil
}

func runMulticlass(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	combos, err := wizardflow.ParseCombinations(multiCombinations)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, openOptions{wizard: true})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := wizardflow.NewMulticlassRunner(a.runnerConfig())
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx, &wizardflow.MulticlassInput{
		Combinations: combos,
		Count:        multiCount,
		Seed:         flowSeed,
		Force:        !multiNoForce,
		Cleanup:      flowCleanup,
		ExportDir:    multiExport,
	})
	if err != nil {
		return err
	}
	fmt.Println(report.Table())
	if multiExport != "" {
		fmt.Printf("Exported %d fixtures to %s\n", report.Passed, multiExport)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d multiclass characters failed", report.Failed, report.Passed+report.Failed)
	}
	return nil
}
