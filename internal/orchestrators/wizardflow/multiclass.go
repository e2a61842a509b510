package wizardflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

const (
	// MulticlassReportKind is the store kind of multiclass reports
	MulticlassReportKind = "multiclass-combinations"
	// TagMulticlass marks the characters a multiclass run creates
	TagMulticlass = "multiclass"

	// multiclassSeedStride separates the seeds of two combinations
	multiclassSeedStride = 1000
)

// ClassLevel is a class and the level it is taken to
type ClassLevel struct {
	Class string `json:"class"`
	Level int    `json:"level"`
}

// Combination is a multiclass build. The first class is the starting class.
type Combination []ClassLevel

// ParseCombination reads "wizard:5,cleric:5". A source prefix such as
// "phb:wizard:5" is accepted and dropped.
func ParseCombination(s string) (Combination, error) {
	var out Combination
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) == 3 {
			fields = fields[1:]
		}
		if len(fields) != 2 || fields[0] == "" {
			return nil, errors.InvalidArgumentf("invalid class:level %q", part)
		}
		level, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.InvalidArgumentf("invalid level in %q", part)
		}
		out = append(out, ClassLevel{Class: strings.ToLower(fields[0]), Level: level})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseCombinations reads combinations separated by "|", e.g.
// "wizard:5,cleric:5|fighter:10,rogue:10"
func ParseCombinations(s string) ([]Combination, error) {
	var out []Combination
	for _, part := range strings.Split(s, "|") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCombination(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, errors.InvalidArgument("at least one combination is required")
	}
	return out, nil
}

// Validate checks every level is positive, no class repeats and the total
// stays within the level cap
func (c Combination) Validate() error {
	if len(c) == 0 {
		return errors.InvalidArgument("at least one class is required")
	}
	seen := make(map[string]bool, len(c))
	for _, cl := range c {
		if cl.Level < 1 {
			return errors.InvalidArgumentf("%s level must be at least 1", cl.Class)
		}
		if seen[cl.Class] {
			return errors.InvalidArgumentf("%s is listed twice", cl.Class)
		}
		seen[cl.Class] = true
	}
	if total := c.TotalLevel(); total > dnd5e.MaxLevel {
		return errors.InvalidArgumentf("total level %d exceeds %d", total, dnd5e.MaxLevel)
	}
	return nil
}

// TotalLevel sums the class levels
func (c Combination) TotalLevel() int {
	total := 0
	for _, cl := range c {
		total += cl.Level
	}
	return total
}

func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, cl := range c {
		parts[i] = cl.Class + ":" + strconv.Itoa(cl.Level)
	}
	return strings.Join(parts, ",")
}

// FileName is the fixture name of the combination, e.g. wizard-5-cleric-5.json
func (c Combination) FileName() string {
	parts := make([]string, len(c))
	for i, cl := range c {
		parts[i] = cl.Class + "-" + strconv.Itoa(cl.Level)
	}
	return strings.Join(parts, "-") + ".json"
}

// MulticlassInput configures a multiclass run
type MulticlassInput struct {
	Combinations []Combination
	// Count is the number of characters built per combination
	Count int
	// Seed of iteration i of combination n is Seed + n*1000 + i
	Seed int64
	// Force skips the multiclass ability score requirements
	Force   bool
	Cleanup bool
	// ExportDir writes a fixture per built character when set
	ExportDir string
}

// MulticlassResult is the outcome of one built character
type MulticlassResult struct {
	Combination string `json:"combination"`
	Iteration   int    `json:"iteration"`
	Seed        int64  `json:"seed"`
	Name        string `json:"name"`
	CharacterID string `json:"character_id,omitempty"`
	TotalLevel  int    `json:"total_level"`
	Status      string `json:"status"`
	Stage       string `json:"stage,omitempty"`
	Error       string `json:"error,omitempty"`
	Fixture     string `json:"fixture,omitempty"`
}

// MulticlassReport is the outcome of a multiclass run
type MulticlassReport struct {
	RunID   string              `json:"run_id"`
	Seed    int64               `json:"seed"`
	Results []*MulticlassResult `json:"results"`
	Passed  int                 `json:"passed"`
	Failed  int                 `json:"failed"`
}

// Table renders one row per built character
func (r *MulticlassReport) Table() string {
	table := console.NewTable(fmt.Sprintf("Multiclass combinations (seed %d)", r.Seed),
		"Combination", "Seed", "Level", "Status", "Stage", "Error")
	for _, res := range r.Results {
		table.AddRow(res.Name, strconv.FormatInt(res.Seed, 10), strconv.Itoa(res.TotalLevel),
			console.Status(res.Status == StatusPassed, res.Status), res.Stage, res.Error)
	}
	return table.Render()
}

// MulticlassRunner builds multiclass characters through the wizard
type MulticlassRunner struct {
	svc     character.Service
	dice    dice.Service
	names   []string
	clock   clock.Clock
	reports *ReportGenerator
	logger  *zap.Logger
}

// NewMulticlassRunner creates a multiclass runner
func NewMulticlassRunner(cfg *RunnerConfig) (*MulticlassRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &MulticlassRunner{
		svc:     cfg.Service,
		dice:    cfg.Dice,
		names:   cfg.Names,
		clock:   cfg.Clock,
		reports: NewReportGenerator(cfg.Reports, cfg.Clock, cfg.IDGenerator),
		logger:  cfg.Logger.With(zap.String("component", "multiclass")),
	}, nil
}

// Run builds input.Count characters per combination. The starting class is
// picked in a linear wizard flow, the other classes are added at level 1 and
// then every class is leveled to its target in order.
func (r *MulticlassRunner) Run(ctx context.Context, input *MulticlassInput) (*MulticlassReport, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Combinations) == 0 {
		return nil, errors.InvalidArgument("at least one combination is required")
	}
	if input.Count <= 0 {
		input.Count = 1
	}
	if input.Seed == 0 {
		input.Seed = r.clock.Now().Unix()
	}

	classes, err := r.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionClass})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}
	names := make(map[string]string, len(classes.Options))
	for _, o := range classes.Options {
		names[o.Slug] = o.Name
	}
	for _, combo := range input.Combinations {
		if err := combo.Validate(); err != nil {
			return nil, err
		}
		for _, cl := range combo {
			if _, ok := names[cl.Class]; !ok {
				return nil, errors.NotFoundf("class %s not found", cl.Class)
			}
		}
	}
	if input.ExportDir != "" {
		if err := os.MkdirAll(input.ExportDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", input.ExportDir)
		}
	}

	report := &MulticlassReport{RunID: r.reports.ids.Generate(), Seed: input.Seed}
	for n, combo := range input.Combinations {
		for i := range input.Count {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seed := input.Seed + int64(n*multiclassSeedStride+i)
			res := r.build(ctx, combo, input.Force, seed)
			res.Iteration = i + 1
			res.Name = displayName(combo, names)

			if res.Status == StatusPassed && input.ExportDir != "" {
				path := filepath.Join(input.ExportDir, combo.FileName())
				if input.Count > 1 {
					path = strings.TrimSuffix(path, ".json") + "-" + strconv.Itoa(i+1) + ".json"
				}
				if err := r.export(ctx, res, path); err != nil {
					res.Status = StatusFailed
					res.Stage = "export"
					res.Error = err.Error()
				} else {
					res.Fixture = path
				}
			}

			report.Results = append(report.Results, res)
			if res.Status == StatusPassed {
				report.Passed++
			} else {
				report.Failed++
			}
			r.logger.Info("multiclass character finished",
				zap.String("combination", res.Combination),
				zap.Int64("seed", seed),
				zap.Int("level", res.TotalLevel),
				zap.String("status", res.Status),
				zap.String("stage", res.Stage))

			if input.Cleanup && res.CharacterID != "" {
				if _, err := r.svc.DeleteCharacter(ctx, &character.DeleteCharacterInput{CharacterID: res.CharacterID}); err != nil {
					r.logger.Warn("failed to delete multiclass character", zap.String("character_id", res.CharacterID), zap.Error(err))
				}
			}
		}
	}

	err = SaveJSON(ctx, r.reports.store, &compendium.Report{
		ID:     report.RunID,
		Kind:   MulticlassReportKind,
		Seed:   report.Seed,
		Passed: report.Passed,
		Failed: report.Failed,
	}, report)
	return report, err
}

func displayName(combo Combination, names map[string]string) string {
	parts := make([]string, len(combo))
	for i, cl := range combo {
		name := names[cl.Class]
		if name == "" {
			name = cl.Class
		}
		parts[i] = name + " " + strconv.Itoa(cl.Level)
	}
	return strings.Join(parts, " / ")
}

func (r *MulticlassRunner) build(ctx context.Context, combo Combination, force bool, seed int64) *MulticlassResult {
	res := &MulticlassResult{Combination: combo.String(), Seed: seed, Status: StatusPassed}
	fail := func(stage string, err error) *MulticlassResult {
		res.Status = StatusFailed
		res.Stage = stage
		res.Error = err.Error()
		return res
	}

	rand := NewRandomizer(dice.NewSeededRoller(seed), r.svc, r.names)
	exec, err := NewExecutor(&ExecutorConfig{Service: r.svc, Randomizer: rand, Dice: r.dice, Logger: r.logger})
	if err != nil {
		return fail("setup", err)
	}
	flow := exec.Run(ctx, NewGenerator(rand).Linear(), RunOptions{
		Seed:       seed,
		ForceClass: combo[0].Class,
		Tags:       []string{TagMulticlass},
	})
	res.CharacterID = flow.CharacterID
	if flow.Status != StatusPassed {
		msg := flow.Status
		if f := flow.Failures(); len(f) > 0 {
			msg = fmt.Sprintf("%s at %s", flow.Status, f[0].Action)
			if f[0].Error != "" {
				msg += ": " + f[0].Error
			}
		}
		return fail("create", errors.Internal(msg))
	}
	res.TotalLevel = 1

	resolver := NewResolver(r.svc, rand)
	for _, cl := range combo[1:] {
		_, err := r.svc.AddClass(ctx, &character.AddClassInput{CharacterID: res.CharacterID, ClassSlug: cl.Class, Force: force})
		if err != nil {
			return fail("add "+cl.Class, err)
		}
		res.TotalLevel++
		if _, err := resolver.ResolvePending(ctx, res.CharacterID, ResolveOptions{}); err != nil {
			return fail("add "+cl.Class+" choices", err)
		}
	}

	for _, cl := range combo {
		for level := 2; level <= cl.Level; level++ {
			stage := fmt.Sprintf("%s %d", cl.Class, level)
			if _, err := r.svc.LevelUp(ctx, &character.LevelUpInput{CharacterID: res.CharacterID, ClassSlug: cl.Class}); err != nil {
				return fail(stage, err)
			}
			res.TotalLevel++
			if _, err := resolver.ResolvePending(ctx, res.CharacterID, ResolveOptions{}); err != nil {
				return fail(stage+" choices", err)
			}
		}
	}

	got, err := r.svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: res.CharacterID})
	if err != nil {
		return fail("verify", err)
	}
	for _, cl := range combo {
		link := got.Character.ClassLink(cl.Class)
		switch {
		case link == nil:
			return fail("verify", errors.FailedPreconditionf("character has no %s levels", cl.Class))
		case link.Level != cl.Level:
			return fail("verify", errors.FailedPreconditionf("%s level is %d, want %d", cl.Class, link.Level, cl.Level))
		}
	}
	if p := got.Character.PrimaryClass(); p == nil || p.ClassSlug != combo[0].Class {
		return fail("verify", errors.FailedPreconditionf("starting class is not %s", combo[0].Class))
	}
	if n := len(got.Character.PendingLevelUp); n > 0 {
		return fail("verify", errors.FailedPreconditionf("%d level up choices are still pending", n))
	}
	return res
}

// export writes the character to a fixture file named after its build
func (r *MulticlassRunner) export(ctx context.Context, res *MulticlassResult, path string) error {
	out, err := r.svc.Export(ctx, &character.ExportInput{CharacterIDs: []string{res.CharacterID}})
	if err != nil {
		return err
	}
	for _, c := range out.Fixture.Characters {
		c.Name = res.Name
	}
	data, err := json.MarshalIndent(out.Fixture, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode fixture")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
