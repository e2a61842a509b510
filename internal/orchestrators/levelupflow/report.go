package levelupflow

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// ReportKind is the store kind of level up flow reports
const ReportKind = "level-up-flow"

// LevelStats totals the levels reached
type LevelStats struct {
	MaxReached        int     `json:"max_reached"`
	AvgReached        float64 `json:"avg_reached"`
	TotalLevelsGained int     `json:"total_levels_gained"`
}

// CharacterUsed is one character a run leveled
type CharacterUsed struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	FinalLevel int    `json:"final_level"`
}

// Summary totals a run
type Summary struct {
	Total           int             `json:"total"`
	Passed          int             `json:"passed"`
	Failed          int             `json:"failed"`
	Errors          int             `json:"errors"`
	Warnings        int             `json:"warnings"`
	FailurePatterns map[string]int  `json:"failure_patterns"`
	CharactersUsed  []CharacterUsed `json:"characters_used"`
	LevelStats      LevelStats      `json:"level_stats"`
	PassRate        float64         `json:"pass_rate"`
}

// Report is the outcome of a level up flow run
type Report struct {
	RunID     string            `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	Seed      int64             `json:"seed"`
	Options   map[string]string `json:"options,omitempty"`
	Results   []*Result         `json:"results"`
	Summary   Summary           `json:"summary"`
}

// Succeeded reports whether every character passed
func (r *Report) Succeeded() bool {
	return r.Summary.Failed == 0 && r.Summary.Errors == 0
}

// ReportGenerator builds and stores level up reports
type ReportGenerator struct {
	store wizardflow.ReportStore
	clock clock.Clock
	ids   idgen.Generator
}

// NewReportGenerator creates a report generator. Nil clock and ids default
// to the wall clock and short uuids.
func NewReportGenerator(store wizardflow.ReportStore, clk clock.Clock, ids idgen.Generator) *ReportGenerator {
	if clk == nil {
		clk = clock.New()
	}
	if ids == nil {
		ids = idgen.ShortUUIDGenerator{}
	}
	return &ReportGenerator{store: store, clock: clk, ids: ids}
}

// Generate totals results into a report
func (g *ReportGenerator) Generate(seed int64, options map[string]string, results []*Result) *Report {
	report := &Report{
		RunID:     g.ids.Generate(),
		Timestamp: g.clock.Now().UTC(),
		Seed:      seed,
		Options:   options,
		Results:   results,
		Summary:   Summary{Total: len(results), FailurePatterns: map[string]int{}},
	}
	s := &report.Summary
	reached := 0
	for _, r := range results {
		switch r.Status {
		case wizardflow.StatusPassed:
			s.Passed++
		case wizardflow.StatusFailed:
			s.Failed++
		default:
			s.Errors++
		}
		s.Warnings += r.Warnings
		for _, p := range r.Patterns() {
			s.FailurePatterns[p]++
		}
		s.CharactersUsed = append(s.CharactersUsed, CharacterUsed{ID: r.CharacterID, Status: r.Status, FinalLevel: r.FinalLevel})

		reached += r.FinalLevel
		s.LevelStats.MaxReached = max(s.LevelStats.MaxReached, r.FinalLevel)
		for _, step := range r.Steps {
			if step.After != nil {
				s.LevelStats.TotalLevelsGained++
			}
		}
	}
	if s.Total > 0 {
		s.LevelStats.AvgReached = math.Round(float64(reached)/float64(s.Total)*10) / 10
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return report
}

// Save stores the report
func (g *ReportGenerator) Save(ctx context.Context, report *Report) error {
	return wizardflow.SaveJSON(ctx, g.store, &compendium.Report{
		ID:        report.RunID,
		Kind:      ReportKind,
		Seed:      report.Seed,
		Passed:    report.Summary.Passed,
		Failed:    report.Summary.Failed + report.Summary.Errors,
		CreatedAt: report.Timestamp,
	}, report)
}

// Load reads a stored report
func (g *ReportGenerator) Load(ctx context.Context, runID string) (*Report, error) {
	report := &Report{}
	if err := wizardflow.LoadJSON(ctx, g.store, runID, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the newest stored reports first
func (g *ReportGenerator) List(ctx context.Context, limit int) ([]*compendium.Report, error) {
	return g.store.ListReports(ctx, ReportKind, limit)
}

// ConsoleSummary renders the totals, level stats and failed runs
func (r *Report) ConsoleSummary() string {
	var sb strings.Builder
	s := r.Summary
	totals := console.NewTable(fmt.Sprintf("Level up flow run %s (seed %d)", r.RunID, r.Seed),
		"Total", "Passed", "Failed", "Errors", "Warnings", "Pass Rate")
	totals.AddRow(strconv.Itoa(s.Total),
		console.Status(true, strconv.Itoa(s.Passed)),
		console.Status(s.Failed == 0, strconv.Itoa(s.Failed)),
		console.Status(s.Errors == 0, strconv.Itoa(s.Errors)),
		strconv.Itoa(s.Warnings), fmt.Sprintf("%.1f%%", s.PassRate))
	sb.WriteString(totals.Render())

	levels := console.NewTable("Level stats", "Max Reached", "Avg Reached", "Levels Gained")
	levels.AddRow(strconv.Itoa(s.LevelStats.MaxReached), strconv.FormatFloat(s.LevelStats.AvgReached, 'f', 1, 64),
		strconv.Itoa(s.LevelStats.TotalLevelsGained))
	sb.WriteString("\n")
	sb.WriteString(levels.Render())

	if len(s.FailurePatterns) > 0 {
		patterns := console.NewTable("Failure patterns", "Pattern", "Count")
		for _, p := range slices.Sorted(maps.Keys(s.FailurePatterns)) {
			patterns.AddRow(p, strconv.Itoa(s.FailurePatterns[p]))
		}
		sb.WriteString("\n")
		sb.WriteString(patterns.Render())
	}

	for _, res := range r.Results {
		if res.Status == wizardflow.StatusPassed {
			continue
		}
		fmt.Fprintf(&sb, "\n%s %s (seed %d, %s, level %d)\n",
			console.FailureStyle.Render(strings.ToUpper(res.Status)), res.CharacterID, res.Seed, res.Mode, res.FinalLevel)
		for _, step := range res.Failures() {
			switch {
			case step.Error != "":
				fmt.Fprintf(&sb, "  - level %d %s: %s\n", step.Level, step.ClassSlug, step.Error)
			case step.Validation != nil:
				fmt.Fprintf(&sb, "  - level %d %s: %s\n", step.Level, step.ClassSlug, strings.Join(step.Validation.Errors, "; "))
			}
		}
		if res.Error != nil {
			fmt.Fprintf(&sb, "  - error at level %d: %s\n", res.Error.AtLevel, res.Error.Message)
		}
	}
	return sb.String()
}

// Classes renders how each character's levels were split across classes
func (r *Report) Classes() string {
	table := console.NewTable("Class levels", "Character", "Mode", "Start", "Final", "Classes")
	for _, res := range r.Results {
		dist := LevelDistribution(res.Steps)
		parts := make([]string, 0, len(dist))
		for _, cls := range slices.Sorted(maps.Keys(dist)) {
			parts = append(parts, fmt.Sprintf("%s +%d", cls, dist[cls]))
		}
		table.AddRow(res.CharacterID, res.Mode, strconv.Itoa(res.StartLevel), strconv.Itoa(res.FinalLevel), strings.Join(parts, ", "))
	}
	return table.Render()
}
