package wizardflow

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// ReportKind is the store kind of wizard flow reports
const ReportKind = "wizard-flow"

// ReportStore persists flow reports. *compendium.Store implements it.
type ReportStore interface {
	SaveReport(ctx context.Context, report *compendium.Report) error
	GetReport(ctx context.Context, id string) (*compendium.Report, error)
	ListReports(ctx context.Context, kind string, limit int) ([]*compendium.Report, error)
}

// Summary totals a run
type Summary struct {
	Total           int            `json:"total"`
	Passed          int            `json:"passed"`
	Failed          int            `json:"failed"`
	Errors          int            `json:"errors"`
	Warnings        int            `json:"warnings"`
	SwitchesTested  int            `json:"switches_tested"`
	FailurePatterns map[string]int `json:"failure_patterns"`
	PassRate        float64        `json:"pass_rate"`
}

// Report is the outcome of a wizard flow run
type Report struct {
	RunID     string            `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	Seed      int64             `json:"seed"`
	Options   map[string]string `json:"options,omitempty"`
	Results   []*FlowResult     `json:"results"`
	Summary   Summary           `json:"summary"`
}

// Succeeded reports whether every flow passed
func (r *Report) Succeeded() bool {
	return r.Summary.Failed == 0 && r.Summary.Errors == 0
}

// ReportGenerator builds and stores reports
type ReportGenerator struct {
	store ReportStore
	clock clock.Clock
	ids   idgen.Generator
}

// NewReportGenerator creates a report generator. Nil clock and ids default
// to the wall clock and short uuids.
func NewReportGenerator(store ReportStore, clk clock.Clock, ids idgen.Generator) *ReportGenerator {
	if clk == nil {
		clk = clock.New()
	}
	if ids == nil {
		ids = idgen.ShortUUIDGenerator{}
	}
	return &ReportGenerator{store: store, clock: clk, ids: ids}
}

// Generate totals results into a report
func (g *ReportGenerator) Generate(seed int64, options map[string]string, results []*FlowResult) *Report {
	report := &Report{
		RunID:     g.ids.Generate(),
		Timestamp: g.clock.Now().UTC(),
		Seed:      seed,
		Options:   options,
		Results:   results,
		Summary:   Summary{Total: len(results), FailurePatterns: map[string]int{}},
	}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			report.Summary.Passed++
		case StatusFailed:
			report.Summary.Failed++
		default:
			report.Summary.Errors++
		}
		report.Summary.Warnings += r.Warnings
		for _, s := range r.Steps {
			if s.Action.IsSwitch() && s.Status != StatusSkipped {
				report.Summary.SwitchesTested++
			}
		}
		for _, p := range r.Patterns() {
			report.Summary.FailurePatterns[p]++
		}
	}
	if report.Summary.Total > 0 {
		report.Summary.PassRate = float64(report.Summary.Passed) / float64(report.Summary.Total) * 100
	}
	return report
}

// Save stores the report
func (g *ReportGenerator) Save(ctx context.Context, report *Report) error {
	return SaveJSON(ctx, g.store, &compendium.Report{
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
	if err := LoadJSON(ctx, g.store, runID, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the newest stored reports first
func (g *ReportGenerator) List(ctx context.Context, limit int) ([]*compendium.Report, error) {
	return g.store.ListReports(ctx, ReportKind, limit)
}

// SaveJSON stores payload as the body of row
func SaveJSON(ctx context.Context, store ReportStore, row *compendium.Report, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to encode report %s", row.ID)
	}
	row.Payload = data
	if err := store.SaveReport(ctx, row); err != nil {
		return errors.Wrapf(err, "failed to save report %s", row.ID)
	}
	return nil
}

// LoadJSON decodes the body of a stored report into v
func LoadJSON(ctx context.Context, store ReportStore, id string, v any) error {
	row, err := store.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(row.Payload, v); err != nil {
		return errors.Wrapf(err, "failed to decode report %s", id)
	}
	return nil
}

// ListTable renders stored reports as a table
func ListTable(title string, rows []*compendium.Report) string {
	table := console.NewTable(title, "Run ID", "Timestamp", "Seed", "Total", "Passed", "Failed", "Pass Rate")
	for _, r := range rows {
		total := r.Passed + r.Failed
		rate := 0.0
		if total > 0 {
			rate = float64(r.Passed) / float64(total) * 100
		}
		table.AddRow(r.ID, r.CreatedAt.Format(time.DateTime), strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(total), strconv.Itoa(r.Passed), strconv.Itoa(r.Failed), fmt.Sprintf("%.1f%%", rate))
	}
	return table.Render()
}

// ConsoleSummary renders the totals and failure patterns of a report
func (r *Report) ConsoleSummary() string {
	var sb strings.Builder
	s := r.Summary
	totals := console.NewTable(fmt.Sprintf("Wizard flow run %s (seed %d)", r.RunID, r.Seed), "Total", "Passed", "Failed", "Errors", "Warnings", "Switches", "Pass Rate")
	totals.AddRow(strconv.Itoa(s.Total),
		console.Status(true, strconv.Itoa(s.Passed)),
		console.Status(s.Failed == 0, strconv.Itoa(s.Failed)),
		console.Status(s.Errors == 0, strconv.Itoa(s.Errors)),
		strconv.Itoa(s.Warnings), strconv.Itoa(s.SwitchesTested), fmt.Sprintf("%.1f%%", s.PassRate))
	sb.WriteString(totals.Render())

	if len(s.FailurePatterns) > 0 {
		patterns := console.NewTable("Failure patterns", "Pattern", "Count")
		for _, p := range slices.Sorted(maps.Keys(s.FailurePatterns)) {
			patterns.AddRow(p, strconv.Itoa(s.FailurePatterns[p]))
		}
		sb.WriteString("\n")
		sb.WriteString(patterns.Render())
	}
	return sb.String()
}

// Details renders every failed flow with its failing steps and, when
// withChanges is set, the fields each step changed
func (r *Report) Details(withChanges bool) string {
	var sb strings.Builder
	for _, res := range r.Results {
		failures := res.Failures()
		if len(failures) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s iteration %d (seed %d, %s flow, character %s)\n",
			console.FailureStyle.Render(strings.ToUpper(res.Status)), res.Iteration, res.Seed, res.FlowType, res.CharacterID)
		for _, step := range failures {
			fmt.Fprintf(&sb, "  step %d %s: %s\n", step.Index, step.Action, step.Description)
			if step.Error != "" {
				fmt.Fprintf(&sb, "    error: %s\n", step.Error)
			}
			if step.Validation != nil {
				if step.Validation.Pattern != "" {
					fmt.Fprintf(&sb, "    pattern: %s\n", step.Validation.Pattern)
				}
				for _, e := range step.Validation.Errors {
					fmt.Fprintf(&sb, "    - %s\n", e)
				}
			}
			if withChanges {
				for _, c := range step.Changes {
					fmt.Fprintf(&sb, "    %s\n", console.MutedStyle.Render(c.String()))
				}
			}
		}
	}
	return sb.String()
}
