package compendium

import (
	"context"
	"database/sql"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

const defaultReportLimit = 20

// SaveReport stores report, stamping CreatedAt when unset
func (s *Store) SaveReport(ctx context.Context, report *Report) error {
	if report == nil {
		return errors.InvalidArgument("report is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", report.ID, vb)
	errors.ValidateRequired("kind", report.Kind, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.clock.Now().UTC()
	}
	payload := report.Payload
	if payload == nil {
		payload = []byte("{}")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO flow_reports (id, kind, seed, passed, failed, payload, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Kind, report.Seed, report.Passed, report.Failed, string(payload), toMillis(report.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.AlreadyExistsf("report %s already exists", report.ID)
		}
		return errors.Wrapf(err, "failed to save report %s", report.ID)
	}
	return nil
}

// GetReport loads a report by id
func (s *Store) GetReport(ctx context.Context, id string) (*Report, error) {
	if id == "" {
		return nil, errors.InvalidArgument("report id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, kind, seed, passed, failed, payload, created_at FROM flow_reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("report %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get report %s", id)
	}
	return report, nil
}

// ListReports returns up to limit reports of kind, newest first. An empty
// kind lists every kind.
func (s *Store) ListReports(ctx context.Context, kind string, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}
	query := `SELECT id, kind, seed, passed, failed, payload, created_at FROM flow_reports`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reports")
	}
	defer func() { _ = rows.Close() }()

	var out []*Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan report")
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read reports")
	}
	return out, nil
}

func scanReport(row rowScanner) (*Report, error) {
	var (
		r         Report
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.Kind, &r.Seed, &r.Passed, &r.Failed, &r.Payload, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}
