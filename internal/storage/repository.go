// Package storage persists timesheet entries, billing configurations, the
// identity alias tables, and the worker's precomputed monthly summaries in
// SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ore/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrSummaryNotFound = errors.New("monthly summary not found")
	ErrConfigNotFound  = errors.New("billing config not found")
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func monthRange(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start.Format(dateLayout), start.AddDate(0, 1, 0).Format(dateLayout)
}

// ImportEntries replaces a source's entries for the month with the supplied
// batch. Replacement (rather than append) keeps re-imports idempotent.
func (r *SQLiteRepository) ImportEntries(ctx context.Context, source string, year, month int, entries []core.TimesheetEntry) error {
	start, end := monthRange(year, month)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM timesheet_entries WHERE source = ? AND work_date >= ? AND work_date < ?`,
		source, start, end); err != nil {
		return fmt.Errorf("clear previous import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timesheet_entries
			(work_date, project_id, project_name, client_id, client_name, task_name, user_name, minutes, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.WorkDate.Format(dateLayout), e.ProjectID, e.ProjectName,
			e.ClientID, e.ClientName, e.TaskName, e.UserName, e.Minutes, source); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Timesheet entries imported",
		"source", source, "year", year, "month", month, "entry_count", len(entries))
	return nil
}

// ListEntries returns all entries for the billing month, across sources.
func (r *SQLiteRepository) ListEntries(ctx context.Context, year, month int) ([]core.TimesheetEntry, error) {
	start, end := monthRange(year, month)

	rows, err := r.db.QueryContext(ctx, `
		SELECT work_date, project_id, project_name, client_id, client_name, task_name, user_name, minutes
		FROM timesheet_entries
		WHERE work_date >= ? AND work_date < ?
		ORDER BY work_date, id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.TimesheetEntry
	for rows.Next() {
		var e core.TimesheetEntry
		var workDate string
		if err := rows.Scan(&workDate, &e.ProjectID, &e.ProjectName,
			&e.ClientID, &e.ClientName, &e.TaskName, &e.UserName, &e.Minutes); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		d, err := time.Parse(dateLayout, workDate)
		if err != nil {
			return nil, fmt.Errorf("parse work date %q: %w", workDate, err)
		}
		e.WorkDate = d
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListConfigs returns every project billing configuration for the month.
func (r *SQLiteRepository) ListConfigs(ctx context.Context, year, month int) ([]core.ProjectBillingConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_id, project_name, hourly_rate_cents, rounding_minutes,
		       minimum_hours, maximum_hours, is_active,
		       carryover_enabled, carryover_hours_in, carryover_cap, carryover_expiry_months
		FROM project_billing_configs
		WHERE year = ? AND month = ?
		ORDER BY project_id`, year, month)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	defer rows.Close()

	var configs []core.ProjectBillingConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// GetConfig returns one project's configuration for the month.
func (r *SQLiteRepository) GetConfig(ctx context.Context, projectID string, year, month int) (core.ProjectBillingConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT project_id, project_name, hourly_rate_cents, rounding_minutes,
		       minimum_hours, maximum_hours, is_active,
		       carryover_enabled, carryover_hours_in, carryover_cap, carryover_expiry_months
		FROM project_billing_configs
		WHERE project_id = ? AND year = ? AND month = ?`, projectID, year, month)
	cfg, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProjectBillingConfig{}, fmt.Errorf("%w: %s %d-%02d", ErrConfigNotFound, projectID, year, month)
	}
	return cfg, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (core.ProjectBillingConfig, error) {
	var cfg core.ProjectBillingConfig
	var rateCents int64
	var rounding int
	var minHours, maxHours, carryCap sql.NullFloat64
	var expiry sql.NullInt64
	err := row.Scan(&cfg.ProjectID, &cfg.ProjectName, &rateCents, &rounding,
		&minHours, &maxHours, &cfg.IsActive,
		&cfg.CarryoverEnabled, &cfg.CarryoverHoursIn, &carryCap, &expiry)
	if err != nil {
		return cfg, err
	}
	cfg.HourlyRate = core.Money{Cents: rateCents}
	cfg.Rounding = core.RoundingIncrement(rounding)
	if minHours.Valid {
		v := minHours.Float64
		cfg.MinimumHours = &v
	}
	if maxHours.Valid {
		v := maxHours.Float64
		cfg.MaximumHours = &v
	}
	if carryCap.Valid {
		v := carryCap.Float64
		cfg.CarryoverCap = &v
	}
	if expiry.Valid {
		v := int(expiry.Int64)
		cfg.CarryoverExpiryMonths = &v
	}
	return cfg, nil
}

// UpsertConfig writes a project's configuration for the month. Limits are
// validated here so an inconsistent min/max pair never reaches the biller.
func (r *SQLiteRepository) UpsertConfig(ctx context.Context, year, month int, cfg core.ProjectBillingConfig) error {
	if !core.ValidateMinMaxLimits(cfg.MinimumHours, cfg.MaximumHours) {
		return fmt.Errorf("inconsistent min/max limits for project %s", cfg.ProjectID)
	}
	if err := cfg.Rounding.Validate(); err != nil {
		return fmt.Errorf("project %s: %w", cfg.ProjectID, err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_billing_configs
			(project_id, year, month, project_name, hourly_rate_cents, rounding_minutes,
			 minimum_hours, maximum_hours, is_active,
			 carryover_enabled, carryover_hours_in, carryover_cap, carryover_expiry_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, year, month) DO UPDATE SET
			project_name = excluded.project_name,
			hourly_rate_cents = excluded.hourly_rate_cents,
			rounding_minutes = excluded.rounding_minutes,
			minimum_hours = excluded.minimum_hours,
			maximum_hours = excluded.maximum_hours,
			is_active = excluded.is_active,
			carryover_enabled = excluded.carryover_enabled,
			carryover_hours_in = excluded.carryover_hours_in,
			carryover_cap = excluded.carryover_cap,
			carryover_expiry_months = excluded.carryover_expiry_months`,
		cfg.ProjectID, year, month, cfg.ProjectName, cfg.HourlyRate.Cents, int(cfg.Rounding),
		nullFloat(cfg.MinimumHours), nullFloat(cfg.MaximumHours), cfg.IsActive,
		cfg.CarryoverEnabled, cfg.CarryoverHoursIn, nullFloat(cfg.CarryoverCap), nullInt(cfg.CarryoverExpiryMonths))
	if err != nil {
		return fmt.Errorf("upsert config: %w", err)
	}
	return nil
}

// SetCarryoverIn updates only the inbound carryover of an existing config.
func (r *SQLiteRepository) SetCarryoverIn(ctx context.Context, projectID string, year, month int, hours float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE project_billing_configs SET carryover_hours_in = ?
		WHERE project_id = ? AND year = ? AND month = ?`, hours, projectID, year, month)
	if err != nil {
		return fmt.Errorf("set carryover in: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set carryover in: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d-%02d", ErrConfigNotFound, projectID, year, month)
	}
	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// AliasTables is the snapshot the identity resolver is built from.
type AliasTables struct {
	ProjectAliases map[string]string
	ProjectClients map[string]string
	ClientAliases  map[string]string
	ClientNames    map[string]string
}

func (r *SQLiteRepository) LoadAliasTables(ctx context.Context) (AliasTables, error) {
	tables := AliasTables{}
	var err error
	if tables.ProjectAliases, err = r.loadPairs(ctx, `SELECT alias_project_id, canonical_project_id FROM project_aliases`); err != nil {
		return tables, fmt.Errorf("load project aliases: %w", err)
	}
	if tables.ProjectClients, err = r.loadPairs(ctx, `SELECT project_id, client_id FROM project_clients`); err != nil {
		return tables, fmt.Errorf("load project clients: %w", err)
	}
	if tables.ClientAliases, err = r.loadPairs(ctx, `SELECT alias_client_id, canonical_client_id FROM client_aliases`); err != nil {
		return tables, fmt.Errorf("load client aliases: %w", err)
	}
	if tables.ClientNames, err = r.loadPairs(ctx, `SELECT client_id, display_name FROM clients`); err != nil {
		return tables, fmt.Errorf("load client names: %w", err)
	}
	return tables, nil
}

func (r *SQLiteRepository) loadPairs(ctx context.Context, query string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		pairs[k] = v
	}
	return pairs, rows.Err()
}

// SaveMonthlySummary stores the worker's precomputed report for the month.
func (r *SQLiteRepository) SaveMonthlySummary(ctx context.Context, year, month int, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_summaries (year, month, payload, computed_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(year, month) DO UPDATE SET
			payload = excluded.payload,
			computed_at = CURRENT_TIMESTAMP`, year, month, string(payload))
	if err != nil {
		return fmt.Errorf("save monthly summary: %w", err)
	}

	slog.InfoContext(ctx, "Monthly summary stored", "year", year, "month", month)
	return nil
}

// GetMonthlySummary returns the stored report payload for the month.
func (r *SQLiteRepository) GetMonthlySummary(ctx context.Context, year, month int) ([]byte, time.Time, error) {
	var payload, computedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, computed_at FROM monthly_summaries WHERE year = ? AND month = ?`,
		year, month).Scan(&payload, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%w: %d-%02d", ErrSummaryNotFound, year, month)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get monthly summary: %w", err)
	}
	at, err := time.Parse("2006-01-02 15:04:05", computedAt)
	if err != nil {
		// SQLite stores CURRENT_TIMESTAMP as UTC text; tolerate other layouts
		at = time.Time{}
	}
	return []byte(payload), at, nil
}
