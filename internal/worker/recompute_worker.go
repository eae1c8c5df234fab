// Package worker recomputes monthly billing summaries in response to
// AMQP messages and rolls carryover hours into the following month.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ore/internal/amqp"
	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/storage"
)

// Recomputer is the slice of the report service the worker needs.
type Recomputer interface {
	RecomputeAndStore(ctx context.Context, year, month int) (core.MonthlyReport, error)
}

// ConfigStore reads and updates per-month billing configurations.
type ConfigStore interface {
	GetConfig(ctx context.Context, projectID string, year, month int) (core.ProjectBillingConfig, error)
	UpsertConfig(ctx context.Context, year, month int, cfg core.ProjectBillingConfig) error
	SetCarryoverIn(ctx context.Context, projectID string, year, month int, hours float64) error
}

// RecomputeWorker handles month recompute requests end to end: it reruns
// the billing calculation, persists the summary, and propagates each
// project's carryover into the next month's configuration.
type RecomputeWorker struct {
	reports Recomputer
	configs ConfigStore
}

func NewRecomputeWorker(reports Recomputer, configs ConfigStore) *RecomputeWorker {
	return &RecomputeWorker{
		reports: reports,
		configs: configs,
	}
}

// HandleRecomputeMessage processes a single month recompute message.
func (w *RecomputeWorker) HandleRecomputeMessage(ctx context.Context, msg *amqp.MonthRecomputeMessage) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid recompute message: %w", err)
	}

	slog.InfoContext(ctx, "Processing month recompute",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpRecompute,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		"reason", msg.Reason)

	report, err := w.reports.RecomputeAndStore(ctx, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("recompute %d-%02d: %w", msg.Year, msg.Month, err)
	}

	if err := w.rollForwardCarryover(ctx, msg.Year, msg.Month, report); err != nil {
		return fmt.Errorf("roll forward carryover %d-%02d: %w", msg.Year, msg.Month, err)
	}

	slog.InfoContext(ctx, "Month recompute complete",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpRecompute,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldBilledCents, report.Result.BilledRevenue.Cents,
		log.FieldUnmatched, len(report.UnmatchedProjects))
	return nil
}

// rollForwardCarryover writes each project's carryover into the next
// month's configuration. When the next month has no configuration yet,
// one is created by copying the current month's settings; when it exists,
// only the inbound carryover is updated so manual edits survive.
func (w *RecomputeWorker) rollForwardCarryover(ctx context.Context, year, month int, report core.MonthlyReport) error {
	nextYear, nextMonth := NextMonth(year, month)

	for _, company := range report.Result.Companies {
		for _, project := range company.Projects {
			cfg, err := w.configs.GetConfig(ctx, project.ProjectID, year, month)
			if err != nil {
				if errors.Is(err, storage.ErrConfigNotFound) {
					continue
				}
				return err
			}

			rolled := RolledCarryover(project, cfg)

			next, err := w.configs.GetConfig(ctx, project.ProjectID, nextYear, nextMonth)
			switch {
			case errors.Is(err, storage.ErrConfigNotFound):
				if rolled == 0 {
					continue
				}
				created := cfg
				created.CarryoverHoursIn = rolled
				if err := w.configs.UpsertConfig(ctx, nextYear, nextMonth, created); err != nil {
					return fmt.Errorf("create config for %s: %w", project.ProjectID, err)
				}
			case err != nil:
				return err
			case next.CarryoverHoursIn != rolled:
				if err := w.configs.SetCarryoverIn(ctx, project.ProjectID, nextYear, nextMonth, rolled); err != nil {
					return fmt.Errorf("set carryover for %s: %w", project.ProjectID, err)
				}
			default:
				continue
			}

			slog.InfoContext(ctx, "Rolled carryover forward",
				log.FieldComponent, log.ComponentWorker,
				log.FieldOperation, log.OpRollforward,
				log.FieldProjectID, project.ProjectID,
				log.FieldYear, nextYear,
				log.FieldMonth, nextMonth,
				log.FieldCarryoverOut, rolled)
		}
	}
	return nil
}

// RolledCarryover applies the expiry window to a project's carryover.
// The engine tracks carryover as a single bucket, so the unconsumed
// inbound portion is at least one month old by the time it rolls again:
// an expiry window of one month drops it, while freshly generated excess
// always rolls forward.
func RolledCarryover(project core.ProjectBillingResult, cfg core.ProjectBillingConfig) float64 {
	out := project.CarryoverOut
	if out == 0 {
		return 0
	}
	if cfg.CarryoverExpiryMonths != nil && *cfg.CarryoverExpiryMonths <= 1 {
		stale := core.Round2(project.CarryoverIn - project.CarryoverConsumed)
		if stale > 0 {
			out = core.Round2(out - stale)
			if out < 0 {
				out = 0
			}
		}
	}
	return out
}

// NextMonth returns the calendar month after the given one.
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
