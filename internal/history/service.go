package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/epgjanitor/epgjanitor/internal/database"
	"github.com/epgjanitor/epgjanitor/internal/janitor"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the list-view projection of a stored run.
type RunRecord struct {
	ID            string          `json:"id"`
	Mode          janitor.Mode    `json:"mode"`
	Apply         bool            `json:"apply"`
	CheckHours    int             `json:"checkHours"`
	Threshold     int             `json:"threshold"`
	TotalChannels int             `json:"totalChannels"`
	Aborted       bool            `json:"aborted"`
	Summary       janitor.Summary `json:"summary"`
	StartedAt     time.Time       `json:"startedAt"`
	FinishedAt    time.Time       `json:"finishedAt"`
}

// Service persists finished runs and serves them back for review.
type Service struct {
	db     *database.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *database.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// RecordRun stores a finished run and its outcomes in one transaction.
func (s *Service) RecordRun(ctx context.Context, result *janitor.RunResult) error {
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, apply, check_hours, threshold, total_channels, aborted, warnings, summary, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, string(result.Mode), result.Apply, result.CheckHours, result.Threshold,
		result.Summary.TotalChannels, result.Aborted, string(warnings), string(summary),
		result.StartedAt, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, channel_id, channel_name, channel_number, channel_group,
			prior_entry_id, prior_entry_name, prior_source_name,
			new_entry_id, new_entry_name, new_source_name,
			confidence, method, status, applied, apply_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		priorID, priorName, priorSource := refColumns(o.Prior)
		newID, newName, newSource := refColumns(o.New)

		_, err := stmt.ExecContext(ctx,
			result.ID, o.ChannelID, o.ChannelName, o.ChannelNumber, o.ChannelGroup,
			priorID, priorName, priorSource,
			newID, newName, newSource,
			o.Confidence, o.Method, string(o.Status), o.Applied, o.ApplyError, o.ScannedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome for channel %d: %w", o.ChannelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug().Str("runId", result.ID).Int("outcomes", len(result.Outcomes)).Msg("run stored")
	return nil
}

func refColumns(ref *janitor.GuideRef) (sql.NullInt64, sql.NullString, sql.NullString) {
	if ref == nil {
		return sql.NullInt64{}, sql.NullString{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: ref.EntryID, Valid: true},
		sql.NullString{String: ref.Name, Valid: ref.Name != ""},
		sql.NullString{String: ref.Source, Valid: ref.Source != ""}
}

// ListRuns returns stored runs, newest first. A limit of 0 means a default
// page of 50.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, mode, apply, check_hours, threshold, total_channels, aborted, summary, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var summary sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.Apply, &rec.CheckHours, &rec.Threshold,
			&rec.TotalChannels, &rec.Aborted, &summary, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if summary.Valid {
			if err := json.Unmarshal([]byte(summary.String), &rec.Summary); err != nil {
				return nil, fmt.Errorf("failed to decode summary for run %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns a full stored run, outcomes included.
func (s *Service) GetRun(ctx context.Context, id string) (*janitor.RunResult, error) {
	result := &janitor.RunResult{ID: id}
	var warnings, summary sql.NullString
	var mode string

	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT mode, apply, check_hours, threshold, aborted, warnings, summary, started_at, finished_at
		FROM runs WHERE id = ?`, id).Scan(
		&mode, &result.Apply, &result.CheckHours, &result.Threshold, &result.Aborted,
		&warnings, &summary, &result.StartedAt, &result.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	result.Mode = janitor.Mode(mode)
	if warnings.Valid {
		if err := json.Unmarshal([]byte(warnings.String), &result.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings: %w", err)
		}
	}
	if summary.Valid {
		if err := json.Unmarshal([]byte(summary.String), &result.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
	}

	outcomes, err := s.runOutcomes(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Outcomes = outcomes
	return result, nil
}

func (s *Service) runOutcomes(ctx context.Context, runID string) ([]janitor.Outcome, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT channel_id, channel_name, channel_number, channel_group,
			prior_entry_id, prior_entry_name, prior_source_name,
			new_entry_id, new_entry_name, new_source_name,
			confidence, method, status, applied, apply_error, created_at
		FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []janitor.Outcome
	for rows.Next() {
		var o janitor.Outcome
		var number sql.NullFloat64
		var group, method, applyErr sql.NullString
		var priorID, newID sql.NullInt64
		var priorName, priorSource, newName, newSource sql.NullString
		var status string

		if err := rows.Scan(&o.ChannelID, &o.ChannelName, &number, &group,
			&priorID, &priorName, &priorSource,
			&newID, &newName, &newSource,
			&o.Confidence, &method, &status, &o.Applied, &applyErr, &o.ScannedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}

		o.ChannelNumber = number.Float64
		o.ChannelGroup = group.String
		o.Method = method.String
		o.Status = janitor.Status(status)
		o.ApplyError = applyErr.String
		if priorID.Valid {
			o.Prior = &janitor.GuideRef{EntryID: priorID.Int64, Name: priorName.String, Source: priorSource.String}
		}
		if newID.Valid {
			o.New = &janitor.GuideRef{EntryID: newID.Int64, Name: newName.String, Source: newSource.String}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// DeleteOlderThan removes runs started before the cutoff. Outcomes go with
// them through the foreign key cascade.
func (s *Service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned old runs")
	}
	return deleted, nil
}
