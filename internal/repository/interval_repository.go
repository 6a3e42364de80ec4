package repository

import (
	"context"
	"database/sql"
	"fmt"

	"zenstream/internal/model"
)

type IntervalRepository struct {
	db *sql.DB
}

func NewIntervalRepository(db *sql.DB) *IntervalRepository {
	return &IntervalRepository{db: db}
}

func (r *IntervalRepository) Insert(ctx context.Context, interval *model.Interval) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO intervals (
			id, mode, session_index, planned_duration_seconds, actual_duration_seconds,
			status, started_at, ended_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		interval.ID,
		string(interval.Mode),
		interval.SessionIndex,
		interval.PlannedDurationSeconds,
		interval.ActualDurationSeconds,
		interval.Status,
		formatTime(interval.StartedAt),
		formatTime(interval.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("insert interval: %w", err)
	}
	return nil
}

func (r *IntervalRepository) List(ctx context.Context, limit int) ([]model.Interval, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, mode, session_index, planned_duration_seconds, actual_duration_seconds,
		        status, started_at, ended_at
		 FROM intervals
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	defer rows.Close()

	intervals := make([]model.Interval, 0, limit)
	for rows.Next() {
		interval, scanErr := scanInterval(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		intervals = append(intervals, *interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}

	return intervals, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInterval(s scanner) (*model.Interval, error) {
	interval := model.Interval{}
	var mode string
	var startedAt string
	var endedAt string
	err := s.Scan(
		&interval.ID,
		&mode,
		&interval.SessionIndex,
		&interval.PlannedDurationSeconds,
		&interval.ActualDurationSeconds,
		&interval.Status,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan interval: %w", err)
	}
	interval.Mode = model.Mode(mode)

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse interval started_at: %w", err)
	}
	interval.StartedAt = parsedStartedAt

	parsedEndedAt, err := parseTime(endedAt)
	if err != nil {
		return nil, fmt.Errorf("parse interval ended_at: %w", err)
	}
	interval.EndedAt = parsedEndedAt

	return &interval, nil
}
