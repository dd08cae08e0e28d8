// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for the solve history. Recording
// is best-effort: a failed insert is logged and never fails an upload.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"shapecount/internal/models"
)

// SolveStore handles solve history operations.
type SolveStore struct {
	db    *sql.DB
	types *pgtype.Map
}

// NewSolveStore creates a new SolveStore.
func NewSolveStore(db *sql.DB) *SolveStore {
	return &SolveStore{db: db, types: pgtype.NewMap()}
}

// Record inserts a recognised solve. Errors are logged, not returned.
func (s *SolveStore) Record(ctx context.Context, solve *models.Solve) {
	if solve.ID == uuid.Nil {
		solve.ID = uuid.New()
	}
	if solve.CreatedAt.IsZero() {
		solve.CreatedAt = time.Now().UTC()
	}

	counts := make([]int32, len(solve.ArrInfo))
	for i, c := range solve.ArrInfo {
		counts[i] = int32(c)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO solves (id, image_type, answer, arr_info, result_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, solve.ID, string(solve.ImageType), solve.Answer, counts, solve.ResultKey, solve.CreatedAt)
	if err != nil {
		slog.Warn("failed to record solve",
			"id", solve.ID,
			"image_type", solve.ImageType,
			"error", err,
		)
		return
	}
	slog.Debug("solve recorded", "id", solve.ID, "image_type", solve.ImageType, "answer", solve.Answer)
}

// Recent returns the most recent solves, newest first.
func (s *SolveStore) Recent(ctx context.Context, limit int) ([]models.Solve, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_type, answer, arr_info, result_key, created_at
		FROM solves
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent solves: %w", err)
	}
	defer rows.Close()

	var solves []models.Solve
	for rows.Next() {
		var (
			sv     models.Solve
			kind   string
			counts []int32
		)
		if err := rows.Scan(&sv.ID, &kind, &sv.Answer, s.types.SQLScanner(&counts), &sv.ResultKey, &sv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan solve: %w", err)
		}
		sv.ImageType = models.ImageType(kind)
		sv.ArrInfo = make([]int, len(counts))
		for i, c := range counts {
			sv.ArrInfo[i] = int(c)
		}
		solves = append(solves, sv)
	}
	return solves, rows.Err()
}

// CountByType returns how many solves were recorded per shape.
func (s *SolveStore) CountByType(ctx context.Context) (map[models.ImageType]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image_type, count(*) FROM solves GROUP BY image_type
	`)
	if err != nil {
		return nil, fmt.Errorf("count solves: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ImageType]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.ImageType(kind)] = n
	}
	return counts, rows.Err()
}
