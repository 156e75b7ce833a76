package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/pagination"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionLogRepository stores resolved questions for later review.
type QuestionLogRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionLogRepository(pool *pgxpool.Pool) *QuestionLogRepository {
	return &QuestionLogRepository{pool: pool}
}

// InsertQuestionLogs writes entries in a single batch round trip.
func (r *QuestionLogRepository) InsertQuestionLogs(ctx context.Context, entries []service.QuestionLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO question_logs (id, request_id, question, tier, outcome, matched_key, duration_ms, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO NOTHING`,
			e.ID,
			e.RequestID,
			e.Question,
			string(e.Tier),
			nullableString(string(e.Outcome)),
			nullableString(e.MatchedKey),
			e.DurationMs,
			e.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert question log: %w", err)
		}
	}
	return nil
}

// ListWithCursor returns entries newest first. A nil cursor starts from the
// newest entry.
func (r *QuestionLogRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[service.QuestionLogEntry], error) {
	if limit <= 0 {
		limit = 20
	}

	const columns = `SELECT id, request_id, question, tier, COALESCE(outcome, ''), COALESCE(matched_key, ''), duration_ms, created_at
		 FROM question_logs`

	var (
		rows pgx.Rows
		err  error
	)
	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			columns+`
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			columns+`
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list question logs: %w", err)
	}
	defer rows.Close()

	var entries []service.QuestionLogEntry
	for rows.Next() {
		var (
			e       service.QuestionLogEntry
			tier    string
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Question, &tier, &outcome, &e.MatchedKey, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Tier = domain.Tier(tier)
		e.Outcome = domain.OutcomeKind(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &pagination.PageResult[service.QuestionLogEntry]{
		Items:   entries,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
