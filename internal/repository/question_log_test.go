//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/pagination"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/cloo-solutions/askai/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionLogRepository_InsertAndRecent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQuestionLogRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	entries := []service.QuestionLogEntry{
		{
			ID:         uuid.NewString(),
			RequestID:  "req-1",
			Question:   "What is a carbon credit?",
			Tier:       domain.TierFAQ,
			MatchedKey: "carbon credit",
			DurationMs: 1,
			CreatedAt:  now,
		},
		{
			ID:         uuid.NewString(),
			RequestID:  "req-2",
			Question:   "hello",
			Tier:       domain.TierRemote,
			Outcome:    domain.OutcomeTimeout,
			DurationMs: 30000,
			CreatedAt:  now.Add(time.Second),
		},
	}

	require.NoError(t, repo.InsertQuestionLogs(ctx, entries))
	// Re-inserting the same ids is ignored.
	require.NoError(t, repo.InsertQuestionLogs(ctx, entries))

	page, err := repo.ListWithCursor(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
	recent := page.Items

	assert.Equal(t, entries[1].ID, recent[0].ID)
	assert.Equal(t, domain.OutcomeTimeout, recent[0].Outcome)
	assert.Empty(t, recent[0].MatchedKey)

	assert.Equal(t, entries[0].ID, recent[1].ID)
	assert.Equal(t, domain.TierFAQ, recent[1].Tier)
	assert.Equal(t, "carbon credit", recent[1].MatchedKey)
	assert.Empty(t, recent[1].Outcome)
	assert.True(t, entries[0].CreatedAt.Equal(recent[1].CreatedAt))
}

func TestQuestionLogRepository_ListWithCursorPages(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()
	require.NoError(t, testutil.TruncateAll(ctx, pool))

	repo := NewQuestionLogRepository(pool)
	base := time.Now().UTC().Truncate(time.Microsecond)

	var entries []service.QuestionLogEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, service.QuestionLogEntry{
			ID:        uuid.NewString(),
			RequestID: "req",
			Question:  "question",
			Tier:      domain.TierRule,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, repo.InsertQuestionLogs(ctx, entries))

	first, err := repo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, entries[4].ID, first.Items[0].ID)
	assert.Equal(t, entries[3].ID, first.Items[1].ID)

	cursor, err := pagination.DecodeCursor(first.Cursor)
	require.NoError(t, err)

	second, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, entries[2].ID, second.Items[0].ID)

	cursor, err = pagination.DecodeCursor(second.Cursor)
	require.NoError(t, err)

	last, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.False(t, last.HasMore)
	assert.Equal(t, entries[0].ID, last.Items[0].ID)
}

func TestQuestionLogRepository_EmptyBatch(t *testing.T) {
	repo := NewQuestionLogRepository(nil)
	assert.NoError(t, repo.InsertQuestionLogs(context.Background(), nil))
}

func TestQuestionLogRepository_FlushFromQuestionLog(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()
	require.NoError(t, testutil.TruncateAll(ctx, pool))

	repo := NewQuestionLogRepository(pool)
	questionLog := service.NewQuestionLog(repo, 8, nil)
	questionLog.Record(service.QuestionLogEntry{Question: "carbon price today", Tier: domain.TierRule, MatchedKey: "carbon price"})

	require.NoError(t, questionLog.Flush(ctx))

	page, err := repo.ListWithCursor(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotEmpty(t, page.Items[0].ID)
	assert.Equal(t, "carbon price today", page.Items[0].Question)
}
