package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQuestionLogBuffer is the number of entries held before Record drops.
const DefaultQuestionLogBuffer = 256

// maxQuestionLogBatch bounds a single repository write.
const maxQuestionLogBatch = 100

// QuestionLogEntry captures one resolved question.
type QuestionLogEntry struct {
	ID         string
	RequestID  string
	Question   string
	Tier       domain.Tier
	Outcome    domain.OutcomeKind
	MatchedKey string
	DurationMs int
	CreatedAt  time.Time
}

// QuestionLogRepository persists question log entries.
type QuestionLogRepository interface {
	InsertQuestionLogs(ctx context.Context, entries []QuestionLogEntry) error
}

// QuestionRecorder accepts log entries without blocking the caller.
type QuestionRecorder interface {
	Record(entry QuestionLogEntry)
}

// NopRecorder discards every entry.
type NopRecorder struct{}

func (NopRecorder) Record(QuestionLogEntry) {}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// QuestionLog buffers entries in memory and writes them in batches when
// ProcessJobs runs. It satisfies jobs.JobProcessor.
type QuestionLog struct {
	repo    QuestionLogRepository
	entries chan QuestionLogEntry
	uuidGen UUIDGenerator
	logger  *zap.Logger
}

// NewQuestionLog creates a QuestionLog with the given buffer size.
func NewQuestionLog(repo QuestionLogRepository, buffer int, logger *zap.Logger) *QuestionLog {
	if buffer <= 0 {
		buffer = DefaultQuestionLogBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionLog{
		repo:    repo,
		entries: make(chan QuestionLogEntry, buffer),
		uuidGen: &DefaultUUIDGenerator{},
		logger:  logger,
	}
}

// Record enqueues entry. A full buffer drops it.
func (l *QuestionLog) Record(entry QuestionLogEntry) {
	if entry.ID == "" {
		entry.ID = l.uuidGen.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case l.entries <- entry:
	default:
		l.logger.Warn("question log buffer full, dropping entry",
			zap.String("request_id", entry.RequestID),
			zap.String("tier", string(entry.Tier)))
	}
}

// Pending returns the number of buffered entries.
func (l *QuestionLog) Pending() int {
	return len(l.entries)
}

// ProcessJobs writes up to one batch of buffered entries.
func (l *QuestionLog) ProcessJobs(ctx context.Context) error {
	batch := l.drain(maxQuestionLogBatch)
	if len(batch) == 0 {
		return nil
	}
	if err := l.repo.InsertQuestionLogs(ctx, batch); err != nil {
		return fmt.Errorf("failed to write %d question log entries: %w", len(batch), err)
	}
	l.logger.Debug("question log flushed", zap.Int("entries", len(batch)))
	return nil
}

// Flush writes everything currently buffered.
func (l *QuestionLog) Flush(ctx context.Context) error {
	for l.Pending() > 0 {
		if err := l.ProcessJobs(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *QuestionLog) drain(limit int) []QuestionLogEntry {
	var batch []QuestionLogEntry
	for len(batch) < limit {
		select {
		case entry := <-l.entries:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
	return batch
}
