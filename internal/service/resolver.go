package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/telemetry"
	"go.uber.org/zap"
)

// RemoteAsker answers questions that no local tier matched.
type RemoteAsker interface {
	Ask(ctx context.Context, question string) domain.RemoteOutcome
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id for the question log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Resolver answers a question from the knowledge base, then the rule list,
// then the remote provider. The first tier that matches wins.
type Resolver struct {
	kb       *domain.KnowledgeBase
	rules    []domain.Rule
	remote   RemoteAsker
	recorder QuestionRecorder
	logger   *zap.Logger
}

// NewResolver creates a Resolver. kb and rules are not modified or retained
// beyond read access; a nil recorder disables the question log.
func NewResolver(kb *domain.KnowledgeBase, rules []domain.Rule, remote RemoteAsker, recorder QuestionRecorder, logger *zap.Logger) *Resolver {
	if kb == nil {
		kb = domain.EmptyKnowledgeBase()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		kb:       kb,
		rules:    append([]domain.Rule(nil), rules...),
		remote:   remote,
		recorder: recorder,
		logger:   logger,
	}
}

// KnowledgeBase returns the knowledge base the resolver reads from.
func (r *Resolver) KnowledgeBase() *domain.KnowledgeBase {
	return r.kb
}

// Resolve returns the answer to q. It fails only for a zero Question; remote
// failures are reported through Answer.Outcome.
func (r *Resolver) Resolve(ctx context.Context, q domain.Question) (domain.Answer, error) {
	if q.IsZero() {
		return domain.Answer{}, domain.ErrEmptyQuestion
	}

	start := time.Now()
	answer, ok := r.matchLocal(ctx, q)
	if !ok {
		answer = r.askRemote(ctx, q)
	}
	r.record(ctx, q, answer, time.Since(start))
	return answer, nil
}

// MatchLocal runs the knowledge base and rule tiers only.
func (r *Resolver) MatchLocal(q domain.Question) (domain.Answer, bool) {
	return r.matchLocal(context.Background(), q)
}

func (r *Resolver) matchLocal(ctx context.Context, q domain.Question) (domain.Answer, bool) {
	if answer, ok := r.matchFAQ(ctx, q); ok {
		return answer, true
	}
	return r.matchRule(ctx, q)
}

func (r *Resolver) matchFAQ(ctx context.Context, q domain.Question) (domain.Answer, bool) {
	_, span := telemetry.StartSpan(ctx, "resolve.faq", telemetry.SpanAttributes{
		RequestID: RequestIDFromContext(ctx),
		Tier:      string(domain.TierFAQ),
	})
	defer span.End()

	entry, ok := r.kb.Lookup(q.Lowered())
	if !ok {
		r.logger.Debug("no knowledge base match", zap.Int("entries", r.kb.Len()))
		return domain.Answer{}, false
	}
	r.logger.Debug("knowledge base match", zap.String("phrase", entry.Phrase))
	return domain.Answer{Text: entry.Answer, Tier: domain.TierFAQ, MatchedKey: entry.Phrase}, true
}

func (r *Resolver) matchRule(ctx context.Context, q domain.Question) (domain.Answer, bool) {
	_, span := telemetry.StartSpan(ctx, "resolve.rule", telemetry.SpanAttributes{
		RequestID: RequestIDFromContext(ctx),
		Tier:      string(domain.TierRule),
	})
	defer span.End()

	rule, ok := domain.MatchRule(r.rules, q.Lowered())
	if !ok {
		r.logger.Debug("no rule match", zap.Int("rules", len(r.rules)))
		return domain.Answer{}, false
	}
	r.logger.Debug("rule match", zap.String("trigger", rule.Trigger))
	return domain.Answer{Text: rule.Answer, Tier: domain.TierRule, MatchedKey: rule.Trigger}, true
}

func (r *Resolver) askRemote(ctx context.Context, q domain.Question) domain.Answer {
	spanCtx, span := telemetry.StartSpan(ctx, "resolve.remote", telemetry.SpanAttributes{
		RequestID: RequestIDFromContext(ctx),
		Tier:      string(domain.TierRemote),
	})
	defer span.End()

	r.logger.Debug("forwarding question to remote provider")
	outcome := r.remote.Ask(spanCtx, q.Text())
	span.SetData("outcome", string(outcome.Kind))
	if !outcome.OK() {
		span.SetError(outcome.Err())
		if outcome.Kind != domain.OutcomeConfigurationMissing {
			telemetry.CaptureError(ctx, outcome.Err())
		}
	}
	return domain.Answer{Text: outcome.Message(), Tier: domain.TierRemote, Outcome: &outcome}
}

func (r *Resolver) record(ctx context.Context, q domain.Question, answer domain.Answer, elapsed time.Duration) {
	entry := QuestionLogEntry{
		RequestID:  RequestIDFromContext(ctx),
		Question:   q.Text(),
		Tier:       answer.Tier,
		MatchedKey: answer.MatchedKey,
		DurationMs: int(elapsed.Milliseconds()),
	}
	if answer.Outcome != nil {
		entry.Outcome = answer.Outcome.Kind
	}
	r.recorder.Record(entry)
}
