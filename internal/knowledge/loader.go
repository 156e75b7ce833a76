package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/askai/internal/domain"
	"go.uber.org/zap"
)

// Read opens and parses a source without any degradation.
func Read(ctx context.Context, src Source) ([]domain.KnowledgeEntry, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	entries, err := ParseEntries(rc, src.Format())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src.Name(), err)
	}
	return entries, nil
}

// Load reads the knowledge base. A missing or unreadable store yields an empty
// knowledge base so the service can start without FAQ entries.
func Load(ctx context.Context, src Source, logger *zap.Logger) *domain.KnowledgeBase {
	entries, err := Read(ctx, src)
	switch {
	case errors.Is(err, ErrSourceNotFound):
		logger.Warn("knowledge base not found, starting with empty database",
			zap.String("source", src.Name()))
		return domain.EmptyKnowledgeBase()
	case err != nil:
		logger.Error("failed to load knowledge base, starting with empty database",
			zap.String("source", src.Name()), zap.Error(err))
		return domain.EmptyKnowledgeBase()
	}

	kb := domain.NewKnowledgeBase(withoutBlankKeys(entries, "phrase", logger))
	logger.Info("knowledge base loaded",
		zap.String("source", src.Name()), zap.Int("entries", kb.Len()))
	for _, phrase := range kb.Phrases() {
		logger.Debug("knowledge base phrase", zap.String("phrase", phrase))
	}
	return kb
}

// LoadRules reads an ordered trigger -> answer list. A missing or broken rules
// store falls back to domain.DefaultRules.
func LoadRules(ctx context.Context, src Source, logger *zap.Logger) []domain.Rule {
	entries, err := Read(ctx, src)
	switch {
	case errors.Is(err, ErrSourceNotFound):
		logger.Warn("rules file not found, using built-in rules", zap.String("source", src.Name()))
		return domain.DefaultRules()
	case err != nil:
		logger.Error("failed to load rules, using built-in rules",
			zap.String("source", src.Name()), zap.Error(err))
		return domain.DefaultRules()
	}

	// Rules share the knowledge base's duplicate handling.
	deduped := domain.NewKnowledgeBase(withoutBlankKeys(entries, "trigger", logger)).Entries()
	rules := make([]domain.Rule, len(deduped))
	for i, e := range deduped {
		rules[i] = domain.Rule{Trigger: e.Phrase, Answer: e.Answer}
	}
	logger.Info("rules loaded", zap.String("source", src.Name()), zap.Int("rules", len(rules)))
	return rules
}

// withoutBlankKeys drops entries whose key is empty, since an empty key is a
// substring of every question.
func withoutBlankKeys(entries []domain.KnowledgeEntry, kind string, logger *zap.Logger) []domain.KnowledgeEntry {
	out := make([]domain.KnowledgeEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Phrase) == "" {
			logger.Warn("skipping entry with empty "+kind, zap.String("answer", e.Answer))
			continue
		}
		out = append(out, e)
	}
	return out
}
