package domain

import "strings"

// KnowledgeEntry is a single phrase -> canned answer pair.
type KnowledgeEntry struct {
	Phrase string
	Answer string
}

// KnowledgeBase is an ordered, read-only set of entries with unique phrases.
// It is built once at startup and shared between requests without locking.
type KnowledgeBase struct {
	entries []KnowledgeEntry
	lowered []string
	index   map[string]int
}

// NewKnowledgeBase builds a KnowledgeBase from entries in document order.
// A repeated phrase keeps the position of its first occurrence and the answer
// of its last one.
func NewKnowledgeBase(entries []KnowledgeEntry) *KnowledgeBase {
	kb := &KnowledgeBase{
		entries: make([]KnowledgeEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := kb.index[e.Phrase]; ok {
			kb.entries[i].Answer = e.Answer
			continue
		}
		kb.index[e.Phrase] = len(kb.entries)
		kb.entries = append(kb.entries, e)
		kb.lowered = append(kb.lowered, strings.ToLower(e.Phrase))
	}
	return kb
}

// EmptyKnowledgeBase returns a knowledge base with no entries.
func EmptyKnowledgeBase() *KnowledgeBase {
	return NewKnowledgeBase(nil)
}

// Len returns the number of entries.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.entries)
}

// Entries returns a copy of the entries in insertion order.
func (kb *KnowledgeBase) Entries() []KnowledgeEntry {
	if kb == nil {
		return nil
	}
	out := make([]KnowledgeEntry, len(kb.entries))
	copy(out, kb.entries)
	return out
}

// Phrases returns the phrases in insertion order.
func (kb *KnowledgeBase) Phrases() []string {
	if kb == nil {
		return nil
	}
	out := make([]string, len(kb.entries))
	for i, e := range kb.entries {
		out[i] = e.Phrase
	}
	return out
}

// Lookup returns the first entry, in insertion order, whose lowercased phrase
// is a substring of the already-lowercased question.
func (kb *KnowledgeBase) Lookup(loweredQuestion string) (KnowledgeEntry, bool) {
	if kb == nil {
		return KnowledgeEntry{}, false
	}
	for i, phrase := range kb.lowered {
		if strings.Contains(loweredQuestion, phrase) {
			return kb.entries[i], true
		}
	}
	return KnowledgeEntry{}, false
}
