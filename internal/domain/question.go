package domain

import "strings"

// Question is a validated inbound question. The zero value is invalid.
type Question struct {
	text    string
	lowered string
}

// NewQuestion trims surrounding whitespace and rejects empty input.
func NewQuestion(raw string) (Question, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Question{}, ErrEmptyQuestion
	}
	return Question{text: text, lowered: strings.ToLower(text)}, nil
}

// Text returns the trimmed question as submitted.
func (q Question) Text() string {
	return q.text
}

// Lowered returns the lowercased form used for matching.
func (q Question) Lowered() string {
	return q.lowered
}

// IsZero reports whether q was not built with NewQuestion.
func (q Question) IsZero() bool {
	return q.text == ""
}

func (q Question) String() string {
	return q.text
}
