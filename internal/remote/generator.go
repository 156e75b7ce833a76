// Package remote asks a hosted generative-language API for an answer and
// translates every failure into a domain.RemoteOutcome.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// PromptPrefix asks the model for a short answer. The word cap is advisory.
const PromptPrefix = "Answer in maximum 50 words: "

// ErrEmptyContent is returned by a Generator when the API answered with a
// success status but no usable text.
var ErrEmptyContent = errors.New("response contained no text")

// Generator sends one prompt to a model and returns the first candidate text.
// Implementations return *StatusError for non-2xx responses and
// ErrEmptyContent when no text is present.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StatusError is a non-2xx response from the remote API. Body is the raw
// response body; Message is the provider's parsed error message, if any.
type StatusError struct {
	Code    int
	Body    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote API returned status %d: %s", e.Code, e.Body)
}

// BuildPrompt prefixes the question with the length instruction.
func BuildPrompt(question string) string {
	return PromptPrefix + question
}
