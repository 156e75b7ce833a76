package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = openai.GPT4oMini
	// OpenAIProvider is the display name used in user-facing messages.
	OpenAIProvider = "OpenAI"
)

// OpenAIConfig configures OpenAIGenerator.
type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, including the /v1 suffix.
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIGenerator calls the chat completions endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = captureErrorBodies(cfg.HTTPClient)

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate sends prompt as a single user message and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, slot := withErrorBody(ctx)
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", translateOpenAIError(err, slot)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyContent
	}
	return resp.Choices[0].Message.Content, nil
}

func translateOpenAIError(err error, slot *errorBody) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(apiErr.HTTPStatusCode, slot, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, slot, string(reqErr.Body))
	}
	// Transport failures arrive as *url.Error. A bare io.EOF comes from
	// json.Decoder reading an empty body.
	var urlErr *url.Error
	if !errors.As(err, &urlErr) && errors.Is(err, io.EOF) {
		return fmt.Errorf("empty response body: %w", io.ErrUnexpectedEOF)
	}
	return err
}
