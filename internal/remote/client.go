package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cloo-solutions/askai/internal/domain"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// Supported provider names for Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and configures the remote backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Client performs exactly one remote call per Ask and never returns an error:
// every failure becomes a typed domain.RemoteOutcome.
type Client struct {
	gen      Generator
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a Client for the configured provider. An empty API key yields a
// client that answers every call with ConfigurationMissing.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	httpClient := &http.Client{}

	var (
		gen      Generator
		provider string
	)
	switch cfg.Provider {
	case "", ProviderGemini:
		provider = GeminiProvider
		if cfg.APIKey != "" {
			g, err := NewGeminiGenerator(ctx, GeminiConfig{
				APIKey:     cfg.APIKey,
				Model:      cfg.Model,
				BaseURL:    cfg.BaseURL,
				HTTPClient: httpClient,
			})
			if err != nil {
				return nil, err
			}
			gen = g
		}
	case ProviderOpenAI:
		provider = OpenAIProvider
		if cfg.APIKey != "" {
			gen = NewOpenAIGenerator(OpenAIConfig{
				APIKey:     cfg.APIKey,
				Model:      cfg.Model,
				BaseURL:    cfg.BaseURL,
				HTTPClient: httpClient,
			})
		}
	default:
		return nil, fmt.Errorf("unknown remote provider %q", cfg.Provider)
	}

	client := NewClient(gen, provider, cfg.Timeout, logger)
	logger.Info("remote answer provider",
		zap.String("provider", provider),
		zap.Bool("configured", client.Configured()))
	return client, nil
}

// NewClient wraps a Generator. A nil gen means no credential is configured.
func NewClient(gen Generator, provider string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		gen:      gen,
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c.gen != nil
}

// Provider returns the display name of the backend.
func (c *Client) Provider() string {
	return c.provider
}

// Ask sends question, unmodified apart from the prompt prefix, to the backend.
// The call is not cancelled when ctx is; it is bounded by the client timeout.
func (c *Client) Ask(ctx context.Context, question string) domain.RemoteOutcome {
	if c.gen == nil {
		c.logger.Warn("remote call skipped", zap.String("provider", c.provider), zap.Bool("configured", false))
		return domain.ConfigurationMissingOutcome(c.provider)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.gen.Generate(callCtx, BuildPrompt(question))
	outcome := c.classify(callCtx, text, err)

	fields := []zap.Field{
		zap.String("provider", c.provider),
		zap.String("outcome", string(outcome.Kind)),
		zap.Duration("duration", time.Since(start)),
	}
	if outcome.OK() {
		c.logger.Debug("remote call finished", fields...)
	} else {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			fields = append(fields, zap.Int("status", statusErr.Code), zap.String("api_message", statusErr.Message))
		}
		c.logger.Warn("remote call failed", append(fields, zap.Error(err))...)
	}
	return outcome
}

func (c *Client) classify(ctx context.Context, text string, err error) domain.RemoteOutcome {
	if err == nil {
		return domain.SuccessOutcome(c.provider, text)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return domain.HTTPErrorOutcome(c.provider, statusErr.Code, statusErr.Body)
	}
	if errors.Is(err, ErrEmptyContent) {
		return domain.EmptyContentOutcome(c.provider)
	}
	if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.TimeoutOutcome(c.provider)
	}
	if isMalformed(err) {
		return domain.MalformedResponseOutcome(c.provider, err.Error())
	}
	return domain.NetworkErrorOutcome(c.provider, err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
