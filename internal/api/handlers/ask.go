package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/askai/internal/api"
	"github.com/cloo-solutions/askai/internal/api/middleware"
	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/service"
	"go.uber.org/zap"
)

// AnswerService resolves validated questions.
type AnswerService interface {
	Resolve(ctx context.Context, q domain.Question) (domain.Answer, error)
}

type AskHandler struct {
	service AnswerService
	// strict reports remote failures as 502/503 instead of a 200 answer.
	strict bool
	logger *zap.Logger
}

func NewAskHandler(svc AnswerService, strict bool, logger *zap.Logger) *AskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskHandler{service: svc, strict: strict, logger: logger}
}

// Ask handles POST /ask with body {"question": "..."}.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	q, err := decodeQuestion(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.logger.Debug("rejected question", zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		api.HandleError(w, err)
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	ctx := service.WithRequestID(r.Context(), requestID)

	answer, err := h.service.Resolve(ctx, q)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.logger.Info("question answered",
		zap.String("request_id", requestID),
		zap.String("tier", string(answer.Tier)),
		zap.Bool("failed", answer.Failed()))

	if h.strict && answer.Failed() {
		api.HandleError(w, answer.Outcome.Err())
		return
	}

	api.JSON(w, http.StatusOK, api.AnswerResponse{Answer: answer.Text})
}

// decodeQuestion validates the payload shape before any tier runs. An empty
// object or anything after the object counts as no payload.
func decodeQuestion(r *http.Request) (domain.Question, error) {
	dec := json.NewDecoder(r.Body)
	var payload map[string]json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		return domain.Question{}, payloadError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return domain.Question{}, payloadError(err)
		}
		return domain.Question{}, domain.ErrNoPayload
	}
	if len(payload) == 0 {
		return domain.Question{}, domain.ErrNoPayload
	}

	raw, ok := payload["question"]
	if !ok {
		return domain.Question{}, domain.ErrEmptyQuestion
	}

	var text string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return domain.Question{}, domain.ErrQuestionNotString
	}
	if err := json.Unmarshal(raw, &text); err != nil {
		return domain.Question{}, domain.ErrQuestionNotString
	}

	return domain.NewQuestion(text)
}

func payloadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return domain.ErrNoPayload
}
