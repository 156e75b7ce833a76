//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/askai/internal/api/handlers"
	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/jobs"
	"github.com/cloo-solutions/askai/internal/knowledge"
	"github.com/cloo-solutions/askai/internal/remote"
	"github.com/cloo-solutions/askai/internal/repository"
	"github.com/cloo-solutions/askai/internal/server"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/cloo-solutions/askai/internal/storage"
	"github.com/cloo-solutions/askai/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	testBucket = "askai-kb"
	testKBKey  = "faq.json"
)

const testKB = `{
  "what is a carbon credit": "A carbon credit represents one tonne of CO2e removed or avoided.",
  "what is mrv": "MRV stands for measurement, reporting and verification."
}`

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T           *testing.T
	Ctx         context.Context
	Pool        *pgxpool.Pool
	S3Client    *storage.S3Client
	Repo        *repository.QuestionLogRepository
	QuestionLog *service.QuestionLog
	Gemini      *FakeGemini
	ServerURL   string
	HTTPClient  *http.Client

	stopWorker context.CancelFunc
	worker     *jobs.Worker
}

// FakeGemini answers generateContent calls with a fixed text and counts them.
type FakeGemini struct {
	Server *httptest.Server
	Answer string
	Status int
	calls  atomic.Int32
}

// Calls returns the number of generateContent requests received.
func (f *FakeGemini) Calls() int {
	return int(f.calls.Load())
}

func newFakeGemini(t *testing.T) *FakeGemini {
	f := &FakeGemini{Answer: "Verra is a carbon crediting standard.", Status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if f.Status != http.StatusOK {
			w.WriteHeader(f.Status)
			_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, f.Status)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": f.Answer}}}},
			},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// SetupE2EEnv starts Postgres and RustFS, publishes a knowledge base to the
// bucket and serves the full router against a fake Gemini endpoint.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	s3C := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { _ = s3C.Terminate(context.Background()) })

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")
	t.Cleanup(pool.Close)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          testBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	if err := s3Client.PutObject(ctx, testKBKey, []byte(testKB), "application/json"); err != nil {
		t.Fatalf("failed to upload knowledge base: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Pool:       pool,
		S3Client:   s3Client,
		Repo:       repository.NewQuestionLogRepository(pool),
		Gemini:     newFakeGemini(t),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.startServer()
	return env
}

func (e *E2ETestEnv) startServer() {
	logger := zap.NewNop()

	src, err := knowledge.SourceFor(fmt.Sprintf("s3://%s/%s", testBucket, testKBKey), e.S3Client)
	if err != nil {
		e.T.Fatalf("failed to resolve knowledge source: %v", err)
	}
	kb := knowledge.Load(e.Ctx, src, logger)

	asker, err := remote.New(e.Ctx, remote.Config{
		Provider: remote.ProviderGemini,
		APIKey:   "e2e-key",
		BaseURL:  e.Gemini.Server.URL,
		Timeout:  5 * time.Second,
	}, logger)
	if err != nil {
		e.T.Fatalf("failed to create remote client: %v", err)
	}

	e.QuestionLog = service.NewQuestionLog(e.Repo, service.DefaultQuestionLogBuffer, logger)
	workerCtx, stopWorker := context.WithCancel(e.Ctx)
	e.stopWorker = stopWorker
	e.worker = jobs.NewWorker("question-log", e.QuestionLog, 50*time.Millisecond, logger)
	go e.worker.Start(workerCtx)

	resolver := service.NewResolver(kb, domain.DefaultRules(), asker, e.QuestionLog, logger)
	router := server.NewRouter(server.RouterConfig{
		AskHandler:    handlers.NewAskHandler(resolver, false, logger),
		HealthHandler: handlers.NewHealthHandler(kb.Len(), true),
		Logger:        logger,
	})

	srv := httptest.NewServer(router)
	e.ServerURL = srv.URL
	e.T.Cleanup(func() {
		srv.Close()
		e.StopWorker()
	})
}

// StopWorker stops the question log worker and waits for its final flush.
func (e *E2ETestEnv) StopWorker() {
	if e.stopWorker == nil {
		return
	}
	e.stopWorker()
	e.worker.Stop()
	e.stopWorker = nil
}

// APIResponse is a decoded response from the server.
type APIResponse struct {
	StatusCode int
	Body       map[string]any
	Raw        []byte
}

// Get performs a GET request against the server.
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Ask posts body as JSON to /ask.
func (e *E2ETestEnv) Ask(body any) (*APIResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return e.doRequest(http.MethodPost, "/ask", data)
}

// AskRaw posts a raw body to /ask.
func (e *E2ETestEnv) AskRaw(body string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, "/ask", []byte(body))
}

func (e *E2ETestEnv) doRequest(method, path string, body []byte) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := &APIResponse{StatusCode: resp.StatusCode, Raw: raw}
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(raw, &result.Body); err != nil {
			return nil, fmt.Errorf("failed to decode response %q: %w", raw, err)
		}
	}
	return result, nil
}
