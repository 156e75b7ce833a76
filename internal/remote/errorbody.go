package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
)

// maxErrorBody bounds how much of a non-2xx body is kept.
const maxErrorBody = 64 << 10

type errorBodyKey struct{}

// errorBody receives the raw body of the last non-2xx response made with the
// context it is attached to.
type errorBody struct {
	mu   sync.Mutex
	data []byte
}

func (b *errorBody) set(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
}

func (b *errorBody) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.data))
}

func withErrorBody(ctx context.Context) (context.Context, *errorBody) {
	slot := &errorBody{}
	return context.WithValue(ctx, errorBodyKey{}, slot), slot
}

// errorBodyTransport copies non-2xx response bodies into the request's
// errorBody slot and hands the SDK an identical body to parse.
type errorBodyTransport struct {
	base http.RoundTripper
}

func (t *errorBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusMultipleChoices {
		return resp, err
	}
	slot, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok {
		return resp, nil
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	rest := resp.Body
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), rest), rest}
	if readErr == nil {
		slot.set(data)
	}
	return resp, nil
}

// captureErrorBodies returns a copy of hc whose transport records error
// response bodies. A nil hc starts from the default client.
func captureErrorBodies(hc *http.Client) *http.Client {
	if hc == nil {
		hc = &http.Client{}
	}
	wrapped := *hc
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped.Transport = &errorBodyTransport{base: base}
	return &wrapped
}

// statusError builds a StatusError from the captured raw body, falling back
// to the SDK's parsed message when nothing was captured.
func statusError(code int, slot *errorBody, message string) *StatusError {
	body := slot.String()
	if body == "" {
		body = message
	}
	return &StatusError{Code: code, Body: body, Message: message}
}
