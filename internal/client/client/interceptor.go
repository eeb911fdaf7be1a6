package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/dmitrijs2005/authdesk/internal/logging"
	"github.com/google/uuid"
)

type credentialKey struct{}

// WithCredential makes the calls made with ctx carry token instead of the
// client's active credential. The session uses it to validate a freshly
// issued token before installing it.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

func credentialFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	return token, ok
}

// bearerTransport is the request interceptor of the API client. It attaches
// the active credential and a request id to every outbound request.
type bearerTransport struct {
	base   http.RoundTripper
	logger logging.Logger

	mu    sync.RWMutex
	token string
}

func newBearerTransport(base http.RoundTripper, logger logging.Logger) *bearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &bearerTransport{base: base, logger: logger}
}

func (t *bearerTransport) activate(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *bearerTransport) deactivate() {
	t.activate("")
}

func (t *bearerTransport) active() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// a RoundTripper must not mutate the caller's request
	req = req.Clone(ctx)

	token, ok := credentialFromContext(ctx)
	if !ok {
		token = t.active()
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	} else {
		req.Header.Del(common.AuthorizationHeaderName)
	}

	requestID := req.Header.Get(common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(common.RequestIDHeaderName, requestID)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug(ctx, "api request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", requestID, "error", err)
		return nil, err
	}

	t.logger.Debug(ctx, "api request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))
	return resp, nil
}
