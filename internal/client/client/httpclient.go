package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/dmitrijs2005/authdesk/internal/logging"
)

const maxErrorBody = 1 << 20

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks JSON to the Authentication API. One instance is shared by
// the whole application; its interceptor holds the active credential.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	auth    *bearerTransport
	logger  logging.Logger
}

type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    logging.Logger
}

// WithTimeout bounds every request, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces http.DefaultTransport under the interceptor.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewHTTPClient builds a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	auth := newBearerTransport(o.transport, o.logger)

	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Transport: auth, Timeout: o.timeout},
		auth:    auth,
		logger:  o.logger,
	}, nil
}

// SetCredential activates the interceptor with token.
func (c *HTTPClient) SetCredential(token string) {
	c.auth.activate(token)
}

// ClearCredential deactivates the interceptor; later calls go out anonymous.
func (c *HTTPClient) ClearCredential() {
	c.auth.deactivate()
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Token, error) {
	var token models.Token
	if err := c.do(ctx, http.MethodPost, "/login", models.Credentials{Email: email, Password: password}, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token in login response", common.ErrInvalidToken)
	}
	return &token, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/register", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/profile", upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := models.PasswordChange{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/change-password", body, nil)
}

func (c *HTTPClient) Protected(ctx context.Context) (string, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodGet, "/protected", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *HTTPClient) SetupAdmin(ctx context.Context, reg models.Registration) (string, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/setup-admin", reg, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/admin/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, upd models.AdminUserUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, userPath(id), upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) (string, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodDelete, userPath(id), nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Ping checks that the API root answers.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

func userPath(id int64) string {
	return "/admin/users/" + strconv.FormatInt(id, 10)
}

// do sends one JSON request and decodes a 2xx body into out (when non-nil).
//
// Transport failures wrap ErrUnavailable; non-2xx responses are *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	target := *c.baseURL
	target.Path = c.baseURL.Path + ref.Path
	target.RawQuery = ref.RawQuery

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
		c.logger.Debug(ctx, "api rejected request", "method", method, "path", ref.Path, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
