package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fieldkit/core/autologout"
	"github.com/dmitrymomot/fieldkit/core/session"
	"github.com/dmitrymomot/fieldkit/pkg/logger"
)

// maxResponseBytes caps response reads; backend payloads are small JSON.
const maxResponseBytes = 1 << 20

// Client implements session.Backend against the field-sales REST backend.
// All responses are enveloped as {meta:{code,status,message}, data:...}; any
// meta code other than 200 is surfaced as *Error with the backend's message.
//
// When a response is classified as an authorization failure (HTTP 401 or meta
// code 401), the client invokes the auto-logout bridge before returning the
// error. The logout request itself is exempt so a failing remote logout can
// never re-enter the bridge synchronously.
type Client struct {
	baseURL    string
	httpClient *http.Client
	bridge     *autologout.Bridge
	log        *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBridge sets the auto-logout bridge invoked on authorization failures.
func WithBridge(b *autologout.Bridge) ClientOption {
	return func(c *Client) {
		c.bridge = b
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for request-level diagnostics. Default discards.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an API client for the given backend.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, req session.LoginRequest) (*session.AuthResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/user/login", req, "", false)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Logout notifies the backend that the bearer token is being abandoned. The
// auto-logout hook is suppressed for this request: it is issued from inside a
// logout already.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, token, true)
	return err
}

// CurrentUser fetches the profile belonging to the bearer token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/user", nil, token, false)
	if err != nil {
		return nil, err
	}
	var user session.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	return &user, nil
}

// RequestOTP asks the backend to send a one-time password to the phone and
// returns the provider-defined ack payload untouched.
func (c *Client) RequestOTP(ctx context.Context, phone string) (json.RawMessage, error) {
	body := struct {
		Phone string `json:"phone"`
	}{Phone: phone}
	return c.do(ctx, http.MethodPost, "/user/send-otp", body, "", false)
}

// VerifyOTP exchanges a phone/OTP pair for a token and user.
func (c *Client) VerifyOTP(ctx context.Context, req session.VerifyOTPRequest) (*session.AuthResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/user/verify-otp", req, "", false)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

type meta struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type envelope struct {
	Meta meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, suppressHook bool) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Join(ErrRequestFailed, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	c.log.DebugContext(ctx, "sales backend request",
		logger.Method(method),
		logger.Path(path),
		logger.StatusCode(resp.StatusCode),
		logger.RequestID(requestID),
		logger.Elapsed(start),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.reject(ctx, &Error{Code: resp.StatusCode, Status: resp.Status}, suppressHook)
		}
		return nil, errors.Join(ErrInvalidResponse, err)
	}

	code := env.Meta.Code
	if code == 0 {
		code = resp.StatusCode
	}
	if code != http.StatusOK {
		return nil, c.reject(ctx, &Error{Code: code, Status: env.Meta.Status, Message: env.Meta.Message}, suppressHook)
	}

	return env.Data, nil
}

// reject invokes the auto-logout bridge for authorization failures before
// propagating the error, unless the request opted out.
func (c *Client) reject(ctx context.Context, apiErr *Error, suppressHook bool) error {
	if apiErr.IsUnauthorized() && !suppressHook && c.bridge != nil {
		c.bridge.Invoke(ctx)
	}
	return apiErr
}

func decodeAuthResult(data json.RawMessage) (*session.AuthResult, error) {
	var res session.AuthResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	res.Raw = data
	return &res, nil
}
