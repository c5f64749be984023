package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
	"github.com/kamikazebr/iskra-desktop/pkg/version"
)

// DefaultBaseURL is the production backend origin.
const DefaultBaseURL = "https://cli.cryptocatslab.ru"

const defaultTimeout = 10 * time.Second

// Provider names an upstream model family proxied by the backend.
type Provider string

const (
	ProviderQwen   Provider = "qwen"
	ProviderClaude Provider = "claude"
)

func (p Provider) valid() bool {
	return p == ProviderQwen || p == ProviderClaude
}

// TokenSource returns the current bearer token, or "" when logged out.
type TokenSource func() string

type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	token        TokenSource
	validate     *validator.Validate
}

type Option func(*Client)

// WithHTTPClient replaces the client used for request/response calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of non-streaming calls. A client passed to
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		token:    func() string { return "" },
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Streams are bounded by the caller's context, not a client timeout.
	c.streamClient = &http.Client{Transport: c.httpClient.Transport}
	return c
}

// BaseURL returns the origin every request is sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// wantsAuth reports whether path gets a bearer token. The registration and
// login namespace is anonymous; /auth/me is the one authenticated path in it.
func wantsAuth(path string) bool {
	return !strings.HasPrefix(path, "/auth/") || path == "/auth/me"
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if wantsAuth(path) {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do sends a request and decodes a 2xx JSON body into out. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseBackendError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SendCode starts registration by mailing a verification code.
func (c *Client) SendCode(ctx context.Context, email string) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/send-code", models.SendCodeRequest{Email: email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyEmail confirms the code sent by SendCode.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", models.VerifyEmailRequest{Email: email, Code: code}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteRegistration sets the password of a verified email and returns a session.
func (c *Client) CompleteRegistration(ctx context.Context, req models.CompleteRegistrationRequest) (*models.AuthResponse, error) {
	var result models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/complete-registration", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var result models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ResendCode(ctx context.Context, email string) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/resend-code", models.SendCodeRequest{Email: email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the authenticated profile and today's usage.
func (c *Client) Me(ctx context.Context) (*models.MeResponse, error) {
	var result models.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) checkCompletion(p Provider, req *models.CompletionRequest) error {
	if !p.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Complete proxies a completion and returns the provider's body untouched.
func (c *Client) Complete(ctx context.Context, p Provider, req models.CompletionRequest) (json.RawMessage, error) {
	if err := c.checkCompletion(p, &req); err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/ai/"+string(p)+"/complete", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Stream opens a streaming completion. The caller must close the returned body.
func (c *Client) Stream(ctx context.Context, p Provider, req models.CompletionRequest) (io.ReadCloser, error) {
	req.Stream = true
	if err := c.checkCompletion(p, &req); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/ai/"+string(p)+"/stream", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// Models lists the model names the backend offers for a provider.
func (c *Client) Models(ctx context.Context, p Provider) ([]string, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}

	var result models.ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/ai/models/"+string(p), nil, &result); err != nil {
		return nil, err
	}
	return result.Models, nil
}

// CreatePayment starts a tier upgrade and returns the checkout URL.
func (c *Client) CreatePayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	if err := c.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var result models.PaymentResponse
	if err := c.do(ctx, http.MethodPost, "/billing/create", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PaymentStatus returns the decoded status and the raw body as sent.
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatus, json.RawMessage, error) {
	if paymentID == "" {
		return nil, nil, fmt.Errorf("%w: empty payment id", ErrInvalidRequest)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/billing/status/"+url.PathEscape(paymentID), nil, &raw); err != nil {
		return nil, nil, err
	}

	var status models.PaymentStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, raw, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, raw, nil
}
