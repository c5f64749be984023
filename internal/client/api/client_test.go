package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, WithTokenSource(func() string { return token }))
}

func TestWantsAuth(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/auth/login", false},
		{"/auth/send-code", false},
		{"/auth/me", true},
		{"/ai/qwen/complete", true},
		{"/billing/create", true},
		{"/authx", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wantsAuth(tt.path), tt.path)
	}
}

func TestWithTimeoutCopiesCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient("http://localhost", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)

	NewClient("http://localhost", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
	assert.Zero(t, http.DefaultClient.Timeout)
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotType, gotAgent string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(models.MeResponse{User: &models.User{ID: 1, Email: "a@b.c", Tier: models.TierFree}})
	}, "tok")

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", me.User.Email)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.True(t, strings.HasPrefix(gotAgent, "iskra/"))
}

func TestAuthPathsAreAnonymous(t *testing.T) {
	var gotAuth string
	var body models.LoginRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(models.AuthResponse{Token: "new", User: models.User{ID: 2, Email: body.Email}})
	}, "stale")

	resp, err := client.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "pw", body.Password)
	assert.Equal(t, "new", resp.Token)
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth = "unset"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.ModelsResponse{Models: []string{"qwen-max"}})
	}, "")

	names, err := client.Models(context.Background(), ProviderQwen)
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen-max"}, names)
	assert.Empty(t, gotAuth)
}

func TestBackendErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message wins", 400, `{"error":"Bad Request","message":"Invalid code"}`, "Invalid code"},
		{"error field", 401, `{"error":"unauthorized"}`, "unauthorized"},
		{"status text", 500, `not json`, "Internal Server Error"},
		{"empty body", 404, ``, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, "")

			_, err := client.SendCode(context.Background(), "a@b.c")
			require.Error(t, err)

			var be *BackendError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.status, be.StatusCode)
			assert.Equal(t, tt.want, be.Error())
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.SendCode(context.Background(), "a@b.c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")

	var be *BackendError
	assert.False(t, errors.As(err, &be))
}

func TestCompleteValidation(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, "tok")

	_, err := client.Complete(context.Background(), ProviderQwen, models.CompletionRequest{Model: "qwen-max"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Complete(context.Background(), Provider("gemini"), models.CompletionRequest{
		Model:    "x",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = client.CreatePayment(context.Background(), models.PaymentRequest{Tier: models.TierFree})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCompleteReturnsRawBody(t *testing.T) {
	const upstream = `{"id":"c1","choices":[{"message":{"role":"assistant","content":"hello"}}]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/claude/complete", r.URL.Path)
		var req models.CompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3", req.Model)
		io.WriteString(w, upstream)
	}, "tok")

	raw, err := client.Complete(context.Background(), ProviderClaude, models.CompletionRequest{
		Model:    "claude-3",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, upstream, string(raw))
}

func TestStream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.CompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.True(t, req.Stream)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"delta\":\"hi\"}\n\ndata: [DONE]\n\n")
	}, "tok")

	body, err := client.Stream(context.Background(), ProviderQwen, models.CompletionRequest{
		Model:    "qwen-max",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DONE]")
}

func TestStreamHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"message":"limit"}`)
	}, "tok")

	_, err := client.Stream(context.Background(), ProviderQwen, models.CompletionRequest{
		Model:    "qwen-max",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "HTTP 429", err.Error())
}

func TestStreamIgnoresClientTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(150 * time.Millisecond)
		io.WriteString(w, "data: [DONE]\n\n")
	}, "tok")
	client = NewClient(client.BaseURL(), WithTimeout(50*time.Millisecond))

	body, err := client.Stream(context.Background(), ProviderQwen, models.CompletionRequest{
		Model:    "qwen-max",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DONE]")
}

func TestPaymentStatus(t *testing.T) {
	const raw = `{"status":"succeeded","paid":true,"amount":{"value":"990.00"}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/billing/status/pay%2F1", r.URL.EscapedPath())
		io.WriteString(w, raw)
	}, "tok")

	status, body, err := client.PaymentStatus(context.Background(), "pay/1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSucceeded, status.Status)
	assert.True(t, status.Paid)
	assert.JSONEq(t, raw, string(body))

	_, _, err = client.PaymentStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreatePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/billing/create", r.URL.Path)
		var req models.PaymentRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, models.TierPro, req.Tier)
		json.NewEncoder(w).Encode(models.PaymentResponse{PaymentID: "p1", ConfirmationURL: "https://pay", Amount: 990})
	}, "tok")

	resp, err := client.CreatePayment(context.Background(), models.PaymentRequest{Tier: models.TierPro, ReturnURL: "iskra://iskra-ai/payment-success"})
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.PaymentID)
	assert.Equal(t, "https://pay", resp.ConfirmationURL)
}
