package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/five82/ledgerview/internal/fetch"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("ledger.example.com:9000/admin?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "ledger.example.com:9000" {
		t.Fatalf("url = %q, want http://ledger.example.com:9000", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a url without host")
	}
}

func TestClient_FetchPaymentSendsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Payment{
			ID:        "p 1",
			Amount:    500,
			Currency:  "eur",
			Candidate: Party{Name: "Ada"},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{Token: " s3cret "})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	p, err := c.FetchPayment(ctx, " p 1 ")
	if err != nil {
		t.Fatalf("FetchPayment returned error: %v", err)
	}
	if p.Amount != 500 || p.Candidate.Name != "Ada" {
		t.Fatalf("FetchPayment payload = %#v", p)
	}
	if gotPath != "/api/payments/p%201" {
		t.Fatalf("path = %q, want escaped id", gotPath)
	}
	if got.Get("Authorization") != "Bearer s3cret" {
		t.Fatalf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("Accept = %q", got.Get("Accept"))
	}
	if !strings.HasPrefix(got.Get("User-Agent"), "ledgerview/") {
		t.Fatalf("User-Agent = %q, want ledgerview/*", got.Get("User-Agent"))
	}
	if _, err := uuid.Parse(got.Get("X-Request-ID")); err != nil {
		t.Fatalf("X-Request-ID = %q is not a UUID: %v", got.Get("X-Request-ID"), err)
	}
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if len(auth) != 0 {
		t.Fatalf("Authorization sent without token: %v", auth)
	}
}

func TestClient_FetchPaymentRequiresID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchPayment(context.Background(), "  "); err == nil {
		t.Fatalf("FetchPayment returned nil error, want error")
	}
}

func TestClient_ErrorsAreClassifiable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments/missing":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"payment not found"}`))
		case "/api/payments/busy":
			http.Error(w, "try later", http.StatusServiceUnavailable)
		case "/api/payments/garbled":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/health":
			http.Error(w, "degraded", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	_, err = c.FetchPayment(ctx, "missing")
	var se *StatusError
	if !errors.As(err, &se) || !se.NotFound() || se.Message != "payment not found" {
		t.Fatalf("FetchPayment(missing) error = %v, want 404 StatusError", err)
	}
	if got := fetch.Classify(err); got.Retryable || got.Err.Kind != fetch.KindNotFound {
		t.Fatalf("Classify(404) = %+v, want terminal not-found", got)
	}

	_, err = c.FetchPayment(ctx, "busy")
	if err == nil || !strings.Contains(err.Error(), "returned status 503: try later") {
		t.Fatalf("FetchPayment(busy) error = %v, want status 503", err)
	}
	if got := fetch.Classify(err); !got.Retryable || got.Reason != fetch.ReasonServerError {
		t.Fatalf("Classify(503) = %+v, want retryable server-error", got)
	}

	_, err = c.FetchPayment(ctx, "garbled")
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchPayment(garbled) error = %v, want decode response error", err)
	}
	if got := fetch.Classify(err); got.Retryable || got.Err.Kind != fetch.KindMalformed {
		t.Fatalf("Classify(decode) = %+v, want terminal malformed", got)
	}

	if err := c.Ping(ctx); err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("Ping error = %v, want status 502", err)
	}
}

func TestClient_TransportFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchPayment(context.Background(), "p-1")
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("FetchPayment error = %v, want execute request error", err)
	}
	if got := fetch.Classify(err); !got.Retryable || got.Err.Kind != fetch.KindTransport {
		t.Fatalf("Classify(transport) = %+v, want retryable transport", got)
	}
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{Path: "/api/payments/x", Code: 500}
	if err.Error() != "api /api/payments/x returned status 500" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if err.StatusCode() != 500 || err.NotFound() {
		t.Fatalf("StatusCode/NotFound mismatch")
	}
}

func TestAPIMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":" boom "}`, "boom"},
		{`{"message":"nope"}`, "nope"},
		{"plain text\n", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := apiMessage([]byte(tt.body)); got != tt.want {
			t.Fatalf("apiMessage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
