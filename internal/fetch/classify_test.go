package fetch

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("http status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func syntaxError(t *testing.T) error {
	t.Helper()
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	if err == nil {
		t.Fatalf("json.Unmarshal returned nil error")
	}
	return err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
		reason    Reason
		status    int
	}{
		{
			name:      "connection refused",
			err:       &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			kind:      KindTransport,
			retryable: true,
			reason:    ReasonOffline,
		},
		{
			name:      "dns failure",
			err:       fmt.Errorf("execute request: %w", &net.DNSError{Err: "no such host", Name: "ledger"}),
			kind:      KindTransport,
			retryable: true,
			reason:    ReasonOffline,
		},
		{
			name:      "stringly wrapped network failure",
			err:       errors.New("Network request failed"),
			kind:      KindTransport,
			retryable: true,
			reason:    ReasonOffline,
		},
		{
			name:      "deadline exceeded",
			err:       fmt.Errorf("execute request: %w", context.DeadlineExceeded),
			kind:      KindTimeout,
			retryable: true,
			reason:    ReasonTimeout,
		},
		{
			name:      "url error wrapping timeout",
			err:       &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded},
			kind:      KindTimeout,
			retryable: true,
			reason:    ReasonTimeout,
		},
		{
			name:      "503",
			err:       statusErr(503),
			kind:      KindServer,
			retryable: true,
			reason:    ReasonServerError,
			status:    503,
		},
		{
			name:      "500 wrapped",
			err:       fmt.Errorf("fetch payment: %w", statusErr(500)),
			kind:      KindServer,
			retryable: true,
			reason:    ReasonServerError,
			status:    500,
		},
		{
			name:   "404",
			err:    statusErr(404),
			kind:   KindNotFound,
			reason: ReasonTerminal,
			status: 404,
		},
		{
			name:   "401",
			err:    statusErr(401),
			kind:   KindClient,
			reason: ReasonTerminal,
			status: 401,
		},
		{
			name:   "unexpected eof",
			err:    fmt.Errorf("decode response: %w", io.ErrUnexpectedEOF),
			kind:   KindMalformed,
			reason: ReasonTerminal,
		},
		{
			name:   "context canceled",
			err:    &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled},
			kind:   KindUnknown,
			reason: ReasonTerminal,
		},
		{
			name:   "tls certificate failure",
			err:    fmt.Errorf("execute request: %w", &url.Error{Op: "Get", URL: "https://x", Err: x509.UnknownAuthorityError{}}),
			kind:   KindUnknown,
			reason: ReasonTerminal,
		},
		{
			name:   "unsupported scheme",
			err:    &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)},
			kind:   KindUnknown,
			reason: ReasonTerminal,
		},
		{
			name:   "redirect loop",
			err:    &url.Error{Op: "Get", URL: "http://x", Err: errors.New("stopped after 10 redirects")},
			kind:   KindUnknown,
			reason: ReasonTerminal,
		},
		{
			name:   "unrecognized",
			err:    errors.New("boom"),
			kind:   KindUnknown,
			reason: ReasonTerminal,
		},
		{
			name:      "already classified",
			err:       &Error{Kind: KindOffline, Err: ErrOffline},
			kind:      KindOffline,
			retryable: true,
			reason:    ReasonOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Err == nil {
				t.Fatalf("Classify(%v).Err = nil", tt.err)
			}
			if got.Err.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Err.Kind, tt.kind)
			}
			if got.Retryable != tt.retryable {
				t.Fatalf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", got.Reason, tt.reason)
			}
			if got.Err.Status != tt.status {
				t.Fatalf("Status = %d, want %d", got.Err.Status, tt.status)
			}
			if !errors.Is(got.Err, tt.err) {
				t.Fatalf("classified error does not wrap the original")
			}
		})
	}
}

func TestClassify_JSONSyntaxErrorIsTerminal(t *testing.T) {
	got := Classify(fmt.Errorf("decode response: %w", syntaxError(t)))
	if got.Retryable || got.Err.Kind != KindMalformed {
		t.Fatalf("Classify = %+v, want terminal malformed", got)
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got.Err != nil || got.Retryable {
		t.Fatalf("Classify(nil) = %+v, want zero value", got)
	}
}

func TestError_MessagesAndHelpers(t *testing.T) {
	cause := statusErr(503)
	exhausted := &Error{Kind: KindMaxRetries, Attempts: 4, Err: &Error{Kind: KindServer, Status: 503, Err: cause}}

	if want := "max retries reached after 4 attempts: server error (status 503): http status 503"; exhausted.Error() != want {
		t.Fatalf("Error() = %q, want %q", exhausted.Error(), want)
	}
	if !IsRetriesExhausted(fmt.Errorf("wrapped: %w", exhausted)) {
		t.Fatalf("IsRetriesExhausted = false, want true")
	}
	if KindOf(exhausted) != KindMaxRetries {
		t.Fatalf("KindOf = %v, want KindMaxRetries", KindOf(exhausted))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("KindOf(plain) should be KindUnknown")
	}
	if !errors.Is(exhausted, cause) {
		t.Fatalf("exhausted error should unwrap to the last cause")
	}
}
