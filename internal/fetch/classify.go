package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// Classification is the classifier verdict for one failure.
type Classification struct {
	Retryable bool
	Reason    Reason
	Err       *Error
}

// Classifier labels a failure. Classify is the default.
type Classifier func(err error) Classification

// transportPatterns catch transport failures whose concrete type was lost
// along the way (stringly wrapped by a proxy or SDK).
var transportPatterns = []string{
	"network request failed",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"host is unreachable",
	"broken pipe",
	"server closed the connection",
}

// Classify labels err as retryable or terminal. Rules are evaluated in order
// and the first match wins; anything unrecognized is terminal.
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}

	var fe *Error
	if errors.As(err, &fe) {
		return classification(fe)
	}

	switch {
	case isTransport(err):
		return classification(&Error{Kind: KindTransport, Err: err})
	case isTimeout(err):
		return classification(&Error{Kind: KindTimeout, Err: err})
	}

	if code, ok := statusCode(err); ok {
		switch {
		case code >= http.StatusInternalServerError:
			return classification(&Error{Kind: KindServer, Status: code, Err: err})
		case code == http.StatusNotFound:
			return classification(&Error{Kind: KindNotFound, Status: code, Err: err})
		case code >= http.StatusBadRequest:
			return classification(&Error{Kind: KindClient, Status: code, Err: err})
		}
	}

	if isMalformed(err) {
		return classification(&Error{Kind: KindMalformed, Err: err})
	}
	return classification(&Error{Kind: KindUnknown, Err: err})
}

func classification(fe *Error) Classification {
	return Classification{
		Retryable: fe.Kind.Retryable(),
		Reason:    fe.Kind.Reason(),
		Err:       fe,
	}
}

// isTransport matches failures to reach the server at all. Timeouts are left
// for isTimeout so they keep their own category.
func isTransport(err error) bool {
	if isTimeout(err) {
		return false
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transportPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func statusCode(err error) (int, bool) {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
