package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/five82/ledgerview/internal/fetch"
)

// describeStatus returns the one-line, plain-text status shown under the
// header. now is used for the retry countdown.
func describeStatus(st fetch.Status, now time.Time) string {
	switch st.State {
	case fetch.Loading:
		if st.Attempt == 0 {
			return "Loading payment..."
		}
		return fmt.Sprintf("Retrying (%s)...", attemptLabel(st.Attempt, st.MaxAttempts))

	case fetch.Retrying:
		if st.Reason == fetch.ReasonOffline && st.NextRetryAt.IsZero() {
			return "Offline. Waiting for the connection to come back..."
		}
		return fmt.Sprintf("%s. Retrying in %s (%s)",
			reasonLabel(st.Reason),
			formatCountdown(st.Remaining(now)),
			attemptLabel(st.Attempt, st.MaxAttempts))

	case fetch.Success:
		return "Loaded"

	case fetch.Failed:
		if st.RetriesExhausted() {
			var fe *fetch.Error
			attempts := st.Attempt + 1
			if errors.As(st.Err, &fe) && fe.Attempts > 0 {
				attempts = fe.Attempts
			}
			return fmt.Sprintf("%s. Gave up after %d attempts. Press r to retry", reasonLabel(st.Reason), attempts)
		}
		return failureLabel(st.Err) + ". Press r to retry"

	default:
		return "Press / to look up a payment"
	}
}

func attemptLabel(attempt, budget int) string {
	if budget <= 0 {
		return fmt.Sprintf("attempt %d", attempt)
	}
	return fmt.Sprintf("attempt %d of %d", attempt, budget)
}

// reasonLabel names a retryable failure category.
func reasonLabel(reason fetch.Reason) string {
	switch reason {
	case fetch.ReasonOffline:
		return "Connection problem"
	case fetch.ReasonServerError:
		return "Server error"
	case fetch.ReasonTimeout:
		return "Request timed out"
	case fetch.ReasonTerminal:
		return "Request failed"
	default:
		return "Error"
	}
}

// failureLabel names a terminal failure.
func failureLabel(err error) string {
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		if err == nil {
			return "Request failed"
		}
		return "Request failed: " + firstLine(err.Error())
	}
	switch fe.Kind {
	case fetch.KindNotFound:
		return "Payment not found"
	case fetch.KindClient:
		if fe.Status > 0 {
			return fmt.Sprintf("Request rejected (status %d)", fe.Status)
		}
		return "Request rejected"
	case fetch.KindMalformed:
		return "Unexpected response from the server"
	case fetch.KindOffline:
		return "Offline"
	}
	if fe.Err != nil {
		return "Request failed: " + firstLine(fe.Err.Error())
	}
	return "Request failed"
}

// formatCountdown rounds up to whole seconds so a pending retry never shows 0s.
func formatCountdown(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := int(math.Ceil(d.Seconds()))
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
