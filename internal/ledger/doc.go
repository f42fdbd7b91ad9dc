// Package ledger provides an HTTP client for the training-administration
// ledger API.
//
// # Overview
//
// Only the read side needed by ledgerview is implemented:
//
//   - GET /api/payments/{id}: a single payment record
//   - GET /api/health: reachability probe used by the connectivity prober
//
// # Request Handling
//
// Every request:
//   - Uses the caller's context for cancellation
//   - Sets Accept: application/json and User-Agent: ledgerview/0.1
//   - Carries a fresh X-Request-ID (UUID) so server logs can be matched
//   - Sends Authorization: Bearer <token> when a token is configured
//   - Is bounded by the http.Client timeout (10 seconds by default)
//
// # Error Handling
//
// The client keeps error shapes intact so the fetch classifier can label them:
//
//   - Transport failures are wrapped with %w ("execute request: ..."), keeping
//     *url.Error and *net.OpError reachable through errors.As
//   - 4xx/5xx answers become *StatusError, which exposes StatusCode()
//   - Malformed bodies are wrapped ("decode response: ...") around the
//     encoding/json error
//
// # Thread Safety
//
// Client is safe for concurrent use.
package ledger
