// Package fetch loads a single remote record and keeps trying when the
// network misbehaves.
//
// # Overview
//
// A Controller drives one logical fetch at a time through
//
//	Idle → Loading → Success
//	             ↘ Retrying → Loading → ...
//	             ↘ Failed
//
// Failures are labelled by Classify. Retryable ones (transport, timeout, 5xx)
// are retried with exponential backoff from Backoff (1s, 2s, 4s, 8s, capped at
// 10s) until the retry budget is spent. Terminal ones (4xx, not found,
// malformed payloads, anything unrecognized) fail immediately.
//
// # Bubble Tea integration
//
// The controller is a Bubble Tea component. Request, RetryNow and Update return
// tea.Cmds; the fetch and the backoff timer run as commands and report back as
// messages that the owning model must pass to Update. All state lives in the
// update loop, so no locks are involved.
//
//	ctrl := fetch.New(client.FetchPayment, fetch.Options{Connectivity: sig})
//
//	func (m Model) Init() tea.Cmd {
//		return tea.Batch(m.ctrl.Init(), m.ctrl.Request("p-1"))
//	}
//
//	func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
//		cmd := m.ctrl.Update(msg)
//		...
//	}
//
// # Attempt contexts
//
// Every Request or RetryNow creates a fresh attempt context identified by a
// token from Guard. Results and timer firings carry that token; anything that
// arrives for a superseded or disposed context is dropped without touching
// state. The context owns its Scheduler, which holds at most one timer, and the
// cancel func of its in-flight fetch.
//
// # Connectivity
//
// With a Connectivity source the controller mirrors online/offline into
// Status.Offline. A fetch attempted while offline is parked in Retrying with
// KindOffline and no timer. When the signal comes back online, a Retrying state
// caused by an offline condition is retried at once without resetting the
// attempt count. A Failed state never is: it only follows an exhausted budget
// or a terminal error, and waits for RetryNow.
//
// # Errors
//
// Status.Err is always a *Error with a Kind from a closed set; callers switch
// on Kind or Reason instead of inspecting transport errors. Exhausting the
// budget yields KindMaxRetries wrapping the last cause.
package fetch
