// Package ui provides the Bubble Tea terminal interface for ledgerview.
//
// # Architecture Overview
//
// The interface shows a single payment record and the state of the request
// that loads it. All data access goes through a fetch.Controller owned by the
// root Model; the model forwards every message it does not handle itself to
// the controller and re-renders from the controller snapshot afterwards.
//
// # Package Structure
//
//   - app.go: Model, Init/Update/View, key handling and Run
//   - header.go: header bar, status line and footer
//   - status.go: plain-text status descriptions and countdown formatting
//   - detail.go: payment detail pane
//   - help.go: help overlay
//   - keys.go: key bindings
//   - theme.go: Dracula and Slate palettes
//   - style_helpers.go: BgStyle for gap-free backgrounds
//
// # States
//
// The status line mirrors the controller:
//
//   - Idle: waiting for a payment id
//   - Loading: spinner, with the retry ordinal when it is not the first try
//   - Retrying: failure category and a live countdown to the next attempt,
//     or a waiting message while offline
//   - Success: the payment is shown in the detail pane
//   - Failed: the failure and a hint to press r
//
// When a refresh of an already loaded payment fails, the last loaded data
// stays visible with a note.
//
// # Key Bindings
//
//   - /: enter a payment id (enter loads, esc cancels)
//   - r: retry now, skipping the backoff and resetting the retry budget
//   - T: cycle theme (persisted in prefs)
//   - ?: toggle help
//   - q, ctrl+c: quit; the controller is disposed first
package ui
