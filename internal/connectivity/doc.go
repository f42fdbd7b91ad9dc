// Package connectivity tracks whether the ledger API is reachable and turns
// that into online/offline events.
//
// # Overview
//
// Signal is the shared state: a synchronously readable Online flag plus a
// fan-out of Event values, one per transition. It never emits the same state
// twice in a row.
//
// StartProber is the producer. It pings the API health endpoint on a fixed
// cadence and records each outcome with Signal.Observe:
//
//	Prober goroutine:              Consumers:
//	┌──────────────────┐          ┌──────────────────────┐
//	│ Ping()           │          │ fetch.Controller     │
//	│   ↓              │  Event   │   (Subscribe)        │
//	│ sig.Observe(err) │────────→ │ ui header            │
//	│   ↓              │          │   (Online/Snapshot)  │
//	│ wait interval    │          └──────────────────────┘
//	└──────────────────┘
//
// # Thresholds
//
// A single failed probe is not enough to declare the network gone; the
// signal flips offline after FailureThreshold consecutive failures (default
// 2). One successful probe flips it back online.
//
// # Concurrency
//
// Signal is safe for concurrent use. Subscriber channels are buffered and
// delivery never blocks the prober; a subscriber that falls behind loses
// its oldest pending events but always sees the latest state.
package connectivity
