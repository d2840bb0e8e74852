// Package state owns the shared application state for portside.
//
// The Store mediates between the background pollers (producers), the action
// dispatcher (producer), and the render loop (consumer):
//
//	Pollers ──┐
//	          ├──> Store.Set*()  ──(mutex, version++)──> Store.Snapshot() ──> UI
//	Dispatch ─┘
//
// Three rules keep this safe:
//
//   - The Store exclusively owns the mutable aggregate. Everything else sees
//     either an immutable AppState copy or goes through a mutation method.
//   - Every mutation bumps the version counter exactly once. ShouldRender
//     compares the last painted version against a snapshot's version, which
//     makes repaint decisions O(1) and flicker-free.
//   - Collections are replaced wholesale per poll cycle and deep-copied on
//     snapshot, so a reader can never observe a half-updated collection.
//
// Bulk selection is stored per tab as id sets and intersected with the live
// collection at snapshot time: an id that disappears from a poll result
// silently drops out of the effective selection.
package state
