// Package lifecycle provides process startup and shutdown orchestration.
//
// The Orchestrator owns an ordered set of Components, starts them
// concurrently, translates OS termination signals into a one-shot
// cancellation token, and stops every component in reverse start order
// under a single shared deadline while preserving every failure cause.
package lifecycle
