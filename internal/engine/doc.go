// Package engine wraps the container runtime's HTTP API behind the Engine
// interface. Reads (listings, stats, log tails) map onto GET endpoints over
// the local unix socket; mutations map onto POST/DELETE verbs. Compose
// project control and image builds shell out to the docker CLI because the
// API has no project-level equivalent.
//
// Every operation takes a context and returns an explicit error; non-2xx
// responses become *APIError so callers can classify failures by status
// without parsing messages. Nothing in this package retries or swallows
// errors — that is the safecall layer's job.
package engine
