// Package poll schedules the background workers that keep the state store
// current: containers on a fast cadence, images/volumes/networks/compose
// projects on a slow one, per-container stats, and the focused container's
// log tail. Every engine read goes through the TTL cache and the safecall
// boundary; consecutive failures back off exponentially and only blank a
// published collection after several consecutive misses, so a single engine
// hiccup never flashes an empty table.
package poll
