package poll

import (
	"context"
	"slices"
	"time"

	"github.com/portside/portside/internal/cache"
	"github.com/portside/portside/internal/engine"
	"github.com/portside/portside/internal/logring"
	"github.com/portside/portside/internal/safecall"
	"github.com/portside/portside/internal/state"
)

// emptyAfterFailures is how many consecutive failed cycles a worker
// tolerates before it publishes its empty default. A single engine hiccup
// must not blank a populated table, but a dead engine must not leave stale
// rows up forever either.
const emptyAfterFailures = 3

// sweepEvery is how many resource cycles pass between cache sweeps.
const sweepEvery = 6

const (
	logTail      = 200
	ringCapacity = 1000
)

// Intervals holds the cadence of each poller class.
type Intervals struct {
	Containers time.Duration
	Resources  time.Duration
	Stats      time.Duration
	Logs       time.Duration
}

// DefaultIntervals returns the stock cadences: containers every second,
// slow-moving resources every five, stats every two, logs twice a second.
func DefaultIntervals() Intervals {
	return Intervals{
		Containers: time.Second,
		Resources:  5 * time.Second,
		Stats:      2 * time.Second,
		Logs:       500 * time.Millisecond,
	}
}

func (iv Intervals) withDefaults() Intervals {
	def := DefaultIntervals()
	if iv.Containers <= 0 {
		iv.Containers = def.Containers
	}
	if iv.Resources <= 0 {
		iv.Resources = def.Resources
	}
	if iv.Stats <= 0 {
		iv.Stats = def.Stats
	}
	if iv.Logs <= 0 {
		iv.Logs = def.Logs
	}
	return iv
}

// TTLs holds how long cached engine listings stay fresh per class.
type TTLs struct {
	Containers time.Duration
	Resources  time.Duration
	Stats      time.Duration
}

// DefaultTTLs keeps each class fresh just shy of its poll cadence, so a
// forced refresh after an action always refetches while back-to-back reads
// inside one cycle share the entry.
func DefaultTTLs() TTLs {
	return TTLs{
		Containers: 900 * time.Millisecond,
		Resources:  4 * time.Second,
		Stats:      1800 * time.Millisecond,
	}
}

func (t TTLs) withDefaults() TTLs {
	def := DefaultTTLs()
	if t.Containers <= 0 {
		t.Containers = def.Containers
	}
	if t.Resources <= 0 {
		t.Resources = def.Resources
	}
	if t.Stats <= 0 {
		t.Stats = def.Stats
	}
	return t
}

// degrade tracks consecutive failures for one published collection.
type degrade struct {
	failures int
}

func (d *degrade) succeed() { d.failures = 0 }

// fail records one failed cycle and reports whether the empty default should
// be published now. True exactly once per outage, at the threshold.
func (d *degrade) fail() bool {
	d.failures++
	return d.failures == emptyAfterFailures
}

// Set bundles the four background pollers. The action dispatcher holds a Set
// to kick the relevant pollers right after a mutation.
type Set struct {
	Containers *Poller
	Resources  *Poller
	Stats      *Poller
	Logs       *Poller
}

// NewSet builds the standard pollers against one store, engine and cache.
func NewSet(store *state.Store, eng engine.Engine, c *cache.Cache, iv Intervals, ttl TTLs) *Set {
	iv = iv.withDefaults()
	ttl = ttl.withDefaults()

	containers := &containersWorker{store: store, eng: eng, cache: c, ttl: ttl.Containers}
	resources := &resourcesWorker{store: store, eng: eng, cache: c, ttl: ttl.Resources}
	stats := &statsWorker{store: store, eng: eng, cache: c, ttl: ttl}
	logs := &logsWorker{store: store, eng: eng, ring: logring.New(ringCapacity)}

	return &Set{
		Containers: New("containers", iv.Containers, containers.cycle),
		Resources:  New("resources", iv.Resources, resources.cycle),
		Stats:      New("stats", iv.Stats, stats.cycle),
		Logs:       New("logs", iv.Logs, logs.cycle),
	}
}

// Start launches every poller. They stop when ctx is cancelled.
func (s *Set) Start(ctx context.Context) {
	s.Containers.Start(ctx)
	s.Resources.Start(ctx)
	s.Stats.Start(ctx)
	s.Logs.Start(ctx)
}

// containersWorker keeps the container table current.
type containersWorker struct {
	store *state.Store
	eng   engine.Engine
	cache *cache.Cache
	ttl   time.Duration

	health degrade
}

func (w *containersWorker) cycle(ctx context.Context) bool {
	list, ok := safecall.Call(w.store, "list containers", []engine.Container(nil), func() ([]engine.Container, error) {
		return cache.GetOrFetch(w.cache, "containers", w.ttl, func() ([]engine.Container, error) {
			return w.eng.ListContainers(ctx)
		})
	})
	if !ok {
		if w.health.fail() {
			w.store.SetContainers(nil)
		}
		return false
	}
	w.health.succeed()
	w.store.SetContainers(list)
	return true
}

// resourcesWorker refreshes the slow-moving collections: images, volumes,
// networks and compose projects. Each collection degrades independently, so
// one broken endpoint doesn't blank the other three.
type resourcesWorker struct {
	store *state.Store
	eng   engine.Engine
	cache *cache.Cache
	ttl   time.Duration

	images   degrade
	volumes  degrade
	networks degrade
	composes degrade

	cycles int
}

func (w *resourcesWorker) cycle(ctx context.Context) bool {
	ok := refresh(ctx, w, "list images", "images", &w.images, w.store.SetImages, w.eng.ListImages)
	ok = refresh(ctx, w, "list volumes", "volumes", &w.volumes, w.store.SetVolumes, w.eng.ListVolumes) && ok
	ok = refresh(ctx, w, "list networks", "networks", &w.networks, w.store.SetNetworks, w.eng.ListNetworks) && ok
	ok = refresh(ctx, w, "list compose projects", "composes", &w.composes, w.store.SetComposes, w.eng.ListComposeProjects) && ok

	w.cycles++
	if w.cycles%sweepEvery == 0 {
		w.cache.Sweep()
	}
	return ok
}

// refresh runs one cached listing and publishes the result, or the empty
// default once the degrade threshold is hit.
func refresh[T any](ctx context.Context, w *resourcesWorker, op, key string, health *degrade, publish func([]T), fetch func(context.Context) ([]T, error)) bool {
	list, ok := safecall.Call(w.store, op, []T(nil), func() ([]T, error) {
		return cache.GetOrFetch(w.cache, key, w.ttl, func() ([]T, error) {
			return fetch(ctx)
		})
	})
	if !ok {
		if health.fail() {
			publish(nil)
		}
		return false
	}
	health.succeed()
	publish(list)
	return true
}

// statsWorker samples CPU and memory for every running container. The whole
// map is replaced each cycle so entries for stopped containers disappear on
// their own.
type statsWorker struct {
	store *state.Store
	eng   engine.Engine
	cache *cache.Cache
	ttl   TTLs
}

func (w *statsWorker) cycle(ctx context.Context) bool {
	containers, ok := safecall.Call(w.store, "list containers", []engine.Container(nil), func() ([]engine.Container, error) {
		return cache.GetOrFetch(w.cache, "containers", w.ttl.Containers, func() ([]engine.Container, error) {
			return w.eng.ListContainers(ctx)
		})
	})
	if !ok {
		return false
	}

	sampled := make(map[string]engine.ContainerStats)
	allOK := true
	for _, c := range containers {
		if c.State != "running" {
			continue
		}
		id := c.ID
		st, ok := safecall.Call(w.store, "fetch stats", engine.ContainerStats{}, func() (engine.ContainerStats, error) {
			return cache.GetOrFetch(w.cache, "stats:"+id, w.ttl.Stats, func() (engine.ContainerStats, error) {
				return w.eng.FetchStats(ctx, id)
			})
		})
		if !ok {
			allOK = false
			continue
		}
		sampled[id] = st
	}
	w.store.SetStats(sampled)
	return allOK
}

// logsWorker tails the focused container. Lines live in a bounded ring and
// are only published when they actually change, so a quiet container doesn't
// force a repaint twice a second.
type logsWorker struct {
	store *state.Store
	eng   engine.Engine
	ring  *logring.Ring

	focused string
	last    []string
}

func (w *logsWorker) cycle(ctx context.Context) bool {
	snap := w.store.Snapshot()
	if snap.Tab != state.TabContainers {
		w.clear()
		return true
	}
	id := snap.CursorID()
	if id == "" {
		w.clear()
		return true
	}
	if id != w.focused {
		w.focused = id
		w.ring.Reset()
		w.last = nil
	}

	lines, ok := safecall.Call(w.store, "fetch logs", []string(nil), func() ([]string, error) {
		return w.eng.FetchLogs(ctx, id, logTail)
	})
	if !ok {
		return false
	}

	w.ring.Replace(lines)
	current := w.ring.Lines()
	if !slices.Equal(current, w.last) {
		w.store.SetLogs(current)
		w.last = current
	}
	return true
}

// clear drops local tail state when no container is focused. The store's own
// tab and cursor transitions already blank the published log buffer.
func (w *logsWorker) clear() {
	w.focused = ""
	w.ring.Reset()
	w.last = nil
}
