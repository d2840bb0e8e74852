package state

import (
	"sync"
	"time"

	"github.com/portside/portside/internal/engine"
)

// Store is the single owner of mutable application state. Pollers and the
// action dispatcher write through its entry points; the render loop reads
// immutable snapshots. A single mutex totally orders mutations, and every
// mutation bumps the version counter exactly once — the version is the only
// signal the render loop needs.
//
// The zero value is ready to use.
//
// No mutation helper calls another exported mutation helper: nested update
// paths go through unexported *Locked functions that assume the lock is
// held, so the lock never needs to be re-entrant.
type Store struct {
	mu      sync.Mutex
	version uint64

	containers []engine.Container
	images     []engine.Image
	volumes    []engine.Volume
	networks   []engine.Network
	composes   []engine.ComposeProject
	stats      map[string]engine.ContainerStats
	logs       []string

	tab       Tab
	cursor    int
	filter    string
	filtering bool
	sort      SortMode
	bulkMode  bool
	selected  map[Tab]map[string]bool

	lastError ErrorState

	now func() time.Time // test seam
}

func (s *Store) bumpLocked() {
	s.version++
}

func (s *Store) nowLocked() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Version returns the current state version.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Collection updates. Each replaces its slice wholesale; records are never
// mutated in place.

func (s *Store) SetContainers(containers []engine.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers = containers
	s.bumpLocked()
}

func (s *Store) SetImages(images []engine.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
	s.bumpLocked()
}

func (s *Store) SetVolumes(volumes []engine.Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = volumes
	s.bumpLocked()
}

func (s *Store) SetNetworks(networks []engine.Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = networks
	s.bumpLocked()
}

func (s *Store) SetComposes(composes []engine.ComposeProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composes = composes
	s.bumpLocked()
}

// SetStat records one container's CPU/memory sample.
func (s *Store) SetStat(containerID string, st engine.ContainerStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		s.stats = make(map[string]engine.ContainerStats)
	}
	s.stats[containerID] = st
	s.bumpLocked()
}

// SetStats replaces the whole stats map; entries for containers that are no
// longer running simply disappear.
func (s *Store) SetStats(stats map[string]engine.ContainerStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.bumpLocked()
}

// SetLogs replaces the log buffer for the focused container.
func (s *Store) SetLogs(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = lines
	s.bumpLocked()
}

// SetError records the visible error with a fresh timestamp. The version
// bump guarantees at least one re-render showing it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ErrorState{Message: msg, At: s.nowLocked()}
	s.bumpLocked()
}

// ClearError empties the visible error slot; the dispatcher calls this at
// the start of every user-initiated action.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ErrorState{}
	s.bumpLocked()
}

// Selection and navigation.

// SetTab switches the active tab and resets per-tab transient state. Bulk
// selections are scoped per tab and survive the switch; they just stop being
// visible until the tab is active again.
func (s *Store) SetTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	s.cursor = 0
	s.filter = ""
	s.filtering = false
	s.bulkMode = false
	s.logs = nil
	s.bumpLocked()
}

// SetFiltering toggles filter input mode.
func (s *Store) SetFiltering(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtering = active
	s.bumpLocked()
}

// SetFilter updates the filter text and keeps the cursor inside the
// narrowed list.
func (s *Store) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
	if n := s.activeLenLocked(); s.cursor >= n {
		s.cursor = max(0, n-1)
	}
	s.bumpLocked()
}

// CycleSort advances the container sort mode: name -> status -> cpu.
func (s *Store) CycleSort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = (s.sort + 1) % 3
	s.bumpLocked()
}

// MoveCursor shifts the cursor by delta, clamped to the filtered collection.
// Moving off a container clears the log buffer so the logs poller reloads
// for the new focus.
func (s *Store) MoveCursor(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.activeLenLocked()
	if n == 0 {
		s.cursor = 0
		s.bumpLocked()
		return
	}
	next := min(max(s.cursor+delta, 0), n-1)
	if next != s.cursor && s.tab == TabContainers {
		s.logs = nil
	}
	s.cursor = next
	s.bumpLocked()
}

// ToggleBulkMode flips bulk selection mode for the active tab.
func (s *Store) ToggleBulkMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkMode = !s.bulkMode
	s.bumpLocked()
}

// ToggleSelected flips the bulk selection of the item under the cursor.
func (s *Store) ToggleSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.activeIDsLocked()
	if s.cursor >= 0 && s.cursor < len(ids) {
		set := s.selectionLocked(s.tab)
		id := ids[s.cursor]
		if set[id] {
			delete(set, id)
		} else {
			set[id] = true
		}
	}
	s.bumpLocked()
}

// SelectAll marks every item in the filtered active collection.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.selectionLocked(s.tab)
	for _, id := range s.activeIDsLocked() {
		set[id] = true
	}
	s.bumpLocked()
}

// ClearSelection empties the active tab's bulk selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, s.tab)
	s.bumpLocked()
}

func (s *Store) selectionLocked(tab Tab) map[string]bool {
	if s.selected == nil {
		s.selected = make(map[Tab]map[string]bool)
	}
	set := s.selected[tab]
	if set == nil {
		set = make(map[string]bool)
		s.selected[tab] = set
	}
	return set
}

// Snapshot returns an independent copy of the current state with the active
// filter and sort applied. Later mutations never affect the returned value,
// and the returned value shares no mutable memory with the store.
func (s *Store) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := AppState{
		Containers: filterContainers(s.containers, s.filter, s.sort, s.stats),
		Images:     filterImages(s.images, s.filter),
		Volumes:    filterVolumes(s.volumes, s.filter),
		Networks:   filterNetworks(s.networks, s.filter),
		Composes:   filterComposes(s.composes, s.filter),
		Stats:      copyStats(s.stats),
		Logs:       copyLines(s.logs),
		Tab:        s.tab,
		Filter:     s.filter,
		Filtering:  s.filtering,
		Sort:       s.sort,
		BulkMode:   s.bulkMode,
		LastError:  s.lastError,
		Version:    s.version,
	}

	snap.Cursor = min(max(s.cursor, 0), max(snap.ActiveLen()-1, 0))

	// Effective selection: stored ids intersected with what actually exists
	// in the latest poll. Vanished ids are not reported and not eagerly
	// removed, so an id that comes back is still selected.
	if stored := s.selected[s.tab]; len(stored) > 0 {
		effective := make(map[string]bool, len(stored))
		for _, id := range snap.activeIDs() {
			if stored[id] {
				effective[id] = true
			}
		}
		snap.Selected = effective
	}
	return snap
}

func (s *Store) activeLenLocked() int {
	return len(s.activeIDsLocked())
}

// activeIDsLocked returns the identities of the filtered active collection
// in display order. Assumes the lock is held.
func (s *Store) activeIDsLocked() []string {
	switch s.tab {
	case TabContainers:
		filtered := filterContainers(s.containers, s.filter, s.sort, s.stats)
		ids := make([]string, len(filtered))
		for i, c := range filtered {
			ids[i] = c.ID
		}
		return ids
	case TabImages:
		filtered := filterImages(s.images, s.filter)
		ids := make([]string, len(filtered))
		for i, img := range filtered {
			ids[i] = img.ID
		}
		return ids
	case TabVolumes:
		filtered := filterVolumes(s.volumes, s.filter)
		ids := make([]string, len(filtered))
		for i, v := range filtered {
			ids[i] = v.Name
		}
		return ids
	case TabNetworks:
		filtered := filterNetworks(s.networks, s.filter)
		ids := make([]string, len(filtered))
		for i, n := range filtered {
			ids[i] = n.ID
		}
		return ids
	case TabCompose:
		filtered := filterComposes(s.composes, s.filter)
		ids := make([]string, len(filtered))
		for i, c := range filtered {
			ids[i] = c.Name
		}
		return ids
	default:
		return nil
	}
}

func copyStats(stats map[string]engine.ContainerStats) map[string]engine.ContainerStats {
	if len(stats) == 0 {
		return nil
	}
	dup := make(map[string]engine.ContainerStats, len(stats))
	for id, st := range stats {
		dup[id] = st
	}
	return dup
}

func copyLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]string, len(lines))
	copy(dup, lines)
	return dup
}
