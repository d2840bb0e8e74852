package state

import (
	"time"

	"github.com/portside/portside/internal/engine"
)

// Tab identifies a resource class view.
type Tab int

const (
	TabContainers Tab = iota
	TabImages
	TabVolumes
	TabNetworks
	TabCompose
)

// Tabs lists all tabs in display order.
var Tabs = []Tab{TabContainers, TabImages, TabVolumes, TabNetworks, TabCompose}

func (t Tab) String() string {
	switch t {
	case TabContainers:
		return "containers"
	case TabImages:
		return "images"
	case TabVolumes:
		return "volumes"
	case TabNetworks:
		return "networks"
	case TabCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// SortMode orders the container list.
type SortMode int

const (
	SortByName SortMode = iota
	SortByStatus
	SortByCPU
)

func (m SortMode) String() string {
	switch m {
	case SortByName:
		return "name"
	case SortByStatus:
		return "status"
	case SortByCPU:
		return "cpu"
	default:
		return "name"
	}
}

// ErrorDisplayWindow is how long an error stays visible before it is
// considered expired. Expired errors are not purged until superseded.
const ErrorDisplayWindow = 3 * time.Second

// ErrorState is the single visible error slot: last message wins.
type ErrorState struct {
	Message string
	At      time.Time
}

// Active reports whether the error should still be shown at now.
func (e ErrorState) Active(now time.Time) bool {
	return e.Message != "" && now.Sub(e.At) < ErrorDisplayWindow
}

// AppState is an immutable point-in-time view of everything the UI renders.
// Collections are already filtered and sorted for the active filter text;
// Selected holds the effective bulk selection for the active tab, filtered
// against the live collection.
type AppState struct {
	Containers []engine.Container
	Images     []engine.Image
	Volumes    []engine.Volume
	Networks   []engine.Network
	Composes   []engine.ComposeProject

	Stats map[string]engine.ContainerStats
	Logs  []string

	Tab       Tab
	Cursor    int
	Filter    string
	Filtering bool
	Sort      SortMode
	BulkMode  bool
	Selected  map[string]bool

	LastError ErrorState
	Version   uint64
}

// ShouldRender reports whether the render loop needs to repaint: true iff
// the snapshot's version differs from the version last painted. Pure and
// idempotent; the render loop owns lastSeen.
func ShouldRender(lastSeen uint64, snap AppState) bool {
	return snap.Version != lastSeen
}

// ActiveLen returns the length of the active tab's (filtered) collection.
func (s AppState) ActiveLen() int {
	switch s.Tab {
	case TabContainers:
		return len(s.Containers)
	case TabImages:
		return len(s.Images)
	case TabVolumes:
		return len(s.Volumes)
	case TabNetworks:
		return len(s.Networks)
	case TabCompose:
		return len(s.Composes)
	default:
		return 0
	}
}

// CursorID returns the identity of the item under the cursor, or "" when the
// active collection is empty. Volumes and compose projects are keyed by name;
// the rest by id.
func (s AppState) CursorID() string {
	if s.Cursor < 0 || s.Cursor >= s.ActiveLen() {
		return ""
	}
	switch s.Tab {
	case TabContainers:
		return s.Containers[s.Cursor].ID
	case TabImages:
		return s.Images[s.Cursor].ID
	case TabVolumes:
		return s.Volumes[s.Cursor].Name
	case TabNetworks:
		return s.Networks[s.Cursor].ID
	case TabCompose:
		return s.Composes[s.Cursor].Name
	default:
		return ""
	}
}

// SelectedIDs returns the effective bulk selection in collection order.
func (s AppState) SelectedIDs() []string {
	if len(s.Selected) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.Selected))
	for _, id := range s.activeIDs() {
		if s.Selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s AppState) activeIDs() []string {
	ids := make([]string, 0, s.ActiveLen())
	switch s.Tab {
	case TabContainers:
		for _, c := range s.Containers {
			ids = append(ids, c.ID)
		}
	case TabImages:
		for _, i := range s.Images {
			ids = append(ids, i.ID)
		}
	case TabVolumes:
		for _, v := range s.Volumes {
			ids = append(ids, v.Name)
		}
	case TabNetworks:
		for _, n := range s.Networks {
			ids = append(ids, n.ID)
		}
	case TabCompose:
		for _, c := range s.Composes {
			ids = append(ids, c.Name)
		}
	}
	return ids
}
