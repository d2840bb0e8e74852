package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/portside/portside/internal/engine"
)

func testContainers(ids ...string) []engine.Container {
	out := make([]engine.Container, 0, len(ids))
	for _, id := range ids {
		out = append(out, engine.Container{ID: id, Name: "c-" + id, State: "running"})
	}
	return out
}

func TestStore_VersionCountsEveryMutation(t *testing.T) {
	var s Store

	if got := s.Version(); got != 0 {
		t.Fatalf("fresh store version = %d, want 0", got)
	}

	mutations := []func(){
		func() { s.SetContainers(testContainers("a")) },
		func() { s.SetImages(nil) },
		func() { s.SetVolumes(nil) },
		func() { s.SetNetworks(nil) },
		func() { s.SetComposes(nil) },
		func() { s.SetLogs([]string{"line"}) },
		func() { s.SetError("boom") },
		func() { s.ClearError() },
		func() { s.SetTab(TabImages) },
		func() { s.SetFilter("x") },
		func() { s.CycleSort() },
		func() { s.MoveCursor(1) },
		func() { s.ToggleBulkMode() },
		func() { s.ToggleSelected() },
		func() { s.SelectAll() },
		func() { s.ClearSelection() },
		func() { s.SetStat("a", engine.ContainerStats{CPU: "1.0%"}) },
		func() { s.SetStats(nil) },
	}

	prev := s.Version()
	for i, mutate := range mutations {
		mutate()
		got := s.Version()
		if got != prev+1 {
			t.Fatalf("mutation %d: version = %d, want %d (exactly one bump per mutation)", i, got, prev+1)
		}
		prev = got
	}
	if prev != uint64(len(mutations)) {
		t.Fatalf("final version = %d, want mutation count %d", prev, len(mutations))
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("a", "b"))
	s.SetLogs([]string{"one", "two"})
	s.SetStat("a", engine.ContainerStats{CPU: "5.0%", Memory: "10.0MB"})

	snap := s.Snapshot()
	snap.Containers[0].Name = "mutated"
	snap.Logs[0] = "mutated"
	snap.Stats["a"] = engine.ContainerStats{CPU: "99.9%"}

	fresh := s.Snapshot()
	if fresh.Containers[0].Name == "mutated" {
		t.Fatal("snapshot shares container slice with store")
	}
	if fresh.Logs[0] == "mutated" {
		t.Fatal("snapshot shares log slice with store")
	}
	if fresh.Stats["a"].CPU == "99.9%" {
		t.Fatal("snapshot shares stats map with store")
	}
}

func TestStore_SnapshotNeverTorn(t *testing.T) {
	// Writers flip every collection between two consistent generations; a
	// reader must never see fields from both generations at once.
	var s Store
	genA := testContainers("a1", "a2")
	genB := testContainers("b1", "b2")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				s.SetContainers(genA)
			} else {
				s.SetContainers(genB)
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		snap := s.Snapshot()
		if len(snap.Containers) == 0 {
			continue
		}
		gen := snap.Containers[0].ID[0]
		for _, c := range snap.Containers {
			if c.ID[0] != gen {
				t.Errorf("torn snapshot: mixed generations %q", snap.Containers)
			}
		}
	}
	close(stop)
	wg.Wait()
}

func TestShouldRender(t *testing.T) {
	snap := AppState{Version: 7}

	if !ShouldRender(6, snap) {
		t.Fatal("ShouldRender(6, v7) = false, want true")
	}
	if ShouldRender(7, snap) {
		t.Fatal("ShouldRender(7, v7) = true, want false")
	}
	// Idempotent: same inputs, same answer.
	if ShouldRender(7, snap) != ShouldRender(7, snap) {
		t.Fatal("ShouldRender is not idempotent")
	}
}

func TestStore_SelectionFilteredAgainstLiveCollection(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("a", "b", "c"))
	s.SelectAll()

	// "b" disappears from the next poll.
	s.SetContainers(testContainers("a", "c"))

	snap := s.Snapshot()
	ids := snap.SelectedIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("effective selection = %v, want [a c]", ids)
	}

	// "b" comes back: it was never eagerly deselected.
	s.SetContainers(testContainers("a", "b", "c"))
	ids = s.Snapshot().SelectedIDs()
	if len(ids) != 3 {
		t.Fatalf("selection after reappearance = %v, want [a b c]", ids)
	}
}

func TestStore_SelectionScopedPerTab(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("a"))
	s.SetImages([]engine.Image{{ID: "img1", Tags: []string{"x:latest"}}})
	s.SelectAll()

	s.SetTab(TabImages)
	if ids := s.Snapshot().SelectedIDs(); len(ids) != 0 {
		t.Fatalf("images tab inherited selection %v from containers tab", ids)
	}

	s.SetTab(TabContainers)
	if ids := s.Snapshot().SelectedIDs(); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("containers selection lost across tab switch: %v", ids)
	}
}

func TestStore_SetTabResetsTransientState(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("a", "b"))
	s.SetFilter("c-b")
	s.ToggleBulkMode()
	s.SetLogs([]string{"stale"})

	s.SetTab(TabVolumes)

	snap := s.Snapshot()
	if snap.Filter != "" || snap.BulkMode || snap.Cursor != 0 || len(snap.Logs) != 0 {
		t.Fatalf("tab switch left transient state: %+v", snap)
	}
}

func TestStore_ErrorWindow(t *testing.T) {
	var s Store
	base := time.Unix(5000, 0)
	current := base
	s.now = func() time.Time { return current }

	s.SetError("engine unavailable")

	snap := s.Snapshot()
	if !snap.LastError.Active(base.Add(2 * time.Second)) {
		t.Fatal("error inactive within the display window")
	}
	if snap.LastError.Active(base.Add(4 * time.Second)) {
		t.Fatal("error still active past the display window")
	}
	if snap.LastError.Message == "" {
		t.Fatal("expired error purged instead of retained until superseded")
	}
}

func TestStore_MoveCursorClampsAndClearsLogs(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("a", "b", "c"))
	s.SetLogs([]string{"old"})

	s.MoveCursor(10)
	snap := s.Snapshot()
	if snap.Cursor != 2 {
		t.Fatalf("cursor = %d, want clamped to 2", snap.Cursor)
	}
	if len(snap.Logs) != 0 {
		t.Fatal("logs not cleared when container focus changed")
	}

	s.MoveCursor(-10)
	if got := s.Snapshot().Cursor; got != 0 {
		t.Fatalf("cursor = %d, want 0", got)
	}
}

func TestStore_FilterNarrowsAndClampsCursor(t *testing.T) {
	var s Store
	containers := testContainers("a", "b", "c")
	containers[1].Image = "postgres:16"
	s.SetContainers(containers)
	s.MoveCursor(2)

	s.SetFilter("postgres")

	snap := s.Snapshot()
	if len(snap.Containers) != 1 || snap.Containers[0].ID != "b" {
		t.Fatalf("filtered containers = %+v, want just b", snap.Containers)
	}
	if snap.Cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", snap.Cursor)
	}
}

func TestStore_SortByCPUUsesStats(t *testing.T) {
	var s Store
	s.SetContainers(testContainers("low", "high", "none"))
	s.SetStat("low", engine.ContainerStats{CPU: "1.5%"})
	s.SetStat("high", engine.ContainerStats{CPU: "80.0%"})

	s.CycleSort() // status
	s.CycleSort() // cpu

	snap := s.Snapshot()
	if snap.Containers[0].ID != "high" || snap.Containers[1].ID != "low" || snap.Containers[2].ID != "none" {
		t.Fatalf("cpu sort order = %v", snap.Containers)
	}
}

func TestStore_ConcurrentMutatorsKeepVersionExact(t *testing.T) {
	var s Store
	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.SetError(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	if got := s.Version(); got != writers*perWriter {
		t.Fatalf("version = %d, want %d (one bump per mutation, no losses)", got, writers*perWriter)
	}
}
