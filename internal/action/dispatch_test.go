package action

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portside/portside/internal/cache"
	"github.com/portside/portside/internal/engine"
	"github.com/portside/portside/internal/state"
)

// fakeEngine records mutations; the embedded nil interface panics if the
// dispatcher reaches for anything untested.
type fakeEngine struct {
	engine.Engine

	mu      sync.Mutex
	stopped []string
	started []string
	copies  []string
	pruned  int
	failID  string
}

func (f *fakeEngine) StopContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failID {
		return &engine.APIError{Status: http.StatusNotFound, Op: "stop", Message: "no such container: " + id}
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeEngine) StartContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, id)
	return nil
}

func (f *fakeEngine) CopyToContainer(_ context.Context, id, src, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies = append(f.copies, id+":"+src+":"+dest)
	return nil
}

func (f *fakeEngine) PruneSystem(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned++
	return nil
}

func TestDispatch_BulkContinuesPastFailure(t *testing.T) {
	var store state.Store
	eng := &fakeEngine{failID: "b"}
	d := NewDispatcher(&store, eng, cache.New(), nil)

	ok := d.Dispatch(context.Background(), StopContainer, []string{"a", "b", "c"}, Params{})

	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c"}, eng.stopped, "surviving targets must still be stopped")

	snap := store.Snapshot()
	require.NotEmpty(t, snap.LastError.Message)
	assert.Contains(t, snap.LastError.Message, "b", "visible error should name the failed target")
}

func TestDispatch_CopyRejectsTraversalWithoutEngineCall(t *testing.T) {
	var store state.Store
	eng := &fakeEngine{}
	d := NewDispatcher(&store, eng, cache.New(), nil)

	ok := d.Dispatch(context.Background(), CopyToContainer, []string{"c1"},
		Params{Src: "../../etc/passwd", Dest: "/tmp/x"})

	assert.False(t, ok)
	assert.Empty(t, eng.copies, "validation failure must not reach the engine")
	assert.Contains(t, store.Snapshot().LastError.Message, "traversal")
}

func TestDispatch_CopyRejectsHomeShortcutAndMissingSource(t *testing.T) {
	var store state.Store
	d := NewDispatcher(&store, &fakeEngine{}, cache.New(), nil)

	ok := d.Dispatch(context.Background(), CopyToContainer, []string{"c1"},
		Params{Src: "~/secrets", Dest: "/tmp/x"})
	assert.False(t, ok)

	ok = d.Dispatch(context.Background(), CopyToContainer, []string{"c1"},
		Params{Src: filepath.Join(t.TempDir(), "nope"), Dest: "/tmp/x"})
	assert.False(t, ok)
	assert.Contains(t, store.Snapshot().LastError.Message, "does not exist")
}

func TestDispatch_CopyValidSourceProceeds(t *testing.T) {
	var store state.Store
	eng := &fakeEngine{}
	d := NewDispatcher(&store, eng, cache.New(), nil)

	src := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	ok := d.Dispatch(context.Background(), CopyToContainer, []string{"c1"},
		Params{Src: src, Dest: "/tmp/payload.txt"})

	assert.True(t, ok)
	require.Len(t, eng.copies, 1)
	assert.True(t, strings.HasPrefix(eng.copies[0], "c1:"))
}

func TestDispatch_RejectsEmptyTargetSet(t *testing.T) {
	var store state.Store
	eng := &fakeEngine{}
	d := NewDispatcher(&store, eng, cache.New(), nil)

	ok := d.Dispatch(context.Background(), StopContainer, nil, Params{})

	assert.False(t, ok)
	assert.Empty(t, eng.stopped)
	assert.Contains(t, store.Snapshot().LastError.Message, "no target selected")
}

func TestDispatch_ClearsSupersededError(t *testing.T) {
	var store state.Store
	store.SetError("stale failure")
	d := NewDispatcher(&store, &fakeEngine{}, cache.New(), nil)

	ok := d.Dispatch(context.Background(), StartContainer, []string{"a"}, Params{})

	assert.True(t, ok)
	assert.Empty(t, store.Snapshot().LastError.Message)
}

func TestDispatch_InvalidatesAffectedCacheClass(t *testing.T) {
	var store state.Store
	c := cache.New()
	fetches := 0
	fetch := func() ([]string, error) {
		fetches++
		return []string{"cached"}, nil
	}
	_, err := cache.GetOrFetch(c, "containers", time.Hour, fetch)
	require.NoError(t, err)

	d := NewDispatcher(&store, &fakeEngine{}, c, nil)
	d.Dispatch(context.Background(), StopContainer, []string{"a"}, Params{})

	_, err = cache.GetOrFetch(c, "containers", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "mutation must force the next fetch past the TTL")
}

func TestDispatch_PruneInvalidatesEverything(t *testing.T) {
	var store state.Store
	c := cache.New()
	for _, key := range []string{"containers", "images", "volumes"} {
		_, err := cache.GetOrFetch(c, key, time.Hour, func() (int, error) { return 1, nil })
		require.NoError(t, err)
	}

	eng := &fakeEngine{}
	d := NewDispatcher(&store, eng, c, nil)
	ok := d.Dispatch(context.Background(), PruneSystem, nil, Params{})

	assert.True(t, ok)
	assert.Equal(t, 1, eng.pruned)
	assert.Zero(t, c.Len())
}

func TestDispatch_StopsIssuingAfterCancellation(t *testing.T) {
	var store state.Store
	eng := &fakeEngine{}
	d := NewDispatcher(&store, eng, cache.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := d.Dispatch(ctx, StopContainer, []string{"a", "b"}, Params{})

	assert.False(t, ok)
	assert.Empty(t, eng.stopped, "no new work after shutdown")
}
