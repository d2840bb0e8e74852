package action

import (
	"context"
	"fmt"

	"github.com/portside/portside/internal/cache"
	"github.com/portside/portside/internal/engine"
	"github.com/portside/portside/internal/poll"
	"github.com/portside/portside/internal/safecall"
	"github.com/portside/portside/internal/state"
)

// Dispatcher applies user actions to the engine and keeps the store, cache
// and pollers consistent afterwards.
type Dispatcher struct {
	store   *state.Store
	eng     engine.Engine
	cache   *cache.Cache
	pollers *poll.Set
}

// NewDispatcher wires a dispatcher. pollers may be nil when nothing needs
// kicking.
func NewDispatcher(store *state.Store, eng engine.Engine, c *cache.Cache, pollers *poll.Set) *Dispatcher {
	return &Dispatcher{store: store, eng: eng, cache: c, pollers: pollers}
}

// Dispatch runs act against every target independently. A failed target is
// surfaced and the rest still run; with several failures the last message
// wins the single visible error slot while every failure is logged. Returns
// true only when every target succeeded.
//
// Actions already handed to the engine are not cancelled, but ctx liveness
// is checked before each per-target call so a bulk batch stops issuing new
// work during shutdown.
func (d *Dispatcher) Dispatch(ctx context.Context, act Action, targets []string, p Params) bool {
	// A fresh action supersedes whatever error was on display.
	d.store.ClearError()

	if err := validate(act, targets, p); err != nil {
		safecall.Report(d.store, act.String(), err)
		return false
	}

	ok := true
	if requiresTarget(act) {
		for _, id := range targets {
			if ctx.Err() != nil {
				ok = false
				break
			}
			op := fmt.Sprintf("%s %s", act, shortTarget(id))
			if !safecall.Do(d.store, op, func() error { return d.call(ctx, act, id, p) }) {
				ok = false
			}
		}
	} else if ctx.Err() == nil {
		ok = safecall.Do(d.store, act.String(), func() error { return d.call(ctx, act, "", p) })
	} else {
		ok = false
	}

	for _, class := range affectedClasses(act) {
		d.cache.Invalidate(class)
	}
	d.kick(act)
	return ok
}

func (d *Dispatcher) call(ctx context.Context, act Action, id string, p Params) error {
	switch act {
	case StartContainer:
		return d.eng.StartContainer(ctx, id)
	case StopContainer:
		return d.eng.StopContainer(ctx, id)
	case RestartContainer:
		return d.eng.RestartContainer(ctx, id)
	case PauseContainer:
		return d.eng.PauseContainer(ctx, id)
	case UnpauseContainer:
		return d.eng.UnpauseContainer(ctx, id)
	case RemoveContainer:
		return d.eng.RemoveContainer(ctx, id)
	case RenameContainer:
		return d.eng.RenameContainer(ctx, id, p.Name)
	case CommitContainer:
		return d.eng.CommitContainer(ctx, id, p.Repo, p.Tag)
	case CopyToContainer:
		return d.eng.CopyToContainer(ctx, id, p.Src, p.Dest)
	case RunImage:
		return d.eng.RunImage(ctx, id, p.Name)
	case PullImage:
		return d.eng.PullImage(ctx, p.Ref)
	case BuildImage:
		return d.eng.BuildImage(ctx, p.Dir, p.Tag)
	case SaveImage:
		return d.eng.SaveImage(ctx, id, p.Path)
	case LoadImage:
		return d.eng.LoadImage(ctx, p.Path)
	case RemoveImage:
		return d.eng.RemoveImage(ctx, id)
	case CreateVolume:
		return d.eng.CreateVolume(ctx, p.Name)
	case RemoveVolume:
		return d.eng.RemoveVolume(ctx, id)
	case RemoveNetwork:
		return d.eng.RemoveNetwork(ctx, id)
	case ComposeUp:
		return d.eng.ComposeUp(ctx, id)
	case ComposeDown:
		return d.eng.ComposeDown(ctx, id)
	case ComposeRemove:
		return d.eng.ComposeRemove(ctx, id)
	case ComposePause:
		return d.eng.ComposePause(ctx, id)
	case PruneSystem:
		return d.eng.PruneSystem(ctx)
	default:
		return fmt.Errorf("unknown action %d", act)
	}
}

// affectedClasses maps an action onto the cache key prefixes it may have
// invalidated. An empty prefix means everything.
func affectedClasses(act Action) []string {
	switch act {
	case StartContainer, StopContainer, RestartContainer, PauseContainer,
		UnpauseContainer, RemoveContainer, RenameContainer, CopyToContainer:
		return []string{"containers", "stats"}
	case RunImage:
		return []string{"containers", "stats"}
	case CommitContainer:
		return []string{"images"}
	case PullImage, BuildImage, LoadImage, RemoveImage, SaveImage:
		return []string{"images"}
	case CreateVolume, RemoveVolume:
		return []string{"volumes"}
	case RemoveNetwork:
		return []string{"networks"}
	case ComposeUp, ComposeDown, ComposeRemove, ComposePause:
		return []string{"containers", "stats", "composes"}
	case PruneSystem:
		return []string{""}
	default:
		return nil
	}
}

// kick forces the pollers for the affected classes so the next cycle runs
// now instead of at the end of the current interval.
func (d *Dispatcher) kick(act Action) {
	if d.pollers == nil {
		return
	}
	for _, class := range affectedClasses(act) {
		switch class {
		case "":
			d.pollers.Containers.Kick()
			d.pollers.Resources.Kick()
			d.pollers.Stats.Kick()
		case "containers":
			d.pollers.Containers.Kick()
		case "stats":
			d.pollers.Stats.Kick()
		default:
			d.pollers.Resources.Kick()
		}
	}
}

// shortTarget truncates long engine ids for log and error messages.
func shortTarget(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
