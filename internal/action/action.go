// Package action turns user commands into engine calls. The dispatcher
// validates parameters before touching the engine, applies bulk actions
// per target without aborting on partial failure, then invalidates the
// affected cache classes and kicks the pollers so the UI converges without
// waiting out a poll interval.
package action

// Action identifies one user-triggerable operation.
type Action int

const (
	StartContainer Action = iota
	StopContainer
	RestartContainer
	PauseContainer
	UnpauseContainer
	RemoveContainer
	RenameContainer
	CommitContainer
	CopyToContainer
	RunImage
	PullImage
	BuildImage
	SaveImage
	LoadImage
	RemoveImage
	CreateVolume
	RemoveVolume
	RemoveNetwork
	ComposeUp
	ComposeDown
	ComposeRemove
	ComposePause
	PruneSystem
)

func (a Action) String() string {
	switch a {
	case StartContainer:
		return "start container"
	case StopContainer:
		return "stop container"
	case RestartContainer:
		return "restart container"
	case PauseContainer:
		return "pause container"
	case UnpauseContainer:
		return "unpause container"
	case RemoveContainer:
		return "remove container"
	case RenameContainer:
		return "rename container"
	case CommitContainer:
		return "commit container"
	case CopyToContainer:
		return "copy to container"
	case RunImage:
		return "run image"
	case PullImage:
		return "pull image"
	case BuildImage:
		return "build image"
	case SaveImage:
		return "save image"
	case LoadImage:
		return "load image"
	case RemoveImage:
		return "remove image"
	case CreateVolume:
		return "create volume"
	case RemoveVolume:
		return "remove volume"
	case RemoveNetwork:
		return "remove network"
	case ComposeUp:
		return "compose up"
	case ComposeDown:
		return "compose down"
	case ComposeRemove:
		return "compose remove"
	case ComposePause:
		return "compose pause"
	case PruneSystem:
		return "prune system"
	default:
		return "unknown action"
	}
}

// Params carries the action-specific inputs; unused fields stay empty.
type Params struct {
	Name string // new container name, run name, or volume name
	Repo string // commit repository
	Tag  string // commit or build tag
	Src  string // host-side source path for copy-in
	Dest string // in-container destination path for copy-in
	Ref  string // image reference for pull
	Dir  string // build context directory
	Path string // archive path for save/load
}

// requiresTarget reports whether the action operates on selected ids.
func requiresTarget(a Action) bool {
	switch a {
	case PullImage, BuildImage, LoadImage, CreateVolume, PruneSystem:
		return false
	default:
		return true
	}
}
