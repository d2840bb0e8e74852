package engine

import "context"

// Engine is the surface portside needs from a container runtime. Reads are
// idempotent; mutations may fail and are always wrapped in safecall at the
// call site. Implemented by *Client and by test fakes.
type Engine interface {
	Ping(ctx context.Context) error

	ListContainers(ctx context.Context) ([]Container, error)
	ListImages(ctx context.Context) ([]Image, error)
	ListVolumes(ctx context.Context) ([]Volume, error)
	ListNetworks(ctx context.Context) ([]Network, error)
	ListComposeProjects(ctx context.Context) ([]ComposeProject, error)
	FetchStats(ctx context.Context, containerID string) (ContainerStats, error)
	FetchLogs(ctx context.Context, containerID string, tail int) ([]string, error)

	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	PauseContainer(ctx context.Context, id string) error
	UnpauseContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
	RenameContainer(ctx context.Context, id, name string) error
	CommitContainer(ctx context.Context, id, repo, tag string) error
	CopyToContainer(ctx context.Context, id, srcPath, destPath string) error
	RunImage(ctx context.Context, imageID, name string) error

	PullImage(ctx context.Context, ref string) error
	BuildImage(ctx context.Context, dir, tag string) error
	SaveImage(ctx context.Context, id, path string) error
	LoadImage(ctx context.Context, path string) error
	RemoveImage(ctx context.Context, id string) error

	CreateVolume(ctx context.Context, name string) error
	RemoveVolume(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, id string) error

	ComposeUp(ctx context.Context, project string) error
	ComposeDown(ctx context.Context, project string) error
	ComposeRemove(ctx context.Context, project string) error
	ComposePause(ctx context.Context, project string) error

	PruneSystem(ctx context.Context) error
}
