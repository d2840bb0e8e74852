package engine

import (
	"strings"
	"time"
)

// composeProjectLabel marks containers managed by docker compose.
const (
	composeProjectLabel = "com.docker.compose.project"
	composeFilesLabel   = "com.docker.compose.project.config_files"
)

// Container describes one container as of the last successful listing.
type Container struct {
	ID      string
	ShortID string
	Name    string
	State   string // running, exited, paused, created
	Status  string // human readable, e.g. "Up 2 hours"
	Image   string
	Project string // compose project or "standalone"
}

// Image describes a local image.
type Image struct {
	ID      string
	ShortID string
	Tags    []string
	SizeMB  float64
	Created string // yyyy-mm-dd
}

// Volume describes a named volume.
type Volume struct {
	Name       string
	Driver     string
	Mountpoint string
}

// Network describes a network and its first subnet when configured.
type Network struct {
	ID     string
	Name   string
	Driver string
	Subnet string
}

// ComposeProject aggregates the containers sharing a compose project label.
type ComposeProject struct {
	Name        string
	ConfigFiles string
	Status      string // running, exited, ... or "mixed"
}

// ContainerStats is one CPU/memory sample for a running container.
type ContainerStats struct {
	CPU    string // e.g. "3.2%"
	Memory string // e.g. "128.5MB"
}

// Wire payloads for the Engine API. Only the fields portside reads.

type containerJSON struct {
	ID     string            `json:"Id"`
	Names  []string          `json:"Names"`
	Image  string            `json:"Image"`
	State  string            `json:"State"`
	Status string            `json:"Status"`
	Labels map[string]string `json:"Labels"`
}

func (c containerJSON) toContainer() Container {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	project := c.Labels[composeProjectLabel]
	if project == "" {
		project = "standalone"
	}
	return Container{
		ID:      c.ID,
		ShortID: shortID(c.ID),
		Name:    name,
		State:   c.State,
		Status:  c.Status,
		Image:   c.Image,
		Project: project,
	}
}

type imageJSON struct {
	ID       string   `json:"Id"`
	RepoTags []string `json:"RepoTags"`
	Size     int64    `json:"Size"`
	Created  int64    `json:"Created"`
}

func (i imageJSON) toImage() Image {
	tags := i.RepoTags
	if len(tags) == 0 {
		tags = []string{"<none>"}
	}
	created := ""
	if i.Created > 0 {
		created = time.Unix(i.Created, 0).UTC().Format("2006-01-02")
	}
	return Image{
		ID:      i.ID,
		ShortID: shortID(i.ID),
		Tags:    tags,
		SizeMB:  float64(i.Size) / (1024 * 1024),
		Created: created,
	}
}

type volumeListJSON struct {
	Volumes []volumeJSON `json:"Volumes"`
}

type volumeJSON struct {
	Name       string `json:"Name"`
	Driver     string `json:"Driver"`
	Mountpoint string `json:"Mountpoint"`
}

func (v volumeJSON) toVolume() Volume {
	driver := v.Driver
	if driver == "" {
		driver = "local"
	}
	mount := v.Mountpoint
	if mount == "" {
		mount = "n/a"
	}
	return Volume{Name: v.Name, Driver: driver, Mountpoint: mount}
}

type networkJSON struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Driver string `json:"Driver"`
	IPAM   struct {
		Config []struct {
			Subnet string `json:"Subnet"`
		} `json:"Config"`
	} `json:"IPAM"`
}

func (n networkJSON) toNetwork() Network {
	subnet := "n/a"
	if len(n.IPAM.Config) > 0 && n.IPAM.Config[0].Subnet != "" {
		subnet = n.IPAM.Config[0].Subnet
	}
	driver := n.Driver
	if driver == "" {
		driver = "bridge"
	}
	return Network{ID: n.ID, Name: n.Name, Driver: driver, Subnet: subnet}
}

type statsJSON struct {
	CPUStats    cpuStatsJSON `json:"cpu_stats"`
	PreCPUStats cpuStatsJSON `json:"precpu_stats"`
	MemoryStats struct {
		Usage uint64 `json:"usage"`
	} `json:"memory_stats"`
}

type cpuStatsJSON struct {
	CPUUsage struct {
		TotalUsage  uint64   `json:"total_usage"`
		PercpuUsage []uint64 `json:"percpu_usage"`
	} `json:"cpu_usage"`
	SystemCPUUsage uint64 `json:"system_cpu_usage"`
	OnlineCPUs     int    `json:"online_cpus"`
}

// shortID trims an id to the familiar 12-character form, keeping any
// digest prefix intact enough to stay recognizable.
func shortID(id string) string {
	trimmed := strings.TrimPrefix(id, "sha256:")
	if len(trimmed) > 12 {
		return trimmed[:12]
	}
	return trimmed
}
