package state

import (
	"sort"
	"strconv"
	"strings"

	"github.com/portside/portside/internal/engine"
)

// Filtering matches the filter text case-insensitively against the fields a
// user would reach for: container name/image, image id/tags, and names for
// everything else. Sorting applies to containers only; the other classes
// keep a stable name/id order.

func filterContainers(containers []engine.Container, filter string, mode SortMode, stats map[string]engine.ContainerStats) []engine.Container {
	out := make([]engine.Container, 0, len(containers))
	ft := strings.ToLower(filter)
	for _, c := range containers {
		if ft == "" || strings.Contains(strings.ToLower(c.Name), ft) || strings.Contains(strings.ToLower(c.Image), ft) {
			out = append(out, c)
		}
	}
	switch mode {
	case SortByStatus:
		sort.SliceStable(out, func(i, j int) bool { return out[i].State < out[j].State })
	case SortByCPU:
		sort.SliceStable(out, func(i, j int) bool {
			return cpuValue(stats, out[i].ID) > cpuValue(stats, out[j].ID)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

// cpuValue parses a "12.3%" sample; unknown containers sort last.
func cpuValue(stats map[string]engine.ContainerStats, id string) float64 {
	st, ok := stats[id]
	if !ok {
		return -1
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(st.CPU, "%"), 64)
	if err != nil {
		return -1
	}
	return v
}

func filterImages(images []engine.Image, filter string) []engine.Image {
	out := make([]engine.Image, 0, len(images))
	ft := strings.ToLower(filter)
	for _, img := range images {
		if ft == "" || strings.Contains(strings.ToLower(img.ShortID), ft) || tagMatches(img.Tags, ft) {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return firstTag(out[i]) < firstTag(out[j]) })
	return out
}

func tagMatches(tags []string, ft string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), ft) {
			return true
		}
	}
	return false
}

func firstTag(img engine.Image) string {
	if len(img.Tags) > 0 {
		return img.Tags[0]
	}
	return img.ShortID
}

func filterVolumes(volumes []engine.Volume, filter string) []engine.Volume {
	out := make([]engine.Volume, 0, len(volumes))
	ft := strings.ToLower(filter)
	for _, v := range volumes {
		if ft == "" || strings.Contains(strings.ToLower(v.Name), ft) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterNetworks(networks []engine.Network, filter string) []engine.Network {
	out := make([]engine.Network, 0, len(networks))
	ft := strings.ToLower(filter)
	for _, n := range networks {
		if ft == "" || strings.Contains(strings.ToLower(n.Name), ft) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterComposes(composes []engine.ComposeProject, filter string) []engine.ComposeProject {
	out := make([]engine.ComposeProject, 0, len(composes))
	ft := strings.ToLower(filter)
	for _, c := range composes {
		if ft == "" || strings.Contains(strings.ToLower(c.Name), ft) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
