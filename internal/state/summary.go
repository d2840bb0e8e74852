package state

import (
	"strconv"
	"strings"
)

// Summary aggregates a snapshot for the status footer: container state
// distribution, combined resource usage, and image footprint. Pure functions
// over a snapshot — no lock, no engine access.
type Summary struct {
	Containers int
	Running    int
	Stopped    int
	Paused     int

	TotalCPU float64 // summed across sampled running containers
	TotalMem float64 // MB

	Images        int
	ImagesSizeMB  float64
	UntaggedCount int

	Volumes  int
	Networks int
	Composes int
}

// Summarize computes a Summary from a snapshot.
func Summarize(snap AppState) Summary {
	sum := Summary{
		Containers: len(snap.Containers),
		Images:     len(snap.Images),
		Volumes:    len(snap.Volumes),
		Networks:   len(snap.Networks),
		Composes:   len(snap.Composes),
	}
	for _, c := range snap.Containers {
		switch c.State {
		case "running":
			sum.Running++
		case "paused":
			sum.Paused++
		default:
			sum.Stopped++
		}
		if st, ok := snap.Stats[c.ID]; ok {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(st.CPU, "%"), 64); err == nil {
				sum.TotalCPU += v
			}
			if v, err := strconv.ParseFloat(strings.TrimSuffix(st.Memory, "MB"), 64); err == nil {
				sum.TotalMem += v
			}
		}
	}
	for _, img := range snap.Images {
		sum.ImagesSizeMB += img.SizeMB
		if len(img.Tags) == 0 || (len(img.Tags) == 1 && img.Tags[0] == "<none>") {
			sum.UntaggedCount++
		}
	}
	return sum
}
