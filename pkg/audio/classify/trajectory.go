package classify

import (
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Trajectory is the coarse direction of a pitch contour
type Trajectory string

const (
	Rising  Trajectory = "rising"
	Falling Trajectory = "falling"
	Stable  Trajectory = "stable"
)

// trajectoryThreshold is the relative change between first and last third
// needed to call a contour rising or falling
const trajectoryThreshold = 0.1

// Trajectories lists every value in tie-break order
func Trajectories() []Trajectory {
	return []Trajectory{Stable, Rising, Falling}
}

// ClassifyTrajectory compares the mean of the last third of a contour with
// the mean of the first third. A zero mean on either side means no pitch
// data and is stable.
func ClassifyTrajectory(contour []float64) Trajectory {
	if len(contour) < 3 {
		return Stable
	}

	third := len(contour) / 3
	first := analyzers.Mean(contour[:third])
	last := analyzers.Mean(contour[len(contour)-third:])

	if first == 0 || last == 0 {
		return Stable
	}

	switch {
	case last > first*(1+trajectoryThreshold):
		return Rising
	case last < first*(1-trajectoryThreshold):
		return Falling
	default:
		return Stable
	}
}

// Mode returns the most common trajectory. Ties go to the first value in
// Trajectories order, and an empty input is stable.
func Mode(trajectories []Trajectory) Trajectory {
	counts := make(map[Trajectory]int, 3)
	for _, t := range trajectories {
		counts[t]++
	}

	best := Stable
	bestCount := 0
	for _, t := range Trajectories() {
		if counts[t] > bestCount {
			best = t
			bestCount = counts[t]
		}
	}
	return best
}
