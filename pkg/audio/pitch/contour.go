package pitch

import (
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Contour is a time-ordered sequence of voiced pitch estimates in Hz.
// A contour of a single 0 means no pitch data was found.
type Contour []float64

// NoData is the contour returned when no frame produced a pitch
func NoData() Contour {
	return Contour{0}
}

// HasPitch reports whether any frame carries a positive pitch
func (c Contour) HasPitch() bool {
	for _, f := range c {
		if f > 0 {
			return true
		}
	}
	return false
}

// Mean returns the average pitch, 0 when unknown
func (c Contour) Mean() float64 {
	return analyzers.Mean(c)
}

// Std returns the population standard deviation of the contour
func (c Contour) Std() float64 {
	return analyzers.PopStd(c)
}

// Range returns max - min
func (c Contour) Range() float64 {
	if len(c) == 0 {
		return 0
	}
	return analyzers.Max(c) - analyzers.Min(c)
}

// VariationCoefficient is std/mean, 0 when the mean is 0
func (c Contour) VariationCoefficient() float64 {
	mean := c.Mean()
	if mean <= 0 {
		return 0
	}
	return analyzers.Finite(c.Std() / mean)
}
