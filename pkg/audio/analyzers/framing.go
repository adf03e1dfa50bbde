package analyzers

import (
	"github.com/RyanBlaney/sonido-sonar/algorithms/temporal"
)

const (
	// DefaultFrameLength is the analysis frame used for RMS and STFT work
	DefaultFrameLength = 2048
	// DefaultHopLength is the step between consecutive frames
	DefaultHopLength = 512
)

// SampleBuffer is a mono PCM buffer with its sample rate
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples
func (b SampleBuffer) Len() int {
	return len(b.Samples)
}

// Duration returns the buffer length in seconds
func (b SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Slice returns the sub-range [start, end) clamped to the buffer bounds.
// The samples are shared with the parent buffer.
func (b SampleBuffer) Slice(start, end int) SampleBuffer {
	start = max(0, min(start, len(b.Samples)))
	end = max(start, min(end, len(b.Samples)))
	return SampleBuffer{Samples: b.Samples[start:end], SampleRate: b.SampleRate}
}

// CenterPad surrounds a signal with pad zeros on each side so that frame t
// is centered on sample t*hop
func CenterPad(signal []float64, pad int) []float64 {
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)
	return padded
}

// FrameRMS computes centered RMS energy frames. There are 1 + len/hop frames;
// signals shorter than two samples produce none.
func FrameRMS(signal []float64, frameLength, hopLength int) []float64 {
	if len(signal) < 2 || frameLength <= 0 || hopLength <= 0 {
		return []float64{}
	}

	padded := CenterPad(signal, frameLength/2)
	return temporal.NewEnvelope().ComputeRMS(padded, frameLength, hopLength)
}

// FramesToTime converts a frame index to seconds
func FramesToTime(frame, sampleRate, hopLength int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(frame*hopLength) / float64(sampleRate)
}

// TimeToSample converts seconds to a sample index, truncating
func TimeToSample(seconds float64, sampleRate int) int {
	return int(seconds * float64(sampleRate))
}
