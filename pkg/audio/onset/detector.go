package onset

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Config contains onset detection parameters
type Config struct {
	FrameLength int
	HopLength   int
	MelBands    int

	// Fine-grained onsets
	Delta       float64
	WaitSeconds float64

	// Coarse onsets used for segment counting. The wait is in frames.
	MajorDelta      float64
	MajorWaitFrames int
}

// DefaultConfig returns the standard onset configuration
func DefaultConfig() Config {
	return Config{
		FrameLength:     2048,
		HopLength:       512,
		MelBands:        128,
		Delta:           0.07,
		WaitSeconds:     0.03,
		MajorDelta:      0.1,
		MajorWaitFrames: 1,
	}
}

// Result holds both onset passes over one buffer
type Result struct {
	// Onsets are backtracked onset times in seconds, strictly increasing
	Onsets []float64
	// Major are coarse onset times in seconds, not backtracked
	Major []float64
	// PeakCount is the number of fine peaks before backtracking
	PeakCount int
}

// Detector finds speech onsets from mel spectral flux
type Detector struct {
	config Config
	logger logging.Logger
}

// NewDetector creates an onset detector
func NewDetector(config Config) *Detector {
	return &Detector{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "onset_detector",
		}),
	}
}

// Strength computes the onset strength envelope: the mean positive change in
// log-mel power between consecutive frames, shifted so each value lines up
// with the frame where the change lands
func (d *Detector) Strength(buf analyzers.SampleBuffer) []float64 {
	if buf.Len() < 2 || buf.SampleRate <= 0 {
		return []float64{}
	}

	spec := analyzers.NewSpectralAnalyzer(buf.SampleRate).STFT(buf.Samples, d.config.FrameLength, d.config.HopLength)
	if spec.TimeFrames == 0 {
		return []float64{}
	}

	filters := analyzers.MelFilterBank(buf.SampleRate, d.config.FrameLength, d.config.MelBands)
	melDB := analyzers.PowerToDB(analyzers.MelPower(spec, filters), 1.0, 1e-10, 80.0)

	envelope := make([]float64, spec.TimeFrames)
	lag := 1
	offset := lag + d.config.FrameLength/(2*d.config.HopLength)

	for t := offset; t < len(envelope); t++ {
		cur := melDB[t-offset+lag]
		prev := melDB[t-offset]
		sum := 0.0
		for m := range cur {
			if diff := cur[m] - prev[m]; diff > 0 {
				sum += diff
			}
		}
		envelope[t] = sum / float64(len(cur))
	}

	return envelope
}

// Detect returns backtracked onset times in seconds
func (d *Detector) Detect(buf analyzers.SampleBuffer) []float64 {
	return d.Analyze(buf).Onsets
}

// DetectMajor returns coarse onset times in seconds
func (d *Detector) DetectMajor(buf analyzers.SampleBuffer) []float64 {
	return d.Analyze(buf).Major
}

// Analyze runs both onset passes over a shared strength envelope
func (d *Detector) Analyze(buf analyzers.SampleBuffer) Result {
	result := Result{Onsets: []float64{}, Major: []float64{}}

	envelope := Normalize(d.Strength(buf))
	if len(envelope) == 0 {
		return result
	}

	wait := SecondsToFrames(d.config.WaitSeconds, buf.SampleRate, d.config.HopLength)
	fine := PickPeaks(envelope, NewPickParams(buf.SampleRate, d.config.HopLength, d.config.Delta, wait))
	major := PickPeaks(envelope, NewPickParams(buf.SampleRate, d.config.HopLength, d.config.MajorDelta, d.config.MajorWaitFrames))

	result.PeakCount = len(fine)
	result.Onsets = d.framesToTimes(Backtrack(fine, envelope), buf)
	result.Major = d.framesToTimes(major, buf)

	d.logger.Debug("Onset detection completed", logging.Fields{
		"frames":       len(envelope),
		"peaks":        result.PeakCount,
		"onsets":       len(result.Onsets),
		"major_onsets": len(result.Major),
	})

	return result
}

func (d *Detector) framesToTimes(frames []int, buf analyzers.SampleBuffer) []float64 {
	duration := buf.Duration()
	times := make([]float64, 0, len(frames))
	for _, f := range frames {
		t := min(analyzers.FramesToTime(f, buf.SampleRate, d.config.HopLength), duration)
		if len(times) > 0 && t <= times[len(times)-1] {
			continue
		}
		times = append(times, t)
	}
	return times
}
