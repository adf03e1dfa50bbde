package analysis

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/classify"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/pitch"
)

// segmentEdgeSeconds bounds the start and end windows of a segment
const segmentEdgeSeconds = 0.5

// segmentResult holds everything measured for one onset-delimited segment
type segmentResult struct {
	index    int
	valid    bool
	duration float64

	// pitch pattern, set only when hasPitch
	hasPitch   bool
	startPitch float64
	endPitch   float64
	trajectory classify.Trajectory
	pitchRange float64

	emotion   classify.Emotion
	intensity float64
}

// segmentBounds returns sample ranges for each onset. Segment i runs from
// onset i to onset i+1, and the last segment runs to the end of the buffer.
func segmentBounds(onsets []float64, sampleRate, length int) [][2]int {
	bounds := make([][2]int, len(onsets))
	for i, t := range onsets {
		start := analyzers.TimeToSample(t, sampleRate)
		end := length
		if i < len(onsets)-1 {
			end = analyzers.TimeToSample(onsets[i+1], sampleRate)
		}
		bounds[i] = [2]int{min(start, length), min(end, length)}
	}
	return bounds
}

// analyzeSegments measures every segment on a bounded worker pool. Results
// are written to per-index slots so ordering does not depend on scheduling.
func (e *Engine) analyzeSegments(ctx context.Context, buf analyzers.SampleBuffer, onsets []float64) ([]segmentResult, error) {
	if len(onsets) == 0 {
		return []segmentResult{}, nil
	}

	withPitch := len(onsets) >= 2
	bounds := segmentBounds(onsets, buf.SampleRate, buf.Len())
	results := make([]segmentResult, len(bounds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i, b := range bounds {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("%w: segment %d: %v", ErrStagePanic, i, rec)
				}
			}()

			if err := gctx.Err(); err != nil {
				return err
			}
			if b[1] <= b[0] {
				results[i] = segmentResult{index: i}
				return nil
			}

			results[i] = e.analyzeSegment(gctx, buf.Slice(b[0], b[1]), i, withPitch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("Segment analysis completed", logging.Fields{
		"segments":   len(results),
		"with_pitch": withPitch,
		"workers":    e.config.Workers,
	})

	return results, nil
}

func (e *Engine) analyzeSegment(ctx context.Context, seg analyzers.SampleBuffer, index int, withPitch bool) segmentResult {
	result := segmentResult{
		index:    index,
		valid:    true,
		duration: seg.Duration(),
	}

	// The full-segment contour feeds both the pitch pattern and the emotion scores
	full := e.tracker.Track(ctx, seg.Samples, seg.SampleRate)

	if withPitch {
		result.startPitch, result.endPitch = e.edgePitches(ctx, seg)
		if result.startPitch > 0 && result.endPitch > 0 {
			result.hasPitch = true
			result.trajectory = classify.ClassifyTrajectory(full)
			result.pitchRange = analyzers.Finite(full.Range())
		}
	}

	centroid := analyzers.NewSpectralAnalyzer(seg.SampleRate).MeanCentroid(seg.Samples, e.config.FrameLength, e.config.HopLength)
	rms := analyzers.FrameRMS(seg.Samples, e.config.FrameLength, e.config.HopLength)

	laughter := classify.LaughterScore(full, centroid)
	excitement := classify.ExcitementScore(full, rms)
	result.emotion, result.intensity = classify.ClassifyEmotion(laughter, excitement)

	return result
}

// edgePitches returns mean pitch over the first and last
// min(0.5 s, len/2) samples of a segment
func (e *Engine) edgePitches(ctx context.Context, seg analyzers.SampleBuffer) (float64, float64) {
	n := seg.Len()
	window := min(analyzers.TimeToSample(segmentEdgeSeconds, seg.SampleRate), n/2)

	start := seg.Slice(0, window)
	end := seg
	if n > window {
		end = seg.Slice(n-window, n)
	}

	return edgeMean(e.tracker.Track(ctx, start.Samples, seg.SampleRate)),
		edgeMean(e.tracker.Track(ctx, end.Samples, seg.SampleRate))
}

func edgeMean(c pitch.Contour) float64 {
	return analyzers.Finite(c.Mean())
}
