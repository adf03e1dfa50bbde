package voice

import (
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/classify"
)

// pitchDifferenceHz is the start/end gap that counts as a real rise or fall
const pitchDifferenceHz = 10.0

// closingLowPitchHz is the end pitch under which a closing line is softened
const closingLowPitchHz = 170.0

// openingHighPitchHz is the start pitch over which an opening line is livened
const openingHighPitchHz = 180.0

// Window describes the pitch shape of the script opening or closing. Pitch is
// the start pitch for an opening and the end pitch for a closing.
type Window struct {
	Trajectory classify.Trajectory
	Pitch      float64
}

// SegmentPitch is the measured pitch pattern of one segment
type SegmentPitch struct {
	Trajectory classify.Trajectory
	StartPitch float64
	EndPitch   float64
}

// SegmentEmotion is the detected emotion of one segment
type SegmentEmotion struct {
	Emotion   classify.Emotion
	Intensity float64
}

// SegmentContext carries everything known about a segment position. Nil
// fields mean no data of that kind.
type SegmentContext struct {
	Index   int
	Total   int
	Opening *Window
	Closing *Window
	Pitch   *SegmentPitch
	Emotion *SegmentEmotion
}

// SegmentSettings adjusts base parameters for one segment. Rules apply in
// order: script opening, script closing, segment trajectory, start/end pitch
// difference, then detected emotion, which overwrites stability and style.
func SegmentSettings(base Parameters, ctx SegmentContext) Parameters {
	p := base

	if ctx.Index == 0 && ctx.Opening != nil {
		switch ctx.Opening.Trajectory {
		case classify.Rising:
			p.AdjustStyle(0.1)
			p.AdjustStability(-0.05)
		case classify.Falling:
			p.AdjustStyle(-0.05)
		}
		if ctx.Opening.Pitch > openingHighPitchHz {
			p.AdjustStyle(0.05)
		}
	}

	if ctx.Index == ctx.Total-1 && ctx.Closing != nil {
		if ctx.Closing.Trajectory == classify.Falling {
			p.AdjustStyle(-0.1)
			p.AdjustStability(0.05)
		}
		if ctx.Closing.Pitch < closingLowPitchHz {
			p.AdjustStyle(-0.05)
		}
	}

	if ctx.Pitch != nil {
		switch ctx.Pitch.Trajectory {
		case classify.Falling:
			p.AdjustStyle(0.05)
		case classify.Rising:
			p.AdjustStyle(-0.05)
		}

		if ctx.Pitch.StartPitch > 0 && ctx.Pitch.EndPitch > 0 {
			diff := ctx.Pitch.StartPitch - ctx.Pitch.EndPitch
			switch {
			case diff > pitchDifferenceHz:
				p.AdjustStyle(-0.03)
			case diff < -pitchDifferenceHz:
				p.AdjustStyle(0.03)
			}
		}
	}

	if ctx.Emotion != nil {
		i := ctx.Emotion.Intensity
		switch ctx.Emotion.Emotion {
		case classify.Laughter:
			p.SetStability(max(MinStability, 0.3-i*0.1))
			p.SetStyle(min(MaxStyle, 0.7+i*0.1))
		case classify.Excitement:
			p.SetStability(max(MinStability, 0.4-i*0.1))
			p.SetStyle(min(MaxStyle, 0.6+i*0.1))
		}
	}

	p.Clamp()
	return p
}
