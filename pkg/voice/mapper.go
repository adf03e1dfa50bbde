package voice

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// ErrInvalidFeatures is returned when a mapping input is NaN or infinite
var ErrInvalidFeatures = errors.New("invalid voice features")

// Features are the measurements the mapper turns into parameters
type Features struct {
	PitchVariationCoefficient float64
	Expressiveness            float64
	Clarity                   float64
	AveragePause              float64
	SampleRate                int
}

func (f Features) validate() error {
	values := map[string]float64{
		"pitch_variation_coefficient": f.PitchVariationCoefficient,
		"expressiveness":              f.Expressiveness,
		"clarity":                     f.Clarity,
		"average_pause":               f.AveragePause,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidFeatures, name, v)
		}
	}
	return nil
}

// Mapper converts analysis features into synthesis parameters
type Mapper struct {
	modelID string
	logger  logging.Logger
}

// NewMapper creates a mapper tagging its output with modelID. An empty
// modelID uses DefaultModelID.
func NewMapper(modelID string) *Mapper {
	if modelID == "" {
		modelID = DefaultModelID
	}
	return &Mapper{
		modelID: modelID,
		logger: logging.WithFields(logging.Fields{
			"component": "voice_mapper",
		}),
	}
}

// Map derives parameters from features. Stability falls as pitch variation
// grows, style rises with expressiveness, and similarity rewards clarity.
func (m *Mapper) Map(f Features) (Parameters, error) {
	if err := f.validate(); err != nil {
		return Parameters{}, err
	}

	var p Parameters
	p.SetStability(round2(0.6 - f.PitchVariationCoefficient*0.5))
	p.SetSimilarity(round2(0.5 + f.Clarity*0.3 - f.Expressiveness*0.2))
	p.SetStyle(round2(0.3 + f.Expressiveness*0.4))
	p.UseSpeakerBoost = f.Clarity > 0.6
	p.PauseDuration = round2(math.Max(0, f.AveragePause))
	p.OutputFormat = OutputFormatFor(f.SampleRate)
	p.ModelID = m.modelID

	m.logger.Debug("Mapped voice parameters", logging.Fields{
		"stability":  p.Stability,
		"similarity": p.SimilarityBoost,
		"style":      p.Style,
		"boost":      p.UseSpeakerBoost,
	})

	return p, nil
}

// MapOrDefault maps features and falls back to DefaultParameters on error
func (m *Mapper) MapOrDefault(f Features) Parameters {
	p, err := m.Map(f)
	if err != nil {
		m.logger.Warn("Using default voice parameters", logging.Fields{
			"error": err.Error(),
		})
		p = DefaultParameters()
		p.ModelID = m.modelID
	}
	return p
}
