package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/prosody-profiler/internal/observe"
)

// Stage names
const (
	StageValidate        = "validate"
	StageOnsets          = "onsets"
	StageVoice           = "voice_characteristics"
	StageTiming          = "timing"
	StageQuality         = "quality"
	StageScriptPatterns  = "script_patterns"
	StageSegments        = "segments"
	StageDialogue        = "dialogue_patterns"
	StageMapping         = "mapping"
	StageSegmentSettings = "segment_settings"
)

// run collects degradations for one Analyze call
type run struct {
	mu           sync.Mutex
	degradations []Degradation
	logger       logging.Logger
}

func (r *run) degrade(stage string, err error) {
	code := ErrCodeStageFailed
	if errors.Is(err, ErrStagePanic) {
		code = ErrCodeStagePanic
	}

	r.logger.Warn("Analysis stage degraded, using fallback", logging.Fields{
		"stage": stage,
		"code":  code,
		"error": err.Error(),
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.degradations = append(r.degradations, Degradation{
		Stage:   stage,
		Code:    code,
		Message: err.Error(),
	})
}

func (r *run) snapshot() []Degradation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Degradation, len(r.degradations))
	copy(out, r.degradations)
	return out
}

// runStage executes fn in its own span. A stage error or panic is recorded
// as a degradation and replaced by fallback; only cancellation of ctx is
// returned as an error.
func runStage[T any](ctx context.Context, r *run, stage string, fallback T, fn func(context.Context) (T, error)) (T, error) {
	stageCtx, span := observe.StartStage(ctx, stage)
	defer span.End()

	result, err := protect(stageCtx, fn)

	if ctxErr := ctx.Err(); ctxErr != nil {
		observe.Fail(span, ctxErr)
		return fallback, NewAnalysisError(stage, ErrCodeCancelled, "analysis cancelled", ctxErr)
	}
	if err != nil {
		observe.Fail(span, err)
		r.degrade(stage, err)
		return fallback, nil
	}

	r.logger.Debug("Analysis stage completed", logging.Fields{"stage": stage})
	return result, nil
}

func protect[T any](ctx context.Context, fn func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrStagePanic, rec)
		}
	}()
	return fn(ctx)
}
