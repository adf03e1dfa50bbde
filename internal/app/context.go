package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/prosody-profiler/configs"
	"github.com/RyanBlaney/prosody-profiler/internal/analysis"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/onset"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/pitch"
	"github.com/RyanBlaney/prosody-profiler/pkg/voice"
)

const defaultCapture = 30 * time.Second

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	InputFile    string        // Recording to analyze (required)
	ContentType  string        // Decoder hint for non-WAV input
	Capture      time.Duration // Clip length when InputFile is a stream URL
	OutputFile   string
	OutputFormat string
	Timeout      time.Duration
	Workers      int
	PitchMethod  string
	Voice        string // Voice table entry whose id is attached to the settings
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// AnalyzerApp handles the analysis application lifecycle
type AnalyzerApp struct {
	ctx    *Context
	config *configs.Config
	voices voice.VoiceTable
	engine *analysis.Engine
	logger logging.Logger
}

// NewAnalyzerApp creates a new analyzer application
func NewAnalyzerApp(ctx *Context) (*AnalyzerApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	voices := voice.NewVoiceTable(config.Voice.Voices)
	if ctx.Voice != "" {
		if _, err := voices.Lookup(ctx.Voice); err != nil {
			return nil, err
		}
	}

	logger.Debug("Analyzer application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"input_file":    ctx.InputFile,
		"output_format": ctx.OutputFormat,
		"pitch_method":  config.Analysis.PitchMethod,
		"workers":       config.Analysis.Workers,
		"timeout":       config.Analysis.Timeout.Seconds(),
	})

	return &AnalyzerApp{
		ctx:    ctx,
		config: config,
		voices: voices,
		engine: analysis.NewEngine(engineConfig(config)),
		logger: logger,
	}, nil
}

// Run loads the input recording, analyzes it and writes the report
func (app *AnalyzerApp) Run(ctx context.Context) error {
	if app.ctx.InputFile == "" {
		return fmt.Errorf("input audio file is required")
	}

	start := time.Now()

	buf, err := app.loadInput(ctx)
	if err != nil {
		return fmt.Errorf("failed to load audio: %w", err)
	}

	app.logger.Debug("Loaded input audio", logging.Fields{
		"input_file":  app.ctx.InputFile,
		"sample_rate": buf.SampleRate,
		"samples":     buf.Len(),
		"duration":    buf.Duration(),
	})

	report, err := app.engine.Analyze(ctx, buf)
	if err != nil {
		app.collectMetrics(nil, time.Since(start))
		return fmt.Errorf("analysis failed: %w", err)
	}

	if app.ctx.Voice != "" {
		report.RecommendedVoiceSettings, err = app.voices.Apply(report.RecommendedVoiceSettings, app.ctx.Voice)
		if err != nil {
			return err
		}
	}

	if !app.ctx.Quiet {
		app.logger.Info(analysis.Summary(report))
	}

	if err := app.outputResults(report); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	app.collectMetrics(report, time.Since(start))

	return nil
}

// loadInput decodes a local file, or captures a clip when the input is a
// stream URL
func (app *AnalyzerApp) loadInput(ctx context.Context) (analyzers.SampleBuffer, error) {
	if !IsStreamURL(app.ctx.InputFile) {
		return LoadAudio(app.ctx.InputFile, app.ctx.ContentType)
	}

	capture := app.ctx.Capture
	if capture <= 0 {
		capture = defaultCapture
	}

	app.logger.Info("Capturing stream clip", logging.Fields{
		"url":      app.ctx.InputFile,
		"duration": capture.Seconds(),
	})

	return CaptureStream(ctx, app.ctx.InputFile, capture, app.config.Analysis.Timeout)
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	return logging.NewDefaultLogger()
}

// loadAndMergeConfig loads configuration from viper and applies CLI overrides
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	mergeContext(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// mergeContext overrides configuration values with explicitly set CLI flags
func mergeContext(config *configs.Config, ctx *Context) {
	if ctx.Timeout > 0 {
		config.Analysis.Timeout = ctx.Timeout
	}
	if ctx.Workers > 0 {
		config.Analysis.Workers = ctx.Workers
	}
	if ctx.PitchMethod != "" {
		config.Analysis.PitchMethod = ctx.PitchMethod
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	} else {
		ctx.OutputFormat = config.OutputFormat
	}
	if ctx.Verbose {
		config.Verbose = true
	}
}

// engineConfig translates application configuration into engine parameters
func engineConfig(config *configs.Config) analysis.Config {
	a := config.Analysis

	pitchConfig := pitch.DefaultConfig()
	pitchConfig.FrameLength = a.FrameLength
	pitchConfig.HopLength = a.HopLength
	pitchConfig.MinFreq = a.MinFrequency
	pitchConfig.MaxFreq = a.MaxFrequency
	pitchConfig.YINThreshold = a.YINThreshold
	pitchConfig.PeakThreshold = a.PeakThreshold

	return analysis.Config{
		FrameLength: a.FrameLength,
		HopLength:   a.HopLength,
		PitchMethod: a.PitchMethod,
		Pitch:       pitchConfig,
		Onset: onset.Config{
			FrameLength:     a.FrameLength,
			HopLength:       a.HopLength,
			MelBands:        a.MelBands,
			Delta:           a.OnsetDelta,
			WaitSeconds:     a.OnsetWait,
			MajorDelta:      a.MajorOnsetDelta,
			MajorWaitFrames: a.MajorOnsetWaitFrames,
		},
		Workers: a.Workers,
		Timeout: a.Timeout,
		ModelID: config.Voice.ModelID,
	}
}

// outputResults handles all result output
func (app *AnalyzerApp) outputResults(report *analysis.Report) error {
	outputData, err := reportData(report, app.config.Output)
	if err != nil {
		return err
	}
	outputData["analyzed_at"] = time.Now().UTC().Format(time.RFC3339)
	outputData["input_file"] = app.ctx.InputFile

	formatter := newFormatter(app.ctx.OutputFormat)

	formattedData, err := formatter.Format(outputData, true)
	if err != nil {
		// Retry with sanitized data when the encoder rejects non-finite values
		if strings.Contains(err.Error(), "unsupported value") {
			sanitizedData := sanitizeForJSON(outputData)
			formattedData, err = formatter.Format(sanitizedData, true)
		}
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// reportData flattens a report into JSON-named maps with every float finite
// and rounded to the configured precision
func reportData(report *analysis.Report, config configs.OutputConfig) (map[string]any, error) {
	data, ok := roundFloats(sanitizeForJSON(report), config.Precision).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected report shape %T", report)
	}

	if !config.IncludeDegradations {
		delete(data, "degradations")
	}

	return data, nil
}

func newFormatter(format string) output.Formatter {
	switch format {
	case "json":
		return &output.JSONFormatter{}
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// collectMetrics sends run metrics to rootcollector when enabled
func (app *AnalyzerApp) collectMetrics(report *analysis.Report, elapsed time.Duration) {
	if !app.config.Metrics.Enabled {
		return
	}

	err := rootlogger.Configure(logger.LogOptions{
		Out:          app.config.Metrics.LogPath,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring log writer")
		return
	}

	prefix := app.config.Metrics.Prefix
	tags := []string{
		"pitch_method:" + app.config.Analysis.PitchMethod,
		"status:" + runStatus(report),
	}

	rootcollector.Metric(prefix+".duration.milliseconds", elapsed.Milliseconds(), tags)

	if report == nil {
		return
	}

	rootcollector.Metric(prefix+".audio.milliseconds", int64(report.AudioProperties.Duration*1000), tags)
	rootcollector.Metric(prefix+".segments", int64(len(report.PitchAnalysis.PerDialogue)), tags)
	rootcollector.Metric(prefix+".onsets", int64(report.TimingAnalysis.TotalOnsets), tags)
	rootcollector.Metric(prefix+".degradations", int64(len(report.Degradations)), tags)

	for _, d := range report.Degradations {
		rootcollector.Metric(prefix+".stage.degraded", 1, append(tags, "stage:"+d.Stage, "code:"+d.Code))
	}
}

func runStatus(report *analysis.Report) string {
	switch {
	case report == nil:
		return "failed"
	case report.Degraded():
		return "degraded"
	default:
		return "ok"
	}
}

// writeToFile writes data to the specified output file
func (app *AnalyzerApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// roundFloats rounds every float in a sanitized structure to precision
// decimal places. A zero precision leaves values untouched.
func roundFloats(data any, precision int) any {
	if precision <= 0 {
		return data
	}

	scale := math.Pow(10, float64(precision))

	switch v := data.(type) {
	case float64:
		return math.Round(v*scale) / scale
	case map[string]any:
		for k, val := range v {
			v[k] = roundFloats(val, precision)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = roundFloats(val, precision)
		}
		return v
	case []float64:
		for i, val := range v {
			v[i] = math.Round(val*scale) / scale
		}
		return v
	default:
		return data
	}
}

// sanitizeForJSON recursively cleans infinite and NaN values from any data structure
func sanitizeForJSON(data any) any {
	switch v := data.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0.0
		}
		return v
	case float32:
		if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) {
			return float32(0.0)
		}
		return v
	case map[string]any:
		result := make(map[string]any)
		for k, val := range v {
			result[k] = sanitizeForJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = sanitizeForJSON(val)
		}
		return result
	case []float64:
		result := make([]float64, len(v))
		for i, val := range v {
			if math.IsInf(val, 0) || math.IsNaN(val) {
				result[i] = 0.0
			} else {
				result[i] = val
			}
		}
		return result
	default:
		return sanitizeWithReflection(data)
	}
}

// sanitizeWithReflection uses reflection to sanitize struct fields
func sanitizeWithReflection(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			fieldType := typ.Field(i)

			if !field.CanInterface() {
				continue
			}

			jsonTag := fieldType.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			fieldName := fieldType.Name
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
			if len(parts) > 1 && parts[1] == "omitempty" && field.IsZero() {
				continue
			}

			result[fieldName] = sanitizeForJSON(field.Interface())
		}
		return result
	case reflect.Slice:
		if val.IsNil() {
			return []any{}
		}
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = sanitizeForJSON(val.Index(i).Interface())
		}
		return result
	case reflect.Map:
		result := make(map[string]any)
		for _, key := range val.MapKeys() {
			keyStr := fmt.Sprintf("%v", key.Interface())
			result[keyStr] = sanitizeForJSON(val.MapIndex(key).Interface())
		}
		return result
	case reflect.Float64:
		f := val.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0.0
		}
		return f
	case reflect.Float32:
		f := val.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return float32(0.0)
		}
		return float32(f)
	case reflect.String:
		return val.String()
	default:
		return val.Interface()
	}
}
