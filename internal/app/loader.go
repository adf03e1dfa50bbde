package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/stream"
	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/RyanBlaney/sonido-sonar/transcode"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// ErrUnsupportedAudio is returned when a file cannot be decoded into PCM
var ErrUnsupportedAudio = errors.New("unsupported audio file")

// LoadAudio decodes a recording into a mono buffer. WAV files are read
// directly; other formats go through the normalizing decoder with the
// given content type hint.
func LoadAudio(path, contentType string) (analyzers.SampleBuffer, error) {
	cleanPath := strings.TrimPrefix(path, "file://")

	if _, err := os.Stat(cleanPath); err != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("audio file not accessible: %w", err)
	}

	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".wav", ".wave":
		return loadWAV(cleanPath)
	default:
		return loadTranscoded(cleanPath, contentType)
	}
}

// IsStreamURL reports whether input names a remote HLS or ICEcast stream
func IsStreamURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// CaptureStream records a fixed-length clip from a stream URL and returns it
// as a mono buffer ready for batch analysis
func CaptureStream(ctx context.Context, url string, duration, timeout time.Duration) (analyzers.SampleBuffer, error) {
	if duration <= 0 {
		return analyzers.SampleBuffer{}, fmt.Errorf("capture duration must be positive")
	}

	manager := stream.NewManagerWithConfig(&stream.ManagerConfig{
		StreamTimeout:        timeout,
		OverallTimeout:       timeout + 10*time.Second,
		MaxConcurrentStreams: 1,
		ResultBufferSize:     1,
	})

	results, err := manager.ExtractAudioSequential(ctx, []string{url}, duration)
	if err != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("failed to capture stream: %w", err)
	}

	if len(results.Results) == 0 {
		return analyzers.SampleBuffer{}, fmt.Errorf("no results from stream extraction")
	}
	if results.Results[0].Error != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("failed to capture stream: %w", results.Results[0].Error)
	}

	audioData := results.Results[0].AudioData
	if audioData == nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("%w: stream returned no audio", ErrUnsupportedAudio)
	}

	return analyzers.SampleBuffer{
		Samples:    Downmix(audioData.PCM, audioData.Channels),
		SampleRate: audioData.SampleRate,
	}, nil
}

func loadWAV(path string) (analyzers.SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return analyzers.SampleBuffer{}, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedAudio, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return analyzers.SampleBuffer{}, fmt.Errorf("%w: missing sample rate", ErrUnsupportedAudio)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return analyzers.SampleBuffer{}, fmt.Errorf("%w: bit depth %d", ErrUnsupportedAudio, bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}

	return analyzers.SampleBuffer{
		Samples:    Downmix(samples, buf.Format.NumChannels),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func loadTranscoded(path, contentType string) (analyzers.SampleBuffer, error) {
	decoder := transcode.NewNormalizingDecoder(contentType)
	anyData, err := decoder.DecodeFile(path)
	if err != nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("failed to decode audio file: %w", err)
	}

	audioData := common.ConvertToAudioData(anyData)
	if audioData == nil {
		return analyzers.SampleBuffer{}, fmt.Errorf("%w: decoder returned unexpected type %T", ErrUnsupportedAudio, anyData)
	}

	return analyzers.SampleBuffer{
		Samples:    Downmix(audioData.PCM, audioData.Channels),
		SampleRate: audioData.SampleRate,
	}, nil
}

// Downmix averages interleaved channels into mono. Trailing samples that do
// not fill a whole frame are dropped.
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range mono {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
