package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	return InspectWith(ctx, ExecRunner, binary, path)
}

// InspectWith is Inspect with a caller-supplied command runner.
func InspectWith(ctx context.Context, run Runner, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if run == nil {
		run = ExecRunner
	}

	output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream, if any.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") && !isAttachedPicture(stream) {
			return stream, true
		}
	}
	return Stream{}, false
}

// HasVideo reports whether the container carries a decodable video stream.
func (r Result) HasVideo() bool {
	_, ok := r.VideoStream()
	return ok
}

// HasAudio reports whether the container carries an audio stream.
func (r Result) HasAudio() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// FrameRate returns the video stream frame rate, or 0 when unknown.
func (s Stream) FrameRate() float64 {
	for _, raw := range []string{s.AvgFrameRate, s.RFrameRate} {
		if rate := parseRational(raw); rate > 0 {
			return rate
		}
	}
	return 0
}

// FrameCount returns the reported frame count, or an estimate from duration
// and frame rate when the container does not record one.
func (s Stream) FrameCount(containerDuration float64) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s.NBFrames)); err == nil && n > 0 {
		return n
	}
	duration := parseFloat(s.Duration)
	if math.IsNaN(duration) || duration <= 0 {
		duration = containerDuration
	}
	if math.IsNaN(duration) || duration <= 0 {
		return 0
	}
	return int(math.Round(duration * s.FrameRate()))
}

// Cover art in audio files is reported as a single-frame video stream.
func isAttachedPicture(s Stream) bool {
	switch strings.ToLower(s.CodecName) {
	case "mjpeg", "png", "bmp":
		return strings.TrimSpace(s.NBFrames) == "1" || s.RFrameRate == "90000/1"
	}
	return false
}

func parseRational(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		f := parseFloat(value)
		if math.IsNaN(f) {
			return 0
		}
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
