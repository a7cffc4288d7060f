package keyframes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/media/ffprobe"
	"recall/internal/services"
)

// DefaultInterval keeps one frame out of every 30.
const DefaultInterval = 30

const (
	scratchPattern  = "frame_%06d.jpg"
	publishAttempts = 5
)

// Extractor samples keyframes into a frames directory.
type Extractor struct {
	ffmpeg    string
	ffprobe   string
	interval  int
	framesDir string
	timeout   time.Duration
	logger    *slog.Logger
	run       ffprobe.Runner
	newPrefix func() string
}

// New constructs an Extractor from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Extractor {
	interval := cfg.Keyframes.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Extractor{
		ffmpeg:    cfg.FFmpegBinary(),
		ffprobe:   cfg.FFprobeBinary(),
		interval:  interval,
		framesDir: cfg.Paths.FramesDir,
		timeout:   time.Duration(cfg.Keyframes.TimeoutSeconds) * time.Second,
		logger:    logging.NewComponentLogger(logger, "keyframes"),
		run:       ffprobe.ExecRunner,
		newPrefix: randomPrefix,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner ffprobe.Runner) {
	if runner != nil {
		e.run = runner
	}
}

func randomPrefix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Extract samples frames from path and returns their filenames in frame order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	logger := logging.WithContext(ctx, e.logger)

	probe, err := ffprobe.InspectWith(ctx, e.run, e.ffprobe, path)
	if err != nil {
		logger.Info("media probe failed; no keyframes extracted",
			logging.String(logging.FieldEventType, "keyframes_skipped"),
			logging.Error(err),
		)
		return []string{}, nil
	}
	video, ok := probe.VideoStream()
	if !ok {
		logger.Debug("no video stream; no keyframes extracted")
		return []string{}, nil
	}

	if err := os.MkdirAll(e.framesDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "keyframes", "ensure frames dir", "Frames directory unavailable", err)
	}
	scratch, err := os.MkdirTemp(e.framesDir, ".extract-")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "keyframes", "create scratch dir", "Failed to prepare keyframe output", err)
	}
	defer os.RemoveAll(scratch)

	if err := e.decode(ctx, path, scratch); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "keyframes", "ffmpeg decode", "Keyframe extraction failed", err)
	}

	names, err := e.publish(scratch)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "keyframes", "publish frames", "Failed to store keyframes", err)
	}

	logger.Info("keyframes extracted",
		logging.String(logging.FieldEventType, "keyframes_complete"),
		logging.Int("count", len(names)),
		logging.Int("interval", e.interval),
		logging.Int("source_frames", video.FrameCount(probe.DurationSeconds())),
	)
	return names, nil
}

func (e *Extractor) decode(ctx context.Context, path, scratch string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-an",
		"-sn",
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", e.interval),
		"-fps_mode", "vfr",
		"-q:v", "2",
		"-start_number", "0",
		filepath.Join(scratch, scratchPattern),
	}
	if output, err := e.run(ctx, e.ffmpeg, args...); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// publish links scratch frames into the frames directory under their final
// names. Existing files are never overwritten: a prefix that collides with
// earlier output is replaced by a fresh one.
func (e *Extractor) publish(scratch string) ([]string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, err
	}
	scratchNames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jpg") {
			scratchNames = append(scratchNames, entry.Name())
		}
	}
	sort.Strings(scratchNames)

	for attempt := 1; ; attempt++ {
		names, err := e.link(scratch, scratchNames, e.newPrefix())
		if err == nil || !errors.Is(err, fs.ErrExist) || attempt == publishAttempts {
			return names, err
		}
		e.logger.Debug("keyframe prefix collision; retrying", logging.Int("attempt", attempt))
	}
}

// link publishes scratchNames under prefix. On failure every frame linked so
// far is removed.
func (e *Extractor) link(scratch string, scratchNames []string, prefix string) ([]string, error) {
	names := make([]string, 0, len(scratchNames))
	for i, scratchName := range scratchNames {
		name := fmt.Sprintf("%s_frame_%d.jpg", prefix, i*e.interval)
		if err := os.Link(filepath.Join(scratch, scratchName), filepath.Join(e.framesDir, name)); err != nil {
			for _, published := range names {
				_ = os.Remove(filepath.Join(e.framesDir, published))
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
