package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/stage"
)

// Placeholder text emitted in place of a transcript.
const (
	SilentMessage   = "Audio is too silent, please provide clearer audio."
	NoSpeechMessage = "No speech detected in the audio."
	failurePrefix   = "Transcription failed: "
)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

// Transcriber runs the loudness gate and the speech engine.
type Transcriber struct {
	engine       Engine
	ffmpeg       string
	thresholdDB  float64
	keepOriginal bool
	timeout      time.Duration
	logger       *slog.Logger
	run          CommandRunner
}

// New constructs a Transcriber from configuration.
func New(cfg *config.Config, engine Engine, logger *slog.Logger) *Transcriber {
	timeout := time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second
	return &Transcriber{
		engine:       engine,
		ffmpeg:       cfg.FFmpegBinary(),
		thresholdDB:  cfg.Transcription.SilenceThresholdDB,
		keepOriginal: cfg.Transcription.KeepOriginal,
		timeout:      timeout,
		logger:       logging.NewComponentLogger(logger, "transcription"),
		run:          execRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcriber) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		t.run = runner
	}
}

// Transcribe produces the original and English transcripts for path.
func (t *Transcriber) Transcribe(ctx context.Context, path string) stage.Transcript {
	logger := logging.WithContext(ctx, t.logger)

	workDir, err := os.MkdirTemp("", "recall-audio-")
	if err != nil {
		return failed(fmt.Errorf("create work dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	peakDB, err := t.measurePeak(ctx, path, workDir)
	if err != nil {
		logging.WarnWithContext(logger, "loudness check failed; assuming audio is audible", "loudness_check_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify ffmpeg can decode the upload"),
			logging.String(logging.FieldImpact, "silent uploads may reach the speech engine"),
		)
	} else {
		logger.Debug("loudness measured", logging.Float64("peak_db", peakDB), logging.Float64("threshold_db", t.thresholdDB))
		if peakDB < t.thresholdDB {
			logger.Info("audio below loudness threshold; skipping speech engine",
				logging.String(logging.FieldEventType, "transcription_silent"),
				logging.Float64("peak_db", peakDB),
			)
			silent := stage.Degrade(stage.ReasonSilent, SilentMessage)
			return stage.Transcript{Original: silent, Translated: silent}
		}
	}

	audioPath, err := t.extractAudio(ctx, path, workDir)
	if err != nil {
		return t.logFailure(logger, err)
	}

	translated, err := t.call(ctx, t.engine.Translate, audioPath)
	if err != nil {
		return t.logFailure(logger, err)
	}
	if strings.TrimSpace(translated.Text) == "" {
		logger.Info("speech engine returned no text", logging.String(logging.FieldEventType, "transcription_empty"))
		empty := stage.Degrade(stage.ReasonNoSpeech, NoSpeechMessage)
		return stage.Transcript{Original: empty, Translated: empty, Language: DisplayLanguage(translated.Language)}
	}

	result := stage.Transcript{
		Original:   stage.Content(translated.Text),
		Translated: stage.Content(translated.Text),
		Language:   DisplayLanguage(translated.Language),
	}

	if t.keepOriginal {
		original, err := t.call(ctx, t.engine.Transcribe, audioPath)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "source-language transcription failed; keeping translation only", "transcription_original_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "original transcript mirrors the English text"),
			)
		case strings.TrimSpace(original.Text) != "":
			result.Original = stage.Content(original.Text)
			if lang := DisplayLanguage(original.Language); lang != "" {
				result.Language = lang
			}
		}
	}

	logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.String("language", result.Language),
		logging.Int("chars", len(result.Translated.Text)),
	)
	return result
}

func (t *Transcriber) call(ctx context.Context, fn func(context.Context, string) (Result, error), audioPath string) (Result, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return fn(ctx, audioPath)
}

func (t *Transcriber) logFailure(logger *slog.Logger, err error) stage.Transcript {
	logging.WarnWithContext(logger, "transcription failed; storing placeholder", "transcription_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check speech API credentials and ffmpeg output"),
		logging.String(logging.FieldImpact, "memory is saved without a transcript"),
	)
	return failed(err)
}

func failed(err error) stage.Transcript {
	out := stage.Degrade(stage.ReasonEngineError, failurePrefix+err.Error())
	return stage.Transcript{Original: out, Translated: out}
}

// measurePeak decodes path to mono 16 kHz PCM and returns its loudest frame in dB.
func (t *Transcriber) measurePeak(ctx context.Context, path, workDir string) (float64, error) {
	pcmPath := filepath.Join(workDir, "loudness.pcm")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-f", "s16le",
		"-c:a", "pcm_s16le",
		pcmPath,
	}
	if output, err := t.run(ctx, t.ffmpeg, args...); err != nil {
		return 0, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	raw, err := os.ReadFile(pcmPath)
	if err != nil {
		return 0, fmt.Errorf("read decoded audio: %w", err)
	}
	return PeakRMSDecibels(decodeSamples(raw), FrameLength, HopLength), nil
}

// extractAudio writes a compact mono track that stays well under the
// speech API's upload limit.
func (t *Transcriber) extractAudio(ctx context.Context, path, workDir string) (string, error) {
	dest := filepath.Join(workDir, "speech.mp3")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-b:a", "32k",
		"-f", "mp3",
		dest,
	}
	if output, err := t.run(ctx, t.ffmpeg, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return dest, nil
}
