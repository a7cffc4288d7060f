package transcription

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/stage"
)

type fakeEngine struct {
	translate      Result
	translateErr   error
	transcribe     Result
	transcribeErr  error
	translateCalls int
	transcribeCall int
	sawDeadline    bool
}

func (f *fakeEngine) Translate(ctx context.Context, _ string) (Result, error) {
	f.translateCalls++
	_, f.sawDeadline = ctx.Deadline()
	return f.translate, f.translateErr
}

func (f *fakeEngine) Transcribe(context.Context, string) (Result, error) {
	f.transcribeCall++
	return f.transcribe, f.transcribeErr
}

func pcmBytes(samples []int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return raw
}

func sine(amplitude float64, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * 32767 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	return out
}

// fakeFFmpeg writes pcm for loudness decodes and a stub file for audio extraction.
func fakeFFmpeg(pcm []byte, decodeErr error) CommandRunner {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		dest := args[len(args)-1]
		if slices.Contains(args, "s16le") {
			if decodeErr != nil {
				return []byte("decode failed"), decodeErr
			}
			return nil, os.WriteFile(dest, pcm, 0o644)
		}
		return nil, os.WriteFile(dest, []byte("mp3"), 0o644)
	}
}

func newTestTranscriber(engine Engine, runner CommandRunner, mutate func(*config.Config)) *Transcriber {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	tr := New(&cfg, engine, logging.NewNop())
	tr.WithCommandRunner(runner)
	return tr
}

func TestSilentAudioSkipsEngine(t *testing.T) {
	engine := &fakeEngine{translate: Result{Text: "should not be used"}}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(make([]int16, sampleRate)), nil), nil)

	got := tr.Transcribe(context.Background(), "/uploads/quiet.wav")
	if engine.translateCalls != 0 {
		t.Fatalf("engine must not be called for silent audio, got %d calls", engine.translateCalls)
	}
	if got.Translated.Text != SilentMessage || !got.Translated.Degraded || got.Translated.Reason != stage.ReasonSilent {
		t.Fatalf("unexpected translated outcome %+v", got.Translated)
	}
	if got.Original != got.Translated {
		t.Fatalf("original should mirror silent placeholder, got %+v", got.Original)
	}
}

func TestQuietButAudibleThreshold(t *testing.T) {
	// 0.005 of full scale is about -49 dB RMS: silent at -40, audible at -60.
	pcm := pcmBytes(sine(0.005, sampleRate))
	engine := &fakeEngine{translate: Result{Text: "whisper"}}

	tr := newTestTranscriber(engine, fakeFFmpeg(pcm, nil), nil)
	if got := tr.Transcribe(context.Background(), "/u/a.wav"); got.Translated.Reason != stage.ReasonSilent {
		t.Fatalf("expected silent at default threshold, got %+v", got.Translated)
	}

	tr = newTestTranscriber(engine, fakeFFmpeg(pcm, nil), func(c *config.Config) { c.Transcription.SilenceThresholdDB = -60 })
	if got := tr.Transcribe(context.Background(), "/u/a.wav"); got.Translated.Text != "whisper" {
		t.Fatalf("expected engine output at -60 dB threshold, got %+v", got.Translated)
	}
}

func TestGreetingTranslated(t *testing.T) {
	engine := &fakeEngine{translate: Result{Text: " Hello, good morning everyone. ", Language: "spanish"}}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, sampleRate)), nil), nil)

	got := tr.Transcribe(context.Background(), "/uploads/greeting.wav")
	if engine.translateCalls != 1 {
		t.Fatalf("expected one translate call, got %d", engine.translateCalls)
	}
	if !engine.sawDeadline {
		t.Fatal("expected engine call to carry a timeout")
	}
	if got.Translated.Text != "Hello, good morning everyone." || got.Translated.Degraded {
		t.Fatalf("unexpected translation %+v", got.Translated)
	}
	if got.Original.Text != got.Translated.Text {
		t.Fatalf("original should equal translation without keep_original, got %q", got.Original.Text)
	}
	if got.Language != "Spanish" {
		t.Fatalf("expected Spanish, got %q", got.Language)
	}
}

func TestKeepOriginalRunsSecondPass(t *testing.T) {
	engine := &fakeEngine{
		translate:  Result{Text: "Hello, good morning everyone.", Language: "spanish"},
		transcribe: Result{Text: "Hola, buenos días a todos.", Language: "es"},
	}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, 4096)), nil), func(c *config.Config) { c.Transcription.KeepOriginal = true })

	got := tr.Transcribe(context.Background(), "/uploads/greeting.wav")
	if engine.transcribeCall != 1 {
		t.Fatalf("expected one transcribe call, got %d", engine.transcribeCall)
	}
	if got.Original.Text != "Hola, buenos días a todos." {
		t.Fatalf("unexpected original %q", got.Original.Text)
	}
	if got.Language != "Spanish" {
		t.Fatalf("expected Spanish, got %q", got.Language)
	}
}

func TestKeepOriginalFailureFallsBackToTranslation(t *testing.T) {
	engine := &fakeEngine{
		translate:     Result{Text: "Hello"},
		transcribeErr: errors.New("boom"),
	}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, 4096)), nil), func(c *config.Config) { c.Transcription.KeepOriginal = true })

	got := tr.Transcribe(context.Background(), "/u/a.wav")
	if got.Original.Text != "Hello" || got.Original.Degraded {
		t.Fatalf("expected translation as original, got %+v", got.Original)
	}
}

func TestNoSpeechDetected(t *testing.T) {
	engine := &fakeEngine{translate: Result{Text: "   "}}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, 4096)), nil), nil)

	got := tr.Transcribe(context.Background(), "/u/a.wav")
	if got.Translated.Text != NoSpeechMessage || got.Translated.Reason != stage.ReasonNoSpeech {
		t.Fatalf("unexpected outcome %+v", got.Translated)
	}
}

func TestEngineFailureDegrades(t *testing.T) {
	engine := &fakeEngine{translateErr: errors.New("model unavailable")}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, 4096)), nil), nil)

	got := tr.Transcribe(context.Background(), "/u/a.wav")
	if !strings.HasPrefix(got.Translated.Text, "Transcription failed: ") || !strings.Contains(got.Translated.Text, "model unavailable") {
		t.Fatalf("unexpected failure text %q", got.Translated.Text)
	}
	if got.Translated.Reason != stage.ReasonEngineError || !got.Translated.Degraded {
		t.Fatalf("unexpected failure outcome %+v", got.Translated)
	}
}

func TestLoudnessFailureTreatedAsAudible(t *testing.T) {
	engine := &fakeEngine{translate: Result{Text: "still transcribed"}}
	tr := newTestTranscriber(engine, fakeFFmpeg(nil, errors.New("exit status 1")), nil)

	got := tr.Transcribe(context.Background(), "/u/a.wav")
	if engine.translateCalls != 1 || got.Translated.Text != "still transcribed" {
		t.Fatalf("expected engine call after loudness failure, got %+v (calls=%d)", got.Translated, engine.translateCalls)
	}
}

func TestEngineTimeoutDegrades(t *testing.T) {
	engine := &blockingEngine{}
	tr := newTestTranscriber(engine, fakeFFmpeg(pcmBytes(sine(0.5, 4096)), nil), nil)
	tr.timeout = 10 * time.Millisecond

	got := tr.Transcribe(context.Background(), "/u/a.wav")
	if got.Translated.Reason != stage.ReasonEngineError {
		t.Fatalf("expected timeout to degrade, got %+v", got.Translated)
	}
}

type blockingEngine struct{}

func (blockingEngine) Translate(ctx context.Context, _ string) (Result, error) {
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func (blockingEngine) Transcribe(ctx context.Context, _ string) (Result, error) {
	<-ctx.Done()
	return Result{}, ctx.Err()
}
