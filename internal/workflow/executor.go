package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/memory"
	"recall/internal/services"
	"recall/internal/stage"
)

// Progress checkpoints published while a job runs.
const (
	ProgressTranscribing = 30
	ProgressSummarizing  = 50
	ProgressExtracting   = 60
	ProgressPersisting   = 80

	MessageTranscribing = "Transcribing audio..."
	MessageSummarizing  = "Summarizing content..."
	MessageExtracting   = "Extracting keyframes..."
	MessagePersisting   = "Saving to database..."
	MessageCompleted    = "Memory processed successfully"
	failurePrefix       = "Processing failed: "
)

// Transcriber produces the transcript outcomes for a source file.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) stage.Transcript
}

// Summarizer condenses a transcript. A non-positive maxWords uses the
// configured limit.
type Summarizer interface {
	Summarize(ctx context.Context, transcript stage.Outcome, maxWords int) stage.Outcome
}

// KeyframeExtractor samples still frames and returns their filenames.
type KeyframeExtractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// MemoryStore persists finished memories.
type MemoryStore interface {
	Create(ctx context.Context, in memory.NewMemory) (*memory.Memory, error)
}

// Stages bundles the collaborators an Executor drives.
type Stages struct {
	Transcriber Transcriber
	Summarizer  Summarizer
	Keyframes   KeyframeExtractor
	Store       MemoryStore
}

// Executor runs one job at a time through every stage.
type Executor struct {
	registry  *jobs.Registry
	stages    Stages
	framesDir string
	logger    *slog.Logger
}

// NewExecutor constructs an Executor. framesDir is where the keyframe
// extractor writes, used to clean up after a failed job.
func NewExecutor(registry *jobs.Registry, stages Stages, framesDir string, logger *slog.Logger) *Executor {
	return &Executor{
		registry:  registry,
		stages:    stages,
		framesDir: framesDir,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
}

// Run processes task to completion. A non-nil error means the job was
// marked failed; degraded stage output is not an error.
func (e *Executor) Run(ctx context.Context, task jobs.Task) (err error) {
	ctx = services.WithJobID(ctx, task.JobID)
	if task.Owner != "" {
		ctx = services.WithOwner(ctx, task.Owner)
	}
	logger := logging.WithContext(ctx, e.logger)

	run := &jobRun{task: task}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("stage panicked",
				logging.String(logging.FieldEventType, "stage_panic"),
				logging.Any("panic", recovered),
				logging.String("stack", string(debug.Stack())),
			)
			err = services.Wrap(services.ErrTransient, run.stage, "run", fmt.Sprintf("internal error: %v", recovered), nil)
		}
		if err != nil {
			e.fail(ctx, run, err)
		}
	}()

	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_started"),
		logging.String("source", filepath.Base(task.SourcePath)),
	)

	if err := e.checkpoint(ctx, run, "transcribing", ProgressTranscribing, MessageTranscribing); err != nil {
		return err
	}
	transcript := e.stages.Transcriber.Transcribe(services.WithStage(ctx, run.stage), task.SourcePath)

	if err := e.checkpoint(ctx, run, "summarizing", ProgressSummarizing, MessageSummarizing); err != nil {
		return err
	}
	summary := e.stages.Summarizer.Summarize(services.WithStage(ctx, run.stage), transcript.Translated, 0)

	if err := e.checkpoint(ctx, run, "extracting", ProgressExtracting, MessageExtracting); err != nil {
		return err
	}
	frames, err := e.stages.Keyframes.Extract(services.WithStage(ctx, run.stage), task.SourcePath)
	if err != nil {
		return err
	}
	run.frames = frames

	if err := e.checkpoint(ctx, run, "persisting", ProgressPersisting, MessagePersisting); err != nil {
		return err
	}
	record, err := e.stages.Store.Create(services.WithStage(ctx, run.stage), memory.NewMemory{
		OwnerID:              task.Owner,
		SourcePath:           task.SourcePath,
		Filename:             task.Filename,
		Transcript:           transcript.Original.Text,
		TranslatedTranscript: transcript.Translated.Text,
		DetectedLanguage:     transcript.Language,
		Summary:              summary.Text,
		Keyframes:            frames,
		TranscriptDegraded:   transcript.Translated.Degraded,
		SummaryDegraded:      summary.Degraded,
	})
	if err != nil {
		return err
	}

	e.registry.Complete(task.JobID, record.ID, MessageCompleted)
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String(logging.FieldMemoryID, record.ID),
		logging.Int("keyframes", len(frames)),
		logging.Bool("transcript_degraded", transcript.Translated.Degraded),
		logging.Bool("summary_degraded", summary.Degraded),
	)
	return nil
}

type jobRun struct {
	task   jobs.Task
	stage  string
	frames []string
}

// checkpoint publishes progress for the next stage. A cancelled or expired
// context is fatal here; stages themselves degrade rather than fail.
func (e *Executor) checkpoint(ctx context.Context, run *jobRun, stageName string, progress int, message string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, run.stage, "run", "job timed out", err)
		}
		return services.Wrap(services.ErrTransient, run.stage, "run", "job cancelled", err)
	}
	run.stage = stageName
	e.registry.Update(run.task.JobID, jobs.StateProcessing, progress, message)
	return nil
}
