package workflow

import (
	"context"
	"strings"

	"recall/internal/fileutil"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/services"
)

// fail marks the job failed and removes every file it produced.
func (e *Executor) fail(ctx context.Context, run *jobRun, stageErr error) {
	logger := logging.WithContext(services.WithStage(ctx, run.stage), e.logger)

	message := failurePrefix + failureDiagnostic(run.stage, stageErr)
	e.registry.Fail(run.task.JobID, message)

	details := services.Details(stageErr)
	attrs := []logging.Attr{
		logging.String("resolved_state", string(jobs.StateError)),
		logging.String("error_message", message),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.String(logging.FieldErrorOperation, details.Operation),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else {
		attrs = append(attrs, logging.Error(stageErr))
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "stage_failure"))
	logger.Error("stage failed", logging.Args(attrs...)...)

	if err := fileutil.RemoveAll(e.framesDir, run.frames); err != nil {
		logger.Warn("failed to remove keyframes of failed job",
			logging.Error(err),
			logging.String(logging.FieldEventType, "cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove orphaned frames manually"),
		)
	}
	if err := fileutil.RemoveIfExists(run.task.SourcePath); err != nil {
		logger.Warn("failed to remove upload of failed job",
			logging.Error(err),
			logging.String(logging.FieldEventType, "cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove orphaned upload manually"),
		)
	}
}

func failureDiagnostic(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageFailureMessage(stageName, "failed without error detail")
	}
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = stageFailureMessage(stageName, "failed")
	}
	return message
}

func stageFailureMessage(stageName, defaultMsg string) string {
	if stageName != "" {
		return stageName + " " + defaultMsg
	}
	return "workflow " + defaultMsg
}
