package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"recall/internal/fileutil"
	"recall/internal/logging"
	"recall/internal/services"
)

// AllowedExtensions lists accepted upload formats, lowercase without the dot.
var AllowedExtensions = []string{"mp3", "wav", "mp4", "mov", "avi", "mkv"}

const storedNameLayout = "20060102_150405.000000000"

// Upload is a client file submission.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Receipt is returned once an upload is persisted and queued.
type Receipt struct {
	JobID      string `json:"job_id"`
	StoredName string `json:"filename"`
	Path       string `json:"-"`
}

// Task is the unit of work handed to the worker pool.
type Task struct {
	JobID      string
	Owner      string
	SourcePath string
	Filename   string
}

// Submitter enqueues tasks without blocking.
type Submitter interface {
	Submit(Task) error
}

// Intake turns uploads into queued jobs.
type Intake struct {
	uploadDir string
	registry  *Registry
	submitter Submitter
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// IntakeOption customizes an Intake.
type IntakeOption func(*Intake)

// WithClock overrides the time source used for stored filenames.
func WithClock(now func() time.Time) IntakeOption {
	return func(i *Intake) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIntake constructs an Intake writing into uploadDir.
func NewIntake(uploadDir string, registry *Registry, submitter Submitter, logger *slog.Logger, opts ...IntakeOption) *Intake {
	in := &Intake{
		uploadDir: uploadDir,
		registry:  registry,
		submitter: submitter,
		logger:    logging.NewComponentLogger(logger, "intake"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Accept validates and persists an upload, registers it, and submits it for
// processing. It returns as soon as the task is queued.
func (i *Intake) Accept(ctx context.Context, upload Upload, owner string) (Receipt, error) {
	if upload.Body == nil || strings.TrimSpace(upload.Filename) == "" {
		return Receipt{}, services.Wrap(services.ErrValidation, "intake", "validate upload", "No file provided", nil)
	}
	if !AllowedExtension(upload.Filename) {
		return Receipt{}, services.Wrap(services.ErrValidation, "intake", "validate upload",
			fmt.Sprintf("File type not allowed (accepted: %s)", strings.Join(AllowedExtensions, ", ")), nil)
	}

	stored, path, err := i.persist(upload, owner)
	if err != nil {
		return Receipt{}, err
	}

	jobID := i.newID()
	i.registry.Register(jobID, owner)

	logger := logging.WithContext(services.WithOwner(services.WithJobID(ctx, jobID), owner), i.logger)
	task := Task{JobID: jobID, Owner: owner, SourcePath: path, Filename: stored}
	if err := i.submitter.Submit(task); err != nil {
		i.registry.Fail(jobID, "Processing failed: server busy, please retry later")
		_ = fileutil.RemoveIfExists(path)
		logging.WarnWithContext(logger, "upload rejected; worker queue full", "intake_rejected",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "raise workflow.queue_size or workflow.workers"),
			logging.String(logging.FieldImpact, "client must resubmit the upload"),
		)
		return Receipt{}, services.Wrap(services.ErrBusy, "intake", "submit job", "Server busy, please retry later", err)
	}

	logger.Info("upload accepted",
		logging.String(logging.FieldEventType, "upload_accepted"),
		logging.String("filename", stored),
	)
	return Receipt{JobID: jobID, StoredName: stored, Path: path}, nil
}

func (i *Intake) persist(upload Upload, owner string) (string, string, error) {
	if err := os.MkdirAll(i.uploadDir, 0o755); err != nil {
		return "", "", services.Wrap(services.ErrConfiguration, "intake", "ensure upload dir", "Upload directory unavailable", err)
	}
	prefix := "anonymous"
	if owner != "" {
		prefix = fileutil.SanitizeName(owner)
	}
	base := fileutil.SanitizeName(upload.Filename)

	for attempt := 0; attempt < 3; attempt++ {
		stamp := i.now().UTC().Format(storedNameLayout)
		name := prefix + "_" + stamp + "_" + base
		path := filepath.Join(i.uploadDir, name)
		written, err := fileutil.WriteOnce(path, upload.Body, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", services.Wrap(services.ErrTransient, "intake", "persist upload", "Failed to save upload", err)
		}
		if written == 0 {
			_ = fileutil.RemoveIfExists(path)
			return "", "", services.Wrap(services.ErrValidation, "intake", "validate upload", "Uploaded file is empty", nil)
		}
		return name, path, nil
	}
	return "", "", services.Wrap(services.ErrBusy, "intake", "persist upload", "Upload name collision, please retry", nil)
}

// AllowedExtension reports whether filename carries an accepted extension.
func AllowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
