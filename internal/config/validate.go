package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSummarization(); err != nil {
		return err
	}
	if err := c.validateKeyframes(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if c.API.MaxUploadMB > 16*1024 {
		return errors.New("api.max_upload_mb must be 16384 or less")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	// The translation endpoint only produces English output.
	if c.Transcription.TargetLanguage != "en" {
		return fmt.Errorf("transcription.target_language: unsupported value %q (only \"en\" is supported)", c.Transcription.TargetLanguage)
	}
	if c.Transcription.SilenceThresholdDB > 0 || c.Transcription.SilenceThresholdDB < -100 {
		return errors.New("transcription.silence_threshold_db must be between -100 and 0")
	}
	return nil
}

func (c *Config) validateSummarization() error {
	switch c.Summarization.Provider {
	case "openai", "offline":
	default:
		return fmt.Errorf("summarization.provider: unsupported value %q", c.Summarization.Provider)
	}
	if c.Summarization.MaxWords <= 0 {
		return errors.New("summarization.max_words must be positive")
	}
	return nil
}

func (c *Config) validateKeyframes() error {
	if c.Keyframes.Interval <= 0 {
		return errors.New("keyframes.interval must be positive")
	}
	if c.Keyframes.TimeoutSeconds < 0 {
		return errors.New("keyframes.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	if c.Workflow.QueueSize <= 0 {
		return errors.New("workflow.queue_size must be positive")
	}
	if c.Workflow.JobTimeoutSeconds < 0 {
		return errors.New("workflow.job_timeout_seconds must be zero or positive")
	}
	if c.Workflow.StatusRetentionHours < 0 {
		return errors.New("workflow.status_retention_hours must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
