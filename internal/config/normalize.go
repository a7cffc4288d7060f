package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeOpenAI()
	c.normalizeTranscription()
	c.normalizeSummarization()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FramesDir) == "" {
		c.Paths.FramesDir = defaultFramesDir
	}
	if c.Paths.FramesDir, err = expandPath(c.Paths.FramesDir); err != nil {
		return fmt.Errorf("paths.frames_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("RECALL_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
	c.API.OwnerHeader = strings.TrimSpace(c.API.OwnerHeader)
	if c.API.OwnerHeader == "" {
		c.API.OwnerHeader = defaultOwnerHeader
	}
	c.API.PublicURL = strings.TrimRight(strings.TrimSpace(c.API.PublicURL), "/")
	if c.API.MaxUploadMB <= 0 {
		c.API.MaxUploadMB = defaultMaxUploadMB
	}
}

func (c *Config) normalizeOpenAI() {
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Transcription.TargetLanguage))
	if c.Transcription.TargetLanguage == "" {
		c.Transcription.TargetLanguage = defaultTargetLanguage
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
}

func (c *Config) normalizeSummarization() {
	c.Summarization.Provider = strings.ToLower(strings.TrimSpace(c.Summarization.Provider))
	if c.Summarization.Provider == "" {
		c.Summarization.Provider = defaultSummaryProvider
	}
	c.Summarization.Model = strings.TrimSpace(c.Summarization.Model)
	if c.Summarization.Model == "" {
		c.Summarization.Model = defaultSummaryModel
	}
	if c.Summarization.FallbackSentences <= 0 {
		c.Summarization.FallbackSentences = defaultSummaryFallbackSentences
	}
	if c.Summarization.TimeoutSeconds <= 0 {
		c.Summarization.TimeoutSeconds = defaultSummaryTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
