package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	UploadDir string `toml:"upload_dir"`
	FramesDir string `toml:"frames_dir"`
	LogDir    string `toml:"log_dir"`
	EnvFile   string `toml:"env_file"`
}

// API contains HTTP bind address and caller identification settings.
type API struct {
	Bind         string `toml:"bind"`
	Token        string `toml:"token"`
	PublicURL    string `toml:"public_url"`
	OwnerHeader  string `toml:"owner_header"`
	RequireOwner bool   `toml:"require_owner"`
	MaxUploadMB  int    `toml:"max_upload_mb"`
}

// OpenAI contains shared connection settings for the speech and text APIs.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Transcription contains configuration for the speech-to-text stage.
type Transcription struct {
	Model              string  `toml:"model"`
	TargetLanguage     string  `toml:"target_language"`
	SilenceThresholdDB float64 `toml:"silence_threshold_db"`
	KeepOriginal       bool    `toml:"keep_original"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

// Summarization contains configuration for the summary stage.
type Summarization struct {
	// Provider selects the generation backend: "openai" or "offline".
	Provider          string `toml:"provider"`
	Model             string `toml:"model"`
	MaxWords          int    `toml:"max_words"`
	FallbackSentences int    `toml:"fallback_sentences"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Keyframes contains configuration for video frame sampling.
type Keyframes struct {
	Interval       int    `toml:"interval"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains configuration for the background worker pool.
type Workflow struct {
	Workers           int `toml:"workers"`
	QueueSize         int `toml:"queue_size"`
	JobTimeoutSeconds int `toml:"job_timeout_seconds"`
	// StatusRetentionHours drops finished job statuses after this many hours.
	// Zero keeps them for the life of the process.
	StatusRetentionHours int `toml:"status_retention_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for recall.
//
// Configuration sections by subsystem:
//   - Paths: data, upload, frame, and log directories
//   - API: HTTP bind address, bearer token, owner header
//   - OpenAI: shared credentials for transcription and summarization
//   - Transcription: model, silence gate, timeouts
//   - Summarization: provider, model, summary length
//   - Keyframes: sampling interval and media binaries
//   - Workflow: worker pool size and job timeout
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	OpenAI        OpenAI        `toml:"openai"`
	Transcription Transcription `toml:"transcription"`
	Summarization Summarization `toml:"summarization"`
	Keyframes     Keyframes     `toml:"keyframes"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recall/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFile populates unset environment variables from a dotenv file. A
// missing file is not an error; existing variables are never overwritten.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ".env"
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recall.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.UploadDir, c.Paths.FramesDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite file backing the memory store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "memories.db")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "recalld.lock")
}

// FFmpegBinary returns the ffmpeg executable used for audio and frame decoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Keyframes.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Keyframes.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// BaseURL returns the client-facing base URL for the API, derived from the
// bind address when no public URL is configured.
func (c *Config) BaseURL() string {
	if public := strings.TrimRight(strings.TrimSpace(c.API.PublicURL), "/"); public != "" {
		return public
	}
	return "http://" + c.API.Bind
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
