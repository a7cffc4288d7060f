package deps

import "recall/internal/config"

// MediaRequirements lists the media binaries the pipeline shells out to.
func MediaRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Decodes audio for transcription and samples video keyframes",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Detects video streams before keyframe extraction",
		},
	}
}

// CheckMedia reports availability of the configured media binaries.
func CheckMedia(cfg *config.Config) []Status {
	return CheckBinaries(MediaRequirements(cfg))
}
