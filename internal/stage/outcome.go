package stage

import "strings"

// Reason classifies why a stage produced placeholder text.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonSilent        Reason = "silent"
	ReasonNoSpeech      Reason = "no_speech"
	ReasonEngineError   Reason = "engine_error"
	ReasonNoInput       Reason = "no_input"
	ReasonNotConfigured Reason = "not_configured"
	ReasonQuota         Reason = "quota_exceeded"
	ReasonUnreachable   Reason = "unreachable"
	ReasonAPIError      Reason = "api_error"
	ReasonEmptyResponse Reason = "empty_response"
)

// Outcome is the text produced by a stage together with its provenance.
type Outcome struct {
	Text     string
	Degraded bool
	Reason   Reason
}

// Content wraps real stage output.
func Content(text string) Outcome {
	return Outcome{Text: strings.TrimSpace(text)}
}

// Degrade wraps placeholder text emitted in place of real output.
func Degrade(reason Reason, text string) Outcome {
	return Outcome{Text: text, Degraded: true, Reason: reason}
}

// Usable reports whether the outcome carries real, non-empty content that a
// downstream stage may consume.
func (o Outcome) Usable() bool {
	return !o.Degraded && strings.TrimSpace(o.Text) != ""
}

// Transcript is the result of the transcription stage.
type Transcript struct {
	// Original is the source-language text, or the translation when a
	// separate source pass was not requested.
	Original Outcome
	// Translated is the English text.
	Translated Outcome
	// Language is the display name of the detected source language.
	Language string
}
