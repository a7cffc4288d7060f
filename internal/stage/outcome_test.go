package stage

import "testing"

func TestOutcomeUsable(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    bool
	}{
		{"content", Content("hello there"), true},
		{"blank content", Content("   "), false},
		{"degraded", Degrade(ReasonSilent, "Audio is too silent, please provide clearer audio."), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Usable(); got != tt.want {
				t.Fatalf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentTrims(t *testing.T) {
	if got := Content("  hi \n").Text; got != "hi" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestHealthConstructors(t *testing.T) {
	if h := Healthy("transcription"); !h.Ready || h.Name != "transcription" {
		t.Fatalf("unexpected healthy record: %+v", h)
	}
	if h := Unhealthy("keyframes", "ffmpeg missing"); h.Ready || h.Detail != "ffmpeg missing" {
		t.Fatalf("unexpected unhealthy record: %+v", h)
	}
}
