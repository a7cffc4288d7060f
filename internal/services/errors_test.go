package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"recall/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "keyframes", "decode", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"keyframes", "decode", "ffmpeg failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestDetailsSurvivesOuterWrapping(t *testing.T) {
	inner := services.Wrap(services.ErrValidation, "intake", "accept", "unsupported file type", nil)
	outer := fmt.Errorf("upload: %w", inner)

	details := services.Details(outer)
	if details.Kind != services.KindValidation {
		t.Fatalf("unexpected kind: %s", details.Kind)
	}
	if details.Operation != "accept" || details.Message != "unsupported file type" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestDetailsForPlainErrors(t *testing.T) {
	details := services.Details(context.DeadlineExceeded)
	if details.Kind != services.KindTransient {
		t.Fatalf("unexpected kind: %s", details.Kind)
	}
	if details.Message != context.DeadlineExceeded.Error() {
		t.Fatalf("unexpected message: %q", details.Message)
	}
	if services.Details(nil).Kind != "" {
		t.Fatal("expected empty details for nil error")
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[error]services.ErrorKind{
		services.ErrAccessDenied: services.KindAccessDenied,
		services.ErrBusy:         services.KindBusy,
		services.ErrNotFound:     services.KindNotFound,
		services.ErrTimeout:      services.KindTimeout,
	}
	for marker, want := range cases {
		err := services.Wrap(marker, "api", "op", "msg", nil)
		if got := services.Kind(err); got != want {
			t.Fatalf("marker %v: got kind %s want %s", marker, got, want)
		}
	}
}
