package services

import (
	"errors"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrBusy          = errors.New("service busy")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// ErrorKind is the coarse classification carried by a wrapped error.
type ErrorKind string

const (
	KindExternalTool  ErrorKind = "external_tool"
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindNotFound      ErrorKind = "not_found"
	KindAccessDenied  ErrorKind = "access_denied"
	KindBusy          ErrorKind = "busy"
	KindTimeout       ErrorKind = "timeout"
	KindTransient     ErrorKind = "transient"
)

var markerKinds = []struct {
	marker error
	kind   ErrorKind
}{
	{ErrValidation, KindValidation},
	{ErrAccessDenied, KindAccessDenied},
	{ErrNotFound, KindNotFound},
	{ErrConfiguration, KindConfiguration},
	{ErrBusy, KindBusy},
	{ErrTimeout, KindTimeout},
	{ErrExternalTool, KindExternalTool},
	{ErrTransient, KindTransient},
}

// ServiceError carries stage context alongside a classification marker.
type ServiceError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *ServiceError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return e.Marker.Error() + ": " + detail + ": " + e.Cause.Error()
	}
	return e.Marker.Error() + ": " + detail
}

func (e *ServiceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Cause}
}

// Wrap builds an error that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &ServiceError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// ErrorDetails is the structured view of an error used by failure logging.
type ErrorDetails struct {
	Kind      ErrorKind
	Stage     string
	Operation string
	Message   string
	Cause     error
}

// Details extracts classification and context from err. Errors not built
// with Wrap are reported as transient with their own message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: Kind(err)}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		details.Stage = svcErr.Stage
		details.Operation = svcErr.Operation
		details.Message = svcErr.Message
		details.Cause = svcErr.Cause
		return details
	}
	details.Message = err.Error()
	return details
}

// Kind classifies err by the first matching marker.
func Kind(err error) ErrorKind {
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			return mk.kind
		}
	}
	return KindTransient
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
