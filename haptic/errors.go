package haptic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGesture is returned when an edit is applied to an event in a
	// state that cannot take it.
	ErrInvalidGesture = errors.New("invalid gesture")
	ErrOutsidePlot    = fmt.Errorf("%w: plot location is outside", ErrInvalidGesture)

	ErrInvalidCurve = errors.New("invalid curve")
	ErrEmptyExport  = errors.New("nothing to export: the event list is empty")
	ErrNoFallback   = errors.New("no container decoder configured")
)

// FormatAttempt records why one decoder rejected a file
type FormatAttempt struct {
	Format string
	Err    error
}

// MalformedFileError is returned when every known format failed to decode a file
type MalformedFileError struct {
	Path     string
	Attempts []FormatAttempt
}

func (e *MalformedFileError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "cannot read %s:", e.Path)
	} else {
		b.WriteString("cannot read haptic data:")
	}
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Format, a.Err)
	}
	return b.String()
}

func (e *MalformedFileError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}
