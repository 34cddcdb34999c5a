package quizgen

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed matches every *Error via errors.Is.
var ErrGenerationFailed = errors.New("quiz generation failed")

type Kind string

const (
	KindLaunch          Kind = "launch"
	KindExit            Kind = "exit"
	KindMissingOutput   Kind = "missing_output"
	KindMalformedOutput Kind = "malformed_output"
	KindTimeout         Kind = "timeout"
	KindCanceled        Kind = "canceled"
)

// Error describes why one generation run failed. ExitCode is only meaningful
// for KindExit, Path for the output kinds.
type Error struct {
	Kind     Kind
	ExitCode int
	Path     string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindExit:
		return fmt.Sprintf("quizgen: script exited with code %d", e.ExitCode)
	case KindMissingOutput:
		return fmt.Sprintf("quizgen: output not found at %s", e.Path)
	case KindMalformedOutput:
		return fmt.Sprintf("quizgen: malformed output in %s: %v", e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("quizgen: %s: %v", e.Kind, e.Err)
	}
	return "quizgen: " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches ErrGenerationFailed and any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if target == ErrGenerationFailed {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the failure kind of err, or "" when err is not a generation error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
