package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the root of every not-found error; match it with errors.Is.
var ErrNotFound = errors.New("not found")

var (
	// ErrTryOutNotFound is returned when a try-out id does not exist.
	ErrTryOutNotFound = fmt.Errorf("tryout %w", ErrNotFound)
	// ErrSubjectNotFound is returned when a subject id does not exist.
	ErrSubjectNotFound = fmt.Errorf("subject %w", ErrNotFound)
	// ErrChapterNotFound is returned when a chapter id does not exist.
	ErrChapterNotFound = fmt.Errorf("chapter %w", ErrNotFound)
	// ErrQuestionNotFound is returned when a bank question id does not exist.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
)

// FieldError names one invalid field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports client-correctable input. Index is the position of
// the offending question, or -1 when the error is about a package-level field.
type ValidationError struct {
	Index  int          `json:"index"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	msg := strings.Join(parts, "; ")
	if e.Index >= 0 {
		return fmt.Sprintf("question %d: %s", e.Index+1, msg)
	}
	return msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
