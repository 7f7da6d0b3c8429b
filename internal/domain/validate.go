package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator applies the authoring rules shared by try-out questions, chapter
// bank questions and catalog records. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Report JSON field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Question fails when the prompt is empty, fewer than two options are given,
// any option is empty, or the correct answer is not one of the options verbatim.
func (v *Validator) Question(q Question) error {
	fields := v.fieldErrors(q)
	if q.CorrectAnswer != "" && !containsExact(q.Options, q.CorrectAnswer) {
		fields = append(fields, FieldError{Field: "correctAnswer", Reason: "must match one of the options"})
	}
	if len(fields) > 0 {
		return &ValidationError{Index: -1, Fields: fields}
	}
	return nil
}

// TryOut checks package-level fields first and then every question in order.
// Only the first failing question is reported.
func (v *Validator) TryOut(d TryOutDraft) error {
	if fields := v.fieldErrors(d); len(fields) > 0 {
		return &ValidationError{Index: -1, Fields: fields}
	}
	for i, q := range d.Questions {
		if err := v.Question(q); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Index = i
			}
			return err
		}
	}
	return nil
}

// Struct validates any tagged record (subjects, chapters, submissions).
func (v *Validator) Struct(s any) error {
	if fields := v.fieldErrors(s); len(fields) > 0 {
		return &ValidationError{Index: -1, Fields: fields}
	}
	return nil
}

func (v *Validator) fieldErrors(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Reason: err.Error()}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return fields
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func containsExact(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
