package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
)

// ValidationError lists every problem found in a draft before it is sent anywhere.
type ValidationError struct {
	Fields map[string]string
	causes []error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() []error {
	return e.causes
}

type validator struct {
	fields map[string]string
	causes []error
}

func (v *validator) require(name, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(name, "is required")
	}
}

func (v *validator) fail(name, reason string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[name]; !exists {
		v.fields[name] = reason
	}
}

func (v *validator) failWith(name string, cause error) {
	v.fail(name, cause.Error())
	v.causes = append(v.causes, cause)
}

func (v *validator) periodicity(name string, p Periodicity) {
	if !p.Valid() {
		v.failWith(name, fmt.Errorf("%w: %q", ErrInvalidPeriodicity, string(p)))
	}
}

func (v *validator) date(name string, t time.Time) {
	if t.IsZero() {
		v.fail(name, "is required")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields, causes: v.causes}
}
