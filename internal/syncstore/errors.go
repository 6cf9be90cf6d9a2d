package syncstore

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nurpe/maintenance-tracker/internal/remote"
)

var ErrNotFound = errors.New("not found")

// RemoteError is a rejection by the remote store, with its descriptor preserved.
type RemoteError struct {
	Op         Op
	Collection string
	Code       string
	Message    string
	Details    string
	Hint       string
	err        error
}

func wrapRemote(op Op, collection string, err error) *RemoteError {
	descriptor := remote.AsError(err)
	return &RemoteError{
		Op:         op,
		Collection: collection,
		Code:       descriptor.Code,
		Message:    descriptor.Message,
		Details:    descriptor.Details,
		Hint:       descriptor.Hint,
		err:        err,
	}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s %s: %s", e.Op, e.Collection, remote.AsError(e.err).Error())
}

func (e *RemoteError) Unwrap() error {
	return e.err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Code == remote.CodeNotFound
}

// LoadError reports the entity kinds whose initial fetch failed. The other
// kinds were populated.
type LoadError struct {
	Failed map[string]error
}

func (e *LoadError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, name := range slices.Sorted(maps.Keys(e.Failed)) {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failed[name]))
	}
	return "load failed for " + strings.Join(parts, "; ")
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, name := range slices.Sorted(maps.Keys(e.Failed)) {
		errs = append(errs, e.Failed[name])
	}
	return errs
}

type AttachmentStep string

const (
	StepUpload AttachmentStep = "upload"
	StepRecord AttachmentStep = "record"
)

type AttachmentFailure struct {
	Name string
	Step AttachmentStep
	Err  error
}

// PartialWriteError means the budget row exists remotely but some attachments
// did not make it. Only the listed attachments need to be sent again.
type PartialWriteError struct {
	BudgetID string
	Failed   []AttachmentFailure
}

func (e *PartialWriteError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, fmt.Sprintf("%s (%s: %v)", f.Name, f.Step, f.Err))
	}
	return fmt.Sprintf("budget %s saved with %d failed attachment(s): %s", e.BudgetID, len(e.Failed), strings.Join(names, ", "))
}

func (e *PartialWriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
