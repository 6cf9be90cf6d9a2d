// Package remote defines the persistent store the synchronization layer talks to.
package remote

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

const (
	CodeNotFound      = "not_found"
	CodeUnknownTable  = "unknown_table"
	CodeUnknownColumn = "unknown_column"
	CodeInternal      = "internal"
)

// Row is a flat record keyed by remote column name.
type Row map[string]any

func (r Row) Clone() Row {
	return maps.Clone(r)
}

// Store offers per-collection select/insert/update/delete. Insert assigns the
// "id" column.
type Store interface {
	Select(ctx context.Context, collection string) ([]Row, error)
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	Update(ctx context.Context, collection, id string, row Row) (Row, error)
	Delete(ctx context.Context, collection, id string) error
}

// Error is the descriptor a store returns when it rejects an operation.
type Error struct {
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(collection, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", collection, id)}
}

// AsError converts any failure into a descriptor, keeping an existing one intact.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var descriptor *Error
	if errors.As(err, &descriptor) {
		return descriptor
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}
