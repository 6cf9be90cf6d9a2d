package syncstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/maintenance-tracker/internal/remote"
)

const (
	idColumn   = "id"
	dateLayout = "2006-01-02"
)

var ErrMalformedRow = errors.New("malformed remote row")

// field binds one internal struct field to one remote column. The pointer
// accessor is what keeps both directions in step.
type field[T any] struct {
	column   string
	readOnly bool
	encode   func(*T) any
	decode   func(*T, any) error
}

// codec is the translation table for one entity kind.
type codec[T any] struct {
	collection string
	id         func(*T) *string
	fields     []field[T]
}

func (c codec[T]) encode(v T) remote.Row {
	row := make(remote.Row, len(c.fields))
	for _, f := range c.fields {
		if f.readOnly {
			continue
		}
		row[f.column] = f.encode(&v)
	}
	return row
}

// decode ignores columns it does not own and fails on owned columns that are
// missing or carry the wrong type.
func (c codec[T]) decode(row remote.Row) (T, error) {
	var v T
	id, err := asString(row[idColumn])
	if err != nil || id == "" {
		return v, fmt.Errorf("%w: %s: column %q missing", ErrMalformedRow, c.collection, idColumn)
	}
	*c.id(&v) = id
	for _, f := range c.fields {
		raw, ok := row[f.column]
		if !ok {
			return v, fmt.Errorf("%w: %s: column %q missing", ErrMalformedRow, c.collection, f.column)
		}
		if err := f.decode(&v, raw); err != nil {
			return v, fmt.Errorf("%w: %s.%s: %v", ErrMalformedRow, c.collection, f.column, err)
		}
	}
	return v, nil
}

func (c codec[T]) columns() []string {
	cols := make([]string, 0, len(c.fields)+1)
	cols = append(cols, idColumn)
	for _, f := range c.fields {
		cols = append(cols, f.column)
	}
	return cols
}

func stringField[T any](column string, ptr func(*T) *string) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any { return *ptr(v) },
		decode: func(v *T, raw any) error {
			s, err := asString(raw)
			*ptr(v) = s
			return err
		},
	}
}

func enumField[T any, E ~string](column string, ptr func(*T) *E) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any { return string(*ptr(v)) },
		decode: func(v *T, raw any) error {
			s, err := asString(raw)
			*ptr(v) = E(s)
			return err
		},
	}
}

func optionalStringField[T any](column string, ptr func(*T) **string) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any {
			if p := *ptr(v); p != nil {
				return *p
			}
			return nil
		},
		decode: func(v *T, raw any) error {
			if raw == nil {
				*ptr(v) = nil
				return nil
			}
			s, err := asString(raw)
			if err != nil {
				return err
			}
			*ptr(v) = &s
			return nil
		},
	}
}

func dateField[T any](column string, ptr func(*T) *time.Time) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any { return ptr(v).Format(dateLayout) },
		decode: func(v *T, raw any) error {
			d, err := asDate(raw)
			*ptr(v) = d
			return err
		},
	}
}

func timestampField[T any](column string, ptr func(*T) *time.Time) field[T] {
	return field[T]{
		column:   column,
		readOnly: true,
		encode:   func(v *T) any { return *ptr(v) },
		decode: func(v *T, raw any) error {
			ts, err := asTimestamp(raw)
			*ptr(v) = ts
			return err
		},
	}
}

func intField[T any](column string, ptr func(*T) *int) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any { return *ptr(v) },
		decode: func(v *T, raw any) error {
			n, err := asInt64(raw)
			*ptr(v) = int(n)
			return err
		},
	}
}

func int64Field[T any](column string, ptr func(*T) *int64) field[T] {
	return field[T]{
		column: column,
		encode: func(v *T) any { return *ptr(v) },
		decode: func(v *T, raw any) error {
			n, err := asInt64(raw)
			*ptr(v) = n
			return err
		},
	}
}

func asString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", errors.New("value is null")
	default:
		return "", fmt.Errorf("expected text, got %T", raw)
	}
}

// asDate keeps only the calendar date, as UTC midnight.
func asDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		y, m, d := v.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case string:
		if len(v) >= len(dateLayout) {
			if parsed, err := time.Parse(dateLayout, v[:len(dateLayout)]); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	case nil:
		return time.Time{}, errors.New("value is null")
	default:
		return time.Time{}, fmt.Errorf("expected date, got %T", raw)
	}
}

func asTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", raw)
	}
}

func asInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case nil:
		return 0, errors.New("value is null")
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}
