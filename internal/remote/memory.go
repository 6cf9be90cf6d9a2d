package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps collections in process. Rows keep insertion order.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]Row
	now         func() time.Time
}

func NewMemory(collections ...string) *Memory {
	m := &Memory{
		collections: make(map[string][]Row, len(collections)),
		now:         time.Now,
	}
	for _, name := range collections {
		m.collections[name] = nil
	}
	return m
}

func (m *Memory) Select(ctx context.Context, collection string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.collections[collection]
	if !ok {
		return nil, unknownTable(collection)
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.collections[collection]
	if !ok {
		return nil, unknownTable(collection)
	}
	stored := row.Clone()
	if stored == nil {
		stored = Row{}
	}
	stored["id"] = uuid.NewString()
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = m.now().UTC()
	}
	m.collections[collection] = append(rows, stored)
	return stored.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.collections[collection]
	if !ok {
		return nil, unknownTable(collection)
	}
	for i, existing := range rows {
		if existing["id"] != id {
			continue
		}
		stored := row.Clone()
		if stored == nil {
			stored = Row{}
		}
		stored["id"] = id
		stored["created_at"] = existing["created_at"]
		rows[i] = stored
		return stored.Clone(), nil
	}
	return nil, NotFound(collection, id)
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.collections[collection]
	if !ok {
		return unknownTable(collection)
	}
	for i, existing := range rows {
		if existing["id"] == id {
			m.collections[collection] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return NotFound(collection, id)
}

func unknownTable(collection string) *Error {
	return &Error{Code: CodeUnknownTable, Message: fmt.Sprintf("collection %q does not exist", collection)}
}
