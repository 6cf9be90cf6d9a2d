package syncstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Op string

const (
	OpSelect Op = "select"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type MutationStatus string

const (
	MutationPending   MutationStatus = "pending"
	MutationConfirmed MutationStatus = "confirmed"
	MutationFailed    MutationStatus = "failed"
)

type Mutation struct {
	ID         uuid.UUID
	Collection string
	Op         Op
	EntityID   string
	Status     MutationStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

const defaultMutationHistory = 200

// Tracker records the state of every write while its remote call is in flight
// and keeps a bounded history afterwards.
type Tracker struct {
	mu    sync.Mutex
	limit int
	order []uuid.UUID
	byID  map[uuid.UUID]*Mutation
	now   func() time.Time
}

func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = defaultMutationHistory
	}
	return &Tracker{
		limit: limit,
		byID:  make(map[uuid.UUID]*Mutation, limit),
		now:   time.Now,
	}
}

func (t *Tracker) begin(collection string, op Op, entityID string) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := &Mutation{
		ID:         uuid.New(),
		Collection: collection,
		Op:         op,
		EntityID:   entityID,
		Status:     MutationPending,
		StartedAt:  t.now(),
	}
	t.byID[m.ID] = m
	t.order = append(t.order, m.ID)
	for len(t.order) > t.limit {
		delete(t.byID, t.order[0])
		t.order = t.order[1:]
	}
	return m.ID
}

func (t *Tracker) confirm(id uuid.UUID, entityID string) {
	t.finish(id, MutationConfirmed, entityID, nil)
}

func (t *Tracker) fail(id uuid.UUID, entityID string, err error) {
	t.finish(id, MutationFailed, entityID, err)
}

func (t *Tracker) finish(id uuid.UUID, status MutationStatus, entityID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return
	}
	m.Status = status
	m.FinishedAt = t.now()
	if entityID != "" {
		m.EntityID = entityID
	}
	if err != nil {
		m.Error = err.Error()
	}
}

func (t *Tracker) Get(id uuid.UUID) (Mutation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return Mutation{}, false
	}
	return *m, true
}

// Recent returns the history newest first.
func (t *Tracker) Recent() []Mutation {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Mutation, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, *t.byID[t.order[i]])
	}
	return out
}

func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, m := range t.byID {
		if m.Status == MutationPending {
			count++
		}
	}
	return count
}
