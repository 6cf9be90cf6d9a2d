// Package syncstore keeps an in-memory view of every entity kind consistent
// with the remote store.
package syncstore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/remote"
	"github.com/nurpe/maintenance-tracker/internal/schedule"
)

type (
	ContractCollection   = Collection[model.ServiceContract, model.ServiceContractDraft]
	TicketCollection     = Collection[model.SupportTicket, model.SupportTicketDraft]
	VisitCollection      = Collection[model.VisitRecord, model.VisitRecordDraft]
	ComplianceCollection = Collection[model.ComplianceService, model.ComplianceServiceDraft]
)

// Store is constructed once per process and shared by reference.
type Store struct {
	Contracts  *ContractCollection
	Tickets    *TicketCollection
	Visits     *VisitCollection
	Compliance *ComplianceCollection
	Budgets    *Budgets

	calendar  *schedule.Calendar
	mutations *Tracker
	log       zerolog.Logger
}

func New(rs remote.Store, calendar *schedule.Calendar, blobs BlobStorage, log zerolog.Logger) *Store {
	log = log.With().Str("component", "syncstore").Logger()
	tracker := NewTracker(defaultMutationHistory)

	s := &Store{
		calendar:  calendar,
		mutations: tracker,
		log:       log,
	}
	s.Contracts = newCollection(rs, contractCodec, buildContract, tracker, log)
	s.Tickets = newCollection(rs, ticketCodec, buildTicket, tracker, log)
	s.Visits = newCollection(rs, visitCodec, buildVisit, tracker, log)
	s.Compliance = newCollection(rs, complianceCodec, s.buildCompliance, tracker, log)
	s.Budgets = newBudgets(rs, blobs, tracker, log)
	return s
}

type loader interface {
	Name() string
	Load(ctx context.Context) error
}

// Load fetches every entity kind once. A kind that fails stays empty and is
// reported in the returned *LoadError; the others are populated regardless.
func (s *Store) Load(ctx context.Context) error {
	loaders := []loader{s.Contracts, s.Tickets, s.Visits, s.Compliance, s.Budgets}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)
	p := pool.New().WithMaxGoroutines(len(loaders))
	for _, l := range loaders {
		p.Go(func() {
			if err := l.Load(ctx); err != nil {
				s.log.Error().Err(err).Str("collection", l.Name()).Msg("initial load failed")
				mu.Lock()
				failed[l.Name()] = err
				mu.Unlock()
			}
		})
	}
	p.Wait()

	if len(failed) > 0 {
		return &LoadError{Failed: failed}
	}
	return nil
}

func (s *Store) Calendar() *schedule.Calendar {
	return s.calendar
}

func (s *Store) Mutations() *Tracker {
	return s.mutations
}

func buildContract(d model.ServiceContractDraft) (model.ServiceContract, error) {
	if err := d.Validate(); err != nil {
		return model.ServiceContract{}, err
	}
	return d.Entity(), nil
}

func buildTicket(d model.SupportTicketDraft) (model.SupportTicket, error) {
	if err := d.Validate(); err != nil {
		return model.SupportTicket{}, err
	}
	return d.Entity(), nil
}

func buildVisit(d model.VisitRecordDraft) (model.VisitRecord, error) {
	if err := d.Validate(); err != nil {
		return model.VisitRecord{}, err
	}
	return d.Entity(), nil
}

// buildCompliance derives NextMaintenance and DaysToExpire; callers cannot
// supply either.
func (s *Store) buildCompliance(d model.ComplianceServiceDraft) (model.ComplianceService, error) {
	if err := d.Validate(); err != nil {
		return model.ComplianceService{}, err
	}
	next, days, err := s.calendar.Derive(d.LastMaintenance, d.Periodicity)
	if err != nil {
		return model.ComplianceService{}, err
	}
	return model.ComplianceService{
		Service:         d.Service,
		Periodicity:     d.Periodicity,
		LastMaintenance: schedule.DateOnly(d.LastMaintenance),
		NextMaintenance: next,
		DaysToExpire:    days,
	}, nil
}
