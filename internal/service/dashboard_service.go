package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/schedule"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

const (
	upcomingWindowDays = 30
	dashboardListSize  = 5
)

type ExpiringService struct {
	model.ComplianceService
	Urgency schedule.Level
}

type Dashboard struct {
	GeneratedAt      time.Time
	TotalTickets     int
	TicketsByStatus  map[model.TicketStatus]int
	ActiveContracts  int
	NearExpiration   int
	Upcoming         []ExpiringService
	RecentTickets    []model.SupportTicket
	PendingBudgets   int
	PendingMutations int
}

type DashboardService struct {
	store *syncstore.Store
}

func NewDashboardService(store *syncstore.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary reads the cache only. Days to expire are recomputed against today
// so that a stale stored value never hides an overdue item.
func (s *DashboardService) Summary() Dashboard {
	calendar := s.store.Calendar()
	tickets := s.store.Tickets.List()

	byStatus := make(map[model.TicketStatus]int, len(model.TicketStatuses()))
	for _, status := range model.TicketStatuses() {
		byStatus[status] = 0
	}
	for _, t := range tickets {
		byStatus[t.Status]++
	}

	var upcoming []ExpiringService
	near := 0
	for _, item := range s.store.Compliance.List() {
		item.DaysToExpire = calendar.DaysToExpire(item.NextMaintenance)
		if schedule.NearExpiration(item.DaysToExpire) {
			near++
		}
		if item.DaysToExpire <= upcomingWindowDays {
			upcoming = append(upcoming, ExpiringService{ComplianceService: item, Urgency: schedule.Urgency(item.DaysToExpire)})
		}
	}
	slices.SortStableFunc(upcoming, func(a, b ExpiringService) int {
		return cmp.Compare(a.DaysToExpire, b.DaysToExpire)
	})

	recent := slices.Clone(tickets)
	slices.SortStableFunc(recent, func(a, b model.SupportTicket) int {
		return b.OpeningDate.Compare(a.OpeningDate)
	})

	return Dashboard{
		GeneratedAt:      calendar.Today(),
		TotalTickets:     len(tickets),
		TicketsByStatus:  byStatus,
		ActiveContracts:  s.store.Contracts.Len(),
		NearExpiration:   near,
		Upcoming:         head(upcoming, dashboardListSize),
		RecentTickets:    head(recent, dashboardListSize),
		PendingBudgets:   len(s.store.Budgets.Pending()),
		PendingMutations: s.store.Mutations().Pending(),
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
