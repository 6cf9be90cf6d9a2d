package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/remote"
	"github.com/nurpe/maintenance-tracker/internal/schedule"
	"github.com/nurpe/maintenance-tracker/internal/storage"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

var today = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T) *syncstore.Store {
	t.Helper()
	calendar := schedule.NewCalendar(time.UTC, schedule.WithClock(func() time.Time { return today }))
	return syncstore.New(remote.NewMemory(syncstore.Collections()...), calendar, storage.NewMemory("http://localhost/blobs"), zerolog.Nop())
}

func addCompliance(t *testing.T, s *syncstore.Store, name string, last time.Time, p model.Periodicity) model.ComplianceService {
	t.Helper()
	item, err := s.Compliance.Create(context.Background(), model.ComplianceServiceDraft{Service: name, Periodicity: p, LastMaintenance: last})
	require.NoError(t, err)
	return item
}

func addTicket(t *testing.T, s *syncstore.Store, protocol string, opened time.Time, status model.TicketStatus) {
	t.Helper()
	_, err := s.Tickets.Create(context.Background(), model.SupportTicketDraft{
		OpeningDate: opened, Protocol: protocol, Area: "Predial", Problem: "Infiltração", Status: status,
	})
	require.NoError(t, err)
}

func TestDashboardSummary(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	addTicket(t, s, "SC-1", date(2025, 5, 1), model.TicketStatusResolved)
	addTicket(t, s, "SC-2", date(2025, 5, 10), model.TicketStatusPending)
	addTicket(t, s, "SC-3", date(2025, 5, 15), model.TicketStatusPending)

	_, err := s.Contracts.Create(ctx, model.ServiceContractDraft{
		Area: "Elevadores", Periodicity: model.PeriodicityMonthly, ProviderName: "Atlas",
		LastMaintenance: date(2025, 5, 1), NextMaintenance: date(2025, 6, 1), TechnicalResponsible: "Carlos",
	})
	require.NoError(t, err)

	addCompliance(t, s, "Extintores", date(2025, 5, 5), model.PeriodicityMonthly)   // 16 days
	addCompliance(t, s, "Hidrantes", date(2025, 4, 25), model.PeriodicityMonthly)   // 5 days
	addCompliance(t, s, "Para-raios", date(2025, 4, 10), model.PeriodicityMonthly)  // -10 days
	addCompliance(t, s, "Alarme", date(2025, 1, 1), model.PeriodicityAnnual)        // far away
	addCompliance(t, s, "Iluminação", date(2025, 3, 1), model.PeriodicityQuarterly) // 12 days

	d := NewDashboardService(s).Summary()

	assert.Equal(t, date(2025, 5, 20), d.GeneratedAt)
	assert.Equal(t, 3, d.TotalTickets)
	assert.Equal(t, 1, d.TicketsByStatus[model.TicketStatusResolved])
	assert.Equal(t, 2, d.TicketsByStatus[model.TicketStatusPending])
	assert.Equal(t, 0, d.TicketsByStatus[model.TicketStatusUnderReview])
	assert.Equal(t, 1, d.ActiveContracts)
	assert.Equal(t, 3, d.NearExpiration)

	require.Len(t, d.Upcoming, 4)
	names := make([]string, len(d.Upcoming))
	for i, item := range d.Upcoming {
		names[i] = item.Service
	}
	assert.Equal(t, []string{"Para-raios", "Hidrantes", "Iluminação", "Extintores"}, names)
	assert.Equal(t, -10, d.Upcoming[0].DaysToExpire)
	assert.Equal(t, schedule.LevelCritical, d.Upcoming[0].Urgency)
	assert.Equal(t, schedule.LevelNotice, d.Upcoming[3].Urgency)

	require.Len(t, d.RecentTickets, 3)
	assert.Equal(t, "SC-3", d.RecentTickets[0].Protocol)
	assert.Zero(t, d.PendingBudgets)
	assert.Zero(t, d.PendingMutations)
}

func TestDashboardUsesLiveDaysToExpire(t *testing.T) {
	now := date(2025, 5, 1)
	calendar := schedule.NewCalendar(time.UTC, schedule.WithClock(func() time.Time { return now }))
	s := syncstore.New(remote.NewMemory(syncstore.Collections()...), calendar, storage.NewMemory(""), zerolog.Nop())

	item := addCompliance(t, s, "Extintores", date(2025, 5, 1), model.PeriodicityMonthly)
	require.Equal(t, 31, item.DaysToExpire)

	now = date(2025, 5, 25)
	d := NewDashboardService(s).Summary()
	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, 7, d.Upcoming[0].DaysToExpire)
	assert.Equal(t, 1, d.NearExpiration)

	stored, ok := s.Compliance.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, 31, stored.DaysToExpire)
}

type fakePDF struct {
	contracts []model.ServiceContract
	tickets   []model.SupportTicket
	at        time.Time
	err       error
}

func (f *fakePDF) Contracts(contracts []model.ServiceContract, generatedAt time.Time) ([]byte, error) {
	f.contracts, f.at = contracts, generatedAt
	return []byte("%PDF-contracts"), f.err
}

func (f *fakePDF) Tickets(tickets []model.SupportTicket, generatedAt time.Time) ([]byte, error) {
	f.tickets, f.at = tickets, generatedAt
	return []byte("%PDF-tickets"), f.err
}

type fakeExcel struct {
	snapshot model.Snapshot
}

func (f *fakeExcel) Generate(snapshot model.Snapshot) ([]byte, error) {
	f.snapshot = snapshot
	return []byte("xlsx"), nil
}

func TestTicketsPDFFilter(t *testing.T) {
	s := newStore(t)
	addTicket(t, s, "SC-1", date(2025, 5, 1), model.TicketStatusResolved)
	addTicket(t, s, "SC-2", date(2025, 5, 2), model.TicketStatusPending)

	pdf := &fakePDF{}
	reports := NewReportService(s, pdf, &fakeExcel{})
	ctx := context.Background()

	report, err := reports.TicketsPDF(ctx, "Pendente")
	require.NoError(t, err)
	assert.Equal(t, "relatorio-chamados.pdf", report.FileName)
	assert.Equal(t, "application/pdf", report.ContentType)
	require.Len(t, pdf.tickets, 1)
	assert.Equal(t, "SC-2", pdf.tickets[0].Protocol)

	_, err = reports.TicketsPDF(ctx, "todos")
	require.NoError(t, err)
	assert.Len(t, pdf.tickets, 2)
	assert.Len(t, s.Tickets.List(), 2)

	_, err = reports.TicketsPDF(ctx, "Fechado")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContractsPDF(t *testing.T) {
	s := newStore(t)
	pdf := &fakePDF{}
	report, err := NewReportService(s, pdf, &fakeExcel{}).ContractsPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "relatorio-empresas.pdf", report.FileName)
	assert.Equal(t, date(2025, 5, 20), pdf.at)

	pdf.err = errors.New("font missing")
	_, err = NewReportService(s, pdf, &fakeExcel{}).ContractsPDF(context.Background())
	assert.ErrorIs(t, err, pdf.err)
}

func TestWorkbook(t *testing.T) {
	s := newStore(t)
	addTicket(t, s, "SC-1", date(2025, 5, 1), model.TicketStatusResolved)
	addCompliance(t, s, "Extintores", date(2025, 5, 5), model.PeriodicityMonthly)

	excel := &fakeExcel{}
	report, err := NewReportService(s, &fakePDF{}, excel).Workbook(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "manutencao-2025-05-20.xlsx", report.FileName)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.ContentType)
	assert.Len(t, excel.snapshot.Tickets, 1)
	assert.Len(t, excel.snapshot.Compliance, 1)
	assert.Empty(t, excel.snapshot.Visits)
}
