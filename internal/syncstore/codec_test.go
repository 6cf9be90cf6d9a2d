package syncstore

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/remote"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundTrip[T any](t *testing.T, c codec[T], v T) {
	t.Helper()
	row := c.encode(v)
	assert.NotContains(t, row, idColumn)
	row[idColumn] = *c.id(&v)

	got, err := c.decode(row)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestCodecRoundTrip(t *testing.T) {
	note := "Contrato renovado em janeiro"

	roundTrip(t, contractCodec, model.ServiceContract{
		ID:                   "c-1",
		Area:                 "Elevadores",
		Periodicity:          model.PeriodicityMonthly,
		ProviderName:         "Atlas Schindler",
		Note:                 &note,
		LastMaintenance:      day(2025, 4, 2),
		NextMaintenance:      day(2025, 5, 2),
		TechnicalResponsible: "Marcos",
	})
	roundTrip(t, contractCodec, model.ServiceContract{
		ID:                   "c-2",
		Area:                 "Ar condicionado",
		Periodicity:          model.PeriodicityAnnual,
		ProviderName:         "Frio Total",
		LastMaintenance:      day(2024, 11, 30),
		NextMaintenance:      day(2025, 11, 30),
		TechnicalResponsible: "Paula",
	})
	roundTrip(t, ticketCodec, model.SupportTicket{
		ID:          "t-1",
		OpeningDate: day(2025, 3, 14),
		Protocol:    "OS-2025-0042",
		Area:        "Hidráulica",
		Problem:     "Vazamento no subsolo",
		Status:      model.TicketStatusUnderReview,
	})
	roundTrip(t, visitCodec, model.VisitRecord{
		ID:          "v-1",
		Date:        day(2025, 2, 1),
		Time:        "14:30",
		Company:     "Volt Serviços",
		Description: "Troca de disjuntores",
		Responsible: "Ana",
	})
	roundTrip(t, complianceCodec, model.ComplianceService{
		ID:              "a-1",
		Service:         "Recarga de extintores",
		Periodicity:     model.PeriodicitySemiannual,
		LastMaintenance: day(2025, 1, 10),
		NextMaintenance: day(2025, 7, 10),
		DaysToExpire:    -4,
	})
	roundTrip(t, budgetDocumentCodec, model.BudgetDocument{
		ID:       "d-1",
		BudgetID: "b-1",
		FileName: "orcamento.pdf",
		FilePath: "u-1/b-1/x.pdf",
		FileType: "application/pdf",
		FileSize: 20480,
		UserID:   "u-1",
	})
}

func TestBudgetCodecDoesNotWriteCreatedAt(t *testing.T) {
	created := time.Date(2025, 5, 1, 13, 4, 5, 0, time.UTC)
	budget := model.Budget{ID: "b-1", Description: "Reforma da guarita", UserID: "u-1", CreatedAt: created}

	row := budgetCodec.encode(budget)
	assert.NotContains(t, row, "created_at")

	row[idColumn] = "b-1"
	row["created_at"] = created
	got, err := budgetCodec.decode(row)
	require.NoError(t, err)
	assert.Equal(t, budget, got)
}

// Every struct field except the identifier must have a column, so adding a
// field without extending its table fails here.
func TestCodecsCoverEveryField(t *testing.T) {
	check := func(name string, typ reflect.Type, columns []string, skipped ...string) {
		covered := len(columns) + len(skipped)
		assert.Equal(t, typ.NumField(), covered, "%s: fields %d, columns %v", name, typ.NumField(), columns)
	}
	check("contracts", reflect.TypeOf(model.ServiceContract{}), contractCodec.columns())
	check("tickets", reflect.TypeOf(model.SupportTicket{}), ticketCodec.columns())
	check("visits", reflect.TypeOf(model.VisitRecord{}), visitCodec.columns())
	check("compliance", reflect.TypeOf(model.ComplianceService{}), complianceCodec.columns())
	check("budgets", reflect.TypeOf(model.Budget{}), budgetCodec.columns(), "Documents")
	check("budget documents", reflect.TypeOf(model.BudgetDocument{}), budgetDocumentCodec.columns())

	for _, c := range [][]string{
		contractCodec.columns(), ticketCodec.columns(), visitCodec.columns(),
		complianceCodec.columns(), budgetCodec.columns(), budgetDocumentCodec.columns(),
	} {
		seen := make(map[string]bool)
		for _, col := range c {
			assert.False(t, seen[col], "duplicate column %s", col)
			seen[col] = true
		}
	}
}

func TestDecodeIgnoresUnknownColumns(t *testing.T) {
	row := remote.Row{
		"id":           "t-9",
		"opening_date": time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		"protocol":     "P-1",
		"area":         "Portaria",
		"problem":      "Interfone mudo",
		"status":       "Pendente",
		"created_at":   time.Now(),
		"user_id":      "someone",
	}
	got, err := ticketCodec.decode(row)
	require.NoError(t, err)
	assert.Equal(t, "t-9", got.ID)
	assert.Equal(t, day(2025, 6, 1), got.OpeningDate)
	assert.Equal(t, model.TicketStatusPending, got.Status)
}

func TestDecodeRejectsMissingAndMistypedColumns(t *testing.T) {
	_, err := visitCodec.decode(remote.Row{"id": "v-1", "date": "2025-01-01"})
	assert.ErrorIs(t, err, ErrMalformedRow)

	_, err = complianceCodec.decode(remote.Row{
		"id":               "a-1",
		"service":          "Hidrantes",
		"periodicity":      "Anual",
		"last_maintenance": "2025-01-01",
		"next_maintenance": "2026-01-01",
		"days_to_expire":   "soon",
	})
	assert.ErrorIs(t, err, ErrMalformedRow)

	_, err = visitCodec.decode(remote.Row{"date": "2025-01-01"})
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestDecodeAcceptsStoreNativeTypes(t *testing.T) {
	got, err := complianceCodec.decode(remote.Row{
		"id":               "a-1",
		"service":          []byte("Para-raios"),
		"periodicity":      "Anual",
		"last_maintenance": time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
		"next_maintenance": "2026-01-01T00:00:00Z",
		"days_to_expire":   int64(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "Para-raios", got.Service)
	assert.Equal(t, day(2025, 1, 1), got.LastMaintenance)
	assert.Equal(t, day(2026, 1, 1), got.NextMaintenance)
	assert.Equal(t, 200, got.DaysToExpire)
}
