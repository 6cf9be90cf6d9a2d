package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

var generatedAt = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func TestContractsReport(t *testing.T) {
	g := &Generator{location: time.UTC}
	note := "Contrato anual"
	out, err := g.Contracts([]model.ServiceContract{{
		ID:                   "c-1",
		Area:                 "Elevadores",
		Periodicity:          model.PeriodicityMonthly,
		ProviderName:         "Atlas Schindler",
		Note:                 &note,
		LastMaintenance:      time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		NextMaintenance:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		TechnicalResponsible: "Carlos Lima",
	}}, generatedAt)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "Empresas Especializadas")
	assert.Contains(t, string(out), "Atlas Schindler")
	assert.Contains(t, string(out), "28/02/2025")
	assert.Contains(t, string(out), "20/05/2025")
}

func TestTicketsReportEmpty(t *testing.T) {
	g := &Generator{location: time.UTC}
	out, err := g.Tickets(nil, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Nenhum registro encontrado.")
}

func TestTicketsReportPaginates(t *testing.T) {
	tickets := make([]model.SupportTicket, 60)
	for i := range tickets {
		tickets[i] = model.SupportTicket{
			ID:          "t",
			OpeningDate: generatedAt,
			Protocol:    "SC-2025",
			Area:        "Hidráulica",
			Problem:     strings.Repeat("vazamento ", 30),
			Status:      model.TicketStatusPending,
		}
	}
	out, err := NewGenerator(nil).Tickets(tickets, generatedAt)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
