package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

type dashboardResponse struct {
	GeneratedAt      string                     `json:"generated_at"`
	TotalTickets     int                        `json:"total_tickets"`
	TicketsByStatus  map[model.TicketStatus]int `json:"tickets_by_status"`
	ActiveContracts  int                        `json:"active_contracts"`
	NearExpiration   int                        `json:"near_expiration"`
	Upcoming         []complianceResponse       `json:"upcoming"`
	RecentTickets    []ticketResponse           `json:"recent_tickets"`
	PendingBudgets   int                        `json:"pending_budgets"`
	PendingMutations int                        `json:"pending_mutations"`
}

type mutationResponse struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	Op         string     `json:"op"`
	EntityID   string     `json:"entity_id,omitempty"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (h *Handler) getDashboard(c *gin.Context) {
	d := h.dashboard.Summary()
	upcoming := make([]complianceResponse, 0, len(d.Upcoming))
	for _, item := range d.Upcoming {
		upcoming = append(upcoming, renderCompliance(item.ComplianceService))
	}
	recent := make([]ticketResponse, 0, len(d.RecentTickets))
	for _, t := range d.RecentTickets {
		recent = append(recent, renderTicket(t))
	}

	c.JSON(http.StatusOK, dashboardResponse{
		GeneratedAt:      formatDate(d.GeneratedAt),
		TotalTickets:     d.TotalTickets,
		TicketsByStatus:  d.TicketsByStatus,
		ActiveContracts:  d.ActiveContracts,
		NearExpiration:   d.NearExpiration,
		Upcoming:         upcoming,
		RecentTickets:    recent,
		PendingBudgets:   d.PendingBudgets,
		PendingMutations: d.PendingMutations,
	})
}

func (h *Handler) listMutations(c *gin.Context) {
	recent := h.store.Mutations().Recent()
	out := make([]mutationResponse, 0, len(recent))
	for _, m := range recent {
		resp := mutationResponse{
			ID:         m.ID.String(),
			Collection: m.Collection,
			Op:         string(m.Op),
			EntityID:   m.EntityID,
			Status:     string(m.Status),
			Error:      m.Error,
			StartedAt:  m.StartedAt,
		}
		if !m.FinishedAt.IsZero() {
			finished := m.FinishedAt
			resp.FinishedAt = &finished
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) exportContractsPDF(c *gin.Context) {
	report, err := h.reports.ContractsPDF(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendReport(c, report)
}

func (h *Handler) exportTicketsPDF(c *gin.Context) {
	report, err := h.reports.TicketsPDF(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendReport(c, report)
}

func (h *Handler) exportWorkbook(c *gin.Context) {
	report, err := h.reports.Workbook(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendReport(c, report)
}

func sendReport(c *gin.Context, report *model.Report) {
	c.Header("Content-Disposition", "attachment; filename=\""+report.FileName+"\"")
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
