package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/schedule"
	"github.com/nurpe/maintenance-tracker/internal/service"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

// resource exposes one cached collection as list/create/update/delete routes.
type resource[T, D, R any] struct {
	collection *syncstore.Collection[T, D]
	decode     func(c *gin.Context) (D, error)
	render     func(T) R
}

func registerResource[T, D, R any](h *Handler, group *gin.RouterGroup, path string, r resource[T, D, R]) {
	group.GET(path, func(c *gin.Context) {
		items := r.collection.List()
		out := make([]R, 0, len(items))
		for _, item := range items {
			out = append(out, r.render(item))
		}
		c.JSON(http.StatusOK, out)
	})

	group.POST(path, func(c *gin.Context) {
		draft, err := r.decode(c)
		if err != nil {
			h.handleError(c, err)
			return
		}
		created, err := r.collection.Create(c.Request.Context(), draft)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r.render(created))
	})

	group.PUT(path+"/:id", func(c *gin.Context) {
		draft, err := r.decode(c)
		if err != nil {
			h.handleError(c, err)
			return
		}
		updated, err := r.collection.Update(c.Request.Context(), c.Param("id"), draft)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, r.render(updated))
	})

	group.DELETE(path+"/:id", func(c *gin.Context) {
		if err := r.collection.Delete(c.Request.Context(), c.Param("id")); err != nil {
			h.handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func bindJSON[Req, D any](toDraft func(Req) (D, error)) func(c *gin.Context) (D, error) {
	return func(c *gin.Context) (D, error) {
		var req Req
		if err := c.ShouldBindJSON(&req); err != nil {
			var zero D
			return zero, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
		}
		return toDraft(req)
	}
}

// periodicity accepts any known spelling; unknown values are passed through
// so that draft validation names the field.
func periodicity(raw string) model.Periodicity {
	if p, err := model.ParsePeriodicity(raw); err == nil {
		return p
	}
	return model.Periodicity(strings.TrimSpace(raw))
}

type contractRequest struct {
	Area                 string  `json:"area"`
	Periodicity          string  `json:"periodicity"`
	ProviderName         string  `json:"provider_name"`
	Note                 *string `json:"note"`
	LastMaintenance      string  `json:"last_maintenance"`
	NextMaintenance      string  `json:"next_maintenance"`
	TechnicalResponsible string  `json:"technical_responsible"`
}

type contractResponse struct {
	ID                   string            `json:"id"`
	Area                 string            `json:"area"`
	Periodicity          model.Periodicity `json:"periodicity"`
	ProviderName         string            `json:"provider_name"`
	Note                 *string           `json:"note"`
	LastMaintenance      string            `json:"last_maintenance"`
	NextMaintenance      string            `json:"next_maintenance"`
	TechnicalResponsible string            `json:"technical_responsible"`
}

func contractResource(collection *syncstore.ContractCollection) resource[model.ServiceContract, model.ServiceContractDraft, contractResponse] {
	return resource[model.ServiceContract, model.ServiceContractDraft, contractResponse]{
		collection: collection,
		decode: bindJSON(func(req contractRequest) (model.ServiceContractDraft, error) {
			var dates dateFields
			draft := model.ServiceContractDraft{
				Area:                 strings.TrimSpace(req.Area),
				Periodicity:          periodicity(req.Periodicity),
				ProviderName:         strings.TrimSpace(req.ProviderName),
				Note:                 req.Note,
				LastMaintenance:      dates.parse("last_maintenance", req.LastMaintenance),
				NextMaintenance:      dates.parse("next_maintenance", req.NextMaintenance),
				TechnicalResponsible: strings.TrimSpace(req.TechnicalResponsible),
			}
			return draft, dates.err()
		}),
		render: func(c model.ServiceContract) contractResponse {
			return contractResponse{
				ID:                   c.ID,
				Area:                 c.Area,
				Periodicity:          c.Periodicity,
				ProviderName:         c.ProviderName,
				Note:                 c.Note,
				LastMaintenance:      formatDate(c.LastMaintenance),
				NextMaintenance:      formatDate(c.NextMaintenance),
				TechnicalResponsible: c.TechnicalResponsible,
			}
		},
	}
}

type ticketRequest struct {
	OpeningDate string `json:"opening_date"`
	Protocol    string `json:"protocol"`
	Area        string `json:"area"`
	Problem     string `json:"problem"`
	Status      string `json:"status"`
}

type ticketResponse struct {
	ID          string             `json:"id"`
	OpeningDate string             `json:"opening_date"`
	Protocol    string             `json:"protocol"`
	Area        string             `json:"area"`
	Problem     string             `json:"problem"`
	Status      model.TicketStatus `json:"status"`
}

func renderTicket(t model.SupportTicket) ticketResponse {
	return ticketResponse{
		ID:          t.ID,
		OpeningDate: formatDate(t.OpeningDate),
		Protocol:    t.Protocol,
		Area:        t.Area,
		Problem:     t.Problem,
		Status:      t.Status,
	}
}

func ticketResource(collection *syncstore.TicketCollection) resource[model.SupportTicket, model.SupportTicketDraft, ticketResponse] {
	return resource[model.SupportTicket, model.SupportTicketDraft, ticketResponse]{
		collection: collection,
		decode: bindJSON(func(req ticketRequest) (model.SupportTicketDraft, error) {
			var dates dateFields
			draft := model.SupportTicketDraft{
				OpeningDate: dates.parse("opening_date", req.OpeningDate),
				Protocol:    strings.TrimSpace(req.Protocol),
				Area:        strings.TrimSpace(req.Area),
				Problem:     strings.TrimSpace(req.Problem),
				Status:      model.TicketStatus(strings.TrimSpace(req.Status)),
			}
			return draft, dates.err()
		}),
		render: renderTicket,
	}
}

type visitRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Responsible string `json:"responsible"`
}

type visitResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Responsible string `json:"responsible"`
}

func visitResource(collection *syncstore.VisitCollection) resource[model.VisitRecord, model.VisitRecordDraft, visitResponse] {
	return resource[model.VisitRecord, model.VisitRecordDraft, visitResponse]{
		collection: collection,
		decode: bindJSON(func(req visitRequest) (model.VisitRecordDraft, error) {
			var dates dateFields
			draft := model.VisitRecordDraft{
				Date:        dates.parse("date", req.Date),
				Time:        strings.TrimSpace(req.Time),
				Company:     strings.TrimSpace(req.Company),
				Description: strings.TrimSpace(req.Description),
				Responsible: strings.TrimSpace(req.Responsible),
			}
			return draft, dates.err()
		}),
		render: func(v model.VisitRecord) visitResponse {
			return visitResponse{
				ID:          v.ID,
				Date:        formatDate(v.Date),
				Time:        v.Time,
				Company:     v.Company,
				Description: v.Description,
				Responsible: v.Responsible,
			}
		},
	}
}

type complianceRequest struct {
	Service         string `json:"service"`
	Periodicity     string `json:"periodicity"`
	LastMaintenance string `json:"last_maintenance"`
}

type complianceResponse struct {
	ID              string            `json:"id"`
	Service         string            `json:"service"`
	Periodicity     model.Periodicity `json:"periodicity"`
	LastMaintenance string            `json:"last_maintenance"`
	NextMaintenance string            `json:"next_maintenance"`
	DaysToExpire    int               `json:"days_to_expire"`
	Urgency         schedule.Level    `json:"urgency"`
}

func renderCompliance(s model.ComplianceService) complianceResponse {
	return complianceResponse{
		ID:              s.ID,
		Service:         s.Service,
		Periodicity:     s.Periodicity,
		LastMaintenance: formatDate(s.LastMaintenance),
		NextMaintenance: formatDate(s.NextMaintenance),
		DaysToExpire:    s.DaysToExpire,
		Urgency:         schedule.Urgency(s.DaysToExpire),
	}
}

func complianceResource(collection *syncstore.ComplianceCollection) resource[model.ComplianceService, model.ComplianceServiceDraft, complianceResponse] {
	return resource[model.ComplianceService, model.ComplianceServiceDraft, complianceResponse]{
		collection: collection,
		decode: bindJSON(func(req complianceRequest) (model.ComplianceServiceDraft, error) {
			var dates dateFields
			draft := model.ComplianceServiceDraft{
				Service:         strings.TrimSpace(req.Service),
				Periodicity:     periodicity(req.Periodicity),
				LastMaintenance: dates.parse("last_maintenance", req.LastMaintenance),
			}
			return draft, dates.err()
		}),
		render: renderCompliance,
	}
}
