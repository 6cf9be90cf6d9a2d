package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/service"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

const defaultMaxUploadBytes = 20 << 20

// BlobReader serves objects kept by the in-process blob store, given the
// token from a link it issued.
type BlobReader interface {
	Open(key, token string) ([]byte, string, error)
}

type Handler struct {
	store     *syncstore.Store
	dashboard *service.DashboardService
	reports   *service.ReportService
	blobs     BlobReader
	maxUpload int64
	log       zerolog.Logger
}

type Option func(*Handler)

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithBlobReader exposes GET /blobs/*key?token= for signed links issued by an
// in-process blob store.
func WithBlobReader(blobs BlobReader) Option {
	return func(h *Handler) {
		h.blobs = blobs
	}
}

func NewHandler(store *syncstore.Store, dashboard *service.DashboardService, reports *service.ReportService, log zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		store:     store,
		dashboard: dashboard,
		reports:   reports,
		maxUpload: defaultMaxUploadBytes,
		log:       log.With().Str("component", "http").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)
	if h.blobs != nil {
		router.GET("/blobs/*key", h.serveBlob)
	}

	protected := router.Group("/")
	protected.Use(authMiddleware)

	registerResource(h, protected, "/contracts", contractResource(h.store.Contracts))
	registerResource(h, protected, "/tickets", ticketResource(h.store.Tickets))
	registerResource(h, protected, "/visits", visitResource(h.store.Visits))
	registerResource(h, protected, "/compliance", complianceResource(h.store.Compliance))

	protected.GET("/contracts/export/pdf", h.exportContractsPDF)
	protected.GET("/tickets/export/pdf", h.exportTicketsPDF)
	protected.GET("/export/xlsx", h.exportWorkbook)
	protected.GET("/dashboard", h.getDashboard)
	protected.GET("/mutations", h.listMutations)

	protected.GET("/budgets", h.listBudgets)
	protected.GET("/budgets/pending", h.listPendingBudgets)
	protected.POST("/budgets", h.createBudget)
	protected.POST("/budgets/:id/documents", h.addBudgetDocuments)
	protected.DELETE("/budgets/:id", h.deleteBudget)
	protected.GET("/budgets/:id/documents/:documentID", h.downloadBudgetDocument)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"collections": gin.H{
			h.store.Contracts.Name():  h.store.Contracts.Len(),
			h.store.Tickets.Name():    h.store.Tickets.Len(),
			h.store.Visits.Name():     h.store.Visits.Len(),
			h.store.Compliance.Name(): h.store.Compliance.Len(),
			h.store.Budgets.Name():    len(h.store.Budgets.List()),
		},
		"pending_mutations": h.store.Mutations().Pending(),
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		validation *model.ValidationError
		remoteErr  *syncstore.RemoteError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validation.Fields})
	case errors.Is(err, model.ErrInvalidPeriodicity), errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &remoteErr):
		h.log.Warn().Err(err).Str("code", remoteErr.Code).Msg("remote store rejected request")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "remote store rejected the request",
			"code":    remoteErr.Code,
			"message": remoteErr.Message,
			"details": remoteErr.Details,
			"hint":    remoteErr.Hint,
		})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"02/01/2006",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// dateFields parses several optional dates and reports the malformed ones
// together. Empty values stay zero so that draft validation reports them.
type dateFields struct {
	invalid map[string]string
}

func (d *dateFields) parse(name, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	t, err := parseDate(raw)
	if err != nil {
		if d.invalid == nil {
			d.invalid = make(map[string]string)
		}
		d.invalid[name] = "invalid date"
		return time.Time{}
	}
	return t
}

func (d *dateFields) err() error {
	if len(d.invalid) == 0 {
		return nil
	}
	return &model.ValidationError{Fields: d.invalid}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
