package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type PDFGenerator interface {
	Contracts(contracts []model.ServiceContract, generatedAt time.Time) ([]byte, error)
	Tickets(tickets []model.SupportTicket, generatedAt time.Time) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(snapshot model.Snapshot) ([]byte, error)
}

type ReportService struct {
	store *syncstore.Store
	pdf   PDFGenerator
	excel ExcelGenerator
}

func NewReportService(store *syncstore.Store, pdf PDFGenerator, excel ExcelGenerator) *ReportService {
	return &ReportService{store: store, pdf: pdf, excel: excel}
}

func (s *ReportService) ContractsPDF(ctx context.Context) (*model.Report, error) {
	content, err := s.pdf.Contracts(s.store.Contracts.List(), s.store.Calendar().Today())
	if err != nil {
		return nil, fmt.Errorf("render contracts pdf: %w", err)
	}
	return &model.Report{FileName: "relatorio-empresas.pdf", ContentType: contentTypePDF, Content: content}, nil
}

// TicketsPDF renders tickets, optionally only those with the given status.
// An empty status or "Todos" selects every ticket.
func (s *ReportService) TicketsPDF(ctx context.Context, status string) (*model.Report, error) {
	status = strings.TrimSpace(status)
	tickets := s.store.Tickets.List()
	if status != "" && !strings.EqualFold(status, "Todos") {
		want := model.TicketStatus(status)
		if !want.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		filtered := tickets[:0]
		for _, t := range tickets {
			if t.Status == want {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	content, err := s.pdf.Tickets(tickets, s.store.Calendar().Today())
	if err != nil {
		return nil, fmt.Errorf("render tickets pdf: %w", err)
	}
	return &model.Report{FileName: "relatorio-chamados.pdf", ContentType: contentTypePDF, Content: content}, nil
}

func (s *ReportService) Workbook(ctx context.Context) (*model.Report, error) {
	today := s.store.Calendar().Today()
	snapshot := model.Snapshot{
		GeneratedAt: today,
		Contracts:   s.store.Contracts.List(),
		Tickets:     s.store.Tickets.List(),
		Visits:      s.store.Visits.List(),
		Compliance:  s.store.Compliance.List(),
		Budgets:     s.store.Budgets.List(),
	}
	content, err := s.excel.Generate(snapshot)
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return &model.Report{
		FileName:    fmt.Sprintf("manutencao-%s.xlsx", today.Format("2006-01-02")),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}
