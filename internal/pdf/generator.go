package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

const fontName = "Helvetica"

var headerFill = [3]int{37, 99, 235}

type Generator struct {
	compress bool
	location *time.Location
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{compress: true, location: loc}
}

type table struct {
	title     string
	dateLabel string
	headers   []string
	widths    []float64
	rows      [][]string
}

// Contracts renders the specialized companies report.
func (g *Generator) Contracts(contracts []model.ServiceContract, generatedAt time.Time) ([]byte, error) {
	rows := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, []string{
			c.ProviderName,
			c.Area,
			string(c.Periodicity),
			formatDate(c.LastMaintenance),
			formatDate(c.NextMaintenance),
			c.TechnicalResponsible,
		})
	}
	return g.render(table{
		title:     "Relatório de Empresas Especializadas",
		dateLabel: "Data",
		headers:   []string{"Empresa", "Área", "Periodicidade", "Última Manutenção", "Próxima Manutenção", "Responsável"},
		widths:    []float64{50, 40, 28, 32, 32, 45},
		rows:      rows,
	}, generatedAt)
}

func (g *Generator) Tickets(tickets []model.SupportTicket, generatedAt time.Time) ([]byte, error) {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			formatDate(t.OpeningDate),
			t.Protocol,
			t.Area,
			t.Problem,
			string(t.Status),
		})
	}
	return g.render(table{
		title:     "Relatório de Chamados",
		dateLabel: "Gerado em",
		headers:   []string{"Data", "Protocolo", "Área", "Problema", "Status"},
		widths:    []float64{25, 35, 40, 100, 27},
		rows:      rows,
	}, generatedAt)
}

func (g *Generator) render(t table, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetCreationDate(generatedAt)
	pdf.SetMargins(14, 15, 14)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(t.title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: %s", t.dateLabel, formatDate(generatedAt.In(g.location)))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	drawHeader(pdf, tr, t.headers, t.widths)
	pdf.SetFont(fontName, "", 8)
	for i, row := range t.rows {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			drawHeader(pdf, tr, t.headers, t.widths)
			pdf.SetFont(fontName, "", 8)
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for j, col := range row {
			pdf.CellFormat(t.widths[j], 7, tr(truncate(pdf, safeValue(col), t.widths[j])), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.rows) == 0 {
		pdf.SetFont(fontName, "I", 9)
		pdf.CellFormat(0, 8, tr("Nenhum registro encontrado."), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, widths []float64) {
	pdf.SetFont(fontName, "B", 9)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// truncate shortens text to fit a cell, leaving room for the padding.
func truncate(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}
