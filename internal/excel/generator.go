package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// Generate writes one sheet per entity kind.
func (g *Generator) Generate(snapshot model.Snapshot) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2563EB"}},
	})
	if err != nil {
		return nil, err
	}

	sheets := []sheet{
		contractsSheet(snapshot.Contracts),
		ticketsSheet(snapshot.Tickets),
		visitsSheet(snapshot.Visits),
		complianceSheet(snapshot.Compliance),
		budgetsSheet(snapshot.Budgets),
	}
	for i, s := range sheets {
		if i == 0 {
			if err := file.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := file.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(file, s, headerStyle); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(file *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := file.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(s.headers))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(s.name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	for i, width := range s.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = file.SetColWidth(s.name, col, col, width)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func contractsSheet(items []model.ServiceContract) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, c := range items {
		rows = append(rows, []interface{}{
			c.ProviderName, c.Area, string(c.Periodicity),
			formatDate(c.LastMaintenance), formatDate(c.NextMaintenance),
			c.TechnicalResponsible, formatString(c.Note),
		})
	}
	return sheet{
		name:    "Empresas",
		headers: []string{"Empresa", "Área", "Periodicidade", "Última Manutenção", "Próxima Manutenção", "Responsável Técnico", "Observação"},
		widths:  []float64{32, 20, 14, 18, 18, 26, 40},
		rows:    rows,
	}
}

func ticketsSheet(items []model.SupportTicket) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, t := range items {
		rows = append(rows, []interface{}{formatDate(t.OpeningDate), t.Protocol, t.Area, t.Problem, string(t.Status)})
	}
	return sheet{
		name:    "Chamados",
		headers: []string{"Data de Abertura", "Protocolo", "Área", "Problema", "Status"},
		widths:  []float64{16, 18, 20, 50, 12},
		rows:    rows,
	}
}

func visitsSheet(items []model.VisitRecord) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, v := range items {
		rows = append(rows, []interface{}{formatDate(v.Date), v.Time, v.Company, v.Description, v.Responsible})
	}
	return sheet{
		name:    "Visitas",
		headers: []string{"Data", "Horário", "Empresa", "Descrição", "Responsável"},
		widths:  []float64{12, 10, 30, 50, 24},
		rows:    rows,
	}
}

func complianceSheet(items []model.ComplianceService) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, s := range items {
		rows = append(rows, []interface{}{
			s.Service, string(s.Periodicity),
			formatDate(s.LastMaintenance), formatDate(s.NextMaintenance), s.DaysToExpire,
		})
	}
	return sheet{
		name:    "AVCB",
		headers: []string{"Serviço", "Periodicidade", "Última Manutenção", "Próxima Manutenção", "Dias para Vencer"},
		widths:  []float64{36, 14, 18, 18, 16},
		rows:    rows,
	}
}

func budgetsSheet(items []model.Budget) sheet {
	rows := make([][]interface{}, 0, len(items))
	for _, b := range items {
		names := make([]string, 0, len(b.Documents))
		for _, d := range b.Documents {
			names = append(names, d.FileName)
		}
		rows = append(rows, []interface{}{formatDateTime(b.CreatedAt), b.Description, len(b.Documents), strings.Join(names, ", ")})
	}
	return sheet{
		name:    "Orçamentos",
		headers: []string{"Criado em", "Descrição", "Documentos", "Arquivos"},
		widths:  []float64{18, 50, 12, 50},
		rows:    rows,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
