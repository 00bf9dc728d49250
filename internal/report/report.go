// Package report renders the occurrence report as a paginated PDF.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
)

const title = "Relatório de Ocorrências — Defesa Civil"

// Build writes the PDF report for the given record set: a header block
// with the generation timestamp, a summary statistics block, then one
// entry per record in descending CreatedAt order. Page breaks are
// automatic and every page carries its number in the footer.
func Build(w io.Writer, records []domain.IncidentRecord, stats domain.Stats) error {
	sorted := make([]domain.IncidentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Página %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	writeHeader(pdf)
	writeStats(pdf, sorted, stats)

	for _, r := range sorted {
		writeEntry(pdf, r)
	}
	if len(sorted) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, tr(pdf, "Nenhuma ocorrência registrada."), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func writeHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(pdf, title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	generated := domain.Now().Format("02/01/2006 15:04")
	pdf.CellFormat(0, 6, tr(pdf, "Gerado em "+generated), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func writeStats(pdf *fpdf.Fpdf, records []domain.IncidentRecord, stats domain.Stats) {
	counts := domain.CountBySeverity(records)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Resumo", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Total de ocorrências: %d", stats.Total),
		fmt.Sprintf("Registradas hoje: %d", stats.Today),
		fmt.Sprintf("Severidade alta: %d  |  média: %d  |  baixa: %d  |  não classificada: %d",
			counts[domain.SeverityHigh],
			counts[domain.SeverityMedium],
			counts[domain.SeverityLow],
			counts[domain.SeverityUnclassified],
		),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, tr(pdf, line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeEntry(pdf *fpdf.Fpdf, r domain.IncidentRecord) {
	pdf.SetFont("Helvetica", "B", 10)
	heading := r.Type
	if heading == "" {
		heading = "Ocorrência"
	}
	pdf.CellFormat(0, 6, tr(pdf, fmt.Sprintf("%s — %s", heading, r.DisplayTime())), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr(pdf, fmt.Sprintf("Severidade: %s", r.Severity)), "", "L", false)
	pdf.MultiCell(0, 5, tr(pdf, fmt.Sprintf("Endereço: %s", r.Address)), "", "L", false)
	pdf.MultiCell(0, 5, tr(pdf, fmt.Sprintf("Descrição: %s", r.Description)), "", "L", false)
	pdf.Ln(3)
}

// tr translates UTF-8 strings to the core-font codepage so the accented
// Portuguese text renders correctly.
func tr(pdf *fpdf.Fpdf, s string) string {
	translator := pdf.UnicodeTranslatorFromDescriptor("")
	return translator(s)
}
