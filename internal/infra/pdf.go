package infra

// pdf.go — closing-summary PDF for a caixa session, rendered by the worker
// pool after a close. A small A5 page: operator, opening/closing balances,
// difference, and the session period.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// FechamentoResumo is the data needed to render the closing summary without
// touching the database — the job payload carries a snapshot.
type FechamentoResumo struct {
	CaixaID        string
	Operador       string
	ValorInicial   decimal.Decimal
	SaldoFinal     decimal.Decimal
	DataAbertura   string // dd/mm/yyyy hh:mm
	DataFechamento string
}

// GenerateFechamentoPDF writes the summary to storagePath (created if needed)
// and returns the absolute path of the generated file.
func GenerateFechamentoPDF(resumo FechamentoResumo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", resumo.CaixaID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 28

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 6, "Caixa "+resumo.CaixaID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Operador: "+resumo.Operador, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(14, pdf.GetY(), pageW-14, pdf.GetY())
	pdf.Ln(3)

	labelW := contentW * 0.55
	valueW := contentW * 0.45

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, value, "", 1, "R", false, 0, "")
	}

	diferenca := resumo.SaldoFinal.Sub(resumo.ValorInicial)

	row("Abertura:", resumo.DataAbertura, false)
	row("Fechamento:", resumo.DataFechamento, false)
	pdf.Ln(2)
	row("Valor inicial:", "R$ "+resumo.ValorInicial.StringFixed(2), false)
	row("Saldo final declarado:", "R$ "+resumo.SaldoFinal.StringFixed(2), false)
	row("Diferença:", "R$ "+diferenca.StringFixed(2), true)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
