package worker

import (
	"encoding/json"
	"fmt"

	"caixapos/internal/infra"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// FechamentoPDFWorker renders the closing-summary PDF for a closed caixa.
type FechamentoPDFWorker struct {
	storagePath string
}

func NewFechamentoPDFWorker(storagePath string) *FechamentoPDFWorker {
	return &FechamentoPDFWorker{storagePath: storagePath}
}

func (w *FechamentoPDFWorker) Process(payload json.RawMessage) error {
	var job FechamentoPDFJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("fechamento_pdf: unmarshal payload: %w", err)
	}

	valorInicial, err := decimal.NewFromString(job.ValorInicial)
	if err != nil {
		return fmt.Errorf("fechamento_pdf: valor_inicial %q: %w", job.ValorInicial, err)
	}
	saldoFinal, err := decimal.NewFromString(job.SaldoFinal)
	if err != nil {
		return fmt.Errorf("fechamento_pdf: saldo_final %q: %w", job.SaldoFinal, err)
	}

	path, err := infra.GenerateFechamentoPDF(infra.FechamentoResumo{
		CaixaID:        job.CaixaID,
		Operador:       job.Operador,
		ValorInicial:   valorInicial,
		SaldoFinal:     saldoFinal,
		DataAbertura:   job.DataAbertura,
		DataFechamento: job.DataFechamento,
	}, w.storagePath)
	if err != nil {
		return err
	}

	log.Info().Str("caixa_id", job.CaixaID).Str("path", path).Msg("closing summary PDF generated")
	return nil
}
