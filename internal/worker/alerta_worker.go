package worker

import (
	"encoding/json"
	"fmt"

	"caixapos/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertaEstoqueWorker mails the configured recipient when a product drops
// below its minimum stock.
type AlertaEstoqueWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewAlertaEstoqueWorker(mailer *infra.Mailer, to string) *AlertaEstoqueWorker {
	return &AlertaEstoqueWorker{mailer: mailer, to: to}
}

func (w *AlertaEstoqueWorker) Process(payload json.RawMessage) error {
	var job AlertaEstoqueJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("alerta_estoque: unmarshal payload: %w", err)
	}

	if w.to == "" {
		// No recipient configured — drop silently, this is an advisory alert.
		log.Debug().Str("produto_id", job.ProdutoID).Msg("low-stock alert skipped, no recipient configured")
		return nil
	}

	subject := fmt.Sprintf("Estoque baixo: %s (%s)", job.Nome, job.Codigo)
	body := fmt.Sprintf(
		"O produto %s (código %s) está com estoque %d, abaixo do mínimo de %d.\n",
		job.Nome, job.Codigo, job.Estoque, job.EstoqueMinimo,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("alerta_estoque: send mail: %w", err)
	}

	log.Info().Str("produto_id", job.ProdutoID).Int("estoque", job.Estoque).Msg("low-stock alert sent")
	return nil
}
