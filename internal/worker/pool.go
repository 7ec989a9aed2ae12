package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFechamentoPDF = "jobs:fechamento_pdf"
	QueueAlertaEstoque = "jobs:alerta_estoque"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks. Attempts is incremented on
// each failed execution; jobs exceeding maxAttempts land in the DLQ.
type Job struct {
	Type     string          `json:"type"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
}

// FechamentoPDFJob carries a snapshot of the closed caixa so the worker can
// render the summary without a database round-trip.
type FechamentoPDFJob struct {
	CaixaID        string `json:"caixa_id"`
	Operador       string `json:"operador"`
	ValorInicial   string `json:"valor_inicial"`
	SaldoFinal     string `json:"saldo_final"`
	DataAbertura   string `json:"data_abertura"`
	DataFechamento string `json:"data_fechamento"`
}

// AlertaEstoqueJob is dispatched when a stock adjustment takes a product
// below its minimum.
type AlertaEstoqueJob struct {
	ProdutoID     string `json:"produto_id"`
	Nome          string `json:"nome"`
	Codigo        string `json:"codigo"`
	Estoque       int    `json:"estoque"`
	EstoqueMinimo int    `json:"estoque_minimo"`
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. Jobs are advisory — enqueue failures are logged by callers,
// never surfaced to the client.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFechamentoPDF pushes a closing-summary job.
func (d *Dispatcher) EnqueueFechamentoPDF(ctx context.Context, payload FechamentoPDFJob) error {
	return d.enqueue(ctx, QueueFechamentoPDF, "fechamento_pdf", payload)
}

// EnqueueAlertaEstoque pushes a low-stock alert job.
func (d *Dispatcher) EnqueueAlertaEstoque(ctx context.Context, payload AlertaEstoqueJob) error {
	return d.enqueue(ctx, QueueAlertaEstoque, "alerta_estoque", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the concrete job processors, wired at the composition root.
type Handlers struct {
	FechamentoPDF *FechamentoPDFWorker
	AlertaEstoque *AlertaEstoqueWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueFechamentoPDF, QueueAlertaEstoque}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueFechamentoPDF:
		err = handlers.FechamentoPDF.Process(job.Payload)
	case QueueAlertaEstoque:
		err = handlers.AlertaEstoque.Process(job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
		return
	}
	if err == nil {
		return
	}

	job.Attempts++
	log.Error().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Err(err).
		Msg("job failed")

	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to re-marshal job for retry")
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
	}
}
