package worker

import (
	"context"
	"encoding/json"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/postpress/cnotify/internal/campaign"
	"github.com/postpress/cnotify/pkg/logx"
	"github.com/postpress/cnotify/pkg/metrics"
	"github.com/postpress/cnotify/pkg/rmq"
)

type mailer interface {
	Deliver(ctx context.Context, to []string, subject, body string, headers map[string]string) error
}

type Worker struct {
	Cons   *rmq.Consumer
	Pub    *rmq.Publisher
	Mailer mailer
}

func New(cons *rmq.Consumer, pub *rmq.Publisher, m mailer) *Worker {
	return &Worker{Cons: cons, Pub: pub, Mailer: m}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.Cons.Consume()
	if err != nil {
		return err
	}
	logx.L().Infow("worker_started", "queue", w.Cons.Queue)

	for {
		select {
		case <-ctx.Done():
			logx.L().Infow("worker_stopping")
			return ctx.Err()

		case d, ok := <-msgs:
			if !ok {
				logx.L().Warnw("consumer_channel_closed")
				return nil
			}

			start := time.Now()
			metrics.WorkerJobsConsumed.Inc()

			var job campaign.JobMessage
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logx.L().Warnw("job_unmarshal_error", "error", err)
				_ = d.Ack(false)
				metrics.WorkerProcessDuration.Observe(time.Since(start).Seconds())
				continue
			}
			fields := []any{
				"subject", job.Subject,
				"recipients", len(job.To),
			}

			sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := w.Mailer.Deliver(sendCtx, job.To, job.Subject, job.Body, job.Headers)
			cancel()

			if err != nil {
				logx.L().Infow("send_failed", append(fields, "error", err)...)
				metrics.WorkerJobsFailed.Inc()

				retries := headerRetries(d.Headers)
				if retries < 3 {
					delay := backoffDelay(retries)
					metrics.WorkerJobRetries.Inc()
					logx.L().Infow("retry_requeue", append(fields, "retries", retries+1, "delay", delay.String())...)
					if err := w.requeueMessage(ctx, d, retries+1, delay); err != nil {
						logx.L().Errorw("retry_publish_error", append(fields, "retries", retries+1, "error", err)...)
						_ = d.Nack(false, true)
					}
				} else {
					logx.L().Warnw("drop_after_retries", append(fields, "retries", retries)...)
					_ = d.Ack(false)
				}

				metrics.WorkerProcessDuration.Observe(time.Since(start).Seconds())
				continue
			}

			metrics.WorkerJobsSent.Inc()
			metrics.WorkerProcessDuration.Observe(time.Since(start).Seconds())

			logx.L().Infow("send_success", fields...)
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) requeueMessage(ctx context.Context, d amqp.Delivery, retries int, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	headers := copyHeaders(d.Headers)
	setHeaderRetries(&headers, retries)

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := w.Pub.PublishJSONWithHeaders(pubCtx, d.Body, headers); err != nil {
		return err
	}

	return d.Ack(false)
}

func headerRetries(h amqp.Table) int {
	if h == nil {
		return 0
	}
	if v, ok := h["x-retries"]; ok {
		switch t := v.(type) {
		case int32:
			return int(t)
		case int64:
			return int(t)
		case int:
			return t
		case uint8:
			return int(t)
		}
	}
	return 0
}

func setHeaderRetries(h *amqp.Table, n int) {
	if *h == nil {
		*h = amqp.Table{}
	}
	(*h)["x-retries"] = int32(n)
}

func backoffDelay(retries int) time.Duration {
	if retries <= 0 {
		return 0
	}
	sec := math.Pow(2, float64(retries-1))
	return time.Duration(sec) * time.Second
}

func copyHeaders(h amqp.Table) amqp.Table {
	if h == nil {
		return amqp.Table{}
	}
	dup := make(amqp.Table, len(h))
	for k, v := range h {
		dup[k] = v
	}
	return dup
}
