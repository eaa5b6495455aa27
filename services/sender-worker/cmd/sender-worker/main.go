package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/postpress/cnotify/internal/transport"
	"github.com/postpress/cnotify/pkg/config"
	"github.com/postpress/cnotify/pkg/logx"
	"github.com/postpress/cnotify/pkg/rmq"
	"github.com/postpress/cnotify/services/sender-worker/worker"
)

func main() {
	logx.Init("sender-worker")
	defer logx.Sync()

	config.MustLoadWorker()
	cfg := config.Worker

	smtp, err := transport.NewSMTP(cfg.SMTP)
	if err != nil {
		logx.L().Fatalw("smtp_config_error", "error", err)
	}

	cons, err := rmq.NewConsumer(cfg.RMQURL, cfg.Queue)
	if err != nil {
		logx.L().Fatalw("rmq_consumer_error", "error", err)
	}
	defer cons.Close()

	pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
	if err != nil {
		logx.L().Fatalw("rmq_publisher_error", "error", err)
	}
	defer pub.Close()

	w := worker.New(cons, pub, smtp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logx.L().Fatalw("worker_error", "error", err)
	}
}
