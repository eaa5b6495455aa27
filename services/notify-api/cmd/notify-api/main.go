package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/postpress/cnotify/internal/campaign"
	"github.com/postpress/cnotify/internal/delivery"
	"github.com/postpress/cnotify/internal/directory"
	"github.com/postpress/cnotify/internal/store"
	"github.com/postpress/cnotify/internal/transport"
	"github.com/postpress/cnotify/pkg/config"
	"github.com/postpress/cnotify/pkg/db"
	"github.com/postpress/cnotify/pkg/kv"
	"github.com/postpress/cnotify/pkg/logx"
	"github.com/postpress/cnotify/pkg/rmq"
	"github.com/postpress/cnotify/services/notify-api/server"
)

func main() {
	logx.Init("notify-api")
	defer logx.Sync()

	config.MustLoadAPI()
	cfg := config.API

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		logx.L().Fatalw("db_open_error", "error", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logx.L().Warnw("db_close_error", "error", err)
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := rdb.Close(); err != nil {
			logx.L().Warnw("redis_close_error", "error", err)
		}
	}()
	kvStore := kv.New(rdb, "cnotify")

	site := delivery.StaticSite{SiteDomain: cfg.Site.Domain, SiteName: cfg.Site.Name}

	var mailTransport delivery.Transport
	switch cfg.Transport {
	case "smtp":
		t, err := transport.NewSMTP(cfg.SMTP)
		if err != nil {
			logx.L().Fatalw("smtp_config_error", "error", err)
		}
		mailTransport = t
	default:
		pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
		if err != nil {
			logx.L().Fatalw("rmq_init_error", "error", err)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				logx.L().Warnw("rmq_publisher_close_error", "error", err)
			}
		}()
		mailTransport = transport.NewQueue(pub)
	}

	drafts := store.NewDrafts(kvStore)
	archive := store.NewArchive(kvStore, drafts)
	settings := store.NewSettings(kvStore, store.Settings{
		FromEmail: "no-reply@" + strings.TrimPrefix(cfg.Site.Domain, "www."),
		FromName:  cfg.Site.Name,
	})
	dir := directory.NewPostgres(sqlDB)

	pipeline := &campaign.Pipeline{
		Drafts:    drafts,
		Archive:   archive,
		Directory: dir,
		Sender:    delivery.New(mailTransport, site),
		Settings:  settings,
	}

	h := &server.Handlers{
		Pipeline:  pipeline,
		Drafts:    drafts,
		Archive:   archive,
		Directory: dir,
		Settings:  settings,
	}
	srv := server.NewHTTPServer(":"+cfg.Port, h, kvStore)

	go func() {
		logx.L().Infow("api_listen_start", "addr", ":"+cfg.Port, "transport", cfg.Transport)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.L().Fatalw("http_server_error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logx.L().Infow("signal_received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logx.L().Errorw("server_shutdown_error", "error", err)
	} else {
		logx.L().Infow("server_shutdown_success")
	}
}
