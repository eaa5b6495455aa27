package config

import (
	"log"
	"os"
)

type SiteConfig struct {
	Domain string
	Name   string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type APIConfig struct {
	Port      string
	DBDSN     string
	RedisAddr string
	RMQURL    string
	Queue     string
	Site      SiteConfig
	SMTP      SMTPConfig
	// Transport selects how confirmed sends leave the process:
	// "queue" publishes jobs for the sender-worker, "smtp" submits inline.
	Transport string
}

type WorkerConfig struct {
	RMQURL string
	Queue  string
	SMTP   SMTPConfig
}

var (
	API    APIConfig
	Worker WorkerConfig
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("required env %s is not set", k)
	}
	return v
}

func MustLoadAPI() {
	API = APIConfig{
		Port:      getenv("PORT", "8080"),
		DBDSN:     mustEnv("DB_DSN"),
		RedisAddr: mustEnv("REDIS_ADDR"),
		RMQURL:    getenv("RMQ_URL", ""),
		Queue:     getenv("QUEUE", "send_jobs"),
		Site: SiteConfig{
			Domain: mustEnv("SITE_DOMAIN"),
			Name:   getenv("SITE_NAME", "Newsletter"),
		},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenv("SMTP_PORT", "587"),
			Username: getenv("SMTP_USER", ""),
			Password: getenv("SMTP_PASS", ""),
		},
		Transport: getenv("TRANSPORT", "queue"),
	}
	if API.Transport == "queue" && API.RMQURL == "" {
		log.Fatal("TRANSPORT=queue requires RMQ_URL to be set")
	}
	if API.Transport == "smtp" && API.SMTP.Host == "" {
		log.Fatal("TRANSPORT=smtp requires SMTP_HOST to be set")
	}
}

func MustLoadWorker() {
	Worker = WorkerConfig{
		RMQURL: mustEnv("RMQ_URL"),
		Queue:  getenv("QUEUE", "send_jobs"),
		SMTP: SMTPConfig{
			Host:     mustEnv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: getenv("SMTP_USER", ""),
			Password: getenv("SMTP_PASS", ""),
		},
	}
}
