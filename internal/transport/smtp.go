package transport

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-gomail/gomail"

	"github.com/postpress/cnotify/pkg/config"
)

// SMTP submits messages directly to a configured relay.
type SMTP struct {
	dialer *gomail.Dialer
}

func NewSMTP(cfg config.SMTPConfig) (*SMTP, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, err
	}
	return &SMTP{dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)}, nil
}

func (t *SMTP) Deliver(ctx context.Context, to []string, subject, body string, headers map[string]string) error {
	m := gomail.NewMessage()

	contentType := "text/html"
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") {
			if i := strings.IndexByte(v, ';'); i >= 0 {
				v = v[:i]
			}
			contentType = strings.TrimSpace(v)
			continue
		}
		m.SetHeader(k, v)
	}

	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody(contentType, body)

	return t.dialer.DialAndSend(m)
}
