package delivery

import (
	"context"
	"net/mail"
	"strings"
)

// Transport submits one composed message. Implementations live in
// internal/transport; the service never retries on their behalf.
type Transport interface {
	Deliver(ctx context.Context, to []string, subject, body string, headers map[string]string) error
}

// SiteIdentity supplies the serving domain and display name used to
// derive a sender when none is configured.
type SiteIdentity interface {
	Domain() string
	DisplayName() string
}

// StaticSite is the config-backed SiteIdentity.
type StaticSite struct {
	SiteDomain string
	SiteName   string
}

func (s StaticSite) Domain() string      { return s.SiteDomain }
func (s StaticSite) DisplayName() string { return s.SiteName }

// Error wraps a transport failure with its detail message, which is
// safe to show to the author.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return "mail transport: " + e.Detail }

// Service performs campaign delivery through an injected transport.
type Service struct {
	transport Transport
	site      SiteIdentity
}

func New(t Transport, site SiteIdentity) *Service {
	return &Service{transport: t, site: site}
}

// Send delivers one campaign in a single attempt. A missing or invalid
// fromAddr falls back to no-reply@<domain> (www. stripped); a missing
// fromName falls back to the site display name. The content type is
// forced to HTML via per-call headers so nothing leaks into concurrent
// sends. An empty recipient list still reaches the transport.
func (s *Service) Send(ctx context.Context, recipients []string, subject, body, fromAddr, fromName string) error {
	if fromAddr == "" || !validAddress(fromAddr) {
		fromAddr = "no-reply@" + strings.TrimPrefix(s.site.Domain(), "www.")
	}
	if fromName == "" {
		fromName = s.site.DisplayName()
	}

	headers := map[string]string{
		"From":         (&mail.Address{Name: fromName, Address: fromAddr}).String(),
		"Content-Type": "text/html; charset=UTF-8",
	}

	if err := s.transport.Deliver(ctx, recipients, subject, body, headers); err != nil {
		return &Error{Detail: err.Error()}
	}
	return nil
}

func validAddress(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
