package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/postpress/cnotify/internal/campaign"
)

type publisher interface {
	PublishJSON(ctx context.Context, body []byte) error
}

// Queue hands composed sends to the sender-worker as durable queue jobs.
// Publishing is the delivery attempt: once the broker has accepted the
// job, this transport reports success.
type Queue struct {
	pub publisher
}

func NewQueue(pub publisher) *Queue { return &Queue{pub: pub} }

func (t *Queue) Deliver(ctx context.Context, to []string, subject, body string, headers map[string]string) error {
	job := campaign.JobMessage{
		To:      to,
		Subject: subject,
		Body:    body,
		Headers: headers,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding send job: %w", err)
	}
	if err := t.pub.PublishJSON(ctx, payload); err != nil {
		return fmt.Errorf("queueing send job: %w", err)
	}
	return nil
}
