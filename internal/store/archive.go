package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/postpress/cnotify/pkg/kv"
)

const sentKeyPrefix = "sent:"

// SentCampaign is one successfully delivered campaign as returned by
// List, body already decoded.
type SentCampaign struct {
	Subject string
	Body    string
	Groups  []string
	SentAt  time.Time
}

// sentRecord is the stored form. The body is base64 so arbitrary
// rich-text bytes survive the JSON container.
type sentRecord struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Groups  []string  `json:"user_groups"`
	SentAt  time.Time `json:"sent_at"`
}

// SentArchive is the append-only per-subject log of delivered campaigns.
type SentArchive struct {
	kv     *kv.Store
	drafts *DraftStore
}

func NewArchive(s *kv.Store, drafts *DraftStore) *SentArchive {
	return &SentArchive{kv: s, drafts: drafts}
}

// Append records one delivered campaign and, as its final step, clears
// the draft that staged it. Success is reported only after the archive
// write itself has succeeded.
func (a *SentArchive) Append(ctx context.Context, subjectID, subject, body string, groups []string, sentAt time.Time) error {
	rec := sentRecord{
		Subject: subject,
		Body:    base64.StdEncoding.EncodeToString([]byte(body)),
		Groups:  groups,
		SentAt:  sentAt.UTC(),
	}
	if err := a.kv.Append(ctx, sentKeyPrefix+subjectID, rec); err != nil {
		return fmt.Errorf("archiving campaign for %s: %w", subjectID, err)
	}
	if err := a.drafts.Clear(ctx, subjectID); err != nil {
		return err
	}
	return nil
}

// List returns every campaign sent for subjectID in send order. Nothing
// sent yet is an empty list, not an error.
func (a *SentArchive) List(ctx context.Context, subjectID string) ([]SentCampaign, error) {
	raw, err := a.kv.List(ctx, sentKeyPrefix+subjectID)
	if err != nil {
		return nil, fmt.Errorf("listing sent campaigns for %s: %w", subjectID, err)
	}

	out := make([]SentCampaign, 0, len(raw))
	for _, item := range raw {
		var rec sentRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("decoding sent campaign for %s: %w", subjectID, err)
		}
		body, err := base64.StdEncoding.DecodeString(rec.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding sent campaign body for %s: %w", subjectID, err)
		}
		out = append(out, SentCampaign{
			Subject: rec.Subject,
			Body:    string(body),
			Groups:  rec.Groups,
			SentAt:  rec.SentAt,
		})
	}
	return out, nil
}
