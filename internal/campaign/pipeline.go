package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postpress/cnotify/internal/delivery"
	"github.com/postpress/cnotify/internal/notice"
	"github.com/postpress/cnotify/internal/store"
	"github.com/postpress/cnotify/pkg/metrics"
)

// NoticeSent confirms a successful hand-off to the mail transport.
const NoticeSent = "Your emails are being sent out now."

const noticeSendFailedPrefix = "Your email could not be sent because of the following error: "

type draftStore interface {
	Save(ctx context.Context, subjectID, subject, body string, groups []string) error
}

type sentArchive interface {
	Append(ctx context.Context, subjectID, subject, body string, groups []string, sentAt time.Time) error
}

type sender interface {
	Send(ctx context.Context, recipients []string, subject, body, fromAddr, fromName string) error
}

type settingsStore interface {
	Load(ctx context.Context) (store.Settings, error)
}

// NoticeSink receives the user-facing verdicts of a submission. The
// API's per-request notice queue is the production implementation.
type NoticeSink interface {
	Enqueue(message string, t notice.Type)
}

// Pipeline runs one submission from composition to delivery. Validation
// and transport failures become notices with the draft retained;
// directory and storage failures propagate to the caller.
type Pipeline struct {
	Drafts    draftStore
	Archive   sentArchive
	Directory Directory
	Sender    sender
	Settings  settingsStore

	// Now is the archive timestamp source, replaceable in tests.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Submit stages the draft, validates, resolves recipients, sends and
// archives. At most one delivery attempt happens per call, and only for
// a confirmed submission that passed every check.
func (p *Pipeline) Submit(ctx context.Context, notices NoticeSink, req SubmitRequest) error {
	// The draft is written before anything can fail so the author never
	// loses composed text on a rejected submission.
	if err := p.Drafts.Save(ctx, req.SubjectID, req.Subject, req.Body, groupStrings(req.Groups)); err != nil {
		return err
	}
	metrics.DraftsSaved.Inc()

	if err := Validate(req.Confirmed, req.Subject, req.Body, req.Groups); err != nil {
		var nc *NotConfirmedError
		if errors.As(err, &nc) {
			if nc.Composed {
				notices.Enqueue(NoticeNotConfirmed, notice.TypeSuccess)
			}
			return nil
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			metrics.ValidationFailuresTotal.Inc()
			notices.Enqueue(ve.Error(), notice.TypeError)
			return nil
		}
		return err
	}

	recipients, err := ResolveRecipients(ctx, p.Directory, req.Groups)
	if err != nil {
		// An unreachable directory must not degrade into "no one opted
		// in"; the whole request fails instead.
		return err
	}

	settings, err := p.Settings.Load(ctx)
	if err != nil {
		return err
	}

	if err := p.Sender.Send(ctx, recipients, req.Subject, req.Body, settings.FromEmail, settings.FromName); err != nil {
		metrics.SendFailuresTotal.Inc()
		var de *delivery.Error
		if errors.As(err, &de) {
			notices.Enqueue(noticeSendFailedPrefix+de.Detail, notice.TypeError)
			return nil
		}
		return err
	}
	metrics.SendsTotal.Inc()

	if err := p.Archive.Append(ctx, req.SubjectID, req.Subject, req.Body, groupStrings(req.Groups), p.now()); err != nil {
		// Mail left but the audit record did not stick; surfacing the
		// failure beats pretending the archive is complete.
		return fmt.Errorf("recording sent campaign: %w", err)
	}

	notices.Enqueue(NoticeSent, notice.TypeSuccess)
	return nil
}
