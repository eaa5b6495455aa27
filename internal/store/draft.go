package store

import (
	"context"
	"fmt"

	"github.com/postpress/cnotify/pkg/kv"
)

const draftKeyPrefix = "draft:"

// Draft is the staged, uncommitted composition for one content item. It
// survives the redirect between form submission and confirmation.
type Draft struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Groups  []string `json:"user_groups"`
}

type DraftStore struct {
	kv *kv.Store
}

func NewDrafts(s *kv.Store) *DraftStore { return &DraftStore{kv: s} }

// Save overwrites the draft for subjectID. Called on every submission
// attempt, valid or not, so the author never loses composed text.
func (s *DraftStore) Save(ctx context.Context, subjectID, subject, body string, groups []string) error {
	if groups == nil {
		groups = []string{}
	}
	d := Draft{Subject: subject, Body: body, Groups: groups}
	if err := s.kv.Set(ctx, draftKeyPrefix+subjectID, d); err != nil {
		return fmt.Errorf("saving draft for %s: %w", subjectID, err)
	}
	return nil
}

// Load returns the staged draft, or an empty draft when none exists.
func (s *DraftStore) Load(ctx context.Context, subjectID string) (Draft, error) {
	d := Draft{Groups: []string{}}
	if _, err := s.kv.Get(ctx, draftKeyPrefix+subjectID, &d); err != nil {
		return Draft{}, fmt.Errorf("loading draft for %s: %w", subjectID, err)
	}
	return d, nil
}

// Clear removes the draft. Called once a confirmed send has succeeded.
func (s *DraftStore) Clear(ctx context.Context, subjectID string) error {
	if err := s.kv.Del(ctx, draftKeyPrefix+subjectID); err != nil {
		return fmt.Errorf("clearing draft for %s: %w", subjectID, err)
	}
	return nil
}
