package store

import (
	"context"
	"fmt"

	"github.com/postpress/cnotify/pkg/kv"
)

const settingsKey = "settings"

// noticesKey mirrors the key owned by the notice package so DeleteAll
// can wipe the persisted notice state along with everything else.
const noticesKey = "notices"

// Settings holds the site-wide sender identity used when a submission
// carries no explicit from address.
type Settings struct {
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

type SettingsStore struct {
	kv       *kv.Store
	defaults Settings
}

func NewSettings(s *kv.Store, defaults Settings) *SettingsStore {
	return &SettingsStore{kv: s, defaults: defaults}
}

// Load returns the stored settings, falling back to the defaults for
// fields that were never saved.
func (s *SettingsStore) Load(ctx context.Context) (Settings, error) {
	out := s.defaults
	if _, err := s.kv.Get(ctx, settingsKey, &out); err != nil {
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	if out.FromEmail == "" {
		out.FromEmail = s.defaults.FromEmail
	}
	if out.FromName == "" {
		out.FromName = s.defaults.FromName
	}
	return out, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings Settings) error {
	if err := s.kv.Set(ctx, settingsKey, settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// DeleteAll removes everything this subsystem ever wrote: all drafts,
// all sent archives, the persisted notice state and the settings record.
func (s *SettingsStore) DeleteAll(ctx context.Context) error {
	keys := []string{settingsKey, noticesKey}

	drafts, err := s.kv.Keys(ctx, draftKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("deleting settings: %w", err)
	}
	keys = append(keys, drafts...)

	sent, err := s.kv.Keys(ctx, sentKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("deleting settings: %w", err)
	}
	keys = append(keys, sent...)

	if err := s.kv.Del(ctx, keys...); err != nil {
		return fmt.Errorf("deleting settings: %w", err)
	}
	return nil
}
