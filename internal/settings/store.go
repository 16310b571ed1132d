// Package settings persists the user's reminder and presentation preferences.
package settings

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/store"
)

// Store holds the current settings and writes them back wholesale.
type Store struct {
	kv      store.KV
	log     logrus.FieldLogger
	current model.Settings
}

// New returns a store holding the defaults.
func New(kv store.KV, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{kv: kv, log: log, current: model.DefaultSettings()}
}

// Load reads the persisted settings. Missing fields keep their defaults;
// an unreadable or invalid value leaves the defaults in place and is
// returned as a StorageError for logging.
func (s *Store) Load(ctx context.Context) error {
	s.current = model.DefaultSettings()

	data, ok, err := s.kv.Get(ctx, store.KeySettings)
	if err != nil {
		return &model.StorageError{Op: "read", Key: store.KeySettings, Err: err}
	}
	if !ok || len(data) == 0 {
		return nil
	}

	next := model.DefaultSettings()
	if err := json.Unmarshal(data, &next); err != nil {
		return &model.StorageError{Op: "decode", Key: store.KeySettings, Err: err}
	}
	if err := next.Validate(); err != nil {
		return &model.StorageError{Op: "decode", Key: store.KeySettings, Err: err}
	}
	s.current = next
	return nil
}

// Get returns the current settings.
func (s *Store) Get() model.Settings { return s.current }

// Save validates next, persists it, and only then makes it current.
func (s *Store) Save(ctx context.Context, next model.Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return &model.StorageError{Op: "encode", Key: store.KeySettings, Err: err}
	}
	if err := s.kv.Put(ctx, store.KeySettings, data); err != nil {
		return &model.StorageError{Op: "write", Key: store.KeySettings, Err: err}
	}
	s.current = next
	s.log.WithFields(logrus.Fields{
		"notification_days": next.NotificationDays,
		"notifications":     next.NotificationsEnabled,
		"theme":             next.Theme,
	}).Info("settings saved")
	return nil
}
