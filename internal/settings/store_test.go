package settings

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/store"
)

func newStore(kv store.KV) *Store {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(kv, l)
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	s := newStore(store.NewMemory())
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, model.DefaultSettings(), s.Get())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Put(ctx, store.KeySettings, []byte(`{"theme":"dark"}`)))

	s := newStore(kv)
	require.NoError(t, s.Load(ctx))
	got := s.Get()
	assert.Equal(t, model.ThemeDark, got.Theme)
	assert.Equal(t, 3, got.NotificationDays)
	assert.True(t, got.NotificationsEnabled)
	assert.Equal(t, model.FontVazir, got.Font)
}

func TestLoadCorruptDegrades(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"syntax":  `{"theme":`,
		"invalid": `{"theme":"neon"}`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := store.NewMemory()
			require.NoError(t, kv.Put(ctx, store.KeySettings, []byte(raw)))
			s := newStore(kv)
			assert.ErrorIs(t, s.Load(ctx), model.ErrStorage)
			assert.Equal(t, model.DefaultSettings(), s.Get())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := newStore(kv)

	next := model.Settings{NotificationDays: 7, NotificationsEnabled: false, Theme: model.ThemeDark, Font: model.FontTanha}
	require.NoError(t, s.Save(ctx, next))
	assert.Equal(t, next, s.Get())

	raw, ok, err := kv.Get(ctx, store.KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"notificationDays":7,"enableNotifications":false,"theme":"dark","font":"tanha"}`, string(raw))

	other := newStore(kv)
	require.NoError(t, other.Load(ctx))
	assert.Equal(t, next, other.Get())
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newStore(store.NewMemory())
	bad := model.DefaultSettings()
	bad.NotificationDays = -1
	assert.ErrorIs(t, s.Save(context.Background(), bad), model.ErrValidation)
	assert.Equal(t, model.DefaultSettings(), s.Get())
}

func TestSaveWriteFailureKeepsCurrent(t *testing.T) {
	kv := store.NewMemory()
	kv.FailPut = errors.New("denied")
	s := newStore(kv)

	next := model.DefaultSettings()
	next.Theme = model.ThemeDark
	assert.ErrorIs(t, s.Save(context.Background(), next), model.ErrStorage)
	assert.Equal(t, model.ThemeLight, s.Get().Theme)
}
