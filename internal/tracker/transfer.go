package tracker

import (
	"context"
	"fmt"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/plans"
	"github.com/theirongolddev/aqsat/internal/store"
)

// Export writes the plan snapshot to path in the same shape it is stored in.
func (t *Tracker) Export(path string) (int, error) {
	data, err := t.plans.Snapshot()
	if err != nil {
		return 0, fmt.Errorf("encoding plans: %w", err)
	}
	if err := store.WriteFile(path, data); err != nil {
		return 0, err
	}
	if held := t.plans.Held(); held > 0 {
		t.log.WithField("held", held).Warn("unreadable plans left out of export")
	}
	return t.plans.Len(), nil
}

// Import replaces every plan with the contents of path. Nothing changes
// unless every plan in the file is valid.
func (t *Tracker) Import(ctx context.Context, path string) (int, *model.Notification, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	incoming, err := plans.Decode(data)
	if err != nil {
		return 0, nil, &model.ValidationError{Field: "file", Reason: fmt.Sprintf("is not a plan list: %v", err)}
	}
	if err := t.plans.ReplaceAll(incoming); err != nil {
		return 0, nil, err
	}
	t.log.WithField("plans", len(incoming)).Info("plans imported")

	err = t.commit(ctx)
	return len(incoming), t.notify(model.SeveritySuccess, "Imported %d plans", len(incoming)), err
}
