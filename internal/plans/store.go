// Package plans owns the in-memory collection of payment plans and its
// persistence as a single snapshot.
package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/store"
)

// Store is the only owner of the plan collection. Callers get copies.
type Store struct {
	kv    store.KV
	log   logrus.FieldLogger
	plans []model.Plan

	// held keeps snapshot entries Restore could not load, verbatim, so
	// writing the collection back never erases them.
	held []json.RawMessage

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() model.PlanID
}

// New returns an empty store persisting through kv.
func New(kv store.KV, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		kv:    kv,
		log:   log,
		Now:   time.Now,
		NewID: model.NewPlanID,
	}
}

// Create validates p, assigns it an id and creation time, and appends it.
// Status defaults to upcoming and an empty creditor to the unspecified sentinel.
func (s *Store) Create(p model.Plan) (model.PlanID, error) {
	p = p.Clone()
	p.ID = s.uniqueID()
	if strings.TrimSpace(p.Creditor) == "" {
		p.Creditor = model.UnspecifiedCreditor
	}
	if p.Status == "" {
		p.Status = model.StatusUpcoming
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Now().UTC().Truncate(time.Millisecond)
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.plans = append(s.plans, p)
	return p.ID, nil
}

// Insert appends p exactly as given, keeping its id, status and creation
// time. The id must be set and not already taken.
func (s *Store) Insert(p model.Plan) error {
	if p.ID == "" {
		return &model.ValidationError{Field: "id", Reason: "is required"}
	}
	if s.indexOf(p.ID) >= 0 {
		return &model.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicates %q", p.ID)}
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.plans = append(s.plans, p.Clone())
	return nil
}

func (s *Store) uniqueID() model.PlanID {
	for {
		id := s.NewID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id model.PlanID) int {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the plan with the given id.
func (s *Store) Get(id model.PlanID) (model.Plan, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Plan{}, &model.NotFoundError{ID: id}
	}
	return s.plans[i].Clone(), nil
}

// Resolve finds a plan by exact id or by a unique id prefix.
func (s *Store) Resolve(ref string) (model.Plan, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Plan{}, &model.ValidationError{Field: "id", Reason: "is required"}
	}
	if p, err := s.Get(model.PlanID(ref)); err == nil {
		return p, nil
	}

	var matches []model.PlanID
	for _, p := range s.plans {
		if strings.HasPrefix(string(p.ID), ref) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return model.Plan{}, &model.NotFoundError{ID: model.PlanID(ref)}
	case 1:
		return s.Get(matches[0])
	}
	return model.Plan{}, &model.AmbiguousIDError{Prefix: ref, Matches: matches}
}

// List returns copies of all plans in insertion order.
func (s *Store) List() []model.Plan {
	out := make([]model.Plan, len(s.plans))
	for i, p := range s.plans {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of plans.
func (s *Store) Len() int { return len(s.plans) }

// Update applies fn to a copy of the plan and stores the result if it is
// still valid. The id cannot be changed.
func (s *Store) Update(id model.PlanID, fn func(*model.Plan) error) error {
	i := s.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{ID: id}
	}
	next := s.plans[i].Clone()
	if err := fn(&next); err != nil {
		return err
	}
	next.ID = id
	if err := next.Validate(); err != nil {
		return err
	}
	s.plans[i] = next
	return nil
}

// Replace swaps the stored plan for p, keeping the id.
func (s *Store) Replace(id model.PlanID, p model.Plan) error {
	return s.Update(id, func(cur *model.Plan) error {
		*cur = p.Clone()
		return nil
	})
}

// Delete removes the plan.
func (s *Store) Delete(id model.PlanID) error {
	i := s.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{ID: id}
	}
	s.plans = append(s.plans[:i], s.plans[i+1:]...)
	return nil
}

// Each hands every stored plan to fn for in-place mutation. It exists for
// status reclassification, which changes Status only.
func (s *Store) Each(fn func(p *model.Plan)) {
	for i := range s.plans {
		fn(&s.plans[i])
	}
}

// ReplaceAll swaps the whole collection after checking every plan and id.
// Entries held back from the last restore are replaced too.
func (s *Store) ReplaceAll(plans []model.Plan) error {
	seen := make(map[model.PlanID]struct{}, len(plans))
	next := make([]model.Plan, len(plans))
	for i, p := range plans {
		if p.ID == "" {
			return &model.ValidationError{Field: fmt.Sprintf("plans[%d].id", i), Reason: "is required"}
		}
		if _, dup := seen[p.ID]; dup {
			return &model.ValidationError{Field: fmt.Sprintf("plans[%d].id", i), Reason: fmt.Sprintf("duplicates %q", p.ID)}
		}
		seen[p.ID] = struct{}{}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("plan %q: %w", p.Name, err)
		}
		next[i] = p.Clone()
	}
	if len(s.held) > 0 {
		s.log.WithField("held", len(s.held)).Warn("discarding unreadable plans on replace")
	}
	s.plans = next
	s.held = nil
	return nil
}

// Held returns the number of snapshot entries Restore could not load.
func (s *Store) Held() int { return len(s.held) }

// Snapshot encodes the loaded plans in their persisted form.
func (s *Store) Snapshot() ([]byte, error) { return s.encode(false) }

func (s *Store) encode(withHeld bool) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(s.plans)+len(s.held))
	for _, p := range s.plans {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	if withHeld {
		out = append(out, s.held...)
	}
	return json.Marshal(out)
}

// Persist writes the whole collection, held entries included exactly as they
// were read. On failure the in-memory state is untouched and remains
// authoritative.
func (s *Store) Persist(ctx context.Context) error {
	data, err := s.encode(true)
	if err != nil {
		return &model.StorageError{Op: "encode", Key: store.KeyPayments, Err: err}
	}
	if err := s.kv.Put(ctx, store.KeyPayments, data); err != nil {
		return &model.StorageError{Op: "write", Key: store.KeyPayments, Err: err}
	}
	s.log.WithFields(logrus.Fields{"plans": len(s.plans), "held": len(s.held)}).Debug("plans persisted")
	return nil
}

// Restore replaces the collection with the persisted snapshot. A missing
// snapshot yields an empty collection; an unreadable one also yields an
// empty collection and is reported as a StorageError the caller may log.
// Plans whose installments are merely out of order are sorted. Entries that
// still break an invariant are held and written back unchanged by Persist.
func (s *Store) Restore(ctx context.Context) (int, error) {
	s.plans = nil
	s.held = nil

	data, ok, err := s.kv.Get(ctx, store.KeyPayments)
	if err != nil {
		return 0, &model.StorageError{Op: "read", Key: store.KeyPayments, Err: err}
	}
	if !ok || len(strings.TrimSpace(string(data))) == 0 {
		return 0, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, &model.StorageError{Op: "decode", Key: store.KeyPayments, Err: err}
	}

	seen := make(map[model.PlanID]struct{}, len(entries))
	for i, raw := range entries {
		log := s.log.WithField("entry", i)
		p, err := decodePlan(raw)
		if err != nil {
			log.WithError(err).Warn("holding unreadable plan from snapshot")
			s.held = append(s.held, raw)
			continue
		}
		log = log.WithField("plan_id", string(p.ID))
		if _, dup := seen[p.ID]; dup || p.ID == "" {
			log.Warn("holding plan with missing or duplicate id")
			s.held = append(s.held, raw)
			continue
		}
		if repairOrder(&p) {
			log.Info("sorted out-of-order installments")
		}
		if err := p.Validate(); err != nil {
			log.WithError(err).Warn("holding invalid plan from snapshot")
			s.held = append(s.held, raw)
			continue
		}
		seen[p.ID] = struct{}{}
		s.plans = append(s.plans, p)
	}
	return len(s.plans), nil
}

// repairOrder sorts installments by due date and reports whether it had to.
func repairOrder(p *model.Plan) bool {
	byDate := func(i, j int) bool {
		return p.Installments[i].DueDate.Before(p.Installments[j].DueDate)
	}
	if sort.SliceIsSorted(p.Installments, byDate) {
		return false
	}
	sort.SliceStable(p.Installments, byDate)
	return true
}

// Decode parses a persisted snapshot, normalizing fields older snapshots left empty.
func Decode(data []byte) ([]model.Plan, error) {
	var plans []model.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, err
	}
	for i := range plans {
		normalize(&plans[i])
	}
	return plans, nil
}

func decodePlan(raw json.RawMessage) (model.Plan, error) {
	var p model.Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Plan{}, err
	}
	normalize(&p)
	return p, nil
}

func normalize(p *model.Plan) {
	if p.Status == "" {
		p.Status = model.StatusUpcoming
	}
	if strings.TrimSpace(p.Creditor) == "" {
		p.Creditor = model.UnspecifiedCreditor
	}
}
