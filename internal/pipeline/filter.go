package pipeline

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/theirongolddev/aqsat/internal/model"
)

// StatusFilter selects plans by status; FilterAll keeps everything.
type StatusFilter string

const FilterAll StatusFilter = "all"

// Filters lists the filter values in display order.
var Filters = []StatusFilter{
	FilterAll,
	StatusFilter(model.StatusUpcoming),
	StatusFilter(model.StatusPast),
	StatusFilter(model.StatusPaid),
}

// ParseFilter accepts "all", a status name, or "" for all.
func ParseFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAll):
		return FilterAll, nil
	}
	st, err := model.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("unknown filter %q (want all, upcoming, past or paid)", s)
	}
	return StatusFilter(st), nil
}

// Label is the tab title for the filter.
func (f StatusFilter) Label() string {
	if f == FilterAll {
		return "All"
	}
	return model.Status(f).Label()
}

// Filter keeps plans matching f, preserving order.
func Filter(plans []model.Plan, f StatusFilter) []model.Plan {
	if f == FilterAll || f == "" {
		return plans
	}
	var out []model.Plan
	for _, p := range plans {
		if p.Status == model.Status(f) {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps plans whose name, creditor or description contains query,
// ignoring case. With fuzzy set, the query letters need only appear in order.
func Search(plans []model.Plan, query string, fuzzyMatch bool) []model.Plan {
	query = strings.TrimSpace(query)
	if query == "" {
		return plans
	}
	match := func(field string) bool {
		return strings.Contains(strings.ToLower(field), strings.ToLower(query))
	}
	if fuzzyMatch {
		match = func(field string) bool { return fuzzy.MatchFold(query, field) }
	}

	var out []model.Plan
	for _, p := range plans {
		if match(p.Name) || match(p.Creditor) || match(p.Description) {
			out = append(out, p)
		}
	}
	return out
}
