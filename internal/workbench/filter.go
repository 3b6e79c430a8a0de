package workbench

import "strings"

// Filter narrows a feature list the way the board does. Zero fields match
// everything.
type Filter struct {
	PhaseID string
	Status  Status
	Text    string // case-insensitive substring of title, description or tags
	Tag     string
}

// IsZero reports whether the filter matches every feature.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether a feature passes the filter.
func (f Filter) Match(ft Feature) bool {
	if f.PhaseID != "" && ft.PhaseID != f.PhaseID {
		return false
	}
	if f.Status != "" && ft.Status != f.Status {
		return false
	}
	if f.Tag != "" && !hasTag(ft, f.Tag) {
		return false
	}
	if f.Text != "" && !containsText(ft, f.Text) {
		return false
	}
	return true
}

// Apply returns the features that pass the filter, preserving order.
func (f Filter) Apply(features []Feature) []Feature {
	if f.IsZero() {
		return features
	}
	out := make([]Feature, 0, len(features))
	for _, ft := range features {
		if f.Match(ft) {
			out = append(out, ft)
		}
	}
	return out
}

func hasTag(ft Feature, tag string) bool {
	for _, t := range ft.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func containsText(ft Feature, text string) bool {
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(ft.Title), needle) ||
		strings.Contains(strings.ToLower(ft.Description), needle) {
		return true
	}
	for _, t := range ft.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
