package workbench

import (
	"fmt"
	"strings"
)

// Mutations below never modify the receiver: each works on a clone and
// returns it. Features touched by a mutation get a fresh UpdatedAt.

// NewFeature holds the fields supplied when creating a feature.
type NewFeature struct {
	Title       string
	Description string
	Status      Status // defaults to StatusNotStarted
	PhaseID     string
	Tags        []string
}

// FeaturePatch lists the editable text fields of a feature. Nil fields are
// left unchanged.
type FeaturePatch struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// SetTitle renames the document.
func (d Doc) SetTitle(title string) (Doc, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return d, ErrEmptyTitle
	}
	out := d.Clone()
	out.Title = title
	return out, nil
}

// AddPhase appends a phase ordered after every existing phase.
func (d Doc) AddPhase(name string) (Doc, Phase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return d, Phase{}, ErrEmptyTitle
	}
	order := 1
	for _, p := range d.Phases {
		if p.Order >= order {
			order = p.Order + 1
		}
	}
	p := Phase{ID: newID(PhaseIDPrefix), Name: name, Order: order}
	out := d.Clone()
	out.Phases = append(out.Phases, p)
	return out, p, nil
}

// RenamePhase changes a phase's name.
func (d Doc) RenamePhase(id, name string) (Doc, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return d, ErrEmptyTitle
	}
	i := d.phaseIndex(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrPhaseNotFound, id)
	}
	out := d.Clone()
	out.Phases[i].Name = name
	return out, nil
}

// DeletePhase removes a phase. Phases that still have features are not
// deleted; move or delete the features first.
func (d Doc) DeletePhase(id string) (Doc, error) {
	i := d.phaseIndex(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrPhaseNotFound, id)
	}
	n := 0
	for _, f := range d.Features {
		if f.PhaseID == id {
			n++
		}
	}
	if n > 0 {
		return d, fmt.Errorf("%w: %q has %d feature(s)", ErrPhaseInUse, d.Phases[i].Name, n)
	}
	out := d.Clone()
	out.Phases = append(out.Phases[:i], out.Phases[i+1:]...)
	return out, nil
}

// AddFeature appends a feature ordered after every existing feature. The
// phase must exist.
func (d Doc) AddFeature(in NewFeature) (Doc, Feature, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return d, Feature{}, ErrEmptyTitle
	}
	if d.phaseIndex(in.PhaseID) < 0 {
		return d, Feature{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, in.PhaseID)
	}
	status := in.Status
	if status == "" {
		status = StatusNotStarted
	}
	if !status.Valid() {
		return d, Feature{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order := 1
	for _, f := range d.Features {
		if f.Order >= order {
			order = f.Order + 1
		}
	}
	tags := make([]string, len(in.Tags))
	copy(tags, in.Tags)

	now := nowMillis()
	f := Feature{
		ID:          newID(FeatureIDPrefix),
		Title:       title,
		Description: in.Description,
		Status:      status,
		PhaseID:     in.PhaseID,
		Tags:        tags,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	out := d.Clone()
	out.Features = append(out.Features, f)
	return out, f.clone(), nil
}

// EditFeature applies a patch to a feature's text fields.
func (d Doc) EditFeature(id string, patch FeaturePatch) (Doc, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return d, ErrEmptyTitle
	}
	return d.updateFeature(id, func(f *Feature) error {
		if patch.Title != nil {
			f.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			f.Description = *patch.Description
		}
		if patch.Tags != nil {
			f.Tags = make([]string, len(*patch.Tags))
			copy(f.Tags, *patch.Tags)
		}
		return nil
	})
}

// SetStatus changes a feature's status.
func (d Doc) SetStatus(id string, status Status) (Doc, error) {
	if !status.Valid() {
		return d, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return d.updateFeature(id, func(f *Feature) error {
		f.Status = status
		return nil
	})
}

// MoveToPhase reassigns a feature to another existing phase.
func (d Doc) MoveToPhase(id, phaseID string) (Doc, error) {
	if d.phaseIndex(phaseID) < 0 {
		return d, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
	}
	return d.updateFeature(id, func(f *Feature) error {
		f.PhaseID = phaseID
		return nil
	})
}

// SetOrder sets a feature's manual ordering key.
func (d Doc) SetOrder(id string, order int) (Doc, error) {
	return d.updateFeature(id, func(f *Feature) error {
		f.Order = order
		return nil
	})
}

// MoveFeature shifts a feature delta positions within the ordered feature
// list (negative moves up) and renumbers orders to 1..n. Only features whose
// order actually changes are touched. The move is clamped to the list
// bounds.
func (d Doc) MoveFeature(id string, delta int) (Doc, error) {
	if d.featureIndex(id) < 0 {
		return d, fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}

	ordered := OrderedFeatures(d)
	from := 0
	for i, f := range ordered {
		if f.ID == id {
			from = i
			break
		}
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to > len(ordered)-1 {
		to = len(ordered) - 1
	}

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]Feature{moved}, ordered[to:]...)...)

	target := make(map[string]int, len(ordered))
	for i, f := range ordered {
		if _, seen := target[f.ID]; !seen {
			target[f.ID] = i + 1
		}
	}

	now := nowMillis()
	out := d.Clone()
	for i := range out.Features {
		f := &out.Features[i]
		if order := target[f.ID]; f.Order != order {
			f.Order = order
			f.UpdatedAt = now
		}
	}
	return out, nil
}

// DeleteFeature removes a feature.
func (d Doc) DeleteFeature(id string) (Doc, error) {
	i := d.featureIndex(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}
	out := d.Clone()
	out.Features = append(out.Features[:i], out.Features[i+1:]...)
	return out, nil
}

func (d Doc) updateFeature(id string, fn func(*Feature) error) (Doc, error) {
	i := d.featureIndex(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}
	out := d.Clone()
	if err := fn(&out.Features[i]); err != nil {
		return d, err
	}
	out.Features[i].UpdatedAt = nowMillis()
	return out, nil
}
