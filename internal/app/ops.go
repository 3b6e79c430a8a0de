package app

import "github.com/pablasso/workbench/internal/workbench"

// SetTitle renames the document.
func (s *State) SetTitle(title string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.SetTitle(title) })
}

// AddPhase appends a phase and returns it.
func (s *State) AddPhase(name string) (workbench.Phase, error) {
	var created workbench.Phase
	err := s.Apply(func(d workbench.Doc) (workbench.Doc, error) {
		out, p, err := d.AddPhase(name)
		created = p
		return out, err
	})
	return created, err
}

// RenamePhase renames a phase.
func (s *State) RenamePhase(id, name string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.RenamePhase(id, name) })
}

// DeletePhase removes a phase without features.
func (s *State) DeletePhase(id string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.DeletePhase(id) })
}

// AddFeature creates a feature and returns it.
func (s *State) AddFeature(in workbench.NewFeature) (workbench.Feature, error) {
	var created workbench.Feature
	err := s.Apply(func(d workbench.Doc) (workbench.Doc, error) {
		out, f, err := d.AddFeature(in)
		created = f
		return out, err
	})
	return created, err
}

// EditFeature patches a feature's text fields.
func (s *State) EditFeature(id string, patch workbench.FeaturePatch) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.EditFeature(id, patch) })
}

// SetStatus changes a feature's status.
func (s *State) SetStatus(id string, status workbench.Status) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.SetStatus(id, status) })
}

// CycleStatus advances a feature to the next status.
func (s *State) CycleStatus(id string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) {
		f, ok := d.Feature(id)
		if !ok {
			return d.SetStatus(id, workbench.StatusNotStarted)
		}
		return d.SetStatus(id, f.Status.Next())
	})
}

// MoveToPhase reassigns a feature to another phase.
func (s *State) MoveToPhase(id, phaseID string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.MoveToPhase(id, phaseID) })
}

// SetOrder sets a feature's order value.
func (s *State) SetOrder(id string, order int) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.SetOrder(id, order) })
}

// MoveFeature shifts a feature within the ordered list.
func (s *State) MoveFeature(id string, delta int) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.MoveFeature(id, delta) })
}

// DeleteFeature removes a feature.
func (s *State) DeleteFeature(id string) error {
	return s.Apply(func(d workbench.Doc) (workbench.Doc, error) { return d.DeleteFeature(id) })
}
