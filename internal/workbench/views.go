package workbench

import (
	"fmt"
	"sort"
	"strings"
)

// PhasesByID maps phase ids to phases. When ids repeat, the later phase
// wins.
func PhasesByID(d Doc) map[string]Phase {
	byID := make(map[string]Phase, len(d.Phases))
	for _, p := range d.Phases {
		byID[p.ID] = p
	}
	return byID
}

// OrderedFeatures returns the features sorted ascending by Order. The sort is
// stable, so equal orders keep their relative position. d is not modified.
func OrderedFeatures(d Doc) []Feature {
	out := make([]Feature, len(d.Features))
	for i, f := range d.Features {
		out[i] = f.clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// OrderedPhases returns the phases sorted ascending by Order (stable).
func OrderedPhases(d Doc) []Phase {
	out := make([]Phase, len(d.Phases))
	copy(out, d.Phases)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Group is a phase together with the features shown under it. Phase is nil
// for the bucket of features whose phase does not exist.
type Group struct {
	Phase    *Phase
	Features []Feature
}

// Name returns the heading for the group.
func (g Group) Name() string {
	if g.Phase == nil {
		return "Unassigned"
	}
	return g.Phase.Name
}

// GroupByPhase buckets features (in the order given) under the document's
// phases in phase order. Phases without features are included so the board
// can show them. Features with a dangling phase id land in a trailing group
// with a nil Phase, which is omitted when empty.
func GroupByPhase(d Doc, features []Feature) []Group {
	phases := OrderedPhases(d)
	groups := make([]Group, len(phases))
	index := make(map[string]int, len(phases))
	for i := range phases {
		groups[i] = Group{Phase: &phases[i]}
		if _, seen := index[phases[i].ID]; !seen {
			index[phases[i].ID] = i
		}
	}

	var orphans []Feature
	for _, f := range features {
		if i, ok := index[f.PhaseID]; ok {
			groups[i].Features = append(groups[i].Features, f)
			continue
		}
		orphans = append(orphans, f)
	}
	if len(orphans) > 0 {
		groups = append(groups, Group{Features: orphans})
	}
	return groups
}

// Orphans returns the features whose phase id matches no phase, in document
// order.
func Orphans(d Doc) []Feature {
	byID := PhasesByID(d)
	var out []Feature
	for _, f := range d.Features {
		if _, ok := byID[f.PhaseID]; !ok {
			out = append(out, f.clone())
		}
	}
	return out
}

// StatusCounts tallies features per status.
type StatusCounts map[Status]int

// Counts tallies the given features by status.
func Counts(features []Feature) StatusCounts {
	counts := make(StatusCounts, len(Statuses))
	for _, f := range features {
		counts[f.Status]++
	}
	return counts
}

// Total returns the number of features counted.
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ResolveFeature finds a feature by exact id or unique id prefix.
func (d Doc) ResolveFeature(ref string) (Feature, error) {
	ids := make([]string, len(d.Features))
	for i, f := range d.Features {
		ids[i] = f.ID
	}
	id, err := resolve(ids, ref, ErrFeatureNotFound)
	if err != nil {
		return Feature{}, fmt.Errorf("%w: %s", err, ref)
	}
	f, _ := d.Feature(id)
	return f, nil
}

// ResolvePhase finds a phase by exact id, unique id prefix, or exact
// (case-insensitive) name.
func (d Doc) ResolvePhase(ref string) (Phase, error) {
	ids := make([]string, len(d.Phases))
	for i, p := range d.Phases {
		ids[i] = p.ID
	}
	id, err := resolve(ids, ref, ErrPhaseNotFound)
	if err == ErrPhaseNotFound {
		for _, p := range d.Phases {
			if strings.EqualFold(p.Name, ref) {
				return p, nil
			}
		}
		return Phase{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, ref)
	}
	if err != nil {
		return Phase{}, fmt.Errorf("%w: %s", err, ref)
	}
	p, _ := d.Phase(id)
	return p, nil
}

func resolve(ids []string, ref string, notFound error) (string, error) {
	if ref == "" {
		return "", notFound
	}

	var match string
	matches := 0
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) && id != match {
			match = id
			matches++
		}
	}
	switch matches {
	case 0:
		return "", notFound
	case 1:
		return match, nil
	default:
		return "", ErrAmbiguousID
	}
}
