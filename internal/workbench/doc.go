// Package workbench holds the feature-tracking document model: phases,
// features, their derived views and the mutations that produce new
// document values.
package workbench

import (
	"errors"
	"time"

	"github.com/pablasso/workbench/internal/util"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// Id prefixes for generated identifiers.
const (
	PhaseIDPrefix   = "ph"
	FeatureIDPrefix = "ft"
)

var (
	ErrPhaseNotFound   = errors.New("phase not found")
	ErrFeatureNotFound = errors.New("feature not found")
	ErrPhaseInUse      = errors.New("phase has features")
	ErrAmbiguousID     = errors.New("id prefix matches more than one item")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyTitle      = errors.New("title must not be empty")
)

// nowMillis and newID are replaced in tests.
var (
	nowMillis = func() int64 { return time.Now().UnixMilli() }
	newID     = util.NewID
)

// Doc is the root aggregate persisted as a unit.
type Doc struct {
	Version  int       `json:"version"`
	Title    string    `json:"title"`
	Phases   []Phase   `json:"phases"`
	Features []Feature `json:"features"`
}

// Phase is a named, ordered bucket that features belong to.
type Phase struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Feature is a trackable unit of work.
type Feature struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	PhaseID     string   `json:"phaseId"`
	Tags        []string `json:"tags"`
	Order       int      `json:"order"`
	CreatedAt   int64    `json:"createdAt"` // ms since epoch
	UpdatedAt   int64    `json:"updatedAt"` // ms since epoch
}

// Clone returns a deep copy of the document.
func (d Doc) Clone() Doc {
	out := d
	if d.Phases != nil {
		out.Phases = make([]Phase, len(d.Phases))
		copy(out.Phases, d.Phases)
	}
	if d.Features != nil {
		out.Features = make([]Feature, len(d.Features))
		for i, f := range d.Features {
			out.Features[i] = f.clone()
		}
	}
	return out
}

func (f Feature) clone() Feature {
	if f.Tags != nil {
		tags := make([]string, len(f.Tags))
		copy(tags, f.Tags)
		f.Tags = tags
	}
	return f
}

// Phase returns the first phase with the given id.
func (d Doc) Phase(id string) (Phase, bool) {
	if i := d.phaseIndex(id); i >= 0 {
		return d.Phases[i], true
	}
	return Phase{}, false
}

// Feature returns the first feature with the given id.
func (d Doc) Feature(id string) (Feature, bool) {
	if i := d.featureIndex(id); i >= 0 {
		return d.Features[i].clone(), true
	}
	return Feature{}, false
}

func (d Doc) phaseIndex(id string) int {
	for i := range d.Phases {
		if d.Phases[i].ID == id {
			return i
		}
	}
	return -1
}

func (d Doc) featureIndex(id string) int {
	for i := range d.Features {
		if d.Features[i].ID == id {
			return i
		}
	}
	return -1
}
