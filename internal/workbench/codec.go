package workbench

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidDoc         = errors.New("invalid workbench document")
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// migration upgrades a raw document from one version to the next.
type migration func(raw map[string]any) error

// migrations is keyed by the version a document is migrated FROM.
var migrations = map[int]migration{
	0: migrateV0,
}

// Encode serializes a document for storage.
// Nil collections are written as empty arrays so the result always has the
// shape Decode requires.
func Encode(d Doc) ([]byte, error) {
	if d.Phases == nil {
		d.Phases = []Phase{}
	}
	if d.Features == nil {
		d.Features = []Feature{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Decode parses a stored document, migrating older versions to
// CurrentVersion and validating the result.
func Decode(data []byte) (Doc, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Doc{}, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
	}
	if raw == nil {
		return Doc{}, fmt.Errorf("%w: not an object", ErrInvalidDoc)
	}

	version, err := rawVersion(raw)
	if err != nil {
		return Doc{}, err
	}
	if version > CurrentVersion {
		return Doc{}, fmt.Errorf("%w: %d (newest known is %d)", ErrUnsupportedVersion, version, CurrentVersion)
	}

	if version < CurrentVersion {
		for v := version; v < CurrentVersion; v++ {
			migrate, ok := migrations[v]
			if !ok {
				return Doc{}, fmt.Errorf("%w: no migration from version %d", ErrUnsupportedVersion, v)
			}
			if err := migrate(raw); err != nil {
				return Doc{}, fmt.Errorf("%w: migrating from version %d: %v", ErrInvalidDoc, v, err)
			}
			raw["version"] = float64(v + 1)
		}
		if data, err = json.Marshal(raw); err != nil {
			return Doc{}, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
		}
	}
	if err := checkShape(raw); err != nil {
		return Doc{}, err
	}

	var d Doc
	if err := json.Unmarshal(data, &d); err != nil {
		return Doc{}, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
	}
	if err := Validate(d); err != nil {
		return Doc{}, err
	}
	return d, nil
}

// Validate checks the structural rules a stored document must satisfy.
// Dangling phase references are allowed; see Orphans.
func Validate(d Doc) error {
	if d.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	for _, p := range d.Phases {
		if p.ID == "" {
			return fmt.Errorf("%w: phase %q has no id", ErrInvalidDoc, p.Name)
		}
	}
	for _, f := range d.Features {
		if f.ID == "" {
			return fmt.Errorf("%w: feature %q has no id", ErrInvalidDoc, f.Title)
		}
		if !f.Status.Valid() {
			return fmt.Errorf("%w: feature %s has status %q", ErrInvalidDoc, f.ID, f.Status)
		}
	}
	return nil
}

// checkShape requires the top-level fields every version carries: a string
// title and phases and features arrays.
func checkShape(raw map[string]any) error {
	if _, ok := raw["title"].(string); !ok {
		return fmt.Errorf("%w: title is %T, want string", ErrInvalidDoc, raw["title"])
	}
	for _, field := range []string{"phases", "features"} {
		if _, ok := raw[field].([]any); !ok {
			return fmt.Errorf("%w: %s is %T, want array", ErrInvalidDoc, field, raw[field])
		}
	}
	return nil
}

func rawVersion(raw map[string]any) (int, error) {
	v, ok := raw["version"]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(float64)
	if !ok || n != float64(int(n)) || n < 0 {
		return 0, fmt.Errorf("%w: version %v", ErrInvalidDoc, v)
	}
	return int(n), nil
}

// migrateV0 upgrades unversioned documents, which kept features in display
// order and had no updatedAt. Missing orders are taken from the array
// position and missing updatedAt from createdAt.
func migrateV0(raw map[string]any) error {
	features, ok := raw["features"]
	if !ok || features == nil {
		return nil
	}
	list, ok := features.([]any)
	if !ok {
		return fmt.Errorf("features is %T, want array", features)
	}
	for i, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("feature %d is %T, want object", i, item)
		}
		if _, ok := f["order"]; !ok {
			f["order"] = float64(i + 1)
		}
		if _, ok := f["updatedAt"]; !ok {
			if created, ok := f["createdAt"]; ok {
				f["updatedAt"] = created
			}
		}
	}
	return nil
}
