// Package persist saves and restores the workbench document in a key-value
// store. Storage problems never escape as failures of Load: an unreadable
// or corrupt value is reported as "no document".
package persist

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pablasso/workbench/internal/store"
	"github.com/pablasso/workbench/internal/workbench"
)

// DocKey is the storage key holding the document.
const DocKey = "workbench:doc"

// BackupKey holds the last stored value that was set aside instead of
// loaded.
const BackupKey = DocKey + ".bak"

// Adapter reads and writes the whole document under DocKey.
type Adapter struct {
	kv     store.KV
	logger *log.Logger
}

// New creates an adapter over kv. A nil logger discards log output.
func New(kv store.KV, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Adapter{kv: kv, logger: logger.WithPrefix("persist")}
}

// Status says what Inspect found under DocKey.
type Status int

const (
	// Loaded means a valid document was decoded.
	Loaded Status = iota
	// Missing means nothing is stored under the key.
	Missing
	// Unreadable means the store failed to return the value.
	Unreadable
	// Rejected means a value is stored but isn't a document this build can
	// use: corrupt, the wrong shape or a newer version.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Unreadable:
		return "unreadable"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Load returns the stored document. The boolean is false when nothing
// usable is stored: the key is absent, the store can't be read, or the value
// isn't a valid document of a supported version.
func (a *Adapter) Load() (workbench.Doc, bool) {
	doc, status := a.Inspect()
	return doc, status == Loaded
}

// Inspect is Load with the reason a document wasn't returned.
func (a *Adapter) Inspect() (workbench.Doc, Status) {
	value, err := a.kv.Get(DocKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return workbench.Doc{}, Missing
		}
		a.logger.Warn("failed to read document", "key", DocKey, "err", err)
		return workbench.Doc{}, Unreadable
	}

	doc, err := workbench.Decode([]byte(value))
	if err != nil {
		a.logger.Warn("ignoring stored document", "key", DocKey, "bytes", len(value), "err", err)
		return workbench.Doc{}, Rejected
	}

	a.logger.Debug("loaded document", "phases", len(doc.Phases), "features", len(doc.Features))
	return doc, Loaded
}

// Backup copies the raw value under DocKey to BackupKey, replacing any
// earlier backup.
func (a *Adapter) Backup() error {
	value, err := a.kv.Get(DocKey)
	if err != nil {
		return fmt.Errorf("failed to read document for backup: %w", err)
	}
	if err := a.kv.Set(BackupKey, value); err != nil {
		return fmt.Errorf("failed to back up document: %w", err)
	}
	a.logger.Info("backed up stored document", "key", BackupKey, "bytes", len(value))
	return nil
}

// Save overwrites the stored document. A failed save is logged and
// returned; the previous stored value may or may not still be present.
func (a *Adapter) Save(doc workbench.Doc) error {
	data, err := workbench.Encode(doc)
	if err != nil {
		a.logger.Error("failed to encode document", "err", err)
		return err
	}
	if err := a.kv.Set(DocKey, string(data)); err != nil {
		a.logger.Warn("failed to save document", "key", DocKey, "err", err)
		return fmt.Errorf("failed to save document: %w", err)
	}
	a.logger.Debug("saved document", "bytes", len(data))
	return nil
}
