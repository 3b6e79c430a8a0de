// Package app owns the running session: the current document, its derived
// views and the storage it is saved to.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pablasso/workbench/internal/config"
	"github.com/pablasso/workbench/internal/persist"
	"github.com/pablasso/workbench/internal/store"
	"github.com/pablasso/workbench/internal/workbench"
)

// State is the single document of a session together with its storage.
// It is not safe for concurrent use; the UI drives it from one goroutine.
type State struct {
	kv      store.KV
	adapter *persist.Adapter
	lock    *store.SessionLock
	logger  *log.Logger

	doc        workbench.Doc
	phasesByID map[string]workbench.Phase
	ordered    []workbench.Feature

	seeded  bool
	shared  bool
	saveErr error

	changes <-chan struct{}
	cancel  context.CancelFunc
}

// Open is the session init: it opens the configured storage, takes the
// session lock, loads the saved document (or seeds one) and saves it back.
func Open(cfg config.Config, logger *log.Logger) (*State, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	kv, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var lock *store.SessionLock
	shared := false
	if cfg.Backend != store.BackendMemory {
		lock = store.NewSessionLock(cfg.DataDir)
		if err := lock.Acquire(); err != nil {
			if !errors.Is(err, store.ErrSessionActive) {
				kv.Close()
				return nil, err
			}
			logger.Warn("storage is shared with another session; last save wins", "dir", cfg.DataDir, "err", err)
			shared = true
		}
	}

	s := New(kv, logger)
	s.lock = lock
	s.shared = shared

	if w, ok := kv.(store.Watcher); ok {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := w.Watch(ctx, persist.DocKey)
		if err != nil {
			cancel()
			logger.Warn("not watching storage for external changes", "err", err)
		} else {
			s.changes = changes
			s.cancel = cancel
		}
	}

	logger.Info("session opened", "backend", cfg.Backend, "dir", cfg.DataDir, "seeded", s.seeded)
	return s, nil
}

// New builds a session over an existing store: load or seed, then save.
// A stored value that can't be loaded is not overwritten here. Close closes
// kv.
func New(kv store.KV, logger *log.Logger) *State {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &State{
		kv:      kv,
		adapter: persist.New(kv, logger),
		logger:  logger,
	}

	switch doc, status := s.adapter.Inspect(); status {
	case persist.Loaded:
		s.commit(doc)
	case persist.Missing:
		s.seeded = true
		s.commit(workbench.Seed())
	default:
		// Something is stored that this session can't use. Work from the seed
		// in memory and leave the stored value alone until the first change,
		// which overwrites it; a rejected value is copied aside first.
		s.seeded = true
		s.setDoc(workbench.Seed())
		if status == persist.Rejected {
			if err := s.adapter.Backup(); err != nil {
				logger.Warn("stored document will be lost on the next save", "err", err)
			}
		}
	}
	return s
}

// Close is the session dispose: it stops watching, releases the lock and
// closes storage.
func (s *State) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	var errs []error
	if s.lock != nil {
		errs = append(errs, s.lock.Release())
	}
	errs = append(errs, s.kv.Close())
	return errors.Join(errs...)
}

// Doc returns a copy of the current document.
func (s *State) Doc() workbench.Doc {
	return s.doc.Clone()
}

// PhasesByID returns the phase lookup for the current document.
func (s *State) PhasesByID() map[string]workbench.Phase {
	return s.phasesByID
}

// OrderedFeatures returns the current features sorted by order.
func (s *State) OrderedFeatures() []workbench.Feature {
	return s.ordered
}

// Seeded reports whether the session started from the seed document
// because nothing usable was stored.
func (s *State) Seeded() bool {
	return s.seeded
}

// SharedSession reports whether another live session uses the same storage.
func (s *State) SharedSession() bool {
	return s.shared
}

// SaveError returns the error from the latest save, or nil if it succeeded.
func (s *State) SaveError() error {
	return s.saveErr
}

// Changes signals when another process rewrites the stored document. It is
// nil when the backend can't be watched.
func (s *State) Changes() <-chan struct{} {
	return s.changes
}

// Apply runs a mutation against the current document. On success the result
// becomes the current document and is saved. A save failure does not undo
// the change; it is kept in SaveError.
func (s *State) Apply(mutate func(workbench.Doc) (workbench.Doc, error)) error {
	next, err := mutate(s.doc)
	if err != nil {
		return err
	}
	s.commit(next)
	return nil
}

// Reload replaces the current document with the stored one. It returns
// false, leaving the current document in place, when nothing usable is
// stored.
func (s *State) Reload() bool {
	doc, ok := s.adapter.Load()
	if !ok {
		return false
	}
	s.setDoc(doc)
	s.saveErr = nil
	return true
}

// Reset replaces the document with a fresh seed.
func (s *State) Reset() {
	s.commit(workbench.Seed())
}

// Replace validates doc and makes it the current document.
func (s *State) Replace(doc workbench.Doc) error {
	if err := workbench.Validate(doc); err != nil {
		return fmt.Errorf("cannot import document: %w", err)
	}
	s.commit(doc.Clone())
	return nil
}

func (s *State) commit(doc workbench.Doc) {
	s.setDoc(doc)
	s.saveErr = s.adapter.Save(doc)
}

func (s *State) setDoc(doc workbench.Doc) {
	s.doc = doc
	s.phasesByID = workbench.PhasesByID(doc)
	s.ordered = workbench.OrderedFeatures(doc)
}
