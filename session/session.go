// Package session runs the single editing session: one document, its dirty
// state, explicit open and save, and the auto-saved recovery snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ffebudget/autosave"
	"ffebudget/budget"
	"ffebudget/persistence"
)

var (
	// ErrDirty is returned by New and Open when unsaved changes would be
	// discarded and the caller did not force it.
	ErrDirty = errors.New("document has unsaved changes")
	// ErrNoTarget is returned by Save when no file name is known.
	ErrNoTarget = errors.New("no file to save to")
)

// Options configures a Session. Files and Snapshots are required.
type Options struct {
	Files     persistence.FileAccess
	Snapshots autosave.SnapshotStore
	Slot      string
	Clock     autosave.Clock
	Delay     time.Duration
	Logger    *slog.Logger
}

// State is a consistent read of the session.
type State struct {
	Document budget.Document
	Totals   budget.Totals
	Dirty    bool
	Path     string
}

// Session owns the active document. All methods are safe for concurrent
// use; mutations run one at a time.
type Session struct {
	files     persistence.FileAccess
	snapshots autosave.SnapshotStore
	slot      string
	clock     autosave.Clock
	logger    *slog.Logger
	debouncer *autosave.Debouncer

	mu     sync.Mutex
	editor *budget.Editor
	path   string
	gen    uint64

	// snapMu orders every write and delete of the recovery slot.
	snapMu sync.Mutex
	// snapGen is the generation of the last snapshot written.
	snapGen uint64
	// floor is the generation at which the document was last replaced or
	// saved; snapshots of it or older generations are stale.
	floor uint64
	// offer is the previous run's work found in the slot at start. While
	// it is pending the slot is neither written nor deleted.
	offer *budget.Document
}

// Start creates a session holding a blank template document. A recoverable
// snapshot already in the slot is kept as a pending offer until Resume or
// Discard settles it.
func Start(opts Options) *Session {
	s := &Session{
		files:     opts.Files,
		snapshots: opts.Snapshots,
		slot:      opts.Slot,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
	if s.slot == "" {
		s.slot = autosave.DefaultSlot
	}
	if s.clock == nil {
		s.clock = autosave.SystemClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	ids := budget.NewIDSource(s.clock.Now)
	s.editor = budget.NewEditor(budget.NewTemplate(ids), ids, s.logger)
	s.editor.OnChange(s.changed)
	s.debouncer = autosave.NewDebouncer(s.clock, opts.Delay, s.autosave)
	s.loadOffer(context.Background())
	return s
}

func (s *Session) loadOffer(ctx context.Context) {
	doc, err := s.loadSnapshot(ctx)
	if errors.Is(err, autosave.ErrNoSnapshot) {
		return
	}
	if err != nil {
		s.logger.Warn("session: recovery snapshot unreadable", "slot", s.slot, "error", err)
		return
	}
	if !persistence.IsRecoverable(doc) {
		return
	}
	s.offer = &doc
	s.logger.Info("session: recovery snapshot offered", "slot", s.slot, "categories", len(doc.Categories))
}

// changed runs under s.mu after every applied mutation.
func (s *Session) changed() {
	s.gen++
	s.debouncer.Trigger()
}

// State returns the document, its totals and the dirty flag.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Document: s.editor.Document(),
		Totals:   s.editor.Totals(),
		Dirty:    s.editor.IsDirty(),
		Path:     s.path,
	}
}

// Document returns a copy of the active document.
func (s *Session) Document() budget.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Document()
}

// IsDirty reports whether the document has unsaved changes.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.IsDirty()
}

// Mutate runs fn against the editor with exclusive access.
func (s *Session) Mutate(fn func(e *budget.Editor) budget.Result) budget.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// replace installs doc as the only active document and returns the new
// generation. Callers hold s.mu.
func (s *Session) replace(doc budget.Document, path string) uint64 {
	s.editor.Replace(doc)
	s.path = path
	s.gen++
	return s.gen
}

// New replaces the document with a blank template.
func (s *Session) New(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.editor.IsDirty() && !force {
		s.mu.Unlock()
		return ErrDirty
	}
	gen := s.replace(budget.NewTemplate(budget.NewIDSource(s.clock.Now)), "")
	s.mu.Unlock()

	s.logger.Info("session: new document")
	s.debouncer.Cancel()
	s.supersede(ctx, gen)
	return nil
}

// Open loads the named file. On any failure the active document is left
// as it was.
func (s *Session) Open(ctx context.Context, name string, force bool) error {
	if !force && s.IsDirty() {
		return ErrDirty
	}
	data, err := s.files.Read(ctx, name)
	if err != nil {
		return err
	}
	doc, err := persistence.Deserialize(data)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	s.mu.Lock()
	if s.editor.IsDirty() && !force {
		s.mu.Unlock()
		return ErrDirty
	}
	gen := s.replace(doc, name)
	s.mu.Unlock()

	s.logger.Info("session: opened document", "path", name, "categories", len(doc.Categories))
	s.debouncer.Cancel()
	s.supersede(ctx, gen)
	return nil
}

// Save writes the document to name, or to the file it was opened from or
// last saved to when name is empty. The dirty flag is cleared only if no
// edit landed while the write was in flight.
func (s *Session) Save(ctx context.Context, name string) error {
	s.mu.Lock()
	if name == "" {
		name = s.path
	}
	doc := s.editor.Document()
	gen := s.gen
	s.mu.Unlock()

	if name == "" {
		return ErrNoTarget
	}
	data, err := persistence.Serialize(doc, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.files.Write(ctx, name, data); err != nil {
		return err
	}

	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.editor.MarkClean()
		s.path = name
	}
	s.mu.Unlock()

	s.logger.Info("session: saved document", "path", name, "bytes", len(data))
	if current {
		s.debouncer.Cancel()
		s.supersede(ctx, gen)
	}
	return nil
}

// CheckRecovery reports whether a previous run's work is waiting to be
// resumed or discarded.
func (s *Session) CheckRecovery(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.offer != nil, nil
}

// Resume replaces the document with the offered recovery snapshot. The
// result is dirty because the snapshot is not the user's own file.
// Unsaved changes are kept and ErrDirty returned unless force is set.
func (s *Session) Resume(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.snapMu.Lock()
	offer := s.offer
	s.snapMu.Unlock()
	if offer == nil {
		return autosave.ErrNoSnapshot
	}

	s.mu.Lock()
	if s.editor.IsDirty() && !force {
		s.mu.Unlock()
		return ErrDirty
	}
	gen := s.replace(offer.Clone(), "")
	s.editor.MarkDirty()
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.snapMu.Lock()
	s.offer = nil
	s.floor = gen
	s.snapMu.Unlock()

	s.logger.Info("session: resumed recovery snapshot", "slot", s.slot)
	return nil
}

// Discard deletes the recovery snapshot and withdraws any pending offer.
// Unsaved changes of the current document are snapshotted again.
func (s *Session) Discard(ctx context.Context) error {
	s.snapMu.Lock()
	err := s.snapshots.Delete(ctx, s.slot)
	if err == nil {
		s.offer = nil
	}
	s.snapMu.Unlock()
	if err != nil {
		return fmt.Errorf("discard snapshot: %w", err)
	}

	s.mu.Lock()
	if s.editor.IsDirty() {
		s.changed()
	}
	s.mu.Unlock()
	return nil
}

// Snapshot writes any pending recovery snapshot now.
func (s *Session) Snapshot() {
	s.debouncer.Flush()
}

// Close writes a pending snapshot and stops scheduling new ones.
func (s *Session) Close() {
	s.debouncer.Flush()
	s.debouncer.Stop()
}

func (s *Session) loadSnapshot(ctx context.Context) (budget.Document, error) {
	data, err := s.snapshots.Load(ctx, s.slot)
	if err != nil {
		return budget.Document{}, err
	}
	doc, err := persistence.Deserialize(data)
	if err != nil {
		return budget.Document{}, fmt.Errorf("recovery snapshot: %w", err)
	}
	return doc, nil
}

// autosave is the debounced callback.
func (s *Session) autosave() {
	if err := s.writeSnapshot(context.Background()); err != nil {
		s.logger.Error("session: auto-save failed", "slot", s.slot, "error", err)
	}
}

func (s *Session) writeSnapshot(ctx context.Context) error {
	s.mu.Lock()
	doc := s.editor.Document()
	gen := s.gen
	s.mu.Unlock()

	data, err := persistence.Serialize(doc, s.clock.Now())
	if err != nil {
		return err
	}
	return s.storeSnapshot(ctx, gen, data)
}

// storeSnapshot writes data taken at generation gen, unless a newer
// snapshot was written, the document was replaced or saved since, or the
// slot holds a pending offer.
func (s *Session) storeSnapshot(ctx context.Context, gen uint64, data []byte) error {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.offer != nil {
		s.logger.Debug("session: snapshot held back by pending recovery offer", "slot", s.slot)
		return nil
	}
	if gen <= s.floor || gen < s.snapGen {
		return nil
	}
	if err := s.snapshots.Save(ctx, s.slot, data); err != nil {
		return err
	}
	s.snapGen = gen
	s.logger.Debug("session: snapshot written", "slot", s.slot, "bytes", len(data))
	return nil
}

// supersede marks snapshots up to gen stale and clears the slot, unless it
// holds a pending offer.
func (s *Session) supersede(ctx context.Context, gen uint64) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if gen > s.floor {
		s.floor = gen
	}
	if s.offer != nil {
		return
	}
	if err := s.snapshots.Delete(ctx, s.slot); err != nil {
		s.logger.Warn("session: could not clear recovery snapshot", "slot", s.slot, "error", err)
	}
}
