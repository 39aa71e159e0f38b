package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/lineage/internal/storage"
)

// DefaultNamespace is the KV key the event sequence is stored under.
const DefaultNamespace = "document-lineage"

// timestampLayout is RFC 3339 with a fixed-width nanosecond fraction, so
// issued timestamps also sort lexically ("...T10:04:05.123456789Z").
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is recorded as the persistence error for mutations made after Close.
var ErrClosed = errors.New("lineage store is closed")

// Options configures a Store. Zero values select defaults.
type Options struct {
	Namespace string
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Store owns the ordered event sequence of one document and mirrors it into
// a KV after every mutation. The in-memory sequence is authoritative: a
// failed write is logged and kept in PersistErr, never rolled back.
type Store struct {
	kv        storage.KV
	namespace string
	log       *slog.Logger
	now       func() time.Time
	newID     func() string

	mu         sync.RWMutex
	events     []Event
	lastStamp  time.Time
	persistErr error
	closed     bool
}

// New creates a Store over kv. Call Load before use to pick up persisted history.
func New(kv storage.KV, opts Options) *Store {
	s := &Store{
		kv:        kv,
		namespace: opts.Namespace,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.namespace == "" {
		s.namespace = DefaultNamespace
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Namespace returns the KV key this store persists under.
func (s *Store) Namespace() string {
	return s.namespace
}

// Load replaces the in-memory sequence with the persisted one, migrating
// legacy records. A missing key yields an empty history. On a read or decode
// failure the store is left empty and usable and the error is returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
	s.lastStamp = time.Time{}

	payload, err := s.kv.Get(ctx, s.namespace)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Error("loading lineage failed", "namespace", s.namespace, "err", err)
		return fmt.Errorf("loading %s: %w", s.namespace, err)
	}

	events, migrated, err := decodeEvents(payload)
	if err != nil {
		s.log.Error("decoding lineage failed", "namespace", s.namespace, "err", err)
		return fmt.Errorf("loading %s: %w", s.namespace, err)
	}
	if migrated > 0 {
		s.log.Info("migrated legacy lineage records", "namespace", s.namespace, "count", migrated)
	}

	s.events = events
	for _, e := range events {
		if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil && t.After(s.lastStamp) {
			s.lastStamp = t
		}
	}
	return nil
}

// Close disposes the store. Later mutations still update memory but are not
// persisted; PersistErr reports ErrClosed. The KV is owned by the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// PersistErr returns the error from the most recent persistence attempt, or
// nil if it succeeded.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// Append records a new event derived from parentID (nil starts a new root,
// even when other events exist).
func (s *Store) Append(ctx context.Context, typ Type, content string, parentID *string, summary string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, typ, content, parentID, summary)
}

// appendLocked must be called with mu held.
func (s *Store) appendLocked(ctx context.Context, typ Type, content string, parentID *string, summary string) Event {
	var parent *string
	if parentID != nil {
		parent = strPtr(*parentID)
		if s.indexOf(*parentID) < 0 {
			s.log.Warn("appending event with unknown parent", "namespace", s.namespace, "parent", *parentID)
		}
	}

	e := Event{
		ID:        s.newID(),
		ParentID:  parent,
		Timestamp: s.stamp(),
		Type:      typ,
		Content:   content,
		Summary:   summary,
		Version:   len(s.events) + 1,
	}
	s.events = append(s.events, e)
	s.persist(ctx)
	return e
}

// ResetWithContent discards the whole history and seeds a single root at version 1.
func (s *Store) ResetWithContent(ctx context.Context, content, summary string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Event{
		ID:        s.newID(),
		Timestamp: s.stamp(),
		Type:      TypeUserEdit,
		Content:   content,
		Summary:   summary,
		Version:   1,
	}
	s.events = []Event{e}
	s.persist(ctx)
	return e
}

// Clear empties the sequence and removes persisted state.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
	if s.closed {
		s.persistErr = ErrClosed
		return
	}
	if err := s.kv.Delete(ctx, s.namespace); err != nil {
		s.persistErr = err
		s.log.Error("clearing lineage failed", "namespace", s.namespace, "err", err)
		return
	}
	s.persistErr = nil
}

// Branch appends a branch event whose parent is fromID. It reports false if
// fromID does not exist.
func (s *Store) Branch(ctx context.Context, fromID, content, summary string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(fromID) < 0 {
		return Event{}, false
	}
	return s.appendLocked(ctx, TypeBranch, content, &fromID, summary), true
}

// Restore appends a restore event carrying id's snapshot on top of the
// latest event, so the restored text continues the current line.
func (s *Store) Restore(ctx context.Context, id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Event{}, false
	}
	target := s.events[i]
	// target exists, so there is a latest event
	latest := s.events[len(s.events)-1].ID
	summary := fmt.Sprintf("Restored version %d", target.Version)
	return s.appendLocked(ctx, TypeRestore, target.Content, &latest, summary), true
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	if s.closed {
		s.persistErr = ErrClosed
		s.log.Warn("mutation after close not persisted", "namespace", s.namespace)
		return
	}
	payload, err := encodeEvents(s.events)
	if err == nil {
		err = s.kv.Put(ctx, s.namespace, payload)
	}
	if err != nil {
		s.persistErr = err
		s.log.Error("persisting lineage failed", "namespace", s.namespace, "events", len(s.events), "err", err)
		return
	}
	s.persistErr = nil
}

// stamp returns a timestamp strictly after the previous one issued by this store.
func (s *Store) stamp() string {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t.Format(timestampLayout)
}
