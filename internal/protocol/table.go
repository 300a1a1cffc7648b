package protocol

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

// CompletionFunc receives the terminal outcome of one pending request: the raw
// result on success, or a non-nil error.
type CompletionFunc func(result json.RawMessage, err error)

// pendingEntry tracks an outgoing request awaiting its single completion.
type pendingEntry struct {
	id       int64
	method   string
	complete CompletionFunc
	created  time.Time
}

// Table maps outstanding request ids to their completion handlers.
//
// All mutation happens under one mutex. Handlers always run outside the lock so
// they may issue new requests. Every registered entry is removed and completed
// exactly once: by Complete, by Cancel, or by FailAll.
type Table struct {
	log *slog.Logger

	mu        sync.Mutex
	entries   map[int64]*pendingEntry
	highWater int64
	closed    bool
	closeErr  error
}

// NewTable creates an empty correlation table.
func NewTable(log *slog.Logger) *Table {
	return &Table{
		log:     log.With("component", "correlation"),
		entries: make(map[int64]*pendingEntry, 16),
	}
}

// Register adds a pending entry for id.
//
// It returns the disconnect error if the table has already been failed.
// Registering an id that is still pending is a programming error and panics.
func (t *Table) Register(id int64, method string, fn CompletionFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return t.closeErr
	}

	if _, dup := t.entries[id]; dup {
		panic(fmt.Sprintf("protocol: duplicate registration of request id %d (%s)", id, method))
	}

	t.entries[id] = &pendingEntry{
		id:       id,
		method:   method,
		complete: fn,
		created:  time.Now(),
	}

	if id > t.highWater {
		t.highWater = id
	}

	return nil
}

// Complete removes the entry for id and invokes its handler. It returns false
// if no such entry exists, which happens for late responses after cancellation
// or closure and for protocol noise.
func (t *Table) Complete(id int64, result json.RawMessage, err error) bool {
	t.mu.Lock()

	entry, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}

	late := id > 0 && id <= t.highWater
	t.mu.Unlock()

	if !ok {
		if late {
			t.log.Debug("Discarding response for completed request", "request_id", id, "late", true)
		} else {
			t.log.Warn("No pending request for response", "request_id", id)
		}

		return false
	}

	t.log.Debug("Completing request",
		"request_id", id,
		"method", entry.method,
		"elapsed", time.Since(entry.created),
		"failed", err != nil,
	)

	t.invoke(entry, result, err)

	return true
}

// Cancel removes the entry for id and completes it with ErrRequestCancelled.
func (t *Table) Cancel(id int64) bool {
	t.mu.Lock()

	entry, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}

	t.mu.Unlock()

	if !ok {
		return false
	}

	t.log.Debug("Cancelling request", "request_id", id, "method", entry.method)
	t.invoke(entry, nil, fmt.Errorf("%s: %w", entry.method, errors.ErrRequestCancelled))

	return true
}

// FailAll completes every pending entry with a disconnect error built from
// reason and closes the table to further registrations. Only the first call
// has any effect; it returns the number of entries failed.
func (t *Table) FailAll(reason error) int {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()

		return 0
	}

	t.closed = true
	t.closeErr = &errors.DisconnectedError{Reason: reason}
	closeErr := t.closeErr

	pending := make([]*pendingEntry, 0, len(t.entries))
	for _, entry := range t.entries {
		pending = append(pending, entry)
	}

	clear(t.entries)
	t.mu.Unlock()

	slices.SortFunc(pending, func(a, b *pendingEntry) int {
		return cmp.Compare(a.id, b.id)
	})

	if len(pending) > 0 {
		t.log.Info("Failing pending requests", "count", len(pending), "reason", reason)
	}

	for _, entry := range pending {
		t.invoke(entry, nil, closeErr)
	}

	return len(pending)
}

// Closed reports whether FailAll has run.
func (t *Table) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closed
}

// Len returns the number of pending entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Has reports whether id is pending.
func (t *Table) Has(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[id]

	return ok
}

// Oldest returns the id and age of the longest-waiting entry.
func (t *Table) Oldest() (int64, time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var oldest *pendingEntry

	for _, entry := range t.entries {
		if oldest == nil || entry.id < oldest.id {
			oldest = entry
		}
	}

	if oldest == nil {
		return 0, 0, false
	}

	return oldest.id, time.Since(oldest.created), true
}

// invoke runs a handler, containing panics so one faulty callback cannot stop
// the remaining completions.
func (t *Table) invoke(entry *pendingEntry, result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("Completion handler panicked",
				"request_id", entry.id,
				"method", entry.method,
				"panic", r,
			)
		}
	}()

	if entry.complete != nil {
		entry.complete(result, err)
	}
}
