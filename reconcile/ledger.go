package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	ErrCodeEntryNotFound = "LEDGER_ENTRY_NOT_FOUND"
	ErrCodeLedgerRead    = "LEDGER_READ_FAILED"
	ErrCodeLedgerWrite   = "LEDGER_WRITE_FAILED"
)

// Status is the reconciliation state of a ledger entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// Entry is one partial submission: the entity that was saved, the stages
// that still have to run and the media they owe.
type Entry struct {
	ID        string                `yaml:"id" json:"id"`
	Kind      api.Kind              `yaml:"kind" json:"kind"`
	EntityID  string                `yaml:"entity_id" json:"entity_id"`
	Stage     submit.Stage          `yaml:"stage" json:"stage"`
	Completed []submit.Stage        `yaml:"completed,omitempty" json:"completed,omitempty"`
	Pending   []submit.Stage        `yaml:"pending" json:"pending"`
	Key       string                `yaml:"idempotency_key" json:"idempotency_key"`
	Upload    []draft.NewMedia      `yaml:"upload,omitempty" json:"upload,omitempty"`
	Delete    []draft.ExistingMedia `yaml:"delete,omitempty" json:"delete,omitempty"`
	Cause     string                `yaml:"cause" json:"cause"`
	Status    Status                `yaml:"status" json:"status"`
	Attempts  int                   `yaml:"attempts" json:"attempts"`
	LastError string                `yaml:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt time.Time             `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time             `yaml:"updated_at" json:"updated_at"`
}

// Partial rebuilds the submission state Resume expects.
func (e Entry) Partial() submit.Partial {
	return submit.Partial{
		Kind:      e.Kind,
		EntityID:  e.EntityID,
		Stage:     e.Stage,
		Completed: slices.Clone(e.Completed),
		Pending:   slices.Clone(e.Pending),
		Key:       e.Key,
		Cause:     e.Cause,
	}
}

// Work returns the uploads and deletions the entry still owes.
func (e Entry) Work() payload.Result {
	return payload.Result{
		Upload: slices.Clone(e.Upload),
		Delete: slices.Clone(e.Delete),
	}
}

func (e Entry) clone() Entry {
	e.Completed = slices.Clone(e.Completed)
	e.Pending = slices.Clone(e.Pending)
	e.Upload = slices.Clone(e.Upload)
	e.Delete = slices.Clone(e.Delete)
	return e
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDFunc overrides the entry id generator.
func WithIDFunc(fn func() string) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// Ledger keeps partial submissions in memory and, when it has a path,
// rewrites its YAML file after every change. It implements submit.Recorder.
type Ledger struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	now     func() time.Time
	newID   func() string
}

type ledgerFile struct {
	Entries []Entry `yaml:"entries"`
}

var _ submit.Recorder = (*Ledger)(nil)

// NewLedger returns an in-memory ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// OpenLedger loads the ledger at path. A missing file is an empty ledger.
func OpenLedger(path string, opts ...LedgerOption) (*Ledger, error) {
	l := NewLedger(opts...)
	l.path = path

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "read ledger "+path).
			WithTextCode(ErrCodeLedgerRead)
	}

	var file ledgerFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "parse ledger "+path).
			WithTextCode(ErrCodeLedgerRead)
	}
	l.entries = file.Entries
	return l, nil
}

// Path returns the backing file, empty for an in-memory ledger.
func (l *Ledger) Path() string { return l.path }

// RecordPartial stores a partial submission. A pending entry for the same
// entity and idempotency key is updated in place, so a resumed submission
// that fails again does not add a second entry.
func (l *Ledger) RecordPartial(_ context.Context, p submit.Partial, work payload.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if i := l.openIndex(p); i >= 0 {
		e := &l.entries[i]
		e.Stage = p.Stage
		e.Completed = append(e.Completed, p.Completed...)
		e.Pending = slices.Clone(p.Pending)
		e.Upload = slices.Clone(work.Upload)
		e.Delete = slices.Clone(work.Delete)
		e.Cause = p.Cause
		e.UpdatedAt = now
		return l.save()
	}

	l.entries = append(l.entries, Entry{
		ID:        l.newID(),
		Kind:      p.Kind,
		EntityID:  p.EntityID,
		Stage:     p.Stage,
		Completed: slices.Clone(p.Completed),
		Pending:   slices.Clone(p.Pending),
		Key:       p.Key,
		Upload:    slices.Clone(work.Upload),
		Delete:    slices.Clone(work.Delete),
		Cause:     p.Cause,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return l.save()
}

// Entries returns the entries in recording order, filtered by status when
// any are given.
func (l *Ledger) Entries(statuses ...Status) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if len(statuses) > 0 && !slices.Contains(statuses, e.Status) {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

// Get returns the entry with the given id.
func (l *Ledger) Get(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.entries[i].clone(), true
	}
	return Entry{}, false
}

// Update applies fn to the entry and persists the ledger.
func (l *Ledger) Update(id string, fn func(*Entry)) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return Entry{}, entryNotFound(id)
	}
	fn(&l.entries[i])
	l.entries[i].UpdatedAt = l.now()
	return l.entries[i].clone(), l.save()
}

// Resolve marks an entry reconciled by hand.
func (l *Ledger) Resolve(id string) (Entry, error) {
	return l.Update(id, func(e *Entry) {
		e.Status = StatusResolved
		e.LastError = ""
	})
}

// Prune drops resolved entries and returns how many were removed.
func (l *Ledger) Prune() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.entries)
	l.entries = slices.DeleteFunc(l.entries, func(e Entry) bool {
		return e.Status == StatusResolved
	})
	removed := before - len(l.entries)
	if removed == 0 {
		return 0, nil
	}
	return removed, l.save()
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}

func (l *Ledger) openIndex(p submit.Partial) int {
	if p.Key == "" {
		return -1
	}
	return slices.IndexFunc(l.entries, func(e Entry) bool {
		return e.Status == StatusPending &&
			e.Kind == p.Kind &&
			e.EntityID == p.EntityID &&
			e.Key == p.Key
	})
}

// save writes a temp file and renames it over the ledger.
func (l *Ledger) save() error {
	if l.path == "" {
		return nil
	}

	raw, err := yaml.Marshal(ledgerFile{Entries: l.entries})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode ledger").
			WithTextCode(ErrCodeLedgerWrite)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create ledger dir "+dir).
			WithTextCode(ErrCodeLedgerWrite)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write ledger "+l.path).
			WithTextCode(ErrCodeLedgerWrite)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CategoryInternal, "write ledger "+l.path).
			WithTextCode(ErrCodeLedgerWrite)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write ledger "+l.path).
			WithTextCode(ErrCodeLedgerWrite)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "replace ledger "+l.path).
			WithTextCode(ErrCodeLedgerWrite)
	}
	return nil
}

func entryNotFound(id string) error {
	return errors.New(fmt.Sprintf("ledger entry %s not found", id), errors.CategoryNotFound).
		WithTextCode(ErrCodeEntryNotFound).
		WithMetadata(map[string]any{"entry_id": id})
}
