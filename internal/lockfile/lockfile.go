package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// TimeFormat is the ISO-8601 UTC layout of updatedAtUtc.
const TimeFormat = "2006-01-02T15:04:05Z"

// Entry pins one module to a commit.
type Entry struct {
	Name           string `json:"name"`
	Repo           string `json:"repo"`
	TargetDir      string `json:"targetDir"`
	LocalPath      string `json:"localPath"`
	ResolvedCommit string `json:"resolvedCommit"`
	UpdatedAtUTC   string `json:"updatedAtUtc"`
}

// SameState reports whether e and o pin the same thing, ignoring the timestamp.
func (e Entry) SameState(o Entry) bool {
	return e.Name == o.Name &&
		e.Repo == o.Repo &&
		e.TargetDir == o.TargetDir &&
		e.LocalPath == o.LocalPath &&
		e.ResolvedCommit == o.ResolvedCommit
}

// Document is the whole lockfile.
type Document struct {
	Modules []Entry `json:"modules"`
}

// Find returns the first entry named name.
func (d *Document) Find(name string) (Entry, bool) {
	for _, e := range d.Modules {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the entry names in document order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Modules))
	for _, e := range d.Modules {
		names = append(names, e.Name)
	}
	return names
}

// Upsert returns a copy of doc where the first entry named e.Name is replaced
// by e, or e is appended if there is none. UpdatedAtUTC is set from now.
// Duplicate names are left as they are.
func Upsert(doc *Document, e Entry, now time.Time) *Document {
	e.UpdatedAtUTC = now.UTC().Format(TimeFormat)
	out := &Document{Modules: slices.Clone(doc.Modules)}
	for i := range out.Modules {
		if out.Modules[i].Name == e.Name {
			out.Modules[i] = e
			return out
		}
	}
	out.Modules = append(out.Modules, e)
	return out
}

// Remove returns a copy of doc without entries named name.
// Removing an unknown name is a no-op.
func Remove(doc *Document, name string) *Document {
	out := &Document{Modules: make([]Entry, 0, len(doc.Modules))}
	for _, e := range doc.Modules {
		if e.Name != name {
			out.Modules = append(out.Modules, e)
		}
	}
	return out
}

// Load reads the lockfile at path.
// Returns an empty document if the file doesn't exist.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{Modules: []Entry{}}, nil
		}
		return nil, fmt.Errorf("read lockfile: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lockfile %s: %w", path, err)
	}
	if doc.Modules == nil {
		doc.Modules = []Entry{}
	}
	return &doc, nil
}

// Save writes doc to path atomically.
func Save(path string, doc *Document) error {
	if doc.Modules == nil {
		doc = &Document{Modules: []Entry{}}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lockfile: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create lockfile directory: %w", err)
	}

	// Write to temp file first for atomic operation
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write lockfile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save lockfile: %w", err)
	}
	return nil
}

// Store is a lockfile held under an exclusive process lock.
type Store struct {
	path string
	lock *FileLock
}

// Open locks the lockfile at path and loads it.
// Caller must Close the store if err == nil.
func Open(path string) (*Store, *Document, error) {
	lock := NewFileLock(path + ".lock")
	if err := lock.TryLock(); err != nil {
		return nil, nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	doc, err := Load(path)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return &Store{path: path, lock: lock}, doc, nil
}

// Path returns the lockfile path.
func (s *Store) Path() string {
	return s.path
}

// Save persists doc in full.
func (s *Store) Save(doc *Document) error {
	return Save(s.path, doc)
}

// Close releases the process lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}
