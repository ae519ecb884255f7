package core

import (
	"fmt"
	"sync"

	"github.com/JonMunkholm/sweeper/internal/table"
)

// FileInfo describes one loaded file for listings.
type FileInfo struct {
	Name     string  `json:"name"`
	Format   string  `json:"format"`
	Encoding string  `json:"encoding,omitempty"`
	SizeKB   float64 `json:"size_kb"`
	Rows     int     `json:"rows"`
	Columns  int     `json:"columns"`
}

type workspaceEntry struct {
	table *table.Table
	info  IngestInfo
}

// Workspace maps file names to their latest table, in upload order.
//
// Writes replace the stored table wholesale; there is no undo. Tables handed
// out by Get must be treated as read-only: transformations return new tables
// which are stored with Put.
type Workspace struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*workspaceEntry
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{entries: make(map[string]*workspaceEntry)}
}

// Load ingests data under name the first time the name is seen. Later calls
// return the stored table without re-parsing; loaded reports which happened.
func (w *Workspace) Load(name string, data []byte) (t *table.Table, info IngestInfo, loaded bool, err error) {
	w.mu.RLock()
	if e, ok := w.entries[name]; ok {
		w.mu.RUnlock()
		return e.table, e.info, false, nil
	}
	w.mu.RUnlock()

	t, info, err = Ingest(name, data)
	if err != nil {
		return nil, info, false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entries[name]; ok {
		return e.table, e.info, false, nil
	}
	w.entries[name] = &workspaceEntry{table: t, info: info}
	w.order = append(w.order, name)
	return t, info, true, nil
}

// Get returns the current table for name.
func (w *Workspace) Get(name string) (*table.Table, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	return e.table, nil
}

// Put replaces the table stored for an already loaded name.
func (w *Workspace) Put(name string, t *table.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	e.table = t
	return nil
}

// Remove forgets a file. Removing an unknown name is an error.
func (w *Workspace) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	delete(w.entries, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset drops every file.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.order = nil
	w.entries = make(map[string]*workspaceEntry)
}

// Len returns the number of loaded files.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Names returns file names in upload order.
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Entries snapshots every file and its current table in upload order.
func (w *Workspace) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entry, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, Entry{Name: name, Table: w.entries[name].table})
	}
	return out
}

// Files lists loaded files in upload order.
func (w *Workspace) Files() []FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]FileInfo, 0, len(w.order))
	for _, name := range w.order {
		e := w.entries[name]
		out = append(out, FileInfo{
			Name:     name,
			Format:   e.info.Format,
			Encoding: e.info.Encoding,
			SizeKB:   roundKB(e.info.Size),
			Rows:     e.table.NumRows(),
			Columns:  e.table.NumColumns(),
		})
	}
	return out
}

// roundKB converts bytes to kilobytes rounded to two decimals.
func roundKB(size int) float64 {
	return float64(int64(float64(size)/1024*100+0.5)) / 100
}
