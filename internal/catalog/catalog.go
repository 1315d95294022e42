package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"usecasesync/internal/fileutil"
	"usecasesync/internal/ident"
	"usecasesync/internal/records"
	"usecasesync/internal/registry"
)

// BackupSuffix is appended to the catalog path for the one-time backup copy.
const BackupSuffix = ".backup"

// TimestampLayout formats Metadata.LastUpdated.
const TimestampLayout = "2006-01-02 15:04:05"

// Metadata describes the run that produced a catalog.
type Metadata struct {
	LastUpdated   string   `json:"lastUpdated"`
	TotalUseCases int      `json:"totalUseCases"`
	TotalIDs      uint64   `json:"totalIds"`
	RetiredIDs    []uint64 `json:"retiredIds"`
	// DeletedIDs is the legacy name for RetiredIDs. Read only.
	DeletedIDs []uint64 `json:"deletedIds,omitempty"`
	Version    string   `json:"version"`
	Source     string   `json:"source"`
	Mode       string   `json:"mode,omitempty"`
	RunID      string   `json:"runId,omitempty"`
}

// Document is the full catalog file.
type Document struct {
	UseCases []records.UseCase `json:"useCases"`
	Metadata *Metadata         `json:"metadata,omitempty"`
}

// Load reads the catalog at path. A missing or empty file yields an empty
// document and exists=false.
func Load(path string) (*Document, bool, error) {
	data, ok, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, false, fmt.Errorf("read catalog: %w", err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return &Document{}, false, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, true, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &doc, true, nil
}

// Bindings returns the (title, id) pairs of the catalog's use cases in file
// order. Entries without a title or a valid ID are skipped.
func (d *Document) Bindings() []registry.Binding {
	out := make([]registry.Binding, 0, len(d.UseCases))
	for _, uc := range d.UseCases {
		if uc.Title == "" || !uc.ID.Valid() {
			continue
		}
		out = append(out, registry.Binding{Title: uc.Title, ID: uc.ID})
	}
	return out
}

// IDs returns every valid use-case ID in the catalog.
func (d *Document) IDs() ident.Set {
	set := make(ident.Set, len(d.UseCases))
	for _, uc := range d.UseCases {
		set.Add(uc.ID)
	}
	return set
}

// RetiredIDs merges the current and legacy retired lists.
func (d *Document) RetiredIDs() []ident.ID {
	if d.Metadata == nil {
		return nil
	}
	set := make(ident.Set)
	for _, id := range d.Metadata.RetiredIDs {
		set.Add(ident.ID(id))
	}
	for _, id := range d.Metadata.DeletedIDs {
		set.Add(ident.ID(id))
	}
	return set.Sorted()
}

// TotalIDs returns the recorded allocation counter, or 0 when unknown.
func (d *Document) TotalIDs() uint64 {
	if d.Metadata == nil {
		return 0
	}
	return d.Metadata.TotalIDs
}

// NewMetadata fills the counters from the written use cases.
func NewMetadata(useCases []records.UseCase, totalIDs uint64, retired []ident.ID, now time.Time) *Metadata {
	ids := make([]uint64, 0, len(retired))
	for _, id := range retired {
		ids = append(ids, uint64(id))
	}
	return &Metadata{
		LastUpdated:   now.Format(TimestampLayout),
		TotalUseCases: len(useCases),
		TotalIDs:      totalIDs,
		RetiredIDs:    ids,
	}
}

// Encode renders doc with two-space indentation and without HTML escaping,
// so prompts containing <, > or & stay readable.
func Encode(doc *Document) ([]byte, error) {
	if doc.UseCases == nil {
		doc.UseCases = []records.UseCase{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Write replaces the catalog at path atomically.
func Write(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Backup copies the catalog to path+BackupSuffix unless a backup already
// exists or there is no catalog yet. It reports whether a copy was made.
func Backup(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat catalog: %w", err)
	}
	backupPath := path + BackupSuffix
	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat catalog backup: %w", err)
	}
	if err := fileutil.CopyFileVerified(path, backupPath); err != nil {
		return false, fmt.Errorf("backup catalog: %w", err)
	}
	return true, nil
}

// Snapshot holds the raw bytes of a file so it can be restored after a
// failed multi-file update.
type Snapshot struct {
	path   string
	data   []byte
	exists bool
}

// TakeSnapshot captures the current contents of path.
func TakeSnapshot(path string) (*Snapshot, error) {
	data, ok, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &Snapshot{path: path, data: data, exists: ok}, nil
}

// Restore puts the captured contents back, removing the file if it did not
// exist when the snapshot was taken.
func (s *Snapshot) Restore() error {
	if !s.exists {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", s.path, err)
		}
		return nil
	}
	if err := fileutil.WriteFileAtomic(s.path, s.data, 0o644); err != nil {
		return fmt.Errorf("restore %s: %w", s.path, err)
	}
	return nil
}
