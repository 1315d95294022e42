package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"usecasesync/internal/fileutil"
	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
)

// fileFormat is the on-disk layout of the JSON registry. IDs are plain
// integers; deleted_ids is the legacy name for retired_ids and is folded in
// on load.
type fileFormat struct {
	NextID     uint64            `json:"next_id"`
	TitleToID  map[string]uint64 `json:"title_to_id"`
	RetiredIDs []uint64          `json:"retired_ids"`
	DeletedIDs []uint64          `json:"deleted_ids,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

// JSONStore persists the registry as an indented JSON file.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

// NewJSONStore creates a store for path. The file is created on first Save.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "registry"),
	}
}

// Path returns the registry file location.
func (s *JSONStore) Path() string { return s.path }

// Close is a no-op; the file is only open during Load and Save.
func (s *JSONStore) Close() error { return nil }

// Load reads the registry file. Absent or empty files yield a fresh registry.
// A file that exists but cannot be parsed is an error: starting over would
// hand out identifiers that are already published.
func (s *JSONStore) Load(_ context.Context) (*Registry, bool, error) {
	data, ok, err := fileutil.ReadFileIfExists(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("read registry file: %w", err)
	}
	if !ok || len(strings.TrimSpace(string(data))) == 0 {
		s.logger.Debug("registry file absent; starting fresh",
			logging.String("path", s.path))
		return New(), false, nil
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, true, fmt.Errorf("parse registry file %s: %w", s.path, err)
	}

	mapping := make(map[string]ident.ID, len(file.TitleToID))
	for title, id := range file.TitleToID {
		mapping[title] = ident.ID(id)
	}
	retired := make([]ident.ID, 0, len(file.RetiredIDs)+len(file.DeletedIDs))
	for _, id := range file.RetiredIDs {
		retired = append(retired, ident.ID(id))
	}
	for _, id := range file.DeletedIDs {
		retired = append(retired, ident.ID(id))
	}

	reg, err := Restore(mapping, ident.ID(file.NextID), retired, file.Notes)
	if err != nil {
		return nil, true, fmt.Errorf("restore registry %s: %w", s.path, err)
	}

	s.logger.Debug("loaded registry",
		logging.Int("title_count", reg.Len()),
		logging.String("next_id", reg.NextID().String()),
		logging.Int("retired_count", len(reg.Retired())),
		logging.String("path", s.path))
	return reg, true, nil
}

// Save writes the registry atomically. Retired IDs are sorted and
// deduplicated on every save.
func (s *JSONStore) Save(_ context.Context, reg *Registry) error {
	if reg == nil {
		return fmt.Errorf("save registry: nil registry")
	}
	data, err := encodeJSON(reg)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist registry: %w", err)
	}
	s.logger.Debug("saved registry",
		logging.Int("title_count", reg.Len()),
		logging.String("next_id", reg.NextID().String()),
		logging.String("path", s.path))
	return nil
}

func encodeJSON(reg *Registry) ([]byte, error) {
	file := fileFormat{
		NextID:     uint64(reg.NextID()),
		TitleToID:  make(map[string]uint64, reg.Len()),
		RetiredIDs: []uint64{},
		Notes:      reg.Notes(),
	}
	for _, b := range reg.Entries() {
		file.TitleToID[b.Title] = uint64(b.ID)
	}
	for _, id := range reg.Retired() {
		file.RetiredIDs = append(file.RetiredIDs, uint64(id))
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal registry: %w", err)
	}
	return append(data, '\n'), nil
}
