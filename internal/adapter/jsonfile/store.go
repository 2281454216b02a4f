// Package jsonfile implements the statestore port as three flat JSON
// documents on disk (events.json, patterns.json, insights.json). Every save
// rewrites the whole document through a temp-file rename so a crash mid-write
// never leaves a half-written collection behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

const (
	eventsFile   = "events.json"
	patternsFile = "patterns.json"
	insightsFile = "insights.json"
)

// Store implements statestore.Store on top of a directory of JSON files.
type Store struct {
	dir string
}

// NewStore creates a file-backed store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// LoadEvents reads the event log. Absent or corrupt files yield an empty log.
func (s *Store) LoadEvents(_ context.Context) ([]coordination.Event, error) {
	var events []coordination.Event
	if !s.load(eventsFile, &events) {
		return nil, nil
	}
	return events, nil
}

// SaveEvents rewrites the full event log.
func (s *Store) SaveEvents(_ context.Context, events []coordination.Event) error {
	if events == nil {
		events = []coordination.Event{}
	}
	return s.save(eventsFile, events)
}

// LoadPatterns reads the pattern map. Absent or corrupt files yield an empty map.
func (s *Store) LoadPatterns(_ context.Context) (map[string]coordination.Pattern, error) {
	patterns := make(map[string]coordination.Pattern)
	if !s.load(patternsFile, &patterns) {
		return map[string]coordination.Pattern{}, nil
	}
	return patterns, nil
}

// SavePatterns rewrites the full pattern map.
func (s *Store) SavePatterns(_ context.Context, patterns map[string]coordination.Pattern) error {
	if patterns == nil {
		patterns = map[string]coordination.Pattern{}
	}
	return s.save(patternsFile, patterns)
}

// LoadInsights reads the insight list. Absent or corrupt files yield an empty list.
func (s *Store) LoadInsights(_ context.Context) ([]coordination.Insight, error) {
	var insights []coordination.Insight
	if !s.load(insightsFile, &insights) {
		return nil, nil
	}
	return insights, nil
}

// SaveInsights rewrites the full insight list.
func (s *Store) SaveInsights(_ context.Context, insights []coordination.Insight) error {
	if insights == nil {
		insights = []coordination.Insight{}
	}
	return s.save(insightsFile, insights)
}

// load decodes the named document into v. Returns false when the file is
// absent or undecodable; a corrupt state file must not take the engine down,
// so it is logged and treated as a cold start.
func (s *Store) load(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("state file unreadable, starting empty", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("state file corrupt, starting empty", "file", name, "error", err)
		return false
	}
	return true
}

// save writes v to a temp file in the same directory and renames it over the
// named document.
func (s *Store) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
