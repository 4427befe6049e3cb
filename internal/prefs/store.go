// Package prefs persists the display settings zcommands toggle
package prefs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the display settings of one chat or user
type Settings struct {
	NightMode  bool `yaml:"night_mode"`
	FluidWidth bool `yaml:"fluid_width"`
}

// entry is one persisted row
type entry struct {
	Key       string    `yaml:"key"`
	Settings  Settings  `yaml:",inline"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// file is the on-disk layout
type file struct {
	Settings []entry `yaml:"settings"`
}

// Store holds settings by key (a chat id or a user email) and saves them to
// a YAML file. An empty path keeps everything in memory.
type Store struct {
	path    string
	entries map[string]entry
	mu      sync.RWMutex
	saveMu  sync.Mutex
	saves   sync.WaitGroup
	logger  *slog.Logger
}

// NewStore creates a store backed by path
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:    path,
		entries: make(map[string]entry),
		logger:  logger,
	}
}

// Load reads settings from disk. A missing file is not an error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading settings file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing settings file: %w", err)
	}

	s.entries = make(map[string]entry, len(f.Settings))
	for _, e := range f.Settings {
		s.entries[e.Key] = e
	}
	return nil
}

// Save writes settings to disk
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	f := file{Settings: make([]entry, 0, len(s.entries))}
	for _, e := range s.entries {
		f.Settings = append(f.Settings, e)
	}
	s.mu.RUnlock()

	sort.Slice(f.Settings, func(i, j int) bool {
		return f.Settings[i].Key < f.Settings[j].Key
	})

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// Get returns the settings for key, zero-valued if none are stored
func (s *Store) Get(key string) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key].Settings
}

// SetNightMode stores the theme for key and reports whether it changed
func (s *Store) SetNightMode(key string, on bool) bool {
	return s.update(key, func(st *Settings) bool {
		changed := st.NightMode != on
		st.NightMode = on
		return changed
	})
}

// SetFluidWidth stores the layout for key and reports whether it changed
func (s *Store) SetFluidWidth(key string, on bool) bool {
	return s.update(key, func(st *Settings) bool {
		changed := st.FluidWidth != on
		st.FluidWidth = on
		return changed
	})
}

// Wait blocks until background saves have finished
func (s *Store) Wait() {
	s.saves.Wait()
}

// All returns a copy of every stored setting
func (s *Store) All() map[string]Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Settings, len(s.entries))
	for k, e := range s.entries {
		out[k] = e.Settings
	}
	return out
}

func (s *Store) update(key string, fn func(st *Settings) bool) bool {
	s.mu.Lock()
	e := s.entries[key]
	e.Key = key
	changed := fn(&e.Settings)
	if changed {
		e.UpdatedAt = time.Now()
	}
	s.entries[key] = e
	s.mu.Unlock()

	if changed && s.path != "" {
		// Save in background (don't block)
		s.saves.Add(1)
		go func() {
			defer s.saves.Done()
			if err := s.Save(); err != nil {
				s.logger.Warn("failed to save settings", "error", err)
			}
		}()
	}
	return changed
}
