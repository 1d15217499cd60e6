// Package prefs persists the terminal client's display preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

type Preferences struct {
	VisibleColumns []string `json:"visible_columns,omitempty"`
	Server         string   `json:"server,omitempty"`
}

type Manager interface {
	Load() (Preferences, error)
	Save(p Preferences) error
	Path() string
}

type fileManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &fileManager{
		filePath: filePath,
	}
}

// DefaultPath is ~/.config/logsearch/prefs.json, or a file in the working
// directory when no config dir is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "logsearch-prefs.json"
	}
	return filepath.Join(dir, "logsearch", "prefs.json")
}

// Load returns zero preferences when the file does not exist yet.
func (m *fileManager) Load() (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var p Preferences
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("file", m.filePath).Msg("Preferences file not found, using defaults.")
			return p, nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read preferences file")
		return p, err
	}
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal preferences file")
		return Preferences{}, err
	}
	return p, nil
}

// Save writes through a temporary file and rename so a crash never leaves a
// half-written file.
func (m *fileManager) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal preferences")
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.filePath), 0o755); err != nil {
		return err
	}
	tempFilePath := m.filePath + ".tmp"
	err = os.WriteFile(tempFilePath, data, 0o644)
	if err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary preferences file")
		return err
	}

	err = os.Rename(tempFilePath, m.filePath)
	if err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename preferences file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Msg("Saved preferences")
	return nil
}

func (m *fileManager) Path() string {
	return m.filePath
}
