package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CrestNiraj12/clipflow/domain"
)

// UIState is what the client remembers between sessions.
type UIState struct {
	Mode   string `json:"mode,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Muted  *bool  `json:"muted,omitempty"`
	Volume *int   `json:"volume,omitempty"`
}

// Audio returns the persisted preference, defaulting to muted at volume 80.
func (s UIState) Audio() domain.AudioPreference {
	a := domain.DefaultAudio()
	if s.Volume != nil {
		a.Volume = *s.Volume
	}
	if s.Muted != nil {
		a.Muted = *s.Muted
	}
	return a.Normalize()
}

// WithAudio stores a preference.
func (s UIState) WithAudio(a domain.AudioPreference) UIState {
	a = a.Normalize()
	s.Muted = &a.Muted
	s.Volume = &a.Volume
	return s
}

// LoadUIState reads the state file. A missing file is an empty state.
func LoadUIState(path string) (UIState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return UIState{}, nil
	}
	if err != nil {
		return UIState{}, fmt.Errorf("reading ui state: %w", err)
	}
	var st UIState
	if err := json.Unmarshal(data, &st); err != nil {
		return UIState{}, fmt.Errorf("parsing ui state: %w", err)
	}
	return st, nil
}

// SaveUIState writes the state file atomically.
func SaveUIState(path string, st UIState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ui state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing ui state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing ui state: %w", err)
	}
	return nil
}
