package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const (
	dirName  = ".pm"
	fileName = "config.json"
)

// DefaultPath returns ~/.pm/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, dirName, fileName), nil
}

// Service loads and stores preferences in a JSON file.
type Service struct {
	path string

	mu sync.Mutex

	logger *zap.Logger
}

func NewService(config Config, logger *zap.Logger) (*Service, error) {
	path := config.Path
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	return &Service{
		path:   path,
		logger: logger,
	}, nil
}

// Path is the location of the preferences file.
func (s *Service) Path() string {
	return s.path
}

// Get returns the stored preferences. A missing file is created with the
// defaults; an unreadable one is replaced by them.
func (s *Service) Get(_ context.Context) (*Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("preferences file not found, writing defaults", zap.String("path", s.path))
		return s.reset()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, s.path, err)
	}

	prefs := Default()
	if unmarshalErr := json.Unmarshal(data, &prefs); unmarshalErr != nil {
		s.logger.Warn("preferences file is invalid, restoring defaults",
			zap.String("path", s.path),
			zap.Error(unmarshalErr))
		return s.reset()
	}

	return &prefs, nil
}

// Save replaces the stored preferences.
func (s *Service) Save(_ context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefs.Editor.DefaultEditor == "" {
		prefs.Editor.DefaultEditor = DefaultEditor
	}

	if err := s.write(prefs); err != nil {
		s.logger.Error("failed to save preferences", zap.String("path", s.path), zap.Error(err))
		return err
	}

	s.logger.Info("preferences saved", zap.String("path", s.path))

	return nil
}

func (s *Service) reset() (*Preferences, error) {
	prefs := Default()
	if err := s.write(prefs); err != nil {
		return nil, err
	}

	return &prefs, nil
}

func (s *Service) write(prefs Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o755); mkErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, s.path, mkErr)
	}

	if wrErr := os.WriteFile(s.path, data, 0o600); wrErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, s.path, wrErr)
	}

	return nil
}
