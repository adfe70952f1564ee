package universe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dmxsend/internal/logger"
)

const stateFileName = "dmx.state"

var (
	// ErrNoLocation is returned when neither an override path nor the user's
	// cache directory is available.
	ErrNoLocation = errors.New("state file can't be found")
	// ErrWrongLength is returned when the state file does not hold exactly Size bytes.
	ErrWrongLength = errors.New("state file is wrong length")
)

// Store persists a Universe as Size raw bytes, one per channel.
type Store struct {
	log      logger.Logger
	override string
	home     func() (string, error)
}

// NewStore конструктор. A non-empty override takes precedence over the default
// location beneath the user's cache directory.
func NewStore(log logger.Logger, override string) *Store {
	return &Store{
		log:      log,
		override: override,
		home:     os.UserHomeDir,
	}
}

// Path resolves the state file location.
func (s *Store) Path() (string, error) {
	if s.override != "" {
		return s.override, nil
	}
	home, err := s.home()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLocation, err)
	}
	cache := filepath.Join(home, ".cache")
	if info, err := os.Stat(cache); err != nil || !info.IsDir() {
		return "", ErrNoLocation
	}
	return filepath.Join(cache, stateFileName), nil
}

// Load reads the last persisted universe.
func (s *Store) Load() (Universe, error) {
	var u Universe
	path, err := s.Path()
	if err != nil {
		return u, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return u, fmt.Errorf("read state: %w", err)
	}
	if len(data) != Size {
		return u, fmt.Errorf("%w: %s has %d bytes", ErrWrongLength, path, len(data))
	}
	copy(u[:], data)
	s.log.With(logger.Fields{"module": "store"}).Debugf("state loaded from %s", path)
	return u, nil
}

// Save overwrites the state file with u.
func (s *Store) Save(u Universe) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, u.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	s.log.With(logger.Fields{"module": "store"}).Debugf("state saved to %s", path)
	return nil
}
