// internal/store/store.go

// Package store persists the multi-account configuration file with
// single-generation backup rotation and atomic writes.
//
// Save is not safe for concurrent invocation from multiple processes against
// the same path; single-writer usage is assumed.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNotFound means no configuration file exists at the store path.
	// Callers must distinguish this from an empty account list, which is a
	// valid persisted state.
	ErrNotFound = errors.New("configuration file not found")
	// ErrInvalid means the file exists but matches neither the multi-account
	// shape nor the legacy bare cookie array.
	ErrInvalid = errors.New("configuration file is not a recognized format")
)

// Store reads and writes the multi-account configuration file.
type Store struct {
	path       string
	backupPath string
	logger     *zap.Logger
}

// New creates a store for the given configuration and backup paths.
func New(path, backupPath string, logger *zap.Logger) *Store {
	return &Store{
		path:       path,
		backupPath: backupPath,
		logger:     logger.Named("store"),
	}
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return s.path
}

// Save persists the sessions. If a configuration file already exists its
// current bytes are copied verbatim to the backup path first (overwriting
// any prior backup), then the new envelope is written atomically via a
// temp file and rename. TotalAccounts is recomputed, never carried over.
func (s *Store) Save(sessions []schemas.Session) error {
	if err := s.backupExisting(); err != nil {
		return err
	}

	envelope := schemas.AccountsFile{
		Accounts:              sessions,
		DetectedAutomatically: true,
		LastDetection:         time.Now().UTC(),
		TotalAccounts:         len(sessions),
	}

	data, err := json.MarshalIndent(&envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	s.logger.Info("Configuration saved.",
		zap.String("path", s.path),
		zap.Int("accounts", len(sessions)),
	)
	return nil
}

// Load parses the configuration file. A multi-account envelope is returned
// as-is (with TotalAccounts recomputed); a legacy bare cookie array is
// wrapped into a single synthesized account. Anything else is ErrInvalid,
// and a missing file is ErrNotFound.
func (s *Store) Load() (*schemas.AccountsFile, error) {
	return LoadFile(s.path, s.logger)
}

// LoadFile parses an arbitrary credential file with the same shape handling
// as Store.Load. The discovery strategy that scans on-disk cookie files uses
// it directly.
func LoadFile(path string, logger *zap.Logger) (*schemas.AccountsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var envelope schemas.AccountsFile
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Accounts != nil {
		envelope.TotalAccounts = len(envelope.Accounts)
		return &envelope, nil
	}

	// Legacy format: a bare array of cookies, no envelope.
	var cookies []schemas.Cookie
	if err := json.Unmarshal(data, &cookies); err == nil {
		logger.Info("Legacy cookie file detected; synthesizing single account.",
			zap.String("path", path))
		account := schemas.NewCandidateSession(cookies)
		return &schemas.AccountsFile{
			Accounts:      []schemas.Session{account},
			LastDetection: account.ExtractedAt,
			TotalAccounts: 1,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalid, path)
}

// backupExisting copies the current file bytes to the backup path. Only one
// generation is retained: each save preserves the immediately prior version.
func (s *Store) backupExisting() error {
	current, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read existing configuration for backup: %w", err)
	}

	if err := os.WriteFile(s.backupPath, current, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	s.logger.Debug("Backup written.", zap.String("path", s.backupPath))
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place so a concurrent reader never observes a partial write.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
