// Package grantstore persists grant configurations to a YAML file.
package grantstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
	"github.com/reglet-dev/runguard/infrastructure/parser"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# Grants saved by runguard. Load with --grants.\n"

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path      string               // Path to the grants file
	dirPerm   os.FileMode          // Permission for created directories
	filePerm  os.FileMode          // Permission for the grants file
	parser    ports.GrantParser    // Decodes the file
	validator ports.GrantValidator // Optional schema check before decoding
}

func defaultFileStoreConfig() fileStoreConfig {
	home, _ := os.UserHomeDir()
	return fileStoreConfig{
		path:     filepath.Join(home, ".runguard", "grants.yaml"),
		dirPerm:  0o755, // User config directory
		filePerm: 0o600, // User-only read/write (secure default)
		parser:   parser.NewYamlGrantParser(),
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the grants file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.path = path
	}
}

// WithFilePermissions sets the file permissions for the grants file.
// Default is 0o600 (user-only). Use with caution.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the grants directory.
// Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// WithValidator validates the raw file before it is decoded.
func WithValidator(v ports.GrantValidator) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.validator = v
	}
}

// FileStore provides file-based persistence for capability grants.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) ports.GrantStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves all granted capabilities.
func (s *FileStore) Load() (*entities.GrantConfig, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return &entities.GrantConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read grant store: %w", err)
	}

	if s.config.validator != nil {
		if err := s.config.validator.Validate(data); err != nil {
			return nil, fmt.Errorf("invalid grant store %s: %w", s.config.path, err)
		}
	}

	grants, err := s.config.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse grant store: %w", err)
	}
	return grants, nil
}

// Save persists the granted capabilities. The file is replaced atomically.
func (s *FileStore) Save(grants *entities.GrantConfig) error {
	data, err := yaml.Marshal(grants)
	if err != nil {
		return fmt.Errorf("failed to marshal grants: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create grant store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".grants-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.WriteString(fileHeader)
	if err == nil {
		_, err = tmp.Write(data)
	}
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	if err := tmp.Chmod(s.config.filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.config.path); err != nil {
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
