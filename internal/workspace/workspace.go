package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/odata4gen/internal/logfields"
)

// Manager handles the scratch directory of a generation run (both temporary and persistent).
type Manager struct {
	baseDir    string
	tempDir    string
	persistent bool // If true, use baseDir/subdir directly and keep it after Cleanup
}

// NewManager creates a new workspace manager with ephemeral directories.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{
		baseDir:    baseDir,
		persistent: false,
	}
}

// NewPersistentManager creates a workspace manager that uses a persistent directory.
// The workspace directory is fixed (baseDir/subdirName) and not cleaned up on Cleanup().
func NewPersistentManager(baseDir, subdirName string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if subdirName == "" {
		subdirName = "work"
	}
	return &Manager{
		baseDir:    baseDir,
		tempDir:    filepath.Join(baseDir, subdirName),
		persistent: true,
	}
}

// Create creates the workspace directory.
// For ephemeral mode: creates a uniquely named directory
// For persistent mode: ensures the fixed directory exists
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.tempDir, 0o750); err != nil {
			return fmt.Errorf("failed to create persistent workspace directory: %w", err)
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.tempDir))
		return nil
	}

	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	tempDir, err := os.MkdirTemp(m.baseDir, "odata4gen-")
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the path to the workspace directory.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Cleanup removes the workspace directory.
// For persistent mode: does nothing (keeps the normalized metadata for inspection)
// For ephemeral mode: removes the directory
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}

	if m.persistent {
		slog.Debug("Skipping cleanup for persistent workspace", logfields.Path(m.tempDir))
		return nil
	}

	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}

	slog.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}

// CreateFile creates a file inside the workspace. The pattern follows
// os.CreateTemp. A persistent workspace drops the random part of the
// pattern and truncates the file, so repeated runs reuse one file.
func (m *Manager) CreateFile(pattern string) (*os.File, error) {
	if m.tempDir == "" {
		return nil, fmt.Errorf("workspace not created")
	}
	if m.persistent {
		if err := os.MkdirAll(m.tempDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create persistent workspace directory: %w", err)
		}
		path := filepath.Join(m.tempDir, fixedName(pattern))
		// #nosec G304 -- path is inside the workspace directory
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to create workspace file: %w", err)
		}
		return f, nil
	}

	f, err := os.CreateTemp(m.tempDir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace file: %w", err)
	}
	return f, nil
}

// fixedName turns "metadata-*.xml" into "metadata.xml".
func fixedName(pattern string) string {
	prefix, suffix, ok := strings.Cut(pattern, "*")
	if !ok {
		return pattern
	}
	prefix = strings.TrimRight(prefix, "-_.")
	if prefix == "" {
		prefix = "workspace"
	}
	return prefix + suffix
}
