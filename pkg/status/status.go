// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a file's path to name its backup
const BackupSuffix = ".bak"

// ErrNoBackup is returned by RestoreFile when there is nothing to restore
var ErrNoBackup = errors.Base("backup file does not exist")

// 📊 FileStatus represents what a run did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusPatched              // Rules changed the file and it was written
	StatusPending              // Rules would change the file (dry run or check)
	StatusUnchanged            // Rules left the text as it was
	StatusRestored             // Pre-patch text was put back
	StatusFailed               // A rule or the write failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusPatched:
		return "patched"
	case StatusPending:
		return "pending"
	case StatusUnchanged:
		return "unchanged"
	case StatusRestored:
		return "restored"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a file
type FileInfo struct {
	Path     string      // Path relative to the base directory
	Status   FileStatus  // Current status
	Size     int64       // Size of the final text in bytes
	Mode     os.FileMode // File permissions
	Checksum string      // Content hash of the final text
	Rules    []string    // Rules that changed the text
	Error    error       // Any error associated with this file
}

// 💾 FileManager handles all file system operations
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	DeleteFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)

	// WriteFileAtomic replaces the file as a whole or not at all
	WriteFileAtomic(ctx context.Context, path string, content []byte) error

	BackupFile(ctx context.Context, path string) error
	RestoreFile(ctx context.Context, path string) error
}

// 📈 StatusReporter tracks file status and reports progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	Advance(ctx context.Context)
	FinishOperation(ctx context.Context)
}

var (
	_ FileManager    = (*Manager)(nil)
	_ StatusReporter = (*Manager)(nil)
)

// 🔧 Manager implements both FileManager and StatusReporter
type Manager struct {
	baseDir   string          // Base directory for relative paths
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// SetFormatter replaces the formatter used for status messages
func (m *Manager) SetFormatter(f FileFormatter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formatter = f
}

// BaseDir returns the directory relative paths are resolved against
func (m *Manager) BaseDir() string { return m.baseDir }

// 🔒 getAbsPath returns the absolute path for a given path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// FileManager interface implementation

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic writes content to a temp file next to path and renames it
// over path. The existing file mode is kept.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	mode := os.FileMode(0644)
	if fi, err := os.Stat(absPath); err == nil {
		mode = fi.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tempPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	m.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}

func (m *Manager) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(m.getAbsPath(path)); err != nil {
		return errors.Errorf("deleting file: %w", err)
	}
	return nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.getAbsPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// BackupFile copies path to path+".bak". A missing file is not an error.
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + BackupSuffix

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	if err := copyFile(absPath, backupPath); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	m.logger.Debug().Str("path", path).Str("backup", backupPath).Msg("backup created")
	return nil
}

// RestoreFile puts the backup back in place and removes it
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + BackupSuffix

	content, err := os.ReadFile(backupPath)
	if os.IsNotExist(err) {
		return errors.Errorf("%w: %s", ErrNoBackup, path)
	} else if err != nil {
		return errors.Errorf("reading backup: %w", err)
	}

	if err := m.WriteFileAtomic(ctx, path, content); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}

	return nil
}

// HasBackup reports whether path has a backup next to it
func (m *Manager) HasBackup(ctx context.Context, path string) (bool, error) {
	return m.FileExists(ctx, path+BackupSuffix)
}

// StatusReporter interface implementation

func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = path
	m.files[path] = info

	if info.Error != nil {
		m.logger.Error().Err(info.Error).Str("path", path).Msg(m.formatter.FormatError(info.Error))
		return
	}
	m.logger.Info().
		Str("path", path).
		Str("status", info.Status.String()).
		Int("rules", len(info.Rules)).
		Msg(m.formatter.FormatFileOperation(info))
}

func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked file sorted by path
func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Count returns how many tracked files have the given status
func (m *Manager) Count(s FileStatus) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, info := range m.files {
		if info.Status == s {
			n++
		}
	}
	return n
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

// Advance marks one more file as processed. Safe for concurrent use.
func (m *Manager) Advance(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed++
	m.logger.Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

// Progress returns processed and total counts
func (m *Manager) Progress() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

// Helper functions

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	fi, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source file mode: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return destination.Close()
}
