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

// Package state keeps the .patchrc.lock file: what was patched, by which
// rules, and how to get the original text back.
package state

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// SchemaVersion is written to every lock file
const SchemaVersion = "1.0.0"

var (
	// ErrNotTracked is returned when the lock file has no entry for a path
	ErrNotTracked = errors.Base("file is not tracked in the lock file")

	// ErrDrifted is returned when a file changed since it was patched
	ErrDrifted = errors.Base("file changed since it was patched")
)

// 📦 File is the on-disk lock file layout
type File struct {
	SchemaVersion string      `json:"schema_version"`
	LastUpdated   time.Time   `json:"last_updated"`
	ConfigHash    string      `json:"config_hash"`
	Files         []FileState `json:"files"`
}

// 📄 FileState records one patched file
type FileState struct {
	Path     string   `json:"path"`
	RuleSets []string `json:"rulesets"`

	// OriginalHash is the checksum of the text before the first patch
	OriginalHash string `json:"original_hash"`
	// PatchedHash is the checksum of the text as last written
	PatchedHash string `json:"patched_hash"`

	// Rules that changed the text, across every run since the first patch
	Rules []string `json:"rules"`

	// ReverseDelta turns the patched text back into the original
	ReverseDelta string `json:"reverse_delta"`

	LastUpdated time.Time `json:"last_updated"`
}

// 🔒 State is a loaded lock file. Safe for concurrent use.
type State struct {
	path string
	fm   status.FileManager

	mu   sync.RWMutex
	file File
}

// 🏭 New creates an empty state backed by path
func New(fm status.FileManager, path string) *State {
	return &State{
		path: path,
		fm:   fm,
		file: File{SchemaVersion: SchemaVersion},
	}
}

// Path returns the lock file path
func (s *State) Path() string { return s.path }

// Load reads the lock file. A missing lock file leaves the state empty.
func (s *State) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", s.path).Msg("loading state")

	exists, err := s.fm.FileExists(ctx, s.path)
	if err != nil {
		return errors.Errorf("checking lock file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !exists {
		s.file = File{SchemaVersion: SchemaVersion}
		return nil
	}

	data, err := s.fm.ReadFile(ctx, s.path)
	if err != nil {
		return errors.Errorf("reading lock file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Errorf("parsing lock file %s: %w", s.path, err)
	}
	if f.SchemaVersion != SchemaVersion {
		return errors.Errorf("lock file %s has schema version %q, want %q", s.path, f.SchemaVersion, SchemaVersion)
	}

	s.file = f
	logger.Debug().Int("files", len(f.Files)).Msg("state loaded")
	return nil
}

// Save writes the lock file atomically. An empty state removes it.
func (s *State) Save(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.file.Files) == 0 {
		exists, err := s.fm.FileExists(ctx, s.path)
		if err != nil {
			return errors.Errorf("checking lock file: %w", err)
		}
		if exists {
			logger.Debug().Str("path", s.path).Msg("removing empty lock file")
			return s.fm.DeleteFile(ctx, s.path)
		}
		return nil
	}

	sort.Slice(s.file.Files, func(i, j int) bool { return s.file.Files[i].Path < s.file.Files[j].Path })
	s.file.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.file, "", "\t")
	if err != nil {
		return errors.Errorf("marshaling state: %w", err)
	}

	if err := s.fm.WriteFileAtomic(ctx, s.path, append(data, '\n')); err != nil {
		return errors.Errorf("writing lock file: %w", err)
	}

	logger.Debug().Str("path", s.path).Int("files", len(s.file.Files)).Msg("state written")
	return nil
}

// ConfigHash returns the config hash recorded by the last save
func (s *State) ConfigHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.ConfigHash
}

// SetConfigHash records the hash of the config used for this run
func (s *State) SetConfigHash(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.ConfigHash = hash
}

// ConfigChanged reports whether hash differs from the recorded one. A state
// that never recorded a hash has not changed.
func (s *State) ConfigChanged(hash string) bool {
	recorded := s.ConfigHash()
	return recorded != "" && recorded != hash
}

// Files returns a copy of every entry sorted by path
func (s *State) Files() []FileState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FileState, len(s.file.Files))
	copy(out, s.file.Files)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Get returns the entry for path
func (s *State) Get(path string) (FileState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(path); i >= 0 {
		return s.file.Files[i], true
	}
	return FileState{}, false
}

func (s *State) index(path string) int {
	for i, f := range s.file.Files {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// Remove drops the entry for path
func (s *State) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(path); i >= 0 {
		s.file.Files = append(s.file.Files[:i], s.file.Files[i+1:]...)
	}
}

// 📝 Record stores that before was patched into after. When the file was
// already patched and has not drifted since, the entry keeps pointing at the
// text from before the first patch, so a restore undoes every run.
func (s *State) Record(ctx context.Context, path string, rulesets []string, before, after string, fired []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	original := before
	entry := FileState{
		Path:         path,
		RuleSets:     rulesets,
		OriginalHash: status.Checksum([]byte(before)),
	}

	if i := s.index(path); i >= 0 {
		prev := s.file.Files[i]
		if prev.PatchedHash == status.Checksum([]byte(before)) {
			first, err := text.ApplyDelta(before, prev.ReverseDelta)
			if err != nil {
				return errors.Errorf("rebuilding original of %s: %w", path, err)
			}
			original = first
			entry.OriginalHash = prev.OriginalHash
			entry.Rules = append(entry.Rules, prev.Rules...)
			entry.RuleSets = mergeNames(prev.RuleSets, rulesets)
		} else {
			zerolog.Ctx(ctx).Warn().Str("path", path).Msg("file changed since it was last patched, starting a new history")
		}
		s.file.Files = append(s.file.Files[:i], s.file.Files[i+1:]...)
	}

	entry.Rules = append(entry.Rules, fired...)
	entry.PatchedHash = status.Checksum([]byte(after))
	entry.ReverseDelta = text.Delta(after, original)
	entry.LastUpdated = time.Now().UTC()

	s.file.Files = append(s.file.Files, entry)
	return nil
}

// ⏪ Original rebuilds the pre-patch text of path from its current text.
// It fails when current is not the text the lock file recorded.
func (s *State) Original(path, current string) (string, error) {
	entry, ok := s.Get(path)
	if !ok {
		return "", errors.Errorf("%w: %s", ErrNotTracked, path)
	}

	if status.Checksum([]byte(current)) != entry.PatchedHash {
		return "", errors.Errorf("%w: %s", ErrDrifted, path)
	}

	original, err := text.ApplyDelta(current, entry.ReverseDelta)
	if err != nil {
		return "", errors.Errorf("rebuilding original of %s: %w", path, err)
	}

	if status.Checksum([]byte(original)) != entry.OriginalHash {
		return "", errors.Errorf("rebuilt original of %s does not match its recorded hash", path)
	}
	return original, nil
}

// Drifted reports whether current differs from what the lock file recorded
// for path. Untracked files never drift.
func (s *State) Drifted(path, current string) bool {
	entry, ok := s.Get(path)
	if !ok {
		return false
	}
	return status.Checksum([]byte(current)) != entry.PatchedHash
}

func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, n := range append(append([]string(nil), a...), b...) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
