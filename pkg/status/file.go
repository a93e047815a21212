package status

import (
	"context"

	"github.com/walteh/patchrc/pkg/buffer"
)

var (
	_ buffer.Source = (*File)(nil)
	_ buffer.Sink   = (*File)(nil)
)

// 📄 File binds one path of a Manager to the buffer Source and Sink
// interfaces. Writes are atomic and, when Backup is set, preceded by a
// copy of the current content to path+".bak".
type File struct {
	Path   string
	Backup bool

	m *Manager
}

// File returns the Source/Sink for path
func (m *Manager) File(path string, backup bool) *File {
	return &File{Path: path, Backup: backup, m: m}
}

func (f *File) Read(ctx context.Context) ([]byte, error) {
	return f.m.ReadFile(ctx, f.Path)
}

func (f *File) Write(ctx context.Context, content []byte) error {
	if f.Backup {
		if err := f.m.BackupFile(ctx, f.Path); err != nil {
			return err
		}
	}
	return f.m.WriteFileAtomic(ctx, f.Path, content)
}
