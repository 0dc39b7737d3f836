package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	nsfspath "github.com/nicolagi/nsfs/path"
)

// FileStore is a path-addressed local disk Storage and Command
// implementation, grounded on the teacher's disk.go but path-addressed
// rather than content-addressed, and fixed for the three defects
// spec.md §9 directs be fixed:
//
//   - Read always loops to fill the requested length (io.ReadFull over an
//     io.SectionReader) rather than trusting a single Read call's count.
//   - Write always seeks to offset before writing, rather than choosing
//     between append and truncate based on whether offset is zero.
//   - Create builds the full parent directory prefix with MkdirAll before
//     creating the leaf file, rather than accumulating a path one
//     component at a time.
type FileStore struct {
	root   string
	mirror *S3Mirror
}

// NewFileStore returns a FileStore rooted at root. mirror may be nil.
func NewFileStore(root string, mirror *S3Mirror) *FileStore {
	return &FileStore{root: root, mirror: mirror}
}

func (s *FileStore) fullPath(p nsfspath.Path) string {
	return filepath.Join(s.root, filepath.FromSlash(p.String()))
}

// Size implements Storage.
func (s *FileStore) Size(p nsfspath.Path) (int64, error) {
	fi, err := os.Stat(s.fullPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return 0, errors.Wrapf(err, "stat %s", p)
	}
	return fi.Size(), nil
}

// Read implements Storage. It fails with ErrOutOfRange if offset is
// negative or offset+length exceeds the file's size.
func (s *FileStore) Read(p nsfspath.Path, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("offset=%d length=%d: %w", offset, length, ErrOutOfRange)
	}
	full := s.fullPath(p)
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, errors.Wrapf(err, "open %s", p)
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", p)
	}
	if offset+length > fi.Size() {
		return nil, fmt.Errorf("%s: offset=%d length=%d size=%d: %w", p, offset, length, fi.Size(), ErrOutOfRange)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(f, offset, length), buf); err != nil {
		return nil, errors.Wrapf(err, "read %s", p)
	}
	return buf, nil
}

// Write implements Storage. It always seeks to offset before writing, so
// a non-zero offset never silently appends and a zero offset never
// silently truncates the rest of the file.
func (s *FileStore) Write(p nsfspath.Path, offset int64, data []byte) error {
	if offset < 0 {
		return fmt.Errorf("offset=%d: %w", offset, ErrOutOfRange)
	}
	full := s.fullPath(p)
	f, err := os.OpenFile(full, os.O_WRONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return errors.Wrapf(err, "open %s", p)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek %s", p)
	}
	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "write %s", p)
	}
	if s.mirror != nil {
		s.mirror.push(p, full)
	}
	return nil
}

// Create implements Command. It builds the full parent directory prefix
// with one MkdirAll call before creating the leaf file. Directories that
// MkdirAll created before a failure are left in place. It returns false,
// nil if the file already exists.
func (s *FileStore) Create(p nsfspath.Path) (bool, error) {
	full := s.fullPath(p)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return false, errors.Wrapf(err, "mkdir for %s", p)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "create %s", p)
	}
	_ = f.Close()
	return true, nil
}

// Delete implements Command. It returns false, nil if the file does not
// exist, since the naming server's invalidation fan-out is best-effort
// and a missing replica is not itself a failure worth surfacing.
func (s *FileStore) Delete(p nsfspath.Path) (bool, error) {
	err := os.Remove(s.fullPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "remove %s", p)
	}
	return true, nil
}

// Copy implements Command: it pulls the full content of p from source's
// Storage interface and writes it locally, creating the local file first
// if it does not already exist.
func (s *FileStore) Copy(p nsfspath.Path, source Ref) (bool, error) {
	src := NewStorageStub(source)
	size, err := src.Size(p)
	if err != nil {
		return false, errors.Wrapf(err, "size %s at %s", p, source)
	}
	data, err := src.Read(p, 0, size)
	if err != nil {
		return false, errors.Wrapf(err, "read %s at %s", p, source)
	}
	if _, err := s.Create(p); err != nil {
		return false, errors.Wrapf(err, "create %s locally", p)
	}
	if err := s.Write(p, 0, data); err != nil {
		return false, errors.Wrapf(err, "write %s locally", p)
	}
	return true, nil
}
