// Package backup snapshots files displaced by conflict resolution.
// Snapshots are content-preserving copies taken strictly before any
// destructive action, stored under .backups/<timestamp>/ mirroring the
// destination-relative layout. A snapshot directory is never reused.
package backup

import (
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

const timestampLayout = "20060102-150405"

// Store creates backup snapshots under a fixed root directory.
type Store struct {
	fs   types.FS
	root string
	now  func() time.Time
}

// NewStore creates a Store writing under root (the repository's
// .backups directory).
func NewStore(fsys types.FS, root string) *Store {
	return &Store{fs: fsys, root: root, now: time.Now}
}

// Snapshot is one timestamped backup directory.
type Snapshot struct {
	Dir   string
	Files []string
}

// Begin allocates a fresh snapshot directory. Two operations within the
// same second get distinct directories via a monotonic -N suffix.
func (s *Store) Begin() (*Snapshot, error) {
	stamp := s.now().Format(timestampLayout)
	dir := filepath.Join(s.root, stamp)
	for n := 2; ; n++ {
		if _, err := s.fs.Lstat(dir); err != nil {
			break
		}
		dir = filepath.Join(s.root, stamp+"-"+strconv.Itoa(n))
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackup, "cannot create backup directory %s", dir)
	}
	return &Snapshot{Dir: dir}, nil
}

// Add copies the file at path into the snapshot, preserving its path
// relative to targetRoot.
func (s *Store) Add(snap *Snapshot, targetRoot, path string) error {
	rel, err := filepath.Rel(targetRoot, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "path %s is not under %s", path, targetRoot)
	}

	dst := filepath.Join(snap.Dir, rel)
	if err := s.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "cannot create %s", filepath.Dir(dst))
	}
	if err := s.copyPath(path, dst); err != nil {
		return err
	}

	snap.Files = append(snap.Files, rel)
	logger := logging.GetLogger("backup")
	logger.Info().
		Str("from", path).
		Str("to", dst).
		Msg("Backup created")
	return nil
}

// copyPath copies a file, or a directory tree recursively, preserving
// permissions. Symlinks are recreated with their original target.
func (s *Store) copyPath(src, dst string) error {
	info, err := s.fs.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "cannot stat %s", src)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := s.fs.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot read link %s", src)
		}
		if err := s.fs.Symlink(target, dst); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot copy link %s", src)
		}
		return nil

	case info.IsDir():
		if err := s.fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot create %s", dst)
		}
		entries, err := s.fs.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot read %s", src)
		}
		for _, e := range entries {
			if err := s.copyPath(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		return nil

	default:
		data, err := s.fs.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot read %s", src)
		}
		if err := s.fs.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "cannot write %s", dst)
		}
		return nil
	}
}
