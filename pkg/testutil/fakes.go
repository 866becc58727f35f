package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/types"
)

// FakeStow stands in for the GNU Stow binary by creating and removing
// real symlinks through the OS, so status inspection after an operation
// observes the same filesystem a real stow run would leave behind.
type FakeStow struct {
	// Calls records every invocation as "op repo target pkg".
	Calls []string
	// FailPackages makes Stow/Unstow fail for the named packages.
	FailPackages map[string]bool
	// Unavailable makes Available fail.
	Unavailable bool
}

func (f *FakeStow) Available() error {
	if f.Unavailable {
		return fmt.Errorf("stow: command not found")
	}
	return nil
}

func (f *FakeStow) Stow(repoDir, targetDir, pkg string) (string, error) {
	f.Calls = append(f.Calls, strings.Join([]string{"stow", repoDir, targetDir, pkg}, " "))
	if f.FailPackages[pkg] {
		return "", fmt.Errorf("simulated stow failure for %s", pkg)
	}

	pkgDir := filepath.Join(repoDir, pkg)
	return "", filepath.Walk(pkgDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || info.Name() == ".gitkeep" {
			return err
		}
		rel, err := filepath.Rel(pkgDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(targetDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if existing, err := os.Readlink(dest); err == nil {
			if existing == path {
				return nil // already correct, restow is a no-op
			}
			if err := os.Remove(dest); err != nil {
				return err
			}
		} else if _, err := os.Lstat(dest); err == nil {
			// Real stow refuses to clobber plain files.
			return fmt.Errorf("existing target is not a symlink: %s", rel)
		}
		return os.Symlink(path, dest)
	})
}

func (f *FakeStow) Unstow(repoDir, targetDir, pkg string) (string, error) {
	f.Calls = append(f.Calls, strings.Join([]string{"unstow", repoDir, targetDir, pkg}, " "))
	if f.FailPackages[pkg] {
		return "", fmt.Errorf("simulated unstow failure for %s", pkg)
	}

	pkgDir := filepath.Join(repoDir, pkg)
	return "", filepath.Walk(pkgDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || info.Name() == ".gitkeep" {
			return err
		}
		rel, err := filepath.Rel(pkgDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(targetDir, rel)
		if target, err := os.Readlink(dest); err == nil && target == path {
			return os.Remove(dest)
		}
		return nil // non-matching destinations are left alone
	})
}

func (f *FakeStow) Simulate(op types.OpKind, repoDir, targetDir, pkg string) (bool, string) {
	f.Calls = append(f.Calls, strings.Join([]string{"simulate", string(op), pkg}, " "))
	if f.FailPackages[pkg] {
		return false, "simulated failure"
	}
	return true, "LINK: simulated"
}

var _ types.SymlinkBackend = (*FakeStow)(nil)

// ScriptedConfirmer answers prompts from a prepared script.
type ScriptedConfirmer struct {
	Answers []bool
	Lines   []string
	Prompts []string
}

func (s *ScriptedConfirmer) Confirm(prompt string) (bool, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Answers) == 0 {
		return false, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

func (s *ScriptedConfirmer) Input(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Lines) == 0 {
		return "", nil
	}
	line := s.Lines[0]
	s.Lines = s.Lines[1:]
	return line, nil
}

var _ types.Confirmer = (*ScriptedConfirmer)(nil)

// FakeGit records version-control calls without running git.
type FakeGit struct {
	Present    bool
	WorkTree   bool
	DiffCalls  []string
	Commits    []string
	CommitDirs []string
}

func (f *FakeGit) Available() bool            { return f.Present }
func (f *FakeGit) IsWorkTree(dir string) bool { return f.WorkTree }

func (f *FakeGit) Diff(dir string) error {
	f.DiffCalls = append(f.DiffCalls, dir)
	return nil
}

func (f *FakeGit) CommitAll(dir, message string) error {
	f.CommitDirs = append(f.CommitDirs, dir)
	f.Commits = append(f.Commits, message)
	return nil
}

var _ types.VersionControl = (*FakeGit)(nil)

// FakePrivileged records privileged file operations and performs them
// as plain copies so tests can assert on results.
type FakePrivileged struct {
	Copies  [][2]string
	Removed []string
	Chowned []string
	Err     error
}

func (f *FakePrivileged) CopyFile(src, dst string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Copies = append(f.Copies, [2]string{src, dst})
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (f *FakePrivileged) Remove(path string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Removed = append(f.Removed, path)
	return os.Remove(path)
}

func (f *FakePrivileged) ChownRoot(path string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Chowned = append(f.Chowned, path)
	return nil
}

var _ types.PrivilegedFileWriter = (*FakePrivileged)(nil)
