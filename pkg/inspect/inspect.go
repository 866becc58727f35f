// Package inspect derives the current state of a package's managed files:
// for every file in the package directory it classifies the matching
// destination path as absent, correctly linked, wrongly linked or
// conflicting. Status is always recomputed, never cached.
package inspect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Inspector classifies managed files against a target root.
type Inspector struct {
	fs    types.FS
	paths *paths.Paths
}

// New creates an Inspector over the given filesystem and repository.
func New(fsys types.FS, p *paths.Paths) *Inspector {
	return &Inspector{fs: fsys, paths: p}
}

// Inspect walks the package directory and classifies every managed file.
func (i *Inspector) Inspect(pkg types.Package) (*types.PackageReport, error) {
	files, err := i.packageFiles(pkg)
	if err != nil {
		return nil, err
	}

	report := &types.PackageReport{Package: pkg}
	for _, rel := range files {
		mf := types.ManagedFile{
			RelPath: rel,
			Source:  filepath.Join(pkg.Dir, rel),
			Dest:    filepath.Join(pkg.Target, rel),
		}
		mf.Status = i.classify(mf)
		report.Files = append(report.Files, mf)
	}

	logger := logging.GetLogger("inspect")
	logger.Debug().
		Str("package", pkg.Name).
		Int("files", len(report.Files)).
		Int("conflicts", len(report.Conflicts())).
		Msg("Package inspected")

	return report, nil
}

// VerifyIntegrity re-checks every linked destination and flags symlinks
// whose target no longer exists. This is the one step that separates
// check from status. Destinations that still link into the package after
// their source file was deleted from the repository would not appear in
// the package walk at all, so the destination directories are scanned for
// orphaned links as well.
func (i *Inspector) VerifyIntegrity(report *types.PackageReport) {
	for idx := range report.Files {
		f := &report.Files[idx]
		if f.Status != types.StatusLinkedCorrect && f.Status != types.StatusLinkedWrongTarget {
			continue
		}
		// Stat follows the link; failure means the target is gone.
		if _, err := i.fs.Stat(f.Dest); err != nil {
			f.Dangling = true
		}
	}

	seen := make(map[string]bool, len(report.Files))
	for _, f := range report.Files {
		seen[f.RelPath] = true
	}
	for _, orphan := range i.orphanedLinks(report.Package) {
		if !seen[orphan.RelPath] {
			report.Files = append(report.Files, orphan)
		}
	}
}

// orphanedLinks scans the destination directories that mirror the
// package layout for symlinks into the package whose target is gone.
func (i *Inspector) orphanedLinks(pkg types.Package) []types.ManagedFile {
	var orphans []types.ManagedFile

	for _, relDir := range i.packageDirs(pkg) {
		destDir := filepath.Join(pkg.Target, relDir)
		entries, err := i.fs.ReadDir(destDir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			dest := filepath.Join(destDir, e.Name())
			info, err := i.fs.Lstat(dest)
			if err != nil || info.Mode()&os.ModeSymlink == 0 {
				continue
			}
			target, err := i.fs.Readlink(dest)
			if err != nil {
				continue
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(destDir, target)
			}
			target = filepath.Clean(target)

			rel, err := filepath.Rel(pkg.Dir, target)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			if _, err := i.fs.Stat(dest); err != nil {
				orphans = append(orphans, types.ManagedFile{
					RelPath:  filepath.Join(relDir, e.Name()),
					Source:   target,
					Dest:     dest,
					Status:   types.StatusLinkedCorrect,
					Dangling: true,
				})
			}
		}
	}
	return orphans
}

// packageDirs lists the package's directories (including the root)
// relative to the package dir.
func (i *Inspector) packageDirs(pkg types.Package) []string {
	dirs := []string{""}
	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := i.fs.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				childRel := filepath.Join(rel, e.Name())
				dirs = append(dirs, childRel)
				walk(filepath.Join(dir, e.Name()), childRel)
			}
		}
	}
	walk(pkg.Dir, "")
	return dirs
}

// classify decides the FileStatus of one managed file.
func (i *Inspector) classify(f types.ManagedFile) types.FileStatus {
	info, err := i.fs.Lstat(f.Dest)
	if err != nil {
		return types.StatusAbsent
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return types.StatusConflict
	}

	target, err := i.fs.Readlink(f.Dest)
	if err != nil {
		return types.StatusConflict
	}
	// Stow writes relative link targets; resolve against the link's
	// own directory before comparing.
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(f.Dest), target)
	}
	target = filepath.Clean(target)

	switch {
	case target == filepath.Clean(f.Source):
		return types.StatusLinkedCorrect
	case i.paths.Inside(target):
		return types.StatusLinkedWrongTarget
	default:
		// A symlink leaving the repository is somebody else's file.
		return types.StatusConflict
	}
}

// packageFiles lists the package's member files relative to its
// directory, sorted, skipping repository placeholders.
func (i *Inspector) packageFiles(pkg types.Package) ([]string, error) {
	if info, err := i.fs.Stat(pkg.Dir); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrPackageNotFound,
			"package %q not found in %s", pkg.Name, filepath.Dir(pkg.Dir))
	}

	var files []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := i.fs.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", dir)
		}
		for _, e := range entries {
			name := e.Name()
			childRel := filepath.Join(rel, name)
			if e.IsDir() {
				if err := walk(filepath.Join(dir, name), childRel); err != nil {
					return err
				}
				continue
			}
			if name == ".gitkeep" {
				continue
			}
			files = append(files, childRel)
		}
		return nil
	}
	if err := walk(pkg.Dir, ""); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// SourceExists reports whether the package already holds a copy of the
// given relative path.
func (i *Inspector) SourceExists(pkg types.Package, rel string) bool {
	_, err := i.fs.Lstat(filepath.Join(pkg.Dir, rel))
	return err == nil
}
