package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/backup"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/git"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/textdiff"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Adopt takes existing real files at the destinations into the
// repository: each conflicting destination is snapshotted, moved over
// the package's copy and replaced by a link. Afterwards the repository
// diff is shown and a commit offered, unless git integration is off.
func (e *Engine) Adopt(specs []string, all bool) (*types.OperationResult, error) {
	reqs, err := e.resolve(specs, all)
	if err != nil {
		return nil, err
	}
	if err := e.requireStow(reqs); err != nil {
		return nil, err
	}

	preview, err := e.buildPreview(types.OpAdopt, reqs)
	if err != nil {
		return nil, err
	}

	result, err := e.runMutation(mutation{
		kind:    types.OpAdopt,
		reqs:    reqs,
		preview: preview,
		prompt:  fmt.Sprintf("Adopt existing files for %d package(s)?", len(reqs)),
		exec: func(req request, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
			if req.pkg.Sudo {
				return e.adoptSudo(req)
			}
			return e.adoptPackage(req.pkg, snap)
		},
	})
	if err != nil {
		return result, err
	}

	adopted := 0
	for _, o := range result.Outcomes {
		adopted += len(o.Adopted)
	}
	if adopted > 0 {
		e.offerCommit(sortedNames(reqs))
	}
	return result, nil
}

func (e *Engine) adoptPackage(pkg types.Package, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: pkg.Name}

	report, err := e.inspector.Inspect(pkg)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	for _, f := range report.Conflicts() {
		s, err := snap()
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if err := e.backups.Add(s, pkg.Target, f.Dest); err != nil {
			outcome.Err = err
			return outcome
		}
		if err := e.moveFile(f.Dest, f.Source); err != nil {
			outcome.Err = err
			return outcome
		}
		e.record("file adopted", map[string]string{
			"from": f.Dest, "to": f.Source,
		})
		outcome.Adopted = append(outcome.Adopted, f.Dest)
		fmt.Fprintf(e.out, "%s adopted %s\n",
			style.SuccessStyle.Render("✓"), f.RelPath)
	}

	if _, err := e.stow.Stow(e.paths.Root(), pkg.Target, pkg.Name); err != nil {
		outcome.Err = errors.Wrapf(err, errors.ErrSubprocess, "stow failed for %s after adopt", pkg.Name)
		return outcome
	}

	if len(outcome.Adopted) == 0 {
		fmt.Fprintf(e.out, "%s %s: nothing to adopt\n",
			style.MutedStyle.Render("·"), pkg.Name)
	}
	outcome.Success = true
	return outcome
}

// adoptSudo pulls a changed system file's content back into the
// package copy. The destination itself stays in place.
func (e *Engine) adoptSudo(req request) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: req.pkg.Name}

	for _, f := range e.specialFilesFor(req) {
		src := filepath.Join(req.pkg.Dir, f.Src)
		dstData, err := e.fs.ReadFile(f.Dst)
		if err != nil {
			outcome.Skipped = append(outcome.Skipped, f.Src)
			continue
		}
		srcData, err := e.fs.ReadFile(src)
		if err == nil && string(srcData) == string(dstData) {
			continue
		}

		for _, line := range textdiff.Changed(string(srcData), string(dstData)) {
			fmt.Fprintln(e.out, style.MutedStyle.Render("  "+line))
		}
		if err := e.fs.WriteFile(src, dstData, 0o644); err != nil {
			outcome.Err = errors.Wrapf(err, errors.ErrFileMove, "cannot update %s", src)
			return outcome
		}
		e.record("system file adopted", map[string]string{
			"from": f.Dst, "to": src,
		})
		outcome.Adopted = append(outcome.Adopted, f.Dst)
		fmt.Fprintf(e.out, "%s adopted %s\n",
			style.SuccessStyle.Render("✓"), f.Dst)
	}

	outcome.Success = true
	return outcome
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// paths live on different filesystems. The fallback handles directory
// trees: an adopted ~/.config subtree may well cross a mount boundary.
func (e *Engine) moveFile(src, dst string) error {
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrFileMove, "cannot create %s", filepath.Dir(dst))
	}
	if err := e.fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := e.copyTree(src, dst); err != nil {
		return err
	}
	if err := e.fs.RemoveAll(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileMove, "cannot remove %s after copy", src)
	}
	return nil
}

// copyTree copies a file, symlink or directory tree, preserving
// permissions and link targets.
func (e *Engine) copyTree(src, dst string) error {
	info, err := e.fs.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileMove, "cannot stat %s", src)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := e.fs.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot read link %s", src)
		}
		if err := e.fs.Symlink(target, dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot copy link %s", src)
		}
		return nil

	case info.IsDir():
		if err := e.fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot create %s", dst)
		}
		entries, err := e.fs.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot read %s", src)
		}
		for _, entry := range entries {
			if err := e.copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil

	default:
		data, err := e.fs.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot read %s", src)
		}
		if err := e.fs.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "cannot write %s", dst)
		}
		return nil
	}
}

// offerCommit shows the repository diff and optionally commits the
// adopted files. Failures here never undo the completed adoption.
func (e *Engine) offerCommit(packages []string) {
	if e.noGit || !e.git.Available() || !e.git.IsWorkTree(e.paths.Root()) {
		return
	}

	fmt.Fprintln(e.out, style.Header("Repository changes"))
	if err := e.git.Diff(e.paths.Root()); err != nil {
		e.log.Warn().Err(err).Msg("Cannot show repository diff")
	}

	ok, err := e.confirm.Confirm("Commit adopted changes?")
	if err != nil || !ok {
		return
	}

	message := git.CommitMessage(packages)
	entered, err := e.confirm.Input(fmt.Sprintf("Commit message [%s]: ", message))
	if err == nil && strings.TrimSpace(entered) != "" {
		message = strings.TrimSpace(entered)
	}
	if err := e.git.CommitAll(e.paths.Root(), message); err != nil {
		fmt.Fprintf(e.out, "%s commit failed: %v\n", style.ErrorStyle.Render("✗"), err)
		return
	}
	fmt.Fprintf(e.out, "%s committed: %s\n", style.SuccessStyle.Render("✓"), message)
}
