package engine

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/textdiff"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// installSudo copies a sudo package's special files to their system
// destinations through the privileged writer. An existing destination
// with different content is first copied aside to <dst>.backup.
func (e *Engine) installSudo(req request) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: req.pkg.Name}

	files := e.specialFilesFor(req)
	if len(files) == 0 {
		outcome.Err = errors.Newf(errors.ErrConfigInvalid,
			"sudo package %q has no special_files entries", req.pkg.Name)
		return outcome
	}

	for _, f := range files {
		src := filepath.Join(req.pkg.Dir, f.Src)
		srcData, err := e.fs.ReadFile(src)
		if err != nil {
			outcome.Err = errors.Wrapf(err, errors.ErrFileAccess,
				"source file %s is missing from package %s", f.Src, req.pkg.Name)
			return outcome
		}

		if dstData, err := e.fs.ReadFile(f.Dst); err == nil {
			if bytes.Equal(srcData, dstData) {
				fmt.Fprintf(e.out, "%s %s unchanged\n",
					style.MutedStyle.Render("·"), f.Dst)
				continue
			}
			for _, line := range textdiff.Changed(string(dstData), string(srcData)) {
				fmt.Fprintln(e.out, style.MutedStyle.Render("  "+line))
			}
			if err := e.priv.CopyFile(f.Dst, f.Dst+".backup"); err != nil {
				outcome.Err = err
				return outcome
			}
			e.record("system file backed up", map[string]string{
				"path": f.Dst, "backup": f.Dst + ".backup",
			})
		}

		if err := e.priv.CopyFile(src, f.Dst); err != nil {
			outcome.Err = err
			return outcome
		}
		if f.Sudo {
			if err := e.priv.ChownRoot(f.Dst); err != nil {
				outcome.Err = err
				return outcome
			}
		}
		e.record("system file installed", map[string]string{
			"from": src, "to": f.Dst,
		})
		fmt.Fprintf(e.out, "%s %s installed\n",
			style.SuccessStyle.Render("✓"), f.Dst)
	}

	outcome.Success = true
	return outcome
}

// uninstallSudo removes a sudo package's installed system files, asking
// per file. Removing a system configuration file can break a running
// service, so there is no bulk confirmation here.
func (e *Engine) uninstallSudo(req request) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: req.pkg.Name}

	for _, f := range e.specialFilesFor(req) {
		if _, err := e.fs.Lstat(f.Dst); err != nil {
			continue
		}
		ok, err := e.confirm.Confirm(fmt.Sprintf("Remove %s?", f.Dst))
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if !ok {
			outcome.Skipped = append(outcome.Skipped, f.Dst)
			fmt.Fprintf(e.out, "%s kept %s\n", style.MutedStyle.Render("·"), f.Dst)
			continue
		}
		if err := e.priv.Remove(f.Dst); err != nil {
			outcome.Err = err
			return outcome
		}
		e.record("system file removed", map[string]string{"path": f.Dst})
		fmt.Fprintf(e.out, "%s removed %s\n", style.SuccessStyle.Render("✓"), f.Dst)
	}

	outcome.Success = true
	return outcome
}
