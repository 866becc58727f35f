package engine

import (
	"fmt"

	"github.com/RomanAverin/dotfiles/pkg/backup"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Uninstall removes the requested packages' links from their target
// roots. Destinations that are not links into the package are left
// untouched and reported as skipped.
func (e *Engine) Uninstall(specs []string, all bool) (*types.OperationResult, error) {
	reqs, err := e.resolve(specs, all)
	if err != nil {
		return nil, err
	}
	if err := e.requireStow(reqs); err != nil {
		return nil, err
	}

	preview, err := e.buildPreview(types.OpUninstall, reqs)
	if err != nil {
		return nil, err
	}

	return e.runMutation(mutation{
		kind:    types.OpUninstall,
		reqs:    reqs,
		preview: preview,
		prompt:  fmt.Sprintf("Uninstall %d package(s)?", len(reqs)),
		exec: func(req request, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
			if req.pkg.Sudo {
				return e.uninstallSudo(req)
			}
			return e.uninstallPackage(req.pkg)
		},
	})
}

func (e *Engine) uninstallPackage(pkg types.Package) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: pkg.Name}

	report, err := e.inspector.Inspect(pkg)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	for _, f := range report.Files {
		if f.Status == types.StatusConflict {
			outcome.Skipped = append(outcome.Skipped, f.RelPath)
		}
	}

	out, err := e.stow.Unstow(e.paths.Root(), pkg.Target, pkg.Name)
	if err != nil {
		outcome.Err = errors.Wrapf(err, errors.ErrSubprocess, "stow -D failed for %s", pkg.Name)
		return outcome
	}
	e.log.Debug().Str("package", pkg.Name).Str("output", out).Msg("Package unstowed")

	fmt.Fprintf(e.out, "%s %s uninstalled\n",
		style.SuccessStyle.Render("✓"), pkg.Name)
	for _, rel := range outcome.Skipped {
		fmt.Fprintf(e.out, "  %s %s left in place (not a link into the package)\n",
			style.MutedStyle.Render("·"), rel)
	}
	outcome.Success = true
	return outcome
}
