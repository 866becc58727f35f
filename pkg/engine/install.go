package engine

import (
	"fmt"

	"github.com/RomanAverin/dotfiles/pkg/backup"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Install links the requested packages into their target roots.
// Conflicting destinations are snapshotted and removed first; already
// correct links make the operation a no-op for that file.
func (e *Engine) Install(specs []string, all bool) (*types.OperationResult, error) {
	reqs, err := e.resolve(specs, all)
	if err != nil {
		return nil, err
	}
	if err := e.requireStow(reqs); err != nil {
		return nil, err
	}

	preview, err := e.buildPreview(types.OpInstall, reqs)
	if err != nil {
		return nil, err
	}

	return e.runMutation(mutation{
		kind:    types.OpInstall,
		reqs:    reqs,
		preview: preview,
		prompt:  fmt.Sprintf("Install %d package(s)?", len(reqs)),
		exec: func(req request, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
			if req.pkg.Sudo {
				return e.installSudo(req)
			}
			return e.installPackage(req.pkg, snap)
		},
	})
}

func (e *Engine) installPackage(pkg types.Package, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: pkg.Name}

	report, err := e.inspector.Inspect(pkg)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	for _, f := range report.Conflicts() {
		if err := e.displace(snap, pkg.Target, f.Dest); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	out, err := e.stow.Stow(e.paths.Root(), pkg.Target, pkg.Name)
	if err != nil {
		outcome.Err = errors.Wrapf(err, errors.ErrSubprocess, "stow failed for %s", pkg.Name)
		return outcome
	}
	e.log.Debug().Str("package", pkg.Name).Str("output", out).Msg("Package stowed")

	fmt.Fprintf(e.out, "%s %s installed\n",
		style.SuccessStyle.Render("✓"), pkg.Name)
	outcome.Success = true
	return outcome
}

// requireStow checks backend availability once per command, only when a
// stow-managed package is actually involved.
func (e *Engine) requireStow(reqs []request) error {
	for _, req := range reqs {
		if !req.pkg.Sudo {
			return e.stow.Available()
		}
	}
	return nil
}
