package engine

import (
	"fmt"

	"github.com/RomanAverin/dotfiles/pkg/backup"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Restow reinstalls the requested packages: links are removed and
// recreated so renamed or moved files inside a package are picked up.
// Sudo packages are simply reinstalled, their copies overwritten.
func (e *Engine) Restow(specs []string, all bool) (*types.OperationResult, error) {
	reqs, err := e.resolve(specs, all)
	if err != nil {
		return nil, err
	}
	if err := e.requireStow(reqs); err != nil {
		return nil, err
	}

	preview, err := e.buildPreview(types.OpRestow, reqs)
	if err != nil {
		return nil, err
	}

	return e.runMutation(mutation{
		kind:    types.OpRestow,
		reqs:    reqs,
		preview: preview,
		prompt:  fmt.Sprintf("Restow %d package(s)?", len(reqs)),
		exec: func(req request, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
			if req.pkg.Sudo {
				return e.installSudo(req)
			}
			return e.restowPackage(req.pkg, snap)
		},
	})
}

// restowPackage removes the package's links and installs them afresh.
// The explicit two-step run (instead of stow -R alone) makes sure links
// whose source file left the package disappear as well.
func (e *Engine) restowPackage(pkg types.Package, snap func() (*backup.Snapshot, error)) types.PackageOutcome {
	outcome := types.PackageOutcome{Name: pkg.Name}

	if _, err := e.stow.Unstow(e.paths.Root(), pkg.Target, pkg.Name); err != nil {
		outcome.Err = errors.Wrapf(err, errors.ErrSubprocess, "stow -D failed for %s", pkg.Name)
		return outcome
	}
	return e.installPackage(pkg, snap)
}
