package engine

import (
	"fmt"

	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// StatusReport is the aggregate of a status or check run.
type StatusReport struct {
	Reports []types.PackageReport
	// MissingDirs lists configured packages with no backing directory.
	MissingDirs []string
	// Checked is set when integrity verification ran (the check command).
	Checked bool
}

// Healthy reports whether every file is either absent or correctly
// linked and nothing is dangling or orphaned.
func (r *StatusReport) Healthy() bool {
	if len(r.MissingDirs) > 0 {
		return false
	}
	for i := range r.Reports {
		rep := &r.Reports[i]
		if !rep.Ready() || len(rep.Dangling()) > 0 {
			return false
		}
	}
	return true
}

// Status derives and prints the current state of the requested
// packages. It never mutates anything and never prompts.
func (e *Engine) Status(specs []string, all bool) (*StatusReport, error) {
	return e.report(specs, all, false)
}

// Check is status plus integrity verification: linked destinations are
// re-checked for dangling targets and destination directories scanned
// for orphaned links into the packages.
func (e *Engine) Check(specs []string, all bool) (*StatusReport, error) {
	return e.report(specs, all, true)
}

func (e *Engine) report(specs []string, all bool, verify bool) (*StatusReport, error) {
	if len(specs) == 0 {
		all = true
	}
	if all && len(e.cfg.AllPackages) == 0 {
		sr := &StatusReport{Checked: verify}
		e.renderStatus(sr)
		return sr, nil
	}
	reqs, err := e.resolve(specs, all)
	if err != nil {
		return nil, err
	}

	sr := &StatusReport{
		MissingDirs: e.cfg.MissingPackageDirs(e.fs, e.paths),
		Checked:     verify,
	}

	missing := map[string]bool{}
	for _, name := range sr.MissingDirs {
		missing[name] = true
	}

	for _, req := range reqs {
		if missing[req.pkg.Name] {
			continue
		}
		var report *types.PackageReport
		if req.pkg.Sudo {
			report = e.sudoReport(req)
		} else {
			report, err = e.inspector.Inspect(req.pkg)
			if err != nil {
				return nil, err
			}
			if verify {
				e.inspector.VerifyIntegrity(report)
			}
		}
		sr.Reports = append(sr.Reports, *report)
	}

	e.renderStatus(sr)
	return sr, nil
}

func (e *Engine) renderStatus(sr *StatusReport) {
	title := "Package status"
	if sr.Checked {
		title = "Integrity check"
	}
	fmt.Fprintln(e.out, style.Header(title))

	for i := range sr.Reports {
		r := &sr.Reports[i]
		label := r.Package.Name
		if r.Package.Sudo {
			label += " " + style.WarningStyle.Render("[sudo]")
		}
		fmt.Fprintf(e.out, "\n%s → %s\n",
			style.PackageStyle.Render(label), style.PathStyle.Render(r.Package.Target))

		for _, f := range r.Files {
			marker := style.Symbol(f.Status)
			suffix := ""
			if f.Dangling {
				marker = style.ErrorStyle.Render("✗")
				suffix = " " + style.ErrorStyle.Render("(dangling link)")
			}
			fmt.Fprintf(e.out, "  %s %s%s\n", marker, f.RelPath, suffix)
		}

		linked := r.Count(types.StatusLinkedCorrect)
		fmt.Fprintf(e.out, "  %s\n", style.MutedStyle.Render(
			fmt.Sprintf("%d/%d linked, %d conflict(s)", linked, len(r.Files), len(r.Conflicts()))))
	}

	for _, name := range sr.MissingDirs {
		fmt.Fprintf(e.out, "\n%s %s: configured but no package directory exists\n",
			style.ErrorStyle.Render("✗"), name)
	}

	if sr.Checked {
		if sr.Healthy() {
			fmt.Fprintf(e.out, "\n%s\n", style.SuccessStyle.Render("All packages are healthy."))
		} else {
			fmt.Fprintf(e.out, "\n%s\n", style.ErrorStyle.Render("Problems found."))
		}
	}
}
