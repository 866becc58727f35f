package engine

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// buildPreview inspects every requested package and, for stow-managed
// ones, runs the backend's no-act pass so its verbose plan can be
// surfaced alongside the classification.
func (e *Engine) buildPreview(kind types.OpKind, reqs []request) (*types.Preview, error) {
	preview := &types.Preview{
		Kind:            kind,
		SimulationNotes: map[string]string{},
	}

	for _, req := range reqs {
		if req.pkg.Sudo {
			preview.Reports = append(preview.Reports, *e.sudoReport(req))
			continue
		}

		report, err := e.inspector.Inspect(req.pkg)
		if err != nil {
			return nil, err
		}
		preview.Reports = append(preview.Reports, *report)

		if kind == types.OpInstall || kind == types.OpUninstall || kind == types.OpRestow {
			ok, note := e.stow.Simulate(kind, e.paths.Root(), req.pkg.Target, req.pkg.Name)
			preview.SimulationNotes[req.pkg.Name] = note
			if !ok && len(report.Conflicts()) == 0 {
				// The backend sees a problem the classifier did not;
				// surface it rather than failing later mid-run.
				e.log.Warn().Str("package", req.pkg.Name).Str("output", note).
					Msg("Backend simulation reported a problem")
			}
		}
	}
	return preview, nil
}

// sudoReport synthesizes a report for a sudo package from its special
// file mappings. Installed means the destination holds the same bytes
// as the source.
func (e *Engine) sudoReport(req request) *types.PackageReport {
	report := &types.PackageReport{Package: req.pkg}
	for _, f := range e.specialFilesFor(req) {
		mf := types.ManagedFile{
			RelPath: f.Src,
			Source:  filepath.Join(req.pkg.Dir, f.Src),
			Dest:    f.Dst,
		}
		srcData, srcErr := e.fs.ReadFile(mf.Source)
		dstData, dstErr := e.fs.ReadFile(mf.Dest)
		switch {
		case dstErr != nil:
			mf.Status = types.StatusAbsent
		case srcErr == nil && bytes.Equal(srcData, dstData):
			mf.Status = types.StatusLinkedCorrect
		default:
			mf.Status = types.StatusConflict
		}
		report.Files = append(report.Files, mf)
	}
	return report
}

// renderPreview prints the planned changes before confirmation.
func (e *Engine) renderPreview(p *types.Preview) {
	fmt.Fprintln(e.out, style.Header(fmt.Sprintf("Preview: %s", p.Kind)))

	for i := range p.Reports {
		r := &p.Reports[i]
		label := r.Package.Name
		if r.Package.Sudo {
			label += " " + style.WarningStyle.Render("[sudo]")
		}
		fmt.Fprintf(e.out, "\n%s → %s\n",
			style.PackageStyle.Render(label), style.PathStyle.Render(r.Package.Target))

		for _, f := range r.Files {
			fmt.Fprintf(e.out, "  %s %s\n", style.Symbol(f.Status), f.RelPath)
		}
		if note, ok := p.SimulationNotes[r.Package.Name]; ok && note != "" {
			e.log.Debug().Str("package", r.Package.Name).Str("simulation", note).
				Msg("Backend no-act output")
		}
	}

	if n := p.TotalConflicts(); n > 0 {
		fmt.Fprintf(e.out, "\n%s\n", style.WarningStyle.Render(
			fmt.Sprintf("%d conflicting path(s) will be backed up to %s before being replaced.",
				n, e.paths.BackupsDir())))
	}
}
