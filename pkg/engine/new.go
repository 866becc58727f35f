package engine

import (
	"fmt"
	"path/filepath"

	"github.com/RomanAverin/dotfiles/pkg/config"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/journal"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// NewOptions configures package creation.
type NewOptions struct {
	// From seeds the package from an existing path: the file or
	// directory is moved into the package and linked back (sudo
	// packages get a copy and a special-file mapping instead).
	From string
	// Sudo forces sudo mode; paths outside the home root imply it.
	Sudo bool
	// Target overrides the default target root for this package.
	Target string
}

// NewPackage scaffolds a package directory, registers it in the
// configuration and optionally adopts an existing path into it.
// Everything created is rolled back if a later step fails.
func (e *Engine) NewPackage(name string, opts NewOptions) (*types.OperationResult, error) {
	result := &types.OperationResult{
		Kind:     types.OpNew,
		State:    types.StatePlanned,
		DryRun:   e.dryRun,
		Packages: []string{name},
	}

	if err := paths.ValidatePackageName(name); err != nil {
		return result, err
	}
	if e.cfg.Has(name) {
		return result, errors.Newf(errors.ErrPackageExists,
			"package %q is already configured", name)
	}
	// A sudo package is nothing but its special-file mappings, and those
	// come from the seed path. Refuse to create one that could never
	// install.
	if opts.Sudo && opts.From == "" {
		return result, errors.New(errors.ErrInvalidInput,
			"sudo packages need a source file: pass --from <system path>")
	}

	structure, rel := e.paths.InferStructure(opts.From)
	sudo := opts.Sudo || structure == paths.StructureSudo
	pkgDir := e.paths.PackageDir(name, sudo)

	if _, err := e.fs.Stat(pkgDir); err == nil {
		return result, errors.Newf(errors.ErrPackageExists,
			"directory %s already exists", pkgDir)
	}

	from := ""
	if opts.From != "" {
		from = paths.ExpandHome(opts.From)
		if _, err := e.fs.Lstat(from); err != nil {
			return result, errors.Wrapf(err, errors.ErrFileAccess,
				"path %s does not exist", from)
		}
	}

	e.renderNewPreview(name, pkgDir, structure, from, sudo)
	result.State = types.StatePreviewed

	if e.dryRun {
		fmt.Fprintln(e.out, style.MutedStyle.Render("\nDry run: nothing was changed."))
		result.State = types.StateDone
		return result, nil
	}

	ok, err := e.confirm.Confirm(fmt.Sprintf("Create package %q?", name))
	if err != nil {
		return result, err
	}
	if !ok {
		result.State = types.StateAborted
		return result, errors.New(errors.ErrAborted, "operation aborted by operator")
	}
	result.State = types.StateConfirmed

	jnl, err := journal.Open(e.paths.LogsDir())
	if err != nil {
		return result, err
	}
	defer jnl.Close()
	e.journal = jnl
	defer func() { e.journal = nil }()

	result.State = types.StateExecuting
	outcome, err := e.createPackage(name, pkgDir, structure, rel, from, sudo, opts.Target)
	result.Outcomes = []types.PackageOutcome{outcome}
	if err != nil {
		result.State = types.StateFailed
		return result, err
	}
	result.State = types.StateDone
	return result, nil
}

func (e *Engine) createPackage(name, pkgDir string, structure paths.StructureType, rel, from string, sudo bool, target string) (types.PackageOutcome, error) {
	outcome := types.PackageOutcome{Name: name}

	rollback := func() {
		if err := e.fs.RemoveAll(pkgDir); err != nil {
			e.log.Warn().Err(err).Str("dir", pkgDir).Msg("Rollback could not remove package directory")
		}
	}

	inner := pkgDir
	if !sudo {
		inner = e.paths.StructureDir(name, structure, rel)
		if from != "" {
			inner = filepath.Dir(filepath.Join(pkgDir, rel))
		}
	}
	if err := e.fs.MkdirAll(inner, 0o755); err != nil {
		err = errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", inner)
		outcome.Err = err
		return outcome, err
	}
	e.record("package directory created", map[string]string{"dir": inner})

	switch {
	case from == "":
		keep := filepath.Join(inner, ".gitkeep")
		if err := e.fs.WriteFile(keep, nil, 0o644); err != nil {
			rollback()
			err = errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", keep)
			outcome.Err = err
			return outcome, err
		}

	case sudo:
		// System files are copied, not moved: the live file must stay
		// in place.
		data, err := e.fs.ReadFile(from)
		if err != nil {
			rollback()
			err = errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", from)
			outcome.Err = err
			return outcome, err
		}
		src := filepath.Base(from)
		if err := e.fs.WriteFile(filepath.Join(pkgDir, src), data, 0o644); err != nil {
			rollback()
			err = errors.Wrapf(err, errors.ErrFileAccess, "cannot copy %s into package", from)
			outcome.Err = err
			return outcome, err
		}
		if e.cfg.SpecialFiles == nil {
			e.cfg.SpecialFiles = map[string]config.FileSet{}
		}
		e.cfg.SpecialFiles[name] = config.FileSet{Files: []types.SpecialFile{
			{Src: src, Dst: from, Sudo: true},
		}}

	default:
		if err := e.moveFile(from, filepath.Join(pkgDir, rel)); err != nil {
			rollback()
			outcome.Err = err
			return outcome, err
		}
		e.record("path adopted into new package", map[string]string{
			"from": from, "to": filepath.Join(pkgDir, rel),
		})
		outcome.Adopted = append(outcome.Adopted, from)
	}

	e.cfg.AddPackage(name, sudo, target)
	if err := config.BackupCopy(e.paths.ConfigFile()); err != nil {
		rollback()
		outcome.Err = err
		return outcome, err
	}
	if err := config.Save(e.paths.ConfigFile(), e.cfg); err != nil {
		rollback()
		outcome.Err = err
		return outcome, err
	}
	e.record("package registered", map[string]string{"package": name})

	if from != "" && !sudo {
		pkg := e.packageFor(name)
		if _, err := e.stow.Stow(e.paths.Root(), pkg.Target, name); err != nil {
			// The move is kept; the operator can rerun install.
			fmt.Fprintf(e.out, "%s created %s but linking failed: %v\n",
				style.WarningStyle.Render("⚠"), name, err)
			outcome.Err = errors.Wrapf(err, errors.ErrSubprocess, "stow failed for %s", name)
			return outcome, outcome.Err
		}
	}

	fmt.Fprintf(e.out, "%s package %s created\n", style.SuccessStyle.Render("✓"), name)
	outcome.Success = true
	return outcome, nil
}

func (e *Engine) renderNewPreview(name, pkgDir string, structure paths.StructureType, from string, sudo bool) {
	fmt.Fprintln(e.out, style.Header("Preview: new package"))
	fmt.Fprintf(e.out, "\n%s → %s\n",
		style.PackageStyle.Render(name), style.PathStyle.Render(pkgDir))
	fmt.Fprintf(e.out, "  layout: %s\n", structure)
	if sudo {
		fmt.Fprintf(e.out, "  %s\n", style.WarningStyle.Render("sudo package: files installed by privileged copy"))
	}
	if from != "" {
		verb := "move and link"
		if sudo {
			verb = "copy"
		}
		fmt.Fprintf(e.out, "  %s %s into the package\n", verb, style.PathStyle.Render(from))
	}
	fmt.Fprintf(e.out, "  register %q in %s\n", name, e.paths.ConfigFile())
}
