// Package engine executes the manager's commands. Every mutating
// command walks the same lifecycle: plan the affected packages, preview
// the changes, confirm with the operator, snapshot anything about to be
// displaced and only then execute, journaling each discrete action.
// Dry-run stops after the preview without touching the filesystem.
package engine

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/RomanAverin/dotfiles/pkg/backup"
	"github.com/RomanAverin/dotfiles/pkg/config"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/filesystem"
	"github.com/RomanAverin/dotfiles/pkg/git"
	"github.com/RomanAverin/dotfiles/pkg/inspect"
	"github.com/RomanAverin/dotfiles/pkg/journal"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/privileged"
	"github.com/RomanAverin/dotfiles/pkg/stow"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
	"github.com/RomanAverin/dotfiles/pkg/ui"
)

// Options configures an Engine. Zero-value fields get production
// defaults; tests inject fakes.
type Options struct {
	Config  *config.Config
	Paths   *paths.Paths
	FS      types.FS
	Stow    types.SymlinkBackend
	Git     types.VersionControl
	Priv    types.PrivilegedFileWriter
	Confirm types.Confirmer
	Out     io.Writer

	DryRun bool
	// Force skips confirmation prompts.
	Force bool
	// NoGit disables the post-adopt diff and commit offer.
	NoGit bool
}

// Engine runs commands against one dotfiles repository.
type Engine struct {
	cfg       *config.Config
	paths     *paths.Paths
	fs        types.FS
	stow      types.SymlinkBackend
	git       types.VersionControl
	priv      types.PrivilegedFileWriter
	confirm   types.Confirmer
	inspector *inspect.Inspector
	backups   *backup.Store
	journal   *journal.Journal
	out       io.Writer
	log       zerolog.Logger

	dryRun bool
	noGit  bool
}

// New builds an Engine, filling unset collaborators with the real
// stow/git/sudo implementations.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil || opts.Paths == nil {
		return nil, errors.New(errors.ErrInternal, "engine needs a configuration and resolved paths")
	}
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Stow == nil {
		opts.Stow = stow.New("")
	}
	if opts.Git == nil {
		opts.Git = git.New("")
	}
	if opts.Priv == nil {
		opts.Priv = privileged.New("")
	}
	if opts.Confirm == nil {
		if opts.Force {
			opts.Confirm = ui.AutoApprove{}
		} else {
			opts.Confirm = ui.NewConsole()
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Engine{
		cfg:       opts.Config,
		paths:     opts.Paths,
		fs:        opts.FS,
		stow:      opts.Stow,
		git:       opts.Git,
		priv:      opts.Priv,
		confirm:   opts.Confirm,
		inspector: inspect.New(opts.FS, opts.Paths),
		backups:   backup.NewStore(opts.FS, opts.Paths.BackupsDir()),
		out:       opts.Out,
		log:       logging.GetLogger("engine"),
		dryRun:    opts.DryRun,
		noGit:     opts.NoGit,
	}, nil
}

// request is one resolved operand of a command: a package, optionally
// narrowed to a single special file ("pkg:file" form, sudo packages
// only).
type request struct {
	pkg  types.Package
	file string
}

// resolve expands command operands into packages. With all set, every
// configured package is selected and explicit operands are rejected.
func (e *Engine) resolve(specs []string, all bool) ([]request, error) {
	if all {
		if len(specs) > 0 {
			return nil, errors.New(errors.ErrInvalidInput,
				"cannot combine --all with explicit package names")
		}
		specs = append([]string{}, e.cfg.AllPackages...)
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrInvalidInput,
			"no packages given (use --all for every configured package)")
	}

	var reqs []request
	for _, spec := range specs {
		name, file := spec, ""
		if idx := strings.IndexByte(spec, ':'); idx >= 0 {
			name, file = spec[:idx], spec[idx+1:]
		}
		if !e.cfg.Has(name) {
			return nil, errors.Newf(errors.ErrPackageNotFound,
				"package %q is not in the configuration (see: %s list)", name, commandName)
		}
		pkg := e.packageFor(name)
		if file != "" {
			if !pkg.Sudo {
				return nil, errors.Newf(errors.ErrInvalidInput,
					"%s: file selection is only valid for sudo packages", spec)
			}
			if !e.hasSpecialFile(name, file) {
				return nil, errors.Newf(errors.ErrInvalidInput,
					"%s: no special file %q configured for package %q", spec, file, name)
			}
		}
		reqs = append(reqs, request{pkg: pkg, file: file})
	}
	return reqs, nil
}

const commandName = "stow-manager"

func (e *Engine) packageFor(name string) types.Package {
	sudo := e.cfg.IsSudo(name)
	return types.Package{
		Name:   name,
		Dir:    e.paths.PackageDir(name, sudo),
		Target: e.paths.ResolveTarget(e.cfg.TargetFor(name)),
		Sudo:   sudo,
	}
}

func (e *Engine) hasSpecialFile(pkg, file string) bool {
	for _, f := range e.cfg.SpecialFilesFor(pkg) {
		if f.Src == file {
			return true
		}
	}
	return false
}

// specialFilesFor returns the package's mappings, narrowed to one file
// when the request named one.
func (e *Engine) specialFilesFor(req request) []types.SpecialFile {
	files := e.cfg.SpecialFilesFor(req.pkg.Name)
	if req.file == "" {
		return files
	}
	for _, f := range files {
		if f.Src == req.file {
			return []types.SpecialFile{f}
		}
	}
	return nil
}

// mutation is the shared lifecycle of install, uninstall, restow and
// adopt. Steps past the preview are skipped on dry-run; a declined
// confirmation aborts with ErrAborted.
type mutation struct {
	kind    types.OpKind
	reqs    []request
	preview *types.Preview
	prompt  string
	// exec runs one package. snap allocates the backup snapshot on
	// first use; a nil return from snap's error means it is usable.
	exec func(req request, snap func() (*backup.Snapshot, error)) types.PackageOutcome
}

func (e *Engine) runMutation(m mutation) (*types.OperationResult, error) {
	result := &types.OperationResult{
		Kind:   m.kind,
		State:  types.StatePlanned,
		DryRun: e.dryRun,
	}
	for _, r := range m.reqs {
		result.Packages = append(result.Packages, r.pkg.Name)
	}

	e.renderPreview(m.preview)
	result.State = types.StatePreviewed

	if e.dryRun {
		fmt.Fprintln(e.out, style.MutedStyle.Render("\nDry run: nothing was changed."))
		result.State = types.StateDone
		return result, nil
	}

	ok, err := e.confirm.Confirm(m.prompt)
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

	e.record(string(m.kind)+" started", map[string]string{
		"packages": strings.Join(result.Packages, ","),
	})

	result.State = types.StateExecuting

	var snap *backup.Snapshot
	getSnap := func() (*backup.Snapshot, error) {
		if snap != nil {
			return snap, nil
		}
		s, err := e.backups.Begin()
		if err != nil {
			return nil, err
		}
		snap = s
		e.record("backup snapshot created", map[string]string{"dir": s.Dir})
		return snap, nil
	}

	failed := false
	for _, req := range m.reqs {
		outcome := m.exec(req, getSnap)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Err != nil {
			failed = true
			e.recordError(string(m.kind)+" failed", outcome.Err, map[string]string{
				"package": req.pkg.Name,
			})
			fmt.Fprintf(e.out, "%s %s: %v\n",
				style.ErrorStyle.Render("✗"), req.pkg.Name, outcome.Err)
			continue
		}
		e.record(string(m.kind)+" completed", map[string]string{"package": req.pkg.Name})
	}

	if snap != nil {
		result.BackupDir = snap.Dir
	}
	if failed {
		result.State = types.StateFailed
		return result, errors.Newf(errors.ErrSubprocess, "%s finished with failures", m.kind)
	}
	result.State = types.StateDone
	e.record(string(m.kind)+" finished", map[string]string{
		"packages": strings.Join(result.Packages, ","),
	})
	return result, nil
}

// journal is only set while a mutation is executing.
func (e *Engine) record(event string, fields map[string]string) {
	if e.journal != nil {
		e.journal.Record(event, fields)
	}
}

func (e *Engine) recordError(event string, err error, fields map[string]string) {
	if e.journal != nil {
		e.journal.RecordError(event, err, fields)
	}
}

// displace backs up a destination path into the snapshot and removes
// it, clearing the way for a link or an adopted move.
func (e *Engine) displace(snap func() (*backup.Snapshot, error), target, path string) error {
	s, err := snap()
	if err != nil {
		return err
	}
	if err := e.backups.Add(s, target, path); err != nil {
		return err
	}
	e.record("conflicting path backed up", map[string]string{
		"path": path, "snapshot": s.Dir,
	})
	if err := e.fs.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", path)
	}
	return nil
}

// procVersionPath is overridden in tests.
var procVersionPath = "/proc/version"

// IsWSL reports whether the process runs under Windows Subsystem for
// Linux, where symlinks into Windows-mounted paths behave differently.
func IsWSL() bool {
	data, err := os.ReadFile(procVersionPath)
	if err != nil {
		return false
	}
	v := strings.ToLower(string(data))
	return strings.Contains(v, "microsoft") || strings.Contains(v, "wsl")
}

// sortedNames returns the request package names, sorted, with
// duplicates removed.
func sortedNames(reqs []request) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range reqs {
		if !seen[r.pkg.Name] {
			seen[r.pkg.Name] = true
			names = append(names, r.pkg.Name)
		}
	}
	sort.Strings(names)
	return names
}
