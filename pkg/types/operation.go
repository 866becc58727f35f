package types

// OpKind names a mutating or read-only command of the manager.
type OpKind string

const (
	OpInstall   OpKind = "install"
	OpUninstall OpKind = "uninstall"
	OpRestow    OpKind = "restow"
	OpAdopt     OpKind = "adopt"
	OpStatus    OpKind = "status"
	OpCheck     OpKind = "check"
	OpList      OpKind = "list"
	OpNew       OpKind = "new"
)

// OpState is the lifecycle position of a mutating command.
//
//	Planned -> Previewed -> Confirmed -> Executing -> Done|Failed
//	                     \-> Aborted (operator declined)
//	                     \-> Done (dry-run short-circuit)
type OpState string

const (
	StatePlanned   OpState = "planned"
	StatePreviewed OpState = "previewed"
	StateConfirmed OpState = "confirmed"
	StateExecuting OpState = "executing"
	StateDone      OpState = "done"
	StateFailed    OpState = "failed"
	StateAborted   OpState = "aborted"
)

// PackageOutcome records what happened to one package during execution.
type PackageOutcome struct {
	Name    string
	Success bool
	// Skipped files (uninstall leaves non-matching destinations alone).
	Skipped []string
	// Adopted destination paths (adopt only).
	Adopted []string
	Err     error
}

// OperationResult is the terminal report of one engine invocation.
type OperationResult struct {
	Kind     OpKind
	State    OpState
	DryRun   bool
	Packages []string
	Outcomes []PackageOutcome
	// BackupDir is set when at least one conflict was backed up.
	BackupDir string
}

// Failed reports whether any package outcome failed.
func (r *OperationResult) Failed() bool {
	if r.State == StateFailed {
		return true
	}
	for _, o := range r.Outcomes {
		if !o.Success {
			return true
		}
	}
	return false
}

// Preview is the rendered plan shown to the operator before confirmation.
type Preview struct {
	Kind    OpKind
	Reports []PackageReport
	// SimulationNotes holds per-package output of the backend's dry-run
	// pass, keyed by package name.
	SimulationNotes map[string]string
}

// TotalConflicts counts conflicting files across all previewed packages.
func (p *Preview) TotalConflicts() int {
	n := 0
	for i := range p.Reports {
		n += len(p.Reports[i].Conflicts())
	}
	return n
}
