package types

// FileStatus is the derived state of a single managed file's destination.
// It is a closed set; callers switch exhaustively instead of comparing
// display strings.
type FileStatus int

const (
	// StatusAbsent means the destination path does not exist.
	StatusAbsent FileStatus = iota
	// StatusLinkedCorrect means the destination is a symlink pointing at
	// the expected source inside the repository.
	StatusLinkedCorrect
	// StatusLinkedWrongTarget means the destination is a symlink into the
	// repository but at the wrong path.
	StatusLinkedWrongTarget
	// StatusConflict means the destination exists and is not a matching
	// symlink: a real file, a directory, or a symlink leaving the
	// repository entirely.
	StatusConflict
)

func (s FileStatus) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusLinkedCorrect:
		return "linked-correct"
	case StatusLinkedWrongTarget:
		return "linked-wrong-target"
	case StatusConflict:
		return "conflict-exists"
	default:
		return "unknown"
	}
}

// Symbol returns the one-rune status marker used in status output.
func (s FileStatus) Symbol() string {
	switch s {
	case StatusLinkedCorrect:
		return "✓"
	case StatusLinkedWrongTarget:
		return "⚠"
	case StatusConflict:
		return "✗"
	default:
		return "○"
	}
}

// Package is a named unit of configuration: a directory in the dotfiles
// repository whose layout mirrors the target root.
type Package struct {
	Name string
	// Dir is the absolute path of the package directory in the repository.
	Dir string
	// Target is the absolute root the package's files are linked under.
	Target string
	// Sudo marks packages whose files are installed by privileged copy
	// instead of stow (system files under /etc and similar).
	Sudo bool
}

// ManagedFile is one file of a package's expected layout.
type ManagedFile struct {
	// RelPath is the path relative to the package directory (and to the
	// target root).
	RelPath string
	// Source is the absolute path inside the package directory.
	Source string
	// Dest is the absolute path inside the target root.
	Dest string
	// Status is derived by the inspector, never persisted.
	Status FileStatus
	// Dangling is set by integrity checks when the destination is a
	// symlink whose target no longer exists. Orthogonal to Status:
	// a dangling link still classifies as linked-correct by path.
	Dangling bool
}

// PackageReport aggregates the inspection of one package.
type PackageReport struct {
	Package Package
	Files   []ManagedFile
}

// Conflicts returns the files whose destination is occupied.
func (r *PackageReport) Conflicts() []ManagedFile {
	var out []ManagedFile
	for _, f := range r.Files {
		if f.Status == StatusConflict {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many files have the given status.
func (r *PackageReport) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Dangling returns files flagged as dangling symlinks.
func (r *PackageReport) Dangling() []ManagedFile {
	var out []ManagedFile
	for _, f := range r.Files {
		if f.Dangling {
			out = append(out, f)
		}
	}
	return out
}

// Ready reports whether the package can be installed without touching
// anything: every file is either absent or already correctly linked.
func (r *PackageReport) Ready() bool {
	for _, f := range r.Files {
		if f.Status == StatusConflict || f.Status == StatusLinkedWrongTarget {
			return false
		}
	}
	return true
}

// SpecialFile is one explicit source/destination mapping of a sudo
// package. Destinations are absolute (typically under /etc).
type SpecialFile struct {
	Src  string `json:"src"`
	Dst  string `json:"dst"`
	Sudo bool   `json:"sudo"`
}
