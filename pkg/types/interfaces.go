package types

// SymlinkBackend is the external symlink-farm tool (GNU Stow) invoked per
// package. Implementations shell out; tests substitute a fake that
// manipulates an injected FS.
type SymlinkBackend interface {
	// Available verifies the backend binary can be invoked.
	Available() error
	// Stow links pkg from repoDir into targetDir (restow semantics: safe
	// to run over existing correct links). Returns the tool's verbose
	// output.
	Stow(repoDir, targetDir, pkg string) (string, error)
	// Unstow removes pkg's links from targetDir.
	Unstow(repoDir, targetDir, pkg string) (string, error)
	// Simulate performs a no-act pass for the given operation and
	// reports whether the tool would succeed, with its output.
	Simulate(op OpKind, repoDir, targetDir, pkg string) (bool, string)
}

// VersionControl covers the git interactions used after adopt. All
// methods are advisory: failures never undo completed file operations.
type VersionControl interface {
	Available() bool
	// IsWorkTree reports whether dir is inside a git working tree.
	IsWorkTree(dir string) bool
	// Diff prints the working-tree diff for dir to the operator.
	Diff(dir string) error
	// CommitAll stages everything and commits with the given message.
	CommitAll(dir, message string) error
}

// PrivilegedFileWriter performs file operations that need elevation,
// used for sudo-flagged special files.
type PrivilegedFileWriter interface {
	CopyFile(src, dst string) error
	Remove(path string) error
	// ChownRoot sets root:root ownership on an installed system file.
	ChownRoot(path string) error
}

// Confirmer is the injected confirmation capability. The default
// implementation prompts on the terminal; tests script responses.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
	// Input reads a free-form line (commit messages, typed package
	// names). Returns the entered text, possibly empty.
	Input(prompt string) (string, error)
}
