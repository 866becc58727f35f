package paths

import (
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/errors"
)

// Directory names a package may never take.
var reservedNames = map[string]bool{
	".":             true,
	"..":            true,
	".git":          true,
	LogsDirName:     true,
	BackupsDirName:  true,
	SudoPackagesDir: true,
}

// ValidatePackageName ensures a name is usable as a package directory.
func ValidatePackageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrPackageInvalid, "package name cannot be empty")
	}

	const invalidChars = "/\\ \t\n:*?\"<>|"
	if idx := strings.IndexAny(name, invalidChars); idx >= 0 {
		return errors.Newf(errors.ErrPackageInvalid,
			"package name contains invalid character: %q", name[idx])
	}

	if reservedNames[name] {
		return errors.Newf(errors.ErrPackageInvalid, "package name %q is reserved", name)
	}

	if strings.HasPrefix(name, ".") {
		return errors.New(errors.ErrPackageInvalid, "package name cannot start with '.'")
	}

	return nil
}
