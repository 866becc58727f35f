package paths

import (
	"path/filepath"
	"strings"
)

// StructureType describes how a new package mirrors the target root.
type StructureType string

const (
	// StructureXDG nests the package under .config/<name>/.
	StructureXDG StructureType = "xdg"
	// StructureSimple mirrors a path directly under the home root.
	StructureSimple StructureType = "simple"
	// StructureSudo targets system paths outside the home root.
	StructureSudo StructureType = "sudo"
)

// InferStructure decides the package layout from a --from path. Paths
// under ~/.config map to the XDG layout, other paths under the home root
// map to the simple layout, anything outside the home root is a sudo
// package. An empty path defaults to XDG.
func (p *Paths) InferStructure(fromPath string) (StructureType, string) {
	if fromPath == "" {
		return StructureXDG, ".config"
	}

	abs := ExpandHome(fromPath)
	rel, err := filepath.Rel(p.home, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return StructureSudo, abs
	}

	if rel == ".config" || strings.HasPrefix(rel, ".config"+string(filepath.Separator)) {
		return StructureXDG, rel
	}
	return StructureSimple, rel
}

// StructureDir returns the innermost directory to create for a new
// package of the given structure.
func (p *Paths) StructureDir(name string, structure StructureType, relPath string) string {
	base := p.PackageDir(name, structure == StructureSudo)
	switch structure {
	case StructureXDG:
		return filepath.Join(base, ".config", name)
	case StructureSimple:
		if relPath == "" || relPath == "." {
			return base
		}
		return filepath.Join(base, relPath)
	default:
		return base
	}
}
