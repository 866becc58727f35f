package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/engine"
)

func TestAdoptPreservesContentAndLinks(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "repo version\n"})
	h.env.WriteTargetFile(".zshrc", "local version\n")

	result, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)

	// The local bytes now live in the repository.
	data, err := os.ReadFile(filepath.Join(h.env.Root, "zsh", ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "local version\n", string(data))

	// The destination became a link to the adopted copy.
	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".zshrc"),
		filepath.Join(h.env.Root, "zsh", ".zshrc"))

	// The repository's previous version was not lost: the displaced
	// destination file is in the snapshot.
	require.NotEmpty(t, result.BackupDir)
	saved, err := os.ReadFile(filepath.Join(result.BackupDir, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "local version\n", string(saved))

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, []string{filepath.Join(h.env.Target, ".zshrc")}, result.Outcomes[0].Adopted)
}

func TestAdoptNothingToAdopt(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "x\n"})

	_, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)

	result, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Empty(t, result.Outcomes[0].Adopted)
	assert.Empty(t, h.git.Commits, "no adoption means no commit offer")
}

func TestAdoptOffersCommitInWorkTree(t *testing.T) {
	h := newHarness(t, nil)
	h.git.Present = true
	h.git.WorkTree = true
	h.env.AddPackage("zsh", map[string]string{".zshrc": "repo\n"})
	h.env.WriteTargetFile(".zshrc", "local\n")

	_, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)

	require.Len(t, h.git.DiffCalls, 1)
	require.Len(t, h.git.Commits, 1)
	assert.Equal(t, "chore(dotfiles): adopt zsh config", h.git.Commits[0])
	assert.Equal(t, h.env.Root, h.git.CommitDirs[0])
}

func TestAdoptCustomCommitMessage(t *testing.T) {
	h := newHarness(t, nil)
	h.git.Present = true
	h.git.WorkTree = true
	h.confirm.Lines = []string{"take over zshrc"}
	h.env.AddPackage("zsh", map[string]string{".zshrc": "repo\n"})
	h.env.WriteTargetFile(".zshrc", "local\n")

	_, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)

	require.Len(t, h.git.Commits, 1)
	assert.Equal(t, "take over zshrc", h.git.Commits[0])
}

func TestAdoptNoGitSkipsCommitOffer(t *testing.T) {
	h := newHarness(t, func(o *engine.Options) { o.NoGit = true })
	h.git.Present = true
	h.git.WorkTree = true
	h.env.AddPackage("zsh", map[string]string{".zshrc": "repo\n"})
	h.env.WriteTargetFile(".zshrc", "local\n")

	_, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)
	assert.Empty(t, h.git.DiffCalls)
	assert.Empty(t, h.git.Commits)
}

func TestAdoptDeclinedCommitLeavesFilesAdopted(t *testing.T) {
	h := newHarness(t, nil)
	h.git.Present = true
	h.git.WorkTree = true
	h.confirm.Answers = []bool{true, false}
	h.env.AddPackage("zsh", map[string]string{".zshrc": "repo\n"})
	h.env.WriteTargetFile(".zshrc", "local\n")

	_, err := h.eng.Adopt([]string{"zsh"}, false)
	require.NoError(t, err)

	assert.Empty(t, h.git.Commits)
	data, err := os.ReadFile(filepath.Join(h.env.Root, "zsh", ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "local\n", string(data))
}
