package git

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitMessage(t *testing.T) {
	assert.Equal(t,
		"chore(dotfiles): adopt zsh config",
		CommitMessage([]string{"zsh"}))
	assert.Equal(t,
		"chore(dotfiles): adopt zsh, tmux config",
		CommitMessage([]string{"zsh", "tmux"}))
}

func TestAvailableMissingBinary(t *testing.T) {
	c := New("/nonexistent/git-binary")
	assert.False(t, c.Available())
}

func TestIsWorkTree(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	c := New("")
	plain := t.TempDir()
	assert.False(t, c.IsWorkTree(plain))

	repo := t.TempDir()
	require.NoError(t, exec.Command("git", "-C", repo, "init", "-q").Run())
	assert.True(t, c.IsWorkTree(repo))
}
