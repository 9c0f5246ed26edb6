package configsource

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cburgosro9303/vortex-config/internal/gitrepo"
	"github.com/cburgosro9303/vortex-config/internal/reposync"
	"github.com/cburgosro9303/vortex-config/internal/resolver"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

// requireGit skips the test when the git binary isn't available, since
// GitSource.Fetch drives real `git` subprocess calls through gitrepo.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func run(t *testing.T, dir, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "command %s %v failed: %s", name, args, out)
}

// newFixtureRepo creates a real local Git repository on disk with one
// application.yml, committed on the main branch.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "git", "init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yml"), []byte("greeting: hello\n"), 0o644))
	run(t, dir, "git", "add", "application.yml")
	run(t, dir, "git", "commit", "-m", "initial")
	return dir
}

func newGitSource(t *testing.T, repoPath string) *GitSource {
	t.Helper()
	repo := gitrepo.New(gitrepo.Config{URI: repoPath, LocalPath: repoPath})
	res := resolver.New(repoPath, nil)
	return NewGitSource(GitSourceConfig{
		Repository:   repo,
		Resolver:     res,
		State:        reposync.New(),
		DefaultLabel: "main",
	})
}

func TestGitSourceFetchResolvesApplicationFile(t *testing.T) {
	requireGit(t)
	repoPath := newFixtureRepo(t)
	source := newGitSource(t, repoPath)

	result, err := source.Fetch(context.Background(), Query{Application: "myapp", Label: "main"})
	require.NoError(t, err)
	assert.Equal(t, "myapp", result.Name)
	assert.Equal(t, "main", result.Label)
	assert.True(t, result.HasVersion)
	assert.NotEmpty(t, result.Version)
	require.Equal(t, 1, result.PropertySources.Len())
	assert.Equal(t, "git:main:application.yml", result.PropertySources.Sources()[0].Name)
}

func TestGitSourceFetchUnknownApplicationReturnsApplicationNotFound(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	run(t, dir, "git", "init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("n/a"), 0o644))
	run(t, dir, "git", "add", "README.md")
	run(t, dir, "git", "commit", "-m", "initial")

	source := newGitSource(t, dir)
	_, err := source.Fetch(context.Background(), Query{Application: "myapp", Label: "main"})
	require.Error(t, err)
	verr, ok := vortexerr.As(err)
	require.True(t, ok)
	assert.Equal(t, vortexerr.KindApplicationNotFound, verr.Kind)
}

func TestGitSourceNameAndDefaults(t *testing.T) {
	source := NewGitSource(GitSourceConfig{})
	assert.Equal(t, "git", source.Name())
	assert.Equal(t, "main", source.DefaultLabel())
	assert.True(t, source.SupportsRefresh())
}

func TestGitSourceHealthCheckReflectsSyncState(t *testing.T) {
	requireGit(t)
	repoPath := newFixtureRepo(t)
	state := reposync.New()
	source := NewGitSource(GitSourceConfig{
		Repository:   gitrepo.New(gitrepo.Config{URI: repoPath, LocalPath: repoPath}),
		Resolver:     resolver.New(repoPath, nil),
		State:        state,
		DefaultLabel: "main",
	})

	state.RecordFailure("upstream unreachable")
	err := source.HealthCheck(context.Background())
	require.Error(t, err)
	verr, ok := vortexerr.As(err)
	require.True(t, ok)
	assert.Equal(t, vortexerr.KindSourceUnavailable, verr.Kind)
}
