package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testRepo(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "application.yml", "server:\n  port: 8080\n")
	writeFile(t, dir, "application-dev.yml", "server:\n  port: 8081\n")
	writeFile(t, dir, "myapp.yml", "app:\n  name: myapp\n")
	writeFile(t, dir, "myapp-dev.yml", "app:\n  debug: true\n")
	return dir
}

func TestResolveFourSourcesInPrecedenceOrder(t *testing.T) {
	dir := testRepo(t)
	r := New(dir, nil)

	sources, err := r.Resolve("myapp", []string{"dev"}, "main")
	require.NoError(t, err)
	require.Len(t, sources, 4)

	assert.Contains(t, sources[0].Name, "myapp-dev")
	assert.Contains(t, sources[1].Name, "myapp.yml")
	assert.Contains(t, sources[2].Name, "application-dev")
	assert.Contains(t, sources[3].Name, "application.yml")

	for _, s := range sources {
		assert.True(t, len(s.Name) > 0 && s.Name[:5] == "git:m")
	}
}

func TestResolveNoProfileReturnsTwoSources(t *testing.T) {
	dir := testRepo(t)
	r := New(dir, nil)

	sources, err := r.Resolve("myapp", nil, "main")
	require.NoError(t, err)
	assert.Len(t, sources, 2)
}

func TestResolveUnknownAppOnlyApplicationFiles(t *testing.T) {
	dir := testRepo(t)
	r := New(dir, nil)

	sources, err := r.Resolve("unknown", []string{"dev"}, "main")
	require.NoError(t, err)
	assert.Len(t, sources, 2)
	for _, s := range sources {
		assert.NotContains(t, s.Name, "unknown")
	}
}

func TestListConfigFilesSkipsHiddenAndVendorDirs(t *testing.T) {
	dir := testRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".git"), "ignored.yml", "x: 1")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	writeFile(t, filepath.Join(dir, "node_modules"), "ignored.json", "{}")

	r := New(dir, nil)
	files, err := r.ListConfigFiles()
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestSourceNameFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yml", "key: value")

	r := New(dir, nil)
	sources, err := r.Resolve("test", nil, "main")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "git:main:test.yml", sources[0].Name)
}
