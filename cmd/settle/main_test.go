package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierledger/settle/config"
	"github.com/tierledger/settle/member"
)

// execute runs the CLI once against dataDir and returns what it printed.
func execute(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--datadir", dataDir, "--loglevel", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dataDir string, extra ...string) {
	t.Helper()
	steps := [][]string{
		{"member", "add", "A", "--name", "alpha", "--casino", "1.2", "--slot", "10", "--losing", "50"},
		{"member", "add", "B", "--parent", "A", "--name", "bravo", "--casino", "1.0", "--slot", "8", "--losing", "40"},
		{"member", "add", "C", "--parent", "B", "--name", "charlie", "--casino", "0.5", "--slot", "5", "--losing", "30"},
	}
	for _, args := range steps {
		_, err := execute(t, dataDir, "", append(args, extra...)...)
		require.NoError(t, err, "%v", args)
	}
}

// --- member ---

func TestMemberCommands(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := execute(t, dir, "", "member", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "bravo")
	assert.Contains(t, out, "branch")

	out, err = execute(t, dir, "", "member", "tree", "A")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "A alpha [grandmaster]"))
	assert.True(t, strings.HasPrefix(lines[2], "    C charlie [branch]"))

	_, err = execute(t, dir, "", "member", "update", "C", "--casino", "0.4")
	require.NoError(t, err)
	out, err = execute(t, dir, "", "member", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "casino 0.4%")

	_, err = execute(t, dir, "", "member", "update", "C", "--casino", "2")
	assert.ErrorIs(t, err, member.ErrRateExceedsParent)

	_, err = execute(t, dir, "", "member", "rm", "B")
	assert.ErrorIs(t, err, member.ErrHasChildren)

	_, err = execute(t, dir, "", "member", "rm", "C")
	require.NoError(t, err)
	out, err = execute(t, dir, "", "member", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "charlie")
}

// --- run / log ---

func TestRunAndLogCommands(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	input := `[{"performerId":" C ","amounts":{"casino":50000,"slot":0,"losing":0}}]`
	out, err := execute(t, dir, input, "run", "--root", "A", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "root   A")
	assert.Contains(t, out, "50000.00")
	assert.Contains(t, out, "20000.00")
	assert.Contains(t, out, "profit")

	out, err = execute(t, dir, "", "log", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out, err = execute(t, dir, "", "log", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "settlement "+id)
	assert.NotContains(t, out, "member tree has changed")

	_, err = execute(t, dir, "", "member", "update", "B", "--name", "renamed")
	require.NoError(t, err)
	out, err = execute(t, dir, "", "log", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "member tree has changed")

	_, err = execute(t, dir, "", "log", "rm", id)
	require.NoError(t, err)
	out, err = execute(t, dir, "", "log", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)
}

func TestRunFileBackend(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "--backend", "file")

	path := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"performerId":"C","amounts":{"casino":50000}}]`), 0600))

	_, err := execute(t, dir, "", "--backend", "file", "run", "--root", "A", "--input", path)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	_, err := execute(t, dir, `{"performerId":"C"}`, "run", "--root", "A")
	assert.Error(t, err)

	_, err = execute(t, dir, `[{"performer":"C"}]`, "run", "--root", "A")
	assert.Error(t, err)
}

// --- config ---

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "", "--tolerance", "0.5", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigPath(dir))

	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Tolerance)
	assert.Equal(t, dir, cfg.DataDir)

	out, err = execute(t, dir, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "tolerance:         0.5")

	_, err = os.Stat(filepath.Join(dir, "settle.db"))
	assert.True(t, os.IsNotExist(err), "config commands must not open the database")
}

func TestInvalidBackendFlag(t *testing.T) {
	_, err := execute(t, t.TempDir(), "", "--backend", "postgres", "member", "list")
	assert.ErrorIs(t, err, config.ErrInvalidBackend)
}
