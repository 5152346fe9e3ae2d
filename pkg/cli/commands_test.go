package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerscienceiscool/file-explorer/pkg/audit"
)

const notes = "alpha\nbeta cat\ngamma\ncat"

type testEnv struct {
	root     string
	auditLog string
	auditDB  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte(notes), 0644))
	dir := t.TempDir()
	return testEnv{
		root:     root,
		auditLog: filepath.Join(dir, "audit.log"),
		auditDB:  filepath.Join(dir, "audit.db"),
	}
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cmd := NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--root", e.root, "--audit-log", e.auditLog, "--audit-db", e.auditDB}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e testEnv) read(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, "notes.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestFindCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "find", "notes.txt", "cat")
	require.NoError(t, err)
	assert.Equal(t, "2 beta cat\n4 cat\nLines: 4 | Characters: 24 | 1 / 2\n", out)

	out, err = env.run(t, "find", "notes.txt", "CAT", "--case-sensitive")
	require.NoError(t, err)
	assert.Equal(t, "Lines: 4 | Characters: 24 | not found\n", out)

	out, err = env.run(t, "find", "notes.txt", "gamma", "--all-lines")
	require.NoError(t, err)
	assert.Equal(t, "1 alpha\n2 beta cat\n3 gamma\n4 cat\nLines: 4 | Characters: 24 | 1 / 1\n", out)
}

func TestFindCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "find", "missing.txt", "cat")
	assert.ErrorContains(t, err, "NOT_FOUND")

	_, err = env.run(t, "find", "../outside.txt", "cat")
	assert.ErrorContains(t, err, "PATH_SECURITY")

	_, err = env.run(t, "find", "notes.txt")
	assert.Error(t, err, "pattern argument is required")
}

func TestReplaceCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "replace", "notes.txt", "cat", "dog")
	require.NoError(t, err)
	assert.Equal(t, "Replaced 1 occurrence(s) in notes.txt\n", out)
	assert.Equal(t, "alpha\nbeta dog\ngamma\ncat", env.read(t))

	out, err = env.run(t, "replace", "notes.txt", "a", "A", "--all", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "AlphA\nbetA dog\ngAmmA\ncAt\n", out)
	assert.Equal(t, "alpha\nbeta dog\ngamma\ncat", env.read(t), "dry run does not save")

	out, err = env.run(t, "replace", "notes.txt", "a", "A", "--all", "--whole-word")
	assert.ErrorContains(t, err, "NO_ACTIVE_MATCH")

	out, err = env.run(t, "replace", "notes.txt", "a", "", "--all")
	require.NoError(t, err)
	assert.Equal(t, "Replaced 6 occurrence(s) in notes.txt\n", out)
	assert.Equal(t, "lph\nbet dog\ngmm\nct", env.read(t))
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "stats", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Lines: 4 | Characters: 24\n", out)
}

func TestAuditCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "replace", "notes.txt", "cat", "dog", "--all")
	require.NoError(t, err)

	out, err := env.run(t, "audit", "--json", "--limit", "10")
	require.NoError(t, err)

	var entries []audit.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))

	var commands []string
	for _, e := range entries {
		commands = append(commands, e.Command)
	}
	assert.Equal(t, []string{"close", "save", "replace-all", "open"}, commands)

	logData, err := os.ReadFile(env.auditLog)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "|replace-all|cat|success|count:2")
}

func TestAuditCommandWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.auditDB = ""

	_, err := env.run(t, "audit")
	assert.ErrorContains(t, err, "audit database not configured")
}
