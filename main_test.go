package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPLOG_DB_FOLDER", dir)

	require.NoError(t, execute(t, "migrate"))
	_, err := os.Stat(filepath.Join(dir, "oplog.db"))
	require.NoError(t, err)

	require.NoError(t, execute(t, "user", "add", "bob", "--password", "pw"))
	assert.Error(t, execute(t, "user", "add", "bob", "--password", "pw"))
	assert.Error(t, execute(t, "user", "add", "eve", "--password", "pw", "--role", "chief"))
	require.NoError(t, execute(t, "user", "list"))

	out := filepath.Join(dir, "bob.csv")
	require.NoError(t, execute(t, "export", "--user", "bob", "--format", "csv", "--out", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SeqId,Date,Procedure"))
	assert.Error(t, execute(t, "export", "--format", "docx"))

	require.NoError(t, execute(t, "summary", "--user", "bob", "--year", "2024"))

	assert.Error(t, execute(t, "import-legacy"))
	assert.Error(t, execute(t, "import-legacy", "--db", filepath.Join(dir, "missing.db")))

	require.NoError(t, execute(t, "user", "delete", "bob"))
	assert.Error(t, execute(t, "user", "delete", "bob"))
}
