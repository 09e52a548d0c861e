package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memo-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes the command tree against dbPath and returns stdout.
func run(t *testing.T, dbPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_MemoLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memos.db")

	out, err := run(t, dbPath, "", "add", "--title", "A", "--category", "x", "--tags", "t1, t2,", "hi", "there")
	require.NoError(t, err)

	var added models.Memo
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, int64(1), added.ID)
	assert.Equal(t, "hi there", added.Content)
	assert.Equal(t, []string{"t1", "t2"}, added.Hashtags)

	_, err = run(t, dbPath, "", "add", "--title", "B", "--category", "y", "--content", "second")
	require.NoError(t, err)

	out, err = run(t, dbPath, "", "comment", "1", "first", "comment")
	require.NoError(t, err)
	var comment models.MemoComment
	require.NoError(t, json.Unmarshal([]byte(out), &comment))
	assert.Equal(t, int64(1), comment.MemoID)
	assert.Equal(t, "first comment", comment.Content)

	out, err = run(t, dbPath, "", "list")
	require.NoError(t, err)
	var memos []models.Memo
	require.NoError(t, json.Unmarshal([]byte(out), &memos))
	require.Len(t, memos, 2)
	assert.Equal(t, int64(2), memos[0].ID)
	require.Len(t, memos[1].Comments, 1)

	out, err = run(t, dbPath, "", "list", "--category", "y", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "2\tB\n", out)

	out, err = run(t, dbPath, "", "list", "--tag", "t*", "--format", "yaml")
	require.NoError(t, err)
	var fromYAML []models.Memo
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "A", fromYAML[0].Title)
	assert.Equal(t, []string{"t1", "t2"}, fromYAML[0].Hashtags)

	_, err = run(t, dbPath, "", "list", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, dbPath, "", "rm", "2")
	require.NoError(t, err)

	out, err = run(t, dbPath, "", "list", "-f", "text")
	require.NoError(t, err)
	assert.Equal(t, "1\tA\n", out)
}

func TestCLI_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memos.db")

	_, err := run(t, dbPath, "", "comment", "42", "orphan")
	assert.Error(t, err, "commenting on a missing memo fails")

	_, err = run(t, dbPath, "", "rm", "abc")
	assert.Error(t, err)

	_, err = run(t, dbPath, "", "add", "--title", "A", "--category", "x")
	assert.Error(t, err, "content is required")

	_, err = run(t, dbPath, "", "import", "-")
	assert.Error(t, err, "empty document is malformed")
}

func TestCLI_ExportImport(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.db")
	target := filepath.Join(dir, "target.db")
	exportFile := filepath.Join(dir, "memos.json")

	_, err := run(t, source, "", "add", "--title", "A", "--category", "x", "hi")
	require.NoError(t, err)
	_, err = run(t, source, "", "add", "--title", "B", "--category", "x", "there")
	require.NoError(t, err)

	_, err = run(t, source, "", "export", "-o", exportFile)
	require.NoError(t, err)

	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))

	out, err := run(t, target, "", "import", exportFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"imported":2`)

	out, err = run(t, target, string(data), "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"imported":0,"skipped":2`)

	out, err = run(t, t.TempDir()+"/empty.db", "", "export")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
