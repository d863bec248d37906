package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand_ValidDocument(t *testing.T) {
	path := writeDoc(t, `[[{"id": {"Name": "Water"}, "amount": 10}], "Standard", 3]`)

	out, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid (1 rows)")
}

func TestValidateCommand_InvalidDocument(t *testing.T) {
	path := writeDoc(t, `[[{"amount": "ten"}], "Standard", 3]`)

	out, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid")
	assert.Contains(t, out, "D102")
}

func TestValidateCommand_JSONOutput(t *testing.T) {
	path := writeDoc(t, `[[], "Minimal", 4]`)

	out, err := executeCommand(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
