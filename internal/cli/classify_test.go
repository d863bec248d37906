package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCommand_Text(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"64-17-5", "CAS"},
		{"962", "CID"},
		{"InChI=1S/H2O/h1H2", "InChI"},
		{"table salt", "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, err := executeCommand(t, "classify", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestClassifyCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "--format", "json", "classify", "  64-17-5 ")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CAS", data["kind"])
	assert.Equal(t, "64-17-5", data["input"], "input is normalized before classification")
}

func TestClassifyCommand_RequiresArgument(t *testing.T) {
	_, err := executeCommand(t, "classify")
	assert.Error(t, err)
}
