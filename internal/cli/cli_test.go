package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIDs(t *testing.T) {
	assert.Nil(t, splitIDs(""))
	assert.Equal(t, []string{"1", "7"}, splitIDs(" 1, ,7 "))
}

func TestExportAnnotationsCommand_ParseFlags(t *testing.T) {
	cmd := NewExportAnnotationsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", "x.db", "-dir", "/tmp/out", "-book", "3,4"}))

	assert.Equal(t, "x.db", cmd.DatabasePath)
	assert.Equal(t, "/tmp/out", cmd.OutputDir)
	assert.Empty(t, cmd.Subdir)
	assert.Equal(t, []string{"3", "4"}, cmd.BookIDs)
}

func TestShowStateCommand_PrintsFreshState(t *testing.T) {
	var buf bytes.Buffer
	cmd := &ShowStateCommand{
		DatabasePath: filepath.Join(t.TempDir(), "state.db"),
		Compact:      true,
		out:          &buf,
	}
	require.NoError(t, cmd.Run())

	var out struct {
		UserID     string         `json:"user_id"`
		StorageKey string         `json:"storage_key"`
		State      map[string]any `json:"state"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, strings.HasPrefix(out.UserID, "user_"))
	assert.Equal(t, "readworld_state_"+out.UserID, out.StorageKey)
	assert.NotEmpty(t, out.State)
}
