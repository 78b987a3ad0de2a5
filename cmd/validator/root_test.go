package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	graphDir := t.TempDir()
	audioDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(graphDir, "g-11"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(graphDir, "g-11", storage.ReferenceFileName), []byte("the cat sat\n"), 0644))

	var received []models.VerdictRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var verdict models.VerdictRequest
		if err := json.NewDecoder(r.Body).Decode(&verdict); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		received = append(received, verdict)
		io.WriteString(w, models.VerdictAcknowledgement)
	}))
	defer backend.Close()

	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MAX_MISCUES", "3")

	input := `{"id": "fk-1", "graph-id": "g-11", "record-cookie": "tok",
"result": {"hypotheses": [{"transcript": "the cat sat", "phone-alignment": []}]}}

not json
`
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs([]string{graphDir, audioDir, "--callback-url", backend.URL, "--max-miscues", "0"})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	blocks := strings.Split(strings.TrimSuffix(out.String(), "\n\n"), "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], `"validation-result":true`)
	assert.JSONEq(t, `{"status": "error"}`, blocks[1])

	require.Len(t, received, 1)
	assert.Equal(t, "fk-1", received[0].FileKey)
	assert.True(t, received[0].PassedValidation)

	_, err := os.Stat(filepath.Join(audioDir, "fk-1"+storage.AlignmentSuffix))
	assert.NoError(t, err)
}

func TestRootCommand_RequiresTwoArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"graphs"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}
