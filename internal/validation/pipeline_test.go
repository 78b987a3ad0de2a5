package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingNotifier captures delivered verdicts
type recordingNotifier struct {
	mu       sync.Mutex
	verdicts []models.VerdictRequest
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, verdict models.VerdictRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verdicts = append(n.verdicts, verdict)
	return n.err
}

type pipelineFixture struct {
	pipeline *Pipeline
	notifier *recordingNotifier
	metrics  *Metrics
	audioDir string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	graphDir := t.TempDir()
	audioDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(graphDir, "g-11"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(graphDir, "g-11", storage.ReferenceFileName), []byte("the cat sat\n"), 0644))

	notifier := &recordingNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())
	pipeline := NewPipeline(
		NewReferenceLoader(storage.NewLocalStore(graphDir)),
		storage.NewLocalStore(audioDir),
		notifier,
		DefaultMaxMiscues,
		metrics,
		zap.NewNop(),
	)
	return &pipelineFixture{pipeline: pipeline, notifier: notifier, metrics: metrics, audioDir: audioDir}
}

func resultBlock(fileKey, graphID, transcript string) string {
	return `{"id": "` + fileKey + `", "graph-id": "` + graphID + `", "record-cookie": "tok-` + fileKey + `",
"result": {"hypotheses": [{"transcript": "` + transcript + `",
"phone-alignment": [{"word": "the@0", "start": 0.1, "length": 0.2}]}]}}
`
}

func TestPipeline_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		f := newPipelineFixture(t)

		out := f.pipeline.Process(ctx, []byte(resultBlock("fk-1", "g-11", "the cat uh sat")))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(out, &doc))
		assert.Equal(t, true, doc[ResultField])
		require.Len(t, f.notifier.verdicts, 1)
		assert.Equal(t, models.VerdictRequest{RecordCookie: "tok-fk-1", GraphID: "g-11", FileKey: "fk-1", PassedValidation: true}, f.notifier.verdicts[0])

		saved, err := os.ReadFile(filepath.Join(f.audioDir, "fk-1"+storage.AlignmentSuffix))
		require.NoError(t, err)
		assert.JSONEq(t, `{"word-alignment": [{"word": "the@0", "start": 0.1, "length": 0.2}]}`, string(saved))
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.verdicts.WithLabelValues("accepted")))
	})

	t.Run("rejected", func(t *testing.T) {
		f := newPipelineFixture(t)

		out := f.pipeline.Process(ctx, []byte(resultBlock("fk-2", "g-11", "the cat")))

		assert.Contains(t, string(out), `"validation-result":false`)
		require.Len(t, f.notifier.verdicts, 1)
		assert.False(t, f.notifier.verdicts[0].PassedValidation)
	})

	t.Run("parse failure", func(t *testing.T) {
		f := newPipelineFixture(t)

		out := f.pipeline.Process(ctx, []byte(`{"id": `))

		assert.JSONEq(t, `{"status": "error"}`, string(out))
		assert.Empty(t, f.notifier.verdicts)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.parseFailures))
	})

	t.Run("unknown graph", func(t *testing.T) {
		f := newPipelineFixture(t)

		out := f.pipeline.Process(ctx, []byte(resultBlock("fk-3", "g-missing", "the cat sat")))

		assert.JSONEq(t, `{"status": "error"}`, string(out))
		assert.Empty(t, f.notifier.verdicts)
	})

	t.Run("file key outside audio store", func(t *testing.T) {
		f := newPipelineFixture(t)

		out := f.pipeline.Process(ctx, []byte(resultBlock("../escaped", "g-11", "the cat sat")))

		assert.JSONEq(t, `{"status": "error"}`, string(out))
		assert.Empty(t, f.notifier.verdicts)
		_, err := os.Stat(filepath.Join(filepath.Dir(f.audioDir), "escaped"+storage.AlignmentSuffix))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delivery failure still emits output", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.notifier.err = ErrDeliveryFailed

		out := f.pipeline.Process(ctx, []byte(resultBlock("fk-4", "g-11", "the cat sat")))

		assert.Contains(t, string(out), `"validation-result":true`)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.deliveryFailures))
	})
}

func TestPipeline_Run(t *testing.T) {
	f := newPipelineFixture(t)
	input := resultBlock("fk-1", "g-11", "the cat sat") + "\n" +
		"not json\n\n\n" +
		resultBlock("fk-2", "g-11", "cat")

	var out bytes.Buffer
	err := f.pipeline.Run(context.Background(), strings.NewReader(input), &out)

	require.NoError(t, err)
	outputs := strings.Split(strings.TrimSuffix(out.String(), "\n\n"), "\n\n")
	require.Len(t, outputs, 3)
	assert.Contains(t, outputs[0], `"validation-result":true`)
	assert.JSONEq(t, `{"status": "error"}`, outputs[1])
	assert.Contains(t, outputs[2], `"validation-result":false`)

	require.Len(t, f.notifier.verdicts, 2)
	assert.Equal(t, "fk-1", f.notifier.verdicts[0].FileKey)
	assert.Equal(t, "fk-2", f.notifier.verdicts[1].FileKey)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.blocks))
}

func TestPipeline_RunCancelled(t *testing.T) {
	f := newPipelineFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.pipeline.Run(ctx, strings.NewReader(resultBlock("fk-1", "g-11", "the cat sat")), io.Discard)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.notifier.verdicts)
}

func TestReferenceLoader(t *testing.T) {
	graphDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(graphDir, "g-1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(graphDir, "g-1", storage.ReferenceFileName), []byte(" one  two\nthree \n"), 0644))
	loader := NewReferenceLoader(storage.NewLocalStore(graphDir))

	words, err := loader.Load(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, words)

	for _, bad := range []string{"", "..", "../etc", `a\b`} {
		_, err := loader.Load(context.Background(), bad)
		assert.Error(t, err, bad)
	}

	_, err = loader.Load(context.Background(), "g-2")
	assert.ErrorIs(t, err, storage.ErrArtifactNotFound)
}

func TestCallbackClient_Notify(t *testing.T) {
	verdict := models.VerdictRequest{RecordCookie: "tok", GraphID: "g-11", FileKey: "fk-1", PassedValidation: true}

	tests := []struct {
		name          string
		apiKey        string
		handler       http.HandlerFunc
		expectedError bool
	}{
		{
			name:   "acknowledged",
			apiKey: "key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "key", r.Header.Get("X-API-Key"))
				var got models.VerdictRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, verdict, got)
				w.Write([]byte("OK"))
			},
		},
		{
			name: "no api key header when unset",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.Header.Get("X-API-Key"))
				w.Write([]byte("OK"))
			},
		},
		{
			name: "unexpected body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("record not found"))
			},
			expectedError: true,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("OK"))
			},
			expectedError: true,
		},
		{
			name: "stalled backend",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewCallbackClient(server.URL, tt.apiKey, 100*time.Millisecond)
			err := client.Notify(context.Background(), verdict)

			if tt.expectedError {
				assert.True(t, errors.Is(err, ErrDeliveryFailed), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
