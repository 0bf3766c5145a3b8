package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, events []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, e := range events {
			fmt.Fprint(w, e)
			flusher.Flush()
		}
	}))
}

func TestRunPlainPrintsEventsAndStopsOnCompletion(t *testing.T) {
	srv := sseServer(t, []string{
		"event: message\ndata: {\"type\":\"message\",\"message\":{\"kind\":\"provider_selected\",\"provider\":\"http://mirror-a/\"}}\n\n",
		"event: progress\ndata: {\"type\":\"progress\",\"progress\":{\"kind\":\"job_size\",\"bytes\":1024}}\n\n",
		"event: progress\ndata: {\"type\":\"progress\",\"progress\":{\"kind\":\"completed\",\"bytes\":1024}}\n\n",
	})
	defer srv.Close()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := runPlain(context.Background(), srv.URL, "pkg/x.tar.zst")

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	require.NoError(t, runErr)
	assert.Contains(t, output, "provider_selected")
	assert.Contains(t, output, "job_size")
	assert.Contains(t, output, "completed")
}

func TestRunPlainStopsOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	err := runPlain(context.Background(), srv.URL, "pkg/x.tar.zst")
	assert.NoError(t, err, "runPlain reports connection errors to stderr, not via its return value")
}
