package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverCmdPrintsRankedMirrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"urls":[
			{"url":"https://slow.example.org/archlinux/","protocol":"https","score":0.9},
			{"url":"https://fast.example.org/archlinux/","protocol":"https","score":0.1}
		]}`))
	}))
	defer upstream.Close()

	path := filepath.Join(t.TempDir(), "flexo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mirror_status_endpoint: \""+upstream.URL+"\"\n"), 0644))

	cmd := NewDiscoverCmd(&App{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path})

	require.NoError(t, cmd.Execute())

	output := out.String()
	fastIdx := strings.Index(output, "fast.example.org")
	slowIdx := strings.Index(output, "slow.example.org")
	require.GreaterOrEqual(t, fastIdx, 0)
	require.GreaterOrEqual(t, slowIdx, 0)
	assert.Less(t, fastIdx, slowIdx, "the lower-score (better) mirror must be ranked first")
}

func TestDiscoverCmdErrorsWithoutEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flexo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: /tmp/x\n"), 0644))

	cmd := NewDiscoverCmd(&App{})
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror_status_endpoint")
}
