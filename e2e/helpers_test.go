//go:build !windows

package e2e_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/executor"
	rcindexhttp "github.com/sagarc03/rcindex/http"
	"github.com/sagarc03/rcindex/namespace"
	"github.com/sagarc03/rcindex/provision"
)

// fakeRclone answers lsjson for a handful of paths under the combine remote.
// It fails when the config it is given lacks the combine remote.
const fakeRclone = `#!/bin/sh
[ "$1" = "lsjson" ] || { echo "unexpected command $1" >&2; exit 2; }
grep -q '^\[combine\]' "$3" || { echo "combine remote missing" >&2; exit 4; }
case "$4" in
"combine:")
	printf '%s\n' '[{"Path":"photos","Name":"photos","Size":-1,"IsDir":true},{"Path":"gdrive","Name":"gdrive","Size":-1,"IsDir":true}]'
	;;
"combine:gdrive")
	printf '%s\n' '[' \
		'{"Path":"report 2024.pdf","Name":"report 2024.pdf","Size":1536,"MimeType":"application/pdf","ModTime":"2024-03-05T14:30:00Z","IsDir":false},' \
		'{"Path":"docs","Name":"docs","Size":-1,"MimeType":"inode/directory","ModTime":"2024-03-01T09:00:00Z","IsDir":true}' \
		']'
	;;
"combine:empty")
	;;
"combine:garbage")
	echo 'this is not json'
	;;
"combine:slow")
	sleep 5
	;;
*)
	echo "directory not found" >&2
	exit 3
	;;
esac
`

const twoRemotes = "[gdrive]\ntype = drive\n\n[photos]\ntype = local\n"

// ServerConfig holds the knobs for one in-process rcindex stack.
type ServerConfig struct {
	Settings rcindexhttp.RequestSettings
	Timeout  time.Duration
}

// Stack is a running rcindex server backed by a fake rclone download.
type Stack struct {
	BaseURL    string
	ScratchDir string
	Downloads  *atomic.Int32
}

func buildArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	hdr := &zip.FileHeader{Name: "rclone-v1.66.0-linux-amd64/rclone", Method: zip.Deflate}
	hdr.SetMode(0o755)
	w, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = w.Write([]byte(fakeRclone))
	require.NoError(t, err)

	w, err = zw.Create("rclone-v1.66.0-linux-amd64/README.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("rclone"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// startStack wires the real provisioner, synthesizer, runner and HTTP
// handler together and serves them on a local port.
func startStack(t *testing.T, cfg ServerConfig) *Stack {
	t.Helper()

	archive := buildArchive(t)
	downloads := &atomic.Int32{}
	dl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	t.Cleanup(dl.Close)

	scratch := t.TempDir()

	p, err := provision.New(provision.Config{
		ScratchDir:  scratch,
		DownloadURL: dl.URL + "/rclone-current-linux-amd64.zip",
	})
	require.NoError(t, err)

	s, err := namespace.New(namespace.Config{ScratchDir: scratch})
	require.NoError(t, err)

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	r := executor.New(executor.Config{Timeout: timeout, KillGrace: 200 * time.Millisecond})

	handlerCfg := rcindexhttp.HandlerConfig{
		CORS:     rcindexhttp.DefaultCORSConfig(),
		Settings: rcindexhttp.StaticSettings(cfg.Settings),
	}
	handler := rcindexhttp.NewHandler(&handlerCfg, rcindex.NewIndexService(p, s, r))

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	return &Stack{
		BaseURL:    srv.URL,
		ScratchDir: scratch,
		Downloads:  downloads,
	}
}

func withRemotes(text string) rcindexhttp.RequestSettings {
	return rcindexhttp.RequestSettings{ConfigBase64: base64.StdEncoding.EncodeToString([]byte(text))}
}
