package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/output"
)

func sampleListing() *rcindex.Listing {
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &rcindex.Listing{
		Path: "gdrive",
		Entries: []rcindex.ListingEntry{
			{Name: "photos", URL: "/gdrive/photos/", IsDir: true, Size: -1},
			{Name: "notes.txt", URL: "/gdrive/notes.txt", Size: 2048, ModTime: &mod},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format string
		want   any
	}{
		{"", &output.HumanFormatter{}},
		{"human", &output.HumanFormatter{}},
		{"json", &output.JSONFormatter{}},
		{"JSON", &output.JSONFormatter{}},
		{"yaml", &output.YAMLFormatter{}},
		{"yml", &output.YAMLFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := output.NewFormatter(tt.format, false)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := output.NewFormatter("xml", false)
		assert.ErrorIs(t, err, rcindex.ErrInvalidInput)
	})

	t.Run("quiet", func(t *testing.T) {
		f, err := output.NewFormatter("human", true)
		require.NoError(t, err)
		hf, ok := f.(*output.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatListing(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.HumanFormatter{}).FormatListing(&buf, sampleListing()))

		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "photos/")
		assert.Contains(t, out, "notes.txt")
		assert.Contains(t, out, "2.0 KiB")
		assert.Contains(t, out, "2024-01-02 03:04:05")
		assert.Contains(t, out, "1 folder(s), 1 file(s) (2.0 KiB total)")
	})

	t.Run("quiet omits header and summary", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.HumanFormatter{Quiet: true}).FormatListing(&buf, sampleListing()))

		out := buf.String()
		assert.NotContains(t, out, "NAME")
		assert.NotContains(t, out, "total")
		assert.Contains(t, out, "notes.txt")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.HumanFormatter{}).FormatListing(&buf, &rcindex.Listing{}))
		assert.Equal(t, "No entries found\n", buf.String())
	})
}

func TestHumanFormatter_FormatRemotes(t *testing.T) {
	remotes := []rcindex.RemoteDefinition{
		{Name: "gdrive", Type: "drive"},
		{Name: "combine", Type: "combine", Params: map[string]string{"upstreams": "gdrive=gdrive:"}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&output.HumanFormatter{}).FormatRemotes(&buf, remotes))

	out := buf.String()
	assert.Regexp(t, `gdrive\s+drive`, out)
	assert.Contains(t, out, "upstreams: gdrive=gdrive:")
}

func TestHumanFormatter_FormatBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&output.HumanFormatter{}).FormatBinary(&buf, rcindex.Binary{Path: "/tmp/rclone"}))
	assert.Equal(t, "rclone ready: /tmp/rclone\n", buf.String())

	buf.Reset()
	require.NoError(t, (&output.HumanFormatter{Quiet: true}).FormatBinary(&buf, rcindex.Binary{Path: "/tmp/rclone"}))
	assert.Equal(t, "/tmp/rclone\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	f := &output.JSONFormatter{}

	t.Run("listing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatListing(&buf, sampleListing()))

		var got rcindex.Listing
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "gdrive", got.Path)
		require.Len(t, got.Entries, 2)
		assert.True(t, got.Entries[0].IsDir)
		assert.Equal(t, int64(2048), got.Entries[1].Size)
	})

	t.Run("empty remotes", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatRemotes(&buf, nil))
		assert.JSONEq(t, `{"remotes":[]}`, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("boom")))
		assert.JSONEq(t, `{"error":"boom"}`, buf.String())
	})
}

func TestYAMLFormatter(t *testing.T) {
	f := &output.YAMLFormatter{}

	t.Run("listing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatListing(&buf, sampleListing()))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "gdrive", got["path"])
		assert.Contains(t, buf.String(), "is_dir: true")
	})

	t.Run("binary", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatBinary(&buf, rcindex.Binary{Path: "/tmp/rclone"}))
		assert.Equal(t, "path: /tmp/rclone\n", buf.String())
	})
}
