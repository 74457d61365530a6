package rcindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/rcindex"
)

func TestCleanRequestPath(t *testing.T) {
	invalidUTF8 := string([]byte{'/', 'a', 0xff, 'b'})

	tt := []struct {
		Name    string
		Path    string
		Want    string
		WantErr bool
	}{
		{Name: "empty", Path: "", Want: ""},
		{Name: "root", Path: "/", Want: ""},
		{Name: "dot", Path: ".", Want: ""},
		{Name: "leading and trailing slash", Path: "/docs/", Want: "docs"},
		{Name: "nested", Path: "/docs/reports/2024", Want: "docs/reports/2024"},
		{Name: "double slash", Path: "a//b", Want: "a/b"},
		{Name: "dot segment", Path: "a/./b", Want: "a/b"},
		{Name: "dot dot inside", Path: "a/../b", Want: "b"},
		{Name: "dot dot escape", Path: "/../../etc", Want: "etc"},
		{Name: "only dot dot", Path: "..", Want: ""},
		{Name: "spaces kept", Path: "/my files/a b", Want: "my files/a b"},
		{Name: "remote style colon", Path: "/gdrive/a:b", Want: "gdrive/a:b"},

		{Name: "NUL", Path: "a\x00b", WantErr: true},
		{Name: "newline", Path: "a\nb", WantErr: true},
		{Name: "DEL", Path: "a\x7fb", WantErr: true},
		{Name: "invalid utf8", Path: invalidUTF8, WantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := rcindex.CleanRequestPath(tc.Path)
			if tc.WantErr {
				assert.ErrorIs(t, err, rcindex.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestEntryURL(t *testing.T) {
	tt := []struct {
		Name        string
		RequestPath string
		Entry       string
		IsDir       bool
		Want        string
	}{
		{Name: "root file", RequestPath: "", Entry: "a.txt", Want: "/a.txt"},
		{Name: "root dir", RequestPath: "", Entry: "photos", IsDir: true, Want: "/photos/"},
		{Name: "nested file", RequestPath: "docs", Entry: "a.txt", Want: "/docs/a.txt"},
		{Name: "nested dir", RequestPath: "docs/2024", Entry: "q1", IsDir: true, Want: "/docs/2024/q1/"},
		{Name: "space escaped", RequestPath: "my docs", Entry: "a b.txt", Want: "/my%20docs/a%20b.txt"},
		{Name: "hash escaped", RequestPath: "", Entry: "c#.md", Want: "/c%23.md"},
		{Name: "question mark escaped", RequestPath: "", Entry: "why?.txt", Want: "/why%3F.txt"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, rcindex.EntryURL(tc.RequestPath, tc.Entry, tc.IsDir))
		})
	}
}

func TestRemoteTarget(t *testing.T) {
	assert.Equal(t, "combine:", rcindex.RemoteTarget(""))
	assert.Equal(t, "combine:gdrive/docs", rcindex.RemoteTarget("gdrive/docs"))
}
