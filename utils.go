package rcindex

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// CleanRequestPath turns a browsable request path like "/", "/docs/", or
// "a//b/../c" into the slash-separated form rclone expects beneath the
// composite remote: no leading or trailing slash, "" for the root.
//
// Dot-dot segments cannot climb above the root. Paths that are not valid
// UTF-8 or contain control characters are rejected with ErrInvalidInput.
func CleanRequestPath(p string) (string, error) {
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("clean path: %w: invalid utf-8", ErrInvalidInput)
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("clean path: %w: control character", ErrInvalidInput)
		}
	}

	p = strings.TrimSpace(p)
	if p == "" || p == "/" || p == "." {
		return "", nil
	}

	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "." {
		return "", nil
	}
	return p, nil
}

// EntryURL builds the browsable URL of a child entry.
// One separating slash is added only when requestPath is non-empty and
// directories get a trailing slash. The result is percent-escaped.
func EntryURL(requestPath, name string, isDir bool) string {
	raw := "/"
	if requestPath != "" {
		raw += requestPath + "/"
	}
	raw += name
	if isDir {
		raw += "/"
	}
	return (&url.URL{Path: raw}).EscapedPath()
}

// RemoteTarget returns the rclone remote path for a cleaned path inside the
// composite namespace, e.g. "combine:docs".
func RemoteTarget(cleanPath string) string {
	return CompositeRemote + ":" + cleanPath
}
