package rcindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// lsjsonRecord mirrors one object of "rclone lsjson" output.
type lsjsonRecord struct {
	Path     string    `json:"Path"`
	Name     string    `json:"Name"`
	Size     int64     `json:"Size"`
	MimeType string    `json:"MimeType"`
	ModTime  time.Time `json:"ModTime"`
	IsDir    bool      `json:"IsDir"`
}

// Normalize parses rclone lsjson output into listing entries for requestPath.
//
// An empty payload yields an empty slice and no error. A malformed payload
// yields an error wrapping ErrParse. Directories sort before files and names
// compare case-insensitively.
func Normalize(raw []byte, requestPath string) ([]ListingEntry, error) {
	entries := []ListingEntry{}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return entries, nil
	}

	var records []lsjsonRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("normalize listing: %w: %w", ErrParse, err)
	}

	requestPath = strings.Trim(requestPath, "/")

	for _, rec := range records {
		name := rec.Name
		if name == "" {
			name = rec.Path
		}
		if name == "" {
			return nil, fmt.Errorf("normalize listing: %w: record without name", ErrParse)
		}

		entry := ListingEntry{
			Name:  name,
			URL:   EntryURL(requestPath, name, rec.IsDir),
			IsDir: rec.IsDir,
			Size:  rec.Size,
		}
		if rec.IsDir {
			entry.Size = -1
		}
		if !rec.ModTime.IsZero() {
			modTime := rec.ModTime
			entry.ModTime = &modTime
		}

		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(a, b ListingEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	return entries, nil
}
