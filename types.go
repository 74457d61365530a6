package rcindex

import (
	"time"
)

// RemoteDefinition is one [name] section of an rclone config.
type RemoteDefinition struct {
	Name   string            `json:"name" yaml:"name"`
	Type   string            `json:"type" yaml:"type"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// CompositeRemote is the section name of the synthesized combine remote.
const CompositeRemote = "combine"

// IsComposite reports whether the remote aggregates other remotes.
func (r RemoteDefinition) IsComposite() bool {
	return r.Name == CompositeRemote || r.Type == CompositeRemote
}

// Binary is a handle to an installed rclone executable.
type Binary struct {
	Path string
}

// ConfigFile is a handle to a synthesized rclone config on disk.
type ConfigFile struct {
	Path    string
	Remotes []RemoteDefinition
}

// ConfigSource carries the out-of-band config inputs, in priority order.
type ConfigSource struct {
	Base64 string
	URL    string
}

type CompletionReason string

const (
	ReasonExited   CompletionReason = "exited"
	ReasonTimedOut CompletionReason = "timedOut"
	ReasonKilled   CompletionReason = "killed"
)

// ProcessResult is the outcome of a subprocess that ran to completion.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Reason   CompletionReason
}

// Succeeded reports whether Stdout can be trusted.
func (r ProcessResult) Succeeded() bool {
	return r.Reason == ReasonExited && r.ExitCode == 0
}

// ListingEntry is one child of a listed directory.
// Size is -1 for directories.
type ListingEntry struct {
	Name    string     `json:"name" yaml:"name"`
	URL     string     `json:"url" yaml:"url"`
	IsDir   bool       `json:"is_dir" yaml:"is_dir"`
	Size    int64      `json:"size" yaml:"size"`
	ModTime *time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
}

type ListQuery struct {
	Path   string
	Source ConfigSource
}

type Listing struct {
	Path    string         `json:"path" yaml:"path"`
	Entries []ListingEntry `json:"entries" yaml:"entries"`
}

// TotalSize sums the sizes of the file entries.
func (l Listing) TotalSize() int64 {
	var total int64
	for _, e := range l.Entries {
		if !e.IsDir && e.Size > 0 {
			total += e.Size
		}
	}
	return total
}
