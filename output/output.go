// Package output formats CLI results as text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/rcindex"
)

// Formats accepted by NewFormatter.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formatter formats results for output.
type Formatter interface {
	FormatListing(w io.Writer, listing *rcindex.Listing) error
	FormatRemotes(w io.Writer, remotes []rcindex.RemoteDefinition) error
	FormatBinary(w io.Writer, bin rcindex.Binary) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the formatter for format. An empty format is human.
func NewFormatter(format string, quiet bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatHuman:
		return &HumanFormatter{Quiet: quiet}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML, "yml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("output format %q: %w", format, rcindex.ErrInvalidInput)
	}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatListing prints one row per entry followed by a summary.
func (f *HumanFormatter) FormatListing(w io.Writer, listing *rcindex.Listing) error {
	if len(listing.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "No entries found")
		return nil
	}

	// Calculate column widths
	maxNameLen := 4 // "NAME"
	for i := range listing.Entries {
		if n := len(displayName(&listing.Entries[i])); n > maxNameLen {
			maxNameLen = n
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "MODIFIED")
		_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))
	}

	var dirs int
	for i := range listing.Entries {
		e := &listing.Entries[i]
		name := displayName(e)
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		size := "-"
		if e.IsDir {
			dirs++
		} else if e.Size >= 0 {
			size = humanize.IBytes(uint64(e.Size))
		}

		modified := ""
		if e.ModTime != nil {
			modified = e.ModTime.UTC().Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, name, size, modified)
	}

	if !f.Quiet {
		files := len(listing.Entries) - dirs
		_, _ = fmt.Fprintf(w, "\n%d folder(s), %d file(s) (%s total)\n",
			dirs, files, humanize.IBytes(uint64(listing.TotalSize())))
	}

	return nil
}

func displayName(e *rcindex.ListingEntry) string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// FormatRemotes prints the remotes of the synthesized config.
func (f *HumanFormatter) FormatRemotes(w io.Writer, remotes []rcindex.RemoteDefinition) error {
	if len(remotes) == 0 {
		_, _ = fmt.Fprintln(w, "No remotes configured")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range remotes {
		if len(remotes[i].Name) > maxNameLen {
			maxNameLen = len(remotes[i].Name)
		}
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, "NAME", "TYPE")
		_, _ = fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10))
	}

	for i := range remotes {
		r := &remotes[i]
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, r.Name, r.Type)
		if r.IsComposite() && !f.Quiet {
			_, _ = fmt.Fprintf(w, "  upstreams: %s\n", r.Params["upstreams"])
		}
	}
	return nil
}

// FormatBinary prints where the binary lives.
func (f *HumanFormatter) FormatBinary(w io.Writer, bin rcindex.Binary) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, bin.Path)
		return nil
	}
	_, _ = fmt.Fprintf(w, "rclone ready: %s\n", bin.Path)
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatListing(w io.Writer, listing *rcindex.Listing) error {
	return writeJSON(w, listing)
}

func (f *JSONFormatter) FormatRemotes(w io.Writer, remotes []rcindex.RemoteDefinition) error {
	return writeJSON(w, remotesDoc{Remotes: nonNil(remotes)})
}

func (f *JSONFormatter) FormatBinary(w io.Writer, bin rcindex.Binary) error {
	return writeJSON(w, binaryDoc{Path: bin.Path})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, errorDoc{Error: err.Error()})
}

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatListing(w io.Writer, listing *rcindex.Listing) error {
	return writeYAML(w, listing)
}

func (f *YAMLFormatter) FormatRemotes(w io.Writer, remotes []rcindex.RemoteDefinition) error {
	return writeYAML(w, remotesDoc{Remotes: nonNil(remotes)})
}

func (f *YAMLFormatter) FormatBinary(w io.Writer, bin rcindex.Binary) error {
	return writeYAML(w, binaryDoc{Path: bin.Path})
}

func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return writeYAML(w, errorDoc{Error: err.Error()})
}

type remotesDoc struct {
	Remotes []rcindex.RemoteDefinition `json:"remotes" yaml:"remotes"`
}

type binaryDoc struct {
	Path string `json:"path" yaml:"path"`
}

type errorDoc struct {
	Error string `json:"error" yaml:"error"`
}

func nonNil(remotes []rcindex.RemoteDefinition) []rcindex.RemoteDefinition {
	if remotes == nil {
		return []rcindex.RemoteDefinition{}
	}
	return remotes
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
