// Package namespace writes the rclone config used for listings and makes
// sure it carries a composite [combine] remote aggregating every other
// remote under one tree, keyed by remote name.
package namespace

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/ini.v1"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/filesystem"
)

const (
	// DefaultConfigName is the file name of the config in the scratch dir.
	DefaultConfigName = "rclone.conf"

	// DefaultFetchTimeout bounds the config download.
	DefaultFetchTimeout = 10 * time.Second

	// maxConfigSize caps a downloaded config.
	maxConfigSize = 1 << 20
)

// Placeholder is written when no config is supplied. The memory backend
// lists as empty, so the index renders without any real remote.
const Placeholder = "[memory]\ntype = memory\n"

// Config holds synthesizer settings.
type Config struct {
	ScratchDir string
	ConfigName string
}

// Synthesizer owns the lifecycle of the rclone config file.
// The file is never cached in memory; concurrent calls may rewrite it
// redundantly, and every write is an atomic rename.
type Synthesizer struct {
	dir        string
	name       string
	httpClient *resty.Client
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithHTTPClient sets a custom HTTP client for CONFIG_URL downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Synthesizer) {
		s.httpClient = resty.NewWithClient(client)
	}
}

func New(cfg Config, opts ...Option) (*Synthesizer, error) {
	if cfg.ScratchDir == "" {
		return nil, fmt.Errorf("new synthesizer: %w: scratch dir cannot be empty", rcindex.ErrInvalidInput)
	}

	s := &Synthesizer{
		dir:        cfg.ScratchDir,
		name:       cfg.ConfigName,
		httpClient: resty.New().SetTimeout(DefaultFetchTimeout),
	}
	if s.name == "" {
		s.name = DefaultConfigName
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Path returns the location of the config file.
func (s *Synthesizer) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Ensure establishes the config text and appends the composite remote when
// missing. Text is chosen in priority order:
//
//  1. src.Base64, decoded and written verbatim (decode failure is ErrConfig)
//  2. src.URL, downloaded and written; any failure logs and falls through
//  3. the config already on disk, or Placeholder when there is none
func (s *Synthesizer) Ensure(ctx context.Context, src rcindex.ConfigSource) (rcindex.ConfigFile, error) {
	store, err := filesystem.Open(s.dir)
	if err != nil {
		return rcindex.ConfigFile{}, fmt.Errorf("ensure config: %w: %w", rcindex.ErrConfig, err)
	}
	defer func() { _ = store.Close() }()

	text, changed, err := s.baseText(ctx, store, src)
	if err != nil {
		return rcindex.ConfigFile{}, fmt.Errorf("ensure config: %w", err)
	}

	remotes := ParseRemotes(text)

	if !hasComposite(remotes) {
		text = appendSection(text, CompositeSection(remotes))
		remotes = append(remotes, rcindex.RemoteDefinition{
			Name:   rcindex.CompositeRemote,
			Type:   rcindex.CompositeRemote,
			Params: map[string]string{"upstreams": Upstreams(remotes)},
		})
		changed = true
	}

	if changed {
		if err := s.write(ctx, store, text); err != nil {
			return rcindex.ConfigFile{}, fmt.Errorf("ensure config: %w", err)
		}
	}

	return rcindex.ConfigFile{Path: s.Path(), Remotes: remotes}, nil
}

// baseText returns the config text before composite synthesis and whether it
// differs from what is on disk.
func (s *Synthesizer) baseText(ctx context.Context, store *filesystem.Store, src rcindex.ConfigSource) ([]byte, bool, error) {
	if src.Base64 != "" {
		text, err := decodeBase64(src.Base64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: decode base64 config: %w", rcindex.ErrConfig, err)
		}
		return text, true, nil
	}

	if src.URL != "" {
		text, err := s.fetch(ctx, src.URL)
		if err == nil {
			return text, true, nil
		}
		// TODO: confirm with product whether a failed CONFIG_URL should fail the request instead of falling back.
		slog.Warn("config url unavailable, falling back", "url", src.URL, "err", err)
	}

	text, err := store.ReadFile(ctx, s.name)
	if err == nil {
		return text, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("%w: read config: %w", rcindex.ErrConfig, err)
	}

	return []byte(Placeholder), true, nil
}

func (s *Synthesizer) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rcindex.ErrFetch, err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s returned %s", rcindex.ErrFetch, url, resp.Status())
	}

	text, err := io.ReadAll(io.LimitReader(body, maxConfigSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", rcindex.ErrFetch, err)
	}
	return text, nil
}

// write atomically replaces the config file.
func (s *Synthesizer) write(ctx context.Context, store *filesystem.Store, text []byte) error {
	res, err := store.Write(ctx, s.name, bytes.NewReader(text), 0o600)
	if err != nil {
		return fmt.Errorf("%w: write config: %w", rcindex.ErrConfig, err)
	}
	slog.Debug("rclone config written", "path", store.Path(s.name), "bytes", res.BytesWritten, "sha256", res.Checksum)
	return nil
}

// ParseRemotes returns the remotes of an rclone config in header order.
//
// Every "[name]" header yields exactly one remote, whatever its name, and a
// repeated header merges into the first. Each section body is parsed on its
// own, so a body ini cannot read only loses that remote's params to a plain
// "key = value" split.
func ParseRemotes(text []byte) []rcindex.RemoteDefinition {
	var names []string
	bodies := make(map[string]*bytes.Buffer)

	var current *bytes.Buffer
	for _, line := range bytes.Split(text, []byte("\n")) {
		if name, ok := sectionHeader(line); ok {
			if _, seen := bodies[name]; !seen {
				names = append(names, name)
				bodies[name] = &bytes.Buffer{}
			}
			current = bodies[name]
			continue
		}
		if current != nil {
			current.Write(line)
			current.WriteByte('\n')
		}
	}

	remotes := make([]rcindex.RemoteDefinition, 0, len(names))
	for _, name := range names {
		params := sectionParams(name, bodies[name].Bytes())
		typ := params["type"]
		delete(params, "type")

		remotes = append(remotes, rcindex.RemoteDefinition{
			Name:   name,
			Type:   typ,
			Params: params,
		})
	}
	return remotes
}

// sectionHeader reports whether line is a "[name]" header.
func sectionHeader(line []byte) (string, bool) {
	line = bytes.TrimSpace(line)
	if len(line) < 3 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	name := strings.TrimSpace(string(line[1 : len(line)-1]))
	return name, name != ""
}

func sectionParams(name string, body []byte) map[string]string {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		SkipUnrecognizableLines: true,
	}, body)
	if err != nil {
		slog.Debug("section not parseable as ini, splitting lines", "remote", name, "err", err)
		return plainParams(body)
	}

	params := make(map[string]string)
	for _, key := range f.Section(ini.DefaultSection).Keys() {
		params[key.Name()] = key.Value()
	}
	return params
}

// plainParams splits "key = value" lines at the first '='.
func plainParams(body []byte) map[string]string {
	params := make(map[string]string)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			params[key] = strings.TrimSpace(value)
		}
	}
	return params
}

// Upstreams renders the combine upstreams value, "a=a: b=b:", for every
// non-composite remote in order.
func Upstreams(remotes []rcindex.RemoteDefinition) string {
	parts := make([]string, 0, len(remotes))
	for _, r := range remotes {
		if r.IsComposite() {
			continue
		}
		parts = append(parts, r.Name+"="+r.Name+":")
	}
	return strings.Join(parts, " ")
}

// CompositeSection renders the [combine] section for remotes.
func CompositeSection(remotes []rcindex.RemoteDefinition) string {
	var b strings.Builder
	b.WriteString("[" + rcindex.CompositeRemote + "]\n")
	b.WriteString("type = " + rcindex.CompositeRemote + "\n")
	b.WriteString("upstreams = " + Upstreams(remotes) + "\n")
	return b.String()
}

func hasComposite(remotes []rcindex.RemoteDefinition) bool {
	for _, r := range remotes {
		if r.Name == rcindex.CompositeRemote {
			return true
		}
	}
	return false
}

// appendSection appends section after text, separated by a blank line.
func appendSection(text []byte, section string) []byte {
	var b bytes.Buffer
	b.Write(text)
	if len(text) > 0 && !bytes.HasSuffix(text, []byte("\n")) {
		b.WriteByte('\n')
	}
	if len(bytes.TrimSpace(text)) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(section)
	return b.Bytes()
}

// decodeBase64 accepts padded and unpadded standard encoding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	text, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return text, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}
