package http

import (
	"context"

	"github.com/sagarc03/rcindex"
)

// RequestSettings are the values read from the environment for one request.
type RequestSettings struct {
	Username     string
	Password     string
	ConfigBase64 string
	ConfigURL    string
	DarkMode     bool
}

// AuthEnabled reports whether basic auth applies. Both a username and a
// password must be configured.
func (s RequestSettings) AuthEnabled() bool {
	return s.Username != "" && s.Password != ""
}

// Source returns the out-of-band rclone config inputs.
func (s RequestSettings) Source() rcindex.ConfigSource {
	return rcindex.ConfigSource{
		Base64: s.ConfigBase64,
		URL:    s.ConfigURL,
	}
}

// SettingsSource provides RequestSettings. It is called once per request.
type SettingsSource interface {
	Settings() (RequestSettings, error)
}

// StaticSettings is a SettingsSource that always returns the same values.
type StaticSettings RequestSettings

func (s StaticSettings) Settings() (RequestSettings, error) {
	return RequestSettings(s), nil
}

type settingsKey struct{}

func withSettings(ctx context.Context, s RequestSettings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// SettingsFromContext returns the settings stored by SettingsMiddleware, or
// the zero value when there are none.
func SettingsFromContext(ctx context.Context) RequestSettings {
	s, _ := ctx.Value(settingsKey{}).(RequestSettings)
	return s
}
