package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	rcindexhttp "github.com/sagarc03/rcindex/http"
)

// Per-request environment variables. They are unprefixed so an existing
// deployment's environment keeps working.
var requestEnv = map[string]string{
	"username":      "USERNAME",
	"password":      "PASSWORD",
	"config_base64": "CONFIG_BASE64",
	"config_url":    "CONFIG_URL",
	"dark_mode":     "DARK_MODE",
}

// DefaultEnvFile is loaded by LoadDotEnv when no path is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win over the file. With an empty path
// ./.env is loaded if it exists.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	slog.Debug("env file loaded", "file", path)
	return nil
}

// EnvSource reads per-request settings from the process environment.
// Every call to Settings looks the variables up again, so changes to the
// environment apply to the next request.
type EnvSource struct {
	v        *viper.Viper
	validate *validator.Validate
}

func NewEnvSource() *EnvSource {
	v := viper.New()
	for key, env := range requestEnv {
		_ = v.BindEnv(key, env)
	}
	return &EnvSource{
		v:        v,
		validate: validator.New(),
	}
}

// Settings implements rcindexhttp.SettingsSource.
func (s *EnvSource) Settings() (rcindexhttp.RequestSettings, error) {
	settings := rcindexhttp.RequestSettings{
		Username:     s.v.GetString("username"),
		Password:     s.v.GetString("password"),
		ConfigBase64: strings.TrimSpace(s.v.GetString("config_base64")),
		ConfigURL:    strings.TrimSpace(s.v.GetString("config_url")),
		DarkMode:     s.v.GetBool("dark_mode"),
	}

	// A malformed URL is treated like one that cannot be fetched.
	if settings.ConfigURL != "" {
		if err := s.validate.Var(settings.ConfigURL, "url"); err != nil {
			slog.Warn("ignoring malformed CONFIG_URL, falling back", "url", settings.ConfigURL)
			settings.ConfigURL = ""
		}
	}
	return settings, nil
}
