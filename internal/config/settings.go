package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding settings.
const EnvPrefix = "VININSIGHT"

// DefaultAPIBase is the auto.dev API root used for VIN decoding.
const DefaultAPIBase = "https://auto.dev/api"

// Settings holds the resolved application settings.
type Settings struct {
	// APIBase is the decode service root. Requests go to <APIBase>/vin/<vin>.
	APIBase string `mapstructure:"api-base"`

	// VehiclesURL is the tree endpoint serving the vehicle list.
	VehiclesURL string `mapstructure:"vehicles-url"`

	// VehiclesFile is a local YAML/JSON vehicle list, used when VehiclesURL is empty.
	VehiclesFile string `mapstructure:"vehicles-file"`

	// CredentialsFile overrides the credential registry location.
	CredentialsFile string `mapstructure:"credentials-file"`

	// LogLevel enables logging when non-empty ('debug', 'info', 'warn', 'error').
	LogLevel string `mapstructure:"log-level"`

	// LogFile receives log output while the TUI owns the terminal.
	LogFile string `mapstructure:"log-file"`
}

// NewSettings returns settings with default values.
func NewSettings() *Settings {
	return &Settings{
		APIBase: DefaultAPIBase,
	}
}

// AddFlags binds command-line flags to the Settings fields.
func (s *Settings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.APIBase, "api-base", s.APIBase, "Root URL of the VIN decode API.")
	fs.StringVar(&s.VehiclesURL, "vehicles-url", s.VehiclesURL, "Tree endpoint serving the vehicle list.")
	fs.StringVar(&s.VehiclesFile, "vehicles-file", s.VehiclesFile, "Local YAML or JSON vehicle list.")
	fs.StringVar(&s.CredentialsFile, "credentials-file", s.CredentialsFile, "Path of the credential registry.")

	usage := "Enable logging at this level (e.g., 'debug', 'info', 'warn', 'error')."
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, usage)
	fs.StringVar(&s.LogFile, "log-file", s.LogFile, "Log destination while the interactive UI is running.")
}

// LoadSettings resolves settings from flags, environment, a settings file and defaults,
// in that order of precedence.
//
// An empty file selects the default settings path, which may be absent.
// An explicit file must exist.
func LoadSettings(fs *pflag.FlagSet, file string) (*Settings, error) {
	v := viper.New()

	defaults := NewSettings()
	v.SetDefault("api-base", defaults.APIBase)
	v.SetDefault("vehicles-url", defaults.VehiclesURL)
	v.SetDefault("vehicles-file", defaults.VehiclesFile)
	v.SetDefault("credentials-file", defaults.CredentialsFile)
	v.SetDefault("log-level", defaults.LogLevel)
	v.SetDefault("log-file", defaults.LogFile)

	explicit := file != ""
	if !explicit {
		p, err := GetSettingsPath()
		if err == nil {
			file = p
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case !explicit && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)):
				// No settings file: defaults, env and flags only.
			default:
				return nil, fmt.Errorf("invalid settings file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("could not bind flags: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.APIBase = strings.TrimRight(strings.TrimSpace(s.APIBase), "/")
	if s.APIBase == "" {
		return nil, fmt.Errorf("api-base must not be empty")
	}

	return &s, nil
}
