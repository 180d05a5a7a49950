package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance configured for QBACKEND_* environment
// variables and an optional config file.
//
// Search order when configFile is empty:
//   - $HOME/.qbackend/config.(yaml|yml|json|toml|...)
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("QBACKEND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("default-backend", "qasm")
	v.SetDefault("provider", "local")

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v, nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(home, ".qbackend"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}

	return v, nil
}

// FromViper extracts the flat Config the CLI works with.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		DefaultBackend:    strings.TrimSpace(v.GetString("default-backend")),
		Provider:          strings.TrimSpace(v.GetString("provider")),
		MetadataFile:      strings.TrimSpace(v.GetString("metadata-file")),
		NativeSimPath:     strings.TrimSpace(v.GetString("native-sim-path")),
		NativeMinMemoryMB: v.GetInt("native-min-memory-mb"),
	}
}
