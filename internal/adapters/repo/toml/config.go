package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName   = "config"
	configType   = "toml"
	envPrefix    = "RT"
	appConfigDir = ".reaction-tally"

	SettingsPathKey = "settings.path"
	SecretsDirKey   = "secrets.dir"
	LogLevelKey     = "log.level"
	APIBaseURLKey   = "discord.api_base_url"

	settingsFile = "settings.toml"
	secretsDir   = "secrets"
)

// ConfigDir returns ~/.reaction-tally.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, appConfigDir), nil
}

// ConfigureViper points cfg at ~/.reaction-tally/config.toml, registers the
// defaults and RT_ environment overrides, and reads the file if present.
func ConfigureViper(cfg *viper.Viper) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(dir)
	cfg.SetDefault(SettingsPathKey, filepath.Join(dir, settingsFile))
	cfg.SetDefault(SecretsDirKey, filepath.Join(dir, secretsDir))
	cfg.SetDefault(LogLevelKey, "warn")
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}
