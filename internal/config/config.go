// Package config loads the Dhatukala server configuration with viper.
// Values resolve in the usual order: explicit config file, then DHATUKALA_*
// environment variables, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file path. An empty path falls
// back to dhatukala.yaml in the working directory or /etc/dhatukala, and a
// missing fallback file is not an error; defaults still apply.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("DHATUKALA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("dhatukala")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/dhatukala")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "dhatukala.db")

	v.SetDefault("modules.auth.token_ttl", "12h")
	v.SetDefault("modules.auth.login_rate", 5)
	v.SetDefault("modules.auth.login_burst", 10)
	v.SetDefault("modules.exports.output_dir", "catalogues")
}
