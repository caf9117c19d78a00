package env

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var v = newViper()

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AllowEmptyEnv(true)
	vp.AutomaticEnv()
	return vp
}

// Load reads an optional .env file into the process environment and an optional
// config file (yaml, json, toml) into the lookup chain. Environment variables
// always take precedence. Missing files are not an error.
func Load(dotenvPath, configPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !isNotExist(err) {
			return err
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || isNotExist(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func lookup(key string) (string, bool) {
	if !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

func GetString(key, fallback string) string {
	val, exists := lookup(key)
	if !exists {
		return fallback
	}
	return val
}

func GetInt(key string, fallback int) int {
	if _, exists := lookup(key); !exists {
		return fallback
	}

	valInt, err := castInt(key)
	if err != nil {
		return fallback
	}
	return valInt
}

func GetInt64(key string, fallback int64) int64 {
	if _, exists := lookup(key); !exists {
		return fallback
	}
	valInt, err := castInt(key)
	if err != nil {
		return fallback
	}
	return int64(valInt)
}

func GetBool(key string, fallback bool) bool {
	val, exists := lookup(key)
	if !exists {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	val, exists := lookup(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func castInt(key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n := v.GetInt(key)
	if n == 0 && raw != "0" {
		return 0, errors.New("env: not an integer: " + key)
	}
	return n, nil
}
