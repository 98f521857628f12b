package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFileVar names the variable that points at a .env file when no path is
// passed on the command line.
const EnvFileVar = "MOVIESEARCH_ENV_FILE"

// envFilePath picks the .env file: the explicit path, then $MOVIESEARCH_ENV_FILE,
// then .env in the working directory. explicit reports whether the caller
// asked for this file, in which case it must exist.
func envFilePath(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if fromEnv := os.Getenv(EnvFileVar); fromEnv != "" {
		return fromEnv, true
	}
	return ".env", false
}

// LoadDotEnv exports the variables of a .env file into the process
// environment without overriding variables that are already set. Only the
// implicit ./.env may be missing.
func LoadDotEnv(path string) error {
	path, explicit := envFilePath(path)
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	for key, value := range values {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// LoadConfig builds the AppConfig from the .env file and the environment.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, fmt.Errorf("process environment: %w", err)
	}
	return envCfg.Normalize().ToAppConfig(), nil
}
