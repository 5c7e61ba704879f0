package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/addressbook/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name declared on Config.
const EnvPrefix = "ADDRESSBOOK_"

// parseEnv overlays Config with ADDRESSBOOK_* environment variables.
//
// A dotenv file is loaded first: the one named by -env-file, or ".env" in the
// working directory when present. Variables already set in the process
// environment win over the file. Only variables that are actually set
// change the config. Malformed values panic, mirroring parseJson/parseFlags.
func parseEnv(config *Config) {
	if err := loadDotenv(flagx.EnvFileFlag()); err != nil {
		panic(err)
	}
	if err := ParseEnv(config); err != nil {
		panic(err)
	}
}

// ParseEnv loads ADDRESSBOOK_* variables into target.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func loadDotenv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
