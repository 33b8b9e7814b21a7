package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

var K = koanf.New(".")

func LoadConfig(flagSet *pflag.FlagSet, configFile string) {
	// Load from config file if provided
	if configFile != "" {
		parser, err := parserForFile(configFile)
		if err != nil {
			log.Fatal("unsupported config file format", "err", err)
		}
		if err := K.Load(file.Provider(configFile), parser); err != nil {
			log.Error("error loading config file", "file", configFile, "err", err)
		}
	}

	// Load from environment variables (prefix "UPKEEP_")
	// This will convert UPKEEP_FOO_BAR to foo.bar
	K.Load(env.Provider("UPKEEP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "UPKEEP_")), "_", ".", -1)
	}), nil)

	// Load from command-line flags (highest precedence)
	K.Load(posflag.Provider(flagSet, ".", K), nil)
}

// Validate performs the minimal startup validation exercised by the
// self-test command: the configured file, if any, must parse.
func Validate(configFile string) error {
	if configFile == "" {
		return nil
	}
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("config file not readable: %w", err)
	}
	parser, err := parserForFile(configFile)
	if err != nil {
		return err
	}
	probe := koanf.New(".")
	if err := probe.Load(file.Provider(configFile), parser); err != nil {
		return fmt.Errorf("config file does not parse: %w", err)
	}
	return nil
}

func parserForFile(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".env":
		return dotenv.Parser(), nil
	default:
		return nil, fmt.Errorf("unknown file extension: %s", ext)
	}
}
