// Package config loads process settings from the environment and studio
// tunables from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fabfab/portfolio-agent/retrieval"
)

type Config struct {
	Addr             string        `env:"STUDIO_ADDR" envDefault:":8080"`
	KnowledgeBaseDir string        `env:"KNOWLEDGE_BASE_DIR" envDefault:"app_data/knowledge_base"`
	RootFiles        []string      `env:"KNOWLEDGE_BASE_ROOT_FILES" envSeparator:","`
	StudioFile       string        `env:"STUDIO_CONFIG"`
	PostgresDSN      string        `env:"POSTGRES_DSN"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Log              LogConfig
	Studio           Studio
}

// LogConfig enables a rotating log file in addition to the console.
type LogConfig struct {
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Studio holds the retrieval tunables.
type Studio struct {
	MaxResults         int `yaml:"max_results"`
	MinQueryLength     int `yaml:"min_query_length"`
	SnippetRadiusChars int `yaml:"snippet_radius_chars"`
}

func DefaultStudio() Studio {
	return Studio{
		MaxResults:         retrieval.DefaultMaxResults,
		MinQueryLength:     retrieval.DefaultMinQueryLength,
		SnippetRadiusChars: retrieval.DefaultSnippetRadius,
	}
}

func (s Studio) RetrievalOptions() retrieval.Options {
	return retrieval.Options{
		MaxResults:     s.MaxResults,
		MinQueryLength: s.MinQueryLength,
		SnippetRadius:  s.SnippetRadiusChars,
	}
}

// LoadEnvFile exports the variables of a dotenv file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the process configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	studio, err := LoadStudio(cfg.StudioFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Studio = studio

	return cfg, nil
}

// LoadStudio reads studio tunables from a YAML file. An empty path returns
// the defaults; missing keys keep their default value.
func LoadStudio(path string) (Studio, error) {
	studio := DefaultStudio()
	if path == "" {
		return studio, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Studio{}, fmt.Errorf("read studio config: %w", err)
	}

	var parsed Studio
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Studio{}, fmt.Errorf("parse studio config %s: %w", path, err)
	}
	if parsed.MaxResults < 0 || parsed.MinQueryLength < 0 || parsed.SnippetRadiusChars < 0 {
		return Studio{}, fmt.Errorf("studio config %s: values must not be negative", path)
	}

	if parsed.MaxResults > 0 {
		studio.MaxResults = parsed.MaxResults
	}
	if parsed.MinQueryLength > 0 {
		studio.MinQueryLength = parsed.MinQueryLength
	}
	if parsed.SnippetRadiusChars > 0 {
		studio.SnippetRadiusChars = parsed.SnippetRadiusChars
	}
	return studio, nil
}
