package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-core-fx/config"
)

type http struct {
	Address     string   `koanf:"address"`
	ProxyHeader string   `koanf:"proxy_header"`
	Proxies     []string `koanf:"proxies"`

	OpenAPI openAPIConfig `koanf:"openapi"`
}

type openAPIConfig struct {
	Enabled    bool   `koanf:"enabled"`
	PublicHost string `koanf:"public_host"`
	PublicPath string `koanf:"public_path"`
}

type storageConfig struct {
	DataDir    string        `koanf:"data_dir"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

type gitConfig struct {
	Binary       string `koanf:"binary"`
	FallbackUser string `koanf:"fallback_user"`
}

type svnConfig struct {
	Binary string `koanf:"binary"`
}

type preferencesConfig struct {
	Path string `koanf:"path"`
}

type historyConfig struct {
	MaxEntries int `koanf:"max_entries"`
}

type Config struct {
	HTTP http `koanf:"http"`

	Storage     storageConfig     `koanf:"storage"`
	Git         gitConfig         `koanf:"git"`
	Svn         svnConfig         `koanf:"svn"`
	Preferences preferencesConfig `koanf:"preferences"`
	History     historyConfig     `koanf:"history"`
}

// Home is the per-user directory holding preferences, data and logs.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pm"
	}
	return filepath.Join(home, ".pm")
}

func Default() Config {
	return Config{
		HTTP: http{
			Address:     "127.0.0.1:3000",
			ProxyHeader: "X-Forwarded-For",
			Proxies:     []string{},
			OpenAPI: openAPIConfig{
				Enabled: true,
			},
		},

		Storage: storageConfig{
			DataDir:    filepath.Join(Home(), "data"),
			GCInterval: 10 * time.Minute,
		},

		Git: gitConfig{
			Binary:       "git",
			FallbackUser: "git",
		},

		Svn: svnConfig{
			Binary: "svn",
		},

		Preferences: preferencesConfig{
			Path: filepath.Join(Home(), "config.json"),
		},

		History: historyConfig{
			MaxEntries: 100,
		},
	}
}

func New() (Config, error) {
	cfg := Default()

	options := []config.Option{}
	if yamlPath := os.Getenv("CONFIG_PATH"); yamlPath != "" {
		options = append(options, config.WithLocalYAML(yamlPath))
	}

	if err := config.Load(&cfg, options...); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
