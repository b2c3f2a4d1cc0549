// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads folio settings from folio.yaml, FOLIO_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, so google.api_key
	// is read from FOLIO_GOOGLE_API_KEY.
	EnvPrefix = "FOLIO"
	FileName  = "folio"
)

type Config struct {
	DB       DBConfig
	Google   GoogleConfig
	Content  ContentConfig
	Contact  ContactConfig
	Site     ServerConfig
	Curation ServerConfig
}

type DBConfig struct {
	Path string
}

type GoogleConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	ProjectID string        `mapstructure:"project_id"`
	TraceHTTP bool          `mapstructure:"trace_http"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// ContentConfig points at the CMS holding the photo documents.
type ContentConfig struct {
	ProjectID  string `mapstructure:"project_id"`
	Dataset    string
	APIVersion string `mapstructure:"api_version"`
	Token      string
	BaseURL    string `mapstructure:"base_url"`
	Timeout    time.Duration
}

type ContactConfig struct {
	URLs    []string
	Timeout time.Duration
}

type ServerConfig struct {
	Addr string
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"db":             "db.path",
	"google-api-key": "google.api_key",
	"google-project": "google.project_id",
	"trace-http":     "google.trace_http",
	"content-token":  "content.token",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "folio.db")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.project_id", "")
	v.SetDefault("google.trace_http", false)
	v.SetDefault("google.cache_ttl", 24*time.Hour)
	v.SetDefault("content.project_id", "")
	v.SetDefault("content.dataset", "production")
	v.SetDefault("content.api_version", "2024-01-01")
	v.SetDefault("content.token", "")
	v.SetDefault("content.base_url", "")
	v.SetDefault("content.timeout", 30*time.Second)
	v.SetDefault("contact.urls", []string{})
	v.SetDefault("contact.timeout", 10*time.Second)
	v.SetDefault("site.addr", ":8081")
	v.SetDefault("curation.addr", "localhost:8080")
}

// Load reads the configuration. flags, when not nil, is bound on top of the
// file and environment through FlagKeys; flags that weren't set on the command
// line keep the lower layers. configFile forces a specific file; otherwise folio.yaml is looked
// up in the working directory and $HOME/.folio, and its absence is not an
// error.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.folio")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}

			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}
