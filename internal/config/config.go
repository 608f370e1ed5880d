// Package config loads the service configuration from a TOML file with
// environment-variable overrides for deployment settings.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

type Config struct {
	Server  ServerConfig  `toml:"server"`
	YouTube YouTubeConfig `toml:"youtube"`
	Storage StorageConfig `toml:"storage"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type YouTubeConfig struct {
	APIKey             string   `toml:"api_key"`
	APIBase            string   `toml:"api_base"`
	ChannelID          string   `toml:"channel_id"`
	FallbackPlaylistID string   `toml:"fallback_playlist_id"`
	ShowcasePlaylists  []string `toml:"showcase_playlists"`
}

type StorageConfig struct {
	Backend  string `toml:"backend"` // memory | file | redis
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Default returns the embedded example configuration.
func Default() *Config {
	var c Config
	if err := toml.Unmarshal(exampleConf, &c); err != nil {
		panic(fmt.Sprintf("parse embedded default config: %v", err))
	}
	return &c
}

// Load reads a TOML configuration file and applies env overrides.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("CHANNEL_ID"); v != "" {
		c.YouTube.ChannelID = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
