// Package config loads daemon configuration from TOML files and the
// environment.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// defaultClientID is the registered application id presented during the
// IPC handshake.
const defaultClientID = "1287237467400962109"

type Config struct {
	DiscordClientID string `koanf:"discord_client_id"`

	// Last.fm scrobbling (disabled when not configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Spotify track search used to canonicalize scrobble metadata
	Spotify SpotifyConfig `koanf:"spotify"`

	// Playlist ids excluded from scrobbling, one per line
	IgnorePlaylistsFile string `koanf:"ignore_playlists_file"`

	// Map of local user id to linked Last.fm session
	SessionsFile string `koanf:"sessions_file"`
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// SpotifyConfig holds Spotify app credentials.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

func Load() (*Config, error) {
	// .env is optional; environment values override file config below
	_ = godotenv.Load()

	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		DiscordClientID:     defaultClientID,
		IgnorePlaylistsFile: "lastfm_ignore_playlists.txt",
		SessionsFile:        ".lastfm_keys.json",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("LASTFM_KEY"); v != "" {
		cfg.Lastfm.APIKey = v
	}
	if v := os.Getenv("LASTFM_SECRET"); v != "" {
		cfg.Lastfm.APISecret = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}

	cfg.IgnorePlaylistsFile = expandPath(cfg.IgnorePlaylistsFile)
	cfg.SessionsFile = expandPath(cfg.SessionsFile)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "discrobble", "config.toml"))
	}

	// ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// HasSpotifyConfig returns true if Spotify track search is configured.
func (c *Config) HasSpotifyConfig() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// playlistIDPattern extracts playlist identifiers from the ignore file,
// tolerating full "list=<id>" URL fragments.
var playlistIDPattern = regexp.MustCompile(`(?:list=)?([a-zA-Z0-9_-]+)`)

// LoadIgnorePlaylists reads the set of playlist ids excluded from
// scrobbling. A missing file is treated as an empty set.
func LoadIgnorePlaylists(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	ignore := map[string]struct{}{}
	for _, m := range playlistIDPattern.FindAllStringSubmatch(string(data), -1) {
		id := strings.TrimSpace(m[1])
		if id != "" {
			ignore[id] = struct{}{}
		}
	}
	return ignore, nil
}
