// Package lastfm wraps the Last.fm API for scrobble submission and the
// desktop account-linking flow.
package lastfm

import (
	"fmt"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // when playback started
}

// Client wraps the Last.fm API. Session keys are supplied per call because
// scrobbles are attributed to whichever user is logged into the local
// client, not to a single account.
type Client struct {
	api    *lastfm.Api
	apiKey string
}

// New creates a Last.fm client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// Scrobble submits a track play on behalf of the given session.
func (c *Client) Scrobble(track ScrobbleTrack, sessionKey string) error {
	c.api.SetSession(sessionKey)

	params := lastfm.P{
		"artist":    track.Artist,
		"track":     track.Track,
		"timestamp": track.Timestamp.Unix(),
	}
	if track.Album != "" {
		params["album"] = track.Album
	}
	if track.Duration > 0 {
		params["duration"] = int(track.Duration.Seconds())
	}

	if _, err := c.api.Track.Scrobble(params); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}
