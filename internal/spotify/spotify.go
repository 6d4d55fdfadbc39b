// Package spotify provides the track-search client used to resolve locally
// observed tags into canonical metadata.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	baseURL  = "https://api.spotify.com/v1"
	tokenURL = "https://accounts.spotify.com/api/token"

	searchLimit = 20
)

// Track is one canonical search candidate.
type Track struct {
	Name     string
	Artists  []string
	Album    string
	Duration time.Duration
}

// Client is a Spotify Web API client using the client-credentials flow.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client that fetches and refreshes app tokens on demand.
func New(ctx context.Context, clientID, clientSecret string) *Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	httpClient := cfg.Client(ctx)
	httpClient.Timeout = 10 * time.Second

	return &Client{httpClient: httpClient, baseURL: baseURL}
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			DurationMS int `json:"duration_ms"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search queries the track catalog by free-text string and returns the
// ranked candidates.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(searchLimit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tracks := make([]Track, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			artists = append(artists, a.Name)
		}
		tracks = append(tracks, Track{
			Name:     item.Name,
			Artists:  artists,
			Album:    item.Album.Name,
			Duration: time.Duration(item.DurationMS) * time.Millisecond,
		})
	}
	return tracks, nil
}
