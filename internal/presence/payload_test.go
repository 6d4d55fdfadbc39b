package presence

import (
	"strings"
	"testing"
	"time"

	"github.com/lbatista/discrobble/internal/players"
	"github.com/lbatista/discrobble/internal/track"
)

func TestBuildActivity(t *testing.T) {
	tr := &track.Track{
		VideoID:      "abcDEF12345",
		Title:        "Song",
		Artist:       "Artist",
		TrackNumber:  "3/12",
		Duration:     200 * time.Second,
		PlaylistName: "MyList",
		PlaylistID:   "PL123",
		Activity:     track.ActivityListening,
		Path:         "/music/Song [abcDEF12345].mp3",
		Player:       players.Player{Name: "VLC Player", Icon: "https://example.com/vlc.png"},
	}

	a := buildActivity(tr)

	if a.Details != "Song" {
		t.Errorf("details = %q", a.Details)
	}
	if a.State != "By: Artist" {
		t.Errorf("state = %q", a.State)
	}
	if a.Assets.LargeImage != "https://img.youtube.com/vi/abcDEF12345/default.jpg" {
		t.Errorf("large image = %q", a.Assets.LargeImage)
	}
	if a.Assets.LargeText != "Via: VLC Player" {
		t.Errorf("large text = %q", a.Assets.LargeText)
	}
	if a.Assets.SmallImage != "https://example.com/vlc.png" {
		t.Errorf("small image = %q", a.Assets.SmallImage)
	}
	if a.Type != 2 {
		t.Errorf("type = %d", a.Type)
	}

	if len(a.Buttons) != 2 {
		t.Fatalf("buttons = %d, want 2", len(a.Buttons))
	}
	if a.Buttons[0].Label != "Listen on Youtube (3/12)" {
		t.Errorf("watch label = %q", a.Buttons[0].Label)
	}
	if a.Buttons[0].URL != "https://www.youtube.com/watch?v=abcDEF12345&list=PL123&index=2" {
		t.Errorf("watch url = %q", a.Buttons[0].URL)
	}
	if a.Buttons[1].URL != "https://www.youtube.com/playlist?list=PL123" {
		t.Errorf("playlist url = %q", a.Buttons[1].URL)
	}
}

func TestBuildActivityWatching(t *testing.T) {
	tr := &track.Track{
		VideoID:      "abcDEF12345",
		Title:        "Clip",
		Artist:       "Artist",
		PlaylistName: "Videos",
		PlaylistID:   "PL9",
		Activity:     track.ActivityWatching,
		Player:       players.Player{Name: "PotPlayer"},
	}

	a := buildActivity(tr)

	if a.Type != 3 {
		t.Errorf("type = %d, want 3", a.Type)
	}
	if a.Buttons[0].Label != "Watch on Youtube" {
		t.Errorf("watch label = %q", a.Buttons[0].Label)
	}
	if strings.Contains(a.Buttons[0].URL, "index=") {
		t.Errorf("url should have no index without track number: %q", a.Buttons[0].URL)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		want   string
	}{
		{name: "single author", artist: "Artist", want: "Artist"},
		{name: "two authors", artist: "A, B", want: "A, B"},
		{name: "more than four truncated", artist: "A, B, C, D, E, F", want: "A, B, C, D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.artist); got != tt.want {
				t.Errorf("formatAuthors(%q) = %q, want %q", tt.artist, got, tt.want)
			}
		})
	}
}

func TestPlaylistLabel(t *testing.T) {
	tests := []struct {
		name     string
		playlist string
		want     string
	}{
		{
			name:     "short name gets prefix",
			playlist: "MyList",
			want:     "Playlist: MyList",
		},
		{
			name:     "long ascii name truncated to 25",
			playlist: "A Very Long Playlist Name Indeed",
			want:     "A Very Long Playlist Name",
		},
		{
			name:     "name with emoji truncated to 18",
			playlist: "🎵 Summer Hits 2024 Extended",
			want:     "🎵 Summer Hits 2024",
		},
		{
			name:     "mid length name kept without prefix",
			playlist: "Fourteen chars",
			want:     "Fourteen chars",
		},
		{
			name:     "thirteen chars gets prefix",
			playlist: "A Dozen Chars",
			want:     "Playlist: A Dozen Chars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := playlistLabel(tt.playlist); got != tt.want {
				t.Errorf("playlistLabel(%q) = %q, want %q", tt.playlist, got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{
			name:   "topic channel uses artist and title",
			artist: "Some Band - topic",
			title:  "Great Song",
			want:   "Some Band - topic - Great Song",
		},
		{
			name:   "release topic excluded",
			artist: "Release - topic",
			title:  "Great Song",
			want:   "release - topic - great song",
		},
		{
			name:   "topic skipped when title already starts with artist",
			artist: "Some Band - topic",
			title:  "Some Band live set recording",
			want:   "some band live set recording",
		},
		{
			name:   "long title used alone",
			artist: "Artist",
			title:  "A Reasonably Long Title",
			want:   "a reasonably long title",
		},
		{
			name:   "short title combined with artist",
			artist: "Artist",
			title:  "Short",
			want:   "artist - short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &track.Track{Artist: tt.artist, Title: tt.title}
			if got := buildQuery(tr); got != tt.want {
				t.Errorf("buildQuery(%q, %q) = %q, want %q", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}
