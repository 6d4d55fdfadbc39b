package presence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/lbatista/discrobble/internal/discord"
	"github.com/lbatista/discrobble/internal/track"
)

const (
	thumbnailURLFormat = "https://img.youtube.com/vi/%s/default.jpg"
	watchURLFormat     = "https://www.youtube.com/watch?v=%s&list=%s"
	playlistURLFormat  = "https://www.youtube.com/playlist?list=%s"

	// maxAuthors bounds the formatted author list in the state line.
	maxAuthors = 4

	// Button labels have a fixed display budget; double-width (emoji-class)
	// characters consume roughly twice the budget of a normal one.
	playlistLabelLimit     = 25
	playlistLabelLimitWide = 18

	// Truncations at or below this length read better with a prefix.
	playlistLabelPrefixLen = 13
)

// buildActivity renders the track into the presence payload.
func buildActivity(t *track.Track) discord.Activity {
	watchLabel := "Listen on Youtube"
	if t.Activity == track.ActivityWatching {
		watchLabel = "Watch on Youtube"
	}
	watchURL := fmt.Sprintf(watchURLFormat, t.VideoID, t.PlaylistID)

	if t.TrackNumber != "" {
		if idx, err := strconv.Atoi(strings.SplitN(t.TrackNumber, "/", 2)[0]); err == nil {
			watchURL += fmt.Sprintf("&index=%d", idx-1)
		}
		watchLabel += fmt.Sprintf(" (%s)", t.TrackNumber)
	}

	return discord.Activity{
		Details: t.Title,
		State:   "By: " + formatAuthors(t.Artist),
		Assets: &discord.Assets{
			LargeImage: fmt.Sprintf(thumbnailURLFormat, t.VideoID),
			LargeText:  "Via: " + t.Player.Name,
			SmallImage: t.Player.Icon,
		},
		Type: int(t.Activity),
		Buttons: []discord.Button{
			{Label: watchLabel, URL: watchURL},
			{Label: playlistLabel(t.PlaylistName), URL: fmt.Sprintf(playlistURLFormat, t.PlaylistID)},
		},
	}
}

// formatAuthors joins at most maxAuthors comma-separated artists.
func formatAuthors(artist string) string {
	authors := strings.Split(artist, ", ")
	if len(authors) > maxAuthors {
		authors = authors[:maxAuthors]
	}
	return strings.Join(authors, ", ")
}

// playlistLabel truncates the playlist name to the button label budget.
func playlistLabel(name string) string {
	limit := playlistLabelLimit
	if containsWideRune(name) {
		limit = playlistLabelLimitWide
	}

	runes := []rune(name)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	truncated := string(runes)

	if len(runes) > playlistLabelPrefixLen {
		return truncated
	}
	return "Playlist: " + truncated
}

func containsWideRune(s string) bool {
	for _, r := range s {
		if runewidth.RuneWidth(r) >= 2 {
			return true
		}
	}
	return false
}

// topicSuffix marks auto-generated artist channels whose name is usually
// the real artist.
const topicSuffix = " - topic"

// buildQuery derives the free-text search query for scrobble resolution.
func buildQuery(t *track.Track) string {
	author := t.Artist
	title := t.Title

	if strings.HasSuffix(author, topicSuffix) &&
		!strings.HasSuffix(author, "Release"+topicSuffix) &&
		!strings.HasPrefix(title, strings.TrimSuffix(author, topicSuffix)) {
		return author + " - " + title
	}

	if len([]rune(title)) > 12 {
		return strings.ToLower(title)
	}
	return strings.ToLower(author + " - " + title)
}
