// Package track resolves an open media file into a playable track identity.
// Only playlist-staged downloads are trackable: the file name must embed an
// 11-character video id and a playlist_info.json must sit next to the file.
package track

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/lbatista/discrobble/internal/players"
)

// File extensions supported by the resolver.
const (
	ExtMP3 = ".mp3"
	ExtMP4 = ".mp4"
)

// playlistInfoFile is the companion metadata file written by the downloader.
const playlistInfoFile = "playlist_info.json"

// Activity is the presence activity kind code.
type Activity int

const (
	ActivityListening Activity = 2
	ActivityWatching  Activity = 3
)

// videoIDPattern matches an 11-character video id bounded by non-word
// characters. Needs lookaround, hence regexp2 instead of the stdlib.
var videoIDPattern = regexp2.MustCompile(`(?:^|(?<=\W))[-a-zA-Z0-9_]{11}(?:$|(?=\W))`, 0)

// Track is the identity of the currently played media file.
// Immutable once resolved; superseded wholesale on track change.
type Track struct {
	VideoID      string
	Title        string
	Artist       string
	TrackNumber  string // raw tag value, may be "n" or "n/m"
	Duration     time.Duration
	PlaylistName string
	PlaylistID   string
	Activity     Activity
	Path         string
	Player       players.Player
}

type playlistInfo struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// Resolve determines whether path is a trackable media file opened by the
// given player executable. A (nil, nil) return means the file is not
// trackable; a non-nil error means metadata extraction failed and the
// candidate should be retried on a later cycle.
func Resolve(path, executable string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ExtMP3 && ext != ExtMP4 {
		return nil, nil
	}

	videoID := ExtractVideoID(path)
	if videoID == "" {
		return nil, nil
	}

	player, ok := players.Lookup(executable)
	if !ok {
		return nil, nil
	}

	info, err := readPlaylistInfo(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}

	t := &Track{
		VideoID:      videoID,
		PlaylistName: info.Title,
		PlaylistID:   info.ID,
		Path:         path,
		Player:       player,
	}

	switch ext {
	case ExtMP3:
		err = readMP3(path, t)
	case ExtMP4:
		err = readMP4(path, t)
	}
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", filepath.Base(path), err)
	}

	return t, nil
}

// ExtractVideoID returns the 11-character video id embedded in the file
// name, or empty string if none is present.
func ExtractVideoID(path string) string {
	m, err := videoIDPattern.FindStringMatch(path)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

// readPlaylistInfo reads the companion playlist metadata from dir.
// A missing file returns (nil, nil): the media file is simply not part of a
// staged playlist download.
func readPlaylistInfo(dir string) (*playlistInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, playlistInfoFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read playlist info: %w", err)
	}

	var info playlistInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse playlist info: %w", err)
	}
	return &info, nil
}
