package track

import (
	"os"
	"strconv"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// readMP4 fills t with title, artist, track number and duration from an MP4
// container. Duration comes from probing the stream properties. Activity
// kind is watching.
func readMP4(path string, t *Track) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag can't parse some ffmpeg-created MP4 atoms
		if err := readMP4WithTaglib(path, t); err != nil {
			return err
		}
	} else {
		t.Title = m.Title()
		t.Artist = m.Artist()
		t.TrackNumber = formatTrackPair(m.Track())
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		return err
	}
	t.Duration = props.Length
	t.Activity = ActivityWatching
	return nil
}

// readMP4WithTaglib reads MP4 metadata using TagLib as fallback.
func readMP4WithTaglib(path string, t *Track) error {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return err
	}

	t.Title = firstTag(rawTags, taglib.Title)
	t.Artist = firstTag(rawTags, taglib.Artist)
	t.TrackNumber = firstTag(rawTags, taglib.TrackNumber)
	return nil
}

func firstTag(tags map[string][]string, key string) string {
	if values, ok := tags[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// formatTrackPair renders dhowden's (number, total) pair back into the raw
// "n" or "n/m" tag form.
func formatTrackPair(num, total int) string {
	if num == 0 {
		return ""
	}
	if total > 0 {
		return strconv.Itoa(num) + "/" + strconv.Itoa(total)
	}
	return strconv.Itoa(num)
}
