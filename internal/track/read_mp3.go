package track

import (
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// readMP3 fills t with title, artist, track number and duration from an MP3
// file. Activity kind is listening.
func readMP3(path string, t *Track) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag has issues with some UTF-16 encoded ID3 tags
		if err := readMP3WithID3v2Fallback(path, t); err != nil {
			return err
		}
	} else {
		t.Title = m.Title()
		t.Artist = m.Artist()
		t.TrackNumber = rawTrackNumber(path)
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		return err
	}
	t.Duration = props.Length
	t.Activity = ActivityListening
	return nil
}

// readMP3WithID3v2Fallback reads MP3 metadata using only the id3v2 library.
func readMP3WithID3v2Fallback(path string, t *Track) error {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer id3tag.Close()

	t.Title = id3tag.Title()
	t.Artist = id3tag.Artist()
	t.TrackNumber = getID3TextFrame(id3tag, "TRCK")
	return nil
}

// rawTrackNumber reads the TRCK frame verbatim so "n/m" values survive for
// the presence button label.
func rawTrackNumber(path string) string {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return ""
	}
	defer id3tag.Close()
	return getID3TextFrame(id3tag, "TRCK")
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
