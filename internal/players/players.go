// Package players maps known media-player executables to display metadata.
package players

import "strings"

// Player identifies a known media player for presence display.
type Player struct {
	Name string
	Icon string
}

// registry maps lowercased executable names to player identities.
//
// The legacy Windows media players are intentionally absent: they
// periodically open every music file on disk for indexing, which makes the
// open-file heuristic report the wrong active track.
var registry = map[string]Player{
	"potplayermini64.exe": {
		Name: "PotPlayer (x64)",
		Icon: "https://upload.wikimedia.org/wikipedia/commons/e/e0/PotPlayer_logo_%282017%29.png",
	},
	"potplayermini.exe": {
		Name: "PotPlayer",
		Icon: "https://upload.wikimedia.org/wikipedia/commons/e/e0/PotPlayer_logo_%282017%29.png",
	},
	"mpc-hc64.exe": {
		Name: "Media Player Classic HC-x64",
		Icon: "https://upload.wikimedia.org/wikipedia/commons/7/76/Media_Player_Classic_logo.png",
	},
	"mpc-hc.exe": {
		Name: "Media Player Classic HC",
		Icon: "https://upload.wikimedia.org/wikipedia/commons/7/76/Media_Player_Classic_logo.png",
	},
	"foobar2000.exe": {
		Name: "foobar2000",
		Icon: "https://i.sstatic.net/JowsQ.jpg",
	},
	"vlc.exe": {
		Name: "VLC Player",
		Icon: "https://cdn1.iconfinder.com/data/icons/metro-ui-dock-icon-set--icons-by-dakirby/512/VLC_Media_Player.png",
	},
	"winamp.exe": {
		Name: "Winamp",
		Icon: "https://iili.io/dsKTaUB.md.png",
	},
	"aimp.exe": {
		Name: "AIMP",
		Icon: "https://iili.io/dsKpuSV.md.png",
	},
	"musicbee.exe": {
		Name: "MusicBee",
		Icon: "https://iili.io/dsf9KQe.png",
	},
	"mediamonkeyengine.exe": {
		Name: "Media Monkey",
		Icon: "https://iili.io/dsfaPs9.png",
	},
	"kmplayer.exe": {
		Name: "KM Player",
		Icon: "https://cdn6.aptoide.com/imgs/b/4/8/b48d248dc9514b23279b87e3e3c70c7d_icon.png?w=512",
	},
}

// Lookup resolves a process executable name to a known player.
// Matching is case-insensitive; an exact match wins, otherwise any registry
// key contained in the executable name matches.
func Lookup(executable string) (Player, bool) {
	name := strings.ToLower(executable)

	if p, ok := registry[name]; ok {
		return p, true
	}

	for key, p := range registry {
		if strings.Contains(name, key) {
			return p, true
		}
	}

	return Player{}, false
}
