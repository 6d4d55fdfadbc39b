//go:build !windows

package discord

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// candidateDirs are the runtime-dir locations where the client exposes its
// socket, including the sandboxed (snap/flatpak) variants.
var candidateDirs = []string{
	".",
	"snap.discord",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
}

// dialEndpoint connects to the unix socket for the given endpoint index.
func dialEndpoint(index int) (net.Conn, error) {
	path := discoverEndpoint(index)
	if path == "" {
		return nil, fmt.Errorf("%w: index %d", ErrNoEndpoint, index)
	}
	return net.Dial("unix", path)
}

// discoverEndpoint returns the first existing socket path for the index.
func discoverEndpoint(index int) string {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
	}

	name := fmt.Sprintf("discord-ipc-%d", index)
	for _, dir := range candidateDirs {
		path := filepath.Join(base, dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
