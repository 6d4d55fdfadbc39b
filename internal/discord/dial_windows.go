//go:build windows

package discord

import (
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// dialTimeout bounds the named-pipe dial so a wedged pipe cannot hang the
// connect attempt.
const dialTimeout = 2 * time.Second

// dialEndpoint connects to the named pipe for the given endpoint index.
func dialEndpoint(index int) (net.Conn, error) {
	pipe := fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, index)
	timeout := dialTimeout
	return winio.DialPipe(pipe, &timeout)
}
