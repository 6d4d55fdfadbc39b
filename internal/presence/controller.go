// Package presence runs the main synchronization loop: it polls the
// process scanner on a fixed cadence, mirrors the active track to the local
// client over IPC, and hands track changes to the scrobble resolver.
package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/lbatista/discrobble/internal/discord"
	"github.com/lbatista/discrobble/internal/scanner"
	"github.com/lbatista/discrobble/internal/track"
)

// Loop cadences. Timeouts are implicit in these sleeps; the loop itself is
// never fatal.
const (
	pollInterval = 15 * time.Second

	// clearCooldown debounces presence clearing: file handles momentarily
	// vanish between tracks of a playlist.
	clearCooldown = 15 * time.Second

	sendFailureBackoff  = 30 * time.Second
	cycleFailureBackoff = 60 * time.Second
)

// Transport is the connected IPC client surface the controller drives.
type Transport interface {
	SetActivity(discord.Activity) error
	ClearActivity() error
	User() discord.User
	Close() error
}

// Dialer establishes a new authenticated IPC connection.
type Dialer func(clientID string) (Transport, error)

// Scanner locates and re-validates the tracked player process.
type Scanner interface {
	Scan(currentPath string) (scanner.Result, error)
	Check(p scanner.Process, currentPath string) scanner.Result
}

// Scrobbler starts one background resolution task per track change.
type Scrobbler interface {
	Start(query string, duration time.Duration, userID string)
	Cancel()
}

// Controller owns all loop state: the current track, the connection, and
// the in-flight scrobble task. Single writer; only the loop touches it.
type Controller struct {
	clientID  string
	scan      Scanner
	dial      Dialer
	scrobbler Scrobbler
	ignore    map[string]struct{}
	log       *slog.Logger

	proc        scanner.Process
	track       *track.Track
	conn        Transport
	user        discord.User
	currentPath string
}

// New creates a controller. ignore holds playlist ids whose tracks update
// presence but are never scrobbled.
func New(clientID string, scan Scanner, dial Dialer, scrobbler Scrobbler, ignore map[string]struct{}, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if ignore == nil {
		ignore = map[string]struct{}{}
	}
	return &Controller{
		clientID:  clientID,
		scan:      scan,
		dial:      dial,
		scrobbler: scrobbler,
		ignore:    ignore,
		log:       log,
	}
}

// Run drives the loop until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	for {
		delay := c.safeCycle()
		if !sleepCtx(ctx, delay) {
			c.shutdown()
			return
		}
	}
}

// safeCycle downgrades any panic to a logged event plus a long backoff.
func (c *Controller) safeCycle() (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("cycle failed", "panic", r)
			delay = cycleFailureBackoff
		}
	}()
	return c.cycle()
}

// cycle runs one pass of the state machine and returns the next sleep.
func (c *Controller) cycle() time.Duration {
	res, err := c.locate()
	if err != nil {
		c.log.Error("process scan failed", "error", err)
		return cycleFailureBackoff
	}

	if res.State == scanner.Gone {
		return c.clearPresence()
	}
	c.proc = res.Proc
	if res.State == scanner.Changed {
		c.track = res.Track
	}

	if c.conn == nil {
		conn, err := c.dial(c.clientID)
		if err != nil {
			c.log.Warn("ipc connect failed", "error", err)
			return pollInterval
		}
		c.conn = conn
		c.user = conn.User()
		c.log.Info("client connected", "username", c.user.Username, "user_id", c.user.ID)
	}

	if c.track == nil || c.track.Path == c.currentPath {
		return pollInterval
	}

	if err := c.conn.SetActivity(buildActivity(c.track)); err != nil {
		c.log.Warn("presence update failed", "error", err)
		c.dropConn()
		return sendFailureBackoff
	}
	c.currentPath = c.track.Path
	c.log.Info("presence updated", "title", c.track.Title, "artist", c.track.Artist, "player", c.track.Player.Name)

	if _, ignored := c.ignore[c.track.PlaylistID]; ignored {
		c.log.Info("scrobble suppressed: ignored playlist",
			"title", c.track.Title, "artist", c.track.Artist, "playlist_id", c.track.PlaylistID)
	} else {
		c.scrobbler.Start(buildQuery(c.track), c.track.Duration, c.user.ID)
	}

	return pollInterval
}

// locate finds a player process, or re-validates the tracked one while it
// is still running.
func (c *Controller) locate() (scanner.Result, error) {
	if c.proc != nil {
		if running, err := c.proc.Running(); err == nil && running {
			return c.scan.Check(c.proc, c.currentPath), nil
		}
		c.proc = nil
	}
	return c.scan.Scan(c.currentPath)
}

// clearPresence enters the ClearingPresence state: best-effort remote
// clear, then a cool-down before the next scan.
func (c *Controller) clearPresence() time.Duration {
	c.proc = nil
	c.track = nil
	c.currentPath = ""

	if c.conn != nil {
		if err := c.conn.ClearActivity(); err != nil {
			c.log.Warn("presence clear failed", "error", err)
			c.dropConn()
		}
	}
	return clearCooldown
}

// dropConn discards the connection so the next cycle reconnects.
func (c *Controller) dropConn() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.user = discord.User{}
}

func (c *Controller) shutdown() {
	c.scrobbler.Cancel()
	if c.conn != nil {
		// best effort on the way out
		_ = c.conn.ClearActivity()
		c.conn.Close()
		c.conn = nil
	}
}

// sleepCtx waits for d and reports whether the wait completed without the
// context being cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
