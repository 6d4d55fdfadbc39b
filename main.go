// discrobble watches local media players for the actively played track,
// mirrors it as rich presence over the local IPC socket, and scrobbles
// plays to Last.fm with canonical metadata.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/lbatista/discrobble/internal/config"
	"github.com/lbatista/discrobble/internal/discord"
	"github.com/lbatista/discrobble/internal/lastfm"
	"github.com/lbatista/discrobble/internal/presence"
	"github.com/lbatista/discrobble/internal/scanner"
	"github.com/lbatista/discrobble/internal/scrobble"
	"github.com/lbatista/discrobble/internal/spotify"
	"github.com/lbatista/discrobble/internal/store"
)

func main() {
	linkUser := flag.String("link-lastfm", "", "link a Last.fm account for the given user id, then exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading configuration failed", "error", err)
		os.Exit(1)
	}

	if *linkUser != "" {
		if err := runLink(cfg, *linkUser, log); err != nil {
			log.Error("account linking failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, log); err != nil {
		log.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ignore, err := config.LoadIgnorePlaylists(cfg.IgnorePlaylistsFile)
	if err != nil {
		log.Warn("reading ignore playlists failed", "path", cfg.IgnorePlaylistsFile, "error", err)
		ignore = map[string]struct{}{}
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var search scrobble.Searcher
	if cfg.HasSpotifyConfig() {
		search = spotify.New(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	} else {
		log.Info("track search disabled: Spotify credentials not configured")
	}

	var submit scrobble.Submitter
	switch {
	case !cfg.HasLastfmConfig():
		log.Info("scrobbling disabled: Last.fm credentials not configured")
	case search == nil:
		log.Info("scrobbling disabled: no track search to resolve metadata")
	default:
		submit = lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	}

	sessions := func() (map[string]store.Session, error) {
		return store.LoadSessions(cfg.SessionsFile)
	}
	resolver := scrobble.New(search, submit, db, sessions, log)

	scan := scanner.New(scanner.SystemLister{}, nil, log)
	dial := func(clientID string) (presence.Transport, error) {
		return discord.Connect(clientID)
	}

	ctrl := presence.New(cfg.DiscordClientID, scan, dial, resolver, ignore, log)
	log.Info("started", "client_id", cfg.DiscordClientID)
	ctrl.Run(ctx)
	return nil
}

// runLink walks the user through the desktop authorization flow and stores
// the resulting session key under the given user id.
func runLink(cfg *config.Config, userID string, log *slog.Logger) error {
	if !cfg.HasLastfmConfig() {
		return errors.New("Last.fm API credentials not configured")
	}

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

	token, err := client.GetToken()
	if err != nil {
		return err
	}

	fmt.Printf("Open this URL in a browser and authorize the application:\n\n  %s\n\n", client.AuthURL(token))
	fmt.Print("Press enter once done... ")
	bufio.NewReader(os.Stdin).ReadString('\n')

	username, sessionKey, err := client.GetSession(token)
	if err != nil {
		return err
	}

	if err := store.SaveSession(cfg.SessionsFile, userID, store.Session{Key: sessionKey, Username: username}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	log.Info("account linked", "lastfm_user", username, "user_id", userID)
	return nil
}
