// Package scrobble resolves a locally observed track into canonical
// metadata and submits the listen record, deferring to a pending store when
// the user has no linked account.
package scrobble

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/lbatista/discrobble/internal/lastfm"
	"github.com/lbatista/discrobble/internal/spotify"
	"github.com/lbatista/discrobble/internal/store"
)

// matchThreshold is the minimum token-sort similarity (0-100) between the
// candidate "name - artists" string and the observed query.
const matchThreshold = 70

// delayDivisor defers submission until a third of the track has plausibly
// played, cutting false scrobbles for skipped tracks.
const delayDivisor = 3

// variantMarkers flag remix/extended edits; a candidate carrying a marker
// the query lacks (or vice versa) is a different edit, not a match.
var variantMarkers = []string{"mix", "remix", "extended"}

// Searcher is the external track-search capability.
type Searcher interface {
	Search(ctx context.Context, query string) ([]spotify.Track, error)
}

// Submitter is the external scrobble-submission capability.
type Submitter interface {
	Scrobble(track lastfm.ScrobbleTrack, sessionKey string) error
}

// PendingStore persists scrobbles that could not be submitted.
type PendingStore interface {
	AddPending(userID, query string) error
}

// SessionLoader reads the user-id to linked-account map.
type SessionLoader func() (map[string]store.Session, error)

// cacheEntry is a resolved query outcome. Miss marks an explicit negative
// so a query is searched at most once per process lifetime.
type cacheEntry struct {
	Artist   string
	Track    string
	Album    string
	Duration time.Duration
	Miss     bool
}

// Resolver runs at most one background scrobble task; starting a new one
// always cancels the previous one first.
type Resolver struct {
	search   Searcher
	submit   Submitter
	pending  PendingStore
	sessions SessionLoader
	log      *slog.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry

	cancel context.CancelFunc
}

// New creates a resolver. submit may be nil when scrobbling is disabled.
func New(search Searcher, submit Submitter, pending PendingStore, sessions SessionLoader, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		search:   search,
		submit:   submit,
		pending:  pending,
		sessions: sessions,
		log:      log,
		cache:    make(map[string]*cacheEntry),
	}
}

// Start launches a scrobble task for a new track, cancelling any in-flight
// task from the previous one. Must be called from the controller's task
// context only.
func (r *Resolver) Start(query string, duration time.Duration, userID string) {
	r.Cancel()

	if r.submit == nil || userID == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx, query, duration, userID)
}

// Cancel stops the in-flight task, if any.
func (r *Resolver) Cancel() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Resolver) run(ctx context.Context, query string, duration time.Duration, userID string) {
	sessions, err := r.sessions()
	if err != nil {
		r.log.Warn("loading linked accounts failed", "error", err)
		sessions = map[string]store.Session{}
	}

	session, linked := sessions[userID]
	if !linked {
		r.log.Info("scrobble deferred: user has no linked account", "user_id", userID, "query", query)
		if err := r.pending.AddPending(userID, query); err != nil {
			r.log.Warn("persisting pending scrobble failed", "error", err)
		}
		return
	}

	r.log.Info("scrobble scheduled", "query", query, "delay", duration/delayDivisor)

	if !sleepCtx(ctx, duration/delayDivisor) {
		return
	}

	entry := r.cacheGet(query)
	if entry == nil {
		entry = r.resolveQuery(ctx, query)
		if ctx.Err() != nil {
			// superseded mid-flight: no cache write for this track
			return
		}
		r.cachePut(query, entry)
	}

	if entry.Miss {
		r.log.Info("scrobble skipped: no canonical match", "query", query)
		if err := r.pending.AddPending(userID, query); err != nil {
			r.log.Warn("persisting pending scrobble failed", "error", err)
		}
		return
	}

	if ctx.Err() != nil {
		return
	}

	err = r.submit.Scrobble(lastfm.ScrobbleTrack{
		Artist:    entry.Artist,
		Track:     entry.Track,
		Album:     entry.Album,
		Duration:  entry.Duration,
		Timestamp: time.Now(),
	}, session.Key)
	if err != nil {
		r.log.Warn("scrobble submission failed", "query", query, "error", err)
		return
	}

	r.log.Info("scrobble submitted", "query", query, "track", entry.Track, "artist", entry.Artist)
}

// resolveQuery searches the external catalog and fuzzy-matches candidates
// against the query. External failures degrade to an explicit miss.
func (r *Resolver) resolveQuery(ctx context.Context, query string) *cacheEntry {
	results, err := r.search.Search(ctx, query)
	if err != nil {
		r.log.Warn("track search failed", "query", query, "error", err)
		return &cacheEntry{Miss: true}
	}

	if entry := matchCandidate(results, query); entry != nil {
		return entry
	}
	return &cacheEntry{Miss: true}
}

func matchCandidate(results []spotify.Track, query string) *cacheEntry {
	queryHasVariant := hasVariantMarker(strings.ToLower(query))

	for _, cand := range results {
		if len(cand.Artists) == 0 {
			continue
		}

		name := strings.ToLower(cand.Name)
		if hasVariantMarker(name) != queryHasVariant {
			continue
		}

		// artists already contained in the name are not repeated
		var artists []string
		for _, a := range cand.Artists {
			la := strings.ToLower(a)
			if !strings.Contains(name, la) {
				artists = append(artists, la)
			}
		}

		check := name + " - " + strings.Join(artists, ", ")
		if fuzzy.TokenSortRatio(check, query) > matchThreshold {
			return &cacheEntry{
				Artist:   cand.Artists[0],
				Track:    cand.Name,
				Album:    cand.Album,
				Duration: cand.Duration,
			}
		}
	}
	return nil
}

func hasVariantMarker(s string) bool {
	for _, marker := range variantMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func (r *Resolver) cacheGet(query string) *cacheEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[query]
}

func (r *Resolver) cachePut(query string, entry *cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[query] = entry
}

// sleepCtx waits for d and reports whether the wait completed without the
// context being cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
