package scrobble

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/lbatista/discrobble/internal/lastfm"
	"github.com/lbatista/discrobble/internal/spotify"
	"github.com/lbatista/discrobble/internal/store"
)

type fakeSearcher struct {
	mu      sync.Mutex
	results []spotify.Track
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]spotify.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results, f.err
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type submission struct {
	track      lastfm.ScrobbleTrack
	sessionKey string
	at         time.Time
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []submission
}

func (f *fakeSubmitter) Scrobble(track lastfm.ScrobbleTrack, sessionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, submission{track: track, sessionKey: sessionKey, at: time.Now()})
	return nil
}

func (f *fakeSubmitter) all() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission(nil), f.submitted...)
}

type fakePending struct {
	mu      sync.Mutex
	records []string
}

func (f *fakePending) AddPending(userID, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, userID+"|"+query)
	return nil
}

func (f *fakePending) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.records...)
}

func linkedSessions() SessionLoader {
	return func() (map[string]store.Session, error) {
		return map[string]store.Session{"42": {Key: "sk-42"}}, nil
	}
}

func matchingResults() []spotify.Track {
	return []spotify.Track{
		{
			Name:     "Song",
			Artists:  []string{"Artist"},
			Album:    "Album",
			Duration: 200 * time.Second,
		},
	}
}

func TestResolverSubmitsAfterDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: matchingResults()}
		submit := &fakeSubmitter{}
		r := New(search, submit, &fakePending{}, linkedSessions(), nil)

		start := time.Now()
		r.Start("artist - song", 200*time.Second, "42")
		time.Sleep(200 * time.Second)
		synctest.Wait()

		got := submit.all()
		if len(got) != 1 {
			t.Fatalf("submissions = %d, want 1", len(got))
		}
		if got[0].sessionKey != "sk-42" {
			t.Errorf("session key = %q", got[0].sessionKey)
		}
		if got[0].track.Artist != "Artist" || got[0].track.Track != "Song" {
			t.Errorf("track = %+v", got[0].track)
		}

		wantDelay := 200 * time.Second / 3
		if elapsed := got[0].at.Sub(start); elapsed != wantDelay {
			t.Errorf("submitted after %v, want %v", elapsed, wantDelay)
		}
	})
}

func TestResolverCachesOutcome(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: matchingResults()}
		submit := &fakeSubmitter{}
		r := New(search, submit, &fakePending{}, linkedSessions(), nil)

		r.Start("artist - song", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()
		r.Start("other track", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()
		r.Start("artist - song", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()

		// two distinct queries, one search each
		if got := search.callCount(); got != 2 {
			t.Errorf("search calls = %d, want 2", got)
		}
		if got := len(submit.all()); got != 3 {
			t.Errorf("submissions = %d, want 3", got)
		}
	})
}

func TestResolverCachesExplicitMiss(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: nil}
		pending := &fakePending{}
		r := New(search, &fakeSubmitter{}, pending, linkedSessions(), nil)

		r.Start("unknown track", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()
		r.Start("unknown track", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()

		if got := search.callCount(); got != 1 {
			t.Errorf("search calls = %d, want 1", got)
		}
		// both attempts persist a pending record
		if got := len(pending.all()); got != 2 {
			t.Errorf("pending records = %d, want 2", got)
		}
	})
}

func TestResolverCancelSupersedes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: matchingResults()}
		submit := &fakeSubmitter{}
		r := New(search, submit, &fakePending{}, linkedSessions(), nil)

		r.Start("first track", 300*time.Second, "42")
		r.Start("artist - song", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()

		got := submit.all()
		if len(got) != 1 {
			t.Fatalf("submissions = %d, want 1", len(got))
		}
		if got[0].track.Track != "Song" {
			t.Errorf("submitted %q, want the superseding track only", got[0].track.Track)
		}
	})
}

func TestResolverUnlinkedUserPersistsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: matchingResults()}
		pending := &fakePending{}
		sessions := func() (map[string]store.Session, error) {
			return map[string]store.Session{}, nil
		}
		r := New(search, &fakeSubmitter{}, pending, sessions, nil)

		r.Start("artist - song", 200*time.Second, "42")
		synctest.Wait()

		if got := pending.all(); len(got) != 1 || got[0] != "42|artist - song" {
			t.Errorf("pending = %v", got)
		}
		if search.callCount() != 0 {
			t.Error("search should not run for unlinked user")
		}
	})
}

func TestResolverSearchFailureIsMiss(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{err: errors.New("service down")}
		submit := &fakeSubmitter{}
		pending := &fakePending{}
		r := New(search, submit, pending, linkedSessions(), nil)

		r.Start("artist - song", 30*time.Second, "42")
		time.Sleep(30 * time.Second)
		synctest.Wait()

		if len(submit.all()) != 0 {
			t.Error("no submission expected on search failure")
		}
		if len(pending.all()) != 1 {
			t.Errorf("pending = %v", pending.all())
		}
	})
}

func TestResolverNoSubmitterIsNoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		search := &fakeSearcher{results: matchingResults()}
		r := New(search, nil, &fakePending{}, linkedSessions(), nil)

		r.Start("artist - song", 30*time.Second, "42")
		synctest.Wait()

		if search.callCount() != 0 {
			t.Error("resolver should be a no-op without a submitter")
		}
	})
}

func TestMatchCandidate(t *testing.T) {
	tests := []struct {
		name    string
		results []spotify.Track
		query   string
		want    string // matched track name, empty for no match
	}{
		{
			name:    "plain match above threshold",
			results: matchingResults(),
			query:   "song - artist",
			want:    "Song",
		},
		{
			name: "remix candidate rejected for plain query",
			results: []spotify.Track{
				{Name: "Song (Extended Remix)", Artists: []string{"Artist"}},
			},
			query: "song - artist",
			want:  "",
		},
		{
			name: "plain candidate rejected for remix query",
			results: []spotify.Track{
				{Name: "Song", Artists: []string{"Artist"}},
			},
			query: "song (remix) - artist",
			want:  "",
		},
		{
			name: "remix query accepts remix candidate",
			results: []spotify.Track{
				{Name: "Song (Remix)", Artists: []string{"Artist"}},
			},
			query: "song (remix) - artist",
			want:  "Song (Remix)",
		},
		{
			name: "dissimilar candidate rejected",
			results: []spotify.Track{
				{Name: "Completely Different", Artists: []string{"Nobody"}},
			},
			query: "song - artist",
			want:  "",
		},
		{
			name: "first acceptable candidate wins",
			results: []spotify.Track{
				{Name: "Wrong Thing Entirely", Artists: []string{"Unrelated Band Here"}},
				{Name: "Song", Artists: []string{"Artist"}},
			},
			query: "song - artist",
			want:  "Song",
		},
		{
			name: "artist contained in name not repeated",
			results: []spotify.Track{
				{Name: "Artist Anthem", Artists: []string{"Artist"}},
			},
			query: "artist anthem",
			want:  "Artist Anthem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := matchCandidate(tt.results, tt.query)
			if tt.want == "" {
				if entry != nil {
					t.Errorf("matched %+v, want no match", entry)
				}
				return
			}
			if entry == nil {
				t.Fatal("expected a match")
			}
			if entry.Track != tt.want {
				t.Errorf("matched %q, want %q", entry.Track, tt.want)
			}
		})
	}
}
