// Package scanner finds the known media-player process that currently has a
// trackable media file open.
package scanner

import (
	"log/slog"

	"github.com/lbatista/discrobble/internal/players"
	"github.com/lbatista/discrobble/internal/track"
)

// Process is the subset of process state the scanner needs.
type Process interface {
	Pid() int32
	Name() (string, error)
	OpenFilePaths() ([]string, error)
	Running() (bool, error)
}

// Lister enumerates live processes.
type Lister interface {
	Processes() ([]Process, error)
}

// ResolveFunc resolves a candidate open file into a track.
type ResolveFunc func(path, executable string) (*track.Track, error)

// State classifies a scan outcome.
type State int

const (
	// Gone means no known player has a trackable file open.
	Gone State = iota
	// Unchanged means the previously tracked file is still open.
	Unchanged
	// Changed means a new trackable file was found.
	Changed
)

// Result is the outcome of a scan or re-validation pass.
type Result struct {
	State State
	Track *track.Track // set when State == Changed
	Proc  Process      // owning process, set unless State == Gone
}

// Scanner drives process enumeration and track resolution.
type Scanner struct {
	list    Lister
	resolve ResolveFunc
	log     *slog.Logger
}

// New creates a scanner. A nil resolve falls back to track.Resolve.
func New(list Lister, resolve ResolveFunc, log *slog.Logger) *Scanner {
	if resolve == nil {
		resolve = track.Resolve
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{list: list, resolve: resolve, log: log}
}

// Scan enumerates all processes and returns the first known player holding
// a trackable file. currentPath short-circuits re-resolution of the file
// already being tracked.
func (s *Scanner) Scan(currentPath string) (Result, error) {
	procs, err := s.list.Processes()
	if err != nil {
		return Result{}, err
	}

	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if _, known := players.Lookup(name); !known {
			continue
		}

		res := s.Check(p, currentPath)
		if res.State != Gone {
			return res, nil
		}
	}

	return Result{State: Gone}, nil
}

// Check inspects one process's open files. An open file equal to
// currentPath reports Unchanged without re-invoking tag extraction;
// otherwise the first file that resolves wins.
func (s *Scanner) Check(p Process, currentPath string) Result {
	name, err := p.Name()
	if err != nil {
		return Result{State: Gone}
	}

	files, err := p.OpenFilePaths()
	if err != nil {
		return Result{State: Gone}
	}

	for _, path := range files {
		if currentPath != "" && path == currentPath {
			return Result{State: Unchanged, Proc: p}
		}

		t, err := s.resolve(path, name)
		if err != nil {
			// retried on the next cycle
			s.log.Warn("skipping candidate file", "path", path, "error", err)
			continue
		}
		if t != nil {
			return Result{State: Changed, Track: t, Proc: p}
		}
	}

	return Result{State: Gone}
}
