package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Session is a linked Last.fm account for one local user.
type Session struct {
	Key      string `json:"key"`
	Username string `json:"username,omitempty"`
}

// LoadSessions reads the user-id to session map. The file is re-read per
// attempt because an external linking step may rewrite it while the daemon
// runs. A missing file yields an empty map.
func LoadSessions(path string) (map[string]Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Session{}, nil
		}
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	sessions := map[string]Session{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions: %w", err)
	}
	return sessions, nil
}

// SaveSession adds or replaces one user's session in the map file.
func SaveSession(path, userID string, session Session) error {
	sessions, err := LoadSessions(path)
	if err != nil {
		return err
	}
	sessions[userID] = session

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
