package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"devsphere-api/model"
)

// Session is the client-side view of the current login: the user plus the
// access token backing their requests. It is constructed explicitly and
// passed to the Client, never held in a package-level global.
type Session struct {
	User          *model.User `json:"user"`
	AccessToken   string      `json:"access_token"`
	Authenticated bool        `json:"-"`
}

// LoadState reports how a persisted session file was resolved.
type LoadState int

const (
	// SessionAbsent means no session file exists; start unauthenticated.
	SessionAbsent LoadState = iota
	// SessionPresent means a stored session was restored.
	SessionPresent
	// SessionCorrupt means the file exists but could not be used.
	SessionCorrupt
)

func (s LoadState) String() string {
	switch s {
	case SessionAbsent:
		return "absent"
	case SessionPresent:
		return "present"
	case SessionCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// LoadSession synchronously restores a persisted session before anything else
// runs. It always returns a usable Session; the LoadState tells the caller
// whether it came from disk, was missing, or was unreadable.
func LoadSession(path string) (*Session, LoadState) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, SessionAbsent
	}
	if err != nil {
		return &Session{}, SessionCorrupt
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return &Session{}, SessionCorrupt
	}
	if s.AccessToken == "" || s.User == nil {
		return &Session{}, SessionCorrupt
	}

	s.Authenticated = true
	return &s, SessionPresent
}

// SaveSession persists the session for the next process start.
func SaveSession(path string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (s *Session) set(user *model.User, accessToken string) {
	s.User = user
	s.AccessToken = accessToken
	s.Authenticated = true
}

func (s *Session) clear() {
	s.User = nil
	s.AccessToken = ""
	s.Authenticated = false
}
