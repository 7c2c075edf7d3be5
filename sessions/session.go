package sessions

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/aquamind/internal/errors"
)

// Session is the client-held proof of authentication. Its presence in storage is what
// "logged in" means; its absence is the logged out state.
type Session struct {
	Token     string    // Opaque token issued by the facial authentication service
	SubjectID string    // Identifier of the authenticated user
	IssuedAt  time.Time // Store clock at the moment the session was saved
}

// Age is the time elapsed since the session was saved.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.IssuedAt)
}

// ExpiresAt is the instant after which the session no longer authenticates.
func (s Session) ExpiresAt(maxAge time.Duration) time.Time {
	return s.IssuedAt.Add(maxAge)
}

// Expired reports whether the session is older than maxAge at now.
func (s Session) Expired(now time.Time, maxAge time.Duration) bool {
	return s.Age(now) > maxAge
}

// record is the persisted JSON layout.
type record struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func encodeSession(s Session) (string, error) {
	b, err := json.Marshal(record{
		Token:     s.Token,
		UserID:    s.SubjectID,
		Timestamp: s.IssuedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(b), nil
}

func decodeSession(raw string) (Session, error) {
	var r record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "decode session: %s", err.Error())
	}
	if strings.TrimSpace(r.Token) == "" {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "decode session: empty token")
	}
	issuedAt, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "decode session timestamp %q", r.Timestamp)
	}
	return Session{Token: r.Token, SubjectID: r.UserID, IssuedAt: issuedAt}, nil
}
