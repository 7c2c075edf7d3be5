package config

import "time"

const sessionMaxAgeVar = "SESSION_MAX_AGE"

// DefaultMaxSessionAge is how long a saved session stays valid.
const DefaultMaxSessionAge = 24 * time.Hour

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetMaxSessionAge() time.Duration {
	return GetDuration(sessionMaxAgeVar, DefaultMaxSessionAge)
}

func (Session) GetLoginRoute() string {
	return "/auth/login"
}

func (Session) GetLandingRoute() string {
	return "/home"
}
