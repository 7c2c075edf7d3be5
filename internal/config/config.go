package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	AnalyticsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetStorageDriver() string
	GetRedisAddr() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// SessionConfig controls the client session lifetime and the two destinations the
// navigation guard redirects to.
type SessionConfig interface {
	GetMaxSessionAge() time.Duration
	GetLoginRoute() string
	GetLandingRoute() string
}

type AnalyticsConfig interface {
	GetAnalyticsBaseURL() string
	GetAnalyticsTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Analytics
}

func New() Config {
	return mainConfig{}
}
