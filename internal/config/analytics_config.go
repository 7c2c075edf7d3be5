package config

import (
	"strings"
	"time"
)

const (
	analyticsBaseURLVar = "ANALYTICS_BASE_URL"
	analyticsTimeoutVar = "ANALYTICS_TIMEOUT"
)

type Analytics struct{}

var _ AnalyticsConfig = Analytics{}

// GetAnalyticsBaseURL is the root of the remote analytics API, without a trailing slash.
func (Analytics) GetAnalyticsBaseURL() string {
	return strings.TrimRight(GetEnv(analyticsBaseURLVar, "http://localhost:9842/api"), "/")
}

func (Analytics) GetAnalyticsTimeout() time.Duration {
	return GetDuration(analyticsTimeoutVar, 30*time.Second)
}
