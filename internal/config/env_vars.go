package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	bindHostVar   = "BIND_HOST"
	appNameVar    = "APP_NAME"
	folderEnvVar  = "DATA_FOLDER"
	storageVar    = "STORAGE_DRIVER"
	redisAddrVar  = "REDIS_ADDR"
	environVar    = "ENV"
	configFileVar = "CONFIG_FILE"
)

// EnvDev enables console logging and route listing.
const EnvDev = "DEV"

// Storage drivers understood by GetStorageDriver.
const (
	StorageMemory = "memory"
	StorageTOML   = "toml"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetPort is the listen address. A bare port binds BIND_HOST, loopback by default: the
// session belongs to the whole process, so anyone who can reach the port shares it.
// A PORT that already names a host (or starts with ":") is used as is.
func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf("%s:%s", GetEnv(bindHostVar, "127.0.0.1"), port)
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "AquaMind")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetStorageDriver selects the durable storage backing the session record.
func (EnvVars) GetStorageDriver() string {
	return strings.ToLower(GetEnv(storageVar, StorageTOML))
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (EnvVars) GetEnv() string {
	return GetEnv(environVar, EnvDev)
}

// ConfigFile returns the optional YAML file named by CONFIG_FILE.
func ConfigFile() string {
	return os.Getenv(configFileVar)
}

// GetEnv returns the environment variable, then the value loaded from the config file,
// then defaultValue.
func GetEnv(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := fileValue(envVar); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetDuration parses the value of envVar as a time.Duration, falling back to
// defaultValue when it is missing or malformed.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
