package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	fileValuesLock sync.RWMutex
	fileValues     = map[string]string{}
)

// LoadFile reads a flat YAML document of KEY: value pairs. Loaded values sit beneath
// environment variables: GetEnv consults them only when the variable is unset.
func LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config.LoadFile read %s: %w", path, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return fmt.Errorf("config.LoadFile parse %s: %w", path, err)
	}

	fileValuesLock.Lock()
	defer fileValuesLock.Unlock()
	fileValues = values
	return nil
}

// ResetFile drops any values loaded by LoadFile.
func ResetFile() {
	fileValuesLock.Lock()
	defer fileValuesLock.Unlock()
	fileValues = map[string]string{}
}

func fileValue(key string) (string, bool) {
	fileValuesLock.RLock()
	defer fileValuesLock.RUnlock()
	v, ok := fileValues[key]
	return v, ok
}
