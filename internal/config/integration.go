package config

import "sync"

var (
	globalConfig     *Config      //nolint:gochecknoglobals // Singleton pattern for configuration
	globalConfigMu   sync.RWMutex //nolint:gochecknoglobals // Protects globalConfig
	globalConfigInit bool         //nolint:gochecknoglobals // Tracks if global config has been set

	resolvedProjectDir string //nolint:gochecknoglobals // Set once per command invocation
)

// SetGlobalConfig installs cfg as the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	globalConfigInit = cfg != nil
}

// GetGlobalConfig returns the global configuration, defaulting it if unset.
func GetGlobalConfig() *Config {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if !globalConfigInit {
		globalConfig = New()
		globalConfigInit = true
	}
	return globalConfig
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigInit = false
	resolvedProjectDir = ""
}

// SetResolvedProjectDir records the project directory resolved for this invocation.
func SetResolvedProjectDir(dir string) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the project directory recorded by SetResolvedProjectDir.
func GetResolvedProjectDir() string {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return resolvedProjectDir
}
