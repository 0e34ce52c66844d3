package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
)

// LoadEnvFile reads a .env file and returns the variables as a map
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("env file not found: %s", path)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	return env, nil
}

// ApplyEnvOverrides layers environment-based settings over a parsed config.
// Priority (lowest to highest):
// 1. Config file values
// 2. The env_file named by the config
// 3. The process environment
func ApplyEnvOverrides(config *Config, configDir string) error {
	env := map[string]string{}

	if config.EnvFile != "" {
		fileEnv, err := LoadEnvFile(resolvePath(config.EnvFile, configDir))
		if err != nil {
			return err
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for _, key := range []string{constants.EnvSocket, constants.EnvAPIAddr} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}

	if socket := env[constants.EnvSocket]; socket != "" {
		config.Socket = socket
	}
	if addr := env[constants.EnvAPIAddr]; addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, constants.EnvAPIAddr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("%w: %s: bad port %q", domain.ErrInvalidConfig, constants.EnvAPIAddr, portStr)
		}
		config.API.Host = host
		config.API.Port = port
	}

	return Validate(config)
}

// resolvePath resolves a potentially relative path against a base directory
func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	candidates := []string{
		"mplog.yaml",
		"mplog.yml",
		".mplog.yaml",
		".mplog.yml",
	}

	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	return "", fmt.Errorf("no config file found (tried: %v)", candidates)
}

// CheckFilePermissions checks if a file has secure permissions.
// On Unix-like systems, it verifies the file is not world-writable.
// Returns an error if the file has insecure permissions.
func CheckFilePermissions(path string) error {
	// Skip permission check on Windows
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking file permissions: %w", err)
	}

	// World-writable = others have write (0002)
	if info.Mode().Perm()&0002 != 0 {
		return fmt.Errorf("config file %s has insecure permissions: world-writable files can be modified by any user. Please run: chmod o-w %s", path, path)
	}

	return nil
}
