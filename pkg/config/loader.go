package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "ccattrib.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/ccattrib"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger     *zap.Logger
	homeDir    func() (string, error)
	workingDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger:     logger,
		homeDir:    os.UserHomeDir,
		workingDir: os.Getwd,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/ccattrib/config.yaml)
// 3. Project config (ccattrib.yaml in current or parent directories)
// 4. explicitPath, when non-empty; it must exist
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("loaded user config", zap.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to load user config", zap.String("path", userConfigPath), zap.Error(err))
		}
	}

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("loaded project config", zap.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("failed to load project config", zap.String("path", projectConfigPath), zap.Error(err))
		}
	} else {
		l.logger.Debug("no project config found")
	}

	if explicitPath != "" {
		explicitConfig, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded explicit config", zap.String("path", explicitPath))
		config.Merge(explicitConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", errors.New("failed to locate home directory")
	}

	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("created default user config", zap.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for ccattrib.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.workingDir()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
