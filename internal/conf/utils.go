package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

const appDirName = "graphing-app"

// GetLogger returns the config package logger.
// It is fetched from the global logger on each call so it follows SetGlobal.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}

// GetDefaultConfigPaths returns the directories searched for config.yaml, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		return []string{
			".",
			filepath.Join(homeDir, "AppData", "Roaming", appDirName),
		}, nil
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", appDirName),
		filepath.Join("/etc", appDirName),
	}, nil
}

// FindConfigFile returns the first config.yaml found in the default paths.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, ConfigName+".yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Category(errors.CategoryNotFound).
		Context("operation", "find-config-file").
		Build()
}
