package configs

import (
	"log"
	"os"
	"path/filepath"
)

type UserSettings struct {
	// UserDataPath is where local key material and the badger store live.
	UserDataPath string

	// UserConfigsPath is where config.toml lives.
	UserConfigsPath string
}

var UserVaultSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	UserVaultSettings = &UserSettings{
		UserDataPath:    filepath.Join(dataDir, "lifestyle-vault"),
		UserConfigsPath: filepath.Join(configDir, "lifestyle-vault"),
	}
}
