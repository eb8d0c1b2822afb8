package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type UserConfig struct {
	User   User          `toml:"user"`
	Server Server        `toml:"server"`
	Vault  VaultSettings `toml:"vault"`
}

type User struct {
	Email string `toml:"email"`
	UUID  string `toml:"user_uuid"`
}

type Server struct {
	// BaseURL is the blob/directory store endpoint. Empty means offline
	// (local-only) operation.
	BaseURL string `toml:"base_url"`
}

// VaultSettings holds the tunable parameters of the encryption core.
type VaultSettings struct {
	// KDFIterations is the PBKDF2 work factor for master key derivation.
	KDFIterations int `toml:"kdf_iterations"`

	// ChunkThresholdBytes is the content size above which encryption
	// switches to the chunked envelope format.
	ChunkThresholdBytes int `toml:"chunk_threshold_bytes"`

	// IdleTimeoutMinutes is the inactivity window after which the session
	// locks itself. Zero disables the idle timer.
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes"`

	// CredentialTTLMinutes is the lifetime of the cached auto-unlock
	// credential. Zero disables auto-unlock entirely.
	CredentialTTLMinutes int `toml:"credential_ttl_minutes"`
}

// DefaultVaultSettings returns the settings used when config.toml does not
// override them.
func DefaultVaultSettings() VaultSettings {
	return VaultSettings{
		KDFIterations:        310_000,
		ChunkThresholdBytes:  1 << 20, // 1 MiB
		IdleTimeoutMinutes:   30,
		CredentialTTLMinutes: 5,
	}
}

var GlobalUserConfig *UserConfig

// LoadUserConfig loads the user configuration from the config file.
// A missing file yields a config with default vault settings.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserVaultSettings.UserConfigsPath, "config.toml")

	config := &UserConfig{
		Vault: DefaultVaultSettings(),
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	applySettingsDefaults(&config.Vault)

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserVaultSettings.UserConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// GenerateUserUUID generates a new UUID for the user.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig ensures the user configuration exists and has a UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, fmt.Errorf("failed to save user config: %w", err)
		}
	}

	return config, nil
}

// applySettingsDefaults fills zero-valued settings a hand-edited config file
// may have dropped. CredentialTTLMinutes is left alone: zero there is a
// deliberate "disable auto-unlock" choice.
func applySettingsDefaults(s *VaultSettings) {
	defaults := DefaultVaultSettings()
	if s.KDFIterations <= 0 {
		s.KDFIterations = defaults.KDFIterations
	}
	if s.ChunkThresholdBytes <= 0 {
		s.ChunkThresholdBytes = defaults.ChunkThresholdBytes
	}
	if s.IdleTimeoutMinutes < 0 {
		s.IdleTimeoutMinutes = defaults.IdleTimeoutMinutes
	}
}
