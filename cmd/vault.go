package cmd

import (
	logger "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Manage your encrypted journal vault",
		Long:  `Provides setup, locking, encryption, decryption, sharing, revocation, and recovery of end-to-end encrypted content.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	VaultCmd.AddCommand(setupCmd)
	VaultCmd.AddCommand(unlockCmd)
	VaultCmd.AddCommand(lockCmd)
	VaultCmd.AddCommand(statusCmd)
	VaultCmd.AddCommand(encryptCmd)
	VaultCmd.AddCommand(decryptCmd)
	VaultCmd.AddCommand(shareCmd)
	VaultCmd.AddCommand(revokeCmd)
	VaultCmd.AddCommand(recoveryCmd)
	VaultCmd.AddCommand(resetCmd)
}

// Helper functions for testing

// GetVaultCmd returns the VaultCmd for testing.
func GetVaultCmd() *cobra.Command {
	return VaultCmd
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
