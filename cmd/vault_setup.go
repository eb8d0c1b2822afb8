package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up encryption for this account with a master password",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting setup command")

		password, err := promptPassword("Choose a vault password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read password: %v", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read password: %v", err)
		}
		if password != confirm {
			return Logger.ErrorfAndReturn("passwords do not match")
		}

		spinner, cleanupSpinner := startSpinner("Generating your encryption keys...", verbose)
		defer cleanupSpinner()

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		result, err := workflows.Setup(cmd.Context(), env, workflows.SetupOptions{Password: password})
		if err != nil {
			if errors.Is(err, verrors.ErrVaultAlreadyInitialized) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " Encryption is already set up\n" +
					ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vault status") + " to inspect it"
				return nil
			}
			return Logger.ErrorfAndReturn("setup failed: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Vault created and unlocked\n" +
			"Public key id: " + ui.Highlight.Sprint(result.PublicKeyID) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vault recovery setup") + " to create a recovery phrase"
		return nil
	},
}
