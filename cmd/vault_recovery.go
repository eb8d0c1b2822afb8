package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/utils"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Manage the recovery phrase for your vault",
}

func init() {
	recoveryCmd.AddCommand(recoverySetupCmd)
	recoveryCmd.AddCommand(recoveryRestoreCmd)
}

var recoverySetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a 24-word recovery phrase",
	Long:  `Generates a recovery phrase and stores a copy of your master key wrapped under it. The phrase is shown exactly once; write it down somewhere safe. Without it, a forgotten password means your data is permanently lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recovery setup command")

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if err := ensureUnlocked(env); err != nil {
			cmd.Println(renderUnlockError(err))
			return nil
		}

		result, err := workflows.RecoverySetup(cmd.Context(), env)
		if err != nil {
			return Logger.ErrorfAndReturn("recovery setup failed: %v", err)
		}

		cmd.Println(ui.Success.Sprint("✓") + " Recovery phrase created. Write it down now; it will not be shown again.\n")
		cmd.Println("  " + ui.Highlight.Sprint(result.Mnemonic) + "\n")
		cmd.Println(ui.Warning.Sprint("!") + " Anyone holding this phrase can unlock your vault.")
		return nil
	},
}

var recoveryRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Recover access with your phrase and set a new password",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recovery restore command")

		phrase, err := utils.ReadPassphrase("Recovery phrase: ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read phrase: %v", err)
		}
		newPassword, err := promptPassword("New vault password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read password: %v", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read password: %v", err)
		}
		if newPassword != confirm {
			return Logger.ErrorfAndReturn("passwords do not match")
		}

		spinner, cleanupSpinner := startSpinner("Recovering your vault...", verbose)
		defer cleanupSpinner()

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		err = workflows.Recover(cmd.Context(), env, workflows.RecoverOptions{
			Mnemonic:    string(phrase),
			NewPassword: newPassword,
		})
		if err != nil {
			switch {
			case errors.Is(err, verrors.ErrRecoveryNotConfigured):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " No recovery phrase was ever set up for this account"
				return nil
			case errors.Is(err, verrors.ErrRecoveryFailed), errors.Is(err, verrors.ErrInvalidKeyMaterial):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " That recovery phrase does not match"
				return nil
			}
			return Logger.ErrorfAndReturn("recovery failed: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Vault recovered and re-encrypted under your new password"
		return nil
	},
}
