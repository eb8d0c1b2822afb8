package cmd

import (
	"github.com/spf13/cobra"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault state and check local/server consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")
		spinner, cleanupSpinner := startSpinner("Checking vault status...", verbose)
		defer cleanupSpinner()

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		result, err := workflows.Status(cmd.Context(), env)
		if err != nil {
			return Logger.ErrorfAndReturn("status check failed: %v", err)
		}

		msg := "Vault state: " + ui.Highlight.Sprint(result.State.String()) + "\n"
		if result.PublicKeyID != "" {
			msg += "Public key id: " + ui.Highlight.Sprint(result.PublicKeyID) + "\n"
		}
		if result.RecoveryConfigured {
			msg += "Recovery: " + ui.Success.Sprint("configured") + "\n"
		} else {
			msg += "Recovery: " + ui.Warning.Sprint("not configured") + "\n"
		}

		switch result.Intent {
		case session.IntentUninitialized:
			msg += ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vault setup") + " to enable encryption"
		case session.IntentNeedsLocalRestore:
			msg += ui.Warning.Sprint("!") + " Encryption is enabled for this account but no keys exist on this device\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vault unlock") + " to restore them with your password"
		case session.IntentReady:
			msg += ui.Success.Sprint("✓") + " Local keys and server state agree"
		case session.IntentInconsistent:
			msg += ui.Warning.Sprint("!") + " This device holds encryption keys but the server says encryption is disabled\n" +
				ui.Info.Sprint("→") + " Keeping the local keys; run " + ui.Code.Sprint("vault reset") + " only if you are certain you want to discard them"
		}

		spinner.FinalMSG = msg
		return nil
	},
}
