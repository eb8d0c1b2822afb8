package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard your keys and start over",
	Long:  `Deletes the current keypair and generates a new one under a new password. Everything encrypted under the old keypair becomes permanently unreadable. Use this only when the keys are gone for good and recovery is not an option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting reset command")

		if !resetForce {
			cmd.Println(ui.Warning.Sprint("!") + " This permanently destroys access to everything encrypted with your current keys.")
			cmd.Print("Type 'reset' to continue: ")
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read confirmation: %v", err)
			}
			if strings.TrimSpace(line) != "reset" {
				cmd.Println("Aborted. Nothing was changed.")
				return nil
			}
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

		spinner, cleanupSpinner := startSpinner("Regenerating your keys...", verbose)
		defer cleanupSpinner()

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		result, err := workflows.Reset(cmd.Context(), env, workflows.ResetOptions{
			NewPassword: newPassword,
			Confirmed:   true,
		})
		if err != nil {
			return Logger.ErrorfAndReturn("reset failed: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " New keys generated " + ui.Muted.Sprint("key id "+result.PublicKeyID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "skip the interactive confirmation")
}
