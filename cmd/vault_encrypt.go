package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var encryptInputPath string

func init() {
	encryptCmd.Flags().StringVarP(&encryptInputPath, "file", "f", "", "read plaintext from a file instead of stdin")
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt content into the vault",
	Long:  `Reads plaintext from stdin (or --file), encrypts it under a fresh content key, and stores the resulting blob. Prints the content id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")

		var plaintext []byte
		var err error
		if encryptInputPath != "" {
			plaintext, err = os.ReadFile(encryptInputPath)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read %s: %v", encryptInputPath, err)
			}
		} else {
			plaintext, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read stdin: %v", err)
			}
		}

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if err := ensureUnlocked(env); err != nil {
			cmd.Println(renderUnlockError(err))
			return nil
		}

		spinner, cleanupSpinner := startSpinner("Encrypting content...", verbose)
		defer cleanupSpinner()

		result, err := workflows.Encrypt(cmd.Context(), env, workflows.EncryptOptions{Plaintext: plaintext})
		if err != nil {
			return Logger.ErrorfAndReturn("encryption failed: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Content encrypted\n" +
			"Content id: " + ui.Highlight.Sprint(result.ContentID)
		return nil
	},
}
