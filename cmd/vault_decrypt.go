package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var decryptOutputPath string

func init() {
	decryptCmd.Flags().StringVarP(&decryptOutputPath, "output", "o", "", "write plaintext to a file instead of stdout")
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <content-id>",
	Short: "Decrypt content from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		contentID := args[0]

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if err := ensureUnlocked(env); err != nil {
			cmd.Println(renderUnlockError(err))
			return nil
		}

		plaintext, err := workflows.Decrypt(cmd.Context(), env, contentID)
		if err != nil {
			switch {
			case errors.Is(err, verrors.ErrContentNotFound):
				cmd.Println(ui.Error.Sprint("✗") + " No content with id " + ui.Highlight.Sprint(contentID))
				return nil
			case errors.Is(err, verrors.ErrShareNotFound), errors.Is(err, verrors.ErrShareExpired):
				cmd.Println(ui.Error.Sprint("✗") + " You no longer have access to this content")
				return nil
			case errors.Is(err, verrors.ErrDecryptionFailed):
				cmd.Println(ui.Error.Sprint("✗") + " Content unreadable (tampered or wrong key)")
				return nil
			case errors.Is(err, verrors.ErrUnsupportedVersion):
				cmd.Println(ui.Error.Sprint("✗") + " Content uses a newer format; update required")
				return nil
			}
			return Logger.ErrorfAndReturn("decryption failed: %v", err)
		}

		if decryptOutputPath != "" {
			// #nosec G306 -- the user asked for a plaintext file they can edit.
			if err := os.WriteFile(decryptOutputPath, plaintext, 0644); err != nil {
				return Logger.ErrorfAndReturn("failed to write %s: %v", decryptOutputPath, err)
			}
			cmd.Println(ui.Success.Sprint("✓") + " Plaintext written to " + ui.Highlight.Sprint(decryptOutputPath))
			return nil
		}

		cmd.OutOrStdout().Write(plaintext)
		return nil
	},
}
