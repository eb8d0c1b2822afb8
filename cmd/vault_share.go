package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var (
	shareAllowComment bool
	shareAllowReshare bool
	shareExpiresIn    time.Duration
)

func init() {
	shareCmd.Flags().BoolVar(&shareAllowComment, "allow-comment", false, "let the recipient comment")
	shareCmd.Flags().BoolVar(&shareAllowReshare, "allow-reshare", false, "let the recipient reshare")
	shareCmd.Flags().DurationVar(&shareExpiresIn, "expires-in", 0, "expire the share after this duration (e.g. 72h)")
}

var shareCmd = &cobra.Command{
	Use:   "share <content-id> <recipient-user-id>",
	Short: "Share encrypted content with another user",
	Long:  `Re-wraps the content key under the recipient's public key. The content itself is not re-encrypted and the raw key never leaves this machine.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share command")
		contentID, recipient := args[0], args[1]

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if err := ensureUnlocked(env); err != nil {
			cmd.Println(renderUnlockError(err))
			return nil
		}

		spinner, cleanupSpinner := startSpinner("Sharing content...", verbose)
		defer cleanupSpinner()

		opts := workflows.ShareOptions{
			ContentID:       contentID,
			RecipientUserID: recipient,
			Permissions: sharing.Permissions{
				Read:    true,
				Comment: shareAllowComment,
				Reshare: shareAllowReshare,
			},
		}
		if shareExpiresIn > 0 {
			t := time.Now().Add(shareExpiresIn).UTC()
			opts.ExpiresAt = &t
		}

		result, err := workflows.Share(cmd.Context(), env, opts)
		if err != nil {
			switch {
			case errors.Is(err, verrors.ErrRecipientKeyNotFound):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " This person hasn't enabled secure sharing yet"
				return nil
			case errors.Is(err, verrors.ErrSelfShare):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " You already have access to your own content"
				return nil
			case errors.Is(err, verrors.ErrUnauthorizedShare):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " You don't hold the owner key for this content"
				return nil
			case errors.Is(err, verrors.ErrContentNotFound):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " No content with id " + ui.Highlight.Sprint(contentID)
				return nil
			}
			return Logger.ErrorfAndReturn("share failed: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Shared " + ui.Highlight.Sprint(result.ContentID) +
			" with " + ui.Highlight.Sprint(result.RecipientUserID)
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <content-id> <recipient-user-id>",
	Short: "Revoke a recipient's access to shared content",
	Long:  `Deletes the recipient's share record. Content they already fetched and decrypted stays readable to them; revocation prevents any future key retrieval.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting revoke command")
		contentID, recipient := args[0], args[1]

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if err := ensureUnlocked(env); err != nil {
			cmd.Println(renderUnlockError(err))
			return nil
		}

		if err := workflows.Revoke(cmd.Context(), env, contentID, recipient); err != nil {
			if errors.Is(err, verrors.ErrShareNotFound) {
				cmd.Println(ui.Error.Sprint("✗") + " No share found for that content and recipient")
				return nil
			}
			return Logger.ErrorfAndReturn("revoke failed: %v", err)
		}

		cmd.Println(ui.Success.Sprint("✓") + " Access revoked for " + ui.Highlight.Sprint(recipient))
		return nil
	},
}
