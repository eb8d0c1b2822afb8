package cmd

import (
	"github.com/spf13/cobra"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Verify your password and unlock the vault",
	Long:  `Unlocks the vault with your password. On a new device where the account already has encryption enabled, this fetches your wrapped keys from the server and restores them locally first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unlock command")

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		if env.Session.Unlocked() {
			Logger.Debugf("Session auto-unlocked from cached credential")
		} else {
			password, perr := promptPassword("Vault password: ")
			if perr != nil {
				return Logger.ErrorfAndReturn("failed to read password: %v", perr)
			}

			uerr := workflows.Unlock(cmd.Context(), env, password)
			if uerr != nil && env.Session.State() == session.Uninitialized && env.Online() {
				// New device: pull the wrapped keys down before unlocking.
				Logger.Infof("No local keys; attempting restore from server")
				uerr = workflows.Restore(cmd.Context(), env, password)
			}
			if uerr != nil {
				cmd.Println(renderUnlockError(uerr))
				return nil
			}
		}

		cmd.Println(ui.Success.Sprint("✓") + " Vault unlocked\n" +
			"Public key id: " + ui.Highlight.Sprint(env.Session.PublicKeyID()))
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault and clear cached credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting lock command")

		env, cleanup, err := buildEnv()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize: %v", err)
		}
		defer cleanup()

		workflows.Lock(env)

		cmd.Println(ui.Success.Sprint("✓") + " Vault locked")
		return nil
	},
}
