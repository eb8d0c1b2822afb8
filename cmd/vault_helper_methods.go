package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/configs"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/store"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/ui"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/utils"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/workflows"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. Returns the spinner and a function that should
// be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines; the cleanup
// function calls ui.EnsureNewline() on the final message before printing.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		Logger.Debugf("Starting spinner in non-verbose mode")
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		// Restore log output first.
		if !verbose && !debug {
			Logger.Debugf("Restoring log output")
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			Logger.Debugf("Stopping spinner")
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// buildEnv assembles the workflow environment: loads config, opens the
// local store, and constructs the session. The returned cleanup closes the
// store and must be deferred.
func buildEnv() (*workflows.Env, func(), error) {
	config, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user config: %w", err)
	}

	storePath := filepath.Join(configs.UserVaultSettings.UserDataPath, "store")
	local, err := store.OpenLocal(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	cache := session.NewCredentialCache(time.Duration(config.Vault.CredentialTTLMinutes) * time.Minute)

	sess, err := session.New(config.User.UUID, local, session.Options{
		KDFIterations: config.Vault.KDFIterations,
		IdleTimeout:   time.Duration(config.Vault.IdleTimeoutMinutes) * time.Minute,
		Credentials:   cache,
	})
	if err != nil {
		_ = local.Close()
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	env := &workflows.Env{
		UserID:   config.User.UUID,
		Session:  sess,
		Local:    local,
		Settings: config.Vault,
	}
	if config.Server.BaseURL != "" {
		env.Remote = store.NewRemote(config.Server.BaseURL)
	}

	cleanup := func() {
		env.Session.Lock()
		if err := local.Close(); err != nil {
			Logger.Warnf("Failed to close local store: %v", err)
		}
	}
	return env, cleanup, nil
}

// promptPassword reads the vault password without echo.
func promptPassword(prompt string) (string, error) {
	pw, err := utils.ReadPassphrase(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// ensureUnlocked unlocks the session if it is locked, prompting for the
// password. Commands that need key material call this first.
func ensureUnlocked(env *workflows.Env) error {
	switch env.Session.State() {
	case session.Unlocked:
		return nil
	case session.Uninitialized:
		return verrors.ErrVaultNotInitialized
	}

	password, err := promptPassword("Vault password: ")
	if err != nil {
		return err
	}
	return env.Session.Unlock(password)
}

// renderUnlockError maps unlock failures to the user-facing message. Every
// decryption failure during unlock renders identically, with no hint as to
// why it failed.
func renderUnlockError(err error) string {
	if errors.Is(err, verrors.ErrDecryptionFailed) {
		return ui.Error.Sprint("✗") + " Incorrect password"
	}
	if errors.Is(err, verrors.ErrVaultNotInitialized) || errors.Is(err, verrors.ErrKeyNotFound) {
		return ui.Error.Sprint("✗") + " Vault has not been set up\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vault setup") + " first"
	}
	return ui.Error.Sprint("✗") + " " + err.Error()
}
