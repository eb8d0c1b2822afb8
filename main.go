package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "lifestyle",
	Short: "Lifestyle - A CLI for end-to-end encrypted journals, goals, and sharing.",
	Long: `Lifestyle keeps your journal entries and wellness data encrypted on your
own machine. The server only ever sees ciphertext.

Features:
  - Encrypt content locally before it leaves your device
  - Share individual entries with other people, and take sharing back
  - Recover a forgotten password with a 24-word phrase

Usage:
  lifestyle <command> [flags]

Available Commands:
  vault      Manage your encrypted vault

Run 'lifestyle help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Run 'lifestyle --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.VaultCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
