// Package ui provides semantic text formatting for CLI output.
//
// Formatters carry both a color and a plain-text fallback so output stays
// readable when colors are disabled (NO_COLOR, non-TTY, TERM=dumb).
//
//	fmt.Println(ui.Success.Sprint("✓") + " Vault unlocked")
//	fmt.Println("Run " + ui.Code.Sprint("vault unlock") + " to continue")
package ui
