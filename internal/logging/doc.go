// Package logger provides leveled logging for vault CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with semantic prefixes and colors.
//
// # Verbosity Levels
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only user-facing warnings and errors are shown.
//
// # Log Methods
//
//	Logger.Infof()            // Shown with --verbose or --debug
//	Logger.Debugf()           // Shown only with --debug
//	Logger.Warnf()            // Warnings
//	Logger.WarnfUser()        // User-facing warnings, always shown
//	Logger.Errorf()           // Errors
//	Logger.ErrorfAndReturn()  // Logs and returns the error
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Encrypting %d bytes", len(plaintext))
//
// Commands typically create a logger in their PersistentPreRun and
// pass it to internal functions. Log messages must never include key
// material, passwords, or plaintext content.
package logger
