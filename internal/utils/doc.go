// Package utils provides small cross-cutting helpers for the CLI,
// currently terminal passphrase input.
package utils
