// Package workflows orchestrates the encryption core's operations.
//
// Each workflow takes a context, an Env (session + stores, passed
// explicitly), and an Options struct, and returns a Result struct plus
// typed errors from the errors package. The CLI layer is a thin renderer
// over these functions; tests exercise them directly against a temp-dir
// local store or an httptest server.
package workflows
