package session

// Intent is the reconciliation verdict between the server's
// "encryption enabled" flag and the presence of local key material.
type Intent int

const (
	// IntentUninitialized: encryption was never set up anywhere. Offer setup.
	IntentUninitialized Intent = iota

	// IntentNeedsLocalRestore: the server says encryption is enabled but no
	// local material exists (new device, or local storage cleared). Route to
	// an explicit "enter password to restore locally" flow.
	IntentNeedsLocalRestore

	// IntentReady: server flag and local material agree; normal operation.
	IntentReady

	// IntentInconsistent: local keys exist but the server says encryption is
	// disabled. Discarding the local keys would silently orphan content
	// encrypted under them, so this requires explicit user confirmation,
	// never an automatic reset.
	IntentInconsistent
)

func (i Intent) String() string {
	switch i {
	case IntentUninitialized:
		return "uninitialized"
	case IntentNeedsLocalRestore:
		return "needs-local-restore"
	case IntentReady:
		return "ready"
	case IntentInconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// Reconcile replaces scattered conditionals on the server flag and local key
// presence with a single explicit decision point consumed by the state
// machine and the CLI.
func Reconcile(serverEnabled, localKeyPresent bool) Intent {
	switch {
	case !serverEnabled && !localKeyPresent:
		return IntentUninitialized
	case serverEnabled && !localKeyPresent:
		return IntentNeedsLocalRestore
	case serverEnabled && localKeyPresent:
		return IntentReady
	default:
		return IntentInconsistent
	}
}
