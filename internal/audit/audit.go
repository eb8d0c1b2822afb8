package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/configs"
)

// Entry represents a single audit log entry. Entries record that an
// operation happened, never its plaintext or key material.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	UserUUID  string `json:"uuid"` // UUID of user performing action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	ContentID   string `json:"content_id,omitempty"`   // For encrypt/decrypt/share/revoke.
	TargetUser  string `json:"target_user,omitempty"`  // For share/revoke.
	PublicKeyID string `json:"public_key_id,omitempty"` // For setup/unlock/reset.
	Method      string `json:"method,omitempty"`       // For recovery (none/phrase).
	SizeBytes   int    `json:"size_bytes,omitempty"`   // For encrypt.
	Chunks      int    `json:"chunks,omitempty"`       // For encrypt.
}

// Log appends an entry to the audit log.
// If logging fails, the operation proceeds anyway; operations should not
// fail just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	dataPath := configs.UserVaultSettings.UserDataPath
	if dataPath == "" {
		return
	}

	if err := os.MkdirAll(dataPath, 0700); err != nil {
		return
	}

	logPath := filepath.Join(dataPath, "audit.jsonl")

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser is a convenience function that populates the user UUID from config.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return entry
	}

	entry.UserUUID = userConfig.User.UUID
	return entry
}
