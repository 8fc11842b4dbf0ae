// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// AuditEvent is published whenever a privileged operation completes:
// superadmin login, role changes, settings updates, backup runs and
// credential deletion.  It carries enough information for downstream
// consumers to log or alert without querying the primary database.
type AuditEvent struct {
	Action     string `json:"action"`
	ActorID    uint64 `json:"actor_id"`
	ActorEmail string `json:"actor_email"`
	TargetID   uint64 `json:"target_id,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Audit action names.
const (
	ActionSuperadminLogin   = "superadmin.login"
	ActionRoleChanged       = "user.role_changed"
	ActionActiveChanged     = "user.active_changed"
	ActionSettingsUpdated   = "settings.updated"
	ActionAPIKeyRotated     = "settings.api_key_rotated"
	ActionBackupCompleted   = "backup.completed"
	ActionCredentialDeleted = "superadmin.credential_deleted"
	ActionPasswordReset     = "superadmin.password_reset"
)
