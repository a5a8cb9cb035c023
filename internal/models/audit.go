package models

import "time"

// AuditAction labels recorded admin activity.
type AuditAction string

const (
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionLogout       AuditAction = "LOGOUT"
	AuditActionAlumniDelete AuditAction = "ALUMNI_DELETE"
	AuditActionRosterExport AuditAction = "ROSTER_EXPORT"
)

// AuditLog records a sensitive admin operation.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	AdminID    *string     `db:"admin_id" json:"admin_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte      `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string      `db:"ip_address" json:"ip_address"`
	UserAgent  string      `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
