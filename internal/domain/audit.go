package domain

import "time"

// AuditAction tags a privileged action in the audit trail.
type AuditAction string

const (
	AuditAssignRole          AuditAction = "Assign Role"
	AuditPromoteAdmin        AuditAction = "Promote Admin"
	AuditGrantAdmin          AuditAction = "Grant Admin"
	AuditExtendAdmin         AuditAction = "Extend Admin"
	AuditRevokeAdmin         AuditAction = "Revoke Admin"
	AuditAutoExpired         AuditAction = "AutoExpired"
	AuditRequestAdminAccess  AuditAction = "Request Admin Access"
	AuditApproveUser         AuditAction = "Approve User"
	AuditRejectUser          AuditAction = "Reject User"
	AuditResetApproval       AuditAction = "Reset Approval"
	AuditVerifyDoctor        AuditAction = "Verify Doctor"
	AuditAddFacility         AuditAction = "Add Facility"
	AuditCreateDevice        AuditAction = "Create Device"
	AuditLinkDevice          AuditAction = "Link Device"
	AuditReassignDevice      AuditAction = "Reassign Device"
	AuditUnlinkDevice        AuditAction = "Unlink Device"
	AuditToggleDevice        AuditAction = "Toggle Device"
	AuditOverrideAppointment AuditAction = "Override Appointment"
)

// SystemPrincipal performs system-initiated actions such as auto-expiry.
const SystemPrincipal = "system"

// AuditLogEntry is an immutable record of a privileged mutation.
type AuditLogEntry struct {
	ID          string
	Seq         int64
	Action      AuditAction
	PerformedBy string
	TargetUser  *string
	Timestamp   time.Time
	Metadata    *string
}

// AuditFilter narrows an audit query.
type AuditFilter struct {
	Action     *AuditAction
	TargetUser *string
}

// Matches reports whether the entry passes the filter.
func (f AuditFilter) Matches(e AuditLogEntry) bool {
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	if f.TargetUser != nil && (e.TargetUser == nil || *e.TargetUser != *f.TargetUser) {
		return false
	}
	return true
}
