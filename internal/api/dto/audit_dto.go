package dto

import (
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// AuditLogResponse describes one audit entry.
type AuditLogResponse struct {
	ID          string             `json:"id"`
	Seq         int64              `json:"seq"`
	Action      domain.AuditAction `json:"action"`
	PerformedBy string             `json:"performed_by"`
	TargetUser  *string            `json:"target_user,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Metadata    *string            `json:"metadata,omitempty"`
}

// PageMeta describes pagination of a list response.
type PageMeta struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// AuditLogsFromDomain maps audit entries.
func AuditLogsFromDomain(entries []domain.AuditLogEntry) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditLogResponse{
			ID:          e.ID,
			Seq:         e.Seq,
			Action:      e.Action,
			PerformedBy: e.PerformedBy,
			TargetUser:  e.TargetUser,
			Timestamp:   e.Timestamp,
			Metadata:    e.Metadata,
		})
	}
	return out
}
