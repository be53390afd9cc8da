package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle changes.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed authentication and revocations.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine token activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"user_id,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Reason    string        `json:"reason,omitempty"`
	// Email is recorded for account lifecycle events only.
	Email     string `json:"email,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventUserCreated    AuditEvent = "user_created"
	EventUserUpdated    AuditEvent = "user_updated"
	EventUserDeleted    AuditEvent = "user_deleted"
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventTokenRefreshed AuditEvent = "token_refreshed"
	EventTokenRejected  AuditEvent = "token_rejected"
	EventSessionRevoked AuditEvent = "session_revoked"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated: CategoryCompliance,
	EventUserUpdated: CategoryCompliance,
	EventUserDeleted: CategoryCompliance,

	EventAuthFailed:     CategorySecurity,
	EventTokenRejected:  CategorySecurity,
	EventSessionRevoked: CategorySecurity,

	EventLoginSucceeded: CategoryOperations,
	EventTokenRefreshed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
