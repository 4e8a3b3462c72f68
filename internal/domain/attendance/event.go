package attendance

import "context"

// Realtime event names published per workspace.
const (
	EventCheckedIn             = "attendance.checked_in"
	EventCheckedOut            = "attendance.checked_out"
	EventWorkResumed           = "attendance.resumed"
	EventSessionStarted        = "session.started"
	EventSessionEnded          = "session.ended"
	EventSessionAutoClosed     = "session.auto_closed"
	EventPresenceChecked       = "presence.checked"
	EventChangeRequestCreated  = "change_request.created"
	EventChangeRequestReviewed = "change_request.reviewed"
	EventSettingsUpdated       = "settings.updated"
)

// Event is addressed to UserID. Only that user and workspace admins see it
// unless Broadcast is set.
type Event struct {
	Type        string
	WorkspaceID string
	UserID      string
	Data        interface{}
	Broadcast   bool
}

// EventPublisher fans attendance events out to realtime subscribers.
// Publishing is best effort and never fails the originating operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
