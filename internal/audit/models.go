package audit

import "time"

// Action names a reviewable event.
type Action string

const (
	ActionSubmissionCreated  Action = "submission_created"
	ActionSubmissionApproved Action = "submission_approved"
	ActionSubmissionRejected Action = "submission_rejected"
	ActionAdminLogin         Action = "admin_login"
	ActionAdminLoginFailed   Action = "admin_login_failed"
	ActionAdminLogout        Action = "admin_logout"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	Actor        string    `json:"actor"`
	SubmissionID int64     `json:"submissionId,omitempty"`
	Gothram      string    `json:"gothram,omitempty"`
	Status       string    `json:"status,omitempty"`
	// Device is the parsed user agent label, never the raw header.
	Device    string `json:"device,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ActorPublic marks events triggered by an unauthenticated caller.
const ActorPublic = "public"
