package domain

// InvitationStatus is the state tag carried by a stored invitation. Only
// "pending" is ever written; accept and decline remove the record instead of
// transitioning it.
type InvitationStatus string

const InvitationPending InvitationStatus = "pending"

// Sentinel display values for invitations whose referenced documents no
// longer resolve.
const (
	UnknownProjectName = "Unknown Project"
	InvalidProjectName = "Invalid Project"
	UnknownUserName    = "Unknown User"
)

// Invitation is a pending request for a user to join a project, stored inside
// the recipient's notification record. The JSON field names are the stored
// wire format and must not change.
type Invitation struct {
	ProjectID string           `json:"projectId"`
	Sender    string           `json:"sender"`
	Status    InvitationStatus `json:"status"`
}

// NotificationRecord is the per-user container of pending invitations,
// keyed by the recipient's user ID. Created lazily on first invitation.
type NotificationRecord struct {
	UserID      string       `json:"-"`
	Invitations []Invitation `json:"invitations"`
}

// InvitationView is an invitation enriched for display: the project name and
// sender username are resolved, falling back to sentinel values when the
// referenced documents are missing or malformed.
type InvitationView struct {
	ProjectID      string `json:"projectId"`
	ProjectName    string `json:"projectName"`
	Sender         string `json:"sender"`
	SenderUsername string `json:"senderUsername"`
}
