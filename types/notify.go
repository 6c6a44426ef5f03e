package types

const (
	NotifyTypeUploadStart       = "upload_start"
	NotifyTypeUploadProgress    = "upload_progress"
	NotifyTypeUploadEnd         = "upload_end"
	NotifyTypeUploadFailed      = "upload_failed"
	NotifyTypeCandidatesUpdated = "candidates_updated"
	NotifyTypePendingChanged    = "pending_changed"
)

// Notification represents a notification message structure
type Notification struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type,omitempty"`    // e.g. "upload_start", "upload_progress"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

// NotifyHub broadcasts notifications to connected clients.
type NotifyHub interface {
	Broadcast(notification *Notification)
}
