// Package app provides the core plugin service bound to the host chat client.
package app

// Event names for host UI communication.
const (
	EventProgress  = "translation-progress"
	EventError     = "translation-error"
	EventSelection = "selection-changed"
)

// ErrorEvent is a transient, toast-style failure notification.
type ErrorEvent struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// SelectionEvent mirrors the selection tracker for the host UI.
type SelectionEvent struct {
	Active    bool   `json:"active"`
	ChannelID string `json:"channelId"`
	Count     int    `json:"count"`
}
