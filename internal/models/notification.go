package models

import (
	"github.com/tipbase-server/internal/types"
)

// Notification represents a single entry in the notification feed
type Notification struct {
	ID        string                 `json:"id"`
	Type      types.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Timestamp int64                  `json:"timestamp"` // epoch millis
	Read      bool                   `json:"read"`
}
