package domain

import "time"

// StatusPending is assigned to tasks created without an explicit status.
const StatusPending = "pending"

// Task represents a user-owned activity item. OwnerID is set once at
// creation and never changes afterwards.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) IsOwnedBy(userID string) bool {
	return t != nil && userID != "" && t.OwnerID == userID
}
