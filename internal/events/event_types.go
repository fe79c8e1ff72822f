package events

import (
	"time"

	"github.com/spec-kit/user-directory/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated EventType = "user_created"
	EventUserUpdated EventType = "user_updated"
	EventUserDeleted EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserChangedPayload carries the record state after a create or update.
type UserChangedPayload struct {
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Gender    domain.Gender `json:"gender"`
	Age       int           `json:"age"`
	Email     string        `json:"email"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Email string `json:"email"`
}

// NewUserChangedPayload snapshots user for an event.
func NewUserChangedPayload(user domain.User) UserChangedPayload {
	return UserChangedPayload{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Gender:    user.Gender,
		Age:       user.Age,
		Email:     user.Email,
	}
}
