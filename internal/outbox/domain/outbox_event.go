// Package domain defines the transactional outbox entities and event types.
package domain

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the identity service. Sibling services consume these
// from the platform bus; names are part of the integration contract.
const (
	EventTypeUserRegistered = "user.registered"
	EventTypeUserEnrolled   = "user.enrolled"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent represents an event in the transactional outbox pattern.
// Events are written in the same transaction as the state change they
// announce and published asynchronously by the worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRegisteredPayload is the body of a user.registered event. The email
// travels as hex-encoded ciphertext; consumers holding the encryption key
// decrypt it, everyone else gets an opaque value.
type UserRegisteredPayload struct {
	UserID         int64  `json:"user_id"`
	EmailEncrypted string `json:"email_encrypted"`
	Role           string `json:"role"`
}

// UserEnrolledPayload is the body of a user.enrolled event.
type UserEnrolledPayload struct {
	UserID   int64 `json:"user_id"`
	CourseID int64 `json:"course_id"`
}

// NewUserRegisteredEvent builds a pending user.registered event. The payload
// never contains plaintext PII.
func NewUserRegisteredEvent(userID int64, emailEncrypted []byte, role string) (*OutboxEvent, error) {
	payload, err := json.Marshal(UserRegisteredPayload{
		UserID:         userID,
		EmailEncrypted: hex.EncodeToString(emailEncrypted),
		Role:           role,
	})
	if err != nil {
		return nil, err
	}
	return newPendingEvent(EventTypeUserRegistered, payload)
}

// NewUserEnrolledEvent builds a pending user.enrolled event.
func NewUserEnrolledEvent(userID, courseID int64) (*OutboxEvent, error) {
	payload, err := json.Marshal(UserEnrolledPayload{
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return nil, err
	}
	return newPendingEvent(EventTypeUserEnrolled, payload)
}

// newPendingEvent assigns a UUIDv7 so event IDs sort by creation time.
func newPendingEvent(eventType string, payload []byte) (*OutboxEvent, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:        id,
		EventType: eventType,
		Payload:   string(payload),
		Status:    OutboxEventStatusPending,
	}, nil
}
