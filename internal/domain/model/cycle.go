package model

import (
	"github.com/google/uuid"
	"time"
)

// Message is the text produced by one cycle and handed to the notifiers.
type Message struct {
	ID        uuid.UUID `json:"id"`
	CycleID   uuid.UUID `json:"cycle_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage is a factory function to create a message for the given cycle.
func NewMessage(cycleID uuid.UUID, subject, body string) *Message {
	return &Message{
		ID:        uuid.New(),
		CycleID:   cycleID,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// CycleReport summarises a finished poll cycle.
type CycleReport struct {
	ID         uuid.UUID            `json:"id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Stores     map[StoreCode]int    `json:"stores"` // timeslot count per store
	Failed     map[StoreCode]string `json:"failed,omitempty"`
	Available  bool                 `json:"available"`
	Notified   bool                 `json:"notified"`
	NotifyErr  string               `json:"notify_error,omitempty"`
}
