package domain

import "time"

// Message is a single direct message between two users. Body and SentAt are
// immutable after creation; ReadAt moves from nil to a timestamp at most
// once and never reverts.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// Read reports whether the recipient has already marked the message read.
func (m Message) Read() bool {
	return m.ReadAt != nil
}

// Involves reports whether username is one of the two participants. Only
// those two may ever see the message.
func (m Message) Involves(username string) bool {
	return username == m.FromUsername || username == m.ToUsername
}

// MessageDetail is a message hydrated with both participants' public
// profiles.
type MessageDetail struct {
	Message
	FromUser Profile `json:"from_user"`
	ToUser   Profile `json:"to_user"`
}
