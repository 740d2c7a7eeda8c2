package domain

import "time"

// Message represents a point-to-point text message between two users.
// Messages are immutable once persisted; there is no update path.
type Message struct {
	// ID is the surrogate key assigned by the store on persist.
	// SentinelID before persistence.
	ID int64 `json:"id"`

	// FromID and ToID reference User.ID. Both must resolve to existing
	// users at persist time; the store's foreign-key constraints enforce
	// this.
	FromID int64 `json:"from_id"`
	ToID   int64 `json:"to_id"`

	// Text is the free-form message payload.
	Text string `json:"text"`

	// CreationDate is assigned by the store clock at persist time,
	// never by the caller.
	CreationDate time.Time `json:"creation_date"`
}

// NewMessage creates an unpersisted Message.
func NewMessage(fromID, toID int64, text string) *Message {
	return &Message{
		ID:     SentinelID,
		FromID: fromID,
		ToID:   toID,
		Text:   text,
	}
}

// Persisted reports whether the message has been committed to the store.
func (m *Message) Persisted() bool {
	return m.ID != SentinelID
}
