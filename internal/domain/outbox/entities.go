package outbox

import (
	"encoding/json"
	"time"
)

const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

const (
	EventTransferRecorded = "transfer.recorded"
	EventCycleAdvanced    = "world.cycle_advanced"
	EventWorldHalted      = "world.halted"
)

// Table: outbox_messages
type Message struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"column:message_key;size:64;not null" json:"message_key"`
	EventType  string    `gorm:"column:event_type;size:64;not null" json:"event_type"`
	Payload    string    `gorm:"column:payload;type:text;not null" json:"payload"`
	Status     string    `gorm:"column:status;size:20;not null;default:PENDING;index" json:"status"`
	RetryCount int       `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string { return "outbox_messages" }

// NewMessage marshals payload as JSON into a pending message.
func NewMessage(eventType, key string, payload any) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		MessageKey: key,
		EventType:  eventType,
		Payload:    string(b),
		Status:     StatusPending,
	}, nil
}
