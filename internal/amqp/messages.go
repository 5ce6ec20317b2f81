package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"wealth/internal/notify"
)

// AlertEmailMessage carries a fully rendered email from the evaluator to the
// mail worker.
type AlertEmailMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertEmailMessage wraps m with a fresh message ID.
func NewAlertEmailMessage(m notify.Message) *AlertEmailMessage {
	return &AlertEmailMessage{
		ID:        uuid.NewString(),
		To:        m.To,
		Subject:   m.Subject,
		HTML:      m.HTML,
		Timestamp: time.Now().UTC(),
	}
}

// Message converts back to the notify form for delivery.
func (m *AlertEmailMessage) Message() notify.Message {
	return notify.Message{To: m.To, Subject: m.Subject, HTML: m.HTML}
}

// ToJSON converts the message to JSON bytes
func (m *AlertEmailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertEmailMessageFromJSON decodes and validates a message body.
func AlertEmailMessageFromJSON(data []byte) (*AlertEmailMessage, error) {
	var msg AlertEmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message id is required")
	}
	if err := msg.Message().Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
