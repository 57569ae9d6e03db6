package whatsapp

import (
	"context"
	"time"

	"academia/internal/domain/reminder"
)

// SendRequest contains the data needed to send one WhatsApp message.
// Credentials travel with the request because they come from the
// operator-edited messaging settings, not from process configuration.
type SendRequest struct {
	To       string // Recipient phone number in E.164 form
	Body     string // Message text
	Settings reminder.Settings
}

// SendResult contains the response from the messaging provider.
type SendResult struct {
	MessageID string    // Provider's message SID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending WhatsApp messages via an external
// provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
