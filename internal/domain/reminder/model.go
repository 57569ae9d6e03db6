// Package reminder holds the messaging configuration singleton and the
// per-recipient outcome model for payment-reminder dispatch.
package reminder

import (
	"errors"
	"strings"
)

// Delivery outcome constants. There is no finer failure taxonomy: a reject,
// a timeout and a transport error all record as failed.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// Channel constants for how a reminder reached a student.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Domain errors
var (
	ErrMissingAccountSID   = errors.New("account SID is required")
	ErrMissingAuthToken    = errors.New("auth token is required")
	ErrMissingSenderNumber = errors.New("sender number is required")
	ErrEmptyMessage        = errors.New("reminder message cannot be empty")
	ErrNoSelection         = errors.New("at least one student must be selected")
)

// Settings is the messaging configuration singleton. Created on first save,
// overwritten on save; there is no delete path.
type Settings struct {
	AccountSID     string
	AuthToken      string
	SenderNumber   string
	DefaultMessage string
}

// Validate checks the Settings are usable for dispatch.
// PRE: Settings struct is initialized
// POST: Returns error if a required field is missing, nil otherwise
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.AccountSID) == "" {
		return ErrMissingAccountSID
	}
	if strings.TrimSpace(s.AuthToken) == "" {
		return ErrMissingAuthToken
	}
	if strings.TrimSpace(s.SenderNumber) == "" {
		return ErrMissingSenderNumber
	}
	return nil
}

// ResolveMessage picks the message body for a dispatch: an explicit override
// wins, otherwise the configured default.
func (s *Settings) ResolveMessage(override string) (string, error) {
	body := strings.TrimSpace(override)
	if body == "" {
		body = strings.TrimSpace(s.DefaultMessage)
	}
	if body == "" {
		return "", ErrEmptyMessage
	}
	return body, nil
}

// Outcome records the result of one reminder send attempt. Exactly one
// Outcome exists per selected student, in selection order.
type Outcome struct {
	StudentID   int
	StudentName string
	Channel     string
	Recipient   string // phone or email address the send targeted
	Result      string // OutcomeDelivered or OutcomeFailed
	MessageID   string // provider reference, set on delivery
	Reason      string // failure detail, set on failure
}

// Delivered reports whether the attempt succeeded.
func (o Outcome) Delivered() bool {
	return o.Result == OutcomeDelivered
}
