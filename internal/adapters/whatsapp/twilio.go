package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DefaultCallTimeout bounds a single provider call when the caller's context
// carries no deadline. A hanging provider must not stall a dispatch run.
const DefaultCallTimeout = 15 * time.Second

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
type TwilioSender struct{}

// NewTwilioSender creates a new TwilioSender.
func NewTwilioSender() *TwilioSender {
	return &TwilioSender{}
}

// Send delivers a single WhatsApp message.
// PRE: req.Settings has been validated; req.To is non-empty
// POST: Returns the provider message SID on acceptance
func (s *TwilioSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if req.To == "" {
		return SendResult{}, errors.New("recipient phone number is required")
	}

	timeout := DefaultCallTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	httpClient := &http.Client{Timeout: timeout}
	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(req.Settings.AccountSID, req.Settings.AuthToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(req.Settings.AccountSID)
	client := twilio.NewRestClientWithParams(twilio.ClientParams{Client: base})

	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + req.Settings.SenderNumber)
	params.SetTo("whatsapp:" + req.To)
	params.SetBody(req.Body)

	msg, err := client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("whatsapp_send_failed", "error", err, "to", req.To)
		return SendResult{}, fmt.Errorf("twilio send failed: %w", err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	slog.Info("whatsapp_sent", "message_sid", sid, "to", req.To)
	return SendResult{MessageID: sid, SentAt: time.Now()}, nil
}
