package notification

import (
	"fmt"
	"os"

	"pickup-scheduler/httpServices/sms"
	"pickup-scheduler/logger"
	pickupModel "pickup-scheduler/models/pickup"
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Delivery status of a notification attempt.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Result of a notification attempt.
type Result struct {
	Status  string `json:"status"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Provider delivers a rendered notification to a recipient. Implementations
// return false (or an error) when delivery did not happen.
type Provider interface {
	Send(recipient, subject, body string) (bool, error)
}

// LoggingProvider logs instead of sending. Development stand-in; swap for a
// real provider via NOTIFY_PROVIDER in production.
type LoggingProvider struct{}

func (LoggingProvider) Send(recipient, subject, body string) (bool, error) {
	logger.Printf("NOTIFICATION [%s]: %s - %s", recipient, subject, body)
	return true, nil
}

// SMSProvider delivers through the external SMS gateway.
type SMSProvider struct {
	Client *sms.Client
}

func (p SMSProvider) Send(recipient, subject, body string) (bool, error) {
	if err := p.Client.SendMessage(recipient, subject+"\n"+body); err != nil {
		return false, err
	}
	return true, nil
}

// Service coordinates pickup reminder delivery through a pluggable provider.
type Service struct {
	provider Provider
}

// NewService creates a notification service. A nil provider falls back to the
// logging stand-in.
func NewService(provider Provider) *Service {
	if provider == nil {
		provider = LoggingProvider{}
	}
	return &Service{provider: provider}
}

// NewServiceFromEnv selects the provider from NOTIFY_PROVIDER.
func NewServiceFromEnv() *Service {
	switch os.Getenv("NOTIFY_PROVIDER") {
	case "sms":
		return NewService(SMSProvider{Client: sms.NewClient(os.Getenv("SMS_GATEWAY_URL"))})
	default:
		return NewService(LoggingProvider{})
	}
}

// SendPickupReminder renders and sends the reminder for a pickup. Provider
// failures are captured in the result; this method never returns delivery
// errors to the caller and never mutates the pickup.
func (s *Service) SendPickupReminder(p *pickupModel.Pickup) Result {
	recipientEmail := p.ContactDetails.Email
	recipientName := p.ContactDetails.Name
	if recipientName == "" {
		recipientName = "Customer"
	}

	if recipientEmail == "" {
		logger.Warning("No email found for pickup " + p.PickupID)
		return Result{
			Status:  StatusSkipped,
			Message: "No recipient email configured",
		}
	}

	startAt := p.PickupWindow.StartAt
	if startAt == "" {
		startAt = "scheduled time"
	}

	subject := fmt.Sprintf("Pickup Reminder: %s", p.PickupID)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"This is a reminder that your pickup (%s) is scheduled to start at %s.\n\n"+
			"Please ensure your packages are ready for collection.\n\n"+
			"Thank you!",
		recipientName, p.PickupID, startAt,
	)

	success, err := s.provider.Send(recipientEmail, subject, body)
	if err != nil {
		logger.Error("Failed to send notification for pickup "+p.PickupID, err)
		return Result{
			Status:  StatusFailed,
			Channel: ChannelEmail,
			Message: "Error during send",
			Error:   err.Error(),
		}
	}

	if !success {
		return Result{
			Status:  StatusFailed,
			Channel: ChannelEmail,
			Message: "Provider returned failure",
			Error:   "send() returned false",
		}
	}

	logger.Success("Notification sent for pickup " + p.PickupID + " to " + recipientEmail)
	return Result{
		Status:  StatusSent,
		Channel: ChannelEmail,
		Message: fmt.Sprintf("Notification sent to %s", recipientEmail),
	}
}
