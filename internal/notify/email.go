package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/metrics"
)

const notificationSubject = "You have a package!"

// EmailNotifier sends pickup instructions through SendGrid. Transport
// failures are logged and swallowed so package registration never fails
// because of the mail provider.
type EmailNotifier struct {
	client *sendgrid.Client
	from   string
	logger *zap.Logger
}

func NewEmailNotifier(apiKey, from string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("Package Locker", e.from),
		notificationSubject,
		mail.NewEmail(n.ResidentName, n.To),
		plainBody(n),
		htmlBody(n),
	)

	resp, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		e.logger.Error("error sending email", zap.String("to", n.To), zap.Error(err))
		metrics.NotificationFailuresTotal.Inc()
		return nil
	}
	if resp.StatusCode >= 400 {
		e.logger.Error("email rejected by provider",
			zap.String("to", n.To), zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
		metrics.NotificationFailuresTotal.Inc()
		return nil
	}

	e.logger.Info("email sent", zap.String("to", n.To))
	return nil
}

func plainBody(n Notification) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYou have a package in Locker %s.\nYour PIN is: %s\n\nView details: %s\n\nPlease pick it up within 48 hours.",
		n.ResidentName, n.LockerNumber, n.Pin, n.PickupLink)
}

func htmlBody(n Notification) string {
	return fmt.Sprintf(`
      <div style="font-family: sans-serif; padding: 20px;">
        <h2>You have a package!</h2>
        <p>Hello %s,</p>
        <p>Your package is ready for pickup in <strong>Locker %s</strong>.</p>
        <div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
          <p style="margin: 0; font-size: 14px; color: #666;">Your PIN Code:</p>
          <p style="margin: 5px 0 0; font-size: 24px; font-weight: bold; letter-spacing: 2px;">%s</p>
        </div>
        <p><a href="%s" style="background: #4f46e5; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Pickup Details</a></p>
        <p style="color: #666; font-size: 12px; margin-top: 30px;">Please pick up your package within 48 hours.</p>
      </div>
    `, n.ResidentName, n.LockerNumber, n.Pin, n.PickupLink)
}

// LogNotifier is the no-API-key fallback: it only logs what would have
// been sent.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info("mock email sent",
		zap.String("to", n.To),
		zap.String("resident", n.ResidentName),
		zap.String("locker", n.LockerNumber),
		zap.String("pin", n.Pin),
		zap.String("pickup_link", n.PickupLink),
	)
	return nil
}
