package notify

import (
	"context"
	"log/slog"
	"time"

	"confbooking/internal/domain"
)

// SESConfig holds configuration for AWS SES delivery.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Config holds configuration for creating a notifier.
type Config struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

// New creates a notifier from config. Provider "ses" delivers by email via AWS
// SES; "log" or unknown falls back to the slog notifier.
func New(config Config, logger *slog.Logger) (domain.Notifier, error) {
	switch config.Provider {
	case "ses":
		return newSESNotifier(config, logger), nil
	case "log", "":
		return &logNotifier{logger: logger}, nil
	default:
		logger.Warn("unknown notifier provider, using log", "provider", config.Provider)
		return &logNotifier{logger: logger}, nil
	}
}

// logNotifier records each notification decision on the application log. It is
// the default collaborator: the engine decides that a user must be told
// something and this adapter makes that decision observable.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) SlotAvailable(ctx context.Context, userID, conferenceName, bookingID string, deadline time.Time) error {
	n.logger.Info("notify: slot available",
		"user_id", userID,
		"conference", conferenceName,
		"booking_id", bookingID,
		"confirm_until", deadline,
	)
	return nil
}

func (n *logNotifier) BookingConfirmed(ctx context.Context, userID, conferenceName, bookingID string) error {
	n.logger.Info("notify: booking confirmed",
		"user_id", userID,
		"conference", conferenceName,
		"booking_id", bookingID,
	)
	return nil
}

func (n *logNotifier) BookingWaitlisted(ctx context.Context, userID, conferenceName, bookingID string) error {
	n.logger.Info("notify: booking waitlisted",
		"user_id", userID,
		"conference", conferenceName,
		"booking_id", bookingID,
	)
	return nil
}

func (n *logNotifier) BookingCanceled(ctx context.Context, userID, conferenceName, bookingID, reason string) error {
	n.logger.Info("notify: booking canceled",
		"user_id", userID,
		"conference", conferenceName,
		"booking_id", bookingID,
		"reason", reason,
	)
	return nil
}
