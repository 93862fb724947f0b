package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesNotifier delivers notifications by email through AWS SES. The user id is
// used as the recipient address; deployments with opaque user ids should wrap
// this notifier with a directory lookup.
type sesNotifier struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func newSESNotifier(config Config, logger *slog.Logger) *sesNotifier {
	awsCfg := aws.Config{
		Region: config.SES.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.SES.AccessKeyID,
				config.SES.SecretAccessKey,
				"",
			),
		),
	}
	return &sesNotifier{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: config.FromAddress,
		fromName:    config.FromName,
		logger:      logger,
	}
}

func (n *sesNotifier) SlotAvailable(ctx context.Context, userID, conferenceName, bookingID string, deadline time.Time) error {
	subject := fmt.Sprintf("A seat opened up at %s", conferenceName)
	body := fmt.Sprintf(
		"A seat at %s is yours to claim. Confirm booking %s before %s or your place moves to the back of the waitlist.",
		conferenceName, bookingID, deadline.Format(time.RFC1123),
	)
	return n.send(ctx, userID, subject, body)
}

func (n *sesNotifier) BookingConfirmed(ctx context.Context, userID, conferenceName, bookingID string) error {
	subject := fmt.Sprintf("Booking confirmed for %s", conferenceName)
	body := fmt.Sprintf("Your booking %s for %s is confirmed. See you there!", bookingID, conferenceName)
	return n.send(ctx, userID, subject, body)
}

func (n *sesNotifier) BookingWaitlisted(ctx context.Context, userID, conferenceName, bookingID string) error {
	subject := fmt.Sprintf("You are waitlisted for %s", conferenceName)
	body := fmt.Sprintf(
		"%s is fully booked. Your booking %s is on the waitlist; we will email you when a seat opens up.",
		conferenceName, bookingID,
	)
	return n.send(ctx, userID, subject, body)
}

func (n *sesNotifier) BookingCanceled(ctx context.Context, userID, conferenceName, bookingID, reason string) error {
	subject := fmt.Sprintf("Booking canceled for %s", conferenceName)
	body := fmt.Sprintf("Your booking %s for %s was canceled (%s).", bookingID, conferenceName, reason)
	return n.send(ctx, userID, subject, body)
}

func (n *sesNotifier) send(ctx context.Context, to, subject, body string) error {
	source := n.fromAddress
	if n.fromName != "" {
		source = fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}
	n.logger.Debug("notification email sent", "to", to, "message_id", aws.ToString(result.MessageId))
	return nil
}
