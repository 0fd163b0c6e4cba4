package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/careline-triage/cmd/mainconfig"
	appconfig "github.com/wolfman30/careline-triage/internal/config"
	"github.com/wolfman30/careline-triage/internal/notify"
	"github.com/wolfman30/careline-triage/internal/tickets"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

// BuildTicketPublisher returns an SQS publisher when a queue URL is
// configured and an in-memory publisher otherwise.
func BuildTicketPublisher(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (tickets.Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	queueURL := strings.TrimSpace(cfg.TicketUpdatesQueueURL)
	if queueURL == "" {
		logger.Info("ticket publisher: memory")
		return tickets.NewMemoryPublisher(), nil
	}
	client, err := mainconfig.NewSQSClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: ticket publisher: %w", err)
	}
	logger.Info("ticket publisher: sqs", "queue_url", queueURL)
	return tickets.NewSQSPublisher(client, queueURL), nil
}

// BuildEmailSender returns SES when EMAIL_PROVIDER=ses, SendGrid when an
// API key is configured, and a logging stub otherwise.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg != nil && cfg.EmailProvider == "ses" && strings.TrimSpace(cfg.SESFromEmail) != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err == nil {
			logger.Info("email sender: ses")
			return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
			}, logger)
		}
		logger.Warn("failed to load aws config for ses; falling back", "error", err)
	}
	if cfg != nil {
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			logger.Info("email sender: sendgrid")
			return sender
		}
	}
	logger.Info("email sender: stub")
	return notify.NewStubEmailSender(logger)
}
