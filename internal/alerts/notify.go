// File path: internal/alerts/notify.go
package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
)

// Notification is a dispatch request for a triggered alert.
type Notification struct {
	Recipient string   `json:"recipient"`
	Subject   string   `json:"subject"`
	Message   string   `json:"message"`
	Channels  []string `json:"channels"`
}

// Notifier delivers notifications over the alert's configured channels.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// ChannelNotifier fans a notification out to its channels: "console" logs,
// "slack" posts through the Slack API, "email" is left to the deployment and
// logged as skipped. Unknown channels are logged and ignored.
type ChannelNotifier struct {
	slack        *slack.Client
	slackChannel string
}

func NewChannelNotifier(cfg config.Slack) *ChannelNotifier {
	n := &ChannelNotifier{slackChannel: cfg.Channel}
	if strings.TrimSpace(cfg.Token) != "" {
		n.slack = slack.New(cfg.Token)
	}
	return n
}

func (n *ChannelNotifier) Send(ctx context.Context, note Notification) error {
	logger := common.Logger()
	channels := note.Channels
	if len(channels) == 0 {
		channels = []string{"console"}
	}
	for _, channel := range channels {
		switch strings.ToLower(channel) {
		case "console":
			logger.Info("alerts: notification",
				"recipient", note.Recipient, "subject", note.Subject, "message", note.Message)
		case "slack":
			if n.slack == nil || n.slackChannel == "" {
				logger.Warn("alerts: slack not configured, skipping notification", "recipient", note.Recipient)
				continue
			}
			text := fmt.Sprintf("*%s*\n%s", note.Subject, note.Message)
			if _, _, err := n.slack.PostMessageContext(ctx, n.slackChannel, slack.MsgOptionText(text, false)); err != nil {
				return fmt.Errorf("slack notification: %w", err)
			}
		case "email":
			logger.Info("alerts: email delivery is handled by the deployment, skipping", "recipient", note.Recipient)
		default:
			logger.Warn("alerts: unsupported notification channel", "channel", channel)
		}
	}
	return nil
}
