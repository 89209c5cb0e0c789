// Package slack implements the notify Adapter for Slack incoming webhooks.
package slack

import (
	"context"
	"fmt"

	"github.com/crewline/crewline/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// poster abstracts the webhook call, enabling test mocks.
type poster func(ctx context.Context, url string, msg *slackapi.WebhookMessage) error

// Adapter posts events to a Slack incoming webhook.
type Adapter struct {
	webhookURL string
	post       poster
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	WebhookURL string
	// For testing: inject a mock poster instead of the real webhook call.
	Post poster
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.WebhookURL == "" {
		return nil, fmt.Errorf("slack: webhook URL is required")
	}
	a := &Adapter{
		webhookURL: opts.WebhookURL,
		post:       opts.Post,
	}
	if a.post == nil {
		a.post = slackapi.PostWebhookContext
	}
	return a, nil
}

// Name implements notify.Adapter.
func (a *Adapter) Name() string { return "slack" }

// Send posts the event as one attachment with the entity ID in the footer.
func (a *Adapter) Send(ctx context.Context, ev notify.Event) error {
	msg := &slackapi.WebhookMessage{
		Attachments: []slackapi.Attachment{{
			Title:  ev.Subject,
			Text:   ev.Body,
			Footer: ev.EntityID,
		}},
	}
	if err := a.post(ctx, a.webhookURL, msg); err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	return nil
}
