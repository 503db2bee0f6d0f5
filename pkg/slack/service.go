// Package slack mirrors operator alerts to a Slack channel
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrSlackSendFailed is returned when Slack API fails
	ErrSlackSendFailed = errors.New("failed to send Slack notification")
)

// Message represents a Slack message
type Message struct {
	Text string `json:"text"`
}

// SlackClient is an interface for sending Slack notifications
type SlackClient interface {
	SendMessage(ctx context.Context, msg Message) error
}

// WebhookClient implements SlackClient using Slack webhooks
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new Slack webhook client
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage sends a message to Slack via webhook
func (c *WebhookClient) SendMessage(ctx context.Context, msg Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrSlackSendFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrSlackSendFailed
	}

	return nil
}

// Service handles Slack notifications
type Service struct {
	client SlackClient
}

// NewService creates a new Slack service. A nil client disables it.
func NewService(client SlackClient) *Service {
	return &Service{
		client: client,
	}
}

// IsEnabled returns true if Slack notifications are enabled
func (s *Service) IsEnabled() bool {
	return s.client != nil
}

// Alert mirrors an operator text message to the channel
func (s *Service) Alert(ctx context.Context, text string) error {
	if !s.IsEnabled() {
		return nil
	}
	return s.client.SendMessage(ctx, Message{Text: text})
}

// DailyStats summarizes lead activity for the daily digest
type DailyStats struct {
	Total     int
	New       int
	Paid      int
	SMSSent   int
	SMSFailed int
	OptedOut  int
	Booked    int
}

// NotifyDailyStats posts the daily digest
func (s *Service) NotifyDailyStats(ctx context.Context, stats DailyStats) error {
	if !s.IsEnabled() {
		return nil
	}

	text := fmt.Sprintf("📊 *Daily Lead Digest*\n"+
		"• Total leads: %d\n"+
		"• New (24h): %d\n"+
		"• Paid: %d\n"+
		"• SMS sent / failed: %d / %d\n"+
		"• Opted out: %d\n"+
		"• Booked: %d",
		stats.Total, stats.New, stats.Paid, stats.SMSSent, stats.SMSFailed, stats.OptedOut, stats.Booked)

	return s.client.SendMessage(ctx, Message{Text: text})
}

// NotifyBackupFailed reports a failed nightly snapshot
func (s *Service) NotifyBackupFailed(ctx context.Context, reason string) error {
	if !s.IsEnabled() {
		return nil
	}

	text := fmt.Sprintf("⚠️ *Backup Failed*\n• Reason: %s", reason)
	return s.client.SendMessage(ctx, Message{Text: text})
}
