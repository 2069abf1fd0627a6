package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gigmarket/account-security/internal/core/ports"
)

const defaultAPITimeout = 10 * time.Second

// APIConfig configures the HTTP email API used as the primary channel.
type APIConfig struct {
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

// APISender posts messages to a JSON email API (Resend-compatible payload).
type APISender struct {
	client *resty.Client
	from   string
}

func NewAPISender(cfg APIConfig) *APISender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &APISender{client: client, from: cfg.From}
}

type apiPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

func (s *APISender) Name() string { return "api" }

func (s *APISender) Send(ctx context.Context, msg ports.EmailMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(apiPayload{
			From:    s.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			Text:    msg.Text,
			HTML:    msg.HTML,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("email api request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email api: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
