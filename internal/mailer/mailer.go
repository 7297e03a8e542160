// Package mailer delivers transactional order emails through a
// SendGrid-compatible HTTP API. Delivery is best-effort: callers log
// failures and never fail the mutation that triggered the email.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amazing-outfits/shop-backend/internal/config"
	"github.com/amazing-outfits/shop-backend/internal/entities"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("mail api key is not configured")

type Client struct {
	apiKey  string
	from    string
	baseURL string
	http    *http.Client
}

func New(cfg config.Email) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) SendOrderConfirmation(ctx context.Context, order entities.Order) error {
	subject := fmt.Sprintf("Order Confirmation - Order #%s", order.OrderNumber)
	return c.send(ctx, order.CustomerEmail, subject, renderConfirmation(order))
}

func (c *Client) SendStatusUpdate(ctx context.Context, order entities.Order) error {
	subject := fmt.Sprintf("Order Status Update - Order #%s", order.OrderNumber)
	return c.send(ctx, order.CustomerEmail, subject, renderStatusUpdate(order))
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type message struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

func (c *Client) send(ctx context.Context, to, subject, html string) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	msg := message{
		Personalizations: []personalization{{To: []address{{Email: to}}}},
		From:             address{Email: c.from},
		Subject:          subject,
		Content:          []content{{Type: "text/html", Value: html}},
	}

	body := new(bytes.Buffer)
	if err := json.NewEncoder(body).Encode(msg); err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", body)
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send mail: unexpected status %d", resp.StatusCode)
	}
	return nil
}
