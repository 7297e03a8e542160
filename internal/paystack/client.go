// Package paystack is a thin client for the Paystack transaction API:
// initialize, verify and webhook signature validation. It never touches
// order state, that is the payment service's job.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/amazing-outfits/shop-backend/internal/config"
)

var (
	// ErrNotConfigured is returned when no secret key was provided.
	ErrNotConfigured = errors.New("paystack secret key is not configured")
	// ErrInvalidSignature marks a webhook whose signature check failed.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// APIError is a failure reported by the provider itself, as opposed to a
// transport problem.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "paystack: " + e.Message
}

// Metadata travels with the transaction and is echoed back unmodified on
// verify responses and webhook events.
type Metadata struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // kobo
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

// Authorization is the provider's handle for a freshly initialized
// transaction.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the provider's record of a charge.
type Transaction struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Channel   string   `json:"channel,omitempty"`
	PaidAt    string   `json:"paid_at,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// WebhookEvent is the envelope Paystack posts to the webhook endpoint.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	secret  string
	baseURL string
	http    *http.Client
}

func New(cfg config.Paystack) *Client {
	return &Client{
		secret:  cfg.SecretKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (Authorization, error) {
	var auth Authorization
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", req, &auth); err != nil {
		return Authorization{}, err
	}
	return auth, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (Transaction, error) {
	var txn Transaction
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &txn); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, dest any) error {
	if c.secret == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode paystack request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call paystack: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode paystack response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Status {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &APIError{Message: msg}
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode paystack data: %w", err)
	}
	return nil
}
