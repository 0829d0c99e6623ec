// Package mail posts templated messages to the outbound mail relay.
// Delivery is best-effort: callers dispatch after their transaction commits
// and only log failures.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"identity-service/internal/config"

	"github.com/google/uuid"
)

type Client struct {
	relayURL   string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewClient(cfg config.MailConfig) *Client {
	return &Client{
		relayURL:   strings.TrimRight(cfg.RelayURL, "/"),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	RequestID string            `json:"request_id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data,omitempty"`
}

// SendWelcome queues the post-signup welcome mail.
func (c *Client) SendWelcome(ctx context.Context, to, firstName, lastName string) error {
	return c.send(ctx, message{
		RequestID: uuid.New().String(),
		From:      c.from,
		To:        to,
		Template:  "welcome",
		Data: map[string]string{
			"FirstName": firstName,
			"LastName":  lastName,
		},
	})
}

func (c *Client) send(ctx context.Context, m message) error {
	if c.relayURL == "" {
		return fmt.Errorf("mail relay not configured")
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned %d", resp.StatusCode)
	}
	return nil
}
