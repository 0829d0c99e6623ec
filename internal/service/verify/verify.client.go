// Package verify is the client for the out-of-band verification gateway.
// The gateway owns the codes: it delivers them over SMS or email and checks
// submissions against its own pending-attempt state.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"identity-service/internal/config"
	"identity-service/pkg/xerrors"
)

// Outcome is the result of one channel check. NotPending means the gateway
// has no open verification for the destination, which is distinct from a
// wrong code against an open one.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeWrongCode
	OutcomeNotPending
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

type Client struct {
	baseURL    string
	serviceSID string
	accountSID string
	authToken  string
	httpClient *http.Client
}

func NewClient(cfg config.VerifyConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceSID: cfg.ServiceSID,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StartSMS asks the gateway to deliver a code to a mobile number.
func (c *Client) StartSMS(ctx context.Context, mobile string) error {
	return c.start(ctx, mobile, ChannelSMS)
}

// StartEmail asks the gateway to deliver a code to an email address.
func (c *Client) StartEmail(ctx context.Context, email string) error {
	return c.start(ctx, email, ChannelEmail)
}

func (c *Client) start(ctx context.Context, to, channel string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Channel", channel)

	endpoint := fmt.Sprintf("%s/v2/Services/%s/Verifications", c.baseURL, c.serviceSID)
	resp, err := c.post(ctx, endpoint, form)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Rate limits and malformed destinations both land here; the caller
		// only needs to know dispatch failed and is retryable.
		log.Printf("[verify] start failed | channel=%s status=%d", channel, resp.StatusCode)
		return fmt.Errorf("%w: gateway returned %d", xerrors.ErrChannelUnavailable, resp.StatusCode)
	}
	return nil
}

// CheckSMS checks a submitted code against the mobile channel.
func (c *Client) CheckSMS(ctx context.Context, mobile, code string) (Outcome, error) {
	return c.check(ctx, mobile, code)
}

// CheckEmail checks a submitted code against the email channel.
func (c *Client) CheckEmail(ctx context.Context, email, code string) (Outcome, error) {
	return c.check(ctx, email, code)
}

func (c *Client) check(ctx context.Context, to, code string) (Outcome, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Code", code)

	endpoint := fmt.Sprintf("%s/v2/Services/%s/VerificationCheck", c.baseURL, c.serviceSID)
	resp, err := c.post(ctx, endpoint, form)
	if err != nil {
		return OutcomeNotPending, fmt.Errorf("%w: %v", xerrors.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	// The gateway answers 404 when no verification is pending for the
	// destination. That is the only case that may fall through to the
	// next channel.
	if resp.StatusCode == http.StatusNotFound {
		return OutcomeNotPending, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return OutcomeNotPending, fmt.Errorf("%w: gateway returned %d", xerrors.ErrChannelUnavailable, resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"` // "approved" | "pending"
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return OutcomeNotPending, fmt.Errorf("%w: decode check response: %v", xerrors.ErrChannelUnavailable, err)
	}

	if body.Status == "approved" {
		return OutcomeOK, nil
	}
	return OutcomeWrongCode, nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)
	return c.httpClient.Do(req)
}
