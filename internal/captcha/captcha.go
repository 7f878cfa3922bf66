package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	sl "internship_portal/internal/lib/logger"
)

// Verifier proves a human originated the request. Network or service
// failures count as "not verified": login and registration hard-fail on
// captcha, so failing open would defeat the check.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

type Client struct {
	log       *slog.Logger
	client    *http.Client
	verifyURL string
	secret    string
}

func NewClient(log *slog.Logger, verifyURL, secret string, timeout time.Duration) *Client {
	return &Client{
		log:       log,
		client:    &http.Client{Timeout: timeout},
		verifyURL: verifyURL,
		secret:    secret,
	}
}

func (c *Client) Verify(ctx context.Context, token string) bool {
	const op = "captcha.Verify"

	if token == "" {
		return false
	}

	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.log.Error("failed to build captcha request", slog.String("op", op), sl.Err(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("captcha verification request failed", slog.String("op", op), sl.Err(err))
		return false
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("failed to decode captcha response", slog.String("op", op), sl.Err(err))
		return false
	}

	return body.Success
}
