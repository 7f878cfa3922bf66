package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"internship_portal/internal/models"
)

// Sender delivers notification emails. Callers treat delivery as
// best-effort: a send failure never fails the surrounding operation.
type Sender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// HTTPRelay posts messages to an external mail relay authenticated by a
// shared secret.
type HTTPRelay struct {
	client *http.Client
	url    string
	secret string
}

func NewHTTPRelay(relayURL, secret string, timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{
		client: &http.Client{Timeout: timeout},
		url:    relayURL,
		secret: secret,
	}
}

func (m *HTTPRelay) Send(ctx context.Context, msg models.EmailMessage) error {
	const op = "mailer.HTTPRelay.Send"

	payload := struct {
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
		Secret  string `json:"secret"`
	}{
		Email:   msg.Email,
		Subject: msg.Subject,
		Message: msg.Message,
		Secret:  m.secret,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: relay returned status %d", op, resp.StatusCode)
	}

	return nil
}
