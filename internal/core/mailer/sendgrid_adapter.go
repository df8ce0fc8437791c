package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"digo-dashboard/internal/core/config"
)

// ErrSendFailed wraps any non-2xx response from the mail provider.
var ErrSendFailed = errors.New("mailer: send failed")

// SendGridAdapter delivers mail through the SendGrid v3 mail send API.
// It performs a single attempt per message; callers record failures
// instead of retrying.
type SendGridAdapter struct {
	apiKey    string
	baseURL   string
	fromEmail string
	fromName  string
	client    *http.Client
}

func NewSendGridAdapter(cfg config.EmailConfig) *SendGridAdapter {
	return &SendGridAdapter{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMailSend struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgErrorItem struct {
	Message string `json:"message"`
}

type sgErrorResponse struct {
	Errors []sgErrorItem `json:"errors"`
}

func (a *SendGridAdapter) Send(ctx context.Context, msg Message) error {
	if a.apiKey == "" {
		return fmt.Errorf("%w: missing api key", ErrSendFailed)
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("%w: recipient required", ErrSendFailed)
	}

	from := sgAddress{Email: msg.From}
	if from.Email == "" {
		from.Email = a.fromEmail
		from.Name = a.fromName
	}

	contents := make([]sgContent, 0, 2)
	if msg.Text != "" {
		contents = append(contents, sgContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		contents = append(contents, sgContent{Type: "text/html", Value: msg.HTML})
	}
	if len(contents) == 0 {
		return fmt.Errorf("%w: empty body", ErrSendFailed)
	}

	wire := sgMailSend{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: to}}}},
		From:             from,
		Subject:          msg.Subject,
		Content:          contents,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v3/mail/send", &buf)
	if err != nil {
		return fmt.Errorf("mailer: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		var er sgErrorResponse
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 && er.Errors[0].Message != "" {
			return fmt.Errorf("%w: http %d: %s", ErrSendFailed, resp.StatusCode, er.Errors[0].Message)
		}
		return fmt.Errorf("%w: http %d", ErrSendFailed, resp.StatusCode)
	}
	return nil
}
