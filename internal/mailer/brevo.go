package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo sends transactional email through the Brevo (Sendinblue) HTTP API.
type Brevo struct {
	APIKey     string
	FromEmail  string
	FromName   string
	HTTPClient *http.Client
	Endpoint   string
}

func NewBrevoFromEnv() *Brevo {
	name := os.Getenv("SENDER_NAME")
	if name == "" {
		name = "Our Saladish"
	}
	return &Brevo{
		APIKey:    os.Getenv("BREVO_API_KEY"),
		FromEmail: os.Getenv("SENDER_EMAIL"),
		FromName:  name,
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (b *Brevo) Send(ctx context.Context, to, subject, html string) error {
	if b.FromEmail == "" {
		return fmt.Errorf("mailer: SENDER_EMAIL is not set")
	}

	payload := brevoPayload{
		Sender:      brevoAddress{Email: b.FromEmail, Name: b.FromName},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = brevoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := b.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &SendError{Status: res.StatusCode, Body: string(respBody)}
	}
	return nil
}

// SendError carries the Brevo response for failed deliveries.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mailer: brevo send failed with status %d", e.Status)
}
