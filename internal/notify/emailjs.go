package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJS sends the booking through the hosted EmailJS REST API.
type EmailJS struct {
	endpoint   string
	publicKey  string
	privateKey string
	client     *http.Client
}

type EmailJSConfig struct {
	Endpoint   string
	PublicKey  string
	PrivateKey string // optional access token for strict-mode accounts
}

func NewEmailJS(cfg EmailJSConfig, client *http.Client) *EmailJS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &EmailJS{
		endpoint:   cfg.Endpoint,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		client:     client,
	}
}

type emailJSRequest struct {
	ServiceID      string                         `json:"service_id"`
	TemplateID     string                         `json:"template_id"`
	UserID         string                         `json:"user_id"`
	AccessToken    string                         `json:"accessToken,omitempty"`
	TemplateParams appointment.NotificationParams `json:"template_params"`
}

func (e *EmailJS) Notify(ctx context.Context, n appointment.Notification) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      n.ServiceID,
		TemplateID:     n.TemplateID,
		UserID:         e.publicKey,
		AccessToken:    e.privateKey,
		TemplateParams: n.Params,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
