// Package expo implementa el sender de push contra el gateway de Expo.
// El servicio solo entrega tickets; la entrega final al dispositivo la
// resuelve Expo (colaborador externo).
package expo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sam-requests/internal/platform/httpclient"
	"sam-requests/internal/ports/push"
)

const (
	// DefaultBaseURL es el gateway público de Expo.
	DefaultBaseURL = "https://exp.host"

	sendPath = "/--/api/v2/push/send"
)

var (
	ErrNotConfigured = errors.New("expo client not configured")
	ErrUpstream      = errors.New("expo upstream error")
)

// Config del cliente Expo. BaseURL normalmente viene de config y en tests
// apunta a un httptest.Server.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	http *httpclient.Client
}

// NewClient arma el sender. Con BaseURL vacío se usa el gateway público.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(base, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// wireMessage es el formato que espera el endpoint de Expo: un arreglo
// de mensajes, cada uno con destinatario y payload de datos.
type wireMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type ticketResponse struct {
	Data []struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send manda el lote en un solo POST. Un status no-2xx o un error a nivel
// request cuentan como entrega fallida completa; los tickets individuales
// con error se reportan pero no cortan (Expo ya aceptó el lote).
func (c *Client) Send(ctx context.Context, msgs []push.Message) error {
	if c == nil || c.http == nil {
		return ErrNotConfigured
	}
	if len(msgs) == 0 {
		return nil
	}

	payload := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.To) == "" {
			continue
		}
		payload = append(payload, wireMessage{
			To:    m.To,
			Title: m.Title,
			Body:  m.Body,
			Data:  m.Data,
		})
	}
	if len(payload) == 0 {
		return nil
	}

	var out ticketResponse
	if err := c.http.DoJSON(ctx, "POST", sendPath, nil, payload, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(out.Errors) > 0 {
		return ErrUpstream
	}
	return nil
}

var _ push.Sender = (*Client)(nil)
