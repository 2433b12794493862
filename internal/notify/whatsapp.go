package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender implements the TextSender interface against an HTTP
// WhatsApp gateway (WAHA-style API).
type WhatsAppSender struct {
	baseURL string
	token   string
	sender  string // session/sender identifier on the gateway
	client  *http.Client
}

type whatsAppMessage struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

type whatsAppResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var _ TextSender = (*WhatsAppSender)(nil)

// NewWhatsAppSender creates a new WhatsApp gateway client.
func NewWhatsAppSender(baseURL, token, sender string) *WhatsAppSender {
	return &WhatsAppSender{
		baseURL: baseURL,
		token:   token,
		sender:  sender,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a text message via the WhatsApp gateway.
func (w *WhatsAppSender) SendText(ctx context.Context, msg *TextMessage) (string, error) {
	payload := whatsAppMessage{
		Session: w.sender,
		ChatID:  normalizePhone(msg.To) + "@c.us",
		Text:    msg.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/api/sendText", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", w.token)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("whatsapp gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whatsAppResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.ID, nil
}

// normalizePhone strips formatting characters so the gateway receives
// digits only. Leading '+' and local separators are dropped.
func normalizePhone(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}
