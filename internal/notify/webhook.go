package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Webhook posts run notifications to a chat webhook. Strictly fire and
// forget: every failure is logged and swallowed, the pipeline outcome never
// depends on it.
type Webhook struct {
	url    string
	client *http.Client
}

func New(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *Webhook) UseDefaultClient() {
	w.client = http.DefaultClient
}

type message struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Send delivers one notification, best effort.
func (w *Webhook) Send(ctx context.Context, title, text string) {
	if w.url == "" {
		return
	}

	data, err := json.Marshal(message{Title: title, Message: text})
	if err != nil {
		log.Printf("webhook marshal failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		log.Printf("webhook request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("webhook delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("webhook rejected: %d", resp.StatusCode)
	}
}
