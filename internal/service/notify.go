package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// notification is the payload posted to the socket relay.
type notification struct {
	Message string `json:"message"`
	From    uint   `json:"from"`
	To      uint   `json:"to"`
}

// Notifier dispatches best-effort new-message notifications to the
// external socket relay. Failures are logged and swallowed; a relay
// outage must never fail the request that triggered it.
type Notifier struct {
	url    string
	client *http.Client
}

// NewNotifier creates a Notifier posting to the given relay URL. An empty
// URL disables dispatch.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		url: url,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// Notify posts {message, from, to} to the relay. It never returns an error.
func (n *Notifier) Notify(ctx context.Context, message string, from, to uint) {
	if n == nil || n.url == "" {
		return
	}

	body, err := json.Marshal(notification{Message: message, From: from, To: to})
	if err != nil {
		log.Printf("[Notifier] failed to marshal notification: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[Notifier] failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("[Notifier] dispatch to %s failed: %v", n.url, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		log.Printf("[Notifier] relay returned status %d", resp.StatusCode)
	}
}
