package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/atelierhq/pulse/pkg/config"
	"github.com/atelierhq/pulse/pkg/models"
)

var (
	errWebhookDisabled = fmt.Errorf("webhook notifier is disabled")
	errWebhookCooldown = fmt.Errorf("alert is within cooldown period")
	errWebhookStatus   = fmt.Errorf("webhook returned non-2xx status")
)

// WebhookNotifier posts raised alerts to a configured HTTP endpoint.
// A per-type cooldown suppresses repeat deliveries for alerts that are
// already firing; the store still records every occurrence.
type WebhookNotifier struct {
	config        config.WebhookConfig
	client        *http.Client
	lastSentTimes map[string]time.Time
	mu            sync.Mutex
	bufferPool    *sync.Pool
}

func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		lastSentTimes: make(map[string]time.Time),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (w *WebhookNotifier) IsEnabled() bool {
	return w.config.Enabled
}

// Notify implements Notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if !w.IsEnabled() {
		return errWebhookDisabled
	}

	if err := w.checkCooldown(alert.Type); err != nil {
		return err
	}

	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(alert); err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	return w.sendRequest(ctx, buf)
}

func (w *WebhookNotifier) checkCooldown(alertType string) error {
	cooldown := time.Duration(w.config.Cooldown)
	if cooldown <= 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	lastSent, exists := w.lastSentTimes[alertType]
	if exists && time.Since(lastSent) < cooldown {
		return errWebhookCooldown
	}

	w.lastSentTimes[alertType] = time.Now()

	return nil
}

func (w *WebhookNotifier) sendRequest(ctx context.Context, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req) //nolint:bodyclose // Response body is closed later
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBuf := w.bufferPool.Get().(*bytes.Buffer)
		errBuf.Reset()
		defer w.bufferPool.Put(errBuf)

		_, _ = io.Copy(errBuf, resp.Body)

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, errBuf.String())
	}

	return nil
}

func (w *WebhookNotifier) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
