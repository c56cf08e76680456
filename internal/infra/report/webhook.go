// Package report sends play completion records to an external endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playline/internal/domain/item"
)

// Webhook posts a JSON play record per finished item. Delivery is best
// effort: failures are logged and never surface to the caller.
type Webhook struct {
	endpoint   string
	httpClient *http.Client
}

// Config represents webhook reporter configuration.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// PlayRecord is the wire format of one completed play.
type PlayRecord struct {
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title,omitempty"`
	PlayedSec  float64   `json:"played_sec"`
	FinishedAt time.Time `json:"finished_at"`
}

// errorResponse represents an error body from the endpoint.
type errorResponse struct {
	Error string `json:"error"`
}

// New creates a new webhook reporter.
func New(cfg Config) (*Webhook, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("report endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Webhook{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ItemFinished posts the play record. Called from the engine on its own
// goroutine, so blocking on the HTTP round trip is fine.
func (w *Webhook) ItemFinished(it item.Item, played time.Duration) {
	if err := w.post(context.Background(), it, played); err != nil {
		zlog.Warn().Err(err).Str("item", it.ID).Msg("report: failed to deliver play record")
		return
	}
	zlog.Debug().Str("item", it.ID).Dur("played", played).Msg("report: play record delivered")
}

func (w *Webhook) post(ctx context.Context, it item.Item, played time.Duration) error {
	record := PlayRecord{
		ItemID:     it.ID,
		Title:      it.Title,
		PlayedSec:  played.Seconds(),
		FinishedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode play record")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var apiError errorResponse
		if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != "" {
			return errors.Errorf("endpoint rejected record (%d): %s", resp.StatusCode, apiError.Error)
		}
		return errors.Errorf("endpoint rejected record: status %d", resp.StatusCode)
	}

	return nil
}
