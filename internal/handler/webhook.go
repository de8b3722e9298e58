// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/replyloop-ai/messenger-platform/internal/model"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
	"github.com/replyloop-ai/messenger-platform/pkg/metrics"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// acknowledgment body expected by the platform on every delivery.
const eventReceivedBody = "EVENT_RECEIVED"

// Dispatcher starts processing one message event without blocking the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event model.MessageEvent)
}

// WebhookHandler receives platform callback deliveries.
type WebhookHandler struct {
	verifyToken string
	dispatcher  Dispatcher
	logger      *logger.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(verifyToken string, dispatcher Dispatcher, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

// Verify handles GET /webhook, the platform subscription handshake.
// Echoes the challenge when mode is "subscribe" and the token matches.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "" || token == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.verifyToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// Deliver handles POST /webhook. The platform always gets a 200 once the
// body parses as JSON; anything else would teach it to retry with backoff
// storms. Entries that don't match the expected shape are skipped one by
// one, never aborting the whole payload.
func (h *WebhookHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		// Not the shape we expect; acknowledge and move on.
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		h.ack(w)
		return
	}

	if payload.Object != "page" {
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		h.ack(w)
		return
	}

	receivedAt := time.Now()
	dispatched := 0
	for _, entry := range payload.Entry {
		if entry.ID == "" {
			metrics.WebhookEventsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		for _, ev := range entry.Messaging {
			if ev.Message == nil || ev.Message.Text == "" || ev.Sender.ID == "" {
				continue
			}
			h.dispatcher.Dispatch(r.Context(), model.MessageEvent{
				PageID:     entry.ID,
				SenderID:   ev.Sender.ID,
				Text:       ev.Message.Text,
				ReceivedAt: receivedAt,
			})
			dispatched++
		}
	}

	if dispatched > 0 {
		metrics.WebhookEventsTotal.WithLabelValues("dispatched").Add(float64(dispatched))
		h.logger.Debug("webhook events dispatched", zap.Int("count", dispatched))
	}

	h.ack(w)
}

func (h *WebhookHandler) ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(eventReceivedBody))
}
