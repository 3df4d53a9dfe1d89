// Package webhook receives address-activity notifications pushed by an
// external provider and forwards the watched ones to subscribers.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
	"github.com/wiyan17/Notifwallet-bot/internal/notify"
)

const maxBodyBytes = 1 << 20

// Payload is the inbound notification body.
type Payload struct {
	Event   string          `json:"event"`
	TxHash  string          `json:"txHash"`
	Address string          `json:"address"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// FormatValue renders the raw value the way it was posted: numbers keep
// every digit and strings lose their quotes. Empty values (null, false, zero,
// "", [] and {}) render as "" so the value line is left out.
func FormatValue(raw json.RawMessage) string {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`, "[]", "{}":
		return ""
	case "true":
		return "True"
	}
	if strings.HasPrefix(v, `"`) {
		var s string
		if err := json.Unmarshal([]byte(v), &s); err == nil {
			return s
		}
		return v
	}
	var n json.Number
	if err := json.Unmarshal([]byte(v), &n); err == nil {
		if f, err := n.Float64(); err == nil && f == 0 {
			return ""
		}
	}
	return v
}

// Watchlist reports whether an address is watched on any network.
type Watchlist interface {
	Watching(address string) bool
}

// Gate reports whether webhook alerting is on.
type Gate interface {
	Enabled() bool
}

// Sink delivers alerts and structured events.
type Sink interface {
	Broadcast(ctx context.Context, text string) int
	Emit(ctx context.Context, ev domain.TransferEvent)
}

// Handler serves POST /webhook.
type Handler struct {
	watchlist Watchlist
	gate      Gate
	sink      Sink
	log       *slog.Logger
}

func NewHandler(watchlist Watchlist, gate Gate, sink Sink) *Handler {
	return &Handler{
		watchlist: watchlist,
		gate:      gate,
		sink:      sink,
		log:       slog.Default().With("component", "webhook"),
	}
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.reply(w, http.StatusBadRequest, response{Status: "error", Message: err.Error()})
		return
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		h.log.Warn("Malformed webhook payload", "error", err)
		h.reply(w, http.StatusBadRequest, response{Status: "error", Message: fmt.Sprintf("invalid payload: %v", err)})
		return
	}
	h.log.Debug("Webhook received", "event", p.Event, "address", p.Address, "tx", p.TxHash)

	if !h.gate.Enabled() {
		h.reply(w, http.StatusOK, response{Status: "ignored", Message: "auto alert is not active"})
		return
	}
	address := domain.AddressKey(p.Address)
	if address == "" || !h.watchlist.Watching(address) {
		h.log.Info("Webhook address not watched", "address", address)
		h.reply(w, http.StatusOK, response{Status: "ignored", Message: "address is not watched"})
		return
	}

	event := p.Event
	if event == "" {
		event = "unknown"
	}
	value := FormatValue(p.Value)

	// Delivery continues even if the caller hangs up
	ctx := context.WithoutCancel(r.Context())
	h.sink.Broadcast(ctx, notify.FormatWebhook(event, address, p.TxHash, value))

	ev := domain.NewTransferEvent(domain.EventKindTransfer, domain.EventSourceWebhook)
	ev.Address = address
	ev.TxHash = p.TxHash
	ev.Value = value
	ev.Raw = map[string]any{"event": event}
	h.sink.Emit(ctx, ev)

	h.log.Info("Webhook alert sent", "address", address, "tx", p.TxHash)
	h.reply(w, http.StatusOK, response{Status: "success"})
}

func (h *Handler) reply(w http.ResponseWriter, code int, resp response) {
	metrics.WebhookRequests.WithLabelValues(strings.ToLower(resp.Status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
