package notify

import (
	"strings"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

const alertTitle = "*Transfer Alert!*"

// FormatEvent renders a monitor event as an alert message.
func FormatEvent(ev domain.TransferEvent) string {
	var b strings.Builder
	b.WriteString(alertTitle)
	line(&b, "Network ", orDefault(ev.DisplayName, ev.Network))
	line(&b, "Address ", ev.Address)
	line(&b, "TxHash  ", orDefault(ev.TxHash, "N/A"))
	if ev.Value != "" {
		line(&b, "Value   ", ev.Value)
	}
	if ev.ExplorerLink != "" {
		line(&b, "Explorer", ev.ExplorerLink)
	}
	return b.String()
}

// FormatWebhook renders an inbound webhook notification. value is omitted when empty.
func FormatWebhook(event, address, txHash, value string) string {
	var b strings.Builder
	b.WriteString(alertTitle)
	line(&b, "Event   ", event)
	line(&b, "Address ", address)
	line(&b, "TxHash  ", orDefault(txHash, "N/A"))
	if value != "" {
		line(&b, "Value   ", value)
	}
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("\n")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
