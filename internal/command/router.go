// Package command turns chat-style commands into registry, book and
// subscriber operations. Every front-end goes through one Router.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/metrics"
)

// Request is one inbound command.
type Request struct {
	// Sender is the recipient that subscribe/unsubscribe act on.
	Sender domain.SubscriberID
	// User identifies the caller for authorization.
	User string
	Text string
}

// Book is the address book surface the router uses.
type Book interface {
	Add(network, address string) domain.AddResult
	AddToAll(address string) ([]domain.NetworkResult, error)
	Remove(network, address string) domain.RemoveResult
	List() []domain.WalletListing
	Empty() bool
}

// Networks is the registry surface the router uses.
type Networks interface {
	Register(name, rpcURL string) (domain.RegisterResult, error)
	Get(name string) (domain.Network, bool)
	List() []domain.Network
}

// Subscribers is the subscriber set surface the router uses.
type Subscribers interface {
	Subscribe(id domain.SubscriberID) bool
	Unsubscribe(id domain.SubscriberID) domain.UnsubscribeResult
}

// Alerts toggles webhook alerting.
type Alerts interface {
	Enabled() bool
	Enable() bool
	Disable() bool
}

// Config holds the router's collaborators. An empty AllowedUsers admits everyone.
type Config struct {
	Book         Book
	Networks     Networks
	Subscribers  Subscribers
	Alerts       Alerts
	AllowedUsers []string
}

type handler func(ctx context.Context, req Request, args []string) string

// Router dispatches commands by normalized name.
type Router struct {
	book     Book
	networks Networks
	subs     Subscribers
	alerts   Alerts
	allowed  map[string]struct{}
	handlers map[string]handler
	log      *slog.Logger
}

func NewRouter(cfg Config) *Router {
	r := &Router{
		book:     cfg.Book,
		networks: cfg.Networks,
		subs:     cfg.Subscribers,
		alerts:   cfg.Alerts,
		log:      slog.Default().With("component", "router"),
	}
	if len(cfg.AllowedUsers) > 0 {
		r.allowed = make(map[string]struct{}, len(cfg.AllowedUsers))
		for _, u := range cfg.AllowedUsers {
			r.allowed[strings.TrimSpace(u)] = struct{}{}
		}
	}
	r.handlers = map[string]handler{
		"start":         r.help,
		"help":          r.help,
		"subscribe":     r.subscribe,
		"unsubscribe":   r.unsubscribe,
		"addwallet":     r.addWallet,
		"addaddress":    r.addAddress,
		"addwalletall":  r.addWalletAll,
		"removewallet":  r.removeWallet,
		"removeaddress": r.removeAddress,
		"listwallets":   r.listWallets,
		"addnetwork":    r.addNetwork,
		"listnetworks":  r.listNetworks,
		"autoalert":     r.autoAlert,
		"stopalert":     r.stopAlert,
	}
	return r
}

// NormalizeCommand strips the leading slash and any @bot suffix, lowercases,
// and drops hyphens and underscores, so "/Add_Wallet@bot" becomes "addwallet".
func NormalizeCommand(word string) string {
	word = strings.TrimPrefix(strings.TrimSpace(word), "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	word = strings.ToLower(word)
	return strings.NewReplacer("-", "", "_", "").Replace(word)
}

// Handle runs one command and returns the reply. Empty input yields "".
func (r *Router) Handle(ctx context.Context, req Request) string {
	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		return ""
	}
	if !r.authorized(req.User) {
		r.log.Warn("Unauthorized command", "user", req.User, "command", fields[0])
		return "Unauthorized."
	}

	name := NormalizeCommand(fields[0])
	h, ok := r.handlers[name]
	if !ok {
		metrics.CommandsTotal.WithLabelValues("unknown").Inc()
		return "Unknown command. Use /help to see available commands."
	}
	metrics.CommandsTotal.WithLabelValues(name).Inc()
	r.log.Debug("Command", "command", name, "sender", req.Sender, "args", len(fields)-1)
	return h(ctx, req, fields[1:])
}

func (r *Router) authorized(user string) bool {
	if r.allowed == nil {
		return true
	}
	_, ok := r.allowed[user]
	return ok
}

const helpText = `Wallet transfer alerts.

Commands:
/subscribe - receive transfer alerts in this chat
/unsubscribe - stop receiving alerts
/add_wallet <chain> <address> - watch an address on one network
/add_wallet_all <address> - watch an address on every network
/remove_wallet <chain> <address> - stop watching an address
/list_wallets - show watched addresses
/add_network <chain> <rpc_url> - start monitoring a network
/list_networks - show monitored networks
/autoalert - forward webhook alerts for watched addresses
/stopalert - stop forwarding webhook alerts`

func (r *Router) help(ctx context.Context, req Request, args []string) string {
	return helpText
}

func (r *Router) subscribe(ctx context.Context, req Request, args []string) string {
	if !r.subs.Subscribe(req.Sender) {
		return "You are already subscribed."
	}
	r.log.Info("Subscriber added", "subscriber", req.Sender)
	return "Subscribed. You will receive transfer alerts here."
}

func (r *Router) unsubscribe(ctx context.Context, req Request, args []string) string {
	if r.subs.Unsubscribe(req.Sender) == domain.NotSubscribed {
		return "You are not subscribed."
	}
	r.log.Info("Subscriber removed", "subscriber", req.Sender)
	return "Unsubscribed."
}

func (r *Router) addWallet(ctx context.Context, req Request, args []string) string {
	if len(args) != 2 {
		return usage(&domain.UsageError{Usage: "/add_wallet <chain> <address>"})
	}
	chain, address := args[0], args[1]
	network, ok := r.networks.Get(chain)
	if !ok {
		return unsupported(chain)
	}

	switch r.book.Add(network.Name, address) {
	case domain.Added:
		r.log.Info("Wallet added", "network", network.Name, "address", address)
		return fmt.Sprintf("Added %s to %s.", address, network.Label())
	case domain.AlreadyPresent:
		return fmt.Sprintf("%s is already watched on %s.", address, network.Label())
	default:
		return unsupported(chain)
	}
}

// addAddress takes either "<chain> <address>" or a bare "<address>" for all networks.
func (r *Router) addAddress(ctx context.Context, req Request, args []string) string {
	if len(args) == 1 {
		return r.addWalletAll(ctx, req, args)
	}
	return r.addWallet(ctx, req, args)
}

func (r *Router) addWalletAll(ctx context.Context, req Request, args []string) string {
	if len(args) != 1 {
		return usage(&domain.UsageError{Usage: "/add_wallet_all <address>"})
	}
	address := args[0]
	results, err := r.book.AddToAll(address)
	if errors.Is(err, domain.ErrInvalidFormat) {
		return fmt.Sprintf("Invalid address format: %s", address)
	}
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(results) == 0 {
		return "No networks registered. Add one with /add_network."
	}

	r.log.Info("Wallet added to all networks", "address", address, "networks", len(results))
	var b strings.Builder
	fmt.Fprintf(&b, "%s:", address)
	for _, res := range results {
		state := "added"
		if res.Result == domain.AlreadyPresent {
			state = "already watched"
		}
		fmt.Fprintf(&b, "\n- %s: %s", res.DisplayName, state)
	}
	return b.String()
}

func (r *Router) removeWallet(ctx context.Context, req Request, args []string) string {
	if len(args) != 2 {
		return usage(&domain.UsageError{Usage: "/remove_wallet <chain> <address>"})
	}
	chain, address := args[0], args[1]
	network, ok := r.networks.Get(chain)
	if !ok {
		return unsupported(chain)
	}

	switch r.book.Remove(network.Name, address) {
	case domain.Removed:
		r.log.Info("Wallet removed", "network", network.Name, "address", address)
		return fmt.Sprintf("Removed %s from %s.", address, network.Label())
	case domain.NotFound:
		err := &domain.NotFoundError{Kind: "wallet", Name: address}
		return fmt.Sprintf("Error: %v on %s.", err, network.Label())
	default:
		return unsupported(chain)
	}
}

// removeAddress takes either "<chain> <address>" or a bare "<address>" for all networks.
func (r *Router) removeAddress(ctx context.Context, req Request, args []string) string {
	if len(args) != 1 {
		return r.removeWallet(ctx, req, args)
	}
	address := args[0]
	var removed []string
	for _, n := range r.networks.List() {
		if r.book.Remove(n.Name, address) == domain.Removed {
			removed = append(removed, n.Label())
		}
	}
	if len(removed) == 0 {
		return fmt.Sprintf("Error: %v", &domain.NotFoundError{Kind: "wallet", Name: address})
	}
	r.log.Info("Wallet removed", "address", address, "networks", len(removed))
	return fmt.Sprintf("Removed %s from %s.", address, strings.Join(removed, ", "))
}

func (r *Router) listWallets(ctx context.Context, req Request, args []string) string {
	listing := r.book.List()
	var b strings.Builder
	total := 0
	for _, l := range listing {
		if len(l.Addresses) == 0 {
			continue
		}
		total += len(l.Addresses)
		fmt.Fprintf(&b, "\n%s:", l.DisplayName)
		for _, a := range l.Addresses {
			fmt.Fprintf(&b, "\n  %s", a)
		}
	}
	if total == 0 {
		return "No wallets are being watched."
	}
	return "Watched wallets:" + b.String()
}

func (r *Router) addNetwork(ctx context.Context, req Request, args []string) string {
	if len(args) != 2 {
		return usage(&domain.UsageError{Usage: "/add_network <chain> <rpc_url>"})
	}
	res, err := r.networks.Register(args[0], args[1])
	var ue *domain.UsageError
	if errors.As(err, &ue) {
		return usage(&domain.UsageError{Usage: "/add_network <chain> <rpc_url>"})
	}
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if res == domain.AlreadyExists {
		return fmt.Sprintf("Network %s already exists.", domain.NormalizeNetworkName(args[0]))
	}
	network, _ := r.networks.Get(args[0])
	return fmt.Sprintf("Network %s added. Monitoring started.", network.Label())
}

func (r *Router) listNetworks(ctx context.Context, req Request, args []string) string {
	networks := r.networks.List()
	if len(networks) == 0 {
		return "No networks registered."
	}
	var b strings.Builder
	b.WriteString("Networks:")
	for _, n := range networks {
		fmt.Fprintf(&b, "\n- %s (%s): %s", n.Label(), n.Name, n.RPCURL)
	}
	return b.String()
}

func (r *Router) autoAlert(ctx context.Context, req Request, args []string) string {
	if r.alerts == nil {
		return "Webhook alerting is not available."
	}
	if r.alerts.Enabled() {
		return "Error: auto alert is already active."
	}
	if r.book.Empty() {
		return "Error: no wallet addresses yet. Add one with /add_wallet."
	}
	if !r.alerts.Enable() {
		return "Error: auto alert is already active."
	}
	r.log.Info("Auto alert enabled")
	return "Auto alert enabled. Forwarding transfer alerts in real time."
}

func (r *Router) stopAlert(ctx context.Context, req Request, args []string) string {
	if r.alerts == nil {
		return "Webhook alerting is not available."
	}
	if !r.alerts.Disable() {
		return "Auto alert is not active."
	}
	r.log.Info("Auto alert disabled")
	return "Auto alert stopped."
}

func usage(err *domain.UsageError) string {
	return "Usage: " + err.Usage
}

func unsupported(chain string) string {
	return fmt.Sprintf("Unsupported chain: %s. Use /list_networks to see available networks.", chain)
}
