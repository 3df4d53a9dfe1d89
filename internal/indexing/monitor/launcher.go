package monitor

import (
	"context"
	"time"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/core/registry"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/chain/evm"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// DialFunc builds the chain client for a network.
type DialFunc func(network domain.Network) Client

// HTTPDialer returns a DialFunc backed by JSON-RPC over HTTP.
func HTTPDialer(timeout time.Duration) DialFunc {
	return func(network domain.Network) Client {
		p := provider.NewHTTPProvider(network.Name, network.RPCURL, timeout)
		return evm.NewClient(network.Name, p)
	}
}

// Launcher starts a monitor goroutine per registered network. Monitors run
// until Ctx is cancelled; there is no per-network stop.
type Launcher struct {
	Ctx          context.Context
	Dial         DialFunc
	Book         AddressSource
	Explorer     ExplorerResolver
	Notifier     Notifier
	PollInterval time.Duration
}

// Launch implements registry.Launcher.
func (l *Launcher) Launch(network domain.Network) registry.Task {
	m := New(Config{
		Network:      network,
		Client:       l.Dial(network),
		Book:         l.Book,
		Explorer:     l.Explorer,
		Notifier:     l.Notifier,
		PollInterval: l.PollInterval,
	})
	go func() {
		_ = m.Run(l.Ctx)
	}()
	return m
}
