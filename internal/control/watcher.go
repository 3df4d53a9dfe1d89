package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wiyan17/Notifwallet-bot/internal/command"
	"github.com/wiyan17/Notifwallet-bot/internal/core/addressbook"
	"github.com/wiyan17/Notifwallet-bot/internal/core/config"
	"github.com/wiyan17/Notifwallet-bot/internal/core/registry"
	"github.com/wiyan17/Notifwallet-bot/internal/core/subscriber"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/emitter"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/health"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/monitor"
	"github.com/wiyan17/Notifwallet-bot/internal/indexing/recovery"
	amqpclient "github.com/wiyan17/Notifwallet-bot/internal/infra/amqp"
	redisclient "github.com/wiyan17/Notifwallet-bot/internal/infra/redis"
	"github.com/wiyan17/Notifwallet-bot/internal/notify"
	"github.com/wiyan17/Notifwallet-bot/internal/webhook"
)

const (
	brokerConnectAttempts = 3
	brokerConnectInterval = 2 * time.Second
)

// Watcher is the main application struct that wires the registries, the
// monitors, the notifier and the HTTP surface, and manages their lifecycle.
type Watcher struct {
	cfg Config

	book     *addressbook.Book
	registry *registry.Registry
	subs     *subscriber.Set
	alerts   *notify.Switch
	notifier *notify.Notifier
	router   *command.Router

	healthMon    *health.Monitor
	healthServer *health.Server

	// monitors run under this context, not the one passed to Start
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	App *config.AppConfig
	// Transport delivers alerts to subscribers (Telegram, console).
	Transport notify.Transport
	// Dial builds chain clients; nil uses JSON-RPC over HTTP.
	Dial monitor.DialFunc
	// Emitters are published to in addition to the configured ones.
	Emitters []emitter.Emitter
	// NoServer skips listening; the handler is still available via Handler.
	NoServer bool
}

// NewWatcher creates a new Watcher instance with all dependencies initialized.
func NewWatcher(cfg Config) (*Watcher, error) {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("a notification transport is required")
	}
	app := cfg.App
	if cfg.Dial == nil {
		cfg.Dial = monitor.HTTPDialer(app.Monitor.RPCTimeout)
	}
	log := slog.Default().With("component", "watcher")

	// 1. Core state
	book := addressbook.New(nil)
	subs := subscriber.NewSet()
	alerts := notify.NewSwitch(app.Alerts.Enabled)

	// 2. Event emitters
	w := &Watcher{cfg: cfg, book: book, subs: subs, alerts: alerts, log: log}
	emitters := append([]emitter.Emitter{emitter.NewLogEmitter()}, cfg.Emitters...)

	if app.Redis.URL != "" {
		var client *redisclient.Client
		err := recovery.Do(context.Background(), brokerConnectAttempts, brokerConnectInterval, func(context.Context) error {
			var err error
			client, err = redisclient.NewClient(app.Redis)
			return err
		})
		if err != nil {
			log.Warn("Failed to connect to Redis, redis emitter disabled", "error", err)
		} else {
			emitters = append(emitters, emitter.NewRedisEmitter(client, app.Notify.RedisChannel))
			log.Info("Redis emitter enabled", "channel_prefix", app.Notify.RedisChannel)
		}
	}
	if app.AMQP.URL != "" {
		var broker *amqpclient.Broker
		err := recovery.Do(context.Background(), brokerConnectAttempts, brokerConnectInterval, func(context.Context) error {
			var err error
			broker, err = amqpclient.Dial(app.AMQP)
			return err
		})
		if err != nil {
			log.Warn("Failed to connect to AMQP broker, amqp emitter disabled", "error", err)
		} else {
			emitters = append(emitters, emitter.NewAMQPEmitter(broker))
		}
	}

	w.notifier = notify.New(notify.Config{
		Transport:   cfg.Transport,
		Recipients:  subs,
		Emitters:    emitters,
		Concurrency: app.Notify.Concurrency,
	})

	// 3. Registry and monitor launcher
	w.ctx, w.cancel = context.WithCancel(context.Background())
	launcher := &monitor.Launcher{
		Ctx:          w.ctx,
		Dial:         cfg.Dial,
		Book:         book,
		Notifier:     w.notifier,
		PollInterval: app.Monitor.PollInterval,
	}
	w.registry = registry.New(book, launcher)
	launcher.Explorer = w.registry

	// 4. Command router
	w.router = command.NewRouter(command.Config{
		Book:         book,
		Networks:     w.registry,
		Subscribers:  subs,
		Alerts:       alerts,
		AllowedUsers: app.Telegram.AllowedUsers,
	})

	// 5. Health, metrics and webhook endpoints
	w.healthMon = health.NewMonitor(w.registry, book, subs)
	w.healthServer = health.NewServer(w.healthMon, app.Server.Port)
	w.healthServer.Handle("/webhook", webhook.NewHandler(book, alerts, w.notifier), http.MethodPost)

	return w, nil
}

// Start registers the startup networks, which launches their monitors, and
// starts the HTTP server. Cancelling ctx stops the monitors.
func (w *Watcher) Start(ctx context.Context) error {
	for _, n := range w.cfg.App.StartupNetworks() {
		res, err := w.registry.RegisterNetwork(n)
		if err != nil {
			return fmt.Errorf("register %s: %w", n.Name, err)
		}
		w.log.Info("Starting monitor", "network", n.Name, "result", res)
	}

	go func() {
		select {
		case <-ctx.Done():
			w.cancel()
		case <-w.ctx.Done():
		}
	}()

	if !w.cfg.NoServer {
		go func() {
			w.log.Info("HTTP server listening", "port", w.cfg.App.Server.Port)
			if err := w.healthServer.Start(); err != nil && err != http.ErrServerClosed {
				w.log.Error("Health server failed", "error", err)
			}
		}()
	}
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")

	// Stop monitors and wait for their filters to be uninstalled
	w.cancel()
	w.registry.Wait(ctx.Done())

	// Close emitters (Redis, AMQP)
	if err := w.notifier.Close(); err != nil {
		w.log.Warn("Failed to close emitters", "error", err)
	}

	if w.cfg.NoServer {
		return nil
	}
	return w.healthServer.Stop(ctx)
}

// Router returns the command router shared by every front-end.
func (w *Watcher) Router() *command.Router { return w.router }

// Handler returns the HTTP handler serving health, metrics and the webhook.
func (w *Watcher) Handler() http.Handler { return w.healthServer.Handler() }

// Registry returns the network registry.
func (w *Watcher) Registry() *registry.Registry { return w.registry }
