// Package console is a line-oriented front-end and transport over a reader
// and a writer, used for local runs.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/wiyan17/Notifwallet-bot/internal/command"
	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

// SessionID is the subscriber id of the local session.
const SessionID domain.SubscriberID = "console"

// Router answers commands.
type Router interface {
	Handle(ctx context.Context, req command.Request) string
}

// Console reads commands from in and writes replies and alerts to out.
type Console struct {
	in     io.Reader
	router Router

	mu  sync.Mutex
	out io.Writer
}

func New(in io.Reader, out io.Writer, router Router) *Console {
	return &Console{in: in, out: out, router: router}
}

// SetRouter sets the command router. Call before Run.
func (c *Console) SetRouter(router Router) {
	c.router = router
}

// Run handles one command per line until in is exhausted or ctx is cancelled.
// A leading slash is optional.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	c.write("Type /help for commands.\n> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				c.write("> ")
				continue
			}
			if !strings.HasPrefix(line, "/") {
				line = "/" + line
			}
			reply := c.router.Handle(ctx, command.Request{Sender: SessionID, User: string(SessionID), Text: line})
			c.write(reply + "\n> ")
		}
	}
}

// Name implements notify.Transport.
func (c *Console) Name() string { return "console" }

// Send implements notify.Transport.
func (c *Console) Send(ctx context.Context, to domain.SubscriberID, text string) error {
	c.write(fmt.Sprintf("\n[alert -> %s]\n%s\n> ", to, text))
	return nil
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s)
}
