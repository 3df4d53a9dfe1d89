package command

import (
	"context"
	"strings"
	"testing"

	"github.com/wiyan17/Notifwallet-bot/internal/core/addressbook"
	"github.com/wiyan17/Notifwallet-bot/internal/core/registry"
	"github.com/wiyan17/Notifwallet-bot/internal/core/subscriber"
	"github.com/wiyan17/Notifwallet-bot/internal/notify"
)

const (
	addrA = "0x000000000000000000000000000000000000dEaD"
	addrB = "0x1111111111111111111111111111111111111111"
)

type fixture struct {
	router *Router
	book   *addressbook.Book
	reg    *registry.Registry
	subs   *subscriber.Set
	alerts *notify.Switch
}

func newFixture(t *testing.T, allowed ...string) *fixture {
	t.Helper()
	book := addressbook.New(nil)
	reg := registry.New(book, nil)
	subs := subscriber.NewSet()
	alerts := notify.NewSwitch(false)
	r := NewRouter(Config{
		Book:         book,
		Networks:     reg,
		Subscribers:  subs,
		Alerts:       alerts,
		AllowedUsers: allowed,
	})
	return &fixture{router: r, book: book, reg: reg, subs: subs, alerts: alerts}
}

func (f *fixture) do(text string) string {
	return f.router.Handle(context.Background(), Request{Sender: "42", User: "7", Text: text})
}

func TestNormalizeCommand(t *testing.T) {
	tests := map[string]string{
		"/add_wallet":        "addwallet",
		"/Add-Wallet@MyBot":  "addwallet",
		"add-wallet-all":     "addwalletall",
		"/list_networks@bot": "listnetworks",
		"  /SUBSCRIBE  ":     "subscribe",
	}
	for in, want := range tests {
		if got := NormalizeCommand(in); got != want {
			t.Errorf("NormalizeCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	f := newFixture(t)

	if got := f.do("/unsubscribe"); got != "You are not subscribed." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/subscribe"); !strings.HasPrefix(got, "Subscribed") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/subscribe"); got != "You are already subscribed." {
		t.Errorf("unexpected reply: %s", got)
	}
	if !f.subs.Contains("42") {
		t.Error("sender should be subscribed")
	}
	if got := f.do("/unsubscribe"); got != "Unsubscribed." {
		t.Errorf("unexpected reply: %s", got)
	}
	if f.subs.Len() != 0 {
		t.Error("set should be empty")
	}
}

func TestAddWallet(t *testing.T) {
	f := newFixture(t)
	f.reg.Register("Base", "http://base")

	if got := f.do("/add_wallet base"); got != "Usage: /add_wallet <chain> <address>" {
		t.Errorf("unexpected usage reply: %s", got)
	}
	if got := f.do("/add_wallet solana " + addrA); !strings.HasPrefix(got, "Unsupported chain: solana") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add_wallet BASE " + addrA); got != "Added "+addrA+" to Base." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add-wallet base " + strings.ToLower(addrA)); !strings.Contains(got, "already watched") {
		t.Errorf("expected case-insensitive duplicate, got: %s", got)
	}

	addrs, _ := f.book.Snapshot("base")
	if len(addrs) != 1 || addrs[0] != addrA {
		t.Errorf("unexpected book contents: %v", addrs)
	}
}

func TestAddWalletAll(t *testing.T) {
	f := newFixture(t)

	if got := f.do("/add_wallet_all " + addrA); !strings.HasPrefix(got, "No networks registered") {
		t.Errorf("unexpected reply: %s", got)
	}

	f.reg.Register("base", "http://base")
	f.reg.Register("ethereum", "http://eth")
	f.book.Add("ethereum", addrA)

	if got := f.do("/add_wallet_all nothex"); got != "Invalid address format: nothex" {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add_wallet_all"); got != "Usage: /add_wallet_all <address>" {
		t.Errorf("unexpected reply: %s", got)
	}

	got := f.do("/add_wallet_all " + addrA)
	want := addrA + ":\n- Base: added\n- Ethereum: already watched"
	if got != want {
		t.Errorf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestAddAddressAlias(t *testing.T) {
	f := newFixture(t)
	f.reg.Register("base", "http://base")
	f.reg.Register("bsc", "http://bsc")

	f.do("/addaddress " + addrA)
	for _, n := range []string{"base", "bsc"} {
		if addrs, _ := f.book.Snapshot(n); len(addrs) != 1 {
			t.Errorf("expected %s to watch the address, got %v", n, addrs)
		}
	}

	f.do("/addaddress base " + addrB)
	if addrs, _ := f.book.Snapshot("bsc"); len(addrs) != 1 {
		t.Errorf("two-argument form should only touch one network, bsc has %v", addrs)
	}

	got := f.do("/removeaddress " + addrA)
	if got != "Removed "+addrA+" from Base, BSC." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/removeaddress " + addrA); !strings.Contains(got, "not found") {
		t.Errorf("unexpected reply: %s", got)
	}
}

func TestRemoveWallet(t *testing.T) {
	f := newFixture(t)
	f.reg.Register("base", "http://base")
	f.book.Add("base", addrA)

	if got := f.do("/remove_wallet base"); !strings.HasPrefix(got, "Usage:") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/remove_wallet polygon " + addrA); !strings.HasPrefix(got, "Unsupported chain") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/remove_wallet base " + addrB); !strings.Contains(got, "not found") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/remove_wallet base " + addrA); got != "Removed "+addrA+" from Base." {
		t.Errorf("unexpected reply: %s", got)
	}
}

func TestListWallets(t *testing.T) {
	f := newFixture(t)
	if got := f.do("/list_wallets"); got != "No wallets are being watched." {
		t.Errorf("unexpected reply: %s", got)
	}

	f.reg.Register("ethereum", "http://eth")
	f.reg.Register("base", "http://base")
	f.reg.Register("bsc", "http://bsc")
	f.book.Add("ethereum", addrB)
	f.book.Add("base", addrB)
	f.book.Add("base", addrA)

	got := f.do("/list_wallets")
	want := "Watched wallets:\nBase:\n  " + addrA + "\n  " + addrB + "\nEthereum:\n  " + addrB
	if got != want {
		t.Errorf("unexpected listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestAddAndListNetworks(t *testing.T) {
	f := newFixture(t)
	if got := f.do("/list_networks"); got != "No networks registered." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add_network base"); !strings.HasPrefix(got, "Usage:") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add_network Base http://first"); got != "Network Base added. Monitoring started." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/add_network base http://second"); got != "Network base already exists." {
		t.Errorf("unexpected reply: %s", got)
	}
	f.do("/add_network mychain http://mine")

	got := f.do("/list_networks")
	want := "Networks:\n- Base (base): http://first\n- mychain (mychain): http://mine"
	if got != want {
		t.Errorf("unexpected listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestAutoAlert(t *testing.T) {
	f := newFixture(t)
	f.reg.Register("base", "http://base")

	if got := f.do("/stopalert"); got != "Auto alert is not active." {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/autoalert"); !strings.Contains(got, "no wallet addresses") {
		t.Errorf("unexpected reply: %s", got)
	}
	if f.alerts.Enabled() {
		t.Fatal("alerting must stay off with an empty book")
	}

	f.book.Add("base", addrA)
	if got := f.do("/autoalert"); !strings.HasPrefix(got, "Auto alert enabled") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/autoalert"); !strings.Contains(got, "already active") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("/stopalert"); got != "Auto alert stopped." {
		t.Errorf("unexpected reply: %s", got)
	}
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t, "1001")

	if got := f.do("/subscribe"); got != "Unauthorized." {
		t.Errorf("unexpected reply: %s", got)
	}
	if f.subs.Len() != 0 {
		t.Error("unauthorized command must not change state")
	}

	got := f.router.Handle(context.Background(), Request{Sender: "42", User: "1001", Text: "/subscribe"})
	if !strings.HasPrefix(got, "Subscribed") {
		t.Errorf("allowed user should be served, got: %s", got)
	}
}

func TestUnknownAndEmpty(t *testing.T) {
	f := newFixture(t)
	if got := f.do("/frobnicate"); !strings.Contains(got, "/help") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := f.do("   "); got != "" {
		t.Errorf("expected no reply for empty input, got: %s", got)
	}
	if got := f.do("/start"); !strings.Contains(got, "/add_wallet <chain> <address>") {
		t.Errorf("help text missing commands: %s", got)
	}
}

var _ Networks = (*registry.Registry)(nil)
var _ Book = (*addressbook.Book)(nil)
var _ Alerts = (*notify.Switch)(nil)
