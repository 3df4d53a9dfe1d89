package evm

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/rpc/provider"
)

// TransferTopic is keccak256("Transfer(address,address,uint256)").
const TransferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// Log is a decoded eth_getFilterChanges entry.
type Log struct {
	Address     string
	TxHash      string
	BlockNumber uint64
	Topics      []string
	Data        string
	Removed     bool
	Raw         map[string]any

	// Set for ERC-20 Transfer logs
	From  string
	To    string
	Value *big.Int
}

// IsTransfer reports whether the log decoded as an ERC-20 Transfer.
func (l Log) IsTransfer() bool {
	return l.Value != nil
}

// Client speaks the log filter subset of the EVM JSON-RPC API.
type Client struct {
	network string
	rpc     provider.RPCProvider
	chainID atomic.Uint64
	log     *slog.Logger
}

// NewClient wraps a provider for one network.
func NewClient(network string, rpc provider.RPCProvider) *Client {
	return &Client{
		network: network,
		rpc:     rpc,
		log:     slog.Default().With("component", "evm", "network", network),
	}
}

// Health reports the provider's call statistics.
func (c *Client) Health() provider.HealthStatus {
	return c.rpc.GetHealth()
}

// Connect checks the endpoint by fetching its chain id.
func (c *Client) Connect(ctx context.Context) error {
	result, err := c.rpc.Call(ctx, "eth_chainId", nil)
	if err != nil {
		return fmt.Errorf("eth_chainId failed: %w", err)
	}
	id, err := parseHexString(getString(result))
	if err != nil {
		return fmt.Errorf("eth_chainId: %w", err)
	}
	c.chainID.Store(id)
	c.log.Debug("Connected", "chain_id", id)
	return nil
}

// ChainID returns the id learned by Connect, or 0.
func (c *Client) ChainID() uint64 {
	return c.chainID.Load()
}

// NewFilter installs a log filter scoped to exactly the given addresses.
func (c *Client) NewFilter(ctx context.Context, addresses []string) (string, error) {
	if len(addresses) == 0 {
		return "", fmt.Errorf("eth_newFilter: empty address list")
	}
	criteria := map[string]any{
		"fromBlock": "latest",
		"address":   addresses,
	}
	result, err := c.rpc.Call(ctx, "eth_newFilter", []any{criteria})
	if err != nil {
		return "", fmt.Errorf("eth_newFilter failed: %w", err)
	}
	id := getString(result)
	if id == "" {
		return "", fmt.Errorf("eth_newFilter: invalid filter id %v", result)
	}
	return id, nil
}

// FilterChanges returns the logs accumulated since the previous call.
func (c *Client) FilterChanges(ctx context.Context, filterID string) ([]Log, error) {
	result, err := c.rpc.Call(ctx, "eth_getFilterChanges", []any{filterID})
	if err != nil {
		return nil, fmt.Errorf("eth_getFilterChanges failed: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	rawLogs, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("eth_getFilterChanges: invalid response format")
	}

	logs := make([]Log, 0, len(rawLogs))
	for _, raw := range rawLogs {
		m, ok := raw.(map[string]any)
		if !ok {
			// Block and pending-tx filters return bare hashes; ours never should
			continue
		}
		logs = append(logs, parseLog(m))
	}
	return logs, nil
}

// UninstallFilter removes a filter. A missing filter is not an error.
func (c *Client) UninstallFilter(ctx context.Context, filterID string) error {
	if _, err := c.rpc.Call(ctx, "eth_uninstallFilter", []any{filterID}); err != nil {
		return fmt.Errorf("eth_uninstallFilter failed: %w", err)
	}
	return nil
}

// Close releases the underlying provider.
func (c *Client) Close() error {
	return c.rpc.Close()
}

func parseLog(raw map[string]any) Log {
	l := Log{
		Address: getString(raw["address"]),
		TxHash:  getString(raw["transactionHash"]),
		Data:    getString(raw["data"]),
		Raw:     raw,
	}
	if removed, ok := raw["removed"].(bool); ok {
		l.Removed = removed
	}
	if bn, err := parseHexString(getString(raw["blockNumber"])); err == nil {
		l.BlockNumber = bn
	}
	if topics, ok := raw["topics"].([]any); ok {
		for _, t := range topics {
			l.Topics = append(l.Topics, getString(t))
		}
	}

	// ERC-20 Transfer: topics = [sig, from, to], data = value.
	// ERC-721 puts the token id in a fourth topic and is left undecoded.
	if len(l.Topics) == 3 && strings.EqualFold(l.Topics[0], TransferTopic) {
		if value, err := hexutil.DecodeBig(trimLeadingZeros(l.Data)); err == nil {
			l.From = common.HexToAddress(l.Topics[1]).Hex()
			l.To = common.HexToAddress(l.Topics[2]).Hex()
			l.Value = value
		}
	}
	return l
}

func parseHexString(hexStr string) (uint64, error) {
	n, err := hexutil.DecodeUint64(hexStr)
	if err != nil {
		return 0, fmt.Errorf("invalid hex %q: %w", hexStr, err)
	}
	return n, nil
}

// trimLeadingZeros turns a 32-byte word into the quantity form hexutil expects.
func trimLeadingZeros(word string) string {
	digits := strings.TrimLeft(strings.TrimPrefix(word, "0x"), "0")
	if digits == "" {
		return "0x0"
	}
	return "0x" + digits
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
