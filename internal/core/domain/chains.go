package domain

import "strings"

// NetworkName is the normalized key of a registered network.
type NetworkName = string

// Network describes a monitored EVM network.
type Network struct {
	Name             NetworkName `json:"name"`
	DisplayName      string      `json:"display_name"`
	RPCURL           string      `json:"rpc_url"`
	ExplorerTxPrefix string      `json:"explorer_tx_prefix,omitempty"`
}

// Label returns the name shown to users.
func (n Network) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Name
}

// ExplorerLink builds the transaction URL, or "" if either part is missing.
func (n Network) ExplorerLink(txHash string) string {
	if n.ExplorerTxPrefix == "" || txHash == "" {
		return ""
	}
	return n.ExplorerTxPrefix + txHash
}

// NormalizeNetworkName returns the registry key for a user supplied name.
func NormalizeNetworkName(name string) NetworkName {
	return strings.ToLower(strings.TrimSpace(name))
}

const (
	NetworkEthereum NetworkName = "ethereum"
	NetworkBase     NetworkName = "base"
	NetworkBSC      NetworkName = "bsc"
	NetworkPolygon  NetworkName = "polygon"
	NetworkArbitrum NetworkName = "arbitrum"
	NetworkOptimism NetworkName = "optimism"
)

// DefaultNetworks are registered when the configuration lists none.
var DefaultNetworks = []Network{
	{
		Name:             NetworkEthereum,
		DisplayName:      "Ethereum",
		RPCURL:           "https://eth.llamarpc.com",
		ExplorerTxPrefix: "https://etherscan.io/tx/",
	},
	{
		Name:             NetworkBase,
		DisplayName:      "Base",
		RPCURL:           "https://mainnet.base.org",
		ExplorerTxPrefix: "https://basescan.org/tx/",
	},
	{
		Name:             NetworkBSC,
		DisplayName:      "BSC",
		RPCURL:           "https://bsc-dataseed.binance.org",
		ExplorerTxPrefix: "https://bscscan.com/tx/",
	},
	{
		Name:             NetworkPolygon,
		DisplayName:      "Polygon",
		RPCURL:           "https://polygon-rpc.com",
		ExplorerTxPrefix: "https://polygonscan.com/tx/",
	},
	{
		Name:             NetworkArbitrum,
		DisplayName:      "Arbitrum",
		RPCURL:           "https://arb1.arbitrum.io/rpc",
		ExplorerTxPrefix: "https://arbiscan.io/tx/",
	},
	{
		Name:             NetworkOptimism,
		DisplayName:      "Optimism",
		RPCURL:           "https://mainnet.optimism.io",
		ExplorerTxPrefix: "https://optimistic.etherscan.io/tx/",
	},
}

// KnownNetwork looks a name up in DefaultNetworks.
func KnownNetwork(name string) (Network, bool) {
	key := NormalizeNetworkName(name)
	for _, n := range DefaultNetworks {
		if n.Name == key {
			return n, true
		}
	}
	return Network{}, false
}
