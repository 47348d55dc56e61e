package entities

import "strings"

// Network is a supported settlement chain.
type Network string

const (
	NetworkArbitrum Network = "arbitrum"
	NetworkEthereum Network = "ethereum"
	NetworkTron     Network = "tron"
)

// IsEVM reports whether the network uses EVM address and tx semantics.
func (n Network) IsEVM() bool {
	return n == NetworkArbitrum || n == NetworkEthereum
}

// ParseNetwork parses a case-insensitive network name.
func ParseNetwork(s string) (Network, bool) {
	switch Network(strings.ToLower(s)) {
	case NetworkArbitrum:
		return NetworkArbitrum, true
	case NetworkEthereum:
		return NetworkEthereum, true
	case NetworkTron:
		return NetworkTron, true
	}
	return "", false
}

// Token is a supported stablecoin.
type Token string

const (
	TokenUSDT Token = "USDT"
	TokenUSDC Token = "USDC"
)

// ParseToken parses a case-insensitive token symbol.
func ParseToken(s string) (Token, bool) {
	switch Token(strings.ToUpper(s)) {
	case TokenUSDT:
		return TokenUSDT, true
	case TokenUSDC:
		return TokenUSDC, true
	}
	return "", false
}

// ChainConfig is the static per-network configuration: token contracts,
// confirmation policy and presentation hints.
type ChainConfig struct {
	Network          Network
	DisplayName      string
	Contracts        map[Token]string
	Decimals         int
	MinConfirmations int
	ExplorerTxPrefix string
	FeeHint          string
	ConfirmationTime string
	Recommended      bool
}

// ChainConfigs is keyed by network. Both stablecoins use 6 decimals on
// every supported chain.
var ChainConfigs = map[Network]ChainConfig{
	NetworkArbitrum: {
		Network:     NetworkArbitrum,
		DisplayName: "Arbitrum One",
		Contracts: map[Token]string{
			TokenUSDT: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
			TokenUSDC: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		},
		Decimals:         6,
		MinConfirmations: 3,
		ExplorerTxPrefix: "https://arbiscan.io/tx/",
		FeeHint:          "~$0.01",
		ConfirmationTime: "~1 minute",
		Recommended:      true,
	},
	NetworkEthereum: {
		Network:     NetworkEthereum,
		DisplayName: "Ethereum",
		Contracts: map[Token]string{
			TokenUSDT: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			TokenUSDC: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		},
		Decimals:         6,
		MinConfirmations: 3,
		ExplorerTxPrefix: "https://etherscan.io/tx/",
		FeeHint:          "$5-50",
		ConfirmationTime: "~3 minutes",
	},
	NetworkTron: {
		Network:     NetworkTron,
		DisplayName: "Tron",
		Contracts: map[Token]string{
			TokenUSDT: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
			TokenUSDC: "TEkxiTehnzSmSe2XqrBj4w32RUN966rdz8",
		},
		Decimals:         6,
		MinConfirmations: 19,
		ExplorerTxPrefix: "https://tronscan.org/#/transaction/",
		FeeHint:          "~$1-2",
		ConfirmationTime: "~1 minute",
	},
}

// ContractFor returns the token contract address on the network.
func ContractFor(network Network, token Token) (string, bool) {
	cfg, ok := ChainConfigs[network]
	if !ok {
		return "", false
	}
	addr, ok := cfg.Contracts[token]
	return addr, ok
}

// ExplorerURL builds the block-explorer link for a transaction hash.
func ExplorerURL(network Network, txHash string) string {
	cfg, ok := ChainConfigs[network]
	if !ok || txHash == "" {
		return ""
	}
	return cfg.ExplorerTxPrefix + txHash
}
