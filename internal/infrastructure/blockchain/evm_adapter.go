package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	"stablepay.backend/pkg/logger"
)

var dialRPC = rpc.Dial

// rpcCaller is the slice of *rpc.Client the adapter needs; tests inject a
// canned implementation.
type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

var alchemyHosts = map[entities.Network]string{
	entities.NetworkArbitrum: "arb-mainnet.g.alchemy.com",
	entities.NetworkEthereum: "eth-mainnet.g.alchemy.com",
}

// EVMAdapter reads ERC-20 transfers through Alchemy's enhanced JSON-RPC.
// One adapter per EVM network.
type EVMAdapter struct {
	network entities.Network
	client  rpcCaller
}

// NewEVMAdapter dials the Alchemy endpoint for the network. An empty API
// key yields an unavailable adapter rather than an error so that networks
// can be enabled independently.
func NewEVMAdapter(network entities.Network, apiKey string) *EVMAdapter {
	a := &EVMAdapter{network: network}
	if apiKey == "" {
		return a
	}
	host, ok := alchemyHosts[network]
	if !ok {
		return a
	}
	client, err := dialRPC(fmt.Sprintf("https://%s/v2/%s", host, apiKey))
	if err != nil {
		logger.Error(context.Background(), "failed to dial rpc endpoint",
			zap.String("network", string(network)), zap.Error(err))
		return a
	}
	a.client = client
	return a
}

// NewEVMAdapterWithCaller builds an adapter around an injected caller.
// Intended for unit tests.
func NewEVMAdapterWithCaller(network entities.Network, caller rpcCaller) *EVMAdapter {
	return &EVMAdapter{network: network, client: caller}
}

func (a *EVMAdapter) Network() entities.Network { return a.network }

func (a *EVMAdapter) Available() bool { return a.client != nil }

// assetTransfersResult mirrors the alchemy_getAssetTransfers response.
type assetTransfersResult struct {
	Transfers []assetTransfer `json:"transfers"`
}

type assetTransfer struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	BlockNum    string `json:"blockNum"`
	RawContract struct {
		Value   string `json:"value"`
		Address string `json:"address"`
	} `json:"rawContract"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp"`
	} `json:"metadata"`
}

// FindTransfer scans recent transfers from the payer to the receiving
// address and returns the newest one that clears the amount tolerance and
// happened at or after the query window start.
func (a *EVMAdapter) FindTransfer(ctx context.Context, q TransferQuery) (*TransferResult, error) {
	required, err := toBaseUnits(q.RequiredAmount, q.Decimals)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"fromBlock":         "0x0",
		"toBlock":           "latest",
		"fromAddress":       q.Sender,
		"toAddress":         q.Receiver,
		"contractAddresses": []string{q.Contract},
		"category":          []string{"erc20"},
		"order":             "desc",
		"maxCount":          "0x32",
		"withMetadata":      true,
	}

	var res assetTransfersResult
	if err := a.client.CallContext(ctx, &res, "alchemy_getAssetTransfers", params); err != nil {
		return nil, fmt.Errorf("alchemy_getAssetTransfers: %w", err)
	}

	for _, tr := range res.Transfers {
		ts, err := time.Parse(time.RFC3339, tr.Metadata.BlockTimestamp)
		if err != nil || ts.Before(q.NotBefore) {
			continue
		}
		value, ok := parseHexBig(tr.RawContract.Value)
		if !ok || !meetsTolerance(value, required) {
			continue
		}
		blockNum, ok := parseHexUint(tr.BlockNum)
		if !ok {
			continue
		}
		confirmations, err := a.confirmationsAt(ctx, blockNum)
		if err != nil {
			return nil, err
		}
		return &TransferResult{
			TxHash:        tr.Hash,
			Amount:        value,
			BlockNumber:   blockNum,
			Timestamp:     ts,
			Confirmations: confirmations,
		}, nil
	}
	return nil, ErrTransferNotFound
}

// Confirmations looks the tx receipt up and counts blocks on top of it,
// inclusive of the block the tx landed in.
func (a *EVMAdapter) Confirmations(ctx context.Context, txHash string) (int, error) {
	var receipt struct {
		BlockNumber string `json:"blockNumber"`
	}
	if err := a.client.CallContext(ctx, &receipt, "eth_getTransactionReceipt", txHash); err != nil {
		return 0, fmt.Errorf("eth_getTransactionReceipt: %w", err)
	}
	blockNum, ok := parseHexUint(receipt.BlockNumber)
	if !ok {
		// Not mined yet.
		return 0, nil
	}
	return a.confirmationsAt(ctx, blockNum)
}

func (a *EVMAdapter) confirmationsAt(ctx context.Context, txBlock uint64) (int, error) {
	var latest string
	if err := a.client.CallContext(ctx, &latest, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	current, ok := parseHexUint(latest)
	if !ok || current < txBlock {
		return 0, nil
	}
	return int(current-txBlock) + 1, nil
}

func parseHexUint(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseHexBig(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 16)
	return v, ok
}
