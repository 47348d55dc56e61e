package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stablepay.backend/internal/domain/entities"
)

// TronAdapter reads TRC-20 transfers through the TronGrid REST API. The
// free tier works without a key; a key only raises the rate limit.
type TronAdapter struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewTronAdapter creates a TronGrid-backed adapter. baseURL is normally
// https://api.trongrid.io; tests point it at a local server.
func NewTronAdapter(baseURL, apiKey string) *TronAdapter {
	return &TronAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *TronAdapter) Network() entities.Network { return entities.NetworkTron }

func (a *TronAdapter) Available() bool { return a.baseURL != "" }

type trc20TransfersResponse struct {
	Data []trc20Transfer `json:"data"`
}

type trc20Transfer struct {
	TransactionID  string `json:"transaction_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Value          string `json:"value"`
	BlockTimestamp int64  `json:"block_timestamp"`
}

// FindTransfer lists recent incoming TRC-20 transfers on the receiving
// account and picks the newest one from the payer that clears the amount
// tolerance.
func (a *TronAdapter) FindTransfer(ctx context.Context, q TransferQuery) (*TransferResult, error) {
	required, err := toBaseUnits(q.RequiredAmount, q.Decimals)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("only_to", "true")
	params.Set("contract_address", q.Contract)
	params.Set("min_timestamp", fmt.Sprintf("%d", q.NotBefore.UnixMilli()))
	params.Set("limit", "50")
	params.Set("order_by", "block_timestamp,desc")
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20?%s", a.baseURL, q.Receiver, params.Encode())

	var res trc20TransfersResponse
	if err := a.get(ctx, endpoint, &res); err != nil {
		return nil, err
	}

	for _, tr := range res.Data {
		if !strings.EqualFold(tr.From, q.Sender) {
			continue
		}
		value, ok := new(big.Int).SetString(tr.Value, 10)
		if !ok || !meetsTolerance(value, required) {
			continue
		}
		ts := time.UnixMilli(tr.BlockTimestamp)
		if ts.Before(q.NotBefore) {
			continue
		}
		confirmations, blockNum, err := a.confirmations(ctx, tr.TransactionID)
		if err != nil {
			return nil, err
		}
		return &TransferResult{
			TxHash:        tr.TransactionID,
			Amount:        value,
			BlockNumber:   blockNum,
			Timestamp:     ts,
			Confirmations: confirmations,
		}, nil
	}
	return nil, ErrTransferNotFound
}

// Confirmations counts solidified blocks on top of the tx block, inclusive.
func (a *TronAdapter) Confirmations(ctx context.Context, txHash string) (int, error) {
	confirmations, _, err := a.confirmations(ctx, txHash)
	return confirmations, err
}

func (a *TronAdapter) confirmations(ctx context.Context, txID string) (int, uint64, error) {
	var info struct {
		BlockNumber uint64 `json:"blockNumber"`
	}
	if err := a.post(ctx, a.baseURL+"/wallet/gettransactioninfobyid", map[string]string{"value": txID}, &info); err != nil {
		return 0, 0, err
	}
	if info.BlockNumber == 0 {
		return 0, 0, nil
	}

	var now struct {
		BlockHeader struct {
			RawData struct {
				Number uint64 `json:"number"`
			} `json:"raw_data"`
		} `json:"block_header"`
	}
	if err := a.post(ctx, a.baseURL+"/wallet/getnowblock", map[string]string{}, &now); err != nil {
		return 0, 0, err
	}
	current := now.BlockHeader.RawData.Number
	if current < info.BlockNumber {
		return 0, info.BlockNumber, nil
	}
	return int(current-info.BlockNumber) + 1, info.BlockNumber, nil
}

func (a *TronAdapter) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *TronAdapter) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *TronAdapter) do(req *http.Request, out interface{}) error {
	if a.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", a.apiKey)
	}
	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("trongrid request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trongrid status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
