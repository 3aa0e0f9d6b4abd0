package rpc

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/holiman/uint256"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// TxPoolStatus is the number of pending and queued transactions in the node's pool.
type TxPoolStatus struct {
	Pending uint64 `json:"pending"`
	Queued  uint64 `json:"queued"`
}

// PoolTransactions maps sender address to nonce to the node's transaction object.
type PoolTransactions map[string]map[string]map[string]any

// PoolEntry is one decoded transaction from the pool.
type PoolEntry struct {
	Sender   string
	Nonce    *uint256.Int
	Envelope ethtypes.Envelope
}

// Decode runs every pooled transaction through the JSON selector. Entries are
// ordered by sender, then nonce. Decoding stops at the first failure.
func (p PoolTransactions) Decode(opts ...ethtypes.DecodeOption) ([]PoolEntry, error) {
	var entries []PoolEntry
	for sender, byNonce := range p {
		for nonceText, fields := range byNonce {
			nonce, err := parsePoolNonce(nonceText)
			if err != nil {
				return nil, err
			}
			env, err := ethtypes.DecodeJSON(fields, opts...)
			if err != nil {
				return nil, txerr.Wrap(err, "pool transaction %s/%s", sender, nonceText)
			}
			entries = append(entries, PoolEntry{Sender: sender, Nonce: nonce, Envelope: env})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Sender != entries[j].Sender {
			return entries[i].Sender < entries[j].Sender
		}
		return entries[i].Nonce.Lt(entries[j].Nonce)
	})
	return entries, nil
}

// parsePoolNonce reads a pool nonce key. Geth uses decimal keys; 0x keys are
// accepted as hex.
func parsePoolNonce(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ethtypes.ParseQuantity(s)
	}
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, txerr.WithDetails(txerr.ErrInvalidValue, map[string]string{"nonce": s})
	}
	return n, nil
}

// TxPoolContent holds the full pending and queued pool contents.
type TxPoolContent struct {
	Pending PoolTransactions `json:"pending"`
	Queued  PoolTransactions `json:"queued"`
}

// TxPoolInspect holds the node's one-line summaries of pooled transactions.
type TxPoolInspect struct {
	Pending map[string]map[string]string `json:"pending"`
	Queued  map[string]map[string]string `json:"queued"`
}

// TxPoolStatus calls txpool_status.
func (c *Client) TxPoolStatus(ctx context.Context) (*TxPoolStatus, error) {
	result, err := c.Call(ctx, "txpool_status")
	if err != nil {
		return nil, err
	}

	var raw struct {
		Pending string `json:"pending"`
		Queued  string `json:"queued"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}

	pending, err := ethtypes.ParseQuantity(raw.Pending)
	if err != nil {
		return nil, err
	}
	queued, err := ethtypes.ParseQuantity(raw.Queued)
	if err != nil {
		return nil, err
	}
	return &TxPoolStatus{Pending: pending.Uint64(), Queued: queued.Uint64()}, nil
}

// TxPoolContent calls txpool_content.
func (c *Client) TxPoolContent(ctx context.Context) (*TxPoolContent, error) {
	result, err := c.Call(ctx, "txpool_content")
	if err != nil {
		return nil, err
	}

	var content TxPoolContent
	if err := unmarshalNumbers(result, &content); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return &content, nil
}

// TxPoolInspect calls txpool_inspect.
func (c *Client) TxPoolInspect(ctx context.Context) (*TxPoolInspect, error) {
	result, err := c.Call(ctx, "txpool_inspect")
	if err != nil {
		return nil, err
	}

	var inspect TxPoolInspect
	if err := json.Unmarshal(result, &inspect); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return &inspect, nil
}
