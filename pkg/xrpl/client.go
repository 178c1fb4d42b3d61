// Package xrpl is a minimal JSON-RPC client for the XRP Ledger. The draw
// engine uses the hash of the latest validated ledger as its public,
// unpredictable-until-revealed entropy seed.
package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the ledger hash cannot be fetched. Callers
// treat it as retryable; a draw close blocked on it simply stays open.
var ErrUnavailable = errors.New("xrpl ledger unavailable")

// RandomnessSource supplies an externally sourced entropy value.
type RandomnessSource interface {
	LatestLedgerHash(ctx context.Context) (string, error)
}

// Client represents an XRPL JSON-RPC client
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a new XRPL client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type ledgerParams struct {
	LedgerIndex  string `json:"ledger_index"`
	Transactions bool   `json:"transactions"`
	Expand       bool   `json:"expand"`
}

type ledgerResponse struct {
	Result struct {
		LedgerHash string `json:"ledger_hash"`
		Status     string `json:"status"`
		Error      string `json:"error"`
	} `json:"result"`
}

// LatestLedgerHash fetches the hash of the most recent validated ledger.
func (c *Client) LatestLedgerHash(ctx context.Context) (string, error) {
	payload, err := json.Marshal(rpcRequest{
		Method: "ledger",
		Params: []interface{}{ledgerParams{LedgerIndex: "validated"}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal ledger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded ledgerResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if decoded.Result.Error != "" {
		return "", fmt.Errorf("%w: rpc error %s", ErrUnavailable, decoded.Result.Error)
	}
	if decoded.Result.LedgerHash == "" {
		return "", fmt.Errorf("%w: response carried no ledger hash", ErrUnavailable)
	}
	return decoded.Result.LedgerHash, nil
}
