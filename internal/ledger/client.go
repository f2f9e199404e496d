package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the hosted Lunch Money API endpoint.
const DefaultBaseURL = "https://dev.lunchmoney.app/v1"

// Client talks to the budgeting ledger API using a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new ledger API client. An empty baseURL selects the
// hosted endpoint.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InsertTransactions records a batch of transactions and returns the ids
// assigned by the ledger. Entries whose external id was already recorded
// are skipped by the ledger, which keeps re-synced batches idempotent.
func (c *Client) InsertTransactions(ctx context.Context, transactions []Transaction) ([]int64, error) {
	body := struct {
		Transactions      []Transaction `json:"transactions"`
		SkipDuplicates    bool          `json:"skip_duplicates"`
		CheckForRecurring bool          `json:"check_for_recurring"`
		DebitAsNegative   bool          `json:"debit_as_negative"`
	}{
		Transactions:   transactions,
		SkipDuplicates: true,
	}

	var response struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &response); err != nil {
		return nil, err
	}
	return response.IDs, nil
}

// UpdateAssetBalance sets the tracked balance of a ledger asset.
func (c *Client) UpdateAssetBalance(ctx context.Context, assetID int64, balance decimal.Decimal) error {
	body := struct {
		Balance string `json:"balance"`
	}{
		Balance: balance.StringFixed(2),
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/assets/%d", assetID), body, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling ledger API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ledger API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
