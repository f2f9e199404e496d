package splitwise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Splitwise API endpoint.
const DefaultBaseURL = "https://secure.splitwise.com/api/v3.0"

// Client talks to the Splitwise API using a personal access token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new Splitwise API client. An empty baseURL selects
// the public API endpoint.
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

// GetCurrentUser returns the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var response struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/get_current_user", nil, &response); err != nil {
		return nil, err
	}
	return &response.User, nil
}

// GetExpenses returns expenses updated after the given time, newest first.
// Splitwise pages with limit/offset; callers page until a short page comes
// back.
func (c *Client) GetExpenses(ctx context.Context, updatedAfter time.Time, limit, offset int) ([]Expense, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if !updatedAfter.IsZero() {
		params.Set("updated_after", updatedAfter.Format(time.RFC3339))
	}

	var response struct {
		Expenses []Expense `json:"expenses"`
	}
	if err := c.get(ctx, "/get_expenses", params, &response); err != nil {
		return nil, err
	}
	return response.Expenses, nil
}

// GetFriends returns the user's friends with outstanding balances.
func (c *Client) GetFriends(ctx context.Context) ([]Friend, error) {
	var response struct {
		Friends []Friend `json:"friends"`
	}
	if err := c.get(ctx, "/get_friends", nil, &response); err != nil {
		return nil, err
	}
	return response.Friends, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling splitwise API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("splitwise API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
