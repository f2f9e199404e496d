package splitwise

import "time"

// User is the authenticated Splitwise user.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Category is the Splitwise category attached to an expense.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExpenseUser is one participant's stake in an expense. Monetary fields
// arrive as decimal strings on the wire.
type ExpenseUser struct {
	UserID     int64  `json:"user_id"`
	PaidShare  string `json:"paid_share"`
	OwedShare  string `json:"owed_share"`
	NetBalance string `json:"net_balance"`
}

// Expense is a raw expense or payment record as returned by the Splitwise
// API. A record with Payment set is a direct transfer between users rather
// than an itemized expense.
type Expense struct {
	ID           int64         `json:"id"`
	GroupID      int64         `json:"group_id"`
	Description  string        `json:"description"`
	Details      string        `json:"details"`
	Payment      bool          `json:"payment"`
	Cost         string        `json:"cost"`
	CurrencyCode string        `json:"currency_code"`
	Date         time.Time     `json:"date"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	DeletedAt    *time.Time    `json:"deleted_at"`
	Category     Category      `json:"category"`
	Users        []ExpenseUser `json:"users"`
}

// FriendBalance is one currency's outstanding balance with a friend.
type FriendBalance struct {
	CurrencyCode string `json:"currency_code"`
	Amount       string `json:"amount"`
}

// Friend is a Splitwise friend along with the balances owed between them
// and the current user.
type Friend struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Balance   []FriendBalance `json:"balance"`
}
