package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

// UserShare is one participant's stake in an expense.
type UserShare struct {
	UserID     int64           `json:"user_id"`
	PaidShare  decimal.Decimal `json:"paid_share"`
	OwedShare  decimal.Decimal `json:"owed_share"`
	NetBalance decimal.Decimal `json:"net_balance"` // PaidShare - OwedShare
}

// Expense is a normalized Splitwise expense or transfer. It is built once
// from a raw record and never mutated; a fresh fetch produces a fresh value.
type Expense struct {
	ID              int64           `json:"id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	SelfPaid        bool            `json:"self_paid"`
	FinancialImpact decimal.Decimal `json:"financial_impact"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Details         string          `json:"details,omitempty"`
	Payment         bool            `json:"payment"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	Deleted         bool            `json:"deleted"`
	Users           []UserShare     `json:"users"`
}

// ValidationError reports a raw record that cannot be normalized.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid expense record: %s %s", e.Field, e.Reason)
}

// FromRecord validates a raw Splitwise record and builds the normalized
// Expense, deriving the financial impact and self-paid flag for the given
// user. Participant order is preserved as delivered by the service.
func FromRecord(raw *splitwise.Expense, currentUserID int64) (*Expense, error) {
	if raw.ID <= 0 {
		return nil, &ValidationError{Field: "id", Reason: "is missing"}
	}
	if raw.Cost == "" {
		return nil, &ValidationError{Field: "cost", Reason: "is missing"}
	}
	cost, err := decimal.NewFromString(raw.Cost)
	if err != nil {
		return nil, &ValidationError{Field: "cost", Reason: fmt.Sprintf("is not a decimal: %q", raw.Cost)}
	}
	if cost.IsNegative() {
		return nil, &ValidationError{Field: "cost", Reason: "is negative"}
	}
	if raw.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is missing"}
	}
	if raw.CreatedAt.IsZero() {
		return nil, &ValidationError{Field: "created_at", Reason: "is missing"}
	}
	if raw.UpdatedAt.IsZero() {
		return nil, &ValidationError{Field: "updated_at", Reason: "is missing"}
	}

	shares := make([]UserShare, len(raw.Users))
	sumPaid := decimal.Zero
	sumOwed := decimal.Zero
	for i, u := range raw.Users {
		if u.UserID <= 0 {
			return nil, &ValidationError{Field: "users.user_id", Reason: "is missing"}
		}
		paid, owed, err := parseShares(u)
		if err != nil {
			return nil, err
		}
		shares[i] = UserShare{
			UserID:     u.UserID,
			PaidShare:  paid,
			OwedShare:  owed,
			NetBalance: paid.Sub(owed),
		}
		sumPaid = sumPaid.Add(paid)
		sumOwed = sumOwed.Add(owed)
	}

	// Splitwise rounds each share to cents, so the sums may drift from the
	// total by up to a cent per participant. Anything beyond that is a
	// corrupt record.
	tolerance := decimal.New(int64(len(shares)), -2)
	if sumOwed.Sub(cost).Abs().GreaterThan(tolerance) {
		return nil, &ValidationError{Field: "users.owed_share", Reason: fmt.Sprintf("sums to %s, want %s", sumOwed, cost)}
	}
	if sumPaid.Sub(cost).Abs().GreaterThan(tolerance) {
		return nil, &ValidationError{Field: "users.paid_share", Reason: fmt.Sprintf("sums to %s, want %s", sumPaid, cost)}
	}

	impact, selfPaid, err := Impact(raw, currentUserID)
	if err != nil {
		return nil, err
	}

	var deletedAt *time.Time
	if raw.DeletedAt != nil {
		t := *raw.DeletedAt
		deletedAt = &t
	}

	return &Expense{
		ID:              raw.ID,
		OriginalAmount:  cost,
		SelfPaid:        selfPaid,
		FinancialImpact: impact,
		Description:     raw.Description,
		Category:        raw.Category.Name,
		Details:         raw.Details,
		Payment:         raw.Payment,
		Date:            raw.Date,
		CreatedAt:       raw.CreatedAt,
		UpdatedAt:       raw.UpdatedAt,
		DeletedAt:       deletedAt,
		Deleted:         deletedAt != nil,
		Users:           shares,
	}, nil
}

func parseShares(u splitwise.ExpenseUser) (paid, owed decimal.Decimal, err error) {
	paid, err = parseShare("users.paid_share", u.PaidShare)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	owed, err = parseShare("users.owed_share", u.OwedShare)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return paid, owed, nil
}

func parseShare(field, value string) (decimal.Decimal, error) {
	if value == "" {
		// Splitwise omits shares for participants with no stake.
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("is not a decimal: %q", value)}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "is negative"}
	}
	return d, nil
}
