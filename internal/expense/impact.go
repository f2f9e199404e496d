package expense

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

// Impact derives the financial impact of a raw Splitwise record on the
// given user, along with whether the user fronted the payment.
//
// Impact is framed as cost to the user: positive when someone else paid on
// the user's behalf (or sent them money), negative when the user paid for
// others or sent money. A user absent from the participant list has zero
// shares and therefore zero impact. The same rule covers both itemized
// expenses and transfers (payment records).
func Impact(raw *splitwise.Expense, currentUserID int64) (decimal.Decimal, bool, error) {
	paid := decimal.Zero
	owed := decimal.Zero
	for _, u := range raw.Users {
		if u.UserID != currentUserID {
			continue
		}
		var err error
		paid, owed, err = parseShares(u)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("expense %d: %w", raw.ID, err)
		}
		break
	}

	return owed.Sub(paid), paid.IsPositive(), nil
}
