package expense

import "github.com/shopspring/decimal"

// SelfPaidSplit divides what the user paid for a self-paid expense into the
// portion covering their own owed share and the portion fronted for the
// other participants. The two always sum to the original amount.
//
// Only meaningful when the expense is self-paid; callers gate on SelfPaid.
func SelfPaidSplit(e *Expense, currentUserID int64) (personal, reimbursable decimal.Decimal) {
	personal = decimal.Zero
	for _, u := range e.Users {
		if u.UserID == currentUserID {
			personal = u.OwedShare
			break
		}
	}
	return personal, e.OriginalAmount.Sub(personal)
}
