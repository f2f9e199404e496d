package ledger

// Transaction is one entry to record in the budgeting ledger. Amounts are
// decimal strings rounded to cents; positive amounts are debits.
type Transaction struct {
	Date       string   `json:"date"` // YYYY-MM-DD
	Amount     string   `json:"amount"`
	Payee      string   `json:"payee"`
	Notes      string   `json:"notes,omitempty"`
	Status     string   `json:"status,omitempty"`
	ExternalID string   `json:"external_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}
