package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidhsv/lunchable-splitlunch/internal/expense"
	"github.com/davidhsv/lunchable-splitlunch/internal/ledger"
	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

// ErrNoBalanceAsset is returned by UpdateBalance when no ledger asset is
// configured to mirror the Splitwise balance.
var ErrNoBalanceAsset = errors.New("no balance asset configured")

// ExpenseSource fetches raw records from the expense-splitting service
type ExpenseSource interface {
	// GetCurrentUser returns the authenticated user
	GetCurrentUser(ctx context.Context) (*splitwise.User, error)

	// GetExpenses returns a page of expenses updated after the given time
	GetExpenses(ctx context.Context, updatedAfter time.Time, limit, offset int) ([]splitwise.Expense, error)

	// GetFriends returns friends with outstanding balances
	GetFriends(ctx context.Context) ([]splitwise.Friend, error)
}

// Ledger records reconciled transactions in the budgeting ledger
type Ledger interface {
	// InsertTransactions records a batch of transactions
	InsertTransactions(ctx context.Context, transactions []ledger.Transaction) ([]int64, error)

	// UpdateAssetBalance sets the tracked balance of a ledger asset
	UpdateAssetBalance(ctx context.Context, assetID int64, balance decimal.Decimal) error
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config tunes a sync Service.
type Config struct {
	// Lookback bounds the first sync when no cursor is stored yet.
	Lookback time.Duration

	// PageSize is the expense page size requested from the source.
	PageSize int

	// AssetID is the ledger asset mirroring the Splitwise balance.
	// Zero disables balance updates.
	AssetID int64

	// ReimbursementTag is attached to the reimbursable ledger entry of a
	// self-paid expense.
	ReimbursementTag string
}

// Result summarizes one sync pass.
type Result struct {
	Fetched int `json:"fetched"`
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
}

// Service reconciles Splitwise expenses into the budgeting ledger
type Service struct {
	db         DB
	source     ExpenseSource
	ledger     Ledger
	timeSource TimeSource
	config     Config
}

// NewService creates a new Service with the default time source
func NewService(db DB, source ExpenseSource, ldg Ledger, config Config) *Service {
	return NewServiceWithDeps(db, source, ldg, config, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with a custom time source for testing
func NewServiceWithDeps(db DB, source ExpenseSource, ldg Ledger, config Config, timeSource TimeSource) *Service {
	if config.Lookback <= 0 {
		config.Lookback = 90 * 24 * time.Hour
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.ReimbursementTag == "" {
		config.ReimbursementTag = "splitwise-reimbursable"
	}
	return &Service{
		db:         db,
		source:     source,
		ledger:     ldg,
		timeSource: timeSource,
		config:     config,
	}
}

// Sync fetches expenses updated since the last pass, derives their
// financial impact, and records the resulting transactions in the ledger.
// Re-running is idempotent: already-reconciled records are skipped unless
// the source updated them.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	user, err := s.source.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	since, err := s.db.GetCursor()
	if err != nil {
		return nil, fmt.Errorf("getting cursor: %w", err)
	}
	runStart := s.timeSource.Now()
	if since.IsZero() {
		since = runStart.Add(-s.config.Lookback)
	}

	result := &Result{}
	for offset := 0; ; offset += s.config.PageSize {
		page, err := s.source.GetExpenses(ctx, since, s.config.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("getting expenses: %w", err)
		}
		for i := range page {
			result.Fetched++
			if err := s.reconcile(ctx, user.ID, &page[i], result); err != nil {
				return nil, err
			}
		}
		if len(page) < s.config.PageSize {
			break
		}
	}

	if err := s.db.SetCursor(runStart); err != nil {
		return nil, fmt.Errorf("setting cursor: %w", err)
	}
	slog.Info("Sync complete", "fetched", result.Fetched, "synced", result.Synced, "skipped", result.Skipped)
	return result, nil
}

// reconcile processes a single raw record and updates counts on result
func (s *Service) reconcile(ctx context.Context, userID int64, raw *splitwise.Expense, result *Result) error {
	existing, err := s.db.GetRecord(raw.ID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("getting record: %w", err)
	}
	if existing != nil && !raw.UpdatedAt.After(existing.Expense.UpdatedAt) {
		result.Skipped++
		return nil
	}

	model, err := expense.FromRecord(raw, userID)
	if err != nil {
		var validationErr *expense.ValidationError
		if errors.As(err, &validationErr) {
			slog.Warn("Skipping malformed expense", "id", raw.ID, "error", err)
			result.Skipped++
			return nil
		}
		return err
	}

	if model.FinancialImpact.IsZero() && !model.SelfPaid {
		// Not a participant, nothing to record.
		result.Skipped++
		return nil
	}

	if model.Deleted {
		// Deletion is a source-of-truth flag; ledger entries are never
		// removed here. Keep the record so the flag is visible.
		slog.Info("Expense deleted upstream", "id", model.ID)
		record := &Record{Expense: model, SyncedAt: s.timeSource.Now()}
		if existing != nil {
			record.LedgerIDs = existing.LedgerIDs
			record.Personal = existing.Personal
			record.Reimbursable = existing.Reimbursable
		}
		if err := s.db.SaveRecord(record); err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		result.Skipped++
		return nil
	}

	record := &Record{Expense: model, SyncedAt: s.timeSource.Now()}
	transactions := s.buildTransactions(model, userID, record)

	ids, err := s.ledger.InsertTransactions(ctx, transactions)
	if err != nil {
		return fmt.Errorf("inserting transactions for expense %d: %w", model.ID, err)
	}
	record.LedgerIDs = ids

	if err := s.db.SaveRecord(record); err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	result.Synced++
	return nil
}

// buildTransactions maps a normalized expense to ledger entries. A
// self-paid itemized expense becomes a personal entry plus a tagged
// reimbursable entry; everything else becomes a single entry for the
// user's net impact. Amounts are rounded to cents here, at the reporting
// boundary.
func (s *Service) buildTransactions(model *expense.Expense, userID int64, record *Record) []ledger.Transaction {
	date := model.Date.Format("2006-01-02")
	externalID := fmt.Sprintf("splitwise-%d", model.ID)

	if model.SelfPaid && !model.Payment {
		personal, reimbursable := expense.SelfPaidSplit(model, userID)
		record.Personal = personal
		record.Reimbursable = reimbursable

		transactions := []ledger.Transaction{{
			Date:       date,
			Amount:     personal.Round(2).StringFixed(2),
			Payee:      model.Description,
			Notes:      model.Details,
			Status:     "cleared",
			ExternalID: externalID,
		}}
		if reimbursable.IsPositive() {
			transactions = append(transactions, ledger.Transaction{
				Date:       date,
				Amount:     reimbursable.Round(2).StringFixed(2),
				Payee:      model.Description,
				Notes:      model.Details,
				Status:     "uncleared",
				ExternalID: externalID + "-reimbursable",
				Tags:       []string{s.config.ReimbursementTag},
			})
		}
		return transactions
	}

	return []ledger.Transaction{{
		Date:       date,
		Amount:     model.FinancialImpact.Round(2).StringFixed(2),
		Payee:      model.Description,
		Notes:      model.Details,
		Status:     "cleared",
		ExternalID: externalID,
	}}
}

// UpdateBalance sums the outstanding balances with every friend and pushes
// the total to the configured ledger asset.
func (s *Service) UpdateBalance(ctx context.Context) (decimal.Decimal, error) {
	if s.config.AssetID == 0 {
		return decimal.Zero, ErrNoBalanceAsset
	}

	friends, err := s.source.GetFriends(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting friends: %w", err)
	}

	total := decimal.Zero
	for _, friend := range friends {
		for _, balance := range friend.Balance {
			amount, err := decimal.NewFromString(balance.Amount)
			if err != nil {
				return decimal.Zero, fmt.Errorf("parsing balance for friend %d: %w", friend.ID, err)
			}
			total = total.Add(amount)
		}
	}

	if err := s.ledger.UpdateAssetBalance(ctx, s.config.AssetID, total); err != nil {
		return decimal.Zero, fmt.Errorf("updating asset balance: %w", err)
	}
	slog.Info("Balance updated", "asset", s.config.AssetID, "balance", total.StringFixed(2))
	return total, nil
}

// ListExpenses returns all reconciled records
func (s *Service) ListExpenses() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// GetExpense retrieves a reconciled record by Splitwise expense id
func (s *Service) GetExpense(id int64) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}
