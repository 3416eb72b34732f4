// Package finance records income and expenses and reports the monthly balance.
package finance

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/store"
)

type Ledger struct {
	repo *store.Repository
	now  func() time.Time
	mu   sync.Mutex
}

func New(repo *store.Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// EntryInput describes an income or an expense. A zero Date means now.
type EntryInput struct {
	Category    string          `json:"category" validate:"required,max=60"`
	Description string          `json:"description" validate:"max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        time.Time       `json:"date"`
}

func (f *Ledger) AddIncome(ctx context.Context, in EntryInput) (models.FinanceEntry, error) {
	return f.add(ctx, models.Income, in)
}

func (f *Ledger) AddExpense(ctx context.Context, in EntryInput) (models.FinanceEntry, error) {
	return f.add(ctx, models.Expense, in)
}

func (f *Ledger) add(ctx context.Context, kind models.EntryKind, in EntryInput) (models.FinanceEntry, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Category) == "" {
		fields["category"] = "required"
	}
	if !in.Amount.IsPositive() {
		fields["amount"] = "must be greater than 0"
	}
	if len(fields) > 0 {
		return models.FinanceEntry{}, apperror.NewValidation(fields)
	}

	e := models.FinanceEntry{
		ID:          uuid.NewString(),
		Kind:        kind,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
	}
	if e.Date.IsZero() {
		e.Date = f.now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	load, save := f.repo.ExpensesForUpdate, f.repo.SaveExpenses
	if kind == models.Income {
		load, save = f.repo.IncomeForUpdate, f.repo.SaveIncome
	}
	entries, err := load(ctx)
	if err != nil {
		return models.FinanceEntry{}, err
	}
	if err := save(ctx, append(entries, e)); err != nil {
		return models.FinanceEntry{}, err
	}

	zerolog.Ctx(ctx).Info().Str("kind", string(kind)).Str("amount", e.Amount.String()).Msg("finance entry added")
	return e, nil
}

// Entries returns income and expenses together, newest first.
func (f *Ledger) Entries(ctx context.Context) []models.FinanceEntry {
	all := slices.Concat(f.repo.Income(ctx), f.repo.Expenses(ctx))
	slices.SortStableFunc(all, func(a, b models.FinanceEntry) int { return b.Date.Compare(a.Date) })
	return all
}

type Balance struct {
	MonthStart time.Time       `json:"monthStart"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Balance    decimal.Decimal `json:"balance"`
}

// MonthlyBalance sums the entries dated since day 1 of the current month.
func (f *Ledger) MonthlyBalance(ctx context.Context) Balance {
	now := f.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	sum := func(entries []models.FinanceEntry) decimal.Decimal {
		total := decimal.Zero
		for _, e := range entries {
			if !e.Date.Before(start) {
				total = total.Add(e.Amount)
			}
		}
		return total
	}
	b := Balance{MonthStart: start, Income: sum(f.repo.Income(ctx)), Expenses: sum(f.repo.Expenses(ctx))}
	b.Balance = b.Income.Sub(b.Expenses)
	return b
}
