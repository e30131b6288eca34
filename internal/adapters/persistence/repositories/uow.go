package repositories

import (
	"context"

	"lendbridge/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Repos bundles the repositories bound to one transaction.
type Repos struct {
	Loans        *LoanRepository
	Applications *ApplicationRepository
	Documents    *DocumentRepository
	Products     *ProductRepository
}

// UnitOfWork runs multi-step ledger mutations inside one database
// transaction: commit on success, full rollback on any error.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front so concurrent payments
	// against the same loan serialize, then passes it to fn.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, loan *models.Loan) error) error
}

// GormUnitOfWork implements UnitOfWork over gorm transactions.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new unit of work
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func txRepos(tx *gorm.DB) Repos {
	return Repos{
		Loans:        &LoanRepository{db: tx},
		Applications: &ApplicationRepository{db: tx},
		Documents:    &DocumentRepository{db: tx},
		Products:     &ProductRepository{db: tx},
	}
}

// WithinTx runs fn in a transaction with repositories bound to it
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos(tx))
	})
}

// WithinLoanTx locks the loan row first, then runs fn
func (u *GormUnitOfWork) WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, loan *models.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := txRepos(tx)
		loan, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, loan)
	})
}
