package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
	StatusDefaulted  Status = "defaulted"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool { return s != StatusActive }

// Table: loans. Rows are never deleted.
type Loan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"column:loan_id;size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	ProductID  uint64 `gorm:"column:product_id;not null;index:idx_loans_product_status" json:"-"`
	BorrowerID string `gorm:"column:borrower_id;size:128;not null;index:idx_loans_borrower" json:"borrower_id"`

	Principal    decimal.Decimal `gorm:"column:principal;type:decimal(36,8);not null" json:"principal"`
	Collateral   decimal.Decimal `gorm:"column:collateral;type:decimal(36,8);not null" json:"collateral"`
	RepaidAmount decimal.Decimal `gorm:"column:repaid_amount;type:decimal(36,8);not null;default:0" json:"repaid_amount"`
	// Portion of RepaidAmount that went to interest.
	InterestPaid decimal.Decimal `gorm:"column:interest_paid;type:decimal(36,8);not null;default:0" json:"interest_paid"`
	// Informational snapshot taken at the last mutation; never used for decisions.
	InterestAccrued decimal.Decimal `gorm:"column:interest_accrued;type:decimal(36,8);not null;default:0" json:"interest_accrued"`

	StartAt       time.Time  `gorm:"column:start_at;not null" json:"start_at"`
	LastPaymentAt *time.Time `gorm:"column:last_payment_at" json:"last_payment_at,omitempty"`
	ClosedAt      *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`

	Status     Status    `gorm:"column:status;size:16;not null;default:'active';index:idx_loans_product_status" json:"status"`
	Liquidated bool      `gorm:"column:liquidated;not null;default:false" json:"liquidated"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// TransitionTo moves an active loan into a terminal status.
func (l *Loan) TransitionTo(to Status, at time.Time) error {
	if l.Status.Terminal() || !to.Terminal() {
		return ErrInvalidStateTransition
	}
	l.Status = to
	l.Liquidated = to == StatusLiquidated
	closed := at
	l.ClosedAt = &closed
	return nil
}

// PrincipalOutstanding is principal not yet covered by principal portions of payments.
func (l *Loan) PrincipalOutstanding() decimal.Decimal {
	paid := l.RepaidAmount.Sub(l.InterestPaid)
	return l.Principal.Sub(paid)
}
