package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentPartial PaymentKind = "partial"
	PaymentFull    PaymentKind = "full"
)

// Table: loan_payments (append-only)
type Payment struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID        string          `gorm:"column:payment_id;size:32;uniqueIndex:ux_loan_payments_payment_id" json:"payment_id"`
	LoanID           uint64          `gorm:"column:loan_id;not null;index:idx_loan_payments_loan" json:"-"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(36,8);not null" json:"amount"`
	InterestPortion  decimal.Decimal `gorm:"column:interest_portion;type:decimal(36,8);not null" json:"interest_portion"`
	PrincipalPortion decimal.Decimal `gorm:"column:principal_portion;type:decimal(36,8);not null" json:"principal_portion"`
	Kind             PaymentKind     `gorm:"column:kind;size:16;not null" json:"kind"`
	PaidAt           time.Time       `gorm:"column:paid_at;not null" json:"paid_at"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "loan_payments" }

type CollateralKind string

const (
	CollateralAdded      CollateralKind = "added"
	CollateralWithdrawn  CollateralKind = "withdrawn"
	CollateralLiquidated CollateralKind = "liquidated"
)

// Table: collateral_changes (append-only)
type CollateralChange struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	ChangeID        string          `gorm:"column:change_id;size:32;uniqueIndex:ux_collateral_changes_change_id" json:"change_id"`
	LoanID          uint64          `gorm:"column:loan_id;not null;index:idx_collateral_changes_loan" json:"-"`
	Kind            CollateralKind  `gorm:"column:kind;size:16;not null" json:"kind"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(36,8);not null" json:"amount"`
	CollateralAfter decimal.Decimal `gorm:"column:collateral_after;type:decimal(36,8);not null" json:"collateral_after"`
	ChangedAt       time.Time       `gorm:"column:changed_at;not null" json:"changed_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CollateralChange) TableName() string { return "collateral_changes" }

type LiquidationReason string

const (
	ReasonOverdue             LiquidationReason = "overdue"
	ReasonUndercollateralized LiquidationReason = "undercollateralized"
)

// Table: liquidations (append-only, at most one per loan)
type Liquidation struct {
	ID               uint64            `gorm:"primaryKey;column:id" json:"-"`
	LiquidationID    string            `gorm:"column:liquidation_id;size:32;uniqueIndex:ux_liquidations_liquidation_id" json:"liquidation_id"`
	LoanID           uint64            `gorm:"column:loan_id;not null;uniqueIndex:ux_liquidations_loan" json:"-"`
	LiquidatorID     string            `gorm:"column:liquidator_id;size:128;not null" json:"liquidator_id"`
	CollateralSeized decimal.Decimal   `gorm:"column:collateral_seized;type:decimal(36,8);not null" json:"collateral_seized"`
	DebtAmount       decimal.Decimal   `gorm:"column:debt_amount;type:decimal(36,8);not null" json:"debt_amount"`
	Reason           LiquidationReason `gorm:"column:reason;size:32;not null" json:"reason"`
	LiquidatedAt     time.Time         `gorm:"column:liquidated_at;not null" json:"liquidated_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Liquidation) TableName() string { return "liquidations" }

// Table: audit_logs (write-once, never read by business logic)
type AuditEntry struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID    *uint64         `gorm:"column:loan_id;index:idx_audit_logs_loan" json:"-"`
	ProductID *uint64         `gorm:"column:product_id;index:idx_audit_logs_product" json:"-"`
	Action    string          `gorm:"column:action;size:64;not null" json:"action"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(36,8);not null;default:0" json:"amount"`
	Metadata  string          `gorm:"column:metadata;type:text" json:"metadata"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_logs" }

// Audit actions
const (
	ActionProductCreated    = "product.created"
	ActionProductUpdated    = "product.updated"
	ActionProductActivated  = "product.activated"
	ActionLoanCreated       = "loan.created"
	ActionPaymentApplied    = "loan.payment"
	ActionLoanRepaid        = "loan.repaid"
	ActionCollateralAdded   = "loan.collateral_added"
	ActionCollateralRemoved = "loan.collateral_withdrawn"
	ActionLoanLiquidated    = "loan.liquidated"
	ActionLoanDefaulted     = "loan.defaulted"
	ActionLoanCancelled     = "loan.cancelled"
)
