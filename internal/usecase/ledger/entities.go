package ledger

import (
	ledgerDomain "collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/usecase/lifecycle"

	"github.com/shopspring/decimal"
)

// Derived figures are computed at read time and never stored.
type Derived struct {
	CurrentInterest    decimal.Decimal  `json:"current_interest"`
	TotalOwed          decimal.Decimal  `json:"total_owed"`
	CollateralValue    decimal.Decimal  `json:"collateral_value"`
	CollateralRatioBps *decimal.Decimal `json:"current_collateral_ratio_bps"` // null when nothing is owed
	SecondsRemaining   int64            `json:"seconds_remaining"`
	IsOverdue          bool             `json:"is_overdue"`
	IsLiquidatable     bool             `json:"is_liquidatable"`
	LiquidationReason  string           `json:"liquidation_reason,omitempty"`
}

type LoanView struct {
	lifecycle.LoanDTO
	// nil once the loan is closed
	Derived *Derived `json:"derived,omitempty"`
}

type StatusTotals struct {
	Count        int64           `json:"count"`
	Principal    decimal.Decimal `json:"principal"`
	Collateral   decimal.Decimal `json:"collateral"`
	RepaidAmount decimal.Decimal `json:"repaid_amount"`
}

type ProductStats struct {
	ProductID        string                       `json:"product_id"`
	CurrentBorrowers int64                        `json:"current_borrowers"`
	MaxBorrowers     int64                        `json:"max_borrowers"`
	TotalLoans       int64                        `json:"total_loans"`
	ByStatus         map[loan.Status]StatusTotals `json:"by_status"`
	Principal        decimal.Decimal              `json:"total_principal"`
	RepaidAmount     decimal.Decimal              `json:"total_repaid"`
	// collateral still held by active loans
	CollateralLocked decimal.Decimal `json:"collateral_locked"`
}

type History struct {
	Loan              lifecycle.LoanDTO               `json:"loan"`
	Payments          []ledgerDomain.Payment          `json:"payments"`
	CollateralChanges []ledgerDomain.CollateralChange `json:"collateral_changes"`
	Liquidation       *ledgerDomain.Liquidation       `json:"liquidation,omitempty"`
}
