package lifecycle

import (
	"time"

	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/domain/risk"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	ProductID  string
	BorrowerID string
	Principal  decimal.Decimal
	Collateral decimal.Decimal
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	ProductID       string          `json:"product_id"`
	BorrowerID      string          `json:"borrower_id"`
	Principal       decimal.Decimal `json:"principal"`
	Collateral      decimal.Decimal `json:"collateral"`
	RepaidAmount    decimal.Decimal `json:"repaid_amount"`
	InterestPaid    decimal.Decimal `json:"interest_paid"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
	StartAt         time.Time       `json:"start_at"`
	MaturityAt      time.Time       `json:"maturity_at"`
	LastPaymentAt   *time.Time      `json:"last_payment_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	Status          loan.Status     `json:"status"`
	Liquidated      bool            `json:"liquidated"`
}

func ToLoanDTO(l *loan.Loan, p *product.Product) LoanDTO {
	return LoanDTO{
		LoanID:          l.LoanID,
		ProductID:       p.ProductID,
		BorrowerID:      l.BorrowerID,
		Principal:       l.Principal,
		Collateral:      l.Collateral,
		RepaidAmount:    l.RepaidAmount,
		InterestPaid:    l.InterestPaid,
		InterestAccrued: l.InterestAccrued,
		StartAt:         l.StartAt,
		MaturityAt:      risk.Maturity(l, p),
		LastPaymentAt:   l.LastPaymentAt,
		ClosedAt:        l.ClosedAt,
		Status:          l.Status,
		Liquidated:      l.Liquidated,
	}
}

type PaymentResult struct {
	Loan      LoanDTO         `json:"loan"`
	Payment   ledger.Payment  `json:"payment"`
	Remaining decimal.Decimal `json:"remaining_owed"`
}

type CollateralResult struct {
	Loan   LoanDTO                 `json:"loan"`
	Change ledger.CollateralChange `json:"change"`
}

type LiquidationResult struct {
	Loan        LoanDTO            `json:"loan"`
	Liquidation ledger.Liquidation `json:"liquidation"`
}

// Event is the body published to the message bus after a mutation commits.
type Event struct {
	Type       string           `json:"type"`
	LoanID     string           `json:"loan_id"`
	ProductID  string           `json:"product_id"`
	BorrowerID string           `json:"borrower_id"`
	Status     loan.Status      `json:"status"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	At         time.Time        `json:"at"`
}

// Routing keys
const (
	EventLoanCreated    = "loan.created"
	EventLoanPayment    = "loan.payment"
	EventLoanRepaid     = "loan.repaid"
	EventLoanCollateral = "loan.collateral"
	EventLoanLiquidated = "loan.liquidated"
	EventLoanDefaulted  = "loan.defaulted"
	EventLoanCancelled  = "loan.cancelled"
)
