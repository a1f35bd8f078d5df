package loan

import "collateral-ledger/internal/domain/apperr"

var (
	ErrNotFound = apperr.New(apperr.KindNotFound, "loan_not_found", "loan not found")

	ErrInvalidAmount          = apperr.New(apperr.KindValidation, "invalid_amount", "amount must be positive")
	ErrAmountOutOfRange       = apperr.New(apperr.KindValidation, "amount_out_of_range", "principal is outside the product range")
	ErrInvalidCollateralKind  = apperr.New(apperr.KindValidation, "invalid_collateral_kind", "collateral change must be added or withdrawn")
	ErrInsufficientCollateral = apperr.New(apperr.KindStateConflict, "insufficient_collateral", "collateral does not meet the product collateral ratio")
	ErrIdentityCheckRequired  = apperr.New(apperr.KindStateConflict, "identity_check_required", "borrower has not passed the identity check")

	ErrLoanNotActive                     = apperr.New(apperr.KindStateConflict, "loan_not_active", "loan is not active")
	ErrAmountExceedsOwed                 = apperr.New(apperr.KindStateConflict, "amount_exceeds_owed", "payment exceeds the amount owed")
	ErrWithdrawalWouldUndercollateralize = apperr.New(apperr.KindStateConflict, "withdrawal_would_undercollateralize", "withdrawal would drop the loan below the product collateral ratio")
	ErrWithdrawalExceedsCollateral       = apperr.New(apperr.KindValidation, "withdrawal_exceeds_collateral", "withdrawal exceeds the collateral held")
	ErrNotLiquidatable                   = apperr.New(apperr.KindStateConflict, "not_liquidatable", "loan is neither overdue nor undercollateralized")

	ErrInvalidStateTransition = apperr.New(apperr.KindInvariant, "invalid_state_transition", "transition out of a terminal loan status")
	ErrNegativeInterest       = apperr.New(apperr.KindInvariant, "negative_interest", "computed interest is negative")
)
