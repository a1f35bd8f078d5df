package lifecycle

import "collateral-ledger/internal/domain/apperr"

var (
	ErrIdentityUnavailable = apperr.New(apperr.KindDependency, "identity_unavailable", "identity check service is unavailable")
	ErrBorrowerRequired    = apperr.New(apperr.KindValidation, "borrower_required", "borrower is required")
	ErrLiquidatorRequired  = apperr.New(apperr.KindValidation, "liquidator_required", "liquidator is required")
)
