package product

import "collateral-ledger/internal/domain/apperr"

var (
	ErrNotFound         = apperr.New(apperr.KindNotFound, "product_not_found", "loan product not found")
	ErrInactive         = apperr.New(apperr.KindValidation, "product_inactive", "loan product is not active")
	ErrInvalidTerms     = apperr.New(apperr.KindValidation, "invalid_product_terms", "invalid loan product terms")
	ErrReferenced       = apperr.New(apperr.KindStateConflict, "product_referenced", "loan product terms are locked once a loan references it")
	ErrCapacityExceeded = apperr.New(apperr.KindStateConflict, "capacity_exceeded", "loan product has no free borrower slot")
)
