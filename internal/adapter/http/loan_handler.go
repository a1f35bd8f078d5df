package http

import (
	"net/http"
	"strings"

	ledgerDomain "collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/usecase/ledger"
	"collateral-ledger/internal/usecase/lifecycle"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const headerCallerID = "X-Caller-Id"

type LoanHandler struct {
	writes *lifecycle.Usecase
	reads  *ledger.Usecase
}

func NewLoanHandler(writes *lifecycle.Usecase, reads *ledger.Usecase) *LoanHandler {
	return &LoanHandler{writes: writes, reads: reads}
}

type createLoanReq struct {
	ProductID  string          `json:"product_id" validate:"required,hex32"`
	BorrowerID string          `json:"borrower_id" validate:"required,max=64"`
	Principal  decimal.Decimal `json:"principal" validate:"decpos,dec8"`
	Collateral decimal.Decimal `json:"collateral" validate:"decnonneg,dec8"`
}

type paymentReq struct {
	Amount decimal.Decimal `json:"amount" validate:"decpos,dec8"`
}

type collateralReq struct {
	Amount decimal.Decimal `json:"amount" validate:"decpos,dec8"`
	Kind   string          `json:"kind" validate:"required,oneof=added withdrawn"`
}

type liquidateReq struct {
	LiquidatorID string `json:"liquidator_id" validate:"max=64"`
}

type closeReq struct {
	Reason string `json:"reason" validate:"max=255"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.writes.CreateLoan(c.Request().Context(), lifecycle.CreateLoanInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	v, err := h.reads.GetLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *LoanHandler) History(c echo.Context) error {
	hist, err := h.reads.LoanHistory(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *LoanHandler) ListActive(c echo.Context) error {
	q, err := bindPage(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query", Message: err.Error()})
	}
	vs, err := h.reads.ListActiveLoansView(c.Request().Context(), q.Limit, q.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

func (h *LoanHandler) ListByBorrower(c echo.Context) error {
	vs, err := h.reads.ListLoansByBorrower(c.Request().Context(), c.Param("borrower"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

func (h *LoanHandler) ApplyPayment(c echo.Context) error {
	var req paymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.writes.ApplyPayment(c.Request().Context(), c.Param("loan_id"), req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) AdjustCollateral(c echo.Context) error {
	var req collateralReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.writes.AdjustCollateral(c.Request().Context(), c.Param("loan_id"), req.Amount, ledgerDomain.CollateralKind(req.Kind))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Liquidate takes the liquidator from the body, falling back to the caller header.
func (h *LoanHandler) Liquidate(c echo.Context) error {
	var req liquidateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	liquidator := strings.TrimSpace(req.LiquidatorID)
	if liquidator == "" {
		liquidator = strings.TrimSpace(c.Request().Header.Get(headerCallerID))
	}
	res, err := h.writes.Liquidate(c.Request().Context(), c.Param("loan_id"), liquidator)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	var req closeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.writes.MarkDefaulted(c.Request().Context(), c.Param("loan_id"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	var req closeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.writes.Cancel(c.Request().Context(), c.Param("loan_id"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
