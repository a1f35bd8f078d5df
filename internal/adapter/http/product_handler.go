package http

import (
	"net/http"

	"collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/usecase/catalog"
	"collateral-ledger/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *catalog.Usecase
	reads   *ledger.Usecase
}

func NewProductHandler(c *catalog.Usecase, reads *ledger.Usecase) *ProductHandler {
	return &ProductHandler{catalog: c, reads: reads}
}

type productReq struct {
	Name                    string          `json:"name" validate:"required,max=128"`
	CollateralAsset         string          `json:"collateral_asset" validate:"max=32"`
	MinAmount               decimal.Decimal `json:"min_amount" validate:"decpos,dec8"`
	MaxAmount               decimal.Decimal `json:"max_amount" validate:"decpos,dec8"`
	InterestRateBps         int64           `json:"interest_rate_bps" validate:"gte=0"`
	CollateralRatioBps      int64           `json:"collateral_ratio_bps" validate:"gte=0"`
	DurationSeconds         int64           `json:"duration_seconds" validate:"gte=0"`
	LiquidationThresholdBps int64           `json:"liquidation_threshold_bps" validate:"gte=0"`
	PenaltyRateBps          int64           `json:"penalty_rate_bps" validate:"gte=0"`
	RequiresIdentityCheck   bool            `json:"requires_identity_check"`
	MaxBorrowers            int64           `json:"max_borrowers" validate:"gte=0"`
}

func (r productReq) input() catalog.ProductInput {
	return catalog.ProductInput(r)
}

type activeReq struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *ProductHandler) List(c echo.Context) error {
	ps, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toDTOs(ps))
}

func (h *ProductHandler) ListActive(c echo.Context) error {
	ps, err := h.catalog.ListActive(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toDTOs(ps))
}

func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.catalog.Get(c.Request().Context(), c.Param("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, catalog.ToDTO(p))
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	p, err := h.catalog.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, catalog.ToDTO(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	var req productReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	p, err := h.catalog.UpdateTerms(c.Request().Context(), c.Param("product_id"), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, catalog.ToDTO(p))
}

func (h *ProductHandler) SetActive(c echo.Context) error {
	var req activeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	p, err := h.catalog.SetActive(c.Request().Context(), c.Param("product_id"), *req.Active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, catalog.ToDTO(p))
}

func (h *ProductHandler) Statistics(c echo.Context) error {
	st, err := h.reads.ProductStatistics(c.Request().Context(), c.Param("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func toDTOs(ps []product.Product) []catalog.ProductDTO {
	out := make([]catalog.ProductDTO, 0, len(ps))
	for i := range ps {
		out = append(out, catalog.ToDTO(&ps[i]))
	}
	return out
}
