package http

import (
	"github.com/labstack/echo/v4"
)

type Routes struct {
	Health   *Handler
	Products *ProductHandler
	Loans    *LoanHandler
	Metrics  echo.HandlerFunc
	// applied to every mutating route
	Mutating []echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	if r.Metrics != nil {
		e.GET("/metrics", r.Metrics)
	}

	p := e.Group("/products")
	p.GET("", r.Products.List)
	p.GET("/active", r.Products.ListActive)
	p.GET("/:product_id", r.Products.Get)
	p.GET("/:product_id/statistics", r.Products.Statistics)
	p.POST("", r.Products.Create, r.Mutating...)
	p.PUT("/:product_id", r.Products.Update, r.Mutating...)
	p.PATCH("/:product_id/active", r.Products.SetActive, r.Mutating...)

	l := e.Group("/loans")
	l.GET("/active", r.Loans.ListActive)
	l.GET("/:loan_id", r.Loans.GetLoan)
	l.GET("/:loan_id/history", r.Loans.History)
	l.POST("", r.Loans.CreateLoan, r.Mutating...)
	l.POST("/:loan_id/payments", r.Loans.ApplyPayment, r.Mutating...)
	l.POST("/:loan_id/collateral", r.Loans.AdjustCollateral, r.Mutating...)
	l.POST("/:loan_id/liquidate", r.Loans.Liquidate, r.Mutating...)
	l.POST("/:loan_id/default", r.Loans.MarkDefaulted, r.Mutating...)
	l.POST("/:loan_id/cancel", r.Loans.Cancel, r.Mutating...)

	e.GET("/borrowers/:borrower/loans", r.Loans.ListByBorrower)
}
