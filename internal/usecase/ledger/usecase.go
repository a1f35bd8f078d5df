// Package ledger serves the read side: loans with derived figures, per-product
// statistics and a loan's full event history. Nothing here takes a lock.
package ledger

import (
	"context"
	"time"

	"collateral-ledger/internal/domain/accrual"
	ledgerDomain "collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/domain/risk"
	"collateral-ledger/internal/usecase/lifecycle"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// maxQuoteFetches bounds concurrent oracle calls for one view.
const maxQuoteFetches = 8

type Usecase struct {
	products product.Repository
	loans    loan.Repository
	events   ledgerDomain.Repository

	oracle        risk.PriceOracle
	oracleTimeout time.Duration
	now           func() time.Time
}

type Option func(*Usecase)

func WithOracle(o risk.PriceOracle, timeout time.Duration) Option {
	return func(u *Usecase) { u.oracle, u.oracleTimeout = o, timeout }
}

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(products product.Repository, loans loan.Repository, events ledgerDomain.Repository, opts ...Option) *Usecase {
	u := &Usecase{products: products, loans: loans, events: events, now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) clock() time.Time { return u.now().UTC().Truncate(time.Second) }

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanView, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	views, err := u.views(ctx, []loan.Loan{*l})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (u *Usecase) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]LoanView, error) {
	ls, err := u.loans.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return u.views(ctx, ls)
}

// ListActiveLoansView pages through active loans; limit 0 returns all of them.
func (u *Usecase) ListActiveLoansView(ctx context.Context, limit, offset int) ([]LoanView, error) {
	ls, err := u.loans.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return u.views(ctx, ls)
}

func (u *Usecase) ProductStatistics(ctx context.Context, productID string) (*ProductStats, error) {
	p, err := u.products.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	rows, err := u.loans.StatsByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := &ProductStats{
		ProductID:        p.ProductID,
		CurrentBorrowers: p.CurrentBorrowers,
		MaxBorrowers:     p.MaxBorrowers,
		ByStatus:         make(map[loan.Status]StatusTotals, len(rows)),
		Principal:        decimal.Zero,
		RepaidAmount:     decimal.Zero,
		CollateralLocked: decimal.Zero,
	}
	for _, r := range rows {
		out.ByStatus[r.Status] = StatusTotals{
			Count:        r.Count,
			Principal:    accrual.Round(r.Principal),
			Collateral:   accrual.Round(r.Collateral),
			RepaidAmount: accrual.Round(r.RepaidAmount),
		}
		out.TotalLoans += r.Count
		out.Principal = out.Principal.Add(r.Principal)
		out.RepaidAmount = out.RepaidAmount.Add(r.RepaidAmount)
		if r.Status == loan.StatusActive {
			out.CollateralLocked = out.CollateralLocked.Add(r.Collateral)
		}
	}
	out.Principal = accrual.Round(out.Principal)
	out.RepaidAmount = accrual.Round(out.RepaidAmount)
	out.CollateralLocked = accrual.Round(out.CollateralLocked)
	return out, nil
}

func (u *Usecase) LoanHistory(ctx context.Context, loanID string) (*History, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	p, err := u.products.GetByID(ctx, l.ProductID)
	if err != nil {
		return nil, err
	}

	h := &History{Loan: lifecycle.ToLoanDTO(l, p)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		h.Payments, err = u.events.PaymentsByLoan(gctx, l.ID)
		return err
	})
	g.Go(func() (err error) {
		h.CollateralChanges, err = u.events.CollateralChangesByLoan(gctx, l.ID)
		return err
	})
	g.Go(func() (err error) {
		h.Liquidation, err = u.events.LiquidationByLoan(gctx, l.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if h.Payments == nil {
		h.Payments = []ledgerDomain.Payment{}
	}
	if h.CollateralChanges == nil {
		h.CollateralChanges = []ledgerDomain.CollateralChange{}
	}
	return h, nil
}

// views attaches product terms and, for active loans, derived figures at one instant.
func (u *Usecase) views(ctx context.Context, ls []loan.Loan) ([]LoanView, error) {
	out := make([]LoanView, 0, len(ls))
	if len(ls) == 0 {
		return out, nil
	}
	products, err := u.productsFor(ctx, ls)
	if err != nil {
		return nil, err
	}
	quotes, err := u.quotesFor(ctx, ls, products)
	if err != nil {
		return nil, err
	}

	asOf := u.clock()
	for i := range ls {
		l := &ls[i]
		p := products[l.ProductID]
		v := LoanView{LoanDTO: lifecycle.ToLoanDTO(l, p)}
		if l.Status == loan.StatusActive {
			a := risk.Assess(l, p, quotes[p.CollateralAsset], asOf)
			v.Derived = &Derived{
				CurrentInterest:    a.Interest,
				TotalOwed:          a.Owed,
				CollateralValue:    a.CollateralValue,
				CollateralRatioBps: a.Ratio.BpsOrNil(),
				SecondsRemaining:   a.SecondsRemaining,
				IsOverdue:          a.Overdue,
				IsLiquidatable:     a.Liquidatable,
				LiquidationReason:  string(a.Reason),
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (u *Usecase) productsFor(ctx context.Context, ls []loan.Loan) (map[uint64]*product.Product, error) {
	ids := make([]uint64, 0, len(ls))
	seen := make(map[uint64]bool, len(ls))
	for _, l := range ls {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	ps, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]*product.Product, len(ps))
	for i := range ps {
		out[ps[i].ID] = &ps[i]
	}
	for _, pid := range ids {
		if out[pid] == nil {
			return nil, product.ErrNotFound
		}
	}
	return out, nil
}

// quotesFor fetches one unit quote per distinct collateral asset of the active loans.
func (u *Usecase) quotesFor(ctx context.Context, ls []loan.Loan, products map[uint64]*product.Product) (map[string]risk.Quote, error) {
	quotes := map[string]risk.Quote{"": risk.Par()}
	var need []*product.Product
	seen := map[string]bool{}
	for _, l := range ls {
		p := products[l.ProductID]
		if l.Status != loan.StatusActive || p.SameDenomination() || seen[p.CollateralAsset] {
			continue
		}
		seen[p.CollateralAsset] = true
		need = append(need, p)
	}
	if len(need) == 0 {
		return quotes, nil
	}

	if u.oracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.oracleTimeout)
		defer cancel()
	}
	fetched := make([]risk.Quote, len(need))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQuoteFetches)
	for i, p := range need {
		g.Go(func() error {
			q, err := risk.QuoteFor(gctx, u.oracle, p)
			if err != nil {
				return err
			}
			fetched[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, q := range fetched {
		quotes[q.Asset] = q
	}
	return quotes, nil
}
