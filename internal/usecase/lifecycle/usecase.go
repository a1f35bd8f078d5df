// Package lifecycle owns every mutation of a loan: origination, repayment,
// collateral adjustment, liquidation and the administrative terminal transitions.
//
// Each mutation runs in one transaction holding the loan row lock. Collaborator
// calls (price oracle, identity check) are made before the transaction starts.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"collateral-ledger/internal/domain/accrual"
	"collateral-ledger/internal/domain/apperr"
	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/domain/risk"
	"collateral-ledger/internal/domain/uow"
	"collateral-ledger/internal/infrastructure/logger"
	"collateral-ledger/internal/infrastructure/metrics"
	"collateral-ledger/internal/usecase/catalog"
	"collateral-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const moduleName = "lifecycle"

// IdentityVerifier answers whether a borrower passed KYC.
type IdentityVerifier interface {
	IsVerified(ctx context.Context, borrowerID string) (bool, error)
}

// Publisher delivers committed loan events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Usecase struct {
	uow      uow.UnitOfWork
	products product.Repository
	loans    loan.Repository

	oracle   risk.PriceOracle
	identity IdentityVerifier
	events   Publisher
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time

	oracleTimeout time.Duration
	kycTimeout    time.Duration
}

type Option func(*Usecase)

func WithOracle(o risk.PriceOracle) Option { return func(u *Usecase) { u.oracle = o } }
func WithIdentityVerifier(v IdentityVerifier) Option { return func(u *Usecase) { u.identity = v } }
func WithPublisher(p Publisher) Option { return func(u *Usecase) { u.events = p } }
func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l logrus.FieldLogger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }
func WithTimeouts(oracle, kyc time.Duration) Option {
	return func(u *Usecase) { u.oracleTimeout, u.kycTimeout = oracle, kyc }
}

// NewUsecase wires the manager. The repositories passed here are used only for
// reads outside a transaction; writes go through tx.
func NewUsecase(tx uow.UnitOfWork, products product.Repository, loans loan.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		uow:      tx,
		products: products,
		loans:    loans,
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// clock is UTC at whole seconds, the resolution interest accrues at.
func (u *Usecase) clock() time.Time {
	return u.now().UTC().Truncate(time.Second)
}

// CreateLoan opens an active loan against an active product.
func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	const op = "CreateLoan"
	principal, collateral := accrual.Round(in.Principal), accrual.Round(in.Collateral)
	if in.BorrowerID == "" {
		return nil, ErrBorrowerRequired
	}
	if !principal.IsPositive() || collateral.IsNegative() {
		return nil, loan.ErrInvalidAmount
	}

	p, err := u.products.GetByProductID(ctx, in.ProductID)
	if err != nil {
		return nil, u.fail(op, err, in)
	}
	if err := checkOrigination(p, principal); err != nil {
		return nil, err
	}
	q, err := u.quote(ctx, p)
	if err != nil {
		return nil, u.fail(op, err, in)
	}
	if !risk.MeetsRatio(q.Value(collateral), principal, p.CollateralRatioBps) {
		return nil, loan.ErrInsufficientCollateral
	}
	if p.RequiresIdentityCheck {
		if err := u.verifyIdentity(ctx, in.BorrowerID); err != nil {
			return nil, u.fail(op, err, in)
		}
	}

	now := u.clock()
	l := &loan.Loan{
		LoanID:          id.NewID32(),
		BorrowerID:      in.BorrowerID,
		Principal:       principal,
		Collateral:      collateral,
		RepaidAmount:    decimal.Zero,
		InterestPaid:    decimal.Zero,
		InterestAccrued: decimal.Zero,
		StartAt:         now,
		Status:          loan.StatusActive,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// terms may have moved since the read above; the lock orders this
		// against UpdateTerms so terms never change under a referencing loan
		cur, err := r.Products.GetByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := checkOrigination(cur, principal); err != nil {
			return err
		}
		if !risk.MeetsRatio(q.Value(collateral), principal, cur.CollateralRatioBps) {
			return loan.ErrInsufficientCollateral
		}
		p = cur

		// a rollback below also gives the slot back
		if err := catalog.ReserveSlot(ctx, r.Products, p); err != nil {
			return err
		}
		l.ProductID = p.ID
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Ledger.AppendCollateralChange(ctx, &ledger.CollateralChange{
			ChangeID:        id.NewID32(),
			LoanID:          l.ID,
			Kind:            ledger.CollateralAdded,
			Amount:          collateral,
			CollateralAfter: collateral,
			ChangedAt:       now,
		}); err != nil {
			return err
		}
		return r.Ledger.AppendAudit(ctx, loanAudit(l, ledger.ActionLoanCreated, principal, map[string]any{
			"collateral": collateral.String(),
			"product_id": p.ProductID,
		}))
	})
	if err != nil {
		return nil, u.fail(op, err, in)
	}

	dto := ToLoanDTO(l, p)
	u.metrics.LoanCreated(p.ProductID)
	u.publish(ctx, EventLoanCreated, l, p, &principal, "", now)
	return &dto, nil
}

func checkOrigination(p *product.Product, principal decimal.Decimal) error {
	if !p.Active {
		return product.ErrInactive
	}
	if !p.InRange(principal) {
		return loan.ErrAmountOutOfRange
	}
	return nil
}

// ApplyPayment books amount against an active loan: accrued interest first, then principal.
// A payment equal to everything owed settles the loan.
func (u *Usecase) ApplyPayment(ctx context.Context, loanID string, amount decimal.Decimal) (*PaymentResult, error) {
	const op = "ApplyPayment"
	amount = accrual.Round(amount)
	if !amount.IsPositive() {
		return nil, loan.ErrInvalidAmount
	}

	var (
		res     PaymentResult
		settled bool
		p       *product.Product
		locked  *loan.Loan
	)
	now := u.clock()
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		var err error
		if p, err = r.Products.GetByID(ctx, l.ProductID); err != nil {
			return err
		}

		accrued := accrual.ForLoan(l, p, now)
		owed := risk.TotalOwed(l, p, now)
		if amount.GreaterThan(owed) {
			return loan.ErrAmountExceedsOwed
		}
		interestDue := accrued.Sub(l.InterestPaid)
		if interestDue.IsNegative() {
			return fmt.Errorf("%w: accrued %s below interest paid %s on %s", loan.ErrNegativeInterest, accrued, l.InterestPaid, l.LoanID)
		}
		interestPortion := decimal.Min(amount, interestDue)

		pay := &ledger.Payment{
			PaymentID:        id.NewID32(),
			LoanID:           l.ID,
			Amount:           amount,
			InterestPortion:  interestPortion,
			PrincipalPortion: amount.Sub(interestPortion),
			Kind:             ledger.PaymentPartial,
			PaidAt:           now,
		}
		settled = amount.Equal(owed)
		if settled {
			pay.Kind = ledger.PaymentFull
		}
		if err := r.Ledger.AppendPayment(ctx, pay); err != nil {
			return err
		}

		l.RepaidAmount = l.RepaidAmount.Add(amount)
		l.InterestPaid = l.InterestPaid.Add(interestPortion)
		l.InterestAccrued = accrued
		l.LastPaymentAt = &now
		if settled {
			if err := l.TransitionTo(loan.StatusRepaid, now); err != nil {
				return err
			}
			if err := catalog.ReleaseSlot(ctx, r.Products, p.ID); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Ledger.AppendAudit(ctx, loanAudit(l, ledger.ActionPaymentApplied, amount, map[string]any{
			"payment_id":        pay.PaymentID,
			"interest_portion":  pay.InterestPortion.String(),
			"principal_portion": pay.PrincipalPortion.String(),
		})); err != nil {
			return err
		}
		if settled {
			if err := r.Ledger.AppendAudit(ctx, loanAudit(l, ledger.ActionLoanRepaid, l.RepaidAmount, nil)); err != nil {
				return err
			}
		}

		locked = l
		res.Payment = *pay
		res.Remaining = owed.Sub(amount)
		return nil
	})
	if err != nil {
		return nil, u.fail(op, err, map[string]any{"loan_id": loanID, "amount": amount.String()})
	}

	res.Loan = ToLoanDTO(locked, p)
	u.metrics.PaymentApplied(string(res.Payment.Kind))
	u.publish(ctx, EventLoanPayment, locked, p, &amount, "", now)
	if settled {
		u.metrics.LoanClosed(string(loan.StatusRepaid))
		u.publish(ctx, EventLoanRepaid, locked, p, nil, "", now)
	}
	return &res, nil
}

// AdjustCollateral tops up or withdraws collateral on an active loan. A withdrawal
// must leave the loan at or above the product's required collateral ratio.
func (u *Usecase) AdjustCollateral(ctx context.Context, loanID string, amount decimal.Decimal, kind ledger.CollateralKind) (*CollateralResult, error) {
	const op = "AdjustCollateral"
	amount = accrual.Round(amount)
	if kind != ledger.CollateralAdded && kind != ledger.CollateralWithdrawn {
		return nil, loan.ErrInvalidCollateralKind
	}
	if !amount.IsPositive() {
		return nil, loan.ErrInvalidAmount
	}

	q := risk.Par()
	if kind == ledger.CollateralWithdrawn {
		cur, p, err := u.activeLoan(ctx, loanID)
		if err != nil {
			return nil, u.fail(op, err, loanID)
		}
		if q, err = u.quote(ctx, p); err != nil {
			return nil, u.fail(op, err, cur.LoanID)
		}
	}

	var (
		res    CollateralResult
		p      *product.Product
		locked *loan.Loan
	)
	now := u.clock()
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		var err error
		if p, err = r.Products.GetByID(ctx, l.ProductID); err != nil {
			return err
		}

		after := l.Collateral.Add(amount)
		action := ledger.ActionCollateralAdded
		if kind == ledger.CollateralWithdrawn {
			if amount.GreaterThan(l.Collateral) {
				return loan.ErrWithdrawalExceedsCollateral
			}
			after = l.Collateral.Sub(amount)
			owed := risk.TotalOwed(l, p, now)
			if !risk.MeetsRatio(q.Value(after), owed, p.CollateralRatioBps) {
				return loan.ErrWithdrawalWouldUndercollateralize
			}
			action = ledger.ActionCollateralRemoved
		}

		change := &ledger.CollateralChange{
			ChangeID:        id.NewID32(),
			LoanID:          l.ID,
			Kind:            kind,
			Amount:          amount,
			CollateralAfter: after,
			ChangedAt:       now,
		}
		if err := r.Ledger.AppendCollateralChange(ctx, change); err != nil {
			return err
		}
		l.Collateral = after
		l.InterestAccrued = accrual.ForLoan(l, p, now)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Ledger.AppendAudit(ctx, loanAudit(l, action, amount, map[string]any{
			"change_id":        change.ChangeID,
			"collateral_after": after.String(),
		})); err != nil {
			return err
		}
		locked = l
		res.Change = *change
		return nil
	})
	if err != nil {
		return nil, u.fail(op, err, map[string]any{"loan_id": loanID, "amount": amount.String(), "kind": kind})
	}

	res.Loan = ToLoanDTO(locked, p)
	u.metrics.CollateralChanged(string(kind))
	u.publish(ctx, EventLoanCollateral, locked, p, &amount, string(kind), now)
	return &res, nil
}

// Liquidate seizes all collateral of an overdue or undercollateralized loan.
func (u *Usecase) Liquidate(ctx context.Context, loanID, liquidatorID string) (*LiquidationResult, error) {
	const op = "Liquidate"
	if liquidatorID == "" {
		return nil, ErrLiquidatorRequired
	}
	cur, pre, err := u.activeLoan(ctx, loanID)
	if err != nil {
		return nil, u.fail(op, err, loanID)
	}
	// overdue alone qualifies and never reverts, so no price is needed;
	// the zero quote values collateral at nothing
	var q risk.Quote
	if !risk.IsOverdue(cur, pre, u.clock()) {
		if q, err = u.quote(ctx, pre); err != nil {
			return nil, u.fail(op, err, loanID)
		}
	}

	var (
		res    LiquidationResult
		p      *product.Product
		locked *loan.Loan
	)
	now := u.clock()
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		var err error
		if p, err = r.Products.GetByID(ctx, l.ProductID); err != nil {
			return err
		}
		a := risk.Assess(l, p, q, now)
		if !a.Liquidatable {
			return loan.ErrNotLiquidatable
		}

		seized := l.Collateral
		rec := &ledger.Liquidation{
			LiquidationID:    id.NewID32(),
			LoanID:           l.ID,
			LiquidatorID:     liquidatorID,
			CollateralSeized: seized,
			DebtAmount:       a.Owed,
			Reason:           a.Reason,
			LiquidatedAt:     now,
		}
		if err := r.Ledger.AppendLiquidation(ctx, rec); err != nil {
			return err
		}
		if err := r.Ledger.AppendCollateralChange(ctx, &ledger.CollateralChange{
			ChangeID:        id.NewID32(),
			LoanID:          l.ID,
			Kind:            ledger.CollateralLiquidated,
			Amount:          seized,
			CollateralAfter: decimal.Zero,
			ChangedAt:       now,
		}); err != nil {
			return err
		}

		l.Collateral = decimal.Zero
		l.InterestAccrued = a.Interest
		if err := l.TransitionTo(loan.StatusLiquidated, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := catalog.ReleaseSlot(ctx, r.Products, p.ID); err != nil {
			return err
		}
		if err := r.Ledger.AppendAudit(ctx, loanAudit(l, ledger.ActionLoanLiquidated, a.Owed, map[string]any{
			"liquidation_id":    rec.LiquidationID,
			"liquidator_id":     liquidatorID,
			"reason":            rec.Reason,
			"collateral_seized": seized.String(),
		})); err != nil {
			return err
		}
		locked = l
		res.Liquidation = *rec
		return nil
	})
	if err != nil {
		return nil, u.fail(op, err, map[string]any{"loan_id": loanID, "liquidator_id": liquidatorID})
	}

	res.Loan = ToLoanDTO(locked, p)
	u.metrics.Liquidated(string(res.Liquidation.Reason))
	u.metrics.LoanClosed(string(loan.StatusLiquidated))
	u.publish(ctx, EventLoanLiquidated, locked, p, &res.Liquidation.DebtAmount, string(res.Liquidation.Reason), now)
	return &res, nil
}

// MarkDefaulted closes an active loan administratively as defaulted.
func (u *Usecase) MarkDefaulted(ctx context.Context, loanID, reason string) (*LoanDTO, error) {
	return u.close(ctx, "MarkDefaulted", loanID, reason, loan.StatusDefaulted, ledger.ActionLoanDefaulted, EventLoanDefaulted)
}

// Cancel closes an active loan administratively as cancelled.
func (u *Usecase) Cancel(ctx context.Context, loanID, reason string) (*LoanDTO, error) {
	return u.close(ctx, "Cancel", loanID, reason, loan.StatusCancelled, ledger.ActionLoanCancelled, EventLoanCancelled)
}

func (u *Usecase) close(ctx context.Context, op, loanID, reason string, to loan.Status, action, event string) (*LoanDTO, error) {
	var (
		p      *product.Product
		locked *loan.Loan
	)
	now := u.clock()
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		var err error
		if p, err = r.Products.GetByID(ctx, l.ProductID); err != nil {
			return err
		}
		owed := risk.TotalOwed(l, p, now)
		l.InterestAccrued = accrual.ForLoan(l, p, now)
		if err := l.TransitionTo(to, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := catalog.ReleaseSlot(ctx, r.Products, p.ID); err != nil {
			return err
		}
		locked = l
		return r.Ledger.AppendAudit(ctx, loanAudit(l, action, owed, map[string]any{"reason": reason}))
	})
	if err != nil {
		return nil, u.fail(op, err, map[string]any{"loan_id": loanID, "reason": reason})
	}

	dto := ToLoanDTO(locked, p)
	u.metrics.LoanClosed(string(to))
	u.publish(ctx, event, locked, p, nil, reason, now)
	return &dto, nil
}

// activeLoan is an unlocked read used to pick the product before any collaborator call.
// The status is checked again under the lock.
func (u *Usecase) activeLoan(ctx context.Context, loanID string) (*loan.Loan, *product.Product, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	if l.Status != loan.StatusActive {
		return nil, nil, loan.ErrLoanNotActive
	}
	p, err := u.products.GetByID(ctx, l.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return l, p, nil
}

func (u *Usecase) quote(ctx context.Context, p *product.Product) (risk.Quote, error) {
	if p.SameDenomination() {
		return risk.Par(), nil
	}
	ctx, cancel := withTimeout(ctx, u.oracleTimeout)
	defer cancel()
	return risk.QuoteFor(ctx, u.oracle, p)
}

func (u *Usecase) verifyIdentity(ctx context.Context, borrowerID string) error {
	if u.identity == nil {
		return ErrIdentityUnavailable
	}
	ctx, cancel := withTimeout(ctx, u.kycTimeout)
	defer cancel()
	ok, err := u.identity.IsVerified(ctx, borrowerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	if !ok {
		return loan.ErrIdentityCheckRequired
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fail records err by kind. Conflicts and bad input are expected and stay quiet;
// invariant breaks and unclassified errors are logged as errors, dependencies as warnings.
func (u *Usecase) fail(op string, err error, data any) error {
	kind := apperr.KindOf(err)
	if errors.Is(err, context.DeadlineExceeded) && kind == apperr.KindUnknown {
		kind = apperr.KindDependency
	}
	u.metrics.OperationFailed(op, kind.String())
	switch kind {
	case apperr.KindInvariant, apperr.KindUnknown:
		logger.LogError(u.log, moduleName, op, "operation aborted", data, err)
	case apperr.KindDependency:
		u.log.WithFields(logrus.Fields{"module": moduleName, "funcName": op, "data": data}).Warn(err.Error())
	}
	return err
}

func (u *Usecase) publish(ctx context.Context, key string, l *loan.Loan, p *product.Product, amount *decimal.Decimal, reason string, at time.Time) {
	if u.events == nil {
		return
	}
	evt := Event{
		Type:       key,
		LoanID:     l.LoanID,
		ProductID:  p.ProductID,
		BorrowerID: l.BorrowerID,
		Status:     l.Status,
		Amount:     amount,
		Reason:     reason,
		At:         at,
	}
	if err := u.events.Publish(ctx, key, evt); err != nil {
		u.log.WithFields(logrus.Fields{"module": moduleName, "event": key, "loan_id": l.LoanID}).Warn("publish failed: " + err.Error())
	}
}

func loanAudit(l *loan.Loan, action string, amount decimal.Decimal, meta map[string]any) *ledger.AuditEntry {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["loan_id"] = l.LoanID
	meta["status"] = l.Status
	b, _ := json.Marshal(meta)
	loanID, productID := l.ID, l.ProductID
	return &ledger.AuditEntry{
		LoanID:    &loanID,
		ProductID: &productID,
		Action:    action,
		Amount:    amount,
		Metadata:  string(b),
	}
}
